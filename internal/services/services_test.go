package services

import (
	"context"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/todo-app/internal/database"
	"github.com/yukikurage/todo-app/internal/models"
	"github.com/yukikurage/todo-app/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var fixedNow = time.Date(2026, 3, 10, 22, 15, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

// serviceSuite is shared by the service test suites: an in-memory SQLite
// database with the real repositories on top.
type serviceSuite struct {
	suite.Suite
	db       *gorm.DB
	userRepo repository.UserRepository
	todoRepo repository.TodoRepository
	ctx      context.Context
}

func (s *serviceSuite) SetupTest() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	s.Require().NoError(err)
	sqlDB, err := db.DB()
	s.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)
	s.Require().NoError(database.Migrate(db))

	s.db = db
	s.userRepo = repository.NewUserRepository(db)
	s.todoRepo = repository.NewTodoRepository(db)
	s.ctx = context.Background()
}

func (s *serviceSuite) TearDownTest() {
	sqlDB, err := s.db.DB()
	s.Require().NoError(err)
	sqlDB.Close()
}

func (s *serviceSuite) createUser(email, username, password string) *models.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	s.Require().NoError(err)
	user := &models.User{Email: email, Username: username, DisplayName: username, PasswordHash: string(hash)}
	s.Require().NoError(s.db.Create(user).Error)
	return user
}

func (s *serviceSuite) countTodos() int64 {
	var count int64
	s.Require().NoError(s.db.Model(&models.Todo{}).Count(&count).Error)
	return count
}

// requireFields asserts err is a ValidationError with exactly these
// field keys.
func (s *serviceSuite) requireFields(err error, want map[string][]string) {
	s.Require().Error(err)
	verr, ok := err.(*ValidationError)
	s.Require().True(ok, "expected *ValidationError, got %T", err)
	s.Equal(want, verr.Fields)
}
