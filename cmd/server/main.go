package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yukikurage/todo-app/internal/config"
	"github.com/yukikurage/todo-app/internal/constants"
	"github.com/yukikurage/todo-app/internal/database"
	"github.com/yukikurage/todo-app/internal/handlers"
	"github.com/yukikurage/todo-app/internal/i18n"
	"github.com/yukikurage/todo-app/internal/logger"
	"github.com/yukikurage/todo-app/internal/middleware"
	"github.com/yukikurage/todo-app/internal/notify"
	"github.com/yukikurage/todo-app/internal/repository"
	"github.com/yukikurage/todo-app/internal/services"
	"github.com/yukikurage/todo-app/internal/session"
	"github.com/yukikurage/todo-app/internal/storage"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Error("failed to connect to database", "driver", cfg.DBDriver, "error", err)
		os.Exit(1)
	}
	defer database.Close(db)

	// Run migrations
	if err := database.Migrate(db); err != nil {
		log.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	catalog, err := i18n.New()
	if err != nil {
		log.Error("failed to load translations", "error", err)
		os.Exit(1)
	}
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := catalog.RegisterValidator(v); err != nil {
			log.Error("failed to register validator translations", "error", err)
			os.Exit(1)
		}
	}

	manager, err := session.NewManager(cfg.JWTSecret, cfg.SessionTTL)
	if err != nil {
		log.Error("failed to create session manager", "error", err)
		os.Exit(1)
	}

	store, err := newSessionStore(cfg)
	if err != nil {
		log.Error("failed to create session store", "store", cfg.SessionStore, "error", err)
		os.Exit(1)
	}

	// Optional collaborators
	var suggester services.TodoSuggester
	if cfg.OpenAIAPIKey != "" {
		suggester = services.NewAIService(cfg.OpenAIAPIKey)
	} else {
		log.Info("OPENAI_API_KEY not set, todo suggestions disabled")
	}

	var notifier services.PasswordChangeNotifier
	if cfg.MailEnabled() {
		notifier = notify.NewEmailNotifier(cfg, log)
	} else {
		log.Info("SMTP not configured, password change notices disabled")
	}

	avatars := storage.NewLocalAvatarStore(cfg.AvatarDir, cfg.AvatarURLPrefix)

	// Initialize repositories, services and handlers
	userRepo := repository.NewUserRepository(db)
	todoRepo := repository.NewTodoRepository(db)

	authHandler := handlers.NewAuthHandler(services.NewAuthService(userRepo, notifier), manager, catalog)
	todoHandler := handlers.NewTodoHandler(services.NewTodoService(todoRepo, suggester), catalog)
	profileHandler := handlers.NewProfileHandler(services.NewProfileService(userRepo, avatars), manager, catalog)
	healthHandler := handlers.NewHealthHandler(db)

	// Initialize Gin router
	r := gin.New()
	r.MaxMultipartMemory = constants.MaxMultipartMemory
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Metrics())
	r.Use(sessions.Sessions(constants.SessionCookieName, store))
	r.Use(middleware.Locale())

	r.GET("/health", healthHandler.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.Static(avatars.URLPrefix(), avatars.Dir())

	requireAuth := middleware.RequireAuth(manager, catalog)
	requireTodoID := middleware.RequireTodoID(catalog)
	limited := middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow, catalog)

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/register", limited, authHandler.Register)
			auth.POST("/login", limited, authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", requireAuth, authHandler.GetCurrentUser)
			auth.POST("/forgot-password", limited, authHandler.ForgotPassword)
			auth.POST("/reset-password", limited, authHandler.ResetPassword)
		}

		// Todo routes (protected)
		todos := api.Group("/todos")
		todos.Use(requireAuth)
		{
			todos.GET("", todoHandler.ListTodos)
			todos.POST("", todoHandler.AddTodo)
			todos.POST("/suggest", todoHandler.SuggestTodos)
			todos.PUT("/:id", requireTodoID, todoHandler.UpdateTodo)
			todos.PATCH("/:id/completed", requireTodoID, todoHandler.ToggleCompleted)
			todos.DELETE("/:id", requireTodoID, todoHandler.DeleteTodo)
		}

		// Profile routes (protected)
		profile := api.Group("/profile")
		profile.Use(requireAuth)
		{
			profile.GET("", profileHandler.GetProfile)
			profile.PUT("", profileHandler.UpdateProfile)
		}
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("server starting", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}

// newSessionStore builds the redis-backed store, or a cookie store when
// SESSION_STORE=cookie.
func newSessionStore(cfg *config.Config) (sessions.Store, error) {
	var store sessions.Store
	switch cfg.SessionStore {
	case "cookie":
		store = cookie.NewStore([]byte(cfg.SessionSecret))
	default:
		redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
		rs, err := redisStore.NewStore(
			10,        // Redis pool size
			"tcp",     // network type
			redisAddr, // Redis address from config
			"",        // password (empty = no password)
			[]byte(cfg.SessionSecret),
		)
		if err != nil {
			return nil, err
		}
		store = rs
	}

	// Configure session options based on environment
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   cfg.IsProduction(), // true in production (HTTPS)
		SameSite: http.SameSiteLaxMode,
	})
	return store, nil
}
