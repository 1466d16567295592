// Package notify sends account emails over SMTP.
package notify

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	"github.com/yukikurage/todo-app/internal/config"
	"github.com/yukikurage/todo-app/internal/models"
	"gopkg.in/gomail.v2"
)

// EmailNotifier implements account notifications over SMTP.
type EmailNotifier struct {
	from   string
	logger *slog.Logger
	send   func(m *gomail.Message) error
	now    func() time.Time
}

// NewEmailNotifier creates a notifier from the SMTP settings in cfg.
func NewEmailNotifier(cfg *config.Config, logger *slog.Logger) *EmailNotifier {
	d := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
	return &EmailNotifier{
		from:   cfg.SMTPFrom,
		logger: logger,
		send: func(m *gomail.Message) error {
			return d.DialAndSend(m)
		},
		now: time.Now,
	}
}

// PasswordChanged tells the account owner their password was reset.
func (n *EmailNotifier) PasswordChanged(ctx context.Context, user *models.User) error {
	if strings.TrimSpace(user.Email) == "" {
		n.logger.WarnContext(ctx, "email recipient empty, skip notification", slog.Uint64("user_id", user.ID))
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", user.Email)
	m.SetHeader("Subject", "[Todo] Your password was changed")
	m.SetBody("text/html", passwordChangedBody(user, n.now().UTC()))

	if err := n.send(m); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	n.logger.InfoContext(ctx, "password change notice sent", slog.Uint64("user_id", user.ID))
	return nil
}

func passwordChangedBody(user *models.User, at time.Time) string {
	name := user.DisplayName
	if name == "" {
		name = user.Username
	}
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif;">
  <div style="max-width: 520px; margin: 0 auto; padding: 16px;">
    <h2>Hi %s,</h2>
    <p>The password of your account <strong>%s</strong> was changed on %s UTC.</p>
    <p>If this was not you, reset your password right away.</p>
    <hr />
    <p>Пароль вашей учётной записи был изменён. Если это были не вы, сбросьте пароль.</p>
  </div>
</body>
</html>`, html.EscapeString(name), html.EscapeString(user.Username), at.Format("2006-01-02 15:04"))
}
