package recovery

import (
	"context"
	"log/slog"
	"time"
)

// CodeSender delivers a one-time code to the owner of an email address.
type CodeSender interface {
	SendCode(ctx context.Context, email, code string, ttl time.Duration) error
}

// LogSender writes codes to the log. It stands in for a mail gateway in
// development; the code itself is only visible at debug level.
type LogSender struct {
	Logger *slog.Logger
}

func (s LogSender) SendCode(_ context.Context, email, code string, ttl time.Duration) error {
	s.Logger.Info("password reset code issued", "email", email, "expires_in", ttl.String())
	s.Logger.Debug("password reset code", "email", email, "code", code)
	return nil
}
