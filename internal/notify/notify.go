// Package notify defines the consumed notification capability. The core
// decides what to send and when; transport (SMTP or otherwise) lives
// outside and plugs in through the Notifier interface.
package notify

import (
	"context"

	"go.uber.org/zap"
)

type Notifier interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Func adapts an ordinary function to the Notifier interface.
type Func func(ctx context.Context, to, subject, body string) error

func (f Func) Send(ctx context.Context, to, subject, body string) error {
	return f(ctx, to, subject, body)
}

// LogNotifier records each dispatch instead of delivering it. Default for
// deployments that have not wired a real transport yet.
func LogNotifier(log *zap.Logger) Notifier {
	return Func(func(_ context.Context, to, subject, _ string) error {
		log.Info("notification dispatched to log only",
			zap.String("to", to),
			zap.String("subject", subject))
		return nil
	})
}
