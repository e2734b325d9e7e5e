package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/Strob0t/AgentForge/internal/port/messagequeue"
)

// publishEvent marshals payload and publishes it. Failures are logged only.
func publishEvent(ctx context.Context, pub messagequeue.Publisher, subject string, payload any) {
	if pub == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		slog.ErrorContext(ctx, "marshal event", "subject", subject, "error", err)
		return
	}
	if err := pub.Publish(ctx, subject, data); err != nil {
		slog.WarnContext(ctx, "publish event failed", "subject", subject, "error", err)
	}
}
