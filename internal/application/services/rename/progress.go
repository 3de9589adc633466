package rename

import (
	"context"
	"time"

	"github.com/easayliu/tg-autorename/internal/application/contracts"
	"github.com/easayliu/tg-autorename/internal/infrastructure/ratelimit"
	"github.com/easayliu/tg-autorename/pkg/formatter"
	"github.com/easayliu/tg-autorename/pkg/logger"
)

// progressTracker turns transfer callbacks into throttled edits of the
// job's status message.
type progressTracker struct {
	ctx       context.Context
	client    contracts.TelegramGateway
	chatID    int64
	messageID int
	label     string
	started   time.Time
	limiter   *ratelimit.RateLimiter
	formatter *formatter.ProgressFormatter
	lastText  string
}

func newProgressTracker(ctx context.Context, client contracts.TelegramGateway, chatID int64, messageID int, label string, interval time.Duration, f *formatter.ProgressFormatter) *progressTracker {
	return &progressTracker{
		ctx:       ctx,
		client:    client,
		chatID:    chatID,
		messageID: messageID,
		label:     label,
		started:   time.Now(),
		limiter:   ratelimit.NewIntervalLimiter(interval),
		formatter: f,
	}
}

func (t *progressTracker) update(done, total int64) {
	if t.messageID == 0 || !t.limiter.Allow() {
		return
	}
	text := t.formatter.Format(t.label, done, total, time.Since(t.started))
	if text == t.lastText {
		return
	}
	t.lastText = text
	if err := t.client.EditText(t.ctx, t.chatID, t.messageID, text); err != nil {
		logger.Debug("Progress update failed", "chat_id", t.chatID, "error", err)
	}
}
