package telegram

import (
	"github.com/easayliu/tg-autorename/internal/application/contracts"
	"github.com/easayliu/tg-autorename/pkg/logger"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// MessageHandler handles incoming Telegram messages
type MessageHandler struct {
	gateway contracts.TelegramGateway
	queue   contracts.RenameQueue
}

// NewMessageHandler creates a new message handler
func NewMessageHandler(gateway contracts.TelegramGateway, queue contracts.RenameQueue) *MessageHandler {
	return &MessageHandler{gateway: gateway, queue: queue}
}

// HandleMessage queues private-chat media for renaming and ignores
// everything else. It reports whether a job was queued.
func (h *MessageHandler) HandleMessage(update *tgbotapi.Update) bool {
	msg := update.Message
	if !IsRenameCandidate(msg) {
		return false
	}

	job := contracts.NewRenameJob(h.gateway, msg)
	if !h.queue.Enqueue(job) {
		logger.Warn("Rename queue closed, message dropped", "chat_id", msg.Chat.ID, "message_id", msg.MessageID)
		return false
	}

	logger.Info("Rename job queued",
		"job_id", job.ID,
		"chat_id", msg.Chat.ID,
		"message_id", msg.MessageID,
		"pending", h.queue.Stats().Pending)
	return true
}

// IsRenameCandidate reports whether msg is a private message carrying a
// document, video or audio attachment.
func IsRenameCandidate(msg *tgbotapi.Message) bool {
	if msg == nil || msg.Chat == nil || !msg.Chat.IsPrivate() {
		return false
	}
	return msg.Document != nil || msg.Video != nil || msg.Audio != nil
}
