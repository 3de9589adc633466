package telegram

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/easayliu/tg-autorename/internal/infrastructure/config"
	"github.com/easayliu/tg-autorename/pkg/logger"
	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const pollErrorBackoff = 5 * time.Second

// UpdateSource 长轮询数据源
type UpdateSource interface {
	GetUpdates(offset int64, timeout int) ([]tgbotapi.Update, error)
}

// TelegramController Telegram 入口：长轮询或 webhook，把更新交给消息处理器
type TelegramController struct {
	config         *config.TelegramConfig
	source         UpdateSource
	messageHandler *MessageHandler

	mu           sync.Mutex
	lastUpdateID int
	cancel       context.CancelFunc
	done         chan struct{}
}

// NewTelegramController 创建控制器
func NewTelegramController(cfg *config.TelegramConfig, source UpdateSource, handler *MessageHandler) *TelegramController {
	return &TelegramController{
		config:         cfg,
		source:         source,
		messageHandler: handler,
	}
}

// Webhook 处理 Webhook 请求
func (c *TelegramController) Webhook(ctx *gin.Context) {
	var update tgbotapi.Update
	if err := ctx.ShouldBindJSON(&update); err != nil {
		logger.Error("Failed to parse telegram update", "error", err)
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid update format"})
		return
	}

	c.dispatch(&update)
	ctx.JSON(http.StatusOK, gin.H{"ok": true})
}

// StartPolling 开始长轮询，重复调用无效果
func (c *TelegramController) StartPolling(parent context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(parent)
	c.cancel = cancel
	c.done = make(chan struct{})

	logger.Info("Starting Telegram polling...")

	go func(done chan struct{}) {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				logger.Info("Telegram polling stopped")
				return
			default:
				c.pollUpdates(ctx)
			}
		}
	}(c.done)
}

// StopPolling 停止轮询并等待当前请求返回
func (c *TelegramController) StopPolling() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel, c.done = nil, nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// LastUpdateID 返回已处理的最大 update_id
func (c *TelegramController) LastUpdateID() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastUpdateID
}

// pollUpdates 轮询更新
func (c *TelegramController) pollUpdates(ctx context.Context) {
	updates, err := c.source.GetUpdates(int64(c.LastUpdateID()+1), c.config.PollTimeout)
	if err != nil {
		logger.Error("Failed to get telegram updates", "error", err)
		select {
		case <-ctx.Done():
		case <-time.After(pollErrorBackoff):
		}
		return
	}

	for i := range updates {
		c.dispatch(&updates[i])
	}
}

func (c *TelegramController) dispatch(update *tgbotapi.Update) {
	c.mu.Lock()
	if update.UpdateID > c.lastUpdateID {
		c.lastUpdateID = update.UpdateID
	}
	c.mu.Unlock()

	if update.Message != nil {
		c.messageHandler.HandleMessage(update)
	}
}
