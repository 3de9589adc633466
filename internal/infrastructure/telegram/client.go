package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/easayliu/tg-autorename/internal/application/contracts"
	"github.com/easayliu/tg-autorename/internal/domain/valueobjects"
	"github.com/easayliu/tg-autorename/internal/infrastructure/config"
	"github.com/easayliu/tg-autorename/pkg/logger"
	"github.com/go-resty/resty/v2"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// MaxMessageLength Telegram 单条文本消息长度上限
const MaxMessageLength = 4096

var _ contracts.TelegramGateway = (*Client)(nil)

type Client struct {
	config       *config.TelegramConfig
	bot          *tgbotapi.BotAPI
	http         *resty.Client
	fileEndpoint string
}

// NewClient 连接 Bot API 并校验 token
func NewClient(cfg *config.TelegramConfig) (*Client, error) {
	var (
		bot *tgbotapi.BotAPI
		err error
	)
	if cfg.APIEndpoint != "" {
		bot, err = tgbotapi.NewBotAPIWithAPIEndpoint(cfg.BotToken, cfg.APIEndpoint)
	} else {
		bot, err = tgbotapi.NewBotAPI(cfg.BotToken)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	bot.Debug = cfg.Debug

	fileEndpoint := resolveFileEndpoint(cfg)
	logger.Info("Telegram bot connected successfully", "username", bot.Self.UserName, "file_endpoint", fileEndpoint)

	return &Client{
		config:       cfg,
		bot:          bot,
		http:         newFileClient(),
		fileEndpoint: fileEndpoint,
	}, nil
}

// resolveFileEndpoint 确定文件下载地址模板
// 自建服务器的 api_endpoint 形如 http://host/bot%s/%s，对应的文件地址为 http://host/file/bot%s/%s
func resolveFileEndpoint(cfg *config.TelegramConfig) string {
	if cfg.FileEndpoint != "" {
		return cfg.FileEndpoint
	}
	if base, ok := strings.CutSuffix(cfg.APIEndpoint, "/bot%s/%s"); ok {
		return base + "/file/bot%s/%s"
	}
	return tgbotapi.FileEndpoint
}

// newFileClient 文件下载使用的 HTTP 客户端，大文件不设整体超时
func newFileClient() *resty.Client {
	return resty.New().
		SetRetryCount(0).
		SetHeader("User-Agent", "tg-autorename")
}

// GetBot 获取bot实例
func (c *Client) GetBot() *tgbotapi.BotAPI {
	return c.bot
}

// Username 返回机器人用户名
func (c *Client) Username() string {
	if c.bot == nil {
		return ""
	}
	return c.bot.Self.UserName
}

// cleanUTF8 确保文本是有效的UTF-8编码
func cleanUTF8(text string) string {
	if !utf8.ValidString(text) {
		// 替换无效的UTF-8字符
		return strings.ToValidUTF8(text, "?")
	}
	return text
}

// truncateMessage 超长文本截断到 Telegram 上限
func truncateMessage(text string) string {
	text = cleanUTF8(text)
	if utf8.RuneCountInString(text) <= MaxMessageLength {
		return text
	}
	runes := []rune(text)
	return string(runes[:MaxMessageLength-1]) + "…"
}

// Reply 回复指定消息，返回新消息ID
func (c *Client) Reply(ctx context.Context, chatID int64, replyTo int, text string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	msg := tgbotapi.NewMessage(chatID, truncateMessage(text))
	msg.ReplyToMessageID = replyTo

	sent, err := c.bot.Send(msg)
	if err != nil {
		return 0, fmt.Errorf("failed to send telegram message: %w", err)
	}
	return sent.MessageID, nil
}

// EditText 修改消息文本，内容未变化时不视为错误
func (c *Client) EditText(ctx context.Context, chatID int64, messageID int, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	edit := tgbotapi.NewEditMessageText(chatID, messageID, truncateMessage(text))
	if _, err := c.bot.Request(edit); err != nil {
		if strings.Contains(err.Error(), "message is not modified") {
			return nil
		}
		return fmt.Errorf("failed to edit telegram message: %w", err)
	}
	return nil
}

// DeleteMessage 删除消息
func (c *Client) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := c.bot.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		return fmt.Errorf("failed to delete telegram message: %w", err)
	}
	return nil
}

// DownloadFile 通过 file_id 下载文件到 dst
// 本地模式（--local）的服务器返回本机绝对路径，此时直接从磁盘复制
func (c *Client) DownloadFile(ctx context.Context, fileID, dst string, progress contracts.ProgressFunc) error {
	file, err := c.bot.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return fmt.Errorf("failed to resolve file: %w", err)
	}

	if filepath.IsAbs(file.FilePath) {
		src, err := os.Open(file.FilePath)
		if err != nil {
			return fmt.Errorf("failed to open local file: %w", err)
		}
		defer src.Close()
		return c.writeFile(fileID, dst, src, int64(file.FileSize), progress)
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(c.fileURL(file.FilePath))
	if err != nil {
		return fmt.Errorf("failed to download file: %w", err)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("failed to download file: unexpected status %d", resp.StatusCode())
	}
	return c.writeFile(fileID, dst, body, int64(file.FileSize), progress)
}

// fileURL 拼接文件下载地址
func (c *Client) fileURL(filePath string) string {
	return fmt.Sprintf(c.fileEndpoint, c.bot.Token, filePath)
}

func (c *Client) writeFile(fileID, dst string, src io.Reader, size int64, progress contracts.ProgressFunc) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	start := time.Now()
	written, copyErr := io.Copy(out, newProgressReader(src, size, progress))
	closeErr := out.Close()
	if copyErr != nil {
		return fmt.Errorf("failed to write file: %w", copyErr)
	}
	if closeErr != nil {
		return fmt.Errorf("failed to write file: %w", closeErr)
	}

	logger.Debug("File downloaded", "file_id", fileID, "bytes", written, "elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}

// Upload 按类型上传文件，附带说明和缩略图
func (c *Client) Upload(ctx context.Context, req contracts.UploadRequest, progress contracts.ProgressFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := os.Open(req.FilePath)
	if err != nil {
		return fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat upload: %w", err)
	}

	name := req.FileName
	if name == "" {
		name = filepath.Base(req.FilePath)
	}
	data := tgbotapi.FileReader{Name: name, Reader: newProgressReader(f, info.Size(), progress)}

	sendable, err := buildUpload(req, data)
	if err != nil {
		return err
	}
	if _, err := c.bot.Send(sendable); err != nil {
		return fmt.Errorf("failed to upload %s: %w", req.Kind, err)
	}
	return nil
}

// buildUpload 根据媒体类型构造上传请求
func buildUpload(req contracts.UploadRequest, data tgbotapi.RequestFileData) (tgbotapi.Chattable, error) {
	var thumb tgbotapi.RequestFileData
	if req.ThumbPath != "" {
		thumb = tgbotapi.FilePath(req.ThumbPath)
	}

	switch req.Kind {
	case valueobjects.MediaKindDocument:
		doc := tgbotapi.NewDocument(req.ChatID, data)
		doc.Caption = req.Caption
		doc.ParseMode = req.ParseMode
		doc.Thumb = thumb
		doc.ReplyToMessageID = req.ReplyTo
		return doc, nil
	case valueobjects.MediaKindVideo:
		video := tgbotapi.NewVideo(req.ChatID, data)
		video.Caption = req.Caption
		video.ParseMode = req.ParseMode
		video.Thumb = thumb
		video.ReplyToMessageID = req.ReplyTo
		video.Duration = req.Duration
		video.SupportsStreaming = true
		return video, nil
	case valueobjects.MediaKindAudio:
		audio := tgbotapi.NewAudio(req.ChatID, data)
		audio.Caption = req.Caption
		audio.ParseMode = req.ParseMode
		audio.Thumb = thumb
		audio.ReplyToMessageID = req.ReplyTo
		audio.Duration = req.Duration
		return audio, nil
	}
	return nil, fmt.Errorf("unsupported upload kind %q", req.Kind)
}

// GetUpdates 长轮询获取更新
func (c *Client) GetUpdates(offset int64, timeout int) ([]tgbotapi.Update, error) {
	updateConfig := tgbotapi.NewUpdate(int(offset))
	updateConfig.Timeout = timeout
	updateConfig.AllowedUpdates = []string{"message"}

	updates, err := c.bot.GetUpdates(updateConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to get telegram updates: %w", err)
	}
	return updates, nil
}

// SetWebhook 注册 webhook 地址
func (c *Client) SetWebhook(url string) error {
	wh, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return fmt.Errorf("invalid webhook url: %w", err)
	}
	if _, err := c.bot.Request(wh); err != nil {
		return fmt.Errorf("failed to set webhook: %w", err)
	}
	return nil
}

// RemoveWebhook 删除 webhook，切回长轮询前必须调用
func (c *Client) RemoveWebhook() error {
	if _, err := c.bot.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		return fmt.Errorf("failed to delete webhook: %w", err)
	}
	return nil
}
