package contracts

import (
	"context"
	"time"

	"github.com/easayliu/tg-autorename/internal/domain/entities"
	"github.com/easayliu/tg-autorename/internal/domain/valueobjects"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
)

// ProgressFunc 传输进度回调，total 未知时为 0
type ProgressFunc func(done, total int64)

// UploadRequest 上传参数
type UploadRequest struct {
	ChatID    int64
	ReplyTo   int
	Kind      valueobjects.MediaKind
	FilePath  string
	FileName  string
	Caption   string
	ParseMode string
	ThumbPath string // 为空时不带缩略图
	Duration  int
}

// TelegramGateway 任务使用的 Telegram 客户端句柄
type TelegramGateway interface {
	Reply(ctx context.Context, chatID int64, replyTo int, text string) (int, error)
	EditText(ctx context.Context, chatID int64, messageID int, text string) error
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
	DownloadFile(ctx context.Context, fileID, dst string, progress ProgressFunc) error
	Upload(ctx context.Context, req UploadRequest, progress ProgressFunc) error
}

// RenameJob 一次重命名请求，入队时创建，被一个 worker 消费一次后丢弃
type RenameJob struct {
	ID         string
	Client     TelegramGateway
	Message    *tgbotapi.Message
	EnqueuedAt time.Time
}

// NewRenameJob 为收到的消息创建任务
func NewRenameJob(client TelegramGateway, msg *tgbotapi.Message) *RenameJob {
	return &RenameJob{
		ID:         uuid.New().String(),
		Client:     client,
		Message:    msg,
		EnqueuedAt: time.Now(),
	}
}

// ChatID 返回任务所在会话
func (j *RenameJob) ChatID() int64 {
	if j.Message == nil || j.Message.Chat == nil {
		return 0
	}
	return j.Message.Chat.ID
}

// UserID 返回发送者ID，没有发送者时退回会话ID
func (j *RenameJob) UserID() int64 {
	if j.Message != nil && j.Message.From != nil {
		return j.Message.From.ID
	}
	return j.ChatID()
}

// PreferenceReader 用户偏好读取接口
type PreferenceReader interface {
	GetPreferences(ctx context.Context, userID int64) (*entities.UserPreferences, error)
}

// PreferenceService 偏好读取 + 管理接口
type PreferenceService interface {
	PreferenceReader
	SavePreferences(ctx context.Context, prefs *entities.UserPreferences) error
}

// ContentScreener 内容安全检查，返回 true 表示拒绝
type ContentScreener interface {
	Screen(ctx context.Context, fileName string, msg *tgbotapi.Message) bool
}

// MetadataRequest 元数据写入参数
type MetadataRequest struct {
	InputPath     string
	OutputPath    string
	Title         string
	Artist        string
	Author        string
	VideoTitle    string
	AudioTitle    string
	SubtitleTitle string
}

// MetadataTagger 调用外部转码工具写入元数据
type MetadataTagger interface {
	Tag(ctx context.Context, req MetadataRequest) error
}

// ToolError 外部命令执行失败，Output 为工具原始错误输出
type ToolError struct {
	Tool   string
	Output string
	Err    error
}

func (e *ToolError) Error() string {
	if e.Output != "" {
		return e.Tool + ": " + e.Err.Error() + ": " + e.Output
	}
	return e.Tool + ": " + e.Err.Error()
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

// ThumbnailProcessor 把缩略图就地处理成固定尺寸
type ThumbnailProcessor interface {
	Process(ctx context.Context, path string) error
}

// QueueStats 队列统计
type QueueStats struct {
	Workers   int   `json:"workers"`
	Running   bool  `json:"running"`
	Pending   int   `json:"pending"`
	InFlight  int   `json:"in_flight"`
	Processed int64 `json:"processed"`
	Failed    int64 `json:"failed"`
	Rejected  int64 `json:"rejected"`
}

// RenameQueue 入队与统计接口
type RenameQueue interface {
	Enqueue(job *RenameJob) bool
	Stats() QueueStats
}
