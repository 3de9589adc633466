package rename

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/easayliu/tg-autorename/internal/application/contracts"
	"github.com/easayliu/tg-autorename/internal/domain/entities"
	"github.com/easayliu/tg-autorename/internal/domain/services/filename"
	"github.com/easayliu/tg-autorename/internal/domain/valueobjects"
	apperrors "github.com/easayliu/tg-autorename/internal/shared/errors"
	"github.com/easayliu/tg-autorename/internal/shared/utils"
	"github.com/easayliu/tg-autorename/pkg/formatter"
	"github.com/easayliu/tg-autorename/pkg/logger"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Messages shown to the user.
const (
	MsgNoTemplate     = "Please Set An Auto Rename Format First Using /autorename"
	MsgUnsupported    = "Unsupported File Type"
	MsgRejected       = "NSFW content detected. File upload rejected."
	MsgQualityUnknown = "I Was Not Able To Extract The Quality Properly. Renaming As 'Unknown'..."
	MsgDownloading    = "Downloading..."
	MsgTagging        = "Renaming and Adding Metadata..."
	MsgUploading      = "Uploading..."

	labelDownload = "Download Started..."
	labelUpload   = "Upload Started..."
	thumbFileName = "thumb.jpg"
)

// PipelineConfig holds the working directories and progress settings.
type PipelineConfig struct {
	DownloadDir      string
	MetadataDir      string
	ProgressInterval time.Duration
}

// Pipeline runs one rename job: download, tag, thumbnail, upload, cleanup.
type Pipeline struct {
	cfg       PipelineConfig
	prefs     contracts.PreferenceReader
	screener  contracts.ContentScreener
	tagger    contracts.MetadataTagger
	thumbs    contracts.ThumbnailProcessor
	registry  *Registry
	renderer  *utils.TemplateRenderer
	formatter *formatter.ProgressFormatter

	mu     sync.Mutex
	active map[string]struct{} // job IDs whose working directories exist
}

// NewPipeline wires the pipeline. screener and thumbs may be nil.
func NewPipeline(
	cfg PipelineConfig,
	prefs contracts.PreferenceReader,
	screener contracts.ContentScreener,
	tagger contracts.MetadataTagger,
	thumbs contracts.ThumbnailProcessor,
	registry *Registry,
) *Pipeline {
	if cfg.DownloadDir == "" {
		cfg.DownloadDir = "downloads"
	}
	if cfg.MetadataDir == "" {
		cfg.MetadataDir = "Metadata"
	}
	if registry == nil {
		registry = NewRegistry(DefaultDedupWindow)
	}
	return &Pipeline{
		cfg:       cfg,
		prefs:     prefs,
		screener:  screener,
		tagger:    tagger,
		thumbs:    thumbs,
		registry:  registry,
		renderer:  utils.NewTemplateRenderer(),
		formatter: formatter.NewProgressFormatter(),
		active:    make(map[string]struct{}),
	}
}

// InFlight reports whether jobID is still using its working directories.
func (p *Pipeline) InFlight(jobID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.active[jobID]
	return ok
}

// Registry exposes the de-duplication registry.
func (p *Pipeline) Registry() *Registry {
	return p.registry
}

// sourceMedia is the attachment that triggered a job.
type sourceMedia struct {
	kind     valueobjects.MediaKind
	fileID   string
	fileName string
	mimeType string
	size     int64
	duration int
	thumbID  string
}

// classify picks the attachment out of msg. Video and audio names get the
// container extension appended.
func classify(msg *tgbotapi.Message) (sourceMedia, bool) {
	switch {
	case msg.Document != nil:
		d := msg.Document
		m := sourceMedia{
			kind:     valueobjects.MediaKindDocument,
			fileID:   d.FileID,
			fileName: d.FileName,
			mimeType: d.MimeType,
			size:     int64(d.FileSize),
		}
		if d.Thumbnail != nil {
			m.thumbID = d.Thumbnail.FileID
		}
		return m, true
	case msg.Video != nil:
		v := msg.Video
		m := sourceMedia{
			kind:     valueobjects.MediaKindVideo,
			fileID:   v.FileID,
			fileName: v.FileName + ".mp4",
			mimeType: v.MimeType,
			size:     int64(v.FileSize),
			duration: v.Duration,
		}
		if v.Thumbnail != nil {
			m.thumbID = v.Thumbnail.FileID
		}
		return m, true
	case msg.Audio != nil:
		a := msg.Audio
		m := sourceMedia{
			kind:     valueobjects.MediaKindAudio,
			fileID:   a.FileID,
			fileName: a.FileName + ".mp3",
			mimeType: a.MimeType,
			size:     int64(a.FileSize),
			duration: a.Duration,
		}
		if a.Thumbnail != nil {
			m.thumbID = a.Thumbnail.FileID
		}
		return m, true
	}
	return sourceMedia{}, false
}

// Process runs the job. Rejections and failures are returned as
// ServiceErrors after the user has been told.
func (p *Pipeline) Process(ctx context.Context, job *contracts.RenameJob) error {
	if job == nil || job.Message == nil || job.Client == nil {
		return apperrors.NewServiceError(apperrors.ErrorCodeInvalidRequest, "job has no message or client")
	}
	msg := job.Message
	client := job.Client
	chatID := job.ChatID()

	prefs, err := p.prefs.GetPreferences(ctx, job.UserID())
	if err != nil {
		return apperrors.NewServiceErrorWithCause(apperrors.ErrorCodeInternalError, "load preferences", err)
	}
	if !prefs.HasTemplate() {
		p.reply(ctx, client, chatID, msg.MessageID, MsgNoTemplate)
		return apperrors.NewServiceError(apperrors.ErrorCodeNoTemplate, "no format template")
	}

	media, ok := classify(msg)
	if !ok {
		p.reply(ctx, client, chatID, msg.MessageID, MsgUnsupported)
		return apperrors.NewServiceError(apperrors.ErrorCodeUnsupportedMedia, "message has no document, video or audio")
	}
	uploadKind := valueobjects.ResolveUploadKind(prefs.MediaType, media.kind)
	exempt := valueobjects.IsQualityExempt(media.kind, media.mimeType)

	if p.screener != nil && p.screener.Screen(ctx, media.fileName, msg) {
		p.reply(ctx, client, chatID, msg.MessageID, MsgRejected)
		return apperrors.NewServiceError(apperrors.ErrorCodeContentRejected, "content screening rejected "+media.fileName)
	}

	stamp, ok := p.registry.TryAcquire(media.fileID)
	if !ok {
		logger.Debug("Duplicate rename request dropped", "job_id", job.ID, "file_id", media.fileID)
		return apperrors.NewServiceError(apperrors.ErrorCodeDuplicate, "file is already being renamed")
	}
	defer p.registry.Release(media.fileID, stamp)

	tokens := filename.Extract(media.fileName, exempt)
	if !exempt && !tokens.QualityKnown() {
		p.reply(ctx, client, chatID, msg.MessageID, MsgQualityUnknown)
		return apperrors.NewServiceError(apperrors.ErrorCodeQualityUnknown, "no quality in "+media.fileName)
	}
	newName := p.renderer.RenderFilename(prefs.FormatTemplate, tokens, filepath.Ext(media.fileName))

	downloadDir := filepath.Join(p.cfg.DownloadDir, job.ID)
	metadataDir := filepath.Join(p.cfg.MetadataDir, job.ID)
	p.mu.Lock()
	p.active[job.ID] = struct{}{}
	p.mu.Unlock()
	defer p.cleanup(job.ID, downloadDir, metadataDir)

	logger.Info("Renaming file",
		"job_id", job.ID,
		"chat_id", chatID,
		"source", media.fileName,
		"target", newName,
		"upload_as", uploadKind)

	statusID, err := client.Reply(ctx, chatID, msg.MessageID, MsgDownloading)
	if err != nil {
		return apperrors.NewServiceErrorWithCause(apperrors.ErrorCodeInternalError, "send status message", err)
	}

	downloadPath := filepath.Join(downloadDir, newName)
	if err := p.download(ctx, client, chatID, statusID, media.fileID, downloadPath); err != nil {
		p.edit(ctx, client, chatID, statusID, fmt.Sprintf("Download Error: %v", err))
		return apperrors.NewServiceErrorWithCause(apperrors.ErrorCodeDownloadFailed, "download "+media.fileName, err)
	}

	p.edit(ctx, client, chatID, statusID, MsgTagging)
	metadataPath := filepath.Join(metadataDir, newName)
	if err := p.tag(ctx, prefs, downloadPath, metadataPath); err != nil {
		p.edit(ctx, client, chatID, statusID, "Metadata Error:\n"+toolOutput(err))
		return apperrors.NewServiceErrorWithCause(apperrors.ErrorCodeMetadataFailed, "tag "+newName, err)
	}

	p.edit(ctx, client, chatID, statusID, MsgUploading)
	thumbPath := p.prepareThumbnail(ctx, client, prefs, media, filepath.Join(downloadDir, thumbFileName))

	caption, parseMode := captionFor(p.renderer, prefs.Caption, newName, media.size, media.duration)
	tracker := newProgressTracker(ctx, client, chatID, statusID, labelUpload, p.cfg.ProgressInterval, p.formatter)
	req := contracts.UploadRequest{
		ChatID:    chatID,
		ReplyTo:   msg.MessageID,
		Kind:      uploadKind,
		FilePath:  metadataPath,
		FileName:  newName,
		Caption:   caption,
		ParseMode: parseMode,
		ThumbPath: thumbPath,
		Duration:  media.duration,
	}
	if err := client.Upload(ctx, req, tracker.update); err != nil {
		p.edit(ctx, client, chatID, statusID, fmt.Sprintf("Error: %v", err))
		return apperrors.NewServiceErrorWithCause(apperrors.ErrorCodeUploadFailed, "upload "+newName, err)
	}

	if err := client.DeleteMessage(ctx, chatID, statusID); err != nil {
		logger.Warn("Failed to delete status message", "chat_id", chatID, "message_id", statusID, "error", err)
	}
	logger.Info("Rename completed", "job_id", job.ID, "file", newName, "elapsed", time.Since(job.EnqueuedAt).Round(time.Millisecond))
	return nil
}

func (p *Pipeline) download(ctx context.Context, client contracts.TelegramGateway, chatID int64, statusID int, fileID, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create download directory: %w", err)
	}
	tracker := newProgressTracker(ctx, client, chatID, statusID, labelDownload, p.cfg.ProgressInterval, p.formatter)
	return client.DownloadFile(ctx, fileID, dst, tracker.update)
}

func (p *Pipeline) tag(ctx context.Context, prefs *entities.UserPreferences, input, output string) error {
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return fmt.Errorf("create metadata directory: %w", err)
	}
	return p.tagger.Tag(ctx, contracts.MetadataRequest{
		InputPath:     input,
		OutputPath:    output,
		Title:         prefs.Title,
		Artist:        prefs.Artist,
		Author:        prefs.Author,
		VideoTitle:    prefs.VideoTitle,
		AudioTitle:    prefs.AudioTitle,
		SubtitleTitle: prefs.SubtitleTitle,
	})
}

// prepareThumbnail downloads the user's thumbnail, or the one embedded in
// the message, and resizes it. Any failure yields "" and the upload goes
// out without a thumbnail.
func (p *Pipeline) prepareThumbnail(ctx context.Context, client contracts.TelegramGateway, prefs *entities.UserPreferences, media sourceMedia, dst string) string {
	fileID := prefs.Thumbnail
	if fileID == "" {
		fileID = media.thumbID
	}
	if fileID == "" {
		return ""
	}

	if err := client.DownloadFile(ctx, fileID, dst, nil); err != nil {
		logger.Warn("Thumbnail download failed", "file_id", fileID, "error", err)
		removeQuietly(dst)
		return ""
	}
	if p.thumbs != nil {
		if err := p.thumbs.Process(ctx, dst); err != nil {
			logger.Warn("Thumbnail processing failed", "path", dst, "error", err)
			removeQuietly(dst)
			return ""
		}
	}
	return dst
}

// cleanup removes every file the job produced.
func (p *Pipeline) cleanup(jobID string, dirs ...string) {
	for _, dir := range dirs {
		if err := os.RemoveAll(dir); err != nil {
			logger.Warn("Failed to clean up job directory", "job_id", jobID, "path", dir, "error", err)
		}
	}
	p.mu.Lock()
	delete(p.active, jobID)
	p.mu.Unlock()
}

func (p *Pipeline) reply(ctx context.Context, client contracts.TelegramGateway, chatID int64, replyTo int, text string) {
	if _, err := client.Reply(ctx, chatID, replyTo, text); err != nil {
		logger.Warn("Failed to send reply", "chat_id", chatID, "error", err)
	}
}

func (p *Pipeline) edit(ctx context.Context, client contracts.TelegramGateway, chatID int64, messageID int, text string) {
	if err := client.EditText(ctx, chatID, messageID, text); err != nil {
		logger.Warn("Failed to update status message", "chat_id", chatID, "message_id", messageID, "error", err)
	}
}

// toolOutput returns the raw output of a failed external tool, or the
// error text when there is none.
func toolOutput(err error) string {
	var toolErr *contracts.ToolError
	if errors.As(err, &toolErr) && toolErr.Output != "" {
		return toolErr.Output
	}
	return err.Error()
}

func removeQuietly(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.Debug("Failed to remove file", "path", path, "error", err)
	}
}
