package container

import (
	"context"
	"errors"
	"fmt"

	"github.com/easayliu/tg-autorename/internal/application/contracts"
	"github.com/easayliu/tg-autorename/internal/application/services/janitor"
	"github.com/easayliu/tg-autorename/internal/application/services/preferences"
	"github.com/easayliu/tg-autorename/internal/application/services/rename"
	"github.com/easayliu/tg-autorename/internal/domain/services/safety"
	"github.com/easayliu/tg-autorename/internal/infrastructure/config"
	"github.com/easayliu/tg-autorename/internal/infrastructure/ffmpeg"
	"github.com/easayliu/tg-autorename/internal/infrastructure/repository"
	"github.com/easayliu/tg-autorename/internal/infrastructure/telegram"
	"github.com/easayliu/tg-autorename/internal/infrastructure/thumbnail"
	telegramcontroller "github.com/easayliu/tg-autorename/internal/interfaces/telegram"
	"github.com/easayliu/tg-autorename/pkg/logger"
)

// ServiceContainer 服务容器 - 负责组装并管理各组件的生命周期
type ServiceContainer struct {
	config *config.Config

	preferenceRepo    *repository.PreferenceRepository
	preferenceService *preferences.Service
	tagger            *ffmpeg.Tagger
	pipeline          *rename.Pipeline
	workerPool        *rename.WorkerPool
	janitor           *janitor.Service

	telegramClient     *telegram.Client
	telegramController *telegramcontroller.TelegramController
}

// NewServiceContainer 按依赖顺序初始化所有服务
func NewServiceContainer(cfg *config.Config) (*ServiceContainer, error) {
	logger.Info("Initializing service container")

	c := &ServiceContainer{config: cfg}

	// 1. 基础设施层
	repo, err := repository.NewPreferenceRepository(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open preference store: %w", err)
	}
	c.preferenceRepo = repo

	c.tagger = ffmpeg.NewTagger(cfg.Rename.FFmpegPath)
	if path, err := c.tagger.CheckAvailable(); err != nil {
		// 不阻止启动，任务会在打标签时失败并回复用户
		logger.Warn("ffmpeg not available, renames will fail at the metadata step", "binary", cfg.Rename.FFmpegPath, "error", err)
	} else {
		logger.Info("Using ffmpeg", "path", path)
	}

	client, err := telegram.NewClient(&cfg.Telegram)
	if err != nil {
		repo.Close()
		return nil, err
	}
	c.telegramClient = client

	// 2. 应用层服务
	c.preferenceService = preferences.NewService(repo, cfg.Preferences.CacheTTL)

	c.pipeline = rename.NewPipeline(
		rename.PipelineConfig{
			DownloadDir:      cfg.Rename.DownloadDir,
			MetadataDir:      cfg.Rename.MetadataDir,
			ProgressInterval: cfg.Rename.ProgressInterval,
		},
		c.preferenceService,
		safety.NewKeywordScreener(cfg.Safety.Enabled, cfg.Safety.BlockedKeywords),
		c.tagger,
		thumbnail.NewResizer(cfg.Rename.ThumbnailSize),
		rename.NewRegistry(cfg.Rename.DedupWindow),
	)
	c.workerPool = rename.NewWorkerPool(cfg.Rename.Workers, c.pipeline)

	if cfg.Janitor.Enabled {
		c.janitor = janitor.NewService(cfg.Janitor.Schedule, cfg.Janitor.MaxAge, cfg.Rename.DownloadDir, cfg.Rename.MetadataDir)
		// 任务目录以 job ID 命名，运行中的任务不清理
		c.janitor.SkipInUse(c.pipeline.InFlight)
	}

	// 3. 接口层
	handler := telegramcontroller.NewMessageHandler(client, c.workerPool)
	c.telegramController = telegramcontroller.NewTelegramController(&cfg.Telegram, client, handler)

	logger.Info("Service container initialized", "workers", cfg.Rename.Workers, "safety", cfg.Safety.Enabled, "janitor", cfg.Janitor.Enabled)
	return c, nil
}

// Start 启动工作池、清理任务以及 Telegram 更新接收
func (c *ServiceContainer) Start(ctx context.Context) error {
	if err := c.workerPool.Start(ctx); err != nil {
		return err
	}
	if c.janitor != nil {
		if err := c.janitor.Start(); err != nil {
			return err
		}
	}

	if c.config.Telegram.Webhook.Enabled {
		if err := c.telegramClient.SetWebhook(c.config.Telegram.Webhook.URL); err != nil {
			return err
		}
		logger.Info("Telegram webhook registered", "url", c.config.Telegram.Webhook.URL)
		return nil
	}

	// 长轮询前需要删除已注册的 webhook
	if err := c.telegramClient.RemoveWebhook(); err != nil {
		logger.Warn("Failed to remove telegram webhook", "error", err)
	}
	c.telegramController.StartPolling(ctx)
	return nil
}

// Shutdown 按与启动相反的顺序停止各组件
func (c *ServiceContainer) Shutdown() error {
	c.telegramController.StopPolling()

	dropped := c.workerPool.Stop()
	if dropped > 0 {
		logger.Warn("Dropped pending rename jobs on shutdown", "count", dropped)
	}

	if c.janitor != nil {
		c.janitor.Stop()
	}

	var errs []error
	if err := c.preferenceRepo.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close preference store: %w", err))
	}
	return errors.Join(errs...)
}

// GetPreferenceService 获取用户偏好服务
func (c *ServiceContainer) GetPreferenceService() contracts.PreferenceService {
	return c.preferenceService
}

// GetRenameQueue 获取重命名队列
func (c *ServiceContainer) GetRenameQueue() contracts.RenameQueue {
	return c.workerPool
}

// GetTelegramController 获取 Telegram 控制器
func (c *ServiceContainer) GetTelegramController() *telegramcontroller.TelegramController {
	return c.telegramController
}
