package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/easayliu/tg-autorename/pkg/logger"
	"github.com/spf13/viper"
)

// EnvPrefix 环境变量前缀，例如 AUTORENAME_TELEGRAM_BOT_TOKEN
const EnvPrefix = "AUTORENAME"

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Telegram    TelegramConfig    `mapstructure:"telegram"`
	Rename      RenameConfig      `mapstructure:"rename"`
	Preferences PreferencesConfig `mapstructure:"preferences"`
	Storage     StorageConfig     `mapstructure:"storage"`
	Safety      SafetyConfig      `mapstructure:"safety"`
	Janitor     JanitorConfig     `mapstructure:"janitor"`
	Log         LogConfig         `mapstructure:"log"`
}

type ServerConfig struct {
	Enabled bool   `mapstructure:"enabled"` // 管理接口与 webhook 共用
	Host    string `mapstructure:"host"`
	Port    string `mapstructure:"port"`
	Mode    string `mapstructure:"mode"`
}

type TelegramConfig struct {
	BotToken     string        `mapstructure:"bot_token"`
	APIEndpoint  string        `mapstructure:"api_endpoint"`  // 自建 Bot API 服务器时填写，需包含 %s 占位
	FileEndpoint string        `mapstructure:"file_endpoint"` // 文件下载地址；为空时由 api_endpoint 推导
	PollTimeout  int           `mapstructure:"poll_timeout"`  // 长轮询超时（秒）
	Debug        bool          `mapstructure:"debug"`
	Webhook      WebhookConfig `mapstructure:"webhook"`
}

type WebhookConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`  // 对外可访问的完整地址
	Path    string `mapstructure:"path"` // 本地路由
}

type RenameConfig struct {
	Workers          int           `mapstructure:"workers"`
	DedupWindow      time.Duration `mapstructure:"dedup_window"`
	DownloadDir      string        `mapstructure:"download_dir"`
	MetadataDir      string        `mapstructure:"metadata_dir"`
	ThumbnailSize    int           `mapstructure:"thumbnail_size"`
	FFmpegPath       string        `mapstructure:"ffmpeg_path"`
	ProgressInterval time.Duration `mapstructure:"progress_interval"` // 进度消息最小编辑间隔
}

type PreferencesConfig struct {
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

type StorageConfig struct {
	DatabasePath string `mapstructure:"database_path"`
}

type SafetyConfig struct {
	Enabled         bool     `mapstructure:"enabled"`
	BlockedKeywords []string `mapstructure:"blocked_keywords"`
}

type JanitorConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Schedule string        `mapstructure:"schedule"` // cron 表达式或 @every 形式
	MaxAge   time.Duration `mapstructure:"max_age"`  // 超过该时长的残留文件会被删除
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	Output     string `mapstructure:"output"`
	Format     string `mapstructure:"format"`
	FilePath   string `mapstructure:"file_path"`
	Colorize   bool   `mapstructure:"colorize"`
	AddSource  bool   `mapstructure:"add_source"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// LoggerOptions 转换为日志初始化参数
func (c LogConfig) LoggerOptions() logger.Options {
	return logger.Options{
		Level:      c.Level,
		Output:     c.Output,
		Format:     c.Format,
		FilePath:   c.FilePath,
		Colorize:   c.Colorize,
		AddSource:  c.AddSource,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
	}
}

// Address 返回 HTTP 监听地址
func (c ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

// LoadConfig 从 ./configs 或当前目录读取 config.yaml，环境变量优先
func LoadConfig() (*Config, error) {
	return Load("")
}

// Load 读取指定配置文件；path 为空时按默认路径查找
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.enabled", true)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "release")

	v.SetDefault("telegram.bot_token", "")
	v.SetDefault("telegram.api_endpoint", "")
	v.SetDefault("telegram.file_endpoint", "")
	v.SetDefault("telegram.poll_timeout", 60)
	v.SetDefault("telegram.debug", false)
	v.SetDefault("telegram.webhook.enabled", false)
	v.SetDefault("telegram.webhook.url", "")
	v.SetDefault("telegram.webhook.path", "/api/v1/telegram/webhook")

	// 重命名流程默认值
	v.SetDefault("rename.workers", 3)
	v.SetDefault("rename.dedup_window", "10s")
	v.SetDefault("rename.download_dir", "downloads")
	v.SetDefault("rename.metadata_dir", "Metadata")
	v.SetDefault("rename.thumbnail_size", 320)
	v.SetDefault("rename.ffmpeg_path", "ffmpeg")
	v.SetDefault("rename.progress_interval", "5s")

	v.SetDefault("preferences.cache_ttl", "5s")
	v.SetDefault("storage.database_path", "data/autorename.db")

	v.SetDefault("safety.enabled", true)
	v.SetDefault("safety.blocked_keywords", []string{})

	// 清理残留文件
	v.SetDefault("janitor.enabled", true)
	v.SetDefault("janitor.schedule", "@every 30m")
	v.SetDefault("janitor.max_age", "6h")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.output", "console")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file_path", "logs/autorename.log")
	v.SetDefault("log.colorize", true)
	v.SetDefault("log.add_source", false)
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 5)
}

// Validate 检查运行所需的配置项
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Telegram.BotToken) == "" {
		problems = append(problems, "telegram.bot_token is required")
	}
	if c.Telegram.APIEndpoint != "" && !strings.Contains(c.Telegram.APIEndpoint, "%s") {
		problems = append(problems, "telegram.api_endpoint must contain %s placeholders")
	}
	if c.Telegram.FileEndpoint != "" && strings.Count(c.Telegram.FileEndpoint, "%s") != 2 {
		problems = append(problems, "telegram.file_endpoint must contain two %s placeholders")
	}
	if c.Telegram.Webhook.Enabled {
		if c.Telegram.Webhook.URL == "" {
			problems = append(problems, "telegram.webhook.url is required when webhook is enabled")
		}
		if !c.Server.Enabled {
			problems = append(problems, "server.enabled must be true when webhook is enabled")
		}
	}
	if c.Rename.Workers <= 0 {
		problems = append(problems, "rename.workers must be positive")
	}
	if c.Rename.DownloadDir == "" || c.Rename.MetadataDir == "" {
		problems = append(problems, "rename.download_dir and rename.metadata_dir are required")
	}
	if c.Rename.DownloadDir != "" && c.Rename.DownloadDir == c.Rename.MetadataDir {
		problems = append(problems, "rename.download_dir and rename.metadata_dir must differ")
	}
	if c.Storage.DatabasePath == "" {
		problems = append(problems, "storage.database_path is required")
	}
	if c.Janitor.Enabled && c.Janitor.MaxAge <= 0 {
		problems = append(problems, "janitor.max_age must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}
