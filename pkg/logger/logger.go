package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options 日志初始化参数
type Options struct {
	Level      string // debug, info, warn, error
	Output     string // console, file, both
	Format     string // text, json
	FilePath   string
	Colorize   bool
	AddSource  bool
	MaxSizeMB  int // 单个日志文件大小上限，0 使用默认值
	MaxBackups int
}

var (
	defaultLogger *slog.Logger
	levelVar      = new(slog.LevelVar)
	mu            sync.Mutex
)

const (
	ansiReset  = "\033[0m"
	ansiGray   = "\033[90m"
	ansiBlue   = "\033[34m"
	ansiYellow = "\033[33m"
	ansiRed    = "\033[31m"
)

// Init 初始化全局日志
func Init(opts Options) error {
	level, err := parseLevel(opts.Level)
	if err != nil {
		return err
	}

	writer, err := buildWriter(opts)
	if err != nil {
		return err
	}

	levelVar.Set(level)
	handlerOpts := &slog.HandlerOptions{
		Level:     levelVar,
		AddSource: opts.AddSource,
	}

	var handler slog.Handler
	if strings.EqualFold(opts.Format, "json") {
		handler = slog.NewJSONHandler(writer, handlerOpts)
	} else {
		// 仅控制台文本输出时着色，避免颜色码写进文件
		if opts.Colorize && outputMode(opts.Output) == "console" {
			handlerOpts.ReplaceAttr = colorizeLevel
		}
		handler = slog.NewTextHandler(writer, handlerOpts)
	}

	mu.Lock()
	defaultLogger = slog.New(handler)
	mu.Unlock()
	return nil
}

// SetLevel 动态调整日志级别
func SetLevel(level string) error {
	parsed, err := parseLevel(level)
	if err != nil {
		return err
	}
	levelVar.Set(parsed)
	return nil
}

// Get 返回底层 slog.Logger
func Get() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if defaultLogger == nil {
		levelVar.Set(slog.LevelInfo)
		defaultLogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: levelVar}))
	}
	return defaultLogger
}

// With 返回带固定字段的子日志
func With(args ...any) *slog.Logger {
	return Get().With(SanitizeArgs(args...)...)
}

func Debug(msg string, args ...any) {
	Get().Debug(msg, SanitizeArgs(args...)...)
}

func Info(msg string, args ...any) {
	Get().Info(msg, SanitizeArgs(args...)...)
}

func Warn(msg string, args ...any) {
	Get().Warn(msg, SanitizeArgs(args...)...)
}

func Error(msg string, args ...any) {
	Get().Error(msg, SanitizeArgs(args...)...)
}

func parseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
	}
}

func outputMode(output string) string {
	switch strings.ToLower(strings.TrimSpace(output)) {
	case "file":
		return "file"
	case "both":
		return "both"
	default:
		return "console"
	}
}

func buildWriter(opts Options) (io.Writer, error) {
	mode := outputMode(opts.Output)
	if mode == "console" {
		return os.Stdout, nil
	}

	if opts.FilePath == "" {
		return nil, fmt.Errorf("log file path is required for %s output", mode)
	}
	if err := os.MkdirAll(filepath.Dir(opts.FilePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	maxSize := opts.MaxSizeMB
	if maxSize <= 0 {
		maxSize = 50
	}
	file := &lumberjack.Logger{
		Filename:   opts.FilePath,
		MaxSize:    maxSize,
		MaxBackups: opts.MaxBackups,
	}
	// lumberjack 在首次写入时才创建文件
	if _, err := file.Write(nil); err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	if mode == "both" {
		return io.MultiWriter(os.Stdout, file), nil
	}
	return file, nil
}

func colorizeLevel(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey {
		return a
	}
	level, ok := a.Value.Any().(slog.Level)
	if !ok {
		return a
	}

	color := ansiGray
	switch {
	case level >= slog.LevelError:
		color = ansiRed
	case level >= slog.LevelWarn:
		color = ansiYellow
	case level >= slog.LevelInfo:
		color = ansiBlue
	}
	return slog.String(a.Key, color+level.String()+ansiReset)
}
