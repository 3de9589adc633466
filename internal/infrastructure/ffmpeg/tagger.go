package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/easayliu/tg-autorename/internal/application/contracts"
	"github.com/easayliu/tg-autorename/pkg/logger"
)

// DefaultBinary ffmpeg 可执行文件名
const DefaultBinary = "ffmpeg"

// ErrBinaryNotFound 找不到 ffmpeg
var ErrBinaryNotFound = errors.New("ffmpeg not found. Please install ffmpeg to use this feature")

// commandRunner 执行外部命令，返回 stderr 输出
type commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Tagger 用 ffmpeg 复制流并写入元数据
type Tagger struct {
	binary   string
	run      commandRunner
	lookPath func(string) (string, error)
}

// NewTagger 创建元数据写入器，binary 为空时从 PATH 查找 ffmpeg
func NewTagger(binary string) *Tagger {
	if strings.TrimSpace(binary) == "" {
		binary = DefaultBinary
	}
	return &Tagger{
		binary:   binary,
		run:      defaultCommandRunner,
		lookPath: exec.LookPath,
	}
}

// WithCommandRunner 注入命令执行器，测试使用
func (t *Tagger) WithCommandRunner(r commandRunner) {
	if t != nil && r != nil {
		t.run = r
	}
}

// Binary 返回配置的可执行文件
func (t *Tagger) Binary() string {
	return t.binary
}

// CheckAvailable 检查 ffmpeg 是否可用，返回解析后的绝对路径
func (t *Tagger) CheckAvailable() (string, error) {
	path, err := t.lookPath(t.binary)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBinaryNotFound, err)
	}
	return path, nil
}

// Tag 把 InputPath 复制到 OutputPath 并写入元数据
// 失败时返回 *contracts.ToolError，Output 为 ffmpeg 的原始错误输出
func (t *Tagger) Tag(ctx context.Context, req contracts.MetadataRequest) error {
	if req.InputPath == "" || req.OutputPath == "" {
		return errors.New("input and output paths are required")
	}
	if _, err := os.Stat(req.InputPath); err != nil {
		return fmt.Errorf("input not found: %w", err)
	}

	binary, err := t.CheckAvailable()
	if err != nil {
		return err
	}

	args := BuildArgs(req)
	logger.Debug("Running ffmpeg", "binary", binary, "input", req.InputPath, "output", req.OutputPath)

	output, err := t.run(ctx, binary, args...)
	if err != nil {
		return &contracts.ToolError{
			Tool:   "ffmpeg",
			Output: strings.TrimSpace(string(output)),
			Err:    err,
		}
	}
	return nil
}

// BuildArgs 生成 ffmpeg 参数：全部流原样复制，只改元数据
func BuildArgs(req contracts.MetadataRequest) []string {
	return []string{
		"-y",
		"-i", req.InputPath,
		"-metadata", "title=" + req.Title,
		"-metadata", "artist=" + req.Artist,
		"-metadata", "author=" + req.Author,
		"-metadata:s:v", "title=" + req.VideoTitle,
		"-metadata:s:a", "title=" + req.AudioTitle,
		"-metadata:s:s", "title=" + req.SubtitleTitle,
		"-map", "0",
		"-c", "copy",
		"-loglevel", "error",
		req.OutputPath,
	}
}

func defaultCommandRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stderr.Bytes(), err
}
