package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

const (
	defaultBarWidth = 10
	barFilled       = "●"
	barEmpty        = "○"
)

// ProgressFormatter 传输进度格式化器 - 生成状态消息里的进度条文本
type ProgressFormatter struct {
	width int
}

// NewProgressFormatter 创建进度格式化器
func NewProgressFormatter() *ProgressFormatter {
	return &ProgressFormatter{width: defaultBarWidth}
}

// Bar 渲染进度条，例如 [●●●●○○○○○○] 40.0%
func (f *ProgressFormatter) Bar(percent float64) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := int(percent / 100 * float64(f.width))
	return fmt.Sprintf("[%s%s] %.1f%%",
		strings.Repeat(barFilled, filled),
		strings.Repeat(barEmpty, f.width-filled),
		percent)
}

// Format 生成完整的进度消息
// total 未知（<=0）时只显示已传输大小
func (f *ProgressFormatter) Format(label string, done, total int64, elapsed time.Duration) string {
	var sb strings.Builder
	sb.WriteString(label)
	sb.WriteString("\n\n")

	if total > 0 {
		percent := float64(done) * 100 / float64(total)
		sb.WriteString(f.Bar(percent))
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s of %s\n", humanize.Bytes(uint64(max(done, 0))), humanize.Bytes(uint64(total))))
	} else {
		sb.WriteString(fmt.Sprintf("%s\n", humanize.Bytes(uint64(max(done, 0)))))
	}

	speed := Speed(done, elapsed)
	sb.WriteString(fmt.Sprintf("Speed: %s/s\n", humanize.Bytes(uint64(speed))))

	if total > 0 && speed > 0 && done < total {
		eta := time.Duration(float64(total-done)/speed) * time.Second
		sb.WriteString(fmt.Sprintf("ETA: %s", eta.Round(time.Second)))
	} else {
		sb.WriteString("ETA: -")
	}
	return sb.String()
}

// Speed 计算平均速度（字节/秒）
func Speed(done int64, elapsed time.Duration) float64 {
	if done <= 0 || elapsed <= 0 {
		return 0
	}
	return float64(done) / elapsed.Seconds()
}

// FormatClock 把秒数格式化为 HH:MM:SS
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, seconds%3600/60, seconds%60)
}
