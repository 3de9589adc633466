package utils

import (
	"strings"

	"github.com/easayliu/tg-autorename/internal/domain/services/filename"
	"github.com/easayliu/tg-autorename/pkg/logger"
)

// 模板占位符
const (
	PlaceholderEpisodeBracket = "[EP.NUM]"
	PlaceholderEpisodeBrace   = "{episode}"
	PlaceholderSeasonBracket  = "[SE.NUM]"
	PlaceholderSeasonBrace    = "{season}"
	PlaceholderVolume         = "[Vol{volume}]"
	PlaceholderChapter        = "[Ch{chapter}]"
	PlaceholderQualityBracket = "[QUALITY]"
	PlaceholderQualityBrace   = "{quality}"
)

// TemplateRenderer 模板渲染引擎 - 将用户模板和提取的变量渲染成文件名
type TemplateRenderer struct {
	pathReplacer *strings.Replacer
}

// NewTemplateRenderer 创建模板渲染器
func NewTemplateRenderer() *TemplateRenderer {
	return &TemplateRenderer{
		// 文件名里的路径分隔符会让输出落到工作目录之外
		pathReplacer: strings.NewReplacer("/", "_", "\\", "_", "\x00", ""),
	}
}

// RenderStem 把提取结果代入模板，返回不带扩展名的文件名
// 替换顺序: 集数、季数、卷+章(成对)、画质；缺失的变量保留原占位符
func (r *TemplateRenderer) RenderStem(template string, tokens filename.Tokens) string {
	result := template

	if tokens.Episode != "" {
		result = strings.ReplaceAll(result, PlaceholderEpisodeBracket, tokens.Episode)
		result = strings.ReplaceAll(result, PlaceholderEpisodeBrace, tokens.Episode)
	}

	if tokens.Season != "" {
		result = strings.ReplaceAll(result, PlaceholderSeasonBracket, tokens.Season)
		result = strings.ReplaceAll(result, PlaceholderSeasonBrace, tokens.Season)
	}

	if tokens.HasVolumeChapter() {
		result = strings.ReplaceAll(result, PlaceholderVolume, "Vol"+tokens.Volume)
		result = strings.ReplaceAll(result, PlaceholderChapter, "Ch"+tokens.Chapter)
	}

	if tokens.QualityKnown() {
		result = strings.ReplaceAll(result, PlaceholderQualityBracket, tokens.Quality)
		result = strings.ReplaceAll(result, PlaceholderQualityBrace, tokens.Quality)
	}

	logger.Debug("Template rendering completed", "template", template, "result", result)
	return result
}

// RenderFilename 渲染文件名并原样拼接原扩展名
func (r *TemplateRenderer) RenderFilename(template string, tokens filename.Tokens, ext string) string {
	return r.SanitizeFilename(r.RenderStem(template, tokens) + ext)
}

// SanitizeFilename 去掉会改变目录层级的字符
func (r *TemplateRenderer) SanitizeFilename(name string) string {
	cleaned := strings.TrimSpace(r.pathReplacer.Replace(name))
	if cleaned == "" || cleaned == "." || cleaned == ".." {
		return "file"
	}
	return cleaned
}

// Render 渲染 {key} 形式的模板，未知变量保持原样
func (r *TemplateRenderer) Render(template string, vars map[string]string) string {
	result := template
	for key, value := range vars {
		result = strings.ReplaceAll(result, "{"+key+"}", value)
	}
	return result
}

// ValidateTemplate 检查模板里是否至少有一个可识别的占位符
func (r *TemplateRenderer) ValidateTemplate(template string) bool {
	for _, p := range []string{
		PlaceholderEpisodeBracket, PlaceholderEpisodeBrace,
		PlaceholderSeasonBracket, PlaceholderSeasonBrace,
		PlaceholderVolume, PlaceholderChapter,
		PlaceholderQualityBracket, PlaceholderQualityBrace,
	} {
		if strings.Contains(template, p) {
			return true
		}
	}
	return false
}
