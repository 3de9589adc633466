package valueobjects

import "strings"

// MediaKind 媒体类型值对象
// 决定上传方式: 文档、视频或音频
type MediaKind string

const (
	MediaKindDocument MediaKind = "document"
	MediaKindVideo    MediaKind = "video"
	MediaKindAudio    MediaKind = "audio"
	MediaKindUnknown  MediaKind = "unknown"
)

// MimeTypePDF 不需要画质标记的文档类型
const MimeTypePDF = "application/pdf"

// String 返回媒体类型的字符串表示
func (m MediaKind) String() string {
	return string(m)
}

// IsValid 检查是否为可上传的类型
func (m MediaKind) IsValid() bool {
	switch m {
	case MediaKindDocument, MediaKindVideo, MediaKindAudio:
		return true
	default:
		return false
	}
}

// NewMediaKind 解析用户偏好里的类型，无法识别时返回 MediaKindUnknown
func NewMediaKind(value string) MediaKind {
	mk := MediaKind(strings.ToLower(strings.TrimSpace(value)))
	if mk.IsValid() {
		return mk
	}
	return MediaKindUnknown
}

// ResolveUploadKind 用户偏好优先，否则沿用消息本身的类型
func ResolveUploadKind(preference string, source MediaKind) MediaKind {
	if pref := NewMediaKind(preference); pref.IsValid() {
		return pref
	}
	return source
}

// IsQualityExempt 判断文件是否跳过画质提取
func IsQualityExempt(kind MediaKind, mimeType string) bool {
	return kind == MediaKindDocument && strings.EqualFold(strings.TrimSpace(mimeType), MimeTypePDF)
}
