package entities

import (
	"time"
)

// UserPreferences 用户的重命名偏好，由持久化层维护，核心流程只读
type UserPreferences struct {
	UserID         int64     `json:"user_id" gorm:"primaryKey;autoIncrement:false"`
	FormatTemplate string    `json:"format_template"`
	MediaType      string    `json:"media_type"`     // document / video / audio，空值跟随消息类型
	Caption        string    `json:"caption"`        // 支持 {filename} {filesize} {duration}
	Thumbnail      string    `json:"thumbnail"`      // Telegram file_id
	Title          string    `json:"title"`
	Artist         string    `json:"artist"`
	Author         string    `json:"author"`
	VideoTitle     string    `json:"video_title"`
	AudioTitle     string    `json:"audio_title"`
	SubtitleTitle  string    `json:"subtitle_title"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName gorm 表名
func (UserPreferences) TableName() string {
	return "user_preferences"
}

// HasTemplate 是否已设置自动重命名模板
func (p *UserPreferences) HasTemplate() bool {
	return p != nil && p.FormatTemplate != ""
}
