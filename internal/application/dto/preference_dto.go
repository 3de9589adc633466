package dto

import (
	"time"

	"github.com/easayliu/tg-autorename/internal/domain/entities"
)

// PreferencesRequest 管理接口写入的用户偏好，整体覆盖
type PreferencesRequest struct {
	FormatTemplate string `json:"format_template" binding:"required" example:"Show S{season}E{episode} [QUALITY]"`
	MediaType      string `json:"media_type" example:"video"`
	Caption        string `json:"caption" example:"{filename} | {filesize} | {duration}"`
	Thumbnail      string `json:"thumbnail"`
	Title          string `json:"title"`
	Artist         string `json:"artist"`
	Author         string `json:"author"`
	VideoTitle     string `json:"video_title"`
	AudioTitle     string `json:"audio_title"`
	SubtitleTitle  string `json:"subtitle_title"`
}

// ToEntity 转换为实体
func (r PreferencesRequest) ToEntity(userID int64) *entities.UserPreferences {
	return &entities.UserPreferences{
		UserID:         userID,
		FormatTemplate: r.FormatTemplate,
		MediaType:      r.MediaType,
		Caption:        r.Caption,
		Thumbnail:      r.Thumbnail,
		Title:          r.Title,
		Artist:         r.Artist,
		Author:         r.Author,
		VideoTitle:     r.VideoTitle,
		AudioTitle:     r.AudioTitle,
		SubtitleTitle:  r.SubtitleTitle,
	}
}

// PreferencesResponse 用户偏好响应
type PreferencesResponse struct {
	UserID         int64     `json:"user_id"`
	FormatTemplate string    `json:"format_template"`
	MediaType      string    `json:"media_type"`
	Caption        string    `json:"caption"`
	Thumbnail      string    `json:"thumbnail"`
	Title          string    `json:"title"`
	Artist         string    `json:"artist"`
	Author         string    `json:"author"`
	VideoTitle     string    `json:"video_title"`
	AudioTitle     string    `json:"audio_title"`
	SubtitleTitle  string    `json:"subtitle_title"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewPreferencesResponse 从实体构造响应
func NewPreferencesResponse(p *entities.UserPreferences) PreferencesResponse {
	return PreferencesResponse{
		UserID:         p.UserID,
		FormatTemplate: p.FormatTemplate,
		MediaType:      p.MediaType,
		Caption:        p.Caption,
		Thumbnail:      p.Thumbnail,
		Title:          p.Title,
		Artist:         p.Artist,
		Author:         p.Author,
		VideoTitle:     p.VideoTitle,
		AudioTitle:     p.AudioTitle,
		SubtitleTitle:  p.SubtitleTitle,
		UpdatedAt:      p.UpdatedAt,
	}
}
