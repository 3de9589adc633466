package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/easayliu/tg-autorename/internal/domain/entities"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// ErrPreferencesNotFound 用户尚未保存任何偏好
var ErrPreferencesNotFound = errors.New("preferences not found")

// PreferenceRepository 用户偏好存储（SQLite）
type PreferenceRepository struct {
	db *gorm.DB
}

// NewPreferenceRepository 打开数据库并迁移表结构
func NewPreferenceRepository(databasePath string) (*PreferenceRepository, error) {
	// 确保数据目录存在
	if dir := filepath.Dir(databasePath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(databasePath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&entities.UserPreferences{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &PreferenceRepository{db: db}, nil
}

// Get 按用户ID读取偏好，不存在时返回 ErrPreferencesNotFound
func (r *PreferenceRepository) Get(ctx context.Context, userID int64) (*entities.UserPreferences, error) {
	var prefs entities.UserPreferences
	err := r.db.WithContext(ctx).First(&prefs, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPreferencesNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load preferences for user %d: %w", userID, err)
	}
	return &prefs, nil
}

// Save 写入或整体覆盖用户偏好
func (r *PreferenceRepository) Save(ctx context.Context, prefs *entities.UserPreferences) error {
	if prefs == nil || prefs.UserID == 0 {
		return errors.New("preferences must have a user id")
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns(preferenceColumns),
	}).Create(prefs).Error
	if err != nil {
		return fmt.Errorf("failed to save preferences for user %d: %w", prefs.UserID, err)
	}
	return nil
}

// Delete 删除用户偏好
func (r *PreferenceRepository) Delete(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).Delete(&entities.UserPreferences{}, "user_id = ?", userID).Error
}

// Count 返回已保存偏好的用户数
func (r *PreferenceRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entities.UserPreferences{}).Count(&n).Error
	return n, err
}

// Close 关闭数据库连接
func (r *PreferenceRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// 覆盖写入时更新的列，created_at 保持不变
var preferenceColumns = []string{
	"format_template", "media_type", "caption", "thumbnail",
	"title", "artist", "author", "video_title", "audio_title", "subtitle_title",
	"updated_at",
}
