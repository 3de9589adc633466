package preferences

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/autobrr/autobrr/pkg/ttlcache"
	"github.com/easayliu/tg-autorename/internal/domain/entities"
	"github.com/easayliu/tg-autorename/internal/domain/valueobjects"
	"github.com/easayliu/tg-autorename/internal/infrastructure/repository"
	apperrors "github.com/easayliu/tg-autorename/internal/shared/errors"
	"github.com/easayliu/tg-autorename/pkg/logger"
	"golang.org/x/sync/singleflight"
)

// DefaultCacheTTL 偏好缓存时间，足够覆盖同一用户连续发送的一批文件
const DefaultCacheTTL = 5 * time.Second

// Store 偏好持久化接口
type Store interface {
	Get(ctx context.Context, userID int64) (*entities.UserPreferences, error)
	Save(ctx context.Context, prefs *entities.UserPreferences) error
}

// Service 带短时缓存的偏好服务
type Service struct {
	store Store
	cache *ttlcache.Cache[int64, *entities.UserPreferences]
	group singleflight.Group

	// versions 每次保存或失效时递增，加载期间版本变化则不写缓存
	mu       sync.Mutex
	versions map[int64]uint64
}

// NewService 创建偏好服务，ttl<=0 时使用默认值
func NewService(store Store, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Service{
		store:    store,
		cache:    ttlcache.New(ttlcache.Options[int64, *entities.UserPreferences]{}.SetDefaultTTL(ttl)),
		versions: make(map[int64]uint64),
	}
}

// GetPreferences 读取用户偏好；用户没有保存过偏好时返回 nil, nil
func (s *Service) GetPreferences(ctx context.Context, userID int64) (*entities.UserPreferences, error) {
	if cached, found := s.cache.Get(userID); found {
		return clonePreferences(cached), nil
	}

	s.mu.Lock()
	version := s.versions[userID]
	s.mu.Unlock()

	// 同一用户同一版本的并发读取只访问一次数据库
	v, err, _ := s.group.Do(fmt.Sprintf("%d@%d", userID, version), func() (interface{}, error) {
		prefs, err := s.store.Get(ctx, userID)
		if errors.Is(err, repository.ErrPreferencesNotFound) {
			prefs, err = nil, nil
		}
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		if s.versions[userID] == version {
			s.cache.Set(userID, prefs, ttlcache.DefaultTTL)
		}
		s.mu.Unlock()
		return prefs, nil
	})
	if err != nil {
		return nil, err
	}
	return clonePreferences(v.(*entities.UserPreferences)), nil
}

// SavePreferences 校验并保存偏好，同时使缓存失效
func (s *Service) SavePreferences(ctx context.Context, prefs *entities.UserPreferences) error {
	if prefs == nil || prefs.UserID == 0 {
		return apperrors.NewServiceError(apperrors.ErrorCodeInvalidRequest, "user_id is required")
	}
	prefs.MediaType = strings.ToLower(strings.TrimSpace(prefs.MediaType))
	if prefs.MediaType != "" && !valueobjects.NewMediaKind(prefs.MediaType).IsValid() {
		return apperrors.NewServiceError(apperrors.ErrorCodeInvalidRequest, "media_type must be document, video or audio")
	}

	if err := s.store.Save(ctx, prefs); err != nil {
		return apperrors.NewServiceErrorWithCause(apperrors.ErrorCodeInternalError, "failed to save preferences", err)
	}
	s.Invalidate(prefs.UserID)
	logger.Info("User preferences saved", "user_id", prefs.UserID, "template", prefs.FormatTemplate)
	return nil
}

// Invalidate 丢弃用户的缓存条目，正在进行的加载结果也不会再写入缓存
func (s *Service) Invalidate(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.versions[userID]++
	s.cache.Delete(userID)
}

func clonePreferences(p *entities.UserPreferences) *entities.UserPreferences {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}
