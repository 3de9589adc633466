package preferences

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/easayliu/tg-autorename/internal/domain/entities"
	"github.com/easayliu/tg-autorename/internal/infrastructure/repository"
	apperrors "github.com/easayliu/tg-autorename/internal/shared/errors"
)

type memoryStore struct {
	mu    sync.Mutex
	data  map[int64]entities.UserPreferences
	gets  atomic.Int64
	delay time.Duration
	err   error

	// entered/gate 让读取在拿到数据之后暂停，模拟慢查询
	entered chan struct{}
	gate    chan struct{}
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: make(map[int64]entities.UserPreferences)}
}

func (m *memoryStore) Get(_ context.Context, userID int64) (*entities.UserPreferences, error) {
	m.gets.Add(1)
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	p, ok := m.data[userID]
	entered, gate := m.entered, m.gate
	m.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
		<-gate
	}
	if !ok {
		return nil, repository.ErrPreferencesNotFound
	}
	return &p, nil
}

func (m *memoryStore) Save(_ context.Context, prefs *entities.UserPreferences) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[prefs.UserID] = *prefs
	return nil
}

func TestService_CachesReads(t *testing.T) {
	store := newMemoryStore()
	store.data[1] = entities.UserPreferences{UserID: 1, FormatTemplate: "E{episode}"}
	svc := NewService(store, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		prefs, err := svc.GetPreferences(ctx, 1)
		if err != nil {
			t.Fatalf("GetPreferences failed: %v", err)
		}
		if prefs.FormatTemplate != "E{episode}" {
			t.Fatalf("unexpected template %q", prefs.FormatTemplate)
		}
	}
	if got := store.gets.Load(); got != 1 {
		t.Errorf("store reads = %d, want 1", got)
	}
}

func TestService_MissingUserIsNil(t *testing.T) {
	svc := NewService(newMemoryStore(), time.Minute)

	prefs, err := svc.GetPreferences(context.Background(), 99)
	if err != nil {
		t.Fatalf("GetPreferences failed: %v", err)
	}
	if prefs != nil {
		t.Fatalf("expected nil preferences, got %+v", prefs)
	}
	if prefs.HasTemplate() {
		t.Fatal("nil preferences must not have a template")
	}
}

func TestService_SaveInvalidatesCache(t *testing.T) {
	store := newMemoryStore()
	svc := NewService(store, time.Minute)
	ctx := context.Background()

	if prefs, _ := svc.GetPreferences(ctx, 5); prefs != nil {
		t.Fatal("expected no preferences yet")
	}
	if err := svc.SavePreferences(ctx, &entities.UserPreferences{UserID: 5, FormatTemplate: "[EP.NUM]", MediaType: " Video "}); err != nil {
		t.Fatalf("SavePreferences failed: %v", err)
	}

	prefs, err := svc.GetPreferences(ctx, 5)
	if err != nil {
		t.Fatalf("GetPreferences failed: %v", err)
	}
	if prefs == nil || prefs.FormatTemplate != "[EP.NUM]" {
		t.Fatalf("stale cache after save: %+v", prefs)
	}
	if prefs.MediaType != "video" {
		t.Errorf("MediaType = %q, want normalised %q", prefs.MediaType, "video")
	}
}

func TestService_ReturnsCopies(t *testing.T) {
	store := newMemoryStore()
	store.data[1] = entities.UserPreferences{UserID: 1, FormatTemplate: "E{episode}"}
	svc := NewService(store, time.Minute)
	ctx := context.Background()

	first, _ := svc.GetPreferences(ctx, 1)
	first.FormatTemplate = "changed"

	second, _ := svc.GetPreferences(ctx, 1)
	if second.FormatTemplate != "E{episode}" {
		t.Fatalf("cached entry was mutated: %q", second.FormatTemplate)
	}
}

func TestService_SaveValidation(t *testing.T) {
	svc := NewService(newMemoryStore(), time.Minute)
	ctx := context.Background()

	tests := []*entities.UserPreferences{
		nil,
		{FormatTemplate: "x"},
		{UserID: 1, MediaType: "photo"},
	}
	for _, prefs := range tests {
		err := svc.SavePreferences(ctx, prefs)
		if !apperrors.HasCode(err, apperrors.ErrorCodeInvalidRequest) {
			t.Errorf("SavePreferences(%+v) = %v, want INVALID_REQUEST", prefs, err)
		}
	}
}

func TestService_StoreErrorNotCached(t *testing.T) {
	store := newMemoryStore()
	store.err = errors.New("database is locked")
	svc := NewService(store, time.Minute)
	ctx := context.Background()

	if _, err := svc.GetPreferences(ctx, 1); err == nil {
		t.Fatal("expected store error")
	}
	store.err = nil
	store.data[1] = entities.UserPreferences{UserID: 1, FormatTemplate: "x"}
	prefs, err := svc.GetPreferences(ctx, 1)
	if err != nil || prefs == nil {
		t.Fatalf("GetPreferences after recovery = %+v, %v", prefs, err)
	}
}

func TestService_ConcurrentReadsCollapse(t *testing.T) {
	store := newMemoryStore()
	store.data[1] = entities.UserPreferences{UserID: 1, FormatTemplate: "x"}
	store.delay = 50 * time.Millisecond
	svc := NewService(store, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.GetPreferences(context.Background(), 1); err != nil {
				t.Errorf("GetPreferences failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := store.gets.Load(); got > 2 {
		t.Errorf("store reads = %d, want concurrent reads collapsed", got)
	}
}

func TestService_SaveDuringLoadIsNotOverwritten(t *testing.T) {
	store := newMemoryStore()
	store.data[1] = entities.UserPreferences{UserID: 1, FormatTemplate: "old"}
	gate := make(chan struct{})
	store.entered = make(chan struct{})
	store.gate = gate
	svc := NewService(store, time.Minute)
	ctx := context.Background()

	done := make(chan *entities.UserPreferences)
	go func() {
		prefs, err := svc.GetPreferences(ctx, 1)
		if err != nil {
			t.Errorf("GetPreferences failed: %v", err)
		}
		done <- prefs
	}()

	// 读取已拿到旧数据但尚未返回时保存新偏好
	<-store.entered
	if err := svc.SavePreferences(ctx, &entities.UserPreferences{UserID: 1, FormatTemplate: "new"}); err != nil {
		t.Fatalf("SavePreferences failed: %v", err)
	}
	store.mu.Lock()
	store.entered, store.gate = nil, nil
	store.mu.Unlock()
	close(gate)
	if prefs := <-done; prefs == nil || prefs.FormatTemplate != "old" {
		t.Fatalf("in-flight load = %+v, want template %q", prefs, "old")
	}

	prefs, err := svc.GetPreferences(ctx, 1)
	if err != nil {
		t.Fatalf("GetPreferences failed: %v", err)
	}
	if prefs == nil || prefs.FormatTemplate != "new" {
		t.Fatalf("GetPreferences after save = %+v, want template %q", prefs, "new")
	}
}
