package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/easayliu/tg-autorename/internal/domain/entities"
)

func newTestRepository(t *testing.T) *PreferenceRepository {
	t.Helper()
	repo, err := NewPreferenceRepository(filepath.Join(t.TempDir(), "data", "bot.db"))
	if err != nil {
		t.Fatalf("NewPreferenceRepository failed: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestPreferenceRepository_GetMissing(t *testing.T) {
	repo := newTestRepository(t)

	_, err := repo.Get(context.Background(), 1)
	if !errors.Is(err, ErrPreferencesNotFound) {
		t.Fatalf("expected ErrPreferencesNotFound, got %v", err)
	}
}

func TestPreferenceRepository_SaveAndOverwrite(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	prefs := &entities.UserPreferences{
		UserID:         42,
		FormatTemplate: "S{season}E{episode} [QUALITY]",
		MediaType:      "video",
		Author:         "Codeflix",
	}
	if err := repo.Save(ctx, prefs); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := repo.Get(ctx, 42)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.FormatTemplate != prefs.FormatTemplate || got.Author != "Codeflix" || got.MediaType != "video" {
		t.Errorf("unexpected preferences: %+v", got)
	}

	update := &entities.UserPreferences{UserID: 42, FormatTemplate: "E{episode}", Caption: "{filename}"}
	if err := repo.Save(ctx, update); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}
	got, err = repo.Get(ctx, 42)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.FormatTemplate != "E{episode}" || got.Caption != "{filename}" {
		t.Errorf("overwrite not applied: %+v", got)
	}
	if got.Author != "" || got.MediaType != "" {
		t.Errorf("save should replace the whole record: %+v", got)
	}

	if n, err := repo.Count(ctx); err != nil || n != 1 {
		t.Errorf("Count() = %d, %v; want 1", n, err)
	}
}

func TestPreferenceRepository_SaveRequiresUserID(t *testing.T) {
	repo := newTestRepository(t)
	if err := repo.Save(context.Background(), &entities.UserPreferences{FormatTemplate: "x"}); err == nil {
		t.Fatal("expected error for missing user id")
	}
}

func TestPreferenceRepository_Delete(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	if err := repo.Save(ctx, &entities.UserPreferences{UserID: 7, FormatTemplate: "x"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := repo.Delete(ctx, 7); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := repo.Get(ctx, 7); !errors.Is(err, ErrPreferencesNotFound) {
		t.Fatalf("expected ErrPreferencesNotFound after delete, got %v", err)
	}
}
