package ports

import (
	"context"

	"github.com/bestony/mintranslate/internal/domain"
)

// KVStore is the simple synchronous settings storage (the fast store).
// Missing keys read as ("", false). Write failures are the caller's choice
// to surface or swallow.
type KVStore interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(key string) error
}

// SettingsRepository is the durable store for the single app-settings row.
type SettingsRepository interface {
	Get(ctx context.Context, id string) (*domain.AppSettings, error)
	Put(ctx context.Context, s *domain.AppSettings) error
}

// HistoryRepository is the translation history log. The orchestrator only
// inserts; listing, deletion and export belong to the UI-facing API layer.
type HistoryRepository interface {
	Insert(ctx context.Context, rec *domain.HistoryRecord) error
	List(ctx context.Context, limit, offset int) ([]*domain.HistoryRecord, error)
	Count(ctx context.Context) (int, error)
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) error
}
