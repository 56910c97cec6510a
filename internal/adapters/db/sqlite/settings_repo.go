package sqlite

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"

	"github.com/bestony/mintranslate/internal/domain"
)

type SettingsRepo struct{ *Repo }

func NewSettingsRepo(db *sql.DB) *SettingsRepo { return &SettingsRepo{NewRepo(db)} }

// Get returns the settings row, or nil when it was never written.
func (r *SettingsRepo) Get(ctx context.Context, id string) (*domain.AppSettings, error) {
	q := r.SQ.Select("id", "system_prompt", "updated_at").From("app_settings").Where(sq.Eq{"id": id})
	sqlStr, args, _ := q.ToSql()
	row := r.DB.QueryRowContext(ctx, sqlStr, args...)
	var s domain.AppSettings
	if err := row.Scan(&s.ID, &s.SystemPrompt, &s.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *SettingsRepo) Put(ctx context.Context, s *domain.AppSettings) error {
	q := r.SQ.Insert("app_settings").Columns("id", "system_prompt", "updated_at").
		Values(s.ID, s.SystemPrompt, s.UpdatedAt).
		Suffix("ON CONFLICT(id) DO UPDATE SET system_prompt=excluded.system_prompt, updated_at=excluded.updated_at")
	sqlStr, args, _ := q.ToSql()
	_, err := r.DB.ExecContext(ctx, sqlStr, args...)
	return err
}
