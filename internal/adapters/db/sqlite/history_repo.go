package sqlite

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"

	"github.com/bestony/mintranslate/internal/domain"
)

type HistoryRepo struct{ *Repo }

func NewHistoryRepo(db *sql.DB) *HistoryRepo { return &HistoryRepo{NewRepo(db)} }

func (r *HistoryRepo) Insert(ctx context.Context, rec *domain.HistoryRecord) error {
	q := r.SQ.Insert("translate_history").
		Columns("id", "created_at", "source_lang", "target_lang", "source_text", "translated_text").
		Values(rec.ID, rec.CreatedAt, string(rec.SourceLang), string(rec.TargetLang), rec.SourceText, rec.TranslatedText)
	sqlStr, args, _ := q.ToSql()
	_, err := r.DB.ExecContext(ctx, sqlStr, args...)
	return err
}

// List returns records newest-first. limit <= 0 means no limit.
func (r *HistoryRepo) List(ctx context.Context, limit, offset int) ([]*domain.HistoryRecord, error) {
	q := r.SQ.Select("id", "created_at", "source_lang", "target_lang", "source_text", "translated_text").
		From("translate_history").OrderBy("created_at DESC", "id")
	if limit > 0 {
		q = q.Limit(uint64(limit)).Offset(uint64(offset))
	}
	sqlStr, args, _ := q.ToSql()
	rows, err := r.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.HistoryRecord
	for rows.Next() {
		var rec domain.HistoryRecord
		var src, tgt string
		if err := rows.Scan(&rec.ID, &rec.CreatedAt, &src, &tgt, &rec.SourceText, &rec.TranslatedText); err != nil {
			return nil, err
		}
		rec.SourceLang = domain.Lang(src)
		rec.TargetLang = domain.Lang(tgt)
		out = append(out, &rec)
	}
	return out, rows.Err()
}

func (r *HistoryRepo) Count(ctx context.Context) (int, error) {
	q := r.SQ.Select("COUNT(*)").From("translate_history")
	sqlStr, args, _ := q.ToSql()
	var n int
	if err := r.DB.QueryRowContext(ctx, sqlStr, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *HistoryRepo) Delete(ctx context.Context, id string) error {
	q := r.SQ.Delete("translate_history").Where(sq.Eq{"id": id})
	sqlStr, args, _ := q.ToSql()
	_, err := r.DB.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *HistoryRepo) Clear(ctx context.Context) error {
	q := r.SQ.Delete("translate_history")
	sqlStr, args, _ := q.ToSql()
	_, err := r.DB.ExecContext(ctx, sqlStr, args...)
	return err
}
