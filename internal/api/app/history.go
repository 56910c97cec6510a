package app

import (
	"context"
	"encoding/json"

	"github.com/bestony/mintranslate/internal/domain"
	"github.com/bestony/mintranslate/internal/ports"
)

const defaultHistoryPageSize = 20

type HistoryAPI struct {
	repo ports.HistoryRepository
}

func NewHistoryAPI(repo ports.HistoryRepository) *HistoryAPI { return &HistoryAPI{repo: repo} }

type HistoryPage struct {
	Items    []*domain.HistoryRecord `json:"items"`
	Total    int                     `json:"total"`
	Page     int                     `json:"page"`
	PageSize int                     `json:"pageSize"`
}

// List returns a newest-first page of history. Pages are 1-based.
func (a *HistoryAPI) List(page, pageSize int) (HistoryPage, error) {
	ctx := context.Background()
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultHistoryPageSize
	}
	total, err := a.repo.Count(ctx)
	if err != nil {
		return HistoryPage{}, err
	}
	items, err := a.repo.List(ctx, pageSize, (page-1)*pageSize)
	if err != nil {
		return HistoryPage{}, err
	}
	return HistoryPage{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}

func (a *HistoryAPI) Delete(id string) error {
	return a.repo.Delete(context.Background(), id)
}

func (a *HistoryAPI) Clear() error {
	return a.repo.Clear(context.Background())
}

// ExportJSON serializes the full history, newest first, for saving to a file
// on the frontend side.
func (a *HistoryAPI) ExportJSON() (string, error) {
	ctx := context.Background()
	items, err := a.repo.List(ctx, 0, 0)
	if err != nil {
		return "", err
	}
	b, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}
