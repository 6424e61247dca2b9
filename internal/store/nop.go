package store

import (
	"context"

	"github.com/buscajob/buscajob/internal/model"
)

// NopStore is used when persistence is disabled. Nothing is kept, so
// LatestCriteria always reports model.ErrNotFound and every favorite is new.
type NopStore struct{}

func NewNopStore() *NopStore { return &NopStore{} }

func (NopStore) SaveCriteria(_ context.Context, c model.SearchCriteria) (model.SavedCriteria, error) {
	return model.SavedCriteria{ID: "config_nop", Criteria: c.Clone()}, nil
}

func (NopStore) ListCriteria(context.Context) ([]model.SavedCriteria, error) {
	return []model.SavedCriteria{}, nil
}

func (NopStore) LatestCriteria(context.Context) (model.SavedCriteria, error) {
	return model.SavedCriteria{}, model.ErrNotFound
}

func (NopStore) SaveFavorite(context.Context, string) (bool, error) { return true, nil }
func (NopStore) Close() error                                       { return nil }
