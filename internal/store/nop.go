package store

import (
	"context"

	"github.com/zaydhassan/AspireOn/internal/model"
)

// NopStore wraps a read source for dry runs: reads go to the wrapped store,
// writes are discarded.
type NopStore struct {
	reader model.InsightStore
}

// NewNopStore returns a store that reads from reader (may be nil) and never writes.
func NewNopStore(reader model.InsightStore) *NopStore { return &NopStore{reader: reader} }

var _ model.InsightStore = (*NopStore)(nil)

func (s *NopStore) Upsert(ctx context.Context, in model.IndustryInsight) error { return nil }

func (s *NopStore) Get(ctx context.Context, industry string) (*model.IndustryInsight, error) {
	if s.reader == nil {
		return nil, model.ErrInsightNotFound
	}
	return s.reader.Get(ctx, industry)
}

func (s *NopStore) List(ctx context.Context) ([]model.IndustryInsight, error) {
	if s.reader == nil {
		return nil, nil
	}
	return s.reader.List(ctx)
}
