package pipeline

import (
	"context"
	"fmt"

	"github.com/couchcryptid/lagoon-weather-risk/internal/domain"
)

// MultiLoader fans a batch out to several loaders in order. The first
// failure aborts the batch so offsets are not committed.
type MultiLoader []BatchLoader

func (m MultiLoader) LoadBatch(ctx context.Context, assessments []domain.Assessment) error {
	for i, l := range m {
		if l == nil {
			continue
		}
		if err := l.LoadBatch(ctx, assessments); err != nil {
			return fmt.Errorf("loader %d: %w", i, err)
		}
	}
	return nil
}
