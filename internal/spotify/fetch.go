package spotify

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/justestif/spotify-history-warehouse/internal/batch"
)

// FetchAll fetches ids in batches of size, strictly in order, and returns the
// response pages in batch order. Any failed batch aborts the whole fetch.
// Progress is logged through the logger carried by ctx.
func FetchAll(ctx context.Context, f Fetcher, kind Kind, ids []string, size int) ([][]byte, error) {
	total, err := batch.Count(len(ids), size)
	if err != nil {
		return nil, fmt.Errorf("planning %s batches: %w", kind, err)
	}

	log := zerolog.Ctx(ctx)
	pages := make([][]byte, 0, total)
	for b := range batch.Plan(ids, size) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		log.Debug().
			Str("kind", kind.String()).
			Int("batch", b.Index+1).
			Int("batches", total).
			Int("from", b.Start+1).
			Int("to", b.End()).
			Int("of", len(ids)).
			Msg("fetching batch")

		page, err := f.Fetch(ctx, kind, b.Query())
		if err != nil {
			return nil, fmt.Errorf("fetching %s %d-%d of %d: %w", kind, b.Start+1, b.End(), len(ids), err)
		}
		pages = append(pages, page)
	}

	log.Info().Str("kind", kind.String()).Int("ids", len(ids)).Int("batches", total).Msg("fetched")
	return pages, nil
}
