package cli

import (
	"context"
	"fmt"

	"github.com/justestif/spotify-history-warehouse/internal/db"
	"github.com/justestif/spotify-history-warehouse/internal/moods"
)

// Execute implements the go-flags Commander interface for MoodsCommand.
func (c *MoodsCommand) Execute(args []string) error {
	ctx := context.Background()
	_, sink, err := c.globals.setup(ctx)
	if err != nil {
		return err
	}
	defer sink.Close()

	wh := db.NewWarehouse(sink)
	features, err := wh.TrackFeatures(ctx)
	if err != nil {
		return err
	}
	listening, err := wh.TrackListening(ctx)
	if err != nil {
		return err
	}

	cfg := moods.DefaultConfig()
	cfg.K = c.K
	result, err := moods.Detect(features, listening, cfg)
	if err != nil {
		return err
	}

	if c.globals.JSON {
		return writeJSON(c.out, result)
	}

	names, err := wh.TrackNames(ctx)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(c.out, moods.FormatSummary(result, names))
	return err
}
