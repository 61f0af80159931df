package cli

import (
	"context"

	"github.com/justestif/spotify-history-warehouse/internal/pipeline"
	"github.com/justestif/spotify-history-warehouse/internal/spotify"
)

// Execute implements the go-flags Commander interface for RunCommand.
func (c *RunCommand) Execute(args []string) error {
	ctx := context.Background()
	cfg, sink, err := c.globals.setup(ctx)
	if err != nil {
		return err
	}
	defer sink.Close()

	svc, err := newPipeline(ctx, cfg, sink, c.History, true)
	if err != nil {
		return err
	}
	res, err := svc.Run(ctx)
	if err != nil {
		return err
	}
	return printResult(c.out, c.globals.JSON, res)
}

// Execute implements the go-flags Commander interface for HistoryCommand.
func (c *HistoryCommand) Execute(args []string) error {
	ctx := context.Background()
	cfg, sink, err := c.globals.setup(ctx)
	if err != nil {
		return err
	}
	defer sink.Close()

	svc, err := newPipeline(ctx, cfg, sink, c.History, false)
	if err != nil {
		return err
	}
	res, err := svc.History(ctx)
	if err != nil {
		return err
	}
	return printResult(c.out, c.globals.JSON, res)
}

// Execute implements the go-flags Commander interface for EnrichCommand.
func (c *EnrichCommand) Execute(args []string) error {
	ctx := context.Background()
	cfg, sink, err := c.globals.setup(ctx)
	if err != nil {
		return err
	}
	defer sink.Close()

	svc, err := newPipeline(ctx, cfg, sink, "", true,
		pipeline.WithBatchSize(spotify.Tracks, c.TrackBatch),
		pipeline.WithBatchSize(spotify.Artists, c.ArtistBatch),
		pipeline.WithBatchSize(spotify.Albums, c.AlbumBatch),
		pipeline.WithBatchSize(spotify.AudioFeatures, c.FeaturesBatch),
	)
	if err != nil {
		return err
	}
	res, err := svc.Enrich(ctx)
	if err != nil {
		return err
	}
	return printResult(c.out, c.globals.JSON, res)
}

// Execute implements the go-flags Commander interface for AggregateCommand.
func (c *AggregateCommand) Execute(args []string) error {
	ctx := context.Background()
	cfg, sink, err := c.globals.setup(ctx)
	if err != nil {
		return err
	}
	defer sink.Close()

	svc, err := newPipeline(ctx, cfg, sink, "", false)
	if err != nil {
		return err
	}
	res, err := svc.Aggregate(ctx)
	if err != nil {
		return err
	}
	return printResult(c.out, c.globals.JSON, res)
}
