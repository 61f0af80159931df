package cli

import "io"

// GlobalFlags holds flags available to all subcommands.
type GlobalFlags struct {
	Config  string `long:"config" description:"Path to config file" default:""`
	JSON    bool   `long:"json" description:"Output in JSON format"`
	Verbose bool   `long:"verbose" description:"Enable debug logging"`
	Version bool   `long:"version" description:"Show version and exit"`
}

// RunCommand runs every stage in order.
type RunCommand struct {
	History string `long:"history" description:"Glob matching the export files (overrides config)"`

	globals *GlobalFlags
	out     io.Writer
}

// HistoryCommand loads and cleans the export.
type HistoryCommand struct {
	History string `long:"history" description:"Glob matching the export files (overrides config)"`

	globals *GlobalFlags
	out     io.Writer
}

// EnrichCommand fetches catalog metadata for the cleaned history.
type EnrichCommand struct {
	TrackBatch    int `long:"track-batch" description:"Track ids per request (1-50)"`
	ArtistBatch   int `long:"artist-batch" description:"Artist ids per request (1-50)"`
	AlbumBatch    int `long:"album-batch" description:"Album ids per request (1-20)"`
	FeaturesBatch int `long:"features-batch" description:"Audio feature ids per request (1-100)"`

	globals *GlobalFlags
	out     io.Writer
}

// AggregateCommand writes the audio feature aggregates.
type AggregateCommand struct {
	globals *GlobalFlags
	out     io.Writer
}

// TablesCommand prints the row count of every snapshot table.
type TablesCommand struct {
	globals *GlobalFlags
	out     io.Writer
}

// MoodsCommand prints the mood clusters of analyzed tracks.
type MoodsCommand struct {
	K int `long:"k" description:"Number of mood clusters (1-12)" default:"3"`

	globals *GlobalFlags
	out     io.Writer
}

// ServeCommand serves the JSON report.
type ServeCommand struct {
	Addr string `long:"addr" description:"Listen address (overrides config)"`

	globals *GlobalFlags
}
