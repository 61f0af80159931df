package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/goccy/go-json"

	"github.com/justestif/spotify-history-warehouse/internal/config"
	"github.com/justestif/spotify-history-warehouse/internal/db"
	"github.com/justestif/spotify-history-warehouse/internal/history"
	"github.com/justestif/spotify-history-warehouse/internal/logging"
	"github.com/justestif/spotify-history-warehouse/internal/pipeline"
	"github.com/justestif/spotify-history-warehouse/internal/spotify"
)

// setup loads configuration, initializes logging and opens the sink.
func (g *GlobalFlags) setup(ctx context.Context) (*config.Config, db.Sink, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, nil, err
	}

	level := cfg.Log.Level
	if g.Verbose {
		level = "debug"
	}
	logging.Init(logging.Config{Level: level, Format: cfg.Log.Format})

	sink, err := db.Open(ctx, cfg.Database.DriverName(), cfg.Database.URL)
	if err != nil {
		return nil, nil, err
	}
	logging.Debug().Str("driver", cfg.Database.DriverName()).Msg("sink opened")
	return cfg, sink, nil
}

// newCleaner builds the history cleaner from the configured zone and rules.
func newCleaner(cfg *config.Config) (*history.Cleaner, error) {
	var rules []history.PlatformRule
	for _, r := range cfg.History.PlatformRules {
		rules = append(rules, history.PlatformRule{Contains: r.Contains, Label: r.Label})
	}
	return history.NewCleanerForZone(cfg.History.TimeZone, rules)
}

// newFetcher authorizes a catalog client from the configured credentials.
func newFetcher(ctx context.Context, cfg *config.Config) (spotify.Fetcher, error) {
	if err := cfg.ValidateSpotify(); err != nil {
		return nil, err
	}

	ts, err := spotify.TokenSource(ctx, spotify.Credentials{
		AccessToken:  cfg.Spotify.AccessToken,
		ClientID:     cfg.Spotify.ClientID,
		ClientSecret: cfg.Spotify.ClientSecret,
		TokenURL:     cfg.Spotify.TokenURL,
	})
	if err != nil {
		return nil, err
	}

	return spotify.New(spotify.NewHTTPClient(ctx, ts),
		spotify.WithBaseURL(cfg.Spotify.BaseURL),
		spotify.WithTimeout(cfg.Spotify.Timeout),
		spotify.WithRateLimit(cfg.Spotify.RequestsPerSecond),
	), nil
}

// newPipeline builds the service. A fetcher is only authorized when the
// stages to run need one.
func newPipeline(ctx context.Context, cfg *config.Config, sink db.Sink, glob string, fetch bool, opts ...pipeline.Option) (*pipeline.Service, error) {
	cleaner, err := newCleaner(cfg)
	if err != nil {
		return nil, err
	}

	if glob == "" {
		glob = cfg.History.Glob
	}
	opts = append([]pipeline.Option{
		pipeline.WithHistoryPattern(glob),
		pipeline.WithCleaner(cleaner),
	}, opts...)

	if fetch {
		fetcher, err := newFetcher(ctx, cfg)
		if err != nil {
			return nil, err
		}
		opts = append(opts, pipeline.WithFetcher(fetcher))
	}

	return pipeline.New(sink, opts...), nil
}

// printResult writes the tables a run produced.
func printResult(w io.Writer, asJSON bool, res *pipeline.Result) error {
	if asJSON {
		return writeJSON(w, res)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "TABLE\tROWS\n")
	for _, wr := range res.Written {
		fmt.Fprintf(tw, "%s\t%d\n", wr.Table, wr.Rows)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "run %s finished in %s\n", res.RunID, res.Elapsed.Round(time.Millisecond))
	return err
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
