// Package pipeline runs the warehouse stages in order: history load and
// clean, catalog enrichment, audio features and their aggregates.
//
// Stages are strictly sequential. Every stage reads its inputs from the sink,
// so each may be rerun on its own once its predecessors have been written.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/justestif/spotify-history-warehouse/internal/db"
	"github.com/justestif/spotify-history-warehouse/internal/history"
	"github.com/justestif/spotify-history-warehouse/internal/logging"
	"github.com/justestif/spotify-history-warehouse/internal/spotify"
)

// ErrNoFetcher is returned when a catalog stage runs without a Fetcher.
var ErrNoFetcher = errors.New("no catalog fetcher configured")

// DefaultHistoryPattern matches the files of an extended streaming history export.
const DefaultHistoryPattern = "data/Streaming_History_Audio_*.json"

// Service runs pipeline stages against a sink.
type Service struct {
	sink      db.Sink
	warehouse *db.Warehouse
	fetcher   spotify.Fetcher
	cleaner   *history.Cleaner
	pattern   string
	sizes     map[spotify.Kind]int
	runID     string
	log       zerolog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithFetcher sets the catalog source used by the enrichment stages.
func WithFetcher(f spotify.Fetcher) Option {
	return func(s *Service) {
		s.fetcher = f
	}
}

// WithHistoryPattern sets the glob matching the export files.
func WithHistoryPattern(pattern string) Option {
	return func(s *Service) {
		s.pattern = pattern
	}
}

// WithCleaner sets the cleaner used to localize and normalize history.
func WithCleaner(c *history.Cleaner) Option {
	return func(s *Service) {
		s.cleaner = c
	}
}

// WithBatchSize lowers the number of ids per request for kind. Sizes outside
// 1..kind.Limit() are ignored.
func WithBatchSize(kind spotify.Kind, n int) Option {
	return func(s *Service) {
		if n > 0 && n <= kind.Limit() {
			s.sizes[kind] = n
		}
	}
}

// WithRunID overrides the generated run id.
func WithRunID(id string) Option {
	return func(s *Service) {
		s.runID = id
	}
}

// New creates a pipeline service writing to sink.
func New(sink db.Sink, opts ...Option) *Service {
	s := &Service{
		sink:      sink,
		warehouse: db.NewWarehouse(sink),
		pattern:   DefaultHistoryPattern,
		sizes:     make(map[spotify.Kind]int),
		runID:     uuid.NewString(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = logging.With().Str("run_id", s.runID).Logger()
	return s
}

// RunID returns the id tagging this service's log lines.
func (s *Service) RunID() string {
	return s.runID
}

func (s *Service) batchSize(kind spotify.Kind) int {
	if n, ok := s.sizes[kind]; ok {
		return n
	}
	return kind.Limit()
}

// Written is the row count of one snapshot written by a stage.
type Written struct {
	Table string `json:"table"`
	Rows  int    `json:"rows"`
}

// Result summarizes a run.
type Result struct {
	RunID   string        `json:"run_id"`
	Written []Written     `json:"written"`
	Elapsed time.Duration `json:"elapsed"`
}

// Rows returns the row count written to table, if it was written.
func (r *Result) Rows(table string) (int, bool) {
	for _, w := range r.Written {
		if w.Table == table {
			return w.Rows, true
		}
	}
	return 0, false
}

type stage struct {
	name string
	run  func(ctx context.Context) ([]Written, error)
}

// Run executes every stage.
func (s *Service) Run(ctx context.Context) (*Result, error) {
	stages := append(s.historyStages(), s.enrichStages()...)
	return s.runStages(ctx, append(stages, s.aggregateStages()...))
}

// History loads and cleans the export only.
func (s *Service) History(ctx context.Context) (*Result, error) {
	return s.runStages(ctx, s.historyStages())
}

// Enrich runs the catalog and audio feature stages over an existing clean_history.
func (s *Service) Enrich(ctx context.Context) (*Result, error) {
	return s.runStages(ctx, s.enrichStages())
}

// Aggregate recomputes the per-artist and per-album feature means.
func (s *Service) Aggregate(ctx context.Context) (*Result, error) {
	return s.runStages(ctx, s.aggregateStages())
}

func (s *Service) historyStages() []stage {
	var raw []db.RawEvent
	return []stage{
		{"load_history", func(ctx context.Context) ([]Written, error) {
			events, w, err := s.LoadHistory(ctx)
			raw = events
			return []Written{w}, err
		}},
		{"clean_history", func(ctx context.Context) ([]Written, error) {
			w, err := s.CleanHistory(ctx, raw)
			return []Written{w}, err
		}},
	}
}

func (s *Service) enrichStages() []stage {
	return []stage{
		{"tracks", s.Tracks},
		{"artists", s.Artists},
		{"albums", s.Albums},
		{"audio_features", func(ctx context.Context) ([]Written, error) {
			w, err := s.AudioFeatures(ctx)
			return []Written{w}, err
		}},
	}
}

func (s *Service) aggregateStages() []stage {
	return []stage{
		{"artist_audio_features", func(ctx context.Context) ([]Written, error) {
			w, err := s.ArtistAudioFeatures(ctx)
			return []Written{w}, err
		}},
		{"album_audio_features", func(ctx context.Context) ([]Written, error) {
			w, err := s.AlbumAudioFeatures(ctx)
			return []Written{w}, err
		}},
	}
}

func (s *Service) runStages(ctx context.Context, stages []stage) (*Result, error) {
	ctx = s.log.WithContext(ctx)
	res := &Result{RunID: s.runID}
	start := time.Now()

	for _, st := range stages {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		stageStart := time.Now()
		written, err := st.run(ctx)
		if err != nil {
			s.log.Error().Err(err).Str("stage", st.name).Msg("stage failed")
			return res, fmt.Errorf("%s: %w", st.name, err)
		}
		res.Written = append(res.Written, written...)

		s.log.Info().
			Str("stage", st.name).
			Dur("elapsed", time.Since(stageStart)).
			Dur("total", time.Since(start)).
			Msg("stage complete")
	}

	res.Elapsed = time.Since(start)
	return res, nil
}

// write replaces a snapshot table and logs its row count.
func (s *Service) write(ctx context.Context, t *db.Table) (Written, error) {
	if err := s.sink.Write(ctx, t, db.PolicyReplace); err != nil {
		return Written{}, fmt.Errorf("writing %s: %w", t.Name, err)
	}
	s.log.Info().Str("table", t.Name).Int("rows", t.Len()).Msg("snapshot written")
	return Written{Table: t.Name, Rows: t.Len()}, nil
}

func (s *Service) writeAll(ctx context.Context, tables ...*db.Table) ([]Written, error) {
	written := make([]Written, 0, len(tables))
	for _, t := range tables {
		w, err := s.write(ctx, t)
		if err != nil {
			return written, err
		}
		written = append(written, w)
	}
	return written, nil
}
