package pipeline

import (
	"context"
	"fmt"

	"github.com/justestif/spotify-history-warehouse/internal/aggregate"
	"github.com/justestif/spotify-history-warehouse/internal/catalog"
	"github.com/justestif/spotify-history-warehouse/internal/db"
	"github.com/justestif/spotify-history-warehouse/internal/history"
	"github.com/justestif/spotify-history-warehouse/internal/spotify"
)

// LoadHistory reads the export files and writes raw_history.
func (s *Service) LoadHistory(ctx context.Context) ([]db.RawEvent, Written, error) {
	events, err := history.Load(s.pattern)
	if err != nil {
		return nil, Written{}, fmt.Errorf("loading history: %w", err)
	}
	if len(events) == 0 {
		s.log.Warn().Str("pattern", s.pattern).Msg("no music events matched")
	}

	w, err := s.write(ctx, db.RawHistoryTable(events))
	if err != nil {
		return nil, Written{}, err
	}
	return events, w, nil
}

// CleanHistory localizes and normalizes raw events and writes clean_history.
func (s *Service) CleanHistory(ctx context.Context, raw []db.RawEvent) (Written, error) {
	if s.cleaner == nil {
		c, err := history.NewCleanerForZone(history.DefaultTimeZone, nil)
		if err != nil {
			return Written{}, err
		}
		s.cleaner = c
	}

	events, err := s.cleaner.Clean(raw)
	if err != nil {
		return Written{}, fmt.Errorf("cleaning history: %w", err)
	}
	return s.write(ctx, db.CleanHistoryTable(events))
}

// fetch reads every page for ids from the configured fetcher.
func (s *Service) fetch(ctx context.Context, kind spotify.Kind, ids []string) ([][]byte, error) {
	if s.fetcher == nil {
		return nil, ErrNoFetcher
	}
	return spotify.FetchAll(ctx, s.fetcher, kind, ids, s.batchSize(kind))
}

// Tracks enriches every listened track and writes tracks and track_artists.
func (s *Service) Tracks(ctx context.Context) ([]Written, error) {
	ids, err := s.warehouse.HistoryTrackIDs(ctx)
	if err != nil {
		return nil, err
	}
	listening, err := s.warehouse.TrackListening(ctx)
	if err != nil {
		return nil, err
	}

	pages, err := s.fetch(ctx, spotify.Tracks, ids)
	if err != nil {
		return nil, err
	}
	tracks, links, err := catalog.FlattenTracks(pages, listening)
	if err != nil {
		return nil, fmt.Errorf("flattening tracks: %w", err)
	}

	return s.writeAll(ctx, db.TracksTable(tracks), db.TrackArtistsTable(links))
}

// Artists enriches every artist of the listened tracks and writes artists
// and artist_genres.
func (s *Service) Artists(ctx context.Context) ([]Written, error) {
	ids, err := s.warehouse.TrackArtistIDs(ctx)
	if err != nil {
		return nil, err
	}
	listening, err := s.warehouse.ArtistListening(ctx)
	if err != nil {
		return nil, err
	}

	pages, err := s.fetch(ctx, spotify.Artists, ids)
	if err != nil {
		return nil, err
	}
	artists, genres, err := catalog.FlattenArtists(pages, listening)
	if err != nil {
		return nil, fmt.Errorf("flattening artists: %w", err)
	}

	return s.writeAll(ctx, db.ArtistsTable(artists), db.ArtistGenresTable(genres))
}

// Albums enriches every album of the listened tracks and writes albums and
// album_artists.
func (s *Service) Albums(ctx context.Context) ([]Written, error) {
	ids, err := s.warehouse.TrackAlbumIDs(ctx)
	if err != nil {
		return nil, err
	}
	listening, err := s.warehouse.AlbumListening(ctx)
	if err != nil {
		return nil, err
	}

	pages, err := s.fetch(ctx, spotify.Albums, ids)
	if err != nil {
		return nil, err
	}
	albums, links, err := catalog.FlattenAlbums(pages, listening)
	if err != nil {
		return nil, fmt.Errorf("flattening albums: %w", err)
	}

	return s.writeAll(ctx, db.AlbumsTable(albums), db.AlbumArtistsTable(links))
}

// AudioFeatures fetches audio features for every catalog track and writes
// audio_features.
func (s *Service) AudioFeatures(ctx context.Context) (Written, error) {
	ids, err := s.warehouse.CatalogTrackIDs(ctx)
	if err != nil {
		return Written{}, err
	}

	pages, err := s.fetch(ctx, spotify.AudioFeatures, ids)
	if err != nil {
		return Written{}, err
	}
	features, err := catalog.FlattenAudioFeatures(pages)
	if err != nil {
		return Written{}, fmt.Errorf("flattening audio features: %w", err)
	}
	if skipped := len(ids) - len(features); skipped > 0 {
		s.log.Debug().Int("tracks", skipped).Msg("tracks without audio features")
	}

	return s.write(ctx, db.AudioFeaturesTable(features))
}

// ArtistAudioFeatures writes the mean audio features of each artist's tracks.
func (s *Service) ArtistAudioFeatures(ctx context.Context) (Written, error) {
	rows, err := s.warehouse.ArtistFeatures(ctx)
	if err != nil {
		return Written{}, err
	}
	means := aggregate.MeanByOwner(rows)
	return s.write(ctx, db.FeatureAggregateTable(db.TableArtistAudioFeatures, "artist_id", means))
}

// AlbumAudioFeatures writes the mean audio features of each album's tracks.
func (s *Service) AlbumAudioFeatures(ctx context.Context) (Written, error) {
	rows, err := s.warehouse.AlbumFeatures(ctx)
	if err != nil {
		return Written{}, err
	}
	means := aggregate.MeanByOwner(rows)
	return s.write(ctx, db.FeatureAggregateTable(db.TableAlbumAudioFeatures, "album_id", means))
}
