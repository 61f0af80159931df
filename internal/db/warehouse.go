package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownEntity is returned for an entity name with no snapshot table.
var ErrUnknownEntity = errors.New("unknown entity")

// Warehouse runs the read queries over persisted snapshots.
type Warehouse struct {
	sink Sink
}

// NewWarehouse wraps a sink.
func NewWarehouse(sink Sink) *Warehouse {
	return &Warehouse{sink: sink}
}

// Sink returns the underlying sink.
func (w *Warehouse) Sink() Sink {
	return w.sink
}

// HistoryTrackIDs returns the distinct track ids of clean_history.
func (w *Warehouse) HistoryTrackIDs(ctx context.Context) ([]string, error) {
	return w.ids(ctx, `SELECT DISTINCT track_id FROM clean_history ORDER BY track_id`)
}

// TrackListening returns the summed ms_played per track.
func (w *Warehouse) TrackListening(ctx context.Context) (map[string]int64, error) {
	return w.totals(ctx, `
		SELECT track_id, CAST(SUM(ms_played) AS BIGINT) AS ms_played
		FROM clean_history
		GROUP BY track_id
	`)
}

// TrackArtistIDs returns the distinct artist ids of track_artists.
func (w *Warehouse) TrackArtistIDs(ctx context.Context) ([]string, error) {
	return w.ids(ctx, `SELECT DISTINCT artist_id FROM track_artists ORDER BY artist_id`)
}

// ArtistListening returns the summed ms_played per artist, through track_artists.
func (w *Warehouse) ArtistListening(ctx context.Context) (map[string]int64, error) {
	return w.totals(ctx, `
		SELECT track_artists.artist_id, CAST(SUM(clean_history.ms_played) AS BIGINT) AS ms_played
		FROM clean_history
		JOIN track_artists ON clean_history.track_id = track_artists.track_id
		GROUP BY track_artists.artist_id
	`)
}

// TrackAlbumIDs returns the distinct album ids of tracks.
func (w *Warehouse) TrackAlbumIDs(ctx context.Context) ([]string, error) {
	return w.ids(ctx, `SELECT DISTINCT album_id FROM tracks ORDER BY album_id`)
}

// AlbumListening returns the summed ms_played per album, through tracks.
func (w *Warehouse) AlbumListening(ctx context.Context) (map[string]int64, error) {
	return w.totals(ctx, `
		SELECT tracks.album_id, CAST(SUM(clean_history.ms_played) AS BIGINT) AS ms_played
		FROM clean_history
		JOIN tracks ON clean_history.track_id = tracks.track_id
		GROUP BY tracks.album_id
	`)
}

// CatalogTrackIDs returns the track ids of the tracks snapshot.
func (w *Warehouse) CatalogTrackIDs(ctx context.Context) ([]string, error) {
	return w.ids(ctx, `SELECT track_id FROM tracks ORDER BY track_id`)
}

var featureSelect = func() string {
	cols := make([]string, len(FeatureColumns))
	for i, c := range FeatureColumns {
		cols[i] = "af." + quoteIdent(c)
	}
	return strings.Join(cols, ", ")
}()

// ArtistFeatures returns one feature vector per (artist, track) pair, for
// artists present in the artists snapshot.
func (w *Warehouse) ArtistFeatures(ctx context.Context) ([]OwnedFeatures, error) {
	return w.owned(ctx, `
		SELECT artists.artist_id, `+featureSelect+`
		FROM track_artists
		JOIN audio_features AS af ON af.track_id = track_artists.track_id
		JOIN artists ON artists.artist_id = track_artists.artist_id
	`)
}

// AlbumFeatures returns one feature vector per track, owned by its album.
func (w *Warehouse) AlbumFeatures(ctx context.Context) ([]OwnedFeatures, error) {
	return w.owned(ctx, `
		SELECT tracks.album_id, `+featureSelect+`
		FROM tracks
		JOIN audio_features AS af ON af.track_id = tracks.track_id
	`)
}

// TrackFeatures returns the feature vector of every analyzed track, keyed by track id.
func (w *Warehouse) TrackFeatures(ctx context.Context) ([]OwnedFeatures, error) {
	return w.owned(ctx, `
		SELECT af.track_id, `+featureSelect+`
		FROM audio_features AS af
		ORDER BY af.track_id
	`)
}

// TrackNames returns the catalog name of every track.
func (w *Warehouse) TrackNames(ctx context.Context) (map[string]string, error) {
	res, err := w.sink.Query(ctx, `SELECT track_id, name FROM tracks`)
	if err != nil {
		return nil, fmt.Errorf("querying track names: %w", err)
	}
	return stringPairs(res)
}

// ArtistGenres returns the genres of every artist in the artists snapshot,
// in genre order. Artists without genres map to an empty slice.
func (w *Warehouse) ArtistGenres(ctx context.Context) (map[string][]string, error) {
	res, err := w.sink.Query(ctx, `
		SELECT artists.artist_id, artist_genres.genre
		FROM artists
		LEFT JOIN artist_genres ON artist_genres.artist_id = artists.artist_id
		ORDER BY artists.artist_id, artist_genres.genre
	`)
	if err != nil {
		return nil, fmt.Errorf("querying artist genres: %w", err)
	}

	genres := make(map[string][]string)
	for _, row := range res.Rows {
		id, err := AsString(row[0])
		if err != nil {
			return nil, fmt.Errorf("scanning artist id: %w", err)
		}
		if _, ok := genres[id]; !ok {
			genres[id] = []string{}
		}
		if row[1] == nil {
			continue
		}
		genre, err := AsString(row[1])
		if err != nil {
			return nil, fmt.Errorf("scanning genre: %w", err)
		}
		genres[id] = append(genres[id], genre)
	}
	return genres, nil
}

// TableCount is the row count of one snapshot table.
type TableCount struct {
	Name    string `json:"name"`
	Rows    int64  `json:"rows"`
	Present bool   `json:"present"`
}

// Counts returns the row count of every snapshot table. Tables not produced
// yet are reported as absent; any other failure is returned.
func (w *Warehouse) Counts(ctx context.Context) ([]TableCount, error) {
	counts := make([]TableCount, 0, len(SnapshotTables))
	for _, name := range SnapshotTables {
		exists, err := w.sink.HasTable(ctx, name)
		if err != nil {
			return nil, err
		}
		if !exists {
			counts = append(counts, TableCount{Name: name})
			continue
		}

		res, err := w.sink.Query(ctx, "SELECT COUNT(*) FROM "+quoteIdent(name))
		if err != nil {
			return nil, fmt.Errorf("counting %s: %w", name, err)
		}
		if len(res.Rows) == 0 {
			return nil, fmt.Errorf("counting %s: no rows", name)
		}
		n, err := AsInt64(res.Rows[0][0])
		if err != nil {
			return nil, fmt.Errorf("counting %s: %w", name, err)
		}
		counts = append(counts, TableCount{Name: name, Rows: n, Present: true})
	}
	return counts, nil
}

// Ranked is one entity ordered by listening time.
type Ranked struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	MsPlayed int64  `json:"ms_played"`
}

var rankedTables = map[string]struct{ table, id string }{
	"tracks":  {TableTracks, "track_id"},
	"artists": {TableArtists, "artist_id"},
	"albums":  {TableAlbums, "album_id"},
}

// Top returns the entities with the most listening time.
func (w *Warehouse) Top(ctx context.Context, entity string, limit int) ([]Ranked, error) {
	src, ok := rankedTables[entity]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEntity, entity)
	}
	if limit <= 0 {
		limit = 10
	}

	query := fmt.Sprintf(`SELECT %s, name, ms_played FROM %s ORDER BY ms_played DESC, %s LIMIT %d`,
		src.id, quoteIdent(src.table), src.id, limit)
	res, err := w.sink.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying top %s: %w", entity, err)
	}

	ranked := make([]Ranked, 0, len(res.Rows))
	for _, row := range res.Rows {
		var r Ranked
		if r.ID, err = AsString(row[0]); err != nil {
			return nil, err
		}
		if r.Name, err = AsString(row[1]); err != nil {
			return nil, err
		}
		if r.MsPlayed, err = AsInt64(row[2]); err != nil {
			return nil, err
		}
		ranked = append(ranked, r)
	}
	return ranked, nil
}

func (w *Warehouse) ids(ctx context.Context, query string) ([]string, error) {
	res, err := w.sink.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying ids: %w", err)
	}

	ids := make([]string, 0, len(res.Rows))
	for _, row := range res.Rows {
		id, err := AsString(row[0])
		if err != nil {
			return nil, fmt.Errorf("scanning id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (w *Warehouse) totals(ctx context.Context, query string) (map[string]int64, error) {
	res, err := w.sink.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying listening time: %w", err)
	}

	totals := make(map[string]int64, len(res.Rows))
	for _, row := range res.Rows {
		id, err := AsString(row[0])
		if err != nil {
			return nil, fmt.Errorf("scanning id: %w", err)
		}
		ms, err := AsInt64(row[1])
		if err != nil {
			return nil, fmt.Errorf("scanning ms_played: %w", err)
		}
		totals[id] = ms
	}
	return totals, nil
}

func (w *Warehouse) owned(ctx context.Context, query string) ([]OwnedFeatures, error) {
	res, err := w.sink.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying audio features: %w", err)
	}

	rows := make([]OwnedFeatures, 0, len(res.Rows))
	for _, row := range res.Rows {
		owner, err := AsString(row[0])
		if err != nil {
			return nil, fmt.Errorf("scanning owner: %w", err)
		}
		values := make([]float64, len(FeatureColumns))
		for i := range values {
			if values[i], err = AsFloat64(row[i+1]); err != nil {
				return nil, fmt.Errorf("scanning %s: %w", FeatureColumns[i], err)
			}
		}
		rows = append(rows, OwnedFeatures{OwnerID: owner, Values: values})
	}
	return rows, nil
}

func stringPairs(res *Result) (map[string]string, error) {
	pairs := make(map[string]string, len(res.Rows))
	for _, row := range res.Rows {
		k, err := AsString(row[0])
		if err != nil {
			return nil, fmt.Errorf("scanning key: %w", err)
		}
		v, err := AsString(row[1])
		if err != nil {
			return nil, fmt.Errorf("scanning value: %w", err)
		}
		pairs[k] = v
	}
	return pairs, nil
}
