package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justestif/spotify-history-warehouse/internal/db"
	"github.com/justestif/spotify-history-warehouse/internal/history"
	"github.com/justestif/spotify-history-warehouse/internal/spotify"
)

// fakeCatalog serves canned objects by id, null for unknown ids.
type fakeCatalog struct {
	objects  map[spotify.Kind]map[string]string
	requests map[spotify.Kind][]string
	err      error
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		objects: map[spotify.Kind]map[string]string{
			spotify.Tracks: {
				"t1": trackJSON("t1", "al1", "ar1", "ar2"),
				"t2": trackJSON("t2", "al1", "ar1"),
			},
			spotify.Artists: {
				"ar1": artistJSON("ar1", "pop"),
				"ar2": artistJSON("ar2", "rock", "indie"),
			},
			spotify.Albums: {
				"al1": albumJSON("al1", "ar1"),
			},
			spotify.AudioFeatures: {
				"t1": featuresJSON("t1", 0.2),
				"t2": featuresJSON("t2", 0.8),
			},
		},
		requests: make(map[spotify.Kind][]string),
	}
}

func (f *fakeCatalog) Fetch(_ context.Context, kind spotify.Kind, ids string) ([]byte, error) {
	f.requests[kind] = append(f.requests[kind], ids)
	if f.err != nil {
		return nil, f.err
	}

	keys := map[spotify.Kind]string{
		spotify.Tracks:        "tracks",
		spotify.Artists:       "artists",
		spotify.Albums:        "albums",
		spotify.AudioFeatures: "audio_features",
	}

	var items []string
	for _, id := range strings.Split(ids, ",") {
		if obj, ok := f.objects[kind][id]; ok {
			items = append(items, obj)
		} else {
			items = append(items, "null")
		}
	}
	return []byte(fmt.Sprintf(`{%q: [%s]}`, keys[kind], strings.Join(items, ","))), nil
}

func trackJSON(id, albumID string, artistIDs ...string) string {
	artists := make([]string, len(artistIDs))
	for i, a := range artistIDs {
		artists[i] = fmt.Sprintf(`{"id": %q}`, a)
	}
	return fmt.Sprintf(`{"id": %q, "name": "Track %s", "album": {"id": %q}, "artists": [%s],
		"popularity": 50, "disc_number": 1, "track_number": 1, "explicit": false,
		"external_urls": {"spotify": "https://open.spotify.com/track/%s"}, "duration_ms": 200000}`,
		id, id, albumID, strings.Join(artists, ","), id)
}

func artistJSON(id string, genres ...string) string {
	quoted := make([]string, len(genres))
	for i, g := range genres {
		quoted[i] = fmt.Sprintf("%q", g)
	}
	return fmt.Sprintf(`{"id": %q, "name": "Artist %s", "popularity": 40, "genres": [%s],
		"external_urls": {"spotify": "https://open.spotify.com/artist/%s"}, "followers": {"total": 10}}`,
		id, id, strings.Join(quoted, ","), id)
}

func albumJSON(id, artistID string) string {
	return fmt.Sprintf(`{"id": %q, "name": "Album %s", "album_type": "album", "total_tracks": 10,
		"artists": [{"id": %q}], "external_urls": {"spotify": "https://open.spotify.com/album/%s"},
		"popularity": 30, "images": [{"url": "big"}, {"url": "small"}],
		"release_date": "2020-05", "release_date_precision": "month"}`,
		id, id, artistID, id)
}

func featuresJSON(id string, energy float64) string {
	return fmt.Sprintf(`{"id": %q, "acousticness": 0.1, "analysis_url": "https://api.spotify.com/v1/audio-analysis/%s",
		"danceability": 0.5, "duration_ms": 200000, "energy": %v, "instrumentalness": 0, "key": 5,
		"liveness": 0.1, "loudness": -6.5, "mode": 1, "speechiness": 0.05, "tempo": 120,
		"time_signature": 4, "valence": 0.6}`, id, id, energy)
}

const export = `[
  {"ts": "2023-06-09T04:00:00Z", "platform": "iOS 16 (iPhone14,2)", "ms_played": 100,
   "master_metadata_track_name": "Track t1", "spotify_track_uri": "spotify:track:t1",
   "username": "private", "ip_addr_decrypted": "10.0.0.1"},
  {"ts": "2023-06-10T04:00:00Z", "platform": "Windows 10", "ms_played": 200, "spotify_track_uri": "spotify:track:t1"},
  {"ts": "2023-06-08T04:00:00Z", "platform": "sonos_s2", "ms_played": 50, "spotify_track_uri": "spotify:track:t2"},
  {"ts": "2023-06-11T04:00:00Z", "platform": "web_player", "ms_played": 10, "spotify_track_uri": "spotify:track:t3"},
  {"ts": "2023-06-11T05:00:00Z", "platform": "web_player", "ms_played": 99, "spotify_track_uri": null,
   "episode_name": "Some podcast"}
]`

func setup(t *testing.T, opts ...Option) (*Service, db.Sink) {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Streaming_History_Audio_2023.json"), []byte(export), 0o644))

	sink, err := db.OpenSQL(context.Background(), db.SQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { sink.Close() })

	loc, err := time.LoadLocation(history.DefaultTimeZone)
	if err != nil {
		t.Skipf("time zone data unavailable: %v", err)
	}

	base := []Option{
		WithHistoryPattern(filepath.Join(dir, "*.json")),
		WithCleaner(history.NewCleaner(loc, nil)),
		WithRunID("test-run"),
	}
	return New(sink, append(base, opts...)...), sink
}

func queryFloat(t *testing.T, sink db.Sink, query string, args ...any) float64 {
	t.Helper()
	res, err := sink.Query(context.Background(), query, args...)
	require.NoError(t, err)
	require.Len(t, res.Rows, 1, query)
	v, err := db.AsFloat64(res.Rows[0][0])
	require.NoError(t, err)
	return v
}

func TestRun(t *testing.T) {
	fake := newFakeCatalog()
	svc, sink := setup(t, WithFetcher(fake), WithBatchSize(spotify.Tracks, 1))
	ctx := context.Background()

	res, err := svc.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, "test-run", res.RunID)

	want := map[string]int{
		db.TableRawHistory:          4,
		db.TableCleanHistory:        4,
		db.TableTracks:              2,
		db.TableTrackArtists:        3,
		db.TableArtists:             2,
		db.TableArtistGenres:        3,
		db.TableAlbums:              1,
		db.TableAlbumArtists:        1,
		db.TableAudioFeatures:       2,
		db.TableArtistAudioFeatures: 2,
		db.TableAlbumAudioFeatures:  1,
	}
	require.Len(t, res.Written, len(want))
	for i, w := range res.Written {
		assert.Equal(t, db.SnapshotTables[i], w.Table, "stage order")
		assert.Equal(t, want[w.Table], w.Rows, w.Table)
	}

	// One request per track id at batch size 1; t3 resolves to null.
	assert.Equal(t, []string{"t1", "t2", "t3"}, fake.requests[spotify.Tracks])
	assert.Equal(t, []string{"ar1,ar2"}, fake.requests[spotify.Artists])
	assert.Equal(t, []string{"t1,t2"}, fake.requests[spotify.AudioFeatures])

	wh := db.NewWarehouse(sink)
	artistMs, err := wh.ArtistListening(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"ar1": 350, "ar2": 300}, artistMs)

	assert.InDelta(t, 300, queryFloat(t, sink, `SELECT ms_played FROM tracks WHERE track_id = ?`, "t1"), 0)
	assert.InDelta(t, 0.5, queryFloat(t, sink, `SELECT energy FROM artist_audio_features WHERE artist_id = ?`, "ar1"), 1e-9)
	assert.InDelta(t, 0.2, queryFloat(t, sink, `SELECT energy FROM artist_audio_features WHERE artist_id = ?`, "ar2"), 1e-9)
	assert.InDelta(t, 0.5, queryFloat(t, sink, `SELECT energy FROM album_audio_features WHERE album_id = ?`, "al1"), 1e-9)
}

func TestHistory(t *testing.T) {
	svc, sink := setup(t)
	ctx := context.Background()

	res, err := svc.History(ctx)
	require.NoError(t, err)

	rows, ok := res.Rows(db.TableCleanHistory)
	require.True(t, ok)
	assert.Equal(t, 4, rows)

	res2, err := sink.Query(ctx, `SELECT platform, stream_date, stream_time FROM clean_history ORDER BY datetime`)
	require.NoError(t, err)
	require.Len(t, res2.Rows, 4)

	var got [][]string
	for _, row := range res2.Rows {
		var r []string
		for _, v := range row {
			s, err := db.AsString(v)
			require.NoError(t, err)
			r = append(r, s)
		}
		got = append(got, r)
	}
	assert.Equal(t, []string{"Sonos", "2023-06-08", "00:00:00"}, got[0])
	assert.Equal(t, []string{"iPhone", "2023-06-09", "00:00:00"}, got[1])
	assert.Equal(t, []string{"Laptop", "2023-06-10", "00:00:00"}, got[2])
	assert.Equal(t, []string{"web_player", "2023-06-11", "00:00:00"}, got[3])
}

func TestRawHistoryNeverStoresPrivateFields(t *testing.T) {
	svc, sink := setup(t)
	ctx := context.Background()

	_, err := svc.History(ctx)
	require.NoError(t, err)

	res, err := sink.Query(ctx, `SELECT * FROM raw_history LIMIT 1`)
	require.NoError(t, err)
	for _, col := range []string{"username", "ip_addr_decrypted", "user_agent_decrypted", "conn_country"} {
		assert.NotContains(t, res.Columns, col)
	}
}

func TestEnrichWithoutFetcher(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	_, err := svc.History(ctx)
	require.NoError(t, err)

	_, err = svc.Enrich(ctx)
	assert.ErrorIs(t, err, ErrNoFetcher)
}

func TestEnrichAbortsOnFetchError(t *testing.T) {
	fake := newFakeCatalog()
	fake.err = errors.New("provider down")
	svc, sink := setup(t, WithFetcher(fake))
	ctx := context.Background()

	_, err := svc.History(ctx)
	require.NoError(t, err)

	res, err := svc.Enrich(ctx)
	require.ErrorIs(t, err, fake.err)
	assert.Empty(t, res.Written)

	counts, err := db.NewWarehouse(sink).Counts(ctx)
	require.NoError(t, err)
	for _, c := range counts {
		if c.Name == db.TableTracks {
			assert.False(t, c.Present, "tracks must not be written after a failed fetch")
		}
	}
}

func TestAggregateIsRepeatable(t *testing.T) {
	svc, sink := setup(t, WithFetcher(newFakeCatalog()))
	ctx := context.Background()

	_, err := svc.Run(ctx)
	require.NoError(t, err)

	_, err = svc.Aggregate(ctx)
	require.NoError(t, err)

	assert.InDelta(t, 2, queryFloat(t, sink, `SELECT COUNT(*) FROM artist_audio_features`), 0)
}

func TestWithBatchSizeIgnoresOutOfRange(t *testing.T) {
	svc := New(nil, WithBatchSize(spotify.Albums, 500), WithBatchSize(spotify.Artists, 0), WithBatchSize(spotify.Tracks, 10))
	assert.Equal(t, 20, svc.batchSize(spotify.Albums))
	assert.Equal(t, 50, svc.batchSize(spotify.Artists))
	assert.Equal(t, 10, svc.batchSize(spotify.Tracks))
	assert.NotEmpty(t, svc.RunID())
}
