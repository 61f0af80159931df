package catalog

import (
	"errors"
	"testing"
)

const tracksPage = `{
  "tracks": [
    {
      "id": "t1",
      "name": "Song A",
      "album": {"id": "al1", "name": "Album A"},
      "artists": [{"id": "ar1", "name": "A"}, {"id": "ar2", "name": "B"}],
      "popularity": 61,
      "disc_number": 1,
      "track_number": 3,
      "explicit": false,
      "external_urls": {"spotify": "https://open.spotify.com/track/t1"},
      "duration_ms": 215000
    },
    null,
    {
      "id": "t2",
      "name": "Song B",
      "album": {"id": "al2"},
      "artists": [{"id": "ar3"}],
      "popularity": 0,
      "disc_number": 2,
      "track_number": 1,
      "explicit": true,
      "external_urls": {"spotify": "https://open.spotify.com/track/t2"},
      "duration_ms": 1000
    }
  ]
}`

func TestFlattenTracks(t *testing.T) {
	listening := map[string]int64{"t1": 500, "unrelated": 1}

	tracks, links, err := FlattenTracks([][]byte{[]byte(tracksPage)}, listening)
	if err != nil {
		t.Fatalf("FlattenTracks() error = %v", err)
	}

	// t2 has no listening time.
	if len(tracks) != 1 {
		t.Fatalf("got %d tracks, want 1", len(tracks))
	}
	got := tracks[0]
	if got.ID != "t1" || got.Name != "Song A" || got.AlbumID != "al1" {
		t.Errorf("track = %+v", got)
	}
	if got.Popularity != 61 || got.DiscNumber != 1 || got.TrackNumber != 3 || got.DurationMs != 215000 {
		t.Errorf("track numbers = %+v", got)
	}
	if got.Explicit || got.ExternalURLs != "https://open.spotify.com/track/t1" || got.MsPlayed != 500 {
		t.Errorf("track = %+v", got)
	}

	// Links are not filtered by listening time.
	if len(links) != 3 {
		t.Fatalf("got %d links, want 3", len(links))
	}
	if links[2].TrackID != "t2" || links[2].ArtistID != "ar3" {
		t.Errorf("links[2] = %+v", links[2])
	}
}

func TestFlattenTracksAcrossPages(t *testing.T) {
	pages := [][]byte{
		[]byte(`{"tracks": [null]}`),
		[]byte(tracksPage),
	}
	tracks, _, err := FlattenTracks(pages, map[string]int64{"t1": 1, "t2": 2})
	if err != nil {
		t.Fatalf("FlattenTracks() error = %v", err)
	}
	if len(tracks) != 2 || tracks[0].ID != "t1" || tracks[1].ID != "t2" {
		t.Errorf("tracks = %+v", tracks)
	}
}

func TestFlattenTracksEmpty(t *testing.T) {
	tracks, links, err := FlattenTracks(nil, nil)
	if err != nil {
		t.Fatalf("FlattenTracks() error = %v", err)
	}
	if len(tracks) != 0 || len(links) != 0 {
		t.Errorf("got %d tracks and %d links, want none", len(tracks), len(links))
	}
}

func TestFlattenTracksMissingField(t *testing.T) {
	tests := []struct {
		name string
		page string
	}{
		{"no popularity", `{"tracks": [{"id": "t", "name": "n", "album": {"id": "a"}, "artists": [], "disc_number": 1, "track_number": 1, "explicit": false, "external_urls": {"spotify": "u"}, "duration_ms": 1}]}`},
		{"no album", `{"tracks": [{"id": "t", "name": "n", "artists": [], "popularity": 1, "disc_number": 1, "track_number": 1, "explicit": false, "external_urls": {"spotify": "u"}, "duration_ms": 1}]}`},
		{"no external url", `{"tracks": [{"id": "t", "name": "n", "album": {"id": "a"}, "artists": [], "popularity": 1, "disc_number": 1, "track_number": 1, "explicit": false, "external_urls": {}, "duration_ms": 1}]}`},
		{"no artists", `{"tracks": [{"id": "t", "name": "n", "album": {"id": "a"}, "popularity": 1, "disc_number": 1, "track_number": 1, "explicit": false, "external_urls": {"spotify": "u"}, "duration_ms": 1}]}`},
		{"no wrapper key", `{"items": []}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := FlattenTracks([][]byte{[]byte(tt.page)}, map[string]int64{"t": 1})
			if !errors.Is(err, ErrMissingField) {
				t.Errorf("FlattenTracks() error = %v, want ErrMissingField", err)
			}
		})
	}
}

func TestFlattenTracksBadJSON(t *testing.T) {
	if _, _, err := FlattenTracks([][]byte{[]byte(`{"tracks": [`)}, nil); err == nil {
		t.Fatal("FlattenTracks() error = nil, want decode error")
	}
}
