package catalog

import (
	"errors"
	"testing"
)

func albumJSON(id, date, precision, images string) string {
	return `{
      "id": "` + id + `",
      "name": "Album ` + id + `",
      "album_type": "album",
      "total_tracks": 12,
      "artists": [{"id": "ar1"}, {"id": "ar2"}],
      "external_urls": {"spotify": "https://open.spotify.com/album/` + id + `"},
      "popularity": 55,
      "images": ` + images + `,
      "release_date": "` + date + `",
      "release_date_precision": "` + precision + `"
    }`
}

const threeImages = `[
  {"url": "https://i.scdn.co/image/640", "height": 640, "width": 640},
  {"url": "https://i.scdn.co/image/300", "height": 300, "width": 300},
  {"url": "https://i.scdn.co/image/64", "height": 64, "width": 64}
]`

func strp(s string) *string { return &s }

func deref(p *string) string {
	if p == nil {
		return "<nil>"
	}
	return *p
}

func TestFlattenAlbums(t *testing.T) {
	page := `{"albums": [` + albumJSON("al1", "2019-03-08", "day", threeImages) + `, null, ` +
		albumJSON("al2", "1981", "year", `[]`) + `]}`

	albums, links, err := FlattenAlbums([][]byte{[]byte(page)}, map[string]int64{"al1": 10, "al2": 20})
	if err != nil {
		t.Fatalf("FlattenAlbums() error = %v", err)
	}
	if len(albums) != 2 {
		t.Fatalf("got %d albums, want 2", len(albums))
	}

	first := albums[0]
	if first.Name != "Album al1" || first.Type != "album" || first.NumTracks != 12 || first.Popularity != 55 {
		t.Errorf("album = %+v", first)
	}
	if deref(first.Image) != "https://i.scdn.co/image/64" {
		t.Errorf("Image = %s, want last image", deref(first.Image))
	}
	if deref(first.ReleaseYear) != "2019" || deref(first.ReleaseMonth) != "03" || deref(first.ReleaseDay) != "08" {
		t.Errorf("release parts = %s %s %s", deref(first.ReleaseYear), deref(first.ReleaseMonth), deref(first.ReleaseDay))
	}
	if first.MsPlayed != 10 {
		t.Errorf("MsPlayed = %d, want 10", first.MsPlayed)
	}

	second := albums[1]
	if second.Image != nil {
		t.Errorf("Image = %s, want nil for empty images", *second.Image)
	}
	if deref(second.ReleaseYear) != "1981" || second.ReleaseMonth != nil || second.ReleaseDay != nil {
		t.Errorf("release parts = %s %s %s", deref(second.ReleaseYear), deref(second.ReleaseMonth), deref(second.ReleaseDay))
	}

	if len(links) != 4 || links[0].AlbumID != "al1" || links[1].ArtistID != "ar2" {
		t.Errorf("links = %+v", links)
	}
}

func TestFlattenAlbumsBadRelease(t *testing.T) {
	tests := []struct {
		name      string
		date      string
		precision string
		wantErr   error
	}{
		{"unknown precision", "2019", "decade", ErrUnknownPrecision},
		{"day with two parts", "2019-03", "day", ErrMalformedDate},
		{"year with three parts", "2019-03-08", "year", ErrMalformedDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := `{"albums": [` + albumJSON("al", tt.date, tt.precision, `[]`) + `]}`
			_, _, err := FlattenAlbums([][]byte{[]byte(page)}, nil)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("FlattenAlbums() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSplitReleaseDate(t *testing.T) {
	tests := []struct {
		date, precision  string
		year, month, day *string
		wantErr          error
	}{
		{"1981", "year", strp("1981"), nil, nil, nil},
		{"1981-12", "month", strp("1981"), strp("12"), nil, nil},
		{"1981-12-04", "day", strp("1981"), strp("12"), strp("04"), nil},
		{"1981-12-", "day", nil, nil, nil, ErrMalformedDate},
		{"1981", "", nil, nil, nil, ErrUnknownPrecision},
	}

	for _, tt := range tests {
		t.Run(tt.precision+"/"+tt.date, func(t *testing.T) {
			year, month, day, err := SplitReleaseDate(tt.date, tt.precision)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("SplitReleaseDate() error = %v, want %v", err, tt.wantErr)
			}
			if deref(year) != deref(tt.year) || deref(month) != deref(tt.month) || deref(day) != deref(tt.day) {
				t.Errorf("SplitReleaseDate() = %s %s %s, want %s %s %s",
					deref(year), deref(month), deref(day), deref(tt.year), deref(tt.month), deref(tt.day))
			}
		})
	}
}
