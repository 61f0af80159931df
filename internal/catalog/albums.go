package catalog

import (
	"fmt"
	"slices"
	"strings"

	"github.com/justestif/spotify-history-warehouse/internal/db"
)

type albumObject struct {
	ID                   *string        `json:"id"`
	Name                 *string        `json:"name"`
	AlbumType            *string        `json:"album_type"`
	TotalTracks          *int64         `json:"total_tracks"`
	Artists              *[]*idRef      `json:"artists"`
	ExternalURLs         *externalURLs  `json:"external_urls"`
	Popularity           *int64         `json:"popularity"`
	Images               *[]imageObject `json:"images"`
	ReleaseDate          *string        `json:"release_date"`
	ReleaseDatePrecision *string        `json:"release_date_precision"`
}

type imageObject struct {
	URL    string `json:"url"`
	Height *int   `json:"height"`
	Width  *int   `json:"width"`
}

// FlattenAlbums flattens album pages into albums with listening time and
// album-artist links.
func FlattenAlbums(pages [][]byte, listening map[string]int64) ([]db.Album, []db.AlbumArtist, error) {
	elems, err := decodePages[albumObject](pages, KeyAlbums)
	if err != nil {
		return nil, nil, err
	}

	var (
		albums = []db.Album{}
		links  = []db.AlbumArtist{}
	)
	for _, e := range elems {
		r := e.reader("album")
		obj := e.value

		a := db.Album{
			Name:                 field(r, "name", obj.Name),
			Type:                 field(r, "album_type", obj.AlbumType),
			NumTracks:            field(r, "total_tracks", obj.TotalTracks),
			ID:                   field(r, "id", obj.ID),
			ExternalURLs:         spotifyURL(r, obj.ExternalURLs),
			Popularity:           field(r, "popularity", obj.Popularity),
			Image:                lastImage(field(r, "images", obj.Images)),
			ReleaseDate:          field(r, "release_date", obj.ReleaseDate),
			ReleaseDatePrecision: field(r, "release_date_precision", obj.ReleaseDatePrecision),
		}
		artistIDs := refIDs(r, "artists", obj.Artists)
		if r.err != nil {
			return nil, nil, r.err
		}

		a.ReleaseYear, a.ReleaseMonth, a.ReleaseDay, err = SplitReleaseDate(a.ReleaseDate, a.ReleaseDatePrecision)
		if err != nil {
			return nil, nil, fmt.Errorf("album %s: %w", a.ID, err)
		}

		for _, artistID := range artistIDs {
			links = append(links, db.AlbumArtist{AlbumID: a.ID, ArtistID: artistID})
		}

		ms, ok := listening[a.ID]
		if !ok {
			continue
		}
		a.MsPlayed = ms
		albums = append(albums, a)
	}

	return albums, links, nil
}

// lastImage returns the url of the last (lowest resolution) image, or nil.
func lastImage(images []imageObject) *string {
	if len(images) == 0 {
		return nil
	}
	url := images[len(images)-1].URL
	return &url
}

// SplitReleaseDate splits a release date into the parts its precision
// declares. Parts keep their text form; absent parts are nil.
func SplitReleaseDate(date, precision string) (year, month, day *string, err error) {
	var want int
	switch precision {
	case "year":
		want = 1
	case "month":
		want = 2
	case "day":
		want = 3
	default:
		return nil, nil, nil, fmt.Errorf("%w: %q", ErrUnknownPrecision, precision)
	}

	parts := strings.Split(date, "-")
	if len(parts) != want || slices.Contains(parts, "") {
		return nil, nil, nil, fmt.Errorf("%w: %q with precision %s", ErrMalformedDate, date, precision)
	}

	year = &parts[0]
	if want >= 2 {
		month = &parts[1]
	}
	if want == 3 {
		day = &parts[2]
	}
	return year, month, day, nil
}
