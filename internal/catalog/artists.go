package catalog

import "github.com/justestif/spotify-history-warehouse/internal/db"

type artistObject struct {
	ID           *string       `json:"id"`
	Name         *string       `json:"name"`
	Popularity   *int64        `json:"popularity"`
	Genres       *[]string     `json:"genres"`
	ExternalURLs *externalURLs `json:"external_urls"`
	Followers    *struct {
		Total *int64 `json:"total"`
	} `json:"followers"`
}

// FlattenArtists flattens artist pages into artists with listening time and
// artist-genre links.
func FlattenArtists(pages [][]byte, listening map[string]int64) ([]db.Artist, []db.ArtistGenre, error) {
	elems, err := decodePages[artistObject](pages, KeyArtists)
	if err != nil {
		return nil, nil, err
	}

	var (
		artists = []db.Artist{}
		genres  = []db.ArtistGenre{}
	)
	for _, e := range elems {
		r := e.reader("artist")
		obj := e.value

		var followers int64
		if obj.Followers == nil {
			r.fail("followers")
		} else {
			followers = field(r, "followers.total", obj.Followers.Total)
		}

		a := db.Artist{
			Name:         field(r, "name", obj.Name),
			Popularity:   field(r, "popularity", obj.Popularity),
			ID:           field(r, "id", obj.ID),
			ExternalURLs: spotifyURL(r, obj.ExternalURLs),
			Followers:    followers,
		}
		artistGenres := field(r, "genres", obj.Genres)
		if r.err != nil {
			return nil, nil, r.err
		}

		for _, g := range artistGenres {
			genres = append(genres, db.ArtistGenre{ArtistID: a.ID, Genre: g})
		}

		ms, ok := listening[a.ID]
		if !ok {
			continue
		}
		a.MsPlayed = ms
		artists = append(artists, a)
	}

	return artists, genres, nil
}
