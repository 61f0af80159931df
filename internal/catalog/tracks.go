package catalog

import "github.com/justestif/spotify-history-warehouse/internal/db"

type trackObject struct {
	ID           *string       `json:"id"`
	Name         *string       `json:"name"`
	Album        *idRef        `json:"album"`
	Artists      *[]*idRef     `json:"artists"`
	Popularity   *int64        `json:"popularity"`
	DiscNumber   *int64        `json:"disc_number"`
	TrackNumber  *int64        `json:"track_number"`
	Explicit     *bool         `json:"explicit"`
	ExternalURLs *externalURLs `json:"external_urls"`
	DurationMs   *int64        `json:"duration_ms"`
}

// FlattenTracks flattens track pages into tracks with listening time and
// track-artist links.
func FlattenTracks(pages [][]byte, listening map[string]int64) ([]db.Track, []db.TrackArtist, error) {
	elems, err := decodePages[trackObject](pages, KeyTracks)
	if err != nil {
		return nil, nil, err
	}

	var (
		tracks = []db.Track{}
		links  = []db.TrackArtist{}
	)
	for _, e := range elems {
		r := e.reader("track")
		obj := e.value

		var albumID string
		if obj.Album == nil {
			r.fail("album")
		} else {
			albumID = field(r, "album.id", obj.Album.ID)
		}

		t := db.Track{
			Name:         field(r, "name", obj.Name),
			AlbumID:      albumID,
			Popularity:   field(r, "popularity", obj.Popularity),
			DiscNumber:   field(r, "disc_number", obj.DiscNumber),
			TrackNumber:  field(r, "track_number", obj.TrackNumber),
			ID:           field(r, "id", obj.ID),
			Explicit:     field(r, "explicit", obj.Explicit),
			ExternalURLs: spotifyURL(r, obj.ExternalURLs),
			DurationMs:   field(r, "duration_ms", obj.DurationMs),
		}
		artistIDs := refIDs(r, "artists", obj.Artists)
		if r.err != nil {
			return nil, nil, r.err
		}

		for _, artistID := range artistIDs {
			links = append(links, db.TrackArtist{TrackID: t.ID, ArtistID: artistID})
		}

		ms, ok := listening[t.ID]
		if !ok {
			continue
		}
		t.MsPlayed = ms
		tracks = append(tracks, t)
	}

	return tracks, links, nil
}
