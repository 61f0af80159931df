package spotify

import "github.com/justestif/spotify-history-warehouse/internal/batch"

// Kind is a catalog entity served by a "several items" endpoint.
type Kind int

const (
	Tracks Kind = iota
	Artists
	Albums
	AudioFeatures
)

// Path returns the endpoint path segment.
func (k Kind) Path() string {
	switch k {
	case Tracks:
		return "tracks"
	case Artists:
		return "artists"
	case Albums:
		return "albums"
	case AudioFeatures:
		return "audio-features"
	default:
		return ""
	}
}

// Limit returns the maximum number of ids the endpoint accepts per request.
func (k Kind) Limit() int {
	switch k {
	case Tracks:
		return batch.TrackLimit
	case Artists:
		return batch.ArtistLimit
	case Albums:
		return batch.AlbumLimit
	case AudioFeatures:
		return batch.AudioFeaturesLimit
	default:
		return 0
	}
}

func (k Kind) String() string {
	if p := k.Path(); p != "" {
		return p
	}
	return "unknown"
}
