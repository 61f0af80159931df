// Package moods groups analyzed tracks into mood clusters with k-means over
// their energy, valence, danceability and acousticness.
package moods

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"

	"github.com/justestif/spotify-history-warehouse/internal/db"
)

// ErrTooFewTracks is returned when there are fewer tracks than clusters.
var ErrTooFewTracks = errors.New("fewer analyzed tracks than clusters")

// Features are the audio feature columns clustered on.
var Features = []string{"energy", "valence", "danceability", "acousticness"}

// MaxClusters bounds Config.K.
const MaxClusters = 12

// Config holds clustering parameters.
type Config struct {
	K       int // number of clusters
	MinSize int // smaller clusters are dropped
}

// DefaultConfig returns the default clustering parameters.
func DefaultConfig() Config {
	return Config{K: 3, MinSize: 1}
}

// Mood is one cluster of tracks.
type Mood struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Centroid    map[string]float64 `json:"centroid"`
	TrackIDs    []string           `json:"track_ids"`
	MsPlayed    int64              `json:"ms_played"`
}

type trackObservation struct {
	id     string
	coords clusters.Coordinates
}

func (o trackObservation) Coordinates() clusters.Coordinates {
	return o.coords
}

func (o trackObservation) Distance(point clusters.Coordinates) float64 {
	return o.coords.Distance(point)
}

// Detect clusters tracks (feature vectors aligned with db.FeatureColumns)
// and returns the moods ordered by listening time, most listened first.
// listening may be nil.
func Detect(tracks []db.OwnedFeatures, listening map[string]int64, cfg Config) ([]Mood, error) {
	if cfg.K <= 0 {
		cfg.K = DefaultConfig().K
	}
	if cfg.K > MaxClusters {
		cfg.K = MaxClusters
	}
	if len(tracks) < cfg.K {
		return nil, fmt.Errorf("%w: %d tracks, %d clusters", ErrTooFewTracks, len(tracks), cfg.K)
	}

	index, err := featureIndex()
	if err != nil {
		return nil, err
	}

	obs := make(clusters.Observations, 0, len(tracks))
	for _, t := range tracks {
		coords := make(clusters.Coordinates, len(index))
		for i, col := range index {
			if col >= len(t.Values) {
				return nil, fmt.Errorf("track %s: %d feature values, want %d", t.OwnerID, len(t.Values), len(db.FeatureColumns))
			}
			coords[i] = t.Values[col]
		}
		obs = append(obs, trackObservation{id: t.OwnerID, coords: coords})
	}

	result, err := kmeans.New().Partition(obs, cfg.K)
	if err != nil {
		return nil, fmt.Errorf("partitioning tracks: %w", err)
	}

	moods := make([]Mood, 0, len(result))
	for _, cluster := range result {
		if len(cluster.Observations) == 0 || len(cluster.Observations) < cfg.MinSize {
			continue
		}

		m := Mood{Centroid: make(map[string]float64, len(Features))}
		for i, name := range Features {
			m.Centroid[name] = cluster.Center[i]
		}
		m.Name = Name(m.Centroid)
		m.Description = Describe(m.Centroid)

		for _, o := range cluster.Observations {
			if to, ok := o.(trackObservation); ok {
				m.TrackIDs = append(m.TrackIDs, to.id)
				m.MsPlayed += listening[to.id]
			}
		}
		slices.Sort(m.TrackIDs)
		moods = append(moods, m)
	}

	slices.SortFunc(moods, func(a, b Mood) int {
		return cmp.Or(
			cmp.Compare(b.MsPlayed, a.MsPlayed),
			cmp.Compare(len(b.TrackIDs), len(a.TrackIDs)),
			strings.Compare(a.Name, b.Name),
		)
	})
	return moods, nil
}

func featureIndex() ([]int, error) {
	index := make([]int, len(Features))
	for i, name := range Features {
		col := slices.Index(db.FeatureColumns, name)
		if col < 0 {
			return nil, fmt.Errorf("unknown feature column %q", name)
		}
		index[i] = col
	}
	return index, nil
}
