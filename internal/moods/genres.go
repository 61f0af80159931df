package moods

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
)

// ErrTooFewArtists is returned when fewer artists carry genres than clusters requested.
var ErrTooFewArtists = errors.New("too few artists with genres to cluster")

// GenreConfig holds genre clustering parameters.
type GenreConfig struct {
	K         int // clusters to create
	MinSize   int // smaller clusters become outliers
	MaxGenres int // vocabulary size
}

// DefaultGenreConfig returns the recommended default configuration.
func DefaultGenreConfig() GenreConfig {
	return GenreConfig{
		K:         3,
		MinSize:   1,
		MaxGenres: 50,
	}
}

// GenreCluster is a group of artists with similar genres.
type GenreCluster struct {
	Name      string   `json:"name"`
	TopGenres []string `json:"top_genres"`
	ArtistIDs []string `json:"artist_ids"`
	MsPlayed  int64    `json:"ms_played"`
}

type artistObservation struct {
	id     string
	coords clusters.Coordinates
}

func (o artistObservation) Coordinates() clusters.Coordinates {
	return o.coords
}

func (o artistObservation) Distance(point clusters.Coordinates) float64 {
	return o.coords.Distance(point)
}

// DetectGenres groups artists by genre similarity using k-means clustering.
// Artists without genres, and members of clusters below MinSize, are
// returned as sorted outliers.
func DetectGenres(artists map[string][]string, listening map[string]int64, cfg GenreConfig) ([]GenreCluster, []string, error) {
	def := DefaultGenreConfig()
	if cfg.K <= 0 {
		cfg.K = def.K
	}
	if cfg.K > MaxClusters {
		cfg.K = MaxClusters
	}
	if cfg.MaxGenres <= 0 {
		cfg.MaxGenres = def.MaxGenres
	}

	var valid, outliers []string
	for id, genres := range artists {
		if len(genres) > 0 {
			valid = append(valid, id)
		} else {
			outliers = append(outliers, id)
		}
	}
	slices.Sort(valid)

	if len(valid) < cfg.K {
		return nil, nil, fmt.Errorf("%w: %d artists, %d clusters", ErrTooFewArtists, len(valid), cfg.K)
	}

	vocabulary := genreVocabulary(artists, cfg.MaxGenres)

	obs := make(clusters.Observations, 0, len(valid))
	for _, id := range valid {
		obs = append(obs, artistObservation{id: id, coords: genreVector(artists[id], vocabulary)})
	}

	result, err := kmeans.New().Partition(obs, cfg.K)
	if err != nil {
		return nil, nil, fmt.Errorf("partitioning artists: %w", err)
	}

	var groups []GenreCluster
	for _, cluster := range result {
		var ids []string
		for _, o := range cluster.Observations {
			if ao, ok := o.(artistObservation); ok {
				ids = append(ids, ao.id)
			}
		}
		if len(ids) == 0 {
			continue
		}
		if len(ids) < cfg.MinSize {
			outliers = append(outliers, ids...)
			continue
		}

		slices.Sort(ids)
		top := topGenres(cluster.Center, vocabulary, 3)
		g := GenreCluster{Name: genreClusterName(top), TopGenres: top, ArtistIDs: ids}
		for _, id := range ids {
			g.MsPlayed += listening[id]
		}
		groups = append(groups, g)
	}

	slices.SortFunc(groups, func(a, b GenreCluster) int {
		return cmp.Or(
			cmp.Compare(b.MsPlayed, a.MsPlayed),
			cmp.Compare(len(b.ArtistIDs), len(a.ArtistIDs)),
			strings.Compare(a.Name, b.Name),
		)
	})
	slices.Sort(outliers)
	return groups, outliers, nil
}

// genreVocabulary returns the maxGenres genres carried by the most artists.
func genreVocabulary(artists map[string][]string, maxGenres int) []string {
	counts := make(map[string]int)
	for _, genres := range artists {
		for _, g := range genres {
			counts[strings.ToLower(g)]++
		}
	}

	vocabulary := make([]string, 0, len(counts))
	for g := range counts {
		vocabulary = append(vocabulary, g)
	}
	slices.SortFunc(vocabulary, func(a, b string) int {
		return cmp.Or(cmp.Compare(counts[b], counts[a]), strings.Compare(a, b))
	})

	return vocabulary[:min(maxGenres, len(vocabulary))]
}

// genreVector marks each vocabulary genre the artist carries with 1.
func genreVector(genres []string, vocabulary []string) clusters.Coordinates {
	vector := make(clusters.Coordinates, len(vocabulary))
	for _, g := range genres {
		if i := slices.Index(vocabulary, strings.ToLower(g)); i >= 0 {
			vector[i] = 1
		}
	}
	return vector
}

// topGenres returns up to n vocabulary genres with the highest positive centroid weight.
func topGenres(centroid clusters.Coordinates, vocabulary []string, n int) []string {
	idx := make([]int, 0, len(vocabulary))
	for i := range vocabulary {
		if i < len(centroid) && centroid[i] > 0 {
			idx = append(idx, i)
		}
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		return cmp.Compare(centroid[b], centroid[a])
	})

	top := make([]string, 0, n)
	for _, i := range idx[:min(n, len(idx))] {
		top = append(top, vocabulary[i])
	}
	return top
}

func genreClusterName(top []string) string {
	if len(top) == 0 {
		return "Mixed"
	}
	return strings.Join(top, " & ")
}
