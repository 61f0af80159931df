package catalog

import "github.com/justestif/spotify-history-warehouse/internal/db"

type audioFeaturesObject struct {
	ID               *string  `json:"id"`
	Acousticness     *float64 `json:"acousticness"`
	AnalysisURL      *string  `json:"analysis_url"`
	Danceability     *float64 `json:"danceability"`
	DurationMs       *int64   `json:"duration_ms"`
	Energy           *float64 `json:"energy"`
	Instrumentalness *float64 `json:"instrumentalness"`
	Key              *int64   `json:"key"`
	Liveness         *float64 `json:"liveness"`
	Loudness         *float64 `json:"loudness"`
	Mode             *int64   `json:"mode"`
	Speechiness      *float64 `json:"speechiness"`
	Tempo            *float64 `json:"tempo"`
	TimeSignature    *int64   `json:"time_signature"`
	Valence          *float64 `json:"valence"`
}

// FlattenAudioFeatures flattens audio-feature pages. Tracks the provider has
// not analyzed come back as null and produce no row.
func FlattenAudioFeatures(pages [][]byte) ([]db.AudioFeatures, error) {
	elems, err := decodePages[audioFeaturesObject](pages, KeyAudioFeatures)
	if err != nil {
		return nil, err
	}

	features := make([]db.AudioFeatures, 0, len(elems))
	for _, e := range elems {
		r := e.reader("audio_features")
		obj := e.value

		f := db.AudioFeatures{
			TrackID:          field(r, "id", obj.ID),
			Acousticness:     field(r, "acousticness", obj.Acousticness),
			AnalysisURL:      field(r, "analysis_url", obj.AnalysisURL),
			Danceability:     field(r, "danceability", obj.Danceability),
			DurationMs:       field(r, "duration_ms", obj.DurationMs),
			Energy:           field(r, "energy", obj.Energy),
			Instrumentalness: field(r, "instrumentalness", obj.Instrumentalness),
			Key:              field(r, "key", obj.Key),
			Liveness:         field(r, "liveness", obj.Liveness),
			Loudness:         field(r, "loudness", obj.Loudness),
			Mode:             field(r, "mode", obj.Mode),
			Speechiness:      field(r, "speechiness", obj.Speechiness),
			Tempo:            field(r, "tempo", obj.Tempo),
			TimeSignature:    field(r, "time_signature", obj.TimeSignature),
			Valence:          field(r, "valence", obj.Valence),
		}
		if r.err != nil {
			return nil, r.err
		}
		features = append(features, f)
	}
	return features, nil
}
