package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/justestif/spotify-history-warehouse/internal/db"
	"github.com/justestif/spotify-history-warehouse/internal/logging"
	"github.com/justestif/spotify-history-warehouse/internal/moods"
)

const (
	defaultTopLimit = 10
	maxTopLimit     = 100
)

// Handlers serves the report endpoints.
type Handlers struct {
	warehouse *db.Warehouse
}

// NewHandlers creates report handlers over warehouse.
func NewHandlers(warehouse *db.Warehouse) *Handlers {
	return &Handlers{warehouse: warehouse}
}

type response struct {
	Status string    `json:"status"`
	Data   any       `json:"data,omitempty"`
	Error  *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, resp response) {
	data, err := json.Marshal(resp)
	if err != nil {
		logging.Error().Err(err).Msg("marshaling response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("writing response")
	}
}

func respondData(w http.ResponseWriter, data any) {
	respondJSON(w, http.StatusOK, response{Status: "ok", Data: data})
}

func respondError(w http.ResponseWriter, status int, code, message string, err error) {
	if err != nil {
		logging.Error().Err(err).Str("code", code).Msg("request failed")
	}
	respondJSON(w, status, response{Status: "error", Error: &apiError{Code: code, Message: message}})
}

// intParam parses an optional positive integer query parameter.
func intParam(r *http.Request, name string, def, max int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > max {
		return 0, false
	}
	return n, true
}

// Health handles GET /healthz.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	respondData(w, map[string]string{"status": "ok"})
}

// Tables handles GET /api/tables: row counts of every snapshot table.
func (h *Handlers) Tables(w http.ResponseWriter, r *http.Request) {
	counts, err := h.warehouse.Counts(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "QUERY_FAILED", "counting tables", err)
		return
	}
	respondData(w, counts)
}

// Top handles GET /api/top/{entity}?limit=N for tracks, artists or albums.
func (h *Handlers) Top(w http.ResponseWriter, r *http.Request) {
	limit, ok := intParam(r, "limit", defaultTopLimit, maxTopLimit)
	if !ok {
		respondError(w, http.StatusBadRequest, "INVALID_LIMIT", "limit must be between 1 and 100", nil)
		return
	}

	ranked, err := h.warehouse.Top(r.Context(), chi.URLParam(r, "entity"), limit)
	switch {
	case errors.Is(err, db.ErrUnknownEntity):
		respondError(w, http.StatusNotFound, "UNKNOWN_ENTITY", "entity must be tracks, artists or albums", nil)
		return
	case err != nil:
		respondError(w, http.StatusInternalServerError, "QUERY_FAILED", "ranking entities", err)
		return
	}
	respondData(w, ranked)
}

// Moods handles GET /api/moods?k=N: k-means mood clusters of analyzed tracks.
func (h *Handlers) Moods(w http.ResponseWriter, r *http.Request) {
	k, ok := intParam(r, "k", moods.DefaultConfig().K, moods.MaxClusters)
	if !ok {
		respondError(w, http.StatusBadRequest, "INVALID_K", "k must be between 1 and 12", nil)
		return
	}

	ctx := r.Context()
	features, err := h.warehouse.TrackFeatures(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "QUERY_FAILED", "reading audio features", err)
		return
	}
	listening, err := h.warehouse.TrackListening(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "QUERY_FAILED", "reading listening time", err)
		return
	}

	cfg := moods.DefaultConfig()
	cfg.K = k
	result, err := moods.Detect(features, listening, cfg)
	switch {
	case errors.Is(err, moods.ErrTooFewTracks):
		respondError(w, http.StatusUnprocessableEntity, "TOO_FEW_TRACKS", err.Error(), nil)
		return
	case err != nil:
		respondError(w, http.StatusInternalServerError, "CLUSTERING_FAILED", "clustering tracks", err)
		return
	}
	respondData(w, result)
}

type genreReport struct {
	Clusters []moods.GenreCluster `json:"clusters"`
	Outliers []string             `json:"outliers"`
}

// Genres handles GET /api/genres?k=N: k-means clusters of artists by genre.
func (h *Handlers) Genres(w http.ResponseWriter, r *http.Request) {
	k, ok := intParam(r, "k", moods.DefaultGenreConfig().K, moods.MaxClusters)
	if !ok {
		respondError(w, http.StatusBadRequest, "INVALID_K", "k must be between 1 and 12", nil)
		return
	}

	ctx := r.Context()
	genres, err := h.warehouse.ArtistGenres(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "QUERY_FAILED", "reading artist genres", err)
		return
	}
	listening, err := h.warehouse.ArtistListening(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "QUERY_FAILED", "reading listening time", err)
		return
	}

	cfg := moods.DefaultGenreConfig()
	cfg.K = k
	groups, outliers, err := moods.DetectGenres(genres, listening, cfg)
	switch {
	case errors.Is(err, moods.ErrTooFewArtists):
		respondError(w, http.StatusUnprocessableEntity, "TOO_FEW_ARTISTS", err.Error(), nil)
		return
	case err != nil:
		respondError(w, http.StatusInternalServerError, "CLUSTERING_FAILED", "clustering artists", err)
		return
	}
	respondData(w, genreReport{Clusters: groups, Outliers: outliers})
}
