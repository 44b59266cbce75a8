package server

import (
	"encoding/json"
	"net/http"
	"net/url"

	"CalicoFM/cache"
	"CalicoFM/logger"
	"CalicoFM/model"

	"github.com/gorilla/mux"
)

// pathVar returns the decoded route variable. The router matches the encoded
// path, so vars arrive percent-encoded and a %2F stays inside its segment.
func pathVar(vars map[string]string, name string) string {
	raw := vars[name]
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// SubmitRatingHandler handles POST /api/ratings: validate, upsert by the
// (artist, title, fingerprint) triple, return the stored row.
func (h *APIHandler) SubmitRatingHandler(w http.ResponseWriter, r *http.Request) {
	var submission model.RatingSubmission
	if err := json.NewDecoder(r.Body).Decode(&submission); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	rating, err := submission.Validate()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	stored, err := h.ratingRepo.Upsert(r.Context(), rating)
	if err != nil {
		logger.Error("rating submission failed",
			logger.String("artist", rating.Artist),
			logger.String("title", rating.Title),
			logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to submit rating")
		return
	}

	// The aggregate for this track just changed.
	cache.InvalidateCounts(r.Context(), stored.Artist, stored.Title)

	logger.Debug("rating stored",
		logger.String("artist", stored.Artist),
		logger.String("title", stored.Title),
		logger.Int("rating", stored.Rating))

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"rating":  stored,
	})
}

// GetRatingCountsHandler handles GET /api/ratings/{artist}/{title}.
// Unrated tracks return zero counts, never an error.
func (h *APIHandler) GetRatingCountsHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	artist := pathVar(vars, "artist")
	title := pathVar(vars, "title")

	if counts, ok := cache.GetCounts(r.Context(), artist, title); ok {
		respondJSON(w, http.StatusOK, counts)
		return
	}

	thumbsUp, thumbsDown, err := h.ratingRepo.CountsFor(r.Context(), artist, title)
	if err != nil {
		logger.Error("rating count query failed",
			logger.String("artist", artist),
			logger.String("title", title),
			logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to retrieve ratings")
		return
	}

	counts := &model.RatingCounts{
		Artist:     artist,
		Title:      title,
		ThumbsUp:   thumbsUp,
		ThumbsDown: thumbsDown,
	}
	cache.SetCounts(r.Context(), counts)

	respondJSON(w, http.StatusOK, counts)
}

// GetUserRatingHandler handles GET /api/ratings/{artist}/{title}/user/{fingerprint}.
// Absence of a vote is a normal answer, not an error.
func (h *APIHandler) GetUserRatingHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	artist := pathVar(vars, "artist")
	title := pathVar(vars, "title")
	fingerprint := pathVar(vars, "fingerprint")

	rating, err := h.ratingRepo.UserRating(r.Context(), artist, title, fingerprint)
	if err != nil {
		logger.Error("user rating query failed",
			logger.String("artist", artist),
			logger.String("title", title),
			logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to check user rating")
		return
	}

	response := struct {
		HasRated bool `json:"hasRated"`
		Rating   *int `json:"rating"`
	}{}
	if rating != nil {
		response.HasRated = true
		response.Rating = &rating.Rating
	}

	respondJSON(w, http.StatusOK, response)
}
