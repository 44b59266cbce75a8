package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"time"

	"CalicoFM/config"
	"CalicoFM/db"
	"CalicoFM/logger"
	"CalicoFM/repository"
)

// APIHandler 处理所有API请求
type APIHandler struct {
	ratingRepo repository.RatingRepository
	cfg        *config.Config
}

// NewAPIHandler 创建新的API处理器
func NewAPIHandler(ratingRepo repository.RatingRepository, cfg *config.Config) *APIHandler {
	return &APIHandler{
		ratingRepo: ratingRepo,
		cfg:        cfg,
	}
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("failed to encode response", logger.ErrorField(err))
	}
}

// respondError writes the standard {"error": msg} shape.
func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

// WelcomeHandler handles GET /api.
func (h *APIHandler) WelcomeHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"message":  "Welcome to the CalicoFM API",
		"status":   "running",
		"database": "connected",
	})
}

// HealthHandler handles GET /api/health with a live database round trip.
func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := db.Ping(ctx); err != nil {
		logger.Error("health check failed", logger.ErrorField(err))
		respondJSON(w, http.StatusInternalServerError, map[string]string{
			"status":  "error",
			"message": err.Error(),
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"database":  "connected",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// ClientIPHandler handles GET /api/client-ip. Forwarding headers take
// priority over the raw connection address: first entry of X-Forwarded-For,
// then X-Real-Ip, then RemoteAddr, else "unknown".
func (h *APIHandler) ClientIPHandler(w http.ResponseWriter, r *http.Request) {
	ip := ""

	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		ip = strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	if ip == "" {
		ip = strings.TrimSpace(r.Header.Get("X-Real-Ip"))
	}
	if ip == "" {
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			ip = host
		} else {
			ip = r.RemoteAddr
		}
	}
	if ip == "" {
		ip = "unknown"
	}

	respondJSON(w, http.StatusOK, map[string]string{"ip": ip})
}
