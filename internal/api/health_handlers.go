package api

import (
	"context"
	"net/http"
	"time"
)

// Version is the build version reported by the health endpoint.
// Overridden at build time:
//
//	go build -ldflags "-X github.com/quiverapp/quiver-server/internal/api.Version=v1.2.3"
var Version = "dev"

// healthResponse is the health endpoint body.
type healthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
	Error     string `json:"error,omitempty"`
}

// handleHealth reports whether the process can reach its database.
// Returns 503 when the database is unreachable so load balancers can
// pull the instance.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := healthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   Version,
	}

	if err := s.store.Ping(ctx); err != nil {
		s.logger.Error("Health check failed", "error", err)
		resp.Status = "unhealthy"
		resp.Error = "database unreachable"
		respondJSON(w, http.StatusServiceUnavailable, resp, s.logger)
		return
	}

	respondJSON(w, http.StatusOK, resp, s.logger)
}
