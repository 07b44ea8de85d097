package handlers

import (
	"context"
	"net/http"
	"time"
)

// Pinger checks a dependency's availability
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Health handles GET /healthz, reporting 503 when the database is unreachable
func Health(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			respondWithError(w, http.StatusServiceUnavailable, "database unavailable", "Health check failed", err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
