package endpoints

import (
	"context"
	"net/http"

	"github.com/campuscord/rolesync/pkg/server"
)

// pinger is implemented by stores that can verify their backing
// database connection.
type pinger interface {
	Ping(ctx context.Context) error
}

// RegisterStatusEndpoints registers the unauthenticated health probes
func RegisterStatusEndpoints(s *server.Server) {
	s.Router.HandleFunc("/health", handleHealth(s)).Methods("GET")
	s.Router.HandleFunc("/status", handleHealth(s)).Methods("GET")
}

func handleHealth(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if p, ok := s.Identities.(pinger); ok {
			if err := p.Ping(r.Context()); err != nil {
				respondWithJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "database unavailable"})
				return
			}
		}
		respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
