package endpoints

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/campuscord/rolesync/pkg/audit"
	"github.com/campuscord/rolesync/pkg/server"
	"github.com/campuscord/rolesync/pkg/sync"
)

// SyncResponse represents a single-member synchronization result
type SyncResponse struct {
	Outcome string   `json:"outcome"`
	Added   []string `json:"added,omitempty"`
	Removed []string `json:"removed,omitempty"`
}

// BulkSyncResponse represents a guild-wide synchronization result
type BulkSyncResponse struct {
	RunID     string `json:"run_id"`
	Synced    int    `json:"synced"`
	Unchanged int    `json:"unchanged"`
	Skipped   int    `json:"skipped"`
	Failed    int    `json:"failed"`
}

// RegisterSyncEndpoints registers the synchronization trigger endpoints
func RegisterSyncEndpoints(s *server.Server) {
	guildsRouter := s.Router.PathPrefix("/guilds").Subrouter()
	guildsRouter.Use(s.Auth.Middleware)

	guildsRouter.HandleFunc("/{guild}/sync", handleGuildSync(s)).Methods("POST")
	guildsRouter.HandleFunc("/{guild}/members/{member}/sync", handleMemberSync(s)).Methods("POST")
}

func handleMemberSync(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		guildID := vars["guild"]
		memberID := vars["member"]

		result, err := s.Synchronizer.SyncMember(r.Context(), guildID, memberID)

		event := audit.SyncEvent{
			GuildID:  guildID,
			MemberID: memberID,
			Outcome:  result.Outcome.String(),
			Added:    result.Added,
			Removed:  result.Removed,
		}
		if err != nil {
			event.ErrorMsg = err.Error()
		}
		audit.Log(event)

		if err != nil {
			if result.Outcome == sync.ApplyFailed {
				respondWithJSON(w, http.StatusBadGateway, SyncResponse{
					Outcome: result.Outcome.String(),
					Added:   result.Added,
					Removed: result.Removed,
				})
				return
			}
			respondWithError(w, http.StatusInternalServerError, "Synchronization failed")
			return
		}

		respondWithJSON(w, http.StatusOK, SyncResponse{
			Outcome: result.Outcome.String(),
			Added:   result.Added,
			Removed: result.Removed,
		})
	}
}

func handleGuildSync(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		guildID := mux.Vars(r)["guild"]

		result, err := s.Synchronizer.SyncGuild(r.Context(), guildID)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "Guild synchronization failed")
			return
		}

		audit.Log(audit.BulkSyncEvent{
			GuildID:   guildID,
			RunID:     result.RunID,
			Synced:    result.Synced,
			Unchanged: result.Unchanged,
			Skipped:   result.Skipped,
			Failed:    result.Failed,
		})

		respondWithJSON(w, http.StatusOK, BulkSyncResponse{
			RunID:     result.RunID,
			Synced:    result.Synced,
			Unchanged: result.Unchanged,
			Skipped:   result.Skipped,
			Failed:    result.Failed,
		})
	}
}
