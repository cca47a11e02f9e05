package endpoints

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/campuscord/rolesync/pkg/roles"
	"github.com/campuscord/rolesync/pkg/server"
	"github.com/campuscord/rolesync/pkg/store"
)

// RegisterPriorityEndpoints registers the priority slot endpoints
func RegisterPriorityEndpoints(s *server.Server) {
	priorityRouter := s.Router.PathPrefix("/guilds/{guild}/priority").Subrouter()
	priorityRouter.Use(s.Auth.Middleware)

	priorityRouter.HandleFunc("", handleGetPriority(s)).Methods("GET")
	priorityRouter.HandleFunc("", handleReplacePriority(s)).Methods("PUT")
	priorityRouter.HandleFunc("/{slot}", handleSetPriorityRole(s)).Methods("PATCH")
}

func handleGetPriority(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		guildID := mux.Vars(r)["guild"]

		slots, err := s.Settings.Priority(r.Context(), guildID)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "Unable to read priority slots")
			return
		}
		if slots == nil {
			slots = []roles.Slot{}
		}
		respondWithJSON(w, http.StatusOK, slots)
	}
}

func handleReplacePriority(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		guildID := mux.Vars(r)["guild"]

		var slots []roles.Slot
		if err := json.NewDecoder(r.Body).Decode(&slots); err != nil {
			respondWithError(w, http.StatusBadRequest, "Malformed request body")
			return
		}
		seen := make(map[string]bool, len(slots))
		for _, slot := range slots {
			if slot.Name == "" || len(slot.Triggers) == 0 {
				respondWithError(w, http.StatusUnprocessableEntity, "Each slot needs a name and at least one trigger")
				return
			}
			if seen[slot.Name] {
				respondWithError(w, http.StatusUnprocessableEntity, "Duplicate slot name: "+slot.Name)
				return
			}
			seen[slot.Name] = true
		}

		if err := s.Settings.ReplacePriority(r.Context(), guildID, slots); err != nil {
			respondWithError(w, http.StatusInternalServerError, "Unable to replace priority slots")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleSetPriorityRole(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		guildID := vars["guild"]
		slotName := vars["slot"]

		var req struct {
			Role string `json:"role"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "Malformed request body")
			return
		}

		err := s.Settings.SetPriorityRole(r.Context(), guildID, slotName, req.Role)
		if errors.Is(err, store.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Slot not found")
			return
		}
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "Unable to update slot")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
