package endpoints

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/campuscord/rolesync/pkg/roles"
	"github.com/campuscord/rolesync/pkg/server"
)

// DependencyRequest represents one dependency edge on the wire
type DependencyRequest struct {
	Role     string `json:"role"`
	Requires string `json:"requires"`
}

// RegisterDependenciesEndpoints registers the dependency graph endpoints
func RegisterDependenciesEndpoints(s *server.Server) {
	depsRouter := s.Router.PathPrefix("/guilds/{guild}/dependencies").Subrouter()
	depsRouter.Use(s.Auth.Middleware)

	depsRouter.HandleFunc("", handleGetDependencies(s)).Methods("GET")
	depsRouter.HandleFunc("", handleAddDependency(s)).Methods("PUT")
	depsRouter.HandleFunc("", handleRemoveDependency(s)).Methods("DELETE")
}

func handleGetDependencies(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		guildID := mux.Vars(r)["guild"]

		graph, err := s.Settings.Dependencies(r.Context(), guildID)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "Unable to read dependencies")
			return
		}
		respondWithJSON(w, http.StatusOK, graph)
	}
}

func handleAddDependency(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		guildID := mux.Vars(r)["guild"]

		var req DependencyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "Malformed request body")
			return
		}
		if req.Role == "" || req.Requires == "" {
			respondWithError(w, http.StatusUnprocessableEntity, "role and requires are required")
			return
		}
		if req.Role == req.Requires {
			respondWithError(w, http.StatusUnprocessableEntity, "A role cannot require itself")
			return
		}

		err := s.Settings.AddDependency(r.Context(), guildID, req.Role, req.Requires)
		var cycleErr *roles.CycleError
		if errors.As(err, &cycleErr) {
			respondWithError(w, http.StatusUnprocessableEntity, cycleErr.Error())
			return
		}
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "Unable to store dependency")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleRemoveDependency(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		guildID := mux.Vars(r)["guild"]

		var req DependencyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "Malformed request body")
			return
		}

		existed, err := s.Settings.RemoveDependency(r.Context(), guildID, req.Role, req.Requires)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "Unable to remove dependency")
			return
		}
		if !existed {
			respondWithError(w, http.StatusNotFound, "Dependency not found")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
