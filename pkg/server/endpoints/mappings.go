package endpoints

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/campuscord/rolesync/pkg/server"
)

// MappingRequest represents one mapping table entry on the wire
type MappingRequest struct {
	AttributeKey   string `json:"attribute_key"`
	AttributeValue string `json:"attribute_value"`
	Role           string `json:"role,omitempty"`
}

// RegisterMappingsEndpoints registers the mapping table endpoints
func RegisterMappingsEndpoints(s *server.Server) {
	mappingsRouter := s.Router.PathPrefix("/guilds/{guild}/mappings").Subrouter()
	mappingsRouter.Use(s.Auth.Middleware)

	mappingsRouter.HandleFunc("", handleListMappings(s)).Methods("GET")
	mappingsRouter.HandleFunc("", handleAddMapping(s)).Methods("PUT")
	mappingsRouter.HandleFunc("", handleRemoveMapping(s)).Methods("DELETE")
}

func handleListMappings(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		guildID := mux.Vars(r)["guild"]

		mappings, err := s.Settings.ListMappings(r.Context(), guildID)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "Unable to list mappings")
			return
		}

		out := make([]MappingRequest, 0, len(mappings))
		for _, m := range mappings {
			out = append(out, MappingRequest{
				AttributeKey:   m.AttributeKey,
				AttributeValue: m.AttributeValue,
				Role:           m.RoleID,
			})
		}
		respondWithJSON(w, http.StatusOK, out)
	}
}

func handleAddMapping(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		guildID := mux.Vars(r)["guild"]

		var req MappingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "Malformed request body")
			return
		}
		if req.AttributeKey == "" || req.AttributeValue == "" || req.Role == "" {
			respondWithError(w, http.StatusUnprocessableEntity, "attribute_key, attribute_value and role are required")
			return
		}

		if err := s.Settings.AddMapping(r.Context(), guildID, req.AttributeKey, req.AttributeValue, req.Role); err != nil {
			respondWithError(w, http.StatusInternalServerError, "Unable to store mapping")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleRemoveMapping(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		guildID := mux.Vars(r)["guild"]

		var req MappingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "Malformed request body")
			return
		}

		existed, err := s.Settings.RemoveMapping(r.Context(), guildID, req.AttributeKey, req.AttributeValue)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "Unable to remove mapping")
			return
		}
		if !existed {
			respondWithError(w, http.StatusNotFound, "Mapping not found")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
