package endpoints

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/campuscord/rolesync/pkg/roles"
	"github.com/campuscord/rolesync/pkg/server"
	"github.com/campuscord/rolesync/pkg/settings"
	"github.com/campuscord/rolesync/pkg/store"
)

// ConfigurationResponse is the assembled guild configuration document
type ConfigurationResponse struct {
	ClassificationKey string                       `json:"classification_key"`
	Settings          settings.Toggles             `json:"settings"`
	Priority          []roles.Slot                 `json:"priority"`
	Mappings          map[string]map[string]string `json:"mappings"`
	Dependencies      roles.Graph                  `json:"dependencies"`
}

// SettingsRequest represents the guild toggles on the wire
type SettingsRequest struct {
	AutoAssign        bool   `json:"auto_assign"`
	SyncOnJoin        bool   `json:"sync_on_join"`
	ClassificationKey string `json:"classification_key"`
}

// RegisterConfigurationEndpoints registers the whole-document
// configuration and guild settings endpoints
func RegisterConfigurationEndpoints(s *server.Server) {
	configRouter := s.Router.PathPrefix("/guilds/{guild}/configuration").Subrouter()
	configRouter.Use(s.Auth.Middleware)
	configRouter.HandleFunc("", handleGetConfiguration(s)).Methods("GET")
	configRouter.HandleFunc("", handleApplyConfiguration(s)).Methods("PUT")

	settingsRouter := s.Router.PathPrefix("/guilds/{guild}/settings").Subrouter()
	settingsRouter.Use(s.Auth.Middleware)
	settingsRouter.HandleFunc("", handleGetSettings(s)).Methods("GET")
	settingsRouter.HandleFunc("", handleUpdateSettings(s)).Methods("PUT")
}

func handleGetConfiguration(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		guildID := mux.Vars(r)["guild"]
		ctx := r.Context()

		guildSettings, err := s.Settings.GuildSettings(ctx, guildID)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "Unable to read guild settings")
			return
		}
		slots, err := s.Settings.Priority(ctx, guildID)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "Unable to read priority slots")
			return
		}
		mappings, err := s.Settings.ListMappings(ctx, guildID)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "Unable to list mappings")
			return
		}
		graph, err := s.Settings.Dependencies(ctx, guildID)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "Unable to read dependencies")
			return
		}

		mappingTable := make(map[string]map[string]string)
		for _, m := range mappings {
			if mappingTable[m.AttributeKey] == nil {
				mappingTable[m.AttributeKey] = make(map[string]string)
			}
			mappingTable[m.AttributeKey][m.AttributeValue] = m.RoleID
		}

		respondWithJSON(w, http.StatusOK, ConfigurationResponse{
			ClassificationKey: guildSettings.ClassificationKey,
			Settings: settings.Toggles{
				AutoAssign: guildSettings.AutoAssign,
				SyncOnJoin: guildSettings.SyncOnJoin,
			},
			Priority:     slots,
			Mappings:     mappingTable,
			Dependencies: graph,
		})
	}
}

func handleApplyConfiguration(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		guildID := mux.Vars(r)["guild"]
		dryRun := r.URL.Query().Get("dry_run") == "true"

		result, err := settings.NewApplier(s.Settings, guildID).
			WithDryRun(dryRun).
			ApplyFromReader(r.Context(), http.MaxBytesReader(w, r.Body, 1<<20))
		if err != nil {
			respondWithError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		respondWithJSON(w, http.StatusOK, result)
	}
}

func handleGetSettings(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		guildID := mux.Vars(r)["guild"]

		guildSettings, err := s.Settings.GuildSettings(r.Context(), guildID)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "Unable to read guild settings")
			return
		}
		respondWithJSON(w, http.StatusOK, SettingsRequest{
			AutoAssign:        guildSettings.AutoAssign,
			SyncOnJoin:        guildSettings.SyncOnJoin,
			ClassificationKey: guildSettings.ClassificationKey,
		})
	}
}

func handleUpdateSettings(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		guildID := mux.Vars(r)["guild"]

		var req SettingsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "Malformed request body")
			return
		}

		if err := s.Settings.UpdateGuildSettings(r.Context(), guildID, store.Settings{
			AutoAssign:        req.AutoAssign,
			SyncOnJoin:        req.SyncOnJoin,
			ClassificationKey: req.ClassificationKey,
		}); err != nil {
			respondWithError(w, http.StatusInternalServerError, "Unable to update guild settings")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
