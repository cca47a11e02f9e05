package endpoints

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/campuscord/rolesync/pkg/attribute"
	"github.com/campuscord/rolesync/pkg/audit"
	"github.com/campuscord/rolesync/pkg/server"
	"github.com/campuscord/rolesync/pkg/store"
)

// IdentityResponse represents a verified identity on the wire
type IdentityResponse struct {
	MemberID         string           `json:"member_id"`
	Attributes       attribute.Record `json:"attributes"`
	VerificationDate time.Time        `json:"verification_date"`
	ReminderDate     time.Time        `json:"reminder_date"`
	ExpirationDate   time.Time        `json:"expiration_date"`
}

func identityResponse(identity *store.Identity) IdentityResponse {
	return IdentityResponse{
		MemberID:         identity.MemberID,
		Attributes:       identity.Record,
		VerificationDate: identity.VerificationDate,
		ReminderDate:     identity.ReminderDate,
		ExpirationDate:   identity.ExpirationDate,
	}
}

// RegisterIdentitiesEndpoints registers the /identities endpoints
func RegisterIdentitiesEndpoints(s *server.Server) {
	identitiesRouter := s.Router.PathPrefix("/identities").Subrouter()
	identitiesRouter.Use(s.Auth.Middleware)

	identitiesRouter.HandleFunc("", handleListIdentities(s)).Methods("GET")
	identitiesRouter.HandleFunc("/cleanup", handleCleanup(s)).Methods("POST")
	identitiesRouter.HandleFunc("/reminders", handleReminders(s)).Methods("GET")
	identitiesRouter.HandleFunc("/{member}", handlePutIdentity(s)).Methods("PUT")
	identitiesRouter.HandleFunc("/{member}", handleGetIdentity(s)).Methods("GET")
	identitiesRouter.HandleFunc("/{member}", handleDeleteIdentity(s)).Methods("DELETE")
}

func handlePutIdentity(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		memberID := mux.Vars(r)["member"]

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Unable to read request body")
			return
		}

		record, err := attribute.FromJSON(body)
		if err != nil {
			respondWithError(w, http.StatusUnprocessableEntity, "Malformed attribute record")
			return
		}
		if len(record) == 0 {
			respondWithError(w, http.StatusUnprocessableEntity, "Attribute record is empty")
			return
		}

		if err := s.Identities.Upsert(r.Context(), memberID, record); err != nil {
			audit.Log(audit.LinkEvent{MemberID: memberID, ErrorMsg: err.Error()})
			respondWithError(w, http.StatusInternalServerError, "Unable to store identity")
			return
		}
		audit.Log(audit.LinkEvent{MemberID: memberID})

		identity, err := s.Identities.FetchIdentity(r.Context(), memberID)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "Unable to read stored identity")
			return
		}
		respondWithJSON(w, http.StatusOK, identityResponse(identity))
	}
}

func handleGetIdentity(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		memberID := mux.Vars(r)["member"]

		identity, err := s.Identities.FetchIdentity(r.Context(), memberID)
		if errors.Is(err, store.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Identity not found")
			return
		}
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "Unable to read identity")
			return
		}
		respondWithJSON(w, http.StatusOK, identityResponse(identity))
	}
}

func handleDeleteIdentity(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		memberID := mux.Vars(r)["member"]

		existed, err := s.Identities.Delete(r.Context(), memberID)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "Unable to delete identity")
			return
		}
		if !existed {
			respondWithError(w, http.StatusNotFound, "Identity not found")
			return
		}
		audit.Log(audit.UnlinkEvent{MemberID: memberID, Reason: "requested"})
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleListIdentities(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identities, err := s.Identities.List(r.Context())
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "Unable to list identities")
			return
		}

		out := make([]IdentityResponse, 0, len(identities))
		for i := range identities {
			out = append(out, identityResponse(&identities[i]))
		}
		respondWithJSON(w, http.StatusOK, out)
	}
}

func handleCleanup(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		removed, err := s.Identities.DeleteExpired(r.Context())
		if err != nil {
			audit.Log(audit.CleanupEvent{ErrorMsg: err.Error()})
			respondWithError(w, http.StatusInternalServerError, "Cleanup failed")
			return
		}
		audit.Log(audit.CleanupEvent{Removed: int(removed)})
		respondWithJSON(w, http.StatusOK, map[string]int64{"removed": removed})
	}
}

func handleReminders(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identities, err := s.Identities.DueReminders(r.Context())
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "Unable to list reminders")
			return
		}

		out := make([]IdentityResponse, 0, len(identities))
		for i := range identities {
			out = append(out, identityResponse(&identities[i]))
		}
		respondWithJSON(w, http.StatusOK, out)
	}
}
