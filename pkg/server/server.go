package server

import (
	"context"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/campuscord/rolesync/pkg/server/middleware"
	"github.com/campuscord/rolesync/pkg/store"
	"github.com/campuscord/rolesync/pkg/sync"
)

type Server struct {
	Identities   store.IdentityStore
	Settings     store.SettingsStore
	Synchronizer *sync.Synchronizer
	Router       *mux.Router
	Auth         *middleware.BearerAuthenticator
	srv          *http.Server
}

func NewServer(
	identities store.IdentityStore,
	settings store.SettingsStore,
	synchronizer *sync.Synchronizer,
	host string,
	port string,
	tokenSecret []byte,
) *Server {

	router := mux.NewRouter().UseEncodedPath()
	router.Use(middleware.RequestID)
	srv := &http.Server{
		Handler: handlers.LoggingHandler(os.Stdout, router),
		Addr:    host + ":" + port,
		// Good practice: enforce timeouts for servers you create!
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	return &Server{
		Identities:   identities,
		Settings:     settings,
		Synchronizer: synchronizer,
		Router:       router,
		Auth:         middleware.NewBearerAuthenticator(tokenSecret),
		srv:          srv,
	}
}

func (s Server) Start() error {
	return s.srv.ListenAndServe()
}

// StartWithListener serves on an existing listener. Used by tests that
// need to pick their own port.
func (s Server) StartWithListener(listener net.Listener) error {
	return s.srv.Serve(listener)
}

func (s Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
