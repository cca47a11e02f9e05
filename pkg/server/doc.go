// Package server provides the HTTP API for the role sync service.
//
// This package implements the HTTP server that handles identity
// ingestion, guild configuration management and synchronization
// triggers. It uses gorilla/mux for routing and provides middleware
// for authentication and request handling.
//
// # Server Setup
//
//	srv := server.NewServer(identities, settings, synchronizer, host, port, secret)
//	endpoints.RegisterAll(srv)
//	if err := srv.Start(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Endpoints
//
// API endpoints are registered via the endpoints subpackage:
//
//   - /identities/{member} - Verified identity ingestion and lookup
//   - /identities - Identity listing, cleanup, reminders
//   - /guilds/{guild}/sync - Guild-wide synchronization
//   - /guilds/{guild}/members/{member}/sync - Single-member synchronization
//   - /guilds/{guild}/mappings - Mapping table management
//   - /guilds/{guild}/dependencies - Dependency graph management
//   - /guilds/{guild}/priority - Priority slot management
//   - /guilds/{guild}/configuration - Whole-document configuration
//   - /health - Liveness probe
package server
