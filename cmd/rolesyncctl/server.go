package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/campuscord/rolesync/pkg/audit"
	"github.com/campuscord/rolesync/pkg/config"
	"github.com/campuscord/rolesync/pkg/server"
	"github.com/campuscord/rolesync/pkg/server/endpoints"
	"github.com/campuscord/rolesync/pkg/store"
)

func defaultBindAddress() string {
	if addr := os.Getenv("ROLESYNC_BIND_ADDRESS"); addr != "" {
		return addr
	}
	return "0.0.0.0"
}

func defaultPort() string {
	if port := os.Getenv("PORT"); port != "" {
		return port
	}
	return "8080"
}

func defaultPortInt() int {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			return p
		}
	}
	return 8080
}

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the role synchronization server",
	Long: `Run the role synchronization server.

Requires the DATABASE_URL, ROLESYNC_PLATFORM_URL, ROLESYNC_PLATFORM_TOKEN
and ROLESYNC_API_TOKEN_SECRET environment variables.

By default, database migrations are run on startup. Use --no-migrate to skip.
The expiration sweep runs periodically while the server is up. Send SIGHUP
to reload the configuration file.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
			os.Exit(1)
		}
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
			os.Exit(1)
		}

		if os.Getenv("DATABASE_URL") == "" {
			fmt.Fprintln(os.Stderr, "DATABASE_URL environment variable is required")
			os.Exit(1)
		}
		tokenSecret := cfg.APITokenSecret
		if tokenSecret == "" {
			fmt.Fprintln(os.Stderr, "ROLESYNC_API_TOKEN_SECRET environment variable is required")
			os.Exit(1)
		}

		noMigrate, _ := cmd.Flags().GetBool("no-migrate")
		if !noMigrate {
			log.Println("Running database migrations...")
			if err := runMigrations(); err != nil {
				fmt.Fprintf(os.Stderr, "Migration failed: %v\n", err)
				os.Exit(1)
			}
		}

		audit.SetEnabled(cfg.AuditEnabled)

		s, err := openStores(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Unable to connect to DB: %v\n", err)
			os.Exit(1)
		}

		synchronizer, err := newSynchronizer(cfg, s)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		host, _ := cmd.Flags().GetString("bind-address")
		port, _ := cmd.Flags().GetString("port")
		srv := server.NewServer(s.identities, s.settings, synchronizer, host, port, []byte(tokenSecret))

		endpoints.RegisterAll(srv)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go runCleanupLoop(ctx, s.identities, cfg.CleanupInterval())
		go handleReloadSignals()

		log.Printf("Running server at http://%s:%s...\n", host, port)
		log.Fatal(srv.Start())
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().StringP("port", "p", defaultPort(), "server listen port")
	serverCmd.Flags().StringP("bind-address", "b", defaultBindAddress(), "server bind address")
	serverCmd.Flags().Bool("no-migrate", false, "skip running database migrations on start")
}

// runCleanupLoop periodically removes expired verified identities.
func runCleanupLoop(ctx context.Context, identities store.IdentityStore, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := identities.DeleteExpired(ctx)
			if err != nil {
				audit.Log(audit.CleanupEvent{ErrorMsg: err.Error()})
				log.Printf("Expiration sweep failed: %v", err)
				continue
			}
			audit.Log(audit.CleanupEvent{Removed: int(removed)})
			if removed > 0 {
				log.Printf("Expiration sweep removed %d identities", removed)
			}
		}
	}
}

// handleReloadSignals reloads the configuration file on SIGHUP.
func handleReloadSignals() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGHUP)

	for range sigChan {
		log.Println("Reloading configuration...")
		if err := config.Reload(); err != nil {
			log.Printf("Configuration reload failed: %v", err)
			continue
		}
		log.Println("Configuration reloaded")
	}
}
