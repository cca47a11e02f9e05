package main

import (
	"fmt"

	"github.com/campuscord/rolesync/pkg/config"
	"github.com/campuscord/rolesync/pkg/db"
	"github.com/campuscord/rolesync/pkg/platform"
	gormstore "github.com/campuscord/rolesync/pkg/store/gorm"
	"github.com/campuscord/rolesync/pkg/sync"
)

// stores bundles the persistence layer handed to commands.
type stores struct {
	identities *gormstore.IdentityStore
	settings   *gormstore.SettingsStore
}

func openStores(cfg *config.Config) (*stores, error) {
	database, err := db.Connect(db.Config{})
	if err != nil {
		return nil, err
	}

	identities := gormstore.NewIdentityStore(database).
		WithWindows(cfg.ReminderAfter(), cfg.ExpireAfter())

	return &stores{
		identities: identities,
		settings:   gormstore.NewSettingsStore(database),
	}, nil
}

func newSynchronizer(cfg *config.Config, s *stores) (*sync.Synchronizer, error) {
	if cfg.PlatformURL == "" {
		return nil, fmt.Errorf("ROLESYNC_PLATFORM_URL is required")
	}
	if cfg.PlatformToken == "" {
		return nil, fmt.Errorf("ROLESYNC_PLATFORM_TOKEN is required")
	}

	client := platform.NewClient(cfg.PlatformURL, cfg.PlatformToken)
	return sync.New(s.identities, s.settings, client,
		sync.WithConcurrency(cfg.SyncConcurrency),
		sync.WithJoinDelay(cfg.JoinDelay()),
	), nil
}
