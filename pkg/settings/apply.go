package settings

import (
	"context"
	"fmt"
	"io"

	"github.com/campuscord/rolesync/pkg/roles"
	"github.com/campuscord/rolesync/pkg/store"
)

// ApplyResult summarises what a document wrote.
type ApplyResult struct {
	Slots        int  `json:"slots"`
	Mappings     int  `json:"mappings"`
	Dependencies int  `json:"dependencies"`
	DryRun       bool `json:"dry_run"`
}

// Applier writes a validated document into a guild's configuration.
type Applier struct {
	store   store.SettingsStore
	guildID string
	dryRun  bool
}

// NewApplier creates a new document applier for a guild
func NewApplier(s store.SettingsStore, guildID string) *Applier {
	return &Applier{store: s, guildID: guildID}
}

// WithDryRun sets whether to validate only without applying changes
func (a *Applier) WithDryRun(dryRun bool) *Applier {
	a.dryRun = dryRun
	return a
}

// ApplyFromReader parses and applies a document from an io.Reader
func (a *Applier) ApplyFromReader(ctx context.Context, r io.Reader) (*ApplyResult, error) {
	doc, err := Parse(r)
	if err != nil {
		return nil, err
	}
	return a.Apply(ctx, doc)
}

// Apply replaces the guild's configuration with the document's
// contents. Existing mappings and dependency edges not present in the
// document are removed.
func (a *Applier) Apply(ctx context.Context, doc *Document) (*ApplyResult, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	deps := 0
	for _, required := range doc.Dependencies {
		deps += len(required)
	}
	mappings := 0
	for _, values := range doc.Mappings {
		mappings += len(values)
	}

	result := &ApplyResult{
		Slots:        len(doc.Priority),
		Mappings:     mappings,
		Dependencies: deps,
		DryRun:       a.dryRun,
	}
	if a.dryRun {
		return result, nil
	}

	settings := store.Settings{
		AutoAssign:        doc.Settings.AutoAssign,
		SyncOnJoin:        doc.Settings.SyncOnJoin,
		ClassificationKey: doc.ClassificationKey,
	}
	if err := a.store.UpdateGuildSettings(ctx, a.guildID, settings); err != nil {
		return nil, fmt.Errorf("failed to update guild settings: %w", err)
	}

	if err := a.store.ReplacePriority(ctx, a.guildID, doc.Priority); err != nil {
		return nil, fmt.Errorf("failed to replace priority slots: %w", err)
	}

	if err := a.replaceMappings(ctx, doc.Mappings); err != nil {
		return nil, err
	}
	if err := a.replaceDependencies(ctx, doc.Dependencies); err != nil {
		return nil, err
	}

	return result, nil
}

func (a *Applier) replaceMappings(ctx context.Context, desired map[string]map[string]string) error {
	existing, err := a.store.ListMappings(ctx, a.guildID)
	if err != nil {
		return fmt.Errorf("failed to list mappings: %w", err)
	}
	for _, m := range existing {
		if _, err := a.store.RemoveMapping(ctx, a.guildID, m.AttributeKey, m.AttributeValue); err != nil {
			return fmt.Errorf("failed to remove mapping %s=%s: %w", m.AttributeKey, m.AttributeValue, err)
		}
	}
	for key, values := range desired {
		for value, roleID := range values {
			if err := a.store.AddMapping(ctx, a.guildID, key, value, roleID); err != nil {
				return fmt.Errorf("failed to add mapping %s=%s: %w", key, value, err)
			}
		}
	}
	return nil
}

func (a *Applier) replaceDependencies(ctx context.Context, desired roles.Graph) error {
	existing, err := a.store.Dependencies(ctx, a.guildID)
	if err != nil {
		return fmt.Errorf("failed to list dependencies: %w", err)
	}
	for roleID, required := range existing {
		for _, req := range required {
			if _, err := a.store.RemoveDependency(ctx, a.guildID, roleID, req); err != nil {
				return fmt.Errorf("failed to remove dependency %s -> %s: %w", roleID, req, err)
			}
		}
	}
	for roleID, required := range desired {
		for _, req := range required {
			if err := a.store.AddDependency(ctx, a.guildID, roleID, req); err != nil {
				return fmt.Errorf("failed to add dependency %s -> %s: %w", roleID, req, err)
			}
		}
	}
	return nil
}
