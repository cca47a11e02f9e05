package settings

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/campuscord/rolesync/pkg/roles"
)

// Toggles mirrors the guild-level switches of a document.
type Toggles struct {
	AutoAssign bool `yaml:"auto_assign"`
	SyncOnJoin bool `yaml:"sync_on_join"`
}

// Document is one parsed guild configuration document.
type Document struct {
	ClassificationKey string                       `yaml:"classification_key"`
	Settings          Toggles                      `yaml:"settings"`
	Priority          []roles.Slot                 `yaml:"priority"`
	Mappings          map[string]map[string]string `yaml:"mappings"`
	Dependencies      roles.Graph                  `yaml:"dependencies"`
}

// Parse reads and validates a configuration document.
func Parse(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}

	var doc Document
	decoder := yaml.NewDecoder(strings.NewReader(string(data)))
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}

	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// ParseString parses a configuration document from a string.
func ParseString(text string) (*Document, error) {
	return Parse(strings.NewReader(text))
}

// Validate checks the document for structural problems: unnamed or
// duplicate slots, empty mapping entries and dependency cycles.
func (d *Document) Validate() error {
	seen := make(map[string]bool)
	for i, slot := range d.Priority {
		if slot.Name == "" {
			return fmt.Errorf("priority slot %d has no name", i)
		}
		if seen[slot.Name] {
			return fmt.Errorf("duplicate priority slot: %s", slot.Name)
		}
		seen[slot.Name] = true
		if len(slot.Triggers) == 0 {
			return fmt.Errorf("priority slot %s has no triggers", slot.Name)
		}
	}

	for key, values := range d.Mappings {
		if key == "" {
			return fmt.Errorf("mapping with empty attribute key")
		}
		for value, roleID := range values {
			if value == "" {
				return fmt.Errorf("mapping for %s with empty attribute value", key)
			}
			if roleID == "" {
				return fmt.Errorf("mapping %s=%s has no role", key, value)
			}
		}
	}

	for roleID, required := range d.Dependencies {
		if roleID == "" {
			return fmt.Errorf("dependency with empty role")
		}
		for _, req := range required {
			if req == "" {
				return fmt.Errorf("dependency for %s with empty requirement", roleID)
			}
			if req == roleID {
				return fmt.Errorf("role %s cannot require itself", roleID)
			}
		}
	}

	if err := d.Dependencies.Validate(); err != nil {
		return err
	}
	return nil
}
