package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/campuscord/rolesync/pkg/config"
	"github.com/campuscord/rolesync/pkg/settings"
)

// guildShowCmd represents the guild show command
var guildShowCmd = &cobra.Command{
	Use:   "show <guild>",
	Short: "Print the guild's configuration as a YAML document",
	Long: `Print the guild's full configuration as a YAML document. The output
can be edited and fed back to "guild apply".`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := showGuild(args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to show guild configuration: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	guildCmd.AddCommand(guildShowCmd)
}

func showGuild(guildID string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	s, err := openStores(cfg)
	if err != nil {
		return err
	}
	ctx := context.Background()

	guildSettings, err := s.settings.GuildSettings(ctx, guildID)
	if err != nil {
		return err
	}
	slots, err := s.settings.Priority(ctx, guildID)
	if err != nil {
		return err
	}
	mappings, err := s.settings.ListMappings(ctx, guildID)
	if err != nil {
		return err
	}
	graph, err := s.settings.Dependencies(ctx, guildID)
	if err != nil {
		return err
	}

	doc := settings.Document{
		ClassificationKey: guildSettings.ClassificationKey,
		Settings: settings.Toggles{
			AutoAssign: guildSettings.AutoAssign,
			SyncOnJoin: guildSettings.SyncOnJoin,
		},
		Priority:     slots,
		Mappings:     map[string]map[string]string{},
		Dependencies: graph,
	}
	for _, m := range mappings {
		if doc.Mappings[m.AttributeKey] == nil {
			doc.Mappings[m.AttributeKey] = map[string]string{}
		}
		doc.Mappings[m.AttributeKey][m.AttributeValue] = m.RoleID
	}

	out, err := yaml.Marshal(doc)
	if err != nil {
		return err
	}
	fmt.Print(string(out))
	return nil
}
