package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/campuscord/rolesync/pkg/config"
)

// mappingCmd represents the mapping command
var mappingCmd = &cobra.Command{
	Use:   "mapping",
	Short: "Manage the attribute mapping table",
	Long:  `Manage the administrator-configured attribute to role mapping table.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'mapping' requires a subcommand (add, remove, list)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

var mappingAddCmd = &cobra.Command{
	Use:   "add <guild> <attribute-key> <attribute-value> <role>",
	Short: "Add a mapping entry",
	Long: `Add one mapping table entry. The attribute value is stored
lower-cased so it matches the normalized record view.

Example:
  rolesyncctl mapping add 1018133745 urn:oid:2.5.4.11 mathematics 311`,
	Args: cobra.ExactArgs(4),
	Run: func(cmd *cobra.Command, args []string) {
		if err := addMapping(args[0], args[1], args[2], args[3]); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to add mapping: %v\n", err)
			os.Exit(1)
		}
	},
}

var mappingRemoveCmd = &cobra.Command{
	Use:   "remove <guild> <attribute-key> <attribute-value>",
	Short: "Remove a mapping entry",
	Args:  cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		if err := removeMapping(args[0], args[1], args[2]); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to remove mapping: %v\n", err)
			os.Exit(1)
		}
	},
}

var mappingListCmd = &cobra.Command{
	Use:   "list <guild>",
	Short: "List the guild's mapping table",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := listMappings(args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to list mappings: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(mappingCmd)
	mappingCmd.AddCommand(mappingAddCmd)
	mappingCmd.AddCommand(mappingRemoveCmd)
	mappingCmd.AddCommand(mappingListCmd)
}

func addMapping(guildID, key, value, roleID string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	s, err := openStores(cfg)
	if err != nil {
		return err
	}

	if err := s.settings.AddMapping(context.Background(), guildID, key, value, roleID); err != nil {
		return err
	}
	fmt.Printf("Mapped %s=%s to role %s\n", key, value, roleID)
	return nil
}

func removeMapping(guildID, key, value string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	s, err := openStores(cfg)
	if err != nil {
		return err
	}

	existed, err := s.settings.RemoveMapping(context.Background(), guildID, key, value)
	if err != nil {
		return err
	}
	if !existed {
		return fmt.Errorf("no mapping for %s=%s", key, value)
	}
	fmt.Printf("Removed mapping %s=%s\n", key, value)
	return nil
}

func listMappings(guildID string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	s, err := openStores(cfg)
	if err != nil {
		return err
	}

	mappings, err := s.settings.ListMappings(context.Background(), guildID)
	if err != nil {
		return err
	}

	fmt.Printf("%-40s %-24s %s\n", "ATTRIBUTE", "VALUE", "ROLE")
	for _, m := range mappings {
		fmt.Printf("%-40s %-24s %s\n", m.AttributeKey, m.AttributeValue, m.RoleID)
	}
	return nil
}
