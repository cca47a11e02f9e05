package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/campuscord/rolesync/pkg/config"
)

// dependencyCmd represents the dependency command
var dependencyCmd = &cobra.Command{
	Use:   "dependency",
	Short: "Manage the role dependency graph",
	Long: `Manage the role dependency graph. A role that requires another role
is removed whenever its requirement is lost.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'dependency' requires a subcommand (add, remove, list)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

var dependencyAddCmd = &cobra.Command{
	Use:   "add <guild> <role> <requires>",
	Short: "Add a dependency edge",
	Long: `Declare that a role requires another role. The edge is rejected if
it would introduce a cycle.

Example:
  rolesyncctl dependency add 1018133745 311 198`,
	Args: cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		if err := addDependency(args[0], args[1], args[2]); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to add dependency: %v\n", err)
			os.Exit(1)
		}
	},
}

var dependencyRemoveCmd = &cobra.Command{
	Use:   "remove <guild> <role> <requires>",
	Short: "Remove a dependency edge",
	Args:  cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		if err := removeDependency(args[0], args[1], args[2]); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to remove dependency: %v\n", err)
			os.Exit(1)
		}
	},
}

var dependencyListCmd = &cobra.Command{
	Use:   "list <guild>",
	Short: "List the guild's dependency graph",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := listDependencies(args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to list dependencies: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(dependencyCmd)
	dependencyCmd.AddCommand(dependencyAddCmd)
	dependencyCmd.AddCommand(dependencyRemoveCmd)
	dependencyCmd.AddCommand(dependencyListCmd)
}

func addDependency(guildID, roleID, requiredRoleID string) error {
	if roleID == requiredRoleID {
		return fmt.Errorf("a role cannot require itself")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	s, err := openStores(cfg)
	if err != nil {
		return err
	}

	if err := s.settings.AddDependency(context.Background(), guildID, roleID, requiredRoleID); err != nil {
		return err
	}
	fmt.Printf("Role %s now requires %s\n", roleID, requiredRoleID)
	return nil
}

func removeDependency(guildID, roleID, requiredRoleID string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	s, err := openStores(cfg)
	if err != nil {
		return err
	}

	existed, err := s.settings.RemoveDependency(context.Background(), guildID, roleID, requiredRoleID)
	if err != nil {
		return err
	}
	if !existed {
		return fmt.Errorf("role %s does not require %s", roleID, requiredRoleID)
	}
	fmt.Printf("Role %s no longer requires %s\n", roleID, requiredRoleID)
	return nil
}

func listDependencies(guildID string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	s, err := openStores(cfg)
	if err != nil {
		return err
	}

	graph, err := s.settings.Dependencies(context.Background(), guildID)
	if err != nil {
		return err
	}

	roleIDs := make([]string, 0, len(graph))
	for roleID := range graph {
		roleIDs = append(roleIDs, roleID)
	}
	sort.Strings(roleIDs)

	fmt.Printf("%-24s %s\n", "ROLE", "REQUIRES")
	for _, roleID := range roleIDs {
		fmt.Printf("%-24s %s\n", roleID, strings.Join(graph[roleID], ", "))
	}
	return nil
}
