package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/campuscord/rolesync/pkg/config"
)

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run role synchronization",
	Long:  `Run role synchronization for a single member or a whole guild.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'sync' requires a subcommand (member, guild)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

var syncMemberCmd = &cobra.Command{
	Use:   "member <guild> <member>",
	Short: "Synchronize one member's roles",
	Long: `Synchronize one member's roles with their verified attributes.

Example:
  rolesyncctl sync member 1018133745 347658103`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runMemberSync(args[0], args[1]); err != nil {
			fmt.Fprintf(os.Stderr, "Sync failed: %v\n", err)
			os.Exit(1)
		}
	},
}

var syncGuildCmd = &cobra.Command{
	Use:   "guild <guild>",
	Short: "Synchronize every verified member of a guild",
	Long: `Synchronize every member with a verified identity record.

Example:
  rolesyncctl sync guild 1018133745`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runGuildSync(args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "Sync failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.AddCommand(syncMemberCmd)
	syncCmd.AddCommand(syncGuildCmd)
}

func runMemberSync(guildID, memberID string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	s, err := openStores(cfg)
	if err != nil {
		return err
	}
	synchronizer, err := newSynchronizer(cfg, s)
	if err != nil {
		return err
	}

	result, err := synchronizer.SyncMember(context.Background(), guildID, memberID)
	if err != nil {
		return err
	}

	fmt.Printf("Outcome: %s\n", result.Outcome)
	if len(result.Added) > 0 {
		fmt.Printf("Added:   %s\n", strings.Join(result.Added, ", "))
	}
	if len(result.Removed) > 0 {
		fmt.Printf("Removed: %s\n", strings.Join(result.Removed, ", "))
	}
	return nil
}

func runGuildSync(guildID string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	s, err := openStores(cfg)
	if err != nil {
		return err
	}
	synchronizer, err := newSynchronizer(cfg, s)
	if err != nil {
		return err
	}

	result, err := synchronizer.SyncGuild(context.Background(), guildID)
	if err != nil {
		return err
	}

	fmt.Printf("Run:       %s\n", result.RunID)
	fmt.Printf("Synced:    %d\n", result.Synced)
	fmt.Printf("Unchanged: %d\n", result.Unchanged)
	fmt.Printf("Skipped:   %d\n", result.Skipped)
	fmt.Printf("Failed:    %d\n", result.Failed)
	return nil
}
