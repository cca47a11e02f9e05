package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/campuscord/rolesync/pkg/config"
	"github.com/campuscord/rolesync/pkg/settings"
	"github.com/campuscord/rolesync/pkg/store"
)

// guildWatchCmd represents the guild watch command
var guildWatchCmd = &cobra.Command{
	Use:   "watch <guild> <file>",
	Short: "Watch a document and re-apply it when it changes",
	Long: `Watch a configuration document and re-apply it to the guild whenever
the file is modified. The file must be visible to the process running
"rolesyncctl guild watch".

Example:
  rolesyncctl guild watch 1018133745 /run/rolesync/campus.yml`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		guildID := args[0]
		filename := args[1]

		if err := watchGuildDocument(guildID, filename); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to watch guild configuration: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	guildCmd.AddCommand(guildWatchCmd)
}

func watchGuildDocument(guildID, filename string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	s, err := openStores(cfg)
	if err != nil {
		return err
	}

	// Create file watcher
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Add file to watcher
	if err := watcher.Add(filename); err != nil {
		return fmt.Errorf("failed to watch file %s: %w", filename, err)
	}

	fmt.Printf("Watching %s for configuration changes (guild: %s)\n", filename, guildID)

	// Handle signals for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create {
				fmt.Printf("[%s] File modified, re-applying configuration...\n", time.Now().Format(time.RFC3339))

				if err := applyDocumentFromFile(s.settings, guildID, filename); err != nil {
					fmt.Fprintf(os.Stderr, "Error applying configuration: %v\n", err)
				} else {
					fmt.Printf("Configuration applied successfully from %s\n", filename)
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "Watcher error: %v\n", err)
		case <-sigChan:
			fmt.Println("\nShutting down...")
			return nil
		}
	}
}

func applyDocumentFromFile(settingsStore store.SettingsStore, guildID, filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open document: %w", err)
	}
	defer func() { _ = file.Close() }()

	applier := settings.NewApplier(settingsStore, guildID)
	_, err = applier.ApplyFromReader(context.Background(), file)
	return err
}
