package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// guildCmd represents the guild command
var guildCmd = &cobra.Command{
	Use:   "guild",
	Short: "Manage whole-guild configuration documents",
	Long: `Manage a guild's configuration as a single YAML document covering
settings, the priority list, the mapping table and the dependency graph.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'guild' requires a subcommand (show, apply, watch)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

func init() {
	rootCmd.AddCommand(guildCmd)
}
