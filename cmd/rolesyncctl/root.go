package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "rolesyncctl",
	Short: "Role synchronization service control",
	Long: `rolesyncctl manages the role synchronization service: the server,
the database schema, verified identities and per-guild configuration.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func main() {
	Execute()
}
