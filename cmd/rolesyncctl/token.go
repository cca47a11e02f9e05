package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/campuscord/rolesync/pkg/config"
	"github.com/campuscord/rolesync/pkg/server/middleware"
)

// tokenCmd represents the token command
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an API bearer token",
	Long: `Issue a signed bearer token for the HTTP API.

The token is signed with ROLESYNC_API_TOKEN_SECRET and printed to stdout.

Example:
  rolesyncctl token --subject admin --ttl 8h`,
	Run: func(cmd *cobra.Command, args []string) {
		subject, _ := cmd.Flags().GetString("subject")
		ttl, _ := cmd.Flags().GetDuration("ttl")

		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
			os.Exit(1)
		}
		if cfg.APITokenSecret == "" {
			fmt.Fprintln(os.Stderr, "ROLESYNC_API_TOKEN_SECRET environment variable is required")
			os.Exit(1)
		}

		auth := middleware.NewBearerAuthenticator([]byte(cfg.APITokenSecret))
		token, err := auth.IssueToken(subject, ttl)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to issue token: %v\n", err)
			os.Exit(1)
		}

		fmt.Println(token)
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.Flags().StringP("subject", "s", "admin", "Token subject")
	tokenCmd.Flags().DurationP("ttl", "t", 8*time.Hour, "Token lifetime")
}
