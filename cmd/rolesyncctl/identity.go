package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/campuscord/rolesync/pkg/attribute"
	"github.com/campuscord/rolesync/pkg/audit"
	"github.com/campuscord/rolesync/pkg/config"
)

// identityCmd represents the identity command
var identityCmd = &cobra.Command{
	Use:   "identity",
	Short: "Manage verified identities",
	Long:  `Manage verified identity records and their lifecycle.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'identity' requires a subcommand (link, unlink, list, cleanup, reminders)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

var identityLinkCmd = &cobra.Command{
	Use:   "link <member> [file]",
	Short: "Store a verified attribute record for a member",
	Long: `Store a verified attribute record for a member.

The record is read as JSON from the given file, or from stdin when no
file is given. Storing a record resets the verification, reminder and
expiration dates.

Example:
  rolesyncctl identity link 347658103 record.json
  cat record.json | rolesyncctl identity link 347658103`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		memberID := args[0]

		var in io.Reader = os.Stdin
		if len(args) == 2 {
			file, err := os.Open(args[1])
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to open record: %v\n", err)
				os.Exit(1)
			}
			defer func() { _ = file.Close() }()
			in = file
		}

		if err := linkIdentity(memberID, in); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to link identity: %v\n", err)
			os.Exit(1)
		}
	},
}

var identityUnlinkCmd = &cobra.Command{
	Use:   "unlink <member>",
	Short: "Remove a member's verified identity record",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := unlinkIdentity(args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to unlink identity: %v\n", err)
			os.Exit(1)
		}
	},
}

var identityListCmd = &cobra.Command{
	Use:   "list",
	Short: "List verified identities",
	Run: func(cmd *cobra.Command, args []string) {
		if err := listIdentities(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to list identities: %v\n", err)
			os.Exit(1)
		}
	},
}

var identityCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove expired verified identities",
	Run: func(cmd *cobra.Command, args []string) {
		if err := cleanupIdentities(); err != nil {
			fmt.Fprintf(os.Stderr, "Cleanup failed: %v\n", err)
			os.Exit(1)
		}
	},
}

var identityRemindersCmd = &cobra.Command{
	Use:   "reminders",
	Short: "List identities due for a re-verification reminder",
	Run: func(cmd *cobra.Command, args []string) {
		if err := listReminders(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to list reminders: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(identityCmd)
	identityCmd.AddCommand(identityLinkCmd)
	identityCmd.AddCommand(identityUnlinkCmd)
	identityCmd.AddCommand(identityListCmd)
	identityCmd.AddCommand(identityCleanupCmd)
	identityCmd.AddCommand(identityRemindersCmd)
}

func linkIdentity(memberID string, in io.Reader) error {
	data, err := io.ReadAll(in)
	if err != nil {
		return err
	}

	record, err := attribute.FromJSON(data)
	if err != nil {
		return fmt.Errorf("malformed attribute record: %w", err)
	}
	if len(record) == 0 {
		return fmt.Errorf("attribute record is empty")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	s, err := openStores(cfg)
	if err != nil {
		return err
	}

	if err := s.identities.Upsert(context.Background(), memberID, record); err != nil {
		return err
	}
	audit.Log(audit.LinkEvent{MemberID: memberID})
	fmt.Printf("Linked identity for member %s\n", memberID)
	return nil
}

func unlinkIdentity(memberID string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	s, err := openStores(cfg)
	if err != nil {
		return err
	}

	existed, err := s.identities.Delete(context.Background(), memberID)
	if err != nil {
		return err
	}
	if !existed {
		return fmt.Errorf("no identity for member %s", memberID)
	}
	audit.Log(audit.UnlinkEvent{MemberID: memberID, Reason: "requested"})
	fmt.Printf("Unlinked identity for member %s\n", memberID)
	return nil
}

func listIdentities() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	s, err := openStores(cfg)
	if err != nil {
		return err
	}

	identities, err := s.identities.List(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("%-24s %-24s %s\n", "MEMBER", "VERIFIED", "EXPIRES")
	for _, identity := range identities {
		fmt.Printf("%-24s %-24s %s\n",
			identity.MemberID,
			identity.VerificationDate.Format("2006-01-02 15:04:05"),
			identity.ExpirationDate.Format("2006-01-02 15:04:05"),
		)
	}
	return nil
}

func cleanupIdentities() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	s, err := openStores(cfg)
	if err != nil {
		return err
	}

	removed, err := s.identities.DeleteExpired(context.Background())
	if err != nil {
		audit.Log(audit.CleanupEvent{ErrorMsg: err.Error()})
		return err
	}
	audit.Log(audit.CleanupEvent{Removed: int(removed)})
	fmt.Printf("Removed %d expired identities\n", removed)
	return nil
}

func listReminders() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	s, err := openStores(cfg)
	if err != nil {
		return err
	}

	identities, err := s.identities.DueReminders(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("%-24s %s\n", "MEMBER", "EXPIRES")
	for _, identity := range identities {
		fmt.Printf("%-24s %s\n",
			identity.MemberID,
			identity.ExpirationDate.Format("2006-01-02 15:04:05"),
		)
	}
	return nil
}
