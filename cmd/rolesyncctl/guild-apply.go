package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/campuscord/rolesync/pkg/config"
	"github.com/campuscord/rolesync/pkg/settings"
)

// guildApplyCmd represents the guild apply command
var guildApplyCmd = &cobra.Command{
	Use:   "apply <guild> [file]",
	Short: "Apply a configuration document to a guild",
	Long: `Apply a YAML configuration document to a guild, replacing its
settings, priority list, mapping table and dependency graph. The
document is read from a file, or from stdin when no file is given.

Use --dry-run to validate the document without writing anything.

Example:
  rolesyncctl guild apply 1018133745 campus.yml
  cat campus.yml | rolesyncctl guild apply 1018133745 --dry-run`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		source := "-"
		if len(args) == 2 {
			source = args[1]
		}
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		if err := applyGuildDocument(args[0], source, dryRun); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to apply guild configuration: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	guildApplyCmd.Flags().Bool("dry-run", false, "Validate the document without applying it")
	guildCmd.AddCommand(guildApplyCmd)
}

func applyGuildDocument(guildID, source string, dryRun bool) error {
	var reader io.Reader
	if source == "-" {
		reader = os.Stdin
	} else {
		file, err := os.Open(source)
		if err != nil {
			return err
		}
		defer func() { _ = file.Close() }()
		reader = file
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	s, err := openStores(cfg)
	if err != nil {
		return err
	}

	applier := settings.NewApplier(s.settings, guildID).WithDryRun(dryRun)
	result, err := applier.ApplyFromReader(context.Background(), reader)
	if err != nil {
		return err
	}

	verb := "Applied"
	if result.DryRun {
		verb = "Validated"
	}
	fmt.Printf("%s document: %d slots, %d mappings, %d dependencies\n",
		verb, result.Slots, result.Mappings, result.Dependencies)
	return nil
}
