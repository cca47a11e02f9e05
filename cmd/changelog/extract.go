package main

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/cobra"
)

var linkDefLine = regexp.MustCompile(`(?m)^\[[^\]]+\]:\s+\S+\s*$`)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract one version's release notes",
	Long: `Extract the release notes for a single version, ready to paste into
a release description. The version's link definition is appended when
the changelog has one.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		version, _ := cmd.Flags().GetString("version")

		content, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("reading file: %w", err)
		}

		changelog, err := ParseChangelog(content)
		if err != nil {
			return fmt.Errorf("parsing changelog: %w", err)
		}

		release := changelog.Release(version)
		if release == nil {
			return fmt.Errorf("version %s not found in changelog", version)
		}

		if release.Date != "" {
			fmt.Printf("## [%s] - %s\n\n", release.Version, release.Date)
		} else {
			fmt.Printf("## [%s]\n\n", release.Version)
		}
		fmt.Print(stripLinkDefinitions(release.Notes))

		if url, ok := changelog.Links[release.Version]; ok {
			fmt.Printf("\n\n[%s]: %s\n", release.Version, url)
		}
		return nil
	},
}

// The last release's notes run to the end of the file, so the trailing
// link definition block ends up inside them.
func stripLinkDefinitions(notes string) string {
	var kept []string
	for _, line := range strings.Split(notes, "\n") {
		if !linkDefLine.MatchString(line) {
			kept = append(kept, line)
		}
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

func init() {
	extractCmd.Flags().StringP("file", "f", "CHANGELOG.md", "Path to the changelog file")
	extractCmd.Flags().StringP("version", "v", "", "Version to extract (with or without 'v' prefix)")
	_ = extractCmd.MarkFlagRequired("version")
	rootCmd.AddCommand(extractCmd)
}
