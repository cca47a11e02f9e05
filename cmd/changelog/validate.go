package main

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/cobra"
)

// Problem is one validation finding. Line is 0 for file-level
// problems.
type Problem struct {
	Line    int
	Message string
}

// Report collects validation findings.
type Report struct {
	Problems []Problem
}

func (r *Report) addf(line int, format string, args ...interface{}) {
	r.Problems = append(r.Problems, Problem{Line: line, Message: fmt.Sprintf(format, args...)})
}

func (r *Report) OK() bool {
	return len(r.Problems) == 0
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the changelog against the Keep a Changelog format",
	Long: `Check that the changelog follows the Keep a Changelog format:

- a "# Changelog" title and an [Unreleased] section
- version headings shaped like "## [X.Y.Z] - YYYY-MM-DD"
- releases listed newest first
- change types limited to Added, Changed, Deprecated, Removed, Fixed, Security
- a link definition for every version`,
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")

		content, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("reading file: %w", err)
		}

		report := ValidateChangelog(content)
		if report.OK() {
			fmt.Println("Changelog is valid")
			return nil
		}

		fmt.Printf("Found %d issue(s):\n\n", len(report.Problems))
		for _, p := range report.Problems {
			if p.Line > 0 {
				fmt.Printf("  Line %d: %s\n", p.Line, p.Message)
			} else {
				fmt.Printf("  %s\n", p.Message)
			}
		}
		os.Exit(1)
		return nil
	},
}

var (
	isoDate    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	semVer     = regexp.MustCompile(`^\d+\.\d+\.\d+$`)
	changeType = map[string]bool{
		"Added":      true,
		"Changed":    true,
		"Deprecated": true,
		"Removed":    true,
		"Fixed":      true,
		"Security":   true,
	}
)

// ValidateChangelog checks the source line by line, then checks
// release ordering and link definitions on the parsed form.
func ValidateChangelog(source []byte) *Report {
	report := &Report{}

	hasTitle := false
	hasUnreleased := false
	versions := map[string]bool{}

	for i, line := range strings.Split(string(source), "\n") {
		lineNum := i + 1
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "# ") {
			hasTitle = true
			if !strings.Contains(strings.ToLower(trimmed), "changelog") {
				report.addf(lineNum, "Title should contain 'Changelog'")
			}
		}

		if strings.HasPrefix(trimmed, "## [") {
			end := strings.Index(trimmed, "]")
			if end <= 4 {
				continue
			}
			version := trimmed[4:end]
			if strings.EqualFold(version, "unreleased") {
				hasUnreleased = true
				continue
			}
			versions[version] = true

			if !semVer.MatchString(version) {
				report.addf(lineNum, "Version '%s' should follow semantic versioning (X.Y.Z)", version)
			}
			if strings.Contains(trimmed, " - ") {
				parts := strings.SplitN(trimmed[end+1:], " - ", 2)
				if len(parts) == 2 && !isoDate.MatchString(strings.TrimSpace(parts[1])) {
					report.addf(lineNum, "Date '%s' should be in ISO 8601 format (YYYY-MM-DD)", strings.TrimSpace(parts[1]))
				}
			} else {
				report.addf(lineNum, "Version '%s' is missing a release date", version)
			}
		}

		if strings.HasPrefix(trimmed, "### ") {
			name := strings.TrimPrefix(trimmed, "### ")
			if !changeType[name] {
				report.addf(lineNum, "Invalid change type '%s'. Valid types: Added, Changed, Deprecated, Removed, Fixed, Security", name)
			}
		}
	}

	if !hasTitle {
		report.addf(0, "Missing changelog title (# Changelog)")
	}
	if !hasUnreleased {
		report.addf(0, "Missing [Unreleased] section")
	}

	changelog, err := ParseChangelog(source)
	if err != nil || changelog == nil {
		return report
	}

	// Dated releases must be newest first.
	lastDate := ""
	for _, release := range changelog.Releases {
		if release.Date == "" || !isoDate.MatchString(release.Date) {
			continue
		}
		if lastDate != "" && release.Date > lastDate {
			report.addf(0, "Release %s (%s) is out of order; releases go newest first", release.Version, release.Date)
		}
		lastDate = release.Date
	}

	for version := range versions {
		if _, ok := changelog.Links[version]; !ok {
			report.addf(0, "Missing link definition for version [%s]", version)
		}
	}
	if hasUnreleased {
		if _, ok := changelog.Links["Unreleased"]; !ok {
			report.addf(0, "Missing link definition for [Unreleased]")
		}
	}

	return report
}

func init() {
	validateCmd.Flags().StringP("file", "f", "CHANGELOG.md", "Path to the changelog file")
	rootCmd.AddCommand(validateCmd)
}
