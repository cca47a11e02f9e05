package main

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// Release is one version section of the changelog.
type Release struct {
	Version string
	Date    string
	Notes   string
}

// Changelog is a parsed Keep a Changelog file.
type Changelog struct {
	Releases []Release
	Links    map[string]string
}

// Release returns the section for a version, nil when absent. A
// leading "v" on either side is ignored.
func (c *Changelog) Release(version string) *Release {
	version = strings.TrimPrefix(version, "v")
	for i := range c.Releases {
		if strings.TrimPrefix(c.Releases[i].Version, "v") == version {
			return &c.Releases[i]
		}
	}
	return nil
}

// ParseChangelog walks the markdown AST and slices the source into one
// Release per level-2 heading. Link reference definitions become the
// Links map.
func ParseChangelog(source []byte) (*Changelog, error) {
	md := goldmark.New()
	ctx := parser.NewContext()
	doc := md.Parser().Parse(text.NewReader(source), parser.WithContext(ctx))

	changelog := &Changelog{Links: make(map[string]string)}
	for _, ref := range ctx.References() {
		changelog.Links[string(ref.Label())] = string(ref.Destination())
	}

	type section struct {
		version string
		date    string
		start   int // offset of the heading line
		body    int // offset just past the heading line
	}
	var sections []section

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		heading, ok := n.(*ast.Heading)
		if !ok || heading.Level != 2 {
			return ast.WalkContinue, nil
		}

		version, date := splitHeading(headingText(heading, source))
		sec := section{version: version, date: date}
		if lines := heading.Lines(); lines.Len() > 0 {
			sec.start = lines.At(0).Start
			sec.body = lines.At(lines.Len() - 1).Stop
		}
		sections = append(sections, sec)
		return ast.WalkContinue, nil
	})

	for i, sec := range sections {
		end := len(source)
		if i+1 < len(sections) {
			end = sections[i+1].start
		}
		notes := ""
		if sec.body < end {
			notes = strings.TrimSpace(string(source[sec.body:end]))
		}
		changelog.Releases = append(changelog.Releases, Release{
			Version: sec.version,
			Date:    sec.date,
			Notes:   notes,
		})
	}

	return changelog, nil
}

func headingText(node ast.Node, source []byte) string {
	var buf bytes.Buffer
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		switch c := child.(type) {
		case *ast.Text:
			buf.Write(c.Segment.Value(source))
		case *ast.Link:
			for lc := c.FirstChild(); lc != nil; lc = lc.NextSibling() {
				if t, ok := lc.(*ast.Text); ok {
					buf.Write(t.Segment.Value(source))
				}
			}
		}
	}
	return buf.String()
}

// splitHeading takes "[1.2.0] - 2026-03-01" or "1.2.0 - 2026-03-01"
// apart into version and date.
func splitHeading(heading string) (version, date string) {
	heading = strings.TrimSpace(heading)
	heading = strings.TrimPrefix(heading, "[")

	if idx := strings.Index(heading, "]"); idx != -1 {
		version = heading[:idx]
		rest := strings.TrimSpace(heading[idx+1:])
		date = strings.TrimSpace(strings.TrimPrefix(rest, "-"))
		return version, date
	}
	if idx := strings.Index(heading, " - "); idx != -1 {
		return strings.TrimSpace(heading[:idx]), strings.TrimSpace(heading[idx+3:])
	}
	return heading, ""
}
