// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/goccy/go-yaml"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"golang.org/x/term"

	"github.com/ennio-run/ennio"
	v0 "github.com/ennio-run/ennio/schema/v0"
)

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return line
}

func printList(w io.Writer, f v0.File) {
	names := f.Workflows.OrderedNames()

	width := 0
	for _, name := range names {
		width = max(width, len(name))
	}

	fmt.Fprintln(w, "Available workflows:")
	for _, name := range names {
		desc := firstLine(f.Workflows[name].Description)
		if desc == "" {
			fmt.Fprintf(w, "  %s\n", NameStyle.Render(name))
			continue
		}
		pad := strings.Repeat(" ", width-len(name))
		fmt.Fprintf(w, "  %s%s  %s\n", NameStyle.Render(name), pad, FaintStyle.Render(desc))
	}
}

// renderMarkdown renders md for the terminal, plain when stdout is not one or NO_COLOR is set
func renderMarkdown(md string) (string, error) {
	opts := []glamour.TermRendererOption{glamour.WithStandardStyle(styles.NoTTYStyle), glamour.WithWordWrap(80)}

	fd := int(os.Stdout.Fd())
	if term.IsTerminal(fd) && os.Getenv("NO_COLOR") == "" {
		opts = []glamour.TermRendererOption{glamour.WithAutoStyle()}
		if w, _, err := term.GetSize(fd); err == nil && w > 0 {
			opts = append(opts, glamour.WithWordWrap(w))
		}
	}

	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", err
	}
	return r.Render(md)
}

func printOutputs(w io.Writer, format string, results *orderedmap.OrderedMap[string, *ennio.Outputs]) error {
	b, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}

	if format == "yaml" {
		b, err = yaml.JSONToYAML(b)
		if err != nil {
			return err
		}
	}

	_, err = fmt.Fprintln(w, strings.TrimSpace(string(b)))
	return err
}
