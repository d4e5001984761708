// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package actions

import (
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/goccy/go-yaml"
	"github.com/muesli/termenv"

	"github.com/ennio-run/ennio/schema"
)

func highlightStyle() string {
	if lipgloss.HasDarkBackground() {
		return "tokyonight-moon"
	}
	return "tokyonight-day"
}

func lexerFor(shell string) string {
	switch shell {
	case "pwsh":
		return "powershell"
	case "sh", "bash", "":
		return "bash"
	default:
		return shell
	}
}

// printScript echoes a rendered script before it runs
func printScript(logger *log.Logger, shell, script string) {
	script = strings.TrimSpace(script)

	if termenv.EnvNoColor() {
		// this is essentially the same behavior/rendering as make
		for line := range strings.SplitSeq(script, "\n") {
			logger.Printf("$ %s", line)
		}
		return
	}

	var buf strings.Builder
	if err := quick.Highlight(&buf, script, lexerFor(shell), "terminal256", highlightStyle()); err != nil {
		logger.Debugf("failed to highlight: %v", err)
		for line := range strings.SplitSeq(script, "\n") {
			logger.Printf("$ %s", line)
		}
		return
	}

	color := lipgloss.AdaptiveColor{
		Light: "#c5c6bC",
		Dark:  "#3a3943",
	}
	prefix := lipgloss.NewStyle().Background(color).Render(" ")

	for line := range strings.SplitSeq(buf.String(), "\n") {
		logger.Printf("%s %s", prefix, line)
	}
}

// printBuiltin echoes a builtin call and its rendered parameters
func printBuiltin(logger *log.Logger, uses string, with schema.With) {
	b, err := yaml.MarshalWithOptions(map[string]any{"uses": uses, "with": with}, yaml.Indent(2), yaml.IndentSequence(true))
	if err != nil {
		logger.Debugf("failed to marshal builtin: %v", err)
		return
	}
	out := strings.TrimSpace(string(b))

	if termenv.EnvNoColor() {
		logger.Print(out)
		return
	}

	var buf strings.Builder
	if err := quick.Highlight(&buf, out, "yaml", "terminal256", highlightStyle()); err != nil {
		logger.Debugf("failed to highlight: %v", err)
		logger.Print(out)
		return
	}

	logger.Print(strings.TrimSpace(buf.String()))
}
