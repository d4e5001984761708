// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package cmd

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// tokyonight palette, day variant for light terminals
// https://github.com/charmbracelet/vhs/blob/main/themes.json
var (
	blue    = lipgloss.AdaptiveColor{Light: "#2e7de9", Dark: "#7aa2f7"}
	cyan    = lipgloss.AdaptiveColor{Light: "#007197", Dark: "#7dcfff"}
	amber   = lipgloss.AdaptiveColor{Light: "#8c6c3e", Dark: "#e0af68"}
	red     = lipgloss.AdaptiveColor{Light: "#f52a65", Dark: "#f7768e"}
	magenta = lipgloss.AdaptiveColor{Light: "#9854f1", Dark: "#bb9af7"}
	green   = lipgloss.AdaptiveColor{Light: "#587539", Dark: "#9ece6a"}
)

// DefaultStyles colors log levels and the keys every workflow run attaches
// (workflow, action, run and status).
func DefaultStyles() *log.Styles {
	styles := log.DefaultStyles()

	levels := map[log.Level]lipgloss.AdaptiveColor{
		log.DebugLevel: blue,
		log.InfoLevel:  cyan,
		log.WarnLevel:  amber,
		log.ErrorLevel: red,
		log.FatalLevel: magenta,
	}
	for level, color := range levels {
		styles.Levels[level] = styles.Levels[level].Foreground(color)
	}

	styles.Keys["workflow"] = lipgloss.NewStyle().Foreground(magenta)
	styles.Values["workflow"] = lipgloss.NewStyle().Bold(true)
	styles.Keys["action"] = lipgloss.NewStyle().Foreground(blue)
	styles.Values["action"] = lipgloss.NewStyle().Bold(true)
	styles.Keys["status"] = lipgloss.NewStyle().Foreground(green)
	styles.Keys["run"] = FaintStyle
	styles.Values["run"] = FaintStyle

	return styles
}

var (
	// FaintStyle renders secondary text such as descriptions
	FaintStyle = lipgloss.NewStyle().Faint(true)

	// NameStyle highlights workflow names in listings
	NameStyle = lipgloss.NewStyle().Foreground(green)
)
