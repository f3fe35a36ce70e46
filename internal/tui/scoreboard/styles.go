// ============================================================================
// rallyscore - Volleyball Rally Scorekeeper
// ============================================================================
//
// Package:     scoreboard
// Description: Styles for the scoreboard TUI
// Author:      msto63
// Created:     2026-10-19
// License:     MIT
// ============================================================================

package scoreboard

import (
	"github.com/charmbracelet/lipgloss"
)

// Color Palette
var (
	ColorPrimary   = lipgloss.Color("#8B5CF6") // Violet
	ColorSecondary = lipgloss.Color("#06B6D4") // Cyan
	ColorAccent    = lipgloss.Color("#F59E0B") // Amber
	ColorSuccess   = lipgloss.Color("#10B981") // Emerald
	ColorError     = lipgloss.Color("#EF4444") // Red
	ColorMuted     = lipgloss.Color("#6B7280") // Gray

	ColorText      = lipgloss.Color("#F8FAFC") // Slate 50
	ColorTextMuted = lipgloss.Color("#94A3B8") // Slate 400
)

// Header styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Italic(true)
)

// Score styles
var (
	TeamNameStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Width(12).
			Align(lipgloss.Center)

	SetsStyle = lipgloss.NewStyle().
			Foreground(ColorSecondary).
			Bold(true).
			Padding(0, 2)

	PointsStyle = lipgloss.NewStyle().
			Foreground(ColorText).
			Bold(true).
			Padding(0, 1)

	DashStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	ScorePanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorPrimary).
			Padding(1, 3)

	FinishedStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)
)

// Input and feedback styles
var (
	InputStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(ColorPrimary).
			Padding(0, 1)

	DisabledInputStyle = lipgloss.NewStyle().
				Border(lipgloss.NormalBorder()).
				BorderForeground(ColorMuted).
				Foreground(ColorMuted).
				Padding(0, 1)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorError)

	LastRallyStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	HistoryStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	HelpStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			MarginTop(1)
)
