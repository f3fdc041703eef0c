package ui

import "github.com/charmbracelet/lipgloss"

// Lip Gloss styles for command output. Colors are hex codes; on a terminal
// without color support they degrade to plain text.
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ff5fd2"))

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff005f")).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffaf00")).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00ff5f")).
			Bold(true)

	PathStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5fd7ff"))

	HelpStyle = lipgloss.NewStyle().
			Faint(true).
			Foreground(lipgloss.Color("#a8a8a8"))

	BadgeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5f5fff"))

	// Indented block under a heading.
	ItemContainerStyle = lipgloss.NewStyle().
				PaddingLeft(2)
)
