package tui

import "github.com/charmbracelet/lipgloss"

var (
	accent = lipgloss.Color("#8BC34A")
	muted  = lipgloss.Color("#6b7280")
	danger = lipgloss.Color("#e53935")
	info   = lipgloss.Color("#2196F3")

	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(accent).MarginBottom(1)
	promptStyle   = lipgloss.NewStyle().Bold(true)
	hintStyle     = lipgloss.NewStyle().Foreground(muted).Italic(true)
	errorStyle    = lipgloss.NewStyle().Foreground(danger)
	userStyle     = lipgloss.NewStyle().Foreground(info).Bold(true)
	botStyle      = lipgloss.NewStyle().Foreground(accent).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(accent).Bold(true)
	intentStyle   = lipgloss.NewStyle().Foreground(muted).Italic(true)
	frameStyle    = lipgloss.NewStyle().Padding(1, 2)
)
