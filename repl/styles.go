package repl

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette follows standard terminal dark themes.
var (
	colorPrimary = lipgloss.Color("255") // white
	colorAccent  = lipgloss.Color("39")  // blue / cyan
	colorSuccess = lipgloss.Color("42")  // green
	colorError   = lipgloss.Color("196") // red
	colorWarning = lipgloss.Color("214") // orange
	colorDim     = lipgloss.Color("240") // dimmed text
)

var (
	styleNormal  = lipgloss.NewStyle().Foreground(colorPrimary)
	styleDimmed  = lipgloss.NewStyle().Foreground(colorDim)
	styleBold    = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	styleSuccess = lipgloss.NewStyle().Foreground(colorSuccess)
	styleError   = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	styleWarning = lipgloss.NewStyle().Foreground(colorWarning)
	stylePrompt  = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	styleSQL     = lipgloss.NewStyle().Foreground(colorAccent)
)
