package main

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F87")).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#73F59F"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#81A1C1"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#EBCB8B"))
	folderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#81A1C1")).Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))
)

func errorText(s string) string {
	return errorStyle.Render("✗ " + s)
}

func successText(s string) string {
	return successStyle.Render("✓ " + s)
}

func infoText(s string) string {
	return infoStyle.Render(s)
}

func warningText(s string) string {
	return warningStyle.Render("! " + s)
}
