// Package ui holds the lipgloss palette and TTY-aware render helpers shared
// by the CLI output.
package ui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// IsTTY indicates whether stdout is an interactive terminal. When false,
// helpers produce plain text without colors.
var IsTTY = term.IsTerminal(int(os.Stdout.Fd()))

var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("39"))

	Success = lipgloss.NewStyle().
		Foreground(lipgloss.Color("42"))

	Error = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("196"))

	Warning = lipgloss.NewStyle().
		Foreground(lipgloss.Color("214"))

	Muted = lipgloss.NewStyle().
		Foreground(lipgloss.Color("245"))
)

// Render applies a style, falling back to plain text off-TTY.
func Render(style lipgloss.Style, text string) string {
	if !IsTTY {
		return text
	}
	return style.Render(text)
}

func OKLine(msg string) string {
	return fmt.Sprintf("  %s %s", Render(Success, "[+]"), msg)
}

func ErrLine(msg string) string {
	return fmt.Sprintf("  %s %s", Render(Error, "[x]"), msg)
}

func WarnLine(msg string) string {
	return fmt.Sprintf("  %s %s", Render(Warning, "[!]"), msg)
}

func InfoLine(msg string) string {
	return fmt.Sprintf("  %s %s", Render(Muted, "[-]"), msg)
}
