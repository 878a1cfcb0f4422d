// Package ui holds the terminal styling used by the human-facing
// commands: a small ANSI palette, status symbols, and list rendering.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Semantic colors for status indication, kept to the basic ANSI range
// for terminal compatibility.
const (
	ColorSuccess lipgloss.Color = "2" // green
	ColorError   lipgloss.Color = "1" // red
	ColorWarning lipgloss.Color = "3" // yellow
	ColorInfo    lipgloss.Color = "6" // cyan
	ColorMuted   lipgloss.Color = "8" // gray (bright black)
)

// Status symbols.
const (
	SymbolSuccess = "✓"
	SymbolFail    = "✗"
	SymbolPending = "○"
)

var (
	styleBold    = lipgloss.NewStyle().Bold(true)
	styleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess)
	styleError   = lipgloss.NewStyle().Foreground(ColorError)
	styleMuted   = lipgloss.NewStyle().Foreground(ColorMuted)
	styleInfo    = lipgloss.NewStyle().Foreground(ColorInfo)
)

// DisableColor forces plain output, used when stdout is not a terminal
// or when emitting machine-readable output.
func DisableColor() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// Bold renders s in bold.
func Bold(s string) string { return styleBold.Render(s) }

// Success renders s in the success color.
func Success(s string) string { return styleSuccess.Render(s) }

// Error renders s in the error color.
func Error(s string) string { return styleError.Render(s) }

// Muted renders s in the muted color.
func Muted(s string) string { return styleMuted.Render(s) }

// Info renders s in the info color.
func Info(s string) string { return styleInfo.Render(s) }

// RenderColumns lays out rows of cells with aligned columns, two
// spaces apart. Rows may have trailing cells missing.
func RenderColumns(rows [][]string) string {
	widths := map[int]int{}
	for _, row := range rows {
		for i, cell := range row {
			if w := lipgloss.Width(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	for _, row := range rows {
		for i, cell := range row {
			if i == len(row)-1 {
				b.WriteString(cell)
				continue
			}
			pad := widths[i] - lipgloss.Width(cell)
			fmt.Fprintf(&b, "%s%s  ", cell, strings.Repeat(" ", pad))
		}
		b.WriteString("\n")
	}
	return b.String()
}
