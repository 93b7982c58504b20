// Package ui holds the terminal styling for the interactive sorter.
//
// A [Palette] paints titles, success and error lines, warnings and help text with lipgloss.
// Each palette is bound to the writer it paints for; when that writer is not a terminal the
// text passes through unstyled.
package ui
