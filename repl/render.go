// render.go renders result sets as aligned text tables for the transcript.
package repl

import (
	"strings"

	"github.com/askdb/askdb/db"
)

const maxCellWidth = 40

// renderTable lays out rows with padded columns, clipping wide cells so a
// single long value does not blow up the whole table.
func renderTable(result *db.Result, width int) []string {
	if len(result.Columns) == 0 {
		return nil
	}

	widths := make([]int, len(result.Columns))
	for i, col := range result.Columns {
		widths[i] = len(col)
	}
	for _, row := range result.Rows {
		for i, cell := range row {
			if i >= len(widths) {
				break
			}
			if l := len(cell); l > widths[i] {
				widths[i] = l
			}
		}
	}
	for i := range widths {
		if widths[i] > maxCellWidth {
			widths[i] = maxCellWidth
		}
	}

	var lines []string
	lines = append(lines, styleBold.Render(formatRow(result.Columns, widths)))
	lines = append(lines, styleDimmed.Render(separator(widths)))
	for _, row := range result.Rows {
		lines = append(lines, styleNormal.Render(formatRow(row, widths)))
	}
	return lines
}

func formatRow(cells []string, widths []int) string {
	parts := make([]string, len(widths))
	for i := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		if len(cell) > widths[i] {
			cell = cell[:widths[i]-3] + "..."
		}
		parts[i] = cell + strings.Repeat(" ", widths[i]-len(cell))
	}
	return strings.Join(parts, "  ")
}

func separator(widths []int) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		parts[i] = strings.Repeat("-", w)
	}
	return strings.Join(parts, "  ")
}
