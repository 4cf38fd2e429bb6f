// Package export renders query results to files, markdown, and the system
// clipboard.
//
// Design decisions:
//   - CSV filenames are derived from the query itself (tables referenced,
//     aggregate hints) so an exports directory stays navigable.
//   - Markdown rendering is plain text output, no terminal styling; the
//     surfaces decide how to present it.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/askdb/askdb/db"
	"github.com/atotto/clipboard"
)

var (
	tableRefPattern = regexp.MustCompile(`(?i)\b(?:FROM|JOIN)\s+([a-zA-Z_][a-zA-Z0-9_.]*)`)
	unsafePattern   = regexp.MustCompile(`[^a-z0-9_]+`)
)

// aggregate hints worth carrying into a filename
var conceptWords = []string{"count", "sum", "avg", "total", "max", "min"}

const maxStemLen = 50

// DeriveFilename builds a CSV filename from the statement: referenced
// tables plus any aggregate hint, sanitized, capped, and timestamped.
func DeriveFilename(sql string, now time.Time) string {
	var parts []string
	seen := map[string]bool{}
	for _, m := range tableRefPattern.FindAllStringSubmatch(sql, -1) {
		name := strings.ToLower(m[1])
		// strip schema qualifier
		if idx := strings.LastIndexByte(name, '.'); idx >= 0 {
			name = name[idx+1:]
		}
		if !seen[name] {
			seen[name] = true
			parts = append(parts, name)
		}
	}

	lower := strings.ToLower(sql)
	for _, w := range conceptWords {
		if strings.Contains(lower, w+"(") {
			parts = append(parts, w)
			break
		}
	}

	stem := strings.Join(parts, "_")
	stem = unsafePattern.ReplaceAllString(stem, "_")
	stem = strings.Trim(stem, "_")
	if stem == "" {
		stem = "query"
	}
	if len(stem) > maxStemLen {
		stem = stem[:maxStemLen]
		stem = strings.TrimRight(stem, "_")
	}
	return fmt.Sprintf("%s_%s.csv", stem, now.Format("20060102_150405"))
}

// WriteCSV saves a result under dir with a derived filename and returns the
// full path.
func WriteCSV(dir, sql string, result *db.Result) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create exports dir: %w", err)
	}

	path := filepath.Join(dir, DeriveFilename(sql, time.Now()))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(result.Columns); err != nil {
		return "", fmt.Errorf("write header: %w", err)
	}
	for _, row := range result.Rows {
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush csv: %w", err)
	}
	return path, nil
}

// MarkdownTable renders a result as a GitHub-style markdown table.
func MarkdownTable(result *db.Result) string {
	if len(result.Columns) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("| ")
	b.WriteString(strings.Join(result.Columns, " | "))
	b.WriteString(" |\n|")
	for range result.Columns {
		b.WriteString(" --- |")
	}
	b.WriteByte('\n')
	for _, row := range result.Rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = strings.ReplaceAll(cell, "|", "\\|")
		}
		b.WriteString("| ")
		b.WriteString(strings.Join(cells, " | "))
		b.WriteString(" |\n")
	}
	return b.String()
}

// CopyToClipboard places text on the system clipboard.
func CopyToClipboard(text string) error {
	return clipboard.WriteAll(text)
}
