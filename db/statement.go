package db

import "strings"

// FirstKeyword returns the statement's leading keyword, uppercased, after
// skipping SQL comments. This is the single trust-boundary inspection the
// system performs on generated SQL: no parsing, first token only.
func FirstKeyword(sql string) string {
	s := strings.TrimSpace(sql)
	for {
		switch {
		case strings.HasPrefix(s, "--"):
			idx := strings.IndexByte(s, '\n')
			if idx < 0 {
				return ""
			}
			s = strings.TrimSpace(s[idx+1:])
		case strings.HasPrefix(s, "/*"):
			idx := strings.Index(s, "*/")
			if idx < 0 {
				return ""
			}
			s = strings.TrimSpace(s[idx+2:])
		default:
			fields := strings.Fields(s)
			if len(fields) == 0 {
				return ""
			}
			return strings.ToUpper(strings.TrimLeft(fields[0], "("))
		}
	}
}

// returnsRows reports whether a statement should be run through the query
// path (row collection) rather than the exec path (affected count).
func returnsRows(sql string) bool {
	switch FirstKeyword(sql) {
	case "SELECT", "WITH", "SHOW", "EXPLAIN", "VALUES", "TABLE", "PRAGMA":
		return true
	default:
		return false
	}
}
