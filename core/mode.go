// Package core implements the question-to-SQL pipeline: mode routing,
// schema context assembly, prompt building, the execution decision engine,
// and the orchestrating agent that ties them to a database and an LLM.
//
// Design decisions:
//   - The pipeline never inspects generated SQL beyond its first keyword;
//     safety comes from mode declarations and confirmation, not parsing.
//   - Sessions are plain structs owned by one surface (REPL, CLI run, or
//     HTTP session); the agent itself holds only shared, synchronized state.
//   - Database and LLM construction is injected so tests run the whole
//     pipeline with fakes.
package core

import "strings"

// Mode declares what kind of SQL a question expects.
type Mode string

const (
	// ModeSQL generates read-only SELECT queries.
	ModeSQL Mode = "sql"
	// ModeDDL generates schema-changing statements (CREATE VIEW, ALTER, ...).
	ModeDDL Mode = "ddl"
	// ModeCRUD generates data-modifying statements (INSERT, UPDATE, DELETE).
	ModeCRUD Mode = "crud"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeSQL:
		return ModeSQL, nil
	case ModeDDL:
		return ModeDDL, nil
	case ModeCRUD:
		return ModeCRUD, nil
	default:
		return "", &InvalidModeError{Mode: s}
	}
}

// Classify extracts an inline mode marker (@sql, @ddl, @crud) from the start
// of a question. The marker overrides the session mode for that question
// only. Returns the cleaned question and the mode to use.
func Classify(raw string, sessionMode Mode) (question string, mode Mode) {
	question = strings.TrimSpace(raw)
	mode = sessionMode

	lower := strings.ToLower(question)
	for _, m := range []Mode{ModeSQL, ModeDDL, ModeCRUD} {
		marker := "@" + string(m)
		if lower == marker {
			return "", m
		}
		if strings.HasPrefix(lower, marker+" ") {
			return strings.TrimSpace(question[len(marker):]), m
		}
	}
	return question, mode
}
