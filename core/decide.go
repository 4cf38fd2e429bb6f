package core

import (
	"github.com/askdb/askdb/db"
)

// Decision is the execution plan for one generated statement.
type Decision struct {
	// Execute is true when the statement should be run now.
	Execute bool
	// Destructive marks statements that require confirmation before
	// running (anything that is not a plain SELECT).
	Destructive bool
	// Format is the output rendering detected from the question.
	Format OutputFormat
	// Reason explains the execute/skip choice for verbose output.
	Reason string
}

// Engine applies the execution policy: whether to run generated SQL, and
// whether to demand confirmation first.
type Engine struct {
	// IntentKeywords trigger execution when present in the question
	// (only consulted when the session is not in dry-run).
	IntentKeywords []string
}

// Decide evaluates one question/statement pair against session settings.
// forced is set when the caller explicitly requested execution (REPL
// @execute toggle is separate; this is a per-call ask such as --execute or
// the HTTP execute flag).
func (e *Engine) Decide(question, sql string, sess *Session, forced bool) Decision {
	d := Decision{
		Format:      detectFormat(question),
		Destructive: isDestructive(sql, sess.Mode),
	}

	switch {
	case forced:
		d.Execute = true
		d.Reason = "execution requested explicitly"
	case sess.DryRun:
		d.Execute = false
		d.Reason = "dry-run is on"
	case sess.AutoExecute:
		d.Execute = true
		d.Reason = "auto-execute is on"
	case sess.Mode != ModeSQL:
		d.Execute = true
		d.Reason = "mode " + string(sess.Mode) + " implies execution"
	case matchesIntent(question, e.IntentKeywords):
		d.Execute = true
		d.Reason = "question matches an execution-intent keyword"
	default:
		d.Execute = false
		d.Reason = "no execution intent detected"
	}
	return d
}

// isDestructive treats anything whose leading keyword is not SELECT as
// destructive. Mode ddl/crud is destructive regardless of the generated
// text. CTE-led writes (WITH ... DELETE) are only caught when the session
// mode already declares write intent.
func isDestructive(sql string, mode Mode) bool {
	if mode == ModeDDL || mode == ModeCRUD {
		return true
	}
	kw := db.FirstKeyword(sql)
	return kw != "" && kw != "SELECT"
}
