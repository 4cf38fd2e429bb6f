package core

import (
	"testing"

	"github.com/askdb/askdb/config"
)

func newEngine() *Engine {
	return &Engine{IntentKeywords: config.DefaultIntentKeywords}
}

func TestDecideDryRunBlocksExecution(t *testing.T) {
	e := newEngine()
	sess := &Session{Mode: ModeSQL, DryRun: true}

	// Even a clear intent keyword must not execute under dry-run.
	d := e.Decide("show me all orders", "SELECT * FROM orders;", sess, false)
	if d.Execute {
		t.Errorf("dry-run should block execution, reason=%q", d.Reason)
	}
}

func TestDecideExplicitRequestOverridesDryRun(t *testing.T) {
	e := newEngine()
	sess := &Session{Mode: ModeSQL, DryRun: true}

	d := e.Decide("join orders with customers", "SELECT 1;", sess, true)
	if !d.Execute {
		t.Errorf("explicit request should execute despite dry-run, reason=%q", d.Reason)
	}
}

func TestDecideIntentKeywordExecutes(t *testing.T) {
	e := newEngine()
	sess := &Session{Mode: ModeSQL}

	tests := []struct {
		question string
		want     bool
	}{
		{"show me the top customers by revenue", true},
		{"how many sessions today", true},
		{"join orders with customers on id", false},
	}
	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			d := e.Decide(tt.question, "SELECT 1;", sess, false)
			if d.Execute != tt.want {
				t.Errorf("Execute = %v, want %v (reason %q)", d.Execute, tt.want, d.Reason)
			}
		})
	}
}

func TestDecideModeImpliesExecution(t *testing.T) {
	e := newEngine()

	for _, mode := range []Mode{ModeDDL, ModeCRUD} {
		t.Run(string(mode), func(t *testing.T) {
			sess := &Session{Mode: mode}
			d := e.Decide("rename the status column", "ALTER TABLE t RENAME COLUMN s TO status;", sess, false)
			if !d.Execute {
				t.Errorf("mode %s should imply execution, reason=%q", mode, d.Reason)
			}
			if !d.Destructive {
				t.Errorf("mode %s should be destructive", mode)
			}
		})
	}
}

func TestDecideAutoExecute(t *testing.T) {
	e := newEngine()
	sess := &Session{Mode: ModeSQL, AutoExecute: true}

	d := e.Decide("correlate orders and refunds", "SELECT 1;", sess, false)
	if !d.Execute {
		t.Errorf("auto-execute should execute without intent, reason=%q", d.Reason)
	}
}

func TestIsDestructive(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		mode Mode
		want bool
	}{
		{"plain select", "SELECT * FROM users;", ModeSQL, false},
		{"select with leading comment", "-- top users\nSELECT 1;", ModeSQL, false},
		{"update in sql mode", "UPDATE users SET x = 1;", ModeSQL, true},
		{"drop in sql mode", "DROP TABLE users;", ModeSQL, true},
		{"select in ddl mode still destructive", "SELECT 1;", ModeDDL, true},
		{"select in crud mode still destructive", "SELECT 1;", ModeCRUD, true},
		{"empty sql", "", ModeSQL, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isDestructive(tt.sql, tt.mode); got != tt.want {
				t.Errorf("isDestructive(%q, %s) = %v, want %v", tt.sql, tt.mode, got, tt.want)
			}
		})
	}
}

func TestDecideFormatDetection(t *testing.T) {
	e := newEngine()
	sess := &Session{Mode: ModeSQL}

	d := e.Decide("export all users to csv", "SELECT * FROM users;", sess, false)
	if d.Format != FormatCSV {
		t.Errorf("Format = %q, want csv", d.Format)
	}
	if !d.Execute {
		t.Error("'export' is an intent keyword and should execute")
	}
}
