package core

import "github.com/askdb/askdb/config"

// Session holds one conversation's mutable settings. A session belongs to a
// single surface (REPL instance, one-shot CLI run, or HTTP API session) and
// is not safe for concurrent use; surfaces that share sessions must
// serialize access themselves.
type Session struct {
	Database string
	LLM      string
	Mode     Mode

	// DryRun blocks execution of generated SQL unless the caller asks for
	// it explicitly. On by default.
	DryRun bool
	// AutoExecute runs every generated statement without waiting for an
	// execution request (destructive statements still confirm).
	AutoExecute bool
	// Clipboard copies generated SQL to the system clipboard.
	Clipboard bool
	// Verbose includes the assembled prompt and timing in surface output.
	Verbose bool
}

// NewSession builds a session from configuration defaults overlaid with
// saved preferences.
func NewSession(cfg *config.Config, prefs config.Preferences) *Session {
	s := &Session{
		Database:  cfg.DefaultDatabase,
		LLM:       cfg.DefaultLLM,
		Mode:      ModeSQL,
		DryRun:    true,
		Clipboard: cfg.Clipboard,
	}
	if prefs.Database != "" {
		if _, ok := cfg.GetDatabase(prefs.Database); ok {
			s.Database = prefs.Database
		}
	}
	if prefs.LLM != "" {
		if _, ok := cfg.GetLLM(prefs.LLM); ok {
			s.LLM = prefs.LLM
		}
	}
	if prefs.Mode != "" {
		if m, err := ParseMode(prefs.Mode); err == nil {
			s.Mode = m
		}
	}
	if prefs.Clipboard != nil {
		s.Clipboard = *prefs.Clipboard
	}
	return s
}

// Preferences converts the sticky parts of the session back to the persisted
// form.
func (s *Session) Preferences() config.Preferences {
	clip := s.Clipboard
	return config.Preferences{
		Database:  s.Database,
		LLM:       s.LLM,
		Mode:      string(s.Mode),
		Clipboard: &clip,
	}
}
