// Package server exposes the pipeline over a small JSON HTTP API.
//
// Design decisions:
//   - net/http with method-qualified mux patterns; no router dependency.
//   - Sessions are server-side, identified by UUID, and carry the same
//     settings as a REPL session. A per-session mutex serializes queries
//     for one session; different sessions run concurrently.
//   - Destructive statements never execute without confirm:true in the
//     request body; the response carries needs_confirmation so clients can
//     re-submit.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/askdb/askdb/applog"
	"github.com/askdb/askdb/config"
	"github.com/askdb/askdb/core"
	"github.com/google/uuid"
)

// Server holds the shared agent and the session table.
type Server struct {
	agent *core.Agent

	sessions sync.Map // id -> *apiSession
}

type apiSession struct {
	mu   sync.Mutex
	sess *core.Session
}

// New builds the HTTP server around an agent.
func New(agent *core.Agent) *Server {
	return &Server{agent: agent}
}

// Handler returns the routed http.Handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/sessions", s.handleCreateSession)
	mux.HandleFunc("GET /api/sessions/{id}", s.handleGetSession)
	mux.HandleFunc("POST /api/sessions/{id}/settings", s.handleSettings)
	mux.HandleFunc("POST /api/sessions/{id}/query", s.handleQuery)
	mux.HandleFunc("POST /api/train", s.handleTrain)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// statusFor maps pipeline errors to HTTP status codes.
func statusFor(err error) int {
	var unknownDB *core.UnknownDatabaseError
	var unknownLLM *core.UnknownProviderError
	var invalidMode *core.InvalidModeError
	switch {
	case errors.Is(err, core.ErrEmptyQuery),
		errors.As(err, &unknownDB),
		errors.As(err, &unknownLLM),
		errors.As(err, &invalidMode):
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

type sessionState struct {
	ID          string `json:"id"`
	Database    string `json:"database"`
	LLM         string `json:"llm"`
	Mode        string `json:"mode"`
	DryRun      bool   `json:"dry_run"`
	AutoExecute bool   `json:"auto_execute"`
	Verbose     bool   `json:"verbose"`
}

func stateOf(id string, sess *core.Session) sessionState {
	return sessionState{
		ID:          id,
		Database:    sess.Database,
		LLM:         sess.LLM,
		Mode:        string(sess.Mode),
		DryRun:      sess.DryRun,
		AutoExecute: sess.AutoExecute,
		Verbose:     sess.Verbose,
	}
}

func (s *Server) session(id string) (*apiSession, bool) {
	v, ok := s.sessions.Load(id)
	if !ok {
		return nil, false
	}
	return v.(*apiSession), true
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Database string `json:"database"`
		LLM      string `json:"llm"`
		Mode     string `json:"mode"`
	}
	// An empty body is fine; everything defaults.
	_ = json.NewDecoder(r.Body).Decode(&req)

	cfg := s.agent.Config()
	sess := core.NewSession(cfg, config.Preferences{})
	if req.Database != "" {
		if err := s.agent.SwitchDatabase(sess, req.Database); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}
	if req.LLM != "" {
		if err := s.agent.SwitchLLM(sess, req.LLM); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}
	if req.Mode != "" {
		mode, err := core.ParseMode(req.Mode)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		sess.Mode = mode
	}

	id := uuid.NewString()
	s.sessions.Store(id, &apiSession{sess: sess})
	applog.Event("API", "session created id=%s db=%s", id, sess.Database)
	writeJSON(w, http.StatusCreated, stateOf(id, sess))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	as, ok := s.session(id)
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("unknown session"))
		return
	}
	as.mu.Lock()
	state := stateOf(id, as.sess)
	as.mu.Unlock()
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	as, ok := s.session(id)
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("unknown session"))
		return
	}

	var req struct {
		Database    *string `json:"database"`
		LLM         *string `json:"llm"`
		Mode        *string `json:"mode"`
		DryRun      *bool   `json:"dry_run"`
		AutoExecute *bool   `json:"auto_execute"`
		Verbose     *bool   `json:"verbose"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	as.mu.Lock()
	defer as.mu.Unlock()
	if req.Database != nil {
		if err := s.agent.SwitchDatabase(as.sess, *req.Database); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}
	if req.LLM != nil {
		if err := s.agent.SwitchLLM(as.sess, *req.LLM); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}
	if req.Mode != nil {
		if err := s.agent.SwitchMode(as.sess, *req.Mode); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}
	if req.DryRun != nil {
		as.sess.DryRun = *req.DryRun
	}
	if req.AutoExecute != nil {
		as.sess.AutoExecute = *req.AutoExecute
	}
	if req.Verbose != nil {
		as.sess.Verbose = *req.Verbose
	}
	writeJSON(w, http.StatusOK, stateOf(id, as.sess))
}

type queryResponse struct {
	SQL               string     `json:"sql"`
	Mode              string     `json:"mode"`
	Executed          bool       `json:"executed"`
	Cancelled         bool       `json:"cancelled"`
	NeedsConfirmation bool       `json:"needs_confirmation,omitempty"`
	Reason            string     `json:"reason,omitempty"`
	Prompt            string     `json:"prompt,omitempty"`
	Columns           []string   `json:"columns,omitempty"`
	Rows              [][]string `json:"rows,omitempty"`
	RowCount          int        `json:"row_count,omitempty"`
	Affected          int64      `json:"affected,omitempty"`
	DurationMS        int64      `json:"duration_ms"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	as, ok := s.session(id)
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("unknown session"))
		return
	}

	var req struct {
		Query   string `json:"query"`
		Execute bool   `json:"execute"`
		Confirm bool   `json:"confirm"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	as.mu.Lock()
	defer as.mu.Unlock()

	res, err := s.agent.HandleQuery(r.Context(), req.Query, as.sess, core.HandleOptions{
		Execute: req.Execute,
		Confirm: func(string) bool { return req.Confirm },
	})
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	resp := queryResponse{
		SQL:        res.SQL,
		Mode:       string(res.Mode),
		Executed:   res.Executed,
		Cancelled:  res.Cancelled,
		Reason:     res.Decision.Reason,
		Prompt:     res.Prompt,
		DurationMS: res.Duration.Milliseconds(),
	}
	if res.Cancelled && !req.Confirm {
		resp.NeedsConfirmation = true
	}
	if res.Result != nil {
		resp.Columns = res.Result.Columns
		resp.Rows = res.Result.Rows
		resp.RowCount = res.Result.RowCount
		resp.Affected = res.Result.Affected
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTrain(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Database string `json:"database"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Database == "" {
		req.Database = s.agent.Config().DefaultDatabase
	}

	ts, err := s.agent.Train(r.Context(), req.Database)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"database":    ts.Database,
		"table_count": ts.TableCount,
		"char_count":  ts.CharCount,
		"trained_at":  ts.TrainedAt,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	cfg := s.agent.Config()
	type schemaInfo struct {
		State      string `json:"state"`
		TableCount int    `json:"table_count,omitempty"`
		TrainedAt  string `json:"trained_at,omitempty"`
	}
	schemas := map[string]schemaInfo{}
	for _, name := range cfg.ListDatabases() {
		info := schemaInfo{State: string(s.agent.SchemaState(name))}
		if ts := s.agent.SchemaStatus(name); ts != nil {
			info.TableCount = ts.TableCount
			info.TrainedAt = ts.TrainedAt.Format("2006-01-02T15:04:05Z07:00")
		}
		schemas[name] = info
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"databases":        cfg.ListDatabases(),
		"llms":             cfg.ListLLMs(),
		"default_database": cfg.DefaultDatabase,
		"default_llm":      cfg.DefaultLLM,
		"schemas":          schemas,
	})
}
