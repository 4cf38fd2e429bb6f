package core

import (
	"context"
	"sync"
	"time"

	"github.com/askdb/askdb/ai"
	"github.com/askdb/askdb/applog"
	"github.com/askdb/askdb/config"
	"github.com/askdb/askdb/db"
	"github.com/askdb/askdb/store"
)

// LLM is the slice of an AI provider the pipeline needs.
type LLM interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
}

// DBFactory opens a connection for a database config.
type DBFactory func(ctx context.Context, cfg config.DatabaseConfig) (db.Conn, error)

// LLMFactory builds a provider for an LLM config.
type LLMFactory func(cfg config.LLMConfig) (LLM, error)

// ConfirmFunc asks the user to approve running a destructive statement.
// Implementations block until the user answers.
type ConfirmFunc func(sql string) bool

// HandleOptions carries per-call execution controls from the surface.
type HandleOptions struct {
	// Execute requests execution explicitly, overriding dry-run for this
	// call only (CLI --execute, HTTP execute flag).
	Execute bool
	// Confirm approves destructive statements. When nil, destructive
	// execution is cancelled rather than run.
	Confirm ConfirmFunc
}

// QueryResult is the outcome of one question.
type QueryResult struct {
	Question string
	Mode     Mode
	SQL      string
	Prompt   string // assembled prompt, populated when the session is verbose
	Decision Decision

	Executed  bool
	Cancelled bool // destructive statement, confirmation denied or unavailable
	Result    *db.Result
	Duration  time.Duration
}

// Agent orchestrates the pipeline and owns the shared resources:
// connection pools per database, provider clients per LLM entry, and the
// schema cache. Safe for concurrent use; sessions are not shared.
type Agent struct {
	cfg     *config.Config
	cache   *Cache
	engine  *Engine
	connect DBFactory
	newLLM  LLMFactory

	mu    sync.Mutex
	conns map[string]db.Conn
	llms  map[string]LLM
}

// NewAgent builds an agent with the real database and provider factories.
func NewAgent(cfg *config.Config, st Store) *Agent {
	return NewAgentWithFactories(cfg, st, db.Connect,
		func(c config.LLMConfig) (LLM, error) { return ai.NewProvider(c) })
}

// NewAgentWithFactories injects connection and provider construction; used
// by tests to run the whole pipeline against fakes.
func NewAgentWithFactories(cfg *config.Config, st Store, connect DBFactory, newLLM LLMFactory) *Agent {
	return &Agent{
		cfg:     cfg,
		cache:   NewCache(st, cfg.SchemaCharBudget),
		engine:  &Engine{IntentKeywords: cfg.IntentKeywords},
		connect: connect,
		newLLM:  newLLM,
		conns:   map[string]db.Conn{},
		llms:    map[string]LLM{},
	}
}

// Config exposes the loaded configuration to surfaces.
func (a *Agent) Config() *config.Config { return a.cfg }

// conn returns the pooled connection for a database, opening it on first
// use.
func (a *Agent) conn(ctx context.Context, database string) (db.Conn, error) {
	dbCfg, ok := a.cfg.GetDatabase(database)
	if !ok {
		return nil, &UnknownDatabaseError{Name: database, Known: a.cfg.ListDatabases()}
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if c, ok := a.conns[database]; ok {
		return c, nil
	}
	c, err := a.connect(ctx, dbCfg)
	if err != nil {
		return nil, err
	}
	a.conns[database] = c
	return c, nil
}

// llm returns the provider for an LLM entry, building it on first use.
func (a *Agent) llm(name string) (LLM, error) {
	llmCfg, ok := a.cfg.GetLLM(name)
	if !ok {
		return nil, &UnknownProviderError{Name: name, Known: a.cfg.ListLLMs()}
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if p, ok := a.llms[name]; ok {
		return p, nil
	}
	p, err := a.newLLM(llmCfg)
	if err != nil {
		return nil, err
	}
	a.llms[name] = p
	return p, nil
}

// HandleQuery runs the full pipeline for one question: mode routing, schema
// context, generation, extraction, the execution decision, and (when
// decided and confirmed) execution. The returned result carries the
// generated SQL even when a later stage fails.
func (a *Agent) HandleQuery(ctx context.Context, raw string, sess *Session, opts HandleOptions) (*QueryResult, error) {
	started := time.Now()

	question, mode := Classify(raw, sess.Mode)
	if question == "" {
		return nil, ErrEmptyQuery
	}
	res := &QueryResult{Question: question, Mode: mode}

	conn, err := a.conn(ctx, sess.Database)
	if err != nil {
		return res, err
	}

	ts, err := a.cache.GetOrTrain(ctx, sess.Database, conn)
	if err != nil {
		if ts == nil {
			return res, err
		}
		// Training succeeded but the snapshot could not be persisted;
		// answer the question anyway and retrain next run.
		applog.Error("schema cache save for %s: %v", sess.Database, err)
	}

	prompt := BuildPrompt(mode, sess.Database, ts.SchemaText, question)
	if sess.Verbose {
		res.Prompt = prompt
	}

	provider, err := a.llm(sess.LLM)
	if err != nil {
		return res, err
	}
	reply, err := provider.Generate(ctx, prompt)
	if err != nil {
		return res, err
	}
	res.SQL = ai.ExtractSQL(reply)

	effective := *sess
	effective.Mode = mode
	res.Decision = a.engine.Decide(question, res.SQL, &effective, opts.Execute)
	res.Duration = time.Since(started)

	if !res.Decision.Execute {
		applog.Event("QUERY", "db=%s mode=%s executed=false (%s)",
			sess.Database, mode, res.Decision.Reason)
		return res, nil
	}

	if res.Decision.Destructive {
		if opts.Confirm == nil || !opts.Confirm(res.SQL) {
			res.Cancelled = true
			applog.Event("QUERY", "db=%s mode=%s cancelled (confirmation denied)",
				sess.Database, mode)
			return res, nil
		}
	}

	result, err := conn.Execute(ctx, res.SQL)
	res.Duration = time.Since(started)
	if err != nil {
		applog.Error("execute on %s failed: %v", sess.Database, err)
		return res, err
	}
	res.Executed = true
	res.Result = result
	applog.Event("QUERY", "db=%s mode=%s executed=true rows=%d affected=%d",
		sess.Database, mode, result.RowCount, result.Affected)
	return res, nil
}

// ExecuteSQL runs a statement directly, skipping generation but applying
// the same destructive-confirmation policy as HandleQuery. Used to re-run
// previously generated SQL.
func (a *Agent) ExecuteSQL(ctx context.Context, sess *Session, sql string, confirm ConfirmFunc) (*QueryResult, error) {
	started := time.Now()
	res := &QueryResult{
		Mode: sess.Mode,
		SQL:  sql,
		Decision: Decision{
			Execute:     true,
			Destructive: isDestructive(sql, sess.Mode),
			Format:      FormatTable,
			Reason:      "direct execution",
		},
	}

	conn, err := a.conn(ctx, sess.Database)
	if err != nil {
		return res, err
	}

	if res.Decision.Destructive {
		if confirm == nil || !confirm(sql) {
			res.Cancelled = true
			return res, nil
		}
	}

	result, err := conn.Execute(ctx, sql)
	res.Duration = time.Since(started)
	if err != nil {
		applog.Error("execute on %s failed: %v", sess.Database, err)
		return res, err
	}
	res.Executed = true
	res.Result = result
	return res, nil
}

// SwitchDatabase validates the name and updates the session. Switching does
// not train; context is resolved lazily on the next question.
func (a *Agent) SwitchDatabase(sess *Session, name string) error {
	if _, ok := a.cfg.GetDatabase(name); !ok {
		return &UnknownDatabaseError{Name: name, Known: a.cfg.ListDatabases()}
	}
	sess.Database = name
	applog.Event("SWITCH", "database=%s", name)
	return nil
}

// SwitchLLM validates the name and updates the session.
func (a *Agent) SwitchLLM(sess *Session, name string) error {
	if _, ok := a.cfg.GetLLM(name); !ok {
		return &UnknownProviderError{Name: name, Known: a.cfg.ListLLMs()}
	}
	sess.LLM = name
	applog.Event("SWITCH", "llm=%s", name)
	return nil
}

// SwitchMode validates the mode name and updates the session.
func (a *Agent) SwitchMode(sess *Session, name string) error {
	mode, err := ParseMode(name)
	if err != nil {
		return err
	}
	sess.Mode = mode
	return nil
}

// Train forces re-introspection of a database, replacing the cached schema.
// Persistence failures are surfaced here, unlike the lazy path.
func (a *Agent) Train(ctx context.Context, database string) (*store.TrainedSchema, error) {
	conn, err := a.conn(ctx, database)
	if err != nil {
		return nil, err
	}
	ts, err := a.cache.Train(ctx, database, conn)
	if err != nil {
		return ts, err
	}
	applog.Event("TRAIN", "db=%s tables=%d chars=%d", database, ts.TableCount, ts.CharCount)
	return ts, nil
}

// InvalidateSchema drops the in-memory cache entry for a database.
func (a *Agent) InvalidateSchema(database string) {
	a.cache.Invalidate(database)
}

// SchemaStatus reports the cached snapshot for a database without training
// and without promoting a disk entry into memory. Returns nil when nothing
// is cached.
func (a *Agent) SchemaStatus(database string) *store.TrainedSchema {
	return a.cache.Peek(database)
}

// SchemaState reports whether a database's context is untrained, in
// memory, or on disk only.
func (a *Agent) SchemaState(database string) SchemaState {
	return a.cache.Status(database)
}

// TestConnectivity checks both sides of a session: database ping and a
// minimal LLM round-trip. Either error is returned as-is.
func (a *Agent) TestConnectivity(ctx context.Context, sess *Session) error {
	conn, err := a.conn(ctx, sess.Database)
	if err != nil {
		return err
	}
	if err := conn.Ping(ctx); err != nil {
		return err
	}
	provider, err := a.llm(sess.LLM)
	if err != nil {
		return err
	}
	if tester, ok := provider.(interface{ TestConnectivity(context.Context) error }); ok {
		return tester.TestConnectivity(ctx)
	}
	_, err = provider.Generate(ctx, "Reply with exactly: OK")
	return err
}

// Close releases all open database connections.
func (a *Agent) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for name, c := range a.conns {
		c.Close()
		delete(a.conns, name)
	}
}
