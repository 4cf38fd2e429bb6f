// Package repl implements the interactive prompt as a Bubble Tea program.
//
// Layout: a scrolling transcript (viewport) above a single-line input.
// Questions run in background commands; destructive confirmations arrive as
// messages from inside the running pipeline and block it until answered.
package repl

import (
	"context"
	"fmt"
	"strings"

	"github.com/askdb/askdb/applog"
	"github.com/askdb/askdb/config"
	"github.com/askdb/askdb/core"
	"github.com/askdb/askdb/export"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

type state int

const (
	stateInput state = iota
	stateBusy
	stateConfirm
)

type model struct {
	agent   *core.Agent
	sess    *core.Session
	program *tea.Program

	input textinput.Model
	vp    viewport.Model
	lines []string

	state   state
	pending *confirmRequestMsg
	lastSQL string

	width  int
	height int
	ready  bool
}

// Run starts the REPL and blocks until the user quits.
func Run(agent *core.Agent, sess *core.Session) error {
	m := newModel(agent, sess)
	p := tea.NewProgram(m)
	m.program = p
	_, err := p.Run()
	return err
}

func newModel(agent *core.Agent, sess *core.Session) *model {
	ti := textinput.New()
	ti.Placeholder = "ask a question, or @help"
	ti.Prompt = ""
	ti.Focus()

	m := &model{
		agent: agent,
		sess:  sess,
		input: ti,
		vp:    viewport.New(80, 20),
	}
	m.appendLines(m.banner()...)
	return m
}

func (m *model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *model) banner() []string {
	cfg := m.agent.Config()
	return []string{
		styleBold.Render("askdb") + styleDimmed.Render(" — ask your database in plain language"),
		"",
		styleDimmed.Render(fmt.Sprintf("databases: %s", strings.Join(cfg.ListDatabases(), ", "))),
		styleDimmed.Render(fmt.Sprintf("llms: %s", strings.Join(cfg.ListLLMs(), ", "))),
		styleDimmed.Render("type @help for commands"),
		"",
	}
}

func (m *model) appendLines(lines ...string) {
	m.lines = append(m.lines, lines...)
	m.vp.SetContent(strings.Join(m.lines, "\n"))
	m.vp.GotoBottom()
}

func (m *model) promptLabel() string {
	flags := ""
	if m.sess.DryRun {
		flags = " dry-run"
	}
	if m.sess.AutoExecute {
		flags += " auto"
	}
	return stylePrompt.Render(fmt.Sprintf("[%s:%s:%s%s]>", m.sess.Database, m.sess.Mode, m.sess.LLM, flags)) + " "
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.vp.Width = msg.Width
		m.vp.Height = msg.Height - 2
		m.input.Width = msg.Width - len("[db:mode:llm]> ")
		m.ready = true
		m.vp.SetContent(strings.Join(m.lines, "\n"))
		m.vp.GotoBottom()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case confirmRequestMsg:
		m.state = stateConfirm
		m.pending = &msg
		m.appendLines(
			styleWarning.Render("About to execute:"),
			"  "+styleSQL.Render(strings.ReplaceAll(msg.sql, "\n", "\n  ")),
			styleWarning.Render("Run it? [y/N]"),
		)
		return m, nil

	case queryDoneMsg:
		m.state = stateInput
		m.renderQueryResult(msg.res, msg.err)
		return m, nil

	case trainDoneMsg:
		m.state = stateInput
		if msg.err != nil {
			m.appendLines(styleError.Render("train: " + msg.err.Error()))
		} else {
			m.appendLines(styleSuccess.Render(fmt.Sprintf(
				"trained %s: %d tables, %d chars", msg.database, msg.ts.TableCount, msg.ts.CharCount)))
		}
		return m, nil

	case testDoneMsg:
		m.state = stateInput
		if msg.err != nil {
			m.appendLines(styleError.Render("connectivity: " + msg.err.Error()))
		} else {
			m.appendLines(styleSuccess.Render("database and LLM reachable"))
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.state {
	case stateConfirm:
		switch msg.String() {
		case "y", "Y":
			m.pending.reply <- true
			m.pending = nil
			m.state = stateBusy
		case "ctrl+c":
			m.pending.reply <- false
			m.pending = nil
			return m, m.quit()
		default:
			m.pending.reply <- false
			m.pending = nil
			m.state = stateBusy
		}
		return m, nil

	case stateBusy:
		if msg.String() == "ctrl+c" {
			return m, m.quit()
		}
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c":
		return m, m.quit()
	case "enter":
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			return m, nil
		}
		m.input.SetValue("")
		m.appendLines(m.promptLabel() + text)
		if strings.HasPrefix(text, "@") {
			return m.handleCommand(text)
		}
		m.state = stateBusy
		return m, m.runQuery(text, false)
	case "pgup":
		m.vp.HalfViewUp()
		return m, nil
	case "pgdown":
		m.vp.HalfViewDown()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *model) quit() tea.Cmd {
	if err := config.SavePreferences(m.sess.Preferences()); err != nil {
		applog.Error("save preferences: %v", err)
	}
	return tea.Quit
}

// confirmer returns a ConfirmFunc that routes through the UI: it posts a
// request message and blocks the pipeline goroutine until the user answers.
func (m *model) confirmer() core.ConfirmFunc {
	return func(sql string) bool {
		reply := make(chan bool, 1)
		m.program.Send(confirmRequestMsg{sql: sql, reply: reply})
		return <-reply
	}
}

func (m *model) runQuery(text string, forced bool) tea.Cmd {
	agent, sess, confirm := m.agent, m.sess, m.confirmer()
	return func() tea.Msg {
		res, err := agent.HandleQuery(context.Background(), text, sess,
			core.HandleOptions{Execute: forced, Confirm: confirm})
		return queryDoneMsg{res: res, err: err}
	}
}

func (m *model) runLastSQL() tea.Cmd {
	agent, sess, confirm, sql := m.agent, m.sess, m.confirmer(), m.lastSQL
	return func() tea.Msg {
		res, err := agent.ExecuteSQL(context.Background(), sess, sql, confirm)
		return queryDoneMsg{res: res, err: err}
	}
}

func (m *model) View() string {
	if !m.ready {
		return "starting..."
	}
	var bottom string
	switch m.state {
	case stateBusy:
		bottom = styleDimmed.Render("working...")
	case stateConfirm:
		bottom = styleWarning.Render("confirm [y/N]")
	default:
		bottom = m.promptLabel() + m.input.View()
	}
	return m.vp.View() + "\n" + bottom
}

// renderQueryResult appends the outcome of one question to the transcript
// and applies clipboard/export side effects.
func (m *model) renderQueryResult(res *core.QueryResult, err error) {
	if res != nil && res.SQL != "" {
		m.lastSQL = res.SQL
		if m.sess.Verbose && res.Prompt != "" {
			m.appendLines(styleDimmed.Render("prompt:"), styleDimmed.Render(res.Prompt), "")
		}
		m.appendLines(styleSQL.Render(res.SQL))
		if m.sess.Clipboard {
			if cerr := export.CopyToClipboard(res.SQL); cerr != nil {
				applog.Error("clipboard: %v", cerr)
			} else {
				m.appendLines(styleDimmed.Render("(copied to clipboard)"))
			}
		}
	}
	if err != nil {
		m.appendLines(styleError.Render(err.Error()), "")
		return
	}
	if res == nil {
		return
	}

	switch {
	case res.Cancelled:
		m.appendLines(styleWarning.Render("cancelled"), "")
	case !res.Decision.Execute:
		m.appendLines(styleDimmed.Render("not executed: "+res.Decision.Reason), "")
	case res.Result != nil && res.Result.HasRows:
		m.renderRows(res)
	default:
		m.appendLines(styleSuccess.Render(fmt.Sprintf("done, %d row(s) affected", affected(res))), "")
	}
}

func affected(res *core.QueryResult) int64 {
	if res.Result == nil {
		return 0
	}
	return res.Result.Affected
}

func (m *model) renderRows(res *core.QueryResult) {
	switch res.Decision.Format {
	case core.FormatCSV:
		path, err := export.WriteCSV(m.agent.Config().ExportsDir, res.SQL, res.Result)
		if err != nil {
			m.appendLines(styleError.Render("csv export: " + err.Error()))
		} else {
			m.appendLines(styleSuccess.Render(fmt.Sprintf(
				"exported %d row(s) to %s", res.Result.RowCount, path)))
		}
	case core.FormatMarkdown:
		m.appendLines(strings.Split(export.MarkdownTable(res.Result), "\n")...)
	default:
		m.appendLines(renderTable(res.Result, m.width)...)
		m.appendLines(styleDimmed.Render(fmt.Sprintf("%d row(s)", res.Result.RowCount)))
	}
	m.appendLines("")
}
