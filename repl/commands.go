// commands.go handles @commands typed at the prompt.
package repl

import (
	"context"
	"fmt"
	"strings"

	"github.com/askdb/askdb/core"
	tea "github.com/charmbracelet/bubbletea"
)

var helpText = []string{
	"@use <db>        switch database",
	"@llm <name>      switch LLM provider",
	"@sql @ddl @crud  set session mode",
	"@dry-run [on|off]   toggle dry-run (blocks execution)",
	"@execute [on|off]   toggle auto-execute",
	"@clipboard [on|off] toggle copying SQL to clipboard",
	"@verbose [on|off]   toggle prompt/timing output",
	"@run             execute the last generated SQL",
	"@train [db]      (re)introspect the schema",
	"@refresh         drop cached schema and retrain",
	"@status          session and schema cache status",
	"@schema          show the cached schema context",
	"@tables          list tables in the cached schema",
	"@test            check database and LLM connectivity",
	"@quit            exit",
}

func (m *model) handleCommand(text string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(text)
	cmd := strings.ToLower(fields[0])
	arg := ""
	if len(fields) > 1 {
		arg = fields[1]
	}

	switch cmd {
	case "@help":
		m.appendLines(helpText...)
		m.appendLines("")

	case "@quit", "@exit":
		return m, m.quit()

	case "@use":
		if arg == "" {
			m.appendLines(styleError.Render("usage: @use <database>"))
			break
		}
		if err := m.agent.SwitchDatabase(m.sess, arg); err != nil {
			m.appendLines(styleError.Render(err.Error()))
		} else {
			m.appendLines(styleSuccess.Render("database: " + arg))
		}

	case "@llm":
		if arg == "" {
			m.appendLines(styleError.Render("usage: @llm <provider>"))
			break
		}
		if err := m.agent.SwitchLLM(m.sess, arg); err != nil {
			m.appendLines(styleError.Render(err.Error()))
		} else {
			m.appendLines(styleSuccess.Render("llm: " + arg))
		}

	case "@sql", "@ddl", "@crud":
		mode, _ := core.ParseMode(cmd[1:])
		m.sess.Mode = mode
		m.appendLines(styleSuccess.Render("mode: " + string(mode)))

	case "@dry-run":
		m.sess.DryRun = toggle(m.sess.DryRun, arg)
		m.appendLines(styleSuccess.Render("dry-run: " + onOff(m.sess.DryRun)))

	case "@execute":
		m.sess.AutoExecute = toggle(m.sess.AutoExecute, arg)
		m.appendLines(styleSuccess.Render("auto-execute: " + onOff(m.sess.AutoExecute)))

	case "@clipboard":
		m.sess.Clipboard = toggle(m.sess.Clipboard, arg)
		m.appendLines(styleSuccess.Render("clipboard: " + onOff(m.sess.Clipboard)))

	case "@verbose":
		m.sess.Verbose = toggle(m.sess.Verbose, arg)
		m.appendLines(styleSuccess.Render("verbose: " + onOff(m.sess.Verbose)))

	case "@run":
		if m.lastSQL == "" {
			m.appendLines(styleError.Render("nothing to run yet"))
			break
		}
		m.state = stateBusy
		return m, m.runLastSQL()

	case "@train":
		database := m.sess.Database
		if arg != "" {
			database = arg
		}
		m.state = stateBusy
		m.appendLines(styleDimmed.Render("training " + database + "..."))
		return m, m.runTrain(database)

	case "@refresh":
		m.agent.InvalidateSchema(m.sess.Database)
		m.state = stateBusy
		m.appendLines(styleDimmed.Render("retraining " + m.sess.Database + "..."))
		return m, m.runTrain(m.sess.Database)

	case "@status":
		m.appendLines(m.statusLines()...)
		m.appendLines("")

	case "@schema":
		if ts := m.agent.SchemaStatus(m.sess.Database); ts != nil {
			m.appendLines(strings.Split(ts.SchemaText, "\n")...)
		} else {
			m.appendLines(styleDimmed.Render("no schema cached; run @train"))
		}
		m.appendLines("")

	case "@tables":
		if ts := m.agent.SchemaStatus(m.sess.Database); ts != nil && len(ts.Tables) > 0 {
			m.appendLines(ts.Tables...)
		} else {
			m.appendLines(styleDimmed.Render("no schema cached; run @train"))
		}
		m.appendLines("")

	case "@test":
		m.state = stateBusy
		return m, m.runTest()

	default:
		m.appendLines(styleError.Render("unknown command " + cmd + " (try @help)"))
	}
	return m, nil
}

func (m *model) runTrain(database string) tea.Cmd {
	agent := m.agent
	return func() tea.Msg {
		ts, err := agent.Train(context.Background(), database)
		return trainDoneMsg{database: database, ts: ts, err: err}
	}
}

func (m *model) runTest() tea.Cmd {
	agent, sess := m.agent, m.sess
	return func() tea.Msg {
		return testDoneMsg{err: agent.TestConnectivity(context.Background(), sess)}
	}
}

func (m *model) statusLines() []string {
	lines := []string{
		fmt.Sprintf("database:     %s", m.sess.Database),
		fmt.Sprintf("llm:          %s", m.sess.LLM),
		fmt.Sprintf("mode:         %s", m.sess.Mode),
		fmt.Sprintf("dry-run:      %s", onOff(m.sess.DryRun)),
		fmt.Sprintf("auto-execute: %s", onOff(m.sess.AutoExecute)),
		fmt.Sprintf("clipboard:    %s", onOff(m.sess.Clipboard)),
		fmt.Sprintf("verbose:      %s", onOff(m.sess.Verbose)),
	}
	state := m.agent.SchemaState(m.sess.Database)
	if ts := m.agent.SchemaStatus(m.sess.Database); ts != nil {
		lines = append(lines, fmt.Sprintf("schema:       %s, %d tables, %d chars, trained %s",
			state, ts.TableCount, ts.CharCount, ts.TrainedAt.Local().Format("2006-01-02 15:04")))
	} else {
		lines = append(lines, fmt.Sprintf("schema:       %s", state))
	}
	return lines
}

func toggle(current bool, arg string) bool {
	switch strings.ToLower(arg) {
	case "on", "true", "yes":
		return true
	case "off", "false", "no":
		return false
	default:
		return !current
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
