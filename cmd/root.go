// Package cmd contains all Cobra commands for askdb.
//
// Design decision: the root command launches the interactive REPL directly.
// Databases and LLM providers come from askdb.yaml; running `askdb` with no
// arguments drops straight into the prompt with saved preferences applied.
package cmd

import (
	"fmt"

	"github.com/askdb/askdb/applog"
	"github.com/askdb/askdb/config"
	"github.com/askdb/askdb/core"
	"github.com/askdb/askdb/repl"
	"github.com/askdb/askdb/store"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "askdb",
	Short: "Ask your database questions in plain language",
	Long: `askdb turns natural-language questions into SQL using an LLM:
  • @sql, @ddl, @crud modes route questions to the right statement family
  • schema introspection ("training") gives the model real table context
  • generated SQL never runs without intent, and never destructively
    without confirmation

Run 'askdb' to start the interactive prompt.`,
	SilenceUsage: true,
	// Running with no subcommand launches the REPL.
	RunE: func(cmd *cobra.Command, args []string) error {
		agent, sess, err := setup()
		if err != nil {
			return err
		}
		defer agent.Close()
		return repl.Run(agent, sess)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to askdb.yaml")
}

// setup loads config and preferences and builds the shared agent plus a
// session for this process.
func setup() (*core.Agent, *core.Session, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	if len(cfg.Databases) == 0 {
		return nil, nil, fmt.Errorf("no databases configured; create askdb.yaml (see README)")
	}

	st, err := store.NewFileStore(cfg.CacheDir)
	if err != nil {
		return nil, nil, err
	}

	agent := core.NewAgent(cfg, st)
	sess := core.NewSession(cfg, config.LoadPreferences())
	applog.Event("START", "db=%s llm=%s", sess.Database, sess.LLM)
	return agent, sess, nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
