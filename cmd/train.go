// train.go forces schema introspection outside the REPL.
package cmd

import (
	"context"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var trainAll bool

var trainCmd = &cobra.Command{
	Use:   "train [database...]",
	Short: "Introspect database schemas and cache them",
	Long: `Reads tables, columns, keys, and indexes and caches a flattened
schema snapshot under the cache directory. Questions use the cached
snapshot; run train again after schema changes (or use @refresh in the
REPL).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		agent, sess, err := setup()
		if err != nil {
			return err
		}
		defer agent.Close()

		targets := args
		if trainAll {
			targets = agent.Config().ListDatabases()
		} else if len(targets) == 0 {
			targets = []string{sess.Database}
		}

		for _, database := range targets {
			spinner, _ := pterm.DefaultSpinner.Start("training " + database)
			ts, err := agent.Train(context.Background(), database)
			if err != nil {
				spinner.Fail(err.Error())
				return err
			}
			spinner.Success(pterm.Sprintf("%s: %d tables, %d chars", database, ts.TableCount, ts.CharCount))
		}
		return nil
	},
}

func init() {
	trainCmd.Flags().BoolVar(&trainAll, "all", false, "train every configured database")
	rootCmd.AddCommand(trainCmd)
}
