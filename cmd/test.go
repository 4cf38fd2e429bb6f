// test.go checks database and LLM connectivity.
package cmd

import (
	"context"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Verify database and LLM connectivity",
	RunE: func(cmd *cobra.Command, args []string) error {
		agent, sess, err := setup()
		if err != nil {
			return err
		}
		defer agent.Close()

		spinner, _ := pterm.DefaultSpinner.Start(
			pterm.Sprintf("checking %s and %s", sess.Database, sess.LLM))
		if err := agent.TestConnectivity(context.Background(), sess); err != nil {
			spinner.Fail(err.Error())
			return err
		}
		spinner.Success("database and LLM reachable")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(testCmd)
}
