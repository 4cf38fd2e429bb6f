// status.go prints configuration and schema cache state.
package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configured databases, providers, and cached schemas",
	RunE: func(cmd *cobra.Command, args []string) error {
		agent, sess, err := setup()
		if err != nil {
			return err
		}
		defer agent.Close()
		cfg := agent.Config()

		pterm.DefaultSection.Println("Session")
		pterm.Printf("database: %s\nllm:      %s\nmode:     %s\n",
			sess.Database, sess.LLM, sess.Mode)

		pterm.DefaultSection.Println("Databases")
		data := pterm.TableData{{"name", "driver", "schema", "trained", "tables"}}
		for _, name := range cfg.ListDatabases() {
			dbCfg, _ := cfg.GetDatabase(name)
			state := string(agent.SchemaState(name))
			trained, tables := "-", "-"
			if ts := agent.SchemaStatus(name); ts != nil {
				trained = ts.TrainedAt.Local().Format("2006-01-02 15:04")
				tables = pterm.Sprintf("%d", ts.TableCount)
			}
			data = append(data, []string{name, dbCfg.Driver, state, trained, tables})
		}
		if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
			return err
		}

		pterm.DefaultSection.Println("LLM providers")
		llmData := pterm.TableData{{"name", "type", "model"}}
		for _, name := range cfg.ListLLMs() {
			llmCfg, _ := cfg.GetLLM(name)
			llmData = append(llmData, []string{name, llmCfg.Type, llmCfg.Model})
		}
		return pterm.DefaultTable.WithHasHeader().WithData(llmData).Render()
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
