// ask.go implements one-shot question answering without the REPL,
// suitable for scripting and piping.
package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/askdb/askdb/core"
	"github.com/askdb/askdb/export"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	askMode     string
	askDatabase string
	askLLM      string
	askExecute  bool
	askYes      bool
	askCSV      bool
	askMarkdown bool
	askVerbose  bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask one question and exit",
	Long: `Generates SQL for a single question. With --execute the statement
runs; destructive statements prompt for confirmation unless --yes is set.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		agent, sess, err := setup()
		if err != nil {
			return err
		}
		defer agent.Close()

		if askDatabase != "" {
			if err := agent.SwitchDatabase(sess, askDatabase); err != nil {
				return err
			}
		}
		if askLLM != "" {
			if err := agent.SwitchLLM(sess, askLLM); err != nil {
				return err
			}
		}
		if askMode != "" {
			mode, err := core.ParseMode(askMode)
			if err != nil {
				return err
			}
			sess.Mode = mode
		}
		sess.Verbose = askVerbose
		// One-shot runs are explicit by nature: --execute is the only
		// execution trigger, keyword intent stays off.
		sess.DryRun = true

		question := strings.Join(args, " ")
		confirm := func(sql string) bool {
			if askYes {
				return true
			}
			ok, _ := pterm.DefaultInteractiveConfirm.
				WithDefaultText("Execute this statement?").
				Show()
			return ok
		}

		res, err := agent.HandleQuery(context.Background(), question, sess,
			core.HandleOptions{Execute: askExecute, Confirm: confirm})
		if res != nil && res.SQL != "" {
			if sess.Verbose && res.Prompt != "" {
				pterm.FgGray.Println(res.Prompt)
				pterm.Println()
			}
			pterm.FgCyan.Println(res.SQL)
			if sess.Clipboard {
				if cerr := export.CopyToClipboard(res.SQL); cerr == nil {
					pterm.FgGray.Println("(copied to clipboard)")
				}
			}
		}
		if err != nil {
			return err
		}

		switch {
		case res.Cancelled:
			pterm.Warning.Println("cancelled")
		case !res.Decision.Execute:
			pterm.FgGray.Println("not executed: " + res.Decision.Reason + " (use --execute to run)")
		case res.Result != nil && res.Result.HasRows:
			return printRows(agent.Config().ExportsDir, res)
		default:
			pterm.Success.Printf("done, %d row(s) affected\n", res.Result.Affected)
		}
		return nil
	},
}

func printRows(exportsDir string, res *core.QueryResult) error {
	switch {
	case askCSV || res.Decision.Format == core.FormatCSV:
		path, err := export.WriteCSV(exportsDir, res.SQL, res.Result)
		if err != nil {
			return err
		}
		pterm.Success.Printf("exported %d row(s) to %s\n", res.Result.RowCount, path)
	case askMarkdown || res.Decision.Format == core.FormatMarkdown:
		fmt.Print(export.MarkdownTable(res.Result))
	default:
		data := pterm.TableData{res.Result.Columns}
		for _, row := range res.Result.Rows {
			data = append(data, row)
		}
		if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
			return err
		}
		pterm.FgGray.Printf("%d row(s)\n", res.Result.RowCount)
	}
	return nil
}

func init() {
	askCmd.Flags().StringVar(&askMode, "mode", "", "generation mode: sql, ddl, crud")
	askCmd.Flags().StringVar(&askDatabase, "db", "", "database to target")
	askCmd.Flags().StringVar(&askLLM, "llm", "", "LLM provider to use")
	askCmd.Flags().BoolVar(&askExecute, "execute", false, "run the generated SQL")
	askCmd.Flags().BoolVarP(&askYes, "yes", "y", false, "skip destructive confirmation")
	askCmd.Flags().BoolVar(&askCSV, "csv", false, "export rows to CSV")
	askCmd.Flags().BoolVar(&askMarkdown, "markdown", false, "print rows as a markdown table")
	askCmd.Flags().BoolVarP(&askVerbose, "verbose", "v", false, "print the assembled prompt")
	rootCmd.AddCommand(askCmd)
}
