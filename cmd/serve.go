// serve.go runs the HTTP API.
package cmd

import (
	"net/http"

	"github.com/askdb/askdb/applog"
	"github.com/askdb/askdb/server"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the JSON HTTP API",
	Long: `Exposes sessions, queries, and training over HTTP:

  POST /api/sessions                  create a session
  GET  /api/sessions/{id}             session state
  POST /api/sessions/{id}/settings    update session settings
  POST /api/sessions/{id}/query       ask a question
  POST /api/train                     introspect a schema
  GET  /api/status                    configuration and cache overview`,
	RunE: func(cmd *cobra.Command, args []string) error {
		agent, _, err := setup()
		if err != nil {
			return err
		}
		defer agent.Close()

		srv := server.New(agent)
		pterm.Info.Println("listening on " + serveAddr)
		applog.Event("SERVE", "addr=%s", serveAddr)
		return http.ListenAndServe(serveAddr, srv.Handler())
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "127.0.0.1:8080", "listen address")
	rootCmd.AddCommand(serveCmd)
}
