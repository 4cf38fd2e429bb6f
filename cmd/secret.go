// secret.go manages API keys in the OS keyring so they stay out of
// askdb.yaml. Config entries reference them as keyring:<item>.
package cmd

import (
	"github.com/askdb/askdb/secrets"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var secretCmd = &cobra.Command{
	Use:   "secret",
	Short: "Manage API keys in the OS keyring",
}

var secretSetCmd = &cobra.Command{
	Use:   "set <item>",
	Short: "Store a secret (prompted, not echoed)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := pterm.DefaultInteractiveTextInput.
			WithMask("*").
			Show("value for " + args[0])
		if err != nil {
			return err
		}
		if err := secrets.Store(args[0], value); err != nil {
			return err
		}
		pterm.Success.Printf("stored %s; reference it as keyring:%s in askdb.yaml\n", args[0], args[0])
		return nil
	},
}

var secretDeleteCmd = &cobra.Command{
	Use:   "delete <item>",
	Short: "Remove a secret",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := secrets.Delete(args[0]); err != nil {
			return err
		}
		pterm.Success.Printf("deleted %s\n", args[0])
		return nil
	},
}

func init() {
	secretCmd.AddCommand(secretSetCmd, secretDeleteCmd)
	rootCmd.AddCommand(secretCmd)
}
