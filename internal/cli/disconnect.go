package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// NewDisconnectCmd creates the disconnect command.
func NewDisconnectCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "disconnect",
		Short: "Forget the stored Spotify credential",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.build(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Tokens.Disconnect(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Disconnected\n", color.GreenString("✓"))
			return nil
		},
	}

	return cmd
}
