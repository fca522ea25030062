package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/justestif/go-spotify-social/internal/auth"
)

// NewStatusCmd creates the status command.
func NewStatusCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the Spotify connection state",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.build(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			printStatus(cmd.OutOrStdout(), a.Tokens.Status(cmd.Context()))
			return nil
		},
	}

	return cmd
}

func printStatus(w io.Writer, state auth.ConnectionState) {
	switch state {
	case auth.Connected:
		fmt.Fprintf(w, "%s Connected\n", color.GreenString("✓"))
	case auth.NeedsRefresh:
		fmt.Fprintf(w, "%s Token expired, it will be refreshed on next use\n", color.YellowString("!"))
	default:
		fmt.Fprintf(w, "%s Not connected. Run: spotify-social connect\n", color.RedString("✗"))
	}
}
