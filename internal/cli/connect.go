package cli

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/justestif/go-spotify-social/internal/auth"
)

// NewConnectCmd creates the connect command.
func NewConnectCmd(opts *rootOptions) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Connect a Spotify account",
		Long: `Start the PKCE authorization flow. Open the printed URL in a browser;
the redirect is received on the configured redirect URI.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.build(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			cred, err := a.Tokens.ConnectLoopback(cmd.Context(), timeout, func(url string) {
				fmt.Fprintln(out, "Open this URL in your browser to connect Spotify:")
				fmt.Fprintf(out, "\n  %s\n\n", color.BlueString(url))
				fmt.Fprintln(out, "Waiting for authorization...")
			})
			if err != nil {
				fmt.Fprintf(out, "%s %s\n", color.RedString("✗"), "Connection failed")
				return err
			}

			fmt.Fprintf(out, "%s Connected. Access token valid until %s\n",
				color.GreenString("✓"), cred.ExpiresAt.Local().Format(time.Kitchen))
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", auth.DefaultCallbackTimeout, "How long to wait for the browser callback")

	return cmd
}
