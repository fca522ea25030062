// Command spotify-social runs the Spotify social companion CLI and API.
package main

import (
	"os"

	"github.com/justestif/go-spotify-social/internal/cli"
)

func main() {
	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
