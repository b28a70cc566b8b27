// Package cli implements the quiz terminal client: playing a timed quiz,
// viewing leaderboards, and curating AI-generated questions as an admin.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	serverURL string
	statePath string
)

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	envServer := os.Getenv("QUIZ_SERVER")
	if envServer == "" {
		envServer = "http://127.0.0.1:8080"
	}
	envState := os.Getenv("QUIZ_STATE_FILE")
	if envState == "" {
		envState = ".quiz-state.json"
	}

	cmd := &cobra.Command{
		Use:   "quiz-cli",
		Short: "Terminal client for the weekly trivia quiz",
	}

	cmd.PersistentFlags().StringVar(&serverURL, "server", envServer, "quiz server base URL")
	cmd.PersistentFlags().StringVar(&statePath, "state", envState, "path to the local state file")
	cmd.AddCommand(newPlayCmd())
	cmd.AddCommand(newLeaderboardCmd())
	cmd.AddCommand(newCurateCmd())
	return cmd
}
