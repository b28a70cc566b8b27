package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/united89/quiz-backend/internal/client"
)

func newLeaderboardCmd() *cobra.Command {
	var weekID string

	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show a week's leaderboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			api := client.New(serverURL, nil)

			res, err := api.Leaderboard(cmd.Context(), weekID)
			if err != nil {
				return err
			}

			if len(res.Rankings) == 0 {
				fmt.Printf("No submissions yet for week %s.\n", res.WeekID)
				return nil
			}

			fmt.Printf("Leaderboard — %s\n\n", res.WeekID)
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "RANK\tNAME\tSCORE\tTIME")
			for _, e := range res.Rankings {
				fmt.Fprintf(w, "%d\t%s\t%d\t%ds\n", e.Rank, e.Name, e.Score, e.TimeTaken)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&weekID, "week", "", "week id (e.g. 2026-W35); defaults to the current week")
	return cmd
}
