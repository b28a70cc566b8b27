package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/united89/quiz-backend/internal/client"
	"github.com/united89/quiz-backend/internal/curator"
	"golang.org/x/term"
)

func newCurateCmd() *cobra.Command {
	var weekID string

	cmd := &cobra.Command{
		Use:   "curate",
		Short: "Generate AI question candidates and commit a batch of 10 (admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCurate(cmd.Context(), weekID, os.Stdin, os.Stdout)
		},
	}

	cmd.Flags().StringVar(&weekID, "week", "", "week id to curate for; defaults to the current week")
	return cmd
}

func runCurate(ctx context.Context, weekID string, in io.Reader, out io.Writer) error {
	api := client.New(serverURL, nil)
	reader := bufio.NewReader(in)

	if err := adminLogin(ctx, api, reader, out); err != nil {
		return err
	}

	cur := curator.New(api, zerolog.Nop())

	fmt.Fprintln(out, "Generating candidates...")
	if err := cur.Generate(ctx, weekID); err != nil {
		if errors.Is(err, curator.ErrPastWeekLocked) {
			fmt.Fprintln(out, "That week is closed; candidates can only be generated for the current week.")
			return nil
		}
		return err
	}

	printCandidates(out, cur)
	fmt.Fprintf(out, "\nSelect exactly %d candidates, then commit.\n", curator.BatchSize)
	fmt.Fprintln(out, "Commands: s <n> toggle select, e <n> edit, l list, g regenerate, c commit, q quit")

	for {
		fmt.Fprintf(out, "[%d/%d selected] > ", cur.SelectedCount(), curator.BatchSize)
		line, err := reader.ReadString('\n')
		if err != nil {
			return nil
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "s":
			if len(fields) < 2 {
				fmt.Fprintln(out, "usage: s <n>")
				continue
			}
			n, convErr := strconv.Atoi(fields[1])
			if convErr != nil {
				fmt.Fprintln(out, "usage: s <n>")
				continue
			}
			if toggleErr := cur.ToggleSelect(n - 1); toggleErr != nil {
				fmt.Fprintln(out, toggleErr)
			}

		case "e":
			if len(fields) < 2 {
				fmt.Fprintln(out, "usage: e <n>")
				continue
			}
			n, convErr := strconv.Atoi(fields[1])
			if convErr != nil {
				fmt.Fprintln(out, "usage: e <n>")
				continue
			}
			editCandidate(cur, n-1, reader, out)

		case "l":
			printCandidates(out, cur)

		case "g":
			fmt.Fprintln(out, "Regenerating...")
			if genErr := cur.Generate(ctx, weekID); genErr != nil {
				fmt.Fprintln(out, genErr)
				continue
			}
			printCandidates(out, cur)

		case "c":
			if commitErr := cur.Commit(ctx); commitErr != nil {
				fmt.Fprintln(out, commitErr)
				continue
			}
			fmt.Fprintln(out, "Batch committed.")
			return nil

		case "q":
			cur.Discard()
			return nil

		default:
			fmt.Fprintln(out, "unknown command")
		}
	}
}

func adminLogin(ctx context.Context, api *client.Client, reader *bufio.Reader, out io.Writer) error {
	fmt.Fprint(out, "Admin email: ")
	email, _ := reader.ReadString('\n')
	email = strings.TrimSpace(email)

	fmt.Fprint(out, "Password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(out)
	if err != nil {
		return err
	}

	res, err := api.AdminLogin(ctx, email, string(bytePassword))
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Logged in as %s.\n", res.Admin.Name)
	return nil
}

func printCandidates(out io.Writer, cur *curator.Curator) {
	for i, cand := range cur.Candidates() {
		marker := " "
		if cur.IsSelected(i) {
			marker = "*"
		}
		fmt.Fprintf(out, "\n[%s] %d. %s\n", marker, i+1, cand.Text)
		for j, opt := range cand.Options {
			correct := ""
			if opt == cand.Answer {
				correct = " (correct)"
			}
			fmt.Fprintf(out, "     %c. %s%s\n", 'a'+j, opt, correct)
		}
	}
}

func editCandidate(cur *curator.Curator, i int, reader *bufio.Reader, out io.Writer) {
	fmt.Fprint(out, "Field (text, answer, option:0..option:3): ")
	field, err := reader.ReadString('\n')
	if err != nil {
		return
	}
	fmt.Fprint(out, "New value: ")
	value, err := reader.ReadString('\n')
	if err != nil {
		return
	}
	if editErr := cur.EditCandidate(i, strings.TrimSpace(field), strings.TrimSpace(value)); editErr != nil {
		fmt.Fprintln(out, editErr)
	}
}
