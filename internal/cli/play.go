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

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/united89/quiz-backend/internal/client"
	"github.com/united89/quiz-backend/internal/session"
)

func newPlayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "play",
		Short: "Register and play this week's quiz",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd.Context(), os.Stdin, os.Stdout)
		},
	}
}

func runPlay(ctx context.Context, in io.Reader, out io.Writer) error {
	api := client.New(serverURL, nil)
	store, err := session.NewFileStore(statePath)
	if err != nil {
		return err
	}
	reader := bufio.NewReader(in)

	userID, err := ensureRegistered(ctx, api, store, reader, out)
	if err != nil {
		return err
	}

	scoreCh := make(chan int, 1)
	ctrl := session.NewController(api, store, userID, session.Options{
		OnWarning: func() { fmt.Fprintln(out, "\n*** 10 seconds remaining! ***") },
		OnScore:   func(score int) { scoreCh <- score },
	}, zerolog.Nop())

	if err := ctrl.Start(ctx); err != nil {
		switch {
		case errors.Is(err, session.ErrAlreadyPlayed):
			fmt.Fprintln(out, "You have already submitted this week's quiz.")
			return nil
		case errors.Is(err, session.ErrQuizInactive):
			fmt.Fprintln(out, "The quiz is not open right now. Check back later.")
			return nil
		}
		return err
	}

	fmt.Fprintf(out, "\nRules: %d questions, %d seconds on the clock. Answers lock on submit.\n",
		ctrl.Questions(), ctrl.Remaining())

	// Quitting mid-quiz submits partial answers, mirroring a confirmed
	// back-navigation.
	ctrl.ArmGuard(func() bool {
		return promptYesNo(reader, out, "Leave the quiz? Your current answers will be submitted")
	})

	tickCtx, stopTicks := context.WithCancel(ctx)
	defer stopTicks()
	go ctrl.RunCountdown(tickCtx)

	for {
		q, ok := ctrl.Current()
		if !ok || ctrl.Submitted() {
			break
		}

		fmt.Fprintf(out, "\nQ%d (%ds left): %s\n", ctrl.Index()+1, ctrl.Remaining(), q.Text)
		for i, opt := range q.Options {
			fmt.Fprintf(out, "  %d. %s\n", i+1, opt)
		}
		fmt.Fprint(out, "Answer (1-4, q to leave): ")

		line, readErr := reader.ReadString('\n')
		if readErr != nil {
			break
		}
		line = strings.TrimSpace(line)

		if strings.EqualFold(line, "q") {
			if ctrl.RequestLeave() {
				break
			}
			continue
		}

		n, convErr := strconv.Atoi(line)
		if convErr != nil || n < 1 || n > len(q.Options) {
			fmt.Fprintln(out, "Pick a number between 1 and 4.")
			continue
		}

		ctrl.SelectOption(q.ID, q.Options[n-1])
		finished, advErr := ctrl.Advance(ctx)
		if advErr != nil {
			fmt.Fprintf(out, "Submission failed: %v\nPress enter to retry.\n", advErr)
			_, _ = reader.ReadString('\n')
			if _, retryErr := ctrl.Retry(ctx); retryErr != nil {
				return retryErr
			}
		}
		if finished {
			break
		}
	}

	select {
	case score := <-scoreCh:
		fmt.Fprintf(out, "\nSubmitted! Your score: %d/%d\n", score, ctrl.Questions())
	default:
		if ctrl.Submitted() {
			fmt.Fprintln(out, "\nSubmitted!")
		}
	}
	return nil
}

func ensureRegistered(ctx context.Context, api *client.Client, store session.Store, reader *bufio.Reader, out io.Writer) (string, error) {
	if id, ok := store.Get(session.KeyUserID); ok && id != "" {
		return id, nil
	}

	fmt.Fprint(out, "Your name: ")
	name, _ := reader.ReadString('\n')
	name = strings.TrimSpace(name)

	fmt.Fprint(out, "Phone (10 digits): ")
	phone, _ := reader.ReadString('\n')
	phone = strings.TrimSpace(phone)

	res, err := api.Register(ctx, name, phone)
	if err != nil {
		return "", err
	}

	if err := store.Set(session.KeyUserID, res.UserID); err != nil {
		return "", err
	}
	if res.HasSubmitted {
		_ = store.Set(session.KeyHasSubmitted, "true")
	}
	if res.Resuming {
		fmt.Fprintln(out, "Welcome back! Resuming your week.")
	}
	return res.UserID, nil
}

func promptYesNo(reader *bufio.Reader, out io.Writer, prompt string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", prompt)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(line), "y")
}
