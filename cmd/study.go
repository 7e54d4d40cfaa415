package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/leitner/internal/session"
)

func studyCmd(opts *rootOptions) *cobra.Command {
	var level int

	cmd := &cobra.Command{
		Use:   "study <category>",
		Short: "Study a category in the terminal",
		Long: "Without --level the deck holds every card of the category, lower boxes repeated more often.\n" +
			"With --level only the cards of that box are drilled.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			category := strings.Join(args, " ")

			a, err := opts.getApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			sampler := session.NewSampler()
			var deck *session.Deck
			if level == 0 {
				deck = sampler.BuildWeightedDeck(category, a.Store.Cards())
			} else {
				deck, err = sampler.BuildLevelDeck(category, a.Store.Cards(), level)
				if err != nil {
					return err
				}
			}

			runner := a.NewRunner()
			if err := runner.Start(deck); err != nil {
				return fmt.Errorf("%s: %w", category, err)
			}
			return runStudy(runner, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVarP(&level, "level", "l", 0, "only study cards in this box (1-5)")
	return cmd
}

// runStudy drives a started runner from line-based input until the deck
// completes, the learner quits or input ends
func runStudy(runner *session.Runner, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	readLine := func() (string, bool) {
		if !scanner.Scan() {
			return "", false
		}
		return strings.TrimSpace(scanner.Text()), true
	}

	for runner.State() == session.Running {
		card, err := runner.Current()
		if err != nil {
			return err
		}
		pos, total := runner.Progress()

		fmt.Fprintf(out, "\n[%d/%d] %s · level %d\n", pos+1, total, card.Category, card.Level)
		fmt.Fprintf(out, "Q: %s\n", card.Question)
		fmt.Fprint(out, "(Enter to reveal, q to quit) ")
		line, ok := readLine()
		if !ok || strings.EqualFold(line, "q") {
			return quitStudy(runner, out)
		}
		fmt.Fprintf(out, "A: %s\n", card.Answer)

		var correct bool
		for {
			fmt.Fprint(out, "Correct? [y/n/q] ")
			line, ok = readLine()
			if !ok {
				return quitStudy(runner, out)
			}
			switch strings.ToLower(line) {
			case "y", "yes", "j", "ja":
				correct = true
			case "n", "no", "nein":
				correct = false
			case "q", "quit":
				return quitStudy(runner, out)
			default:
				continue
			}
			break
		}

		result, err := runner.Answer(correct)
		if err != nil {
			return err
		}
		if result.Completed {
			printSummary(out, result.Summary)
			return nil
		}
		runner.Ready()
	}
	return nil
}

func quitStudy(runner *session.Runner, out io.Writer) error {
	correct, incorrect := runner.Counts()
	runner.Reset()
	fmt.Fprintf(out, "\nSession stopped after %d answers. Reviews so far are saved.\n", correct+incorrect)
	return nil
}

func printSummary(out io.Writer, s *session.Summary) {
	fmt.Fprintf(out, "\n%s finished: %d correct, %d wrong (%d%%)\n", s.Category, s.Correct, s.Incorrect, s.SuccessRate)
	if s.Level != nil {
		fmt.Fprintln(out, s.Level.Headline())
	}
	if len(s.Missed) > 0 {
		fmt.Fprintln(out, "Review these again:")
		seen := make(map[string]bool)
		for _, c := range s.Missed {
			if seen[c.ID] {
				continue
			}
			seen[c.ID] = true
			fmt.Fprintf(out, "  %s -> %s\n", c.Question, c.Answer)
		}
	}
}
