package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/leitner/internal/spaced_repetition"
	"github.com/example/leitner/internal/store"
)

func dueCmd(opts *rootOptions) *cobra.Command {
	var showCards bool

	cmd := &cobra.Command{
		Use:   "due [category]",
		Short: "Show how many cards are due for review",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.getApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			now := a.Now()

			if len(args) == 1 || showCards {
				category := ""
				if len(args) == 1 {
					category = args[0]
				}
				cards := a.Store.DueCards(category, now)
				if len(cards) == 0 {
					fmt.Fprintln(out, "Nothing is due.")
					return nil
				}
				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tCATEGORY\tLEVEL\tQUESTION")
				for _, c := range cards {
					fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", shortID(c.ID), c.Category, c.Level, truncate(c.Question, 50))
				}
				return w.Flush()
			}

			due := a.Store.DueCounts(now)
			if len(due) == 0 {
				fmt.Fprintln(out, "Nothing is due.")
				return nil
			}
			total := 0
			for _, d := range due {
				fmt.Fprintf(out, "%-20s %d\n", d.Category, d.Count)
				total += d.Count
			}
			fmt.Fprintf(out, "%-20s %d\n", "total", total)
			return nil
		},
	}

	cmd.Flags().BoolVar(&showCards, "cards", false, "list the due cards instead of counts")
	return cmd
}

func statsCmd(opts *rootOptions) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show progress per box and per category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.getApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			levels := a.Store.LevelStats()
			fmt.Fprintf(out, "Cards: %d\n", levels.Total())
			for level := spaced_repetition.MinLevel; level <= spaced_repetition.MaxLevel; level++ {
				fmt.Fprintf(out, "  level %d (every %2d days): %d\n",
					level, a.Store.Engine().IntervalDays(level), levels[level])
			}

			fmt.Fprintln(out)
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "CATEGORY\tCARDS\tAVG LEVEL\tPROGRESS")
			for _, stat := range a.Store.CategoryStats() {
				fmt.Fprintf(w, "%s\t%d\t%.1f\t%d%%\n", stat.Category, stat.Total, stat.AvgLevel, stat.Progress)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			now := a.Now()
			period, err := a.Sessions.StatsByPeriod(cmd.Context(), now.AddDate(0, 0, -days), now)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "\nLast %d days: %d sessions, %d answers, %d correct, average %.0f%%\n",
				days, period.Sessions, period.Answers, period.Correct, period.AvgSuccessRate)

			if saved, ok, err := a.Blobs.UpdatedAt(cmd.Context(), store.KeyFlashcards); err == nil && ok {
				fmt.Fprintf(out, "Last saved: %s\n", saved.Local().Format(time.RFC1123))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 7, "period for the session summary")
	return cmd
}

func historyCmd(opts *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past study sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.getApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			sessions, err := a.Sessions.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(sessions) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No sessions yet.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "DATE\tCATEGORY\tLEVEL\tCORRECT\tWRONG\tRATE")
			for _, s := range sessions {
				level := "mixed"
				if s.Level > 0 {
					level = fmt.Sprintf("%d", s.Level)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d%%\n",
					s.Date.Local().Format("2006-01-02 15:04"), s.Category, level, s.Correct, s.Incorrect, s.SuccessRate)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of sessions to show")
	return cmd
}
