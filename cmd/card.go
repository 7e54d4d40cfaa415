package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/leitner/internal/spaced_repetition"
)

func cardCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "card",
		Short: "Manage flashcards",
	}
	cmd.AddCommand(cardAddCmd(opts))
	cmd.AddCommand(cardListCmd(opts))
	cmd.AddCommand(cardEditCmd(opts))
	cmd.AddCommand(cardRemoveCmd(opts))
	return cmd
}

func cardAddCmd(opts *rootOptions) *cobra.Command {
	var category, topic string

	cmd := &cobra.Command{
		Use:   "add <question> <answer>",
		Short: "Add a new card",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.getApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			added, err := a.Store.AddCategory(category)
			if err != nil {
				return err
			}
			if added {
				fmt.Fprintf(out, "Created category %s\n", category)
			}

			card, err := a.Store.AddCard(args[0], args[1], category, topic, a.Now())
			if err != nil {
				return err
			}
			if err := a.Save(cmd.Context()); err != nil {
				return err
			}

			fmt.Fprintf(out, "Added card %s to %s\n", shortID(card.ID), card.Category)
			return nil
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "category of the card")
	cmd.Flags().StringVar(&topic, "topic", "", "optional topic")
	cmd.MarkFlagRequired("category")
	return cmd
}

func cardListCmd(opts *rootOptions) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.getApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			cards := a.Store.Cards()
			if category != "" {
				cards = a.Store.CardsInCategory(category)
			}
			if len(cards) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No cards.")
				return nil
			}

			now := a.Now()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCATEGORY\tLEVEL\tNEXT REVIEW\tQUESTION\tANSWER")
			for _, c := range cards {
				level := fmt.Sprintf("%d", c.Level)
				if spaced_repetition.IsMastered(c) {
					level += " ★"
				}
				next := c.NextReview.Local().Format("2006-01-02")
				if a.Store.Engine().IsDue(c, now) {
					next = "due"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					shortID(c.ID), c.Category, level, next, truncate(c.Question, 40), truncate(c.Answer, 30))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "only list this category")
	return cmd
}

func cardEditCmd(opts *rootOptions) *cobra.Command {
	var question, answer string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change the question or answer of a card",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if question == "" && answer == "" {
				return fmt.Errorf("nothing to change: pass --question or --answer")
			}

			a, err := opts.getApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			card, err := resolveCard(a.Store, args[0])
			if err != nil {
				return err
			}
			if question == "" {
				question = card.Question
			}
			if answer == "" {
				answer = card.Answer
			}
			if err := a.Store.EditCard(card.ID, question, answer); err != nil {
				return err
			}
			if err := a.Save(cmd.Context()); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Updated card %s\n", shortID(card.ID))
			return nil
		},
	}

	cmd.Flags().StringVarP(&question, "question", "q", "", "new question")
	cmd.Flags().StringVarP(&answer, "answer", "a", "", "new answer")
	return cmd
}

func cardRemoveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a card",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.getApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			card, err := resolveCard(a.Store, args[0])
			if err != nil {
				return err
			}
			if err := a.Store.RemoveCard(card.ID); err != nil {
				return err
			}
			if err := a.Save(cmd.Context()); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Removed card %s: %s\n", shortID(card.ID), truncate(card.Question, 60))
			return nil
		},
	}
}
