package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func categoryCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "category",
		Short: "Manage categories",
	}
	cmd.AddCommand(categoryAddCmd(opts))
	cmd.AddCommand(categoryListCmd(opts))
	cmd.AddCommand(categoryRemoveCmd(opts))
	return cmd
}

func categoryAddCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <name>",
		Short: "Add a category",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.Join(args, " ")

			a, err := opts.getApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			added, err := a.Store.AddCategory(name)
			if err != nil {
				return err
			}
			if !added {
				fmt.Fprintf(cmd.OutOrStdout(), "Category %s already exists\n", name)
				return nil
			}
			if err := a.Save(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added category %s\n", name)
			return nil
		},
	}
}

func categoryListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List categories with their progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.getApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "CATEGORY\tCARDS\tAVG LEVEL\tPROGRESS")
			for _, stat := range a.Store.CategoryStats() {
				fmt.Fprintf(w, "%s\t%d\t%.1f\t%d%%\n", stat.Category, stat.Total, stat.AvgLevel, stat.Progress)
			}
			return w.Flush()
		},
	}
}

func categoryRemoveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <name>",
		Aliases: []string{"rm"},
		Short:   "Remove a category from the list (its cards are kept)",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.Join(args, " ")

			a, err := opts.getApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if !a.Store.RemoveCategory(name) {
				return fmt.Errorf("category %s does not exist", name)
			}
			if err := a.Save(cmd.Context()); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Removed category %s\n", name)
			if n := len(a.Store.CardsInCategory(name)); n > 0 {
				fmt.Fprintf(out, "%d cards still reference it\n", n)
			}
			return nil
		},
	}
}
