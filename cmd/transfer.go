package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/example/leitner/internal/backup"
	"github.com/example/leitner/internal/excel"
)

func exportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Write all cards, categories and sessions to a JSON file (- for stdout)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.getApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			now := a.Now()
			path := backup.FileName(now)
			if len(args) == 1 {
				path = args[0]
			}

			if path == "-" {
				return backup.Export(cmd.OutOrStdout(), a.Store, now)
			}

			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("create export file: %w", err)
			}
			if err := backup.Export(f, a.Store, now); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close export file: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d cards to %s\n", len(a.Store.Cards()), path)
			return nil
		},
	}
}

func importCmd(opts *rootOptions) *cobra.Command {
	var replace bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a JSON export, merging by default",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open import file: %w", err)
			}
			defer f.Close()

			a, err := opts.getApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			policy := backup.Merge
			if replace {
				policy = backup.Replace
			}
			result, err := backup.Import(f, a.Store, policy, a.Now())
			if err != nil {
				return err
			}
			if err := a.Save(cmd.Context()); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Import (%s): %d cards added, %d skipped, %d categories added, %d sessions added\n",
				result.Policy, result.CardsAdded, result.CardsSkipped, result.CategoriesAdded, result.SessionsAdded)
			return nil
		},
	}

	cmd.Flags().BoolVar(&replace, "replace", false, "replace everything instead of merging")
	return cmd
}

func importSheetCmd(opts *rootOptions) *cobra.Command {
	config := excel.DefaultImportConfig()
	var comma string

	cmd := &cobra.Command{
		Use:   "import-sheet <file>",
		Short: "Import cards from an .xlsx or .csv file",
		Long: "Columns default to A=question, B=answer, C=category, D=topic, E=level.\n" +
			"In CSV files a row with only its first field set starts a new category.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config.FilePath = args[0]
			if comma != "" {
				config.Comma = []rune(comma)[0]
			}

			a, err := opts.getApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := excel.ImportCards(a.Store, config, a.Now())
			if err != nil {
				return err
			}
			if err := a.Save(cmd.Context()); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %d rows, %d created, %d updated, %d skipped, %d new categories\n",
				filepath.Base(config.FilePath), result.TotalProcessed, result.Created, result.Updated,
				result.Skipped, result.CategoriesCreated)
			for _, msg := range result.Errors {
				fmt.Fprintf(out, "  %s\n", msg)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&config.SheetName, "sheet", "", "sheet name (default: first sheet)")
	cmd.Flags().IntVar(&config.StartRow, "start-row", config.StartRow, "first row to import (1-based)")
	cmd.Flags().StringVarP(&config.DefaultCategory, "category", "c", "", "category for rows without one")
	cmd.Flags().StringVar(&comma, "comma", "", "CSV field separator (default ,)")
	cmd.Flags().StringVar(&config.QuestionColumn, "question-col", config.QuestionColumn, "question column")
	cmd.Flags().StringVar(&config.AnswerColumn, "answer-col", config.AnswerColumn, "answer column")
	cmd.Flags().StringVar(&config.CategoryColumn, "category-col", config.CategoryColumn, "category column")
	cmd.Flags().StringVar(&config.TopicColumn, "topic-col", config.TopicColumn, "topic column")
	cmd.Flags().StringVar(&config.LevelColumn, "level-col", config.LevelColumn, "level column")
	return cmd
}
