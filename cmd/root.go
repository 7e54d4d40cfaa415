// Package cmd implements the leitner command line.
package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/leitner/internal/app"
	"github.com/example/leitner/internal/config"
	"github.com/example/leitner/internal/store"
	"github.com/example/leitner/pkg/models"
)

// rootOptions holds the global flags
type rootOptions struct {
	configPath string
	dbPath     string

	load func(path string) (*config.Config, error)
}

// NewRootCmd builds the leitner command tree
func NewRootCmd() *cobra.Command {
	return newRootCmd(&rootOptions{load: config.Load})
}

func newRootCmd(opts *rootOptions) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "leitner",
		Short:         "Flashcard trainer using the Leitner box system",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default ~/.leitner/config.toml)")
	rootCmd.PersistentFlags().StringVar(&opts.dbPath, "db", "", "database path or DSN (overrides the config)")

	rootCmd.AddCommand(cardCmd(opts))
	rootCmd.AddCommand(categoryCmd(opts))
	rootCmd.AddCommand(studyCmd(opts))
	rootCmd.AddCommand(dueCmd(opts))
	rootCmd.AddCommand(statsCmd(opts))
	rootCmd.AddCommand(historyCmd(opts))
	rootCmd.AddCommand(exportCmd(opts))
	rootCmd.AddCommand(importCmd(opts))
	rootCmd.AddCommand(importSheetCmd(opts))
	rootCmd.AddCommand(botCmd(opts))

	return rootCmd
}

// Execute runs the command line
func Execute() error {
	return NewRootCmd().Execute()
}

func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := o.load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.dbPath != "" {
		cfg.Database.DSN = o.dbPath
	}
	return cfg, nil
}

// getApp loads the configuration, opens the database and loads the store
func (o *rootOptions) getApp(ctx context.Context) (*app.App, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	return app.Open(ctx, cfg)
}

// resolveCard finds a card by full id or by an unambiguous id prefix
func resolveCard(st *store.Store, id string) (*models.Card, error) {
	if card, ok := st.Card(id); ok {
		return card, nil
	}

	var found *models.Card
	for _, c := range st.Cards() {
		if strings.HasPrefix(c.ID, id) {
			if found != nil {
				return nil, fmt.Errorf("id prefix %q is ambiguous", id)
			}
			found = c
		}
	}
	if found == nil {
		return nil, fmt.Errorf("card %s: %w", id, store.ErrNotFound)
	}
	return found, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len([]rune(s)) <= max {
		return s
	}
	return string([]rune(s)[:max-3]) + "..."
}
