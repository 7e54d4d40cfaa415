package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/example/leitner/internal/app"
	"github.com/example/leitner/internal/bot"
	"github.com/example/leitner/internal/scheduler"
)

func botCmd(opts *rootOptions) *cobra.Command {
	var remindNow bool

	cmd := &cobra.Command{
		Use:   "bot",
		Short: "Run the Telegram bot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.RequireTelegram(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := app.Open(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			b, err := bot.New(cfg.Telegram, a)
			if err != nil {
				return err
			}

			loc, err := cfg.Location()
			if err != nil {
				return err
			}
			reminders := scheduler.New(b, b, cfg.Reminder.At, loc)

			if remindNow {
				sent, err := reminders.CheckNow(ctx)
				if err != nil {
					return err
				}
				if !sent {
					fmt.Fprintln(cmd.OutOrStdout(), "Nothing is due, no reminder sent.")
				}
				return nil
			}

			if cfg.Reminder.Enabled {
				if err := reminders.Start(); err != nil {
					return err
				}
				defer reminders.Stop()
			}

			err = b.Start(ctx)
			if errors.Is(err, context.Canceled) {
				log.Println("Bot stopped")
				return nil
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&remindNow, "remind-now", false, "send the due-card reminder once and exit")
	return cmd
}
