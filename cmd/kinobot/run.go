package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/varoOP/kinobot/internal/app"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Telegram bot",
	Long: `Run connects to Telegram with the configured token and answers
messages until interrupted.

The token is read from telegram_token in the config file, KINOBOT_TELEGRAM_TOKEN
or TELEGRAM_BOT_TOKEN. Without serper or kinopoisk keys the bot still runs,
the matching lookups are skipped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		// Initialize application
		application, err := app.NewApp(viper.GetViper())
		if err != nil {
			return fmt.Errorf("failed to initialize application: %w", err)
		}
		defer application.Close()

		if err := application.Run(ctx); err != nil {
			return fmt.Errorf("run failed: %w", err)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
