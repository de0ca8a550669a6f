package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/varoOP/kinobot/internal/app"
	"github.com/varoOP/kinobot/internal/format"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print view counters as YAML",
	Long: `Print view counters from movie_bot.db as YAML.

Without --user the counters of every user are printed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, _ := cmd.Flags().GetInt64("user")
		limit, _ := cmd.Flags().GetInt("limit")

		application, err := app.NewApp(viper.GetViper())
		if err != nil {
			return fmt.Errorf("failed to initialize application: %w", err)
		}
		defer application.Close()

		stats, err := application.Stats(cmd.Context(), userID, limit)
		if err != nil {
			return fmt.Errorf("failed to read stats: %w", err)
		}

		return format.WriteYAML(cmd.OutOrStdout(), stats)
	},
}

func init() {
	statsCmd.Flags().Int64("user", 0, "Telegram user id")
	statsCmd.Flags().Int("limit", 0, "maximum number of rows, 0 for the default")
	rootCmd.AddCommand(statsCmd)
}
