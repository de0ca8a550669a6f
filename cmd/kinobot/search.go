package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/varoOP/kinobot/internal/app"
	"github.com/varoOP/kinobot/internal/format"
)

var searchCmd = &cobra.Command{
	Use:   "search <title...>",
	Short: "Look a title up and print the result as YAML",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := app.NewApp(viper.GetViper())
		if err != nil {
			return fmt.Errorf("failed to initialize application: %w", err)
		}
		defer application.Close()

		rec, err := application.Search(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}

		return format.WriteYAML(cmd.OutOrStdout(), rec)
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
}
