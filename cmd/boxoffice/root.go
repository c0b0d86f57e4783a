package main

import (
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mmcdole/boxoffice/internal/adapter"
	"github.com/mmcdole/boxoffice/internal/tui"
)

func newRootCommand() (*cobra.Command, *commandContext) {
	var configFlag string
	var metricsFlag string

	ctx := newCommandContext(&configFlag, &metricsFlag)

	rootCmd := &cobra.Command{
		Use:           "boxoffice",
		Short:         "Movie showtimes near you",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if !term.IsTerminal(int(os.Stdout.Fd())) {
				return runListings(cmd, ctx, listingsOptions{})
			}
			return runTUI(ctx)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&metricsFlag, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9464)")

	rootCmd.AddCommand(newListingsCommand(ctx))
	rootCmd.AddCommand(newTheatersCommand(ctx))
	rootCmd.AddCommand(newFavoritesCommand(ctx))
	rootCmd.AddCommand(newProviderCommand(ctx))
	rootCmd.AddCommand(newRatingsCommand(ctx))
	rootCmd.AddCommand(newLocationCommand(ctx))
	rootCmd.AddCommand(newCacheCommand(ctx))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd, ctx
}

func runTUI(ctx *commandContext) error {
	box, err := ctx.ensureModel()
	if err != nil {
		return err
	}

	model := tui.NewModel(box, adapter.NewLauncher(ctx.config.Player, ctx.logger))
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen())
	ctx.logger.Info("starting TUI")
	if _, err := p.Run(); err != nil {
		ctx.logger.Error("TUI error", "error", err)
		return err
	}
	ctx.logger.Info("shutting down")
	return nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
