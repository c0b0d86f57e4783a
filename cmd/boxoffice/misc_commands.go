package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmcdole/boxoffice/internal/adapter"
	"github.com/mmcdole/boxoffice/internal/boxoffice"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print the version",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "boxoffice %s\n", boxoffice.Version())
		},
	}
}

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the local cache",
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete cached listings, artwork and saved settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := adapter.ClearCache(cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s\n", cfg.Cache.Dir)
			return nil
		},
	}

	cacheCmd.AddCommand(clearCmd)
	return cacheCmd
}
