package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/mmcdole/boxoffice/internal/domain"
)

const lookupTimeout = 30 * time.Second

func newProviderCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "provider [index]",
		Short: "Show or select the listings provider",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			box, err := ctx.ensureModel()
			if err != nil {
				return err
			}

			if len(args) == 1 {
				i, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid index %q", args[0])
				}
				if err := box.SetDataProviderIndex(i); err != nil {
					return err
				}
			}

			names := make([]string, 0, len(box.DataProviders()))
			for _, p := range box.DataProviders() {
				names = append(names, p.Name())
			}
			printChoices(cmd.OutOrStdout(), names, box.DataProviderIndex())
			return nil
		},
	}
}

func newRatingsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "ratings [index]",
		Short: "Show or select the ratings provider",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			box, err := ctx.ensureModel()
			if err != nil {
				return err
			}

			if len(args) == 1 {
				i, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid index %q", args[0])
				}
				if err := box.SetRatingsProviderIndex(i); err != nil {
					return err
				}
			}

			printChoices(cmd.OutOrStdout(), box.RatingsProviders(), box.RatingsProviderIndex())
			return nil
		},
	}
}

func printChoices(out io.Writer, names []string, current int) {
	for i, name := range names {
		marker := " "
		if i == current {
			marker = "*"
		}
		fmt.Fprintf(out, "%s %d  %s\n", marker, i, name)
	}
}

func newLocationCommand(ctx *commandContext) *cobra.Command {
	var radius int

	cmd := &cobra.Command{
		Use:   "location [postal-code]",
		Short: "Show or set the search location",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			box, err := ctx.ensureModel()
			if err != nil {
				return err
			}

			if len(args) == 1 {
				box.SetPostalCode(args[0])
			}
			if cmd.Flags().Changed("radius") {
				box.SetSearchRadius(radius)
			}

			out := cmd.OutOrStdout()
			postal := box.PostalCode()
			if postal == "" {
				fmt.Fprintln(out, "No location set")
				return nil
			}
			fmt.Fprintf(out, "Postal code: %s (radius %d mi)\n", postal, box.SearchRadius())

			parent := cmd.Context()
			if parent == nil {
				parent = context.Background()
			}
			lookupCtx, cancel := context.WithTimeout(parent, lookupTimeout)
			defer cancel()

			loc, err := box.LookupLocation(lookupCtx, postal)
			switch {
			case errors.Is(err, domain.ErrLocationNotFound):
				fmt.Fprintln(out, box.NoLocationInformationFound())
			case err != nil:
				return err
			default:
				fmt.Fprintf(out, "Location: %s (%.4f, %.4f)\n", loc.FullDisplayString(), loc.Latitude, loc.Longitude)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&radius, "radius", domain.DefaultSearchRadius, "Search radius in miles")
	return cmd
}
