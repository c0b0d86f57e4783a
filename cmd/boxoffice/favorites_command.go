package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newFavoritesCommand(ctx *commandContext) *cobra.Command {
	favoritesCmd := &cobra.Command{
		Use:   "favorites",
		Short: "Manage favorite theaters",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List favorite theaters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			box, err := ctx.ensureModel()
			if err != nil {
				return err
			}

			favs := box.FavoriteTheaters()
			out := cmd.OutOrStdout()
			if len(favs) == 0 {
				fmt.Fprintln(out, "No favorite theaters")
				return nil
			}

			rows := make([][]string, 0, len(favs))
			for _, f := range favs {
				rows = append(rows, []string{f.ID, f.Name, f.PostalCode})
			}
			fmt.Fprintln(out, renderTable([]string{"ID", "Name", "Postal code"}, rows, nil))
			return nil
		},
	}

	addCmd := &cobra.Command{
		Use:   "add <theater-id>",
		Short: "Add a theater from the current listings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			box, err := ctx.ensureModel()
			if err != nil {
				return err
			}
			if err := syncListings(cmd.Context(), box, false); err != nil {
				return err
			}

			t, ok := box.Theater(args[0])
			if !ok {
				return fmt.Errorf("theater %q is not in the current listings", args[0])
			}
			box.AddFavoriteTheater(t)
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", t.Name)
			return nil
		},
	}

	removeCmd := &cobra.Command{
		Use:   "remove <theater-id>",
		Short: "Remove a favorite theater",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			box, err := ctx.ensureModel()
			if err != nil {
				return err
			}
			if !box.IsFavoriteTheater(args[0]) {
				return fmt.Errorf("theater %q is not a favorite", args[0])
			}
			box.RemoveFavoriteTheater(args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
			return nil
		},
	}

	favoritesCmd.AddCommand(listCmd, addCmd, removeCmd)
	return favoritesCmd
}
