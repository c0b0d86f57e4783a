package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mmcdole/boxoffice/internal/listings"
	"github.com/mmcdole/boxoffice/internal/search"
)

func newTheatersCommand(ctx *commandContext) *cobra.Command {
	var sortFlag, filterFlag string
	var inRange, refresh bool

	cmd := &cobra.Command{
		Use:   "theaters",
		Short: "Show theaters near the saved location",
		RunE: func(cmd *cobra.Command, args []string) error {
			box, err := ctx.ensureModel()
			if err != nil {
				return err
			}

			order := box.TheaterOrder()
			switch sortFlag {
			case "":
			case "name":
				order = listings.ByName
			case "distance":
				order = listings.ByDistance
			default:
				return fmt.Errorf("invalid --sort %q (want name or distance)", sortFlag)
			}

			if err := syncListings(cmd.Context(), box, refresh); err != nil {
				return err
			}

			theaters := box.Theaters()
			if inRange {
				theaters = box.TheatersInRange(theaters)
			}
			theaters = search.Theaters(filterFlag, box.SortTheaters(theaters, order))

			out := cmd.OutOrStdout()
			if len(theaters) == 0 {
				fmt.Fprintln(out, "No theaters found")
				return nil
			}

			distances := box.TheaterDistanceMap()
			rows := make([][]string, 0, len(theaters))
			for _, t := range theaters {
				fav := ""
				if box.IsFavoriteTheater(t.ID) {
					fav = "★"
				}
				dist := ""
				if d, ok := distances[t.ID]; ok {
					dist = fmt.Sprintf("%.1f mi", d)
				}
				rows = append(rows, []string{
					fav,
					t.ID,
					t.Name,
					t.Address,
					dist,
					strconv.Itoa(len(box.MoviesAtTheater(t.ID))),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"", "ID", "Name", "Address", "Distance", "Movies"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&sortFlag, "sort", "", "Order by name or distance (default: saved order)")
	cmd.Flags().StringVar(&filterFlag, "filter", "", "Fuzzy filter on name or address")
	cmd.Flags().BoolVar(&inRange, "in-range", false, "Only theaters within the saved search radius")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Fetch again even if the saved listings are fresh")
	return cmd
}
