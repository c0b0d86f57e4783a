package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/mmcdole/boxoffice/internal/boxoffice"
	"github.com/mmcdole/boxoffice/internal/domain"
	"github.com/mmcdole/boxoffice/internal/listings"
	"github.com/mmcdole/boxoffice/internal/search"
)

const syncTimeout = 2 * time.Minute

type listingsOptions struct {
	sort    string
	filter  string
	date    string
	refresh bool
}

func newListingsCommand(ctx *commandContext) *cobra.Command {
	var opts listingsOptions

	cmd := &cobra.Command{
		Use:   "listings",
		Short: "Show movies playing near the saved location",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runListings(cmd, ctx, opts)
		},
	}

	cmd.Flags().StringVar(&opts.sort, "sort", "", "Order by title, score or release (default: ui.default_sort, then the saved order)")
	cmd.Flags().StringVar(&opts.filter, "filter", "", "Fuzzy filter on title")
	cmd.Flags().StringVar(&opts.date, "date", "", "Search date (YYYY-MM-DD); saved for later runs")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "Fetch again even if the saved listings are fresh")
	return cmd
}

func runListings(cmd *cobra.Command, ctx *commandContext, opts listingsOptions) error {
	box, err := ctx.ensureModel()
	if err != nil {
		return err
	}

	if opts.date != "" {
		date, err := time.Parse(time.DateOnly, opts.date)
		if err != nil {
			return fmt.Errorf("invalid --date %q: %w", opts.date, err)
		}
		box.SetSearchDate(date)
	}

	if opts.sort == "" {
		if cfg, err := ctx.ensureConfig(); err == nil {
			opts.sort = cfg.UI.DefaultSort
		}
	}

	order := box.MovieOrder()
	if opts.sort != "" {
		o, ok := listings.ParseMovieOrder(opts.sort)
		if !ok {
			return fmt.Errorf("invalid --sort %q (want title, score or release)", opts.sort)
		}
		order = o
	}

	if err := syncListings(cmd.Context(), box, opts.refresh); err != nil {
		return err
	}

	movies := box.SortMovies(box.Movies(), order)
	results := search.Movies(opts.filter, movies)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s · %s · %s\n", box.PostalCode(), box.SearchDate().Format("Mon Jan 2"), box.CurrentDataProvider().Name())
	if len(results) == 0 {
		fmt.Fprintln(out, "No movies found")
		return nil
	}

	rows := make([][]string, 0, len(results))
	for _, r := range results {
		mv := r.Movie
		score := "-"
		if s := box.ScoreForMovie(mv.ID); s != domain.NoScore {
			score = strconv.Itoa(s)
		}
		released := ""
		if !mv.ReleaseDate.IsZero() {
			released = mv.ReleaseDate.Format(time.DateOnly)
		}
		rows = append(rows, []string{
			score,
			mv.Title,
			released,
			mv.FormattedLength(),
			strconv.Itoa(len(box.TheatersShowingMovie(mv.ID))),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Score", "Title", "Released", "Length", "Theaters"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight},
	))
	return nil
}

func syncListings(parent context.Context, box *boxoffice.Model, refresh bool) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, syncTimeout)
	defer cancel()

	var err error
	if refresh {
		err = box.Refresh(ctx)
	} else {
		err = box.Sync(ctx)
	}
	if err != nil {
		if errors.Is(err, domain.ErrLocationNotFound) && box.PostalCode() == "" {
			return fmt.Errorf("no location set; run `boxoffice location <postal>` first")
		}
		return err
	}
	return nil
}
