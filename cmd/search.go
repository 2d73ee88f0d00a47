package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/shared"
	"github.com/urfave/cli/v3"
)

// Search runs a one-off catalog search and records it in the search history.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	switch {
	case cmd.Bool("clear-history"):
		return r.clearHistory(ctx)
	case cmd.Bool("history"):
		return r.listHistory(ctx, cmd.Int("limit"), cmd.Bool("json"), cmd.Bool("pretty"))
	}

	query := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("%w: search query", shared.ErrMissingArgument)
	}

	searcher, err := r.searcher()
	if err != nil {
		return err
	}

	r.logger.Debug("searching catalog", "query", query)
	res := searcher.Run(ctx, 1, query)
	if res.Err != nil {
		return res.Err
	}

	if history, err := r.searchHistory(ctx); err != nil {
		r.logger.Warn("search history unavailable", "error", err)
	} else if err := history.Record(ctx, query, len(res.Tracks)); err != nil {
		r.logger.Warn("failed to record search", "error", err)
	}

	tracks := res.Tracks
	if limit := cmd.Int("limit"); limit > 0 && limit < len(tracks) {
		tracks = tracks[:limit]
	}

	if cmd.Bool("json") {
		return r.writeJSON(tracks, cmd.Bool("pretty"))
	}

	if len(tracks) == 0 {
		return r.writePlain("No results for %q.\n", query)
	}
	r.writePlainHeader(fmt.Sprintf("Results for %q (%d)", query, len(res.Tracks)))
	r.writeTracks(tracks)
	return nil
}

func (r *Runner) listHistory(ctx context.Context, limit int, asJSON, pretty bool) error {
	history, err := r.searchHistory(ctx)
	if err != nil {
		return err
	}
	entries, err := history.Recent(ctx, limit)
	if err != nil {
		return err
	}

	if asJSON {
		return r.writeJSON(entries, pretty)
	}
	if len(entries) == 0 {
		return r.writePlain("No searches recorded yet.\n")
	}

	r.writePlainHeader("Recent searches")
	for _, e := range entries {
		r.writePlain("%s  %-40s %d results\n", e.SearchedAt.Local().Format("2006-01-02 15:04"), shared.Truncate(e.Query, 40), e.ResultCount)
	}
	return nil
}

func (r *Runner) clearHistory(ctx context.Context) error {
	history, err := r.searchHistory(ctx)
	if err != nil {
		return err
	}
	n, err := history.Clear(ctx)
	if err != nil {
		return err
	}
	r.logger.Info("search history cleared", "entries", n)
	return r.writePlain("✓ Cleared %d searches\n", n)
}

// writeTracks prints one numbered line per track.
func (r *Runner) writeTracks(tracks []models.Track) {
	for i, t := range tracks {
		r.writePlain("%3d. %s - %s [%s]\n", i+1, t.ArtistNames(), t.Name, shared.FormatDuration(t.DurationMS))
		r.writePlain("     %s\n", t.ExternalURL)
	}
}
