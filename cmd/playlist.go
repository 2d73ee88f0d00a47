package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/crate/internal/formatter"
	"github.com/desertthunder/crate/internal/library"
	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/shared"
	"github.com/desertthunder/crate/internal/tasks"
	"github.com/urfave/cli/v3"
)

// PlaylistList prints every playlist with its size.
func (r *Runner) PlaylistList(ctx context.Context, cmd *cli.Command) error {
	store, err := r.playlists(ctx)
	if err != nil {
		return err
	}

	playlists := store.List()
	if cmd.Bool("json") {
		return r.writeJSON(playlists, true)
	}
	if len(playlists) == 0 {
		return r.writePlain("No playlists yet. Create one with 'crate playlist create <name>'.\n")
	}

	r.writePlainHeader(fmt.Sprintf("Playlists (%d)", len(playlists)))
	for _, p := range playlists {
		r.writePlain("%-30s %3d songs  %8s  %s\n",
			shared.Truncate(p.Name, 30), len(p.Tracks), shared.FormatDuration(p.Duration()), p.ID)
	}
	return nil
}

// PlaylistShow prints a playlist's tracks.
func (r *Runner) PlaylistShow(ctx context.Context, cmd *cli.Command) error {
	_, p, err := r.resolve(ctx, cmd.StringArg("playlist"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(p, true)
	}

	r.writePlainHeader(p.Name)
	r.writePlain("ID:       %s\n", p.ID)
	r.writePlain("Cover:    %s\n", p.Cover)
	r.writePlain("Tracks:   %d (%s)\n\n", len(p.Tracks), shared.FormatDuration(p.Duration()))
	if len(p.Tracks) == 0 {
		return r.writePlain("No songs in this playlist.\n")
	}
	r.writeTracks(p.Tracks)
	return nil
}

// PlaylistCreate creates a playlist from the name argument, or from a form when run interactively without one.
func (r *Runner) PlaylistCreate(ctx context.Context, cmd *cli.Command) error {
	name, cover := cmd.StringArg("name"), cmd.String("cover")

	if strings.TrimSpace(name) == "" {
		if !r.prompter.Interactive() {
			return fmt.Errorf("%w: playlist name", shared.ErrMissingArgument)
		}
		if err := r.prompter.PlaylistForm(&name, &cover); err != nil {
			return err
		}
	}
	if cover != "" && !shared.HasURLScheme(cover) {
		return fmt.Errorf("%w: %q", shared.ErrInvalidCover, cover)
	}

	store, err := r.playlists(ctx)
	if err != nil {
		return err
	}
	p, err := store.Create(ctx, name, cover)
	if err != nil {
		return err
	}
	if err := saved(store); err != nil {
		return err
	}

	r.logger.Info("playlist created", "id", p.ID, "name", p.Name)
	return r.writePlain("✓ Created playlist %q (%s)\n", p.Name, p.ID)
}

// PlaylistRename renames a playlist.
func (r *Runner) PlaylistRename(ctx context.Context, cmd *cli.Command) error {
	name := cmd.StringArg("name")
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: new name", shared.ErrMissingArgument)
	}

	store, p, err := r.resolve(ctx, cmd.StringArg("playlist"))
	if err != nil {
		return err
	}
	changed, err := store.Rename(ctx, p.ID, name)
	if err != nil {
		return err
	}
	if !changed {
		return r.writePlain("Playlist already named %q\n", p.Name)
	}
	if err := saved(store); err != nil {
		return err
	}
	return r.writePlain("✓ Renamed %q to %q\n", p.Name, strings.TrimSpace(name))
}

// PlaylistCover sets a playlist's cover image.
func (r *Runner) PlaylistCover(ctx context.Context, cmd *cli.Command) error {
	store, p, err := r.resolve(ctx, cmd.StringArg("playlist"))
	if err != nil {
		return err
	}
	if err := store.SetCover(ctx, p.ID, cmd.StringArg("url")); err != nil {
		return err
	}
	if err := saved(store); err != nil {
		return err
	}
	return r.writePlain("✓ Cover updated for %q\n", p.Name)
}

// PlaylistDelete deletes a playlist after confirmation.
func (r *Runner) PlaylistDelete(ctx context.Context, cmd *cli.Command) error {
	store, p, err := r.resolve(ctx, cmd.StringArg("playlist"))
	if err != nil {
		return err
	}

	if !cmd.Bool("yes") {
		if !r.prompter.Interactive() {
			return fmt.Errorf("%w: pass --yes to delete %q", shared.ErrMissingArgument, p.Name)
		}
		ok, err := r.prompter.Confirm(fmt.Sprintf("Delete %q and its %d songs?", p.Name, len(p.Tracks)))
		if err != nil {
			return err
		}
		if !ok {
			return r.writePlain("Cancelled\n")
		}
	}

	if err := store.Delete(ctx, p.ID); err != nil {
		return err
	}
	if err := saved(store); err != nil {
		return err
	}
	r.logger.Info("playlist deleted", "id", p.ID, "name", p.Name)
	return r.writePlain("✓ Deleted playlist %q\n", p.Name)
}

// PlaylistAdd searches the catalog and adds one of the results to a playlist.
func (r *Runner) PlaylistAdd(ctx context.Context, cmd *cli.Command) error {
	query := strings.TrimSpace(cmd.StringArg("query"))
	if query == "" {
		return fmt.Errorf("%w: search query", shared.ErrMissingArgument)
	}

	store, p, err := r.resolve(ctx, cmd.StringArg("playlist"))
	if err != nil {
		return err
	}

	searcher, err := r.searcher()
	if err != nil {
		return err
	}
	res := searcher.Run(ctx, 1, query)
	if res.Err != nil {
		return res.Err
	}
	if len(res.Tracks) == 0 {
		return r.writePlain("No results for %q.\n", query)
	}

	track, err := r.pickTrack(res.Tracks, cmd.Int("pick"))
	if err != nil {
		return err
	}

	if _, err := store.AddTrack(ctx, p.ID, track); errors.Is(err, shared.ErrTrackExists) {
		return r.writePlain("This song is already in the playlist.\n")
	} else if err != nil {
		return err
	}
	if err := saved(store); err != nil {
		return err
	}
	return r.writePlain("✓ Added %q by %s to %q\n", track.Name, track.ArtistNames(), p.Name)
}

// pickTrack chooses the 1-based pick, prompts when interactive, or takes the top result.
func (r *Runner) pickTrack(tracks []models.Track, pick int) (models.Track, error) {
	switch {
	case pick > 0:
		if pick > len(tracks) {
			return models.Track{}, fmt.Errorf("%w: --pick %d of %d results", shared.ErrInvalidFlag, pick, len(tracks))
		}
		return tracks[pick-1], nil
	case pick < 0:
		return models.Track{}, fmt.Errorf("%w: --pick must be positive", shared.ErrInvalidFlag)
	case r.prompter.Interactive() && len(tracks) > 1:
		labels := make([]string, len(tracks))
		for i, t := range tracks {
			labels[i] = fmt.Sprintf("%s - %s [%s]", t.ArtistNames(), t.Name, shared.FormatDuration(t.DurationMS))
		}
		i, err := r.prompter.Select("Add which track?", labels)
		if err != nil {
			return models.Track{}, err
		}
		return tracks[i], nil
	default:
		return tracks[0], nil
	}
}

// PlaylistRemove removes a track given by id or 1-based position.
func (r *Runner) PlaylistRemove(ctx context.Context, cmd *cli.Command) error {
	ref := strings.TrimSpace(cmd.StringArg("track"))
	if ref == "" {
		return fmt.Errorf("%w: track id or position", shared.ErrMissingArgument)
	}

	store, p, err := r.resolve(ctx, cmd.StringArg("playlist"))
	if err != nil {
		return err
	}

	trackID := ref
	if n, err := strconv.Atoi(ref); err == nil && p.IndexOf(ref) < 0 {
		if n < 1 || n > len(p.Tracks) {
			return fmt.Errorf("%w: position %d of %d", shared.ErrInvalidArgument, n, len(p.Tracks))
		}
		trackID = p.Tracks[n-1].ID
	}

	removed, err := store.RemoveTrack(ctx, p.ID, trackID)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("%w: %s in %q", shared.ErrTrackNotFound, ref, p.Name)
	}
	if err := saved(store); err != nil {
		return err
	}
	return r.writePlain("✓ Removed from %q\n", p.Name)
}

// PlaylistExport writes one playlist, or all of them with a manifest.
func (r *Runner) PlaylistExport(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	engine, err := r.exportEngine(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("all") {
		return r.exportAll(ctx, engine, format, cmd.String("output"), cmd.Int("workers"))
	}

	ref := cmd.StringArg("playlist")
	if strings.TrimSpace(ref) == "" {
		return fmt.Errorf("%w: playlist (or --all)", shared.ErrMissingArgument)
	}

	dir := cmd.String("output")
	if dir == "" {
		dir = "."
	}
	res, err := engine.Export(ctx, ref, format, dir)
	if err != nil {
		return err
	}

	r.writePlain("✓ Exported %q\n", res.PlaylistName)
	for _, f := range res.Files {
		r.writePlain("  %s\n", f)
	}
	return nil
}

func (r *Runner) exportAll(ctx context.Context, engine *tasks.ExportEngine, format formatter.Format, dir string, workers int) error {
	progress := make(chan tasks.ProgressUpdate, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for u := range progress {
			r.logger.Info(u.Message, "phase", u.Phase.String())
		}
	}()

	result, err := engine.BulkExport(ctx, progress, tasks.BulkExportOpts{
		Format:     format,
		OutputDir:  dir,
		NumWorkers: workers,
	})
	close(progress)
	<-done

	if result != nil {
		r.writePlainHeader("Export summary")
		r.writePlain("Directory:  %s\n", result.OutputDirectory)
		r.writePlain("Exported:   %d of %d\n", result.SuccessfulExports, result.TotalPlaylists)
		for _, res := range result.Results {
			if !res.Success {
				r.writePlain("  ✗ %s: %v\n", res.PlaylistName, res.Error)
			}
		}
		if result.ManifestPath != "" {
			r.writePlain("Manifest:   %s\n", result.ManifestPath)
		}
	}
	return err
}

// resolve opens the store and finds the playlist named by ref.
func (r *Runner) resolve(ctx context.Context, ref string) (*library.Store, models.Playlist, error) {
	store, err := r.playlists(ctx)
	if err != nil {
		return nil, models.Playlist{}, err
	}
	p, err := store.Resolve(ref)
	if err != nil {
		return nil, models.Playlist{}, err
	}
	return store, p, nil
}

// saved surfaces a failed write, which the store itself only logs.
func saved(store *library.Store) error {
	if err := store.LastSaveError(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrPersistence, err)
	}
	return nil
}
