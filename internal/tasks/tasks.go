package tasks

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/crate/internal/formatter"
	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/shared"
)

// PlaylistSource lists the playlists to export. [library.Store] satisfies it.
type PlaylistSource interface {
	List() []models.Playlist
	Resolve(ref string) (models.Playlist, error)
}

// PlaylistExportJob is one unit of work for an export worker.
type PlaylistExportJob struct {
	Playlist models.Playlist
	Base     string // File name stem inside the output directory
}

// PlaylistExportResult is the outcome of exporting a single playlist.
type PlaylistExportResult struct {
	PlaylistID   string
	PlaylistName string
	Success      bool
	Files        []string
	Error        error
}

// BulkExportResult aggregates a bulk export.
type BulkExportResult struct {
	TotalPlaylists    int
	SuccessfulExports int
	FailedExports     int
	Results           []PlaylistExportResult
	OutputDirectory   string
	ManifestPath      string
}

// Manifest converts r into the file written alongside the export.
func (r *BulkExportResult) Manifest(format formatter.Format) formatter.Manifest {
	m := formatter.Manifest{
		Format:          format,
		OutputDirectory: r.OutputDirectory,
		Total:           r.TotalPlaylists,
		Successful:      r.SuccessfulExports,
		Failed:          r.FailedExports,
		Playlists:       make([]formatter.ManifestEntry, 0, len(r.Results)),
	}
	for _, res := range r.Results {
		entry := formatter.ManifestEntry{ID: res.PlaylistID, Name: res.PlaylistName, Success: res.Success, Files: res.Files}
		if res.Error != nil {
			entry.Error = res.Error.Error()
		}
		m.Playlists = append(m.Playlists, entry)
	}
	return m
}

// ExportEngine exports playlists from a [PlaylistSource] to files.
type ExportEngine struct {
	source PlaylistSource
	logger *log.Logger
}

// NewExportEngine creates an engine over source. A nil logger discards output.
func NewExportEngine(source PlaylistSource, logger *log.Logger) *ExportEngine {
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}
	return &ExportEngine{source: source, logger: logger}
}

// Export writes the playlist matching ref to dir in format.
func (e *ExportEngine) Export(ctx context.Context, ref string, format formatter.Format, dir string) (*PlaylistExportResult, error) {
	p, err := e.source.Resolve(ref)
	if err != nil {
		return nil, err
	}

	files, err := formatter.Write(ctx, p, format, dir, baseName(p, nil))
	if err != nil {
		return nil, fmt.Errorf("%w: export of %q failed: %v", shared.ErrInvalidInput, p.Name, err)
	}
	e.logger.Info("exported playlist", "name", p.Name, "files", len(files))
	return &PlaylistExportResult{PlaylistID: p.ID, PlaylistName: p.Name, Success: true, Files: files}, nil
}

// baseName picks a file stem from the playlist name, falling back to its id when the slug is empty or taken.
func baseName(p models.Playlist, used map[string]bool) string {
	base := formatter.Slug(p.Name)
	if base == "" || used[base] {
		base = p.ID
	}
	if used != nil {
		used[base] = true
	}
	return base
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *ExportEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}
