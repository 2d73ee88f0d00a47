package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/crate/internal/app"
	"github.com/desertthunder/crate/internal/library"
	"github.com/desertthunder/crate/internal/repositories"
	"github.com/desertthunder/crate/internal/services"
	"github.com/desertthunder/crate/internal/shared"
	"github.com/desertthunder/crate/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The database, playlist store and catalog clients are created on first use so commands like
// `setup config` work before any of them are configured.
type Runner struct {
	config     *shared.Config
	configPath string
	db         *sql.DB
	store      *library.Store
	history    *repositories.SearchHistoryRepository
	tokens     services.TokenProvider
	catalog    services.Catalog
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	prompter   Prompter
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	DB         *sql.DB
	Tokens     services.TokenProvider
	Catalog    services.Catalog
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Prompter   Prompter
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if opts.Prompter == nil {
		opts.Prompter = huhPrompter{}
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		db:         opts.DB,
		tokens:     opts.Tokens,
		catalog:    opts.Catalog,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		prompter:   opts.Prompter,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		serveCommand, tuiCommand, searchCommand, playlistCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the logger, e.g. with a file logger while the TUI owns the terminal.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// Close releases the database if the runner opened one.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// database opens and migrates the configured database on first use.
func (r *Runner) database(ctx context.Context) (*sql.DB, error) {
	if r.db != nil {
		return r.db, nil
	}

	db, err := shared.OpenDatabase(ctx, r.config.Database)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrPersistence, err)
	}
	r.db = db
	return db, nil
}

// playlists loads the playlist store from local storage on first use.
func (r *Runner) playlists(ctx context.Context) (*library.Store, error) {
	if r.store != nil {
		return r.store, nil
	}

	db, err := r.database(ctx)
	if err != nil {
		return nil, err
	}
	r.store = library.Open(ctx, repositories.NewPlaylistPersister(db, r.logger), library.WithLogger(r.logger))
	return r.store, nil
}

// searchHistory returns the search history repository on first use.
func (r *Runner) searchHistory(ctx context.Context) (*repositories.SearchHistoryRepository, error) {
	if r.history != nil {
		return r.history, nil
	}

	db, err := r.database(ctx)
	if err != nil {
		return nil, err
	}
	r.history = repositories.NewSearchHistoryRepository(db)
	return r.history, nil
}

// tokenProvider fetches tokens from the configured endpoint, or exchanges credentials in-process when no
// endpoint is configured.
func (r *Runner) tokenProvider() (services.TokenProvider, error) {
	if r.tokens != nil {
		return r.tokens, nil
	}

	if endpoint := r.config.Catalog.TokenEndpoint; endpoint != "" {
		r.tokens = services.NewEndpointTokenProvider(endpoint, r.httpClient)
		return r.tokens, nil
	}

	provider, err := services.NewClientCredentialsProvider(r.config.Credentials.Spotify, r.httpClient)
	if err != nil {
		return nil, err
	}
	r.tokens = provider
	return r.tokens, nil
}

func (r *Runner) catalogClient() services.Catalog {
	if r.catalog == nil {
		r.catalog = services.NewSpotifyCatalog(r.config.Catalog.BaseURL, r.config.Catalog.SearchLimit, r.httpClient)
	}
	return r.catalog
}

func (r *Runner) searcher() (*app.Searcher, error) {
	tokens, err := r.tokenProvider()
	if err != nil {
		return nil, err
	}
	return app.NewSearcher(tokens, r.catalogClient()), nil
}

func (r *Runner) exportEngine(ctx context.Context) (*tasks.ExportEngine, error) {
	store, err := r.playlists(ctx)
	if err != nil {
		return nil, err
	}
	return tasks.NewExportEngine(store, r.logger), nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
