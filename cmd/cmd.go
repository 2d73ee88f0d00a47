// submodule cmd contains command definitions
package main

import (
	"fmt"
	"strings"

	"github.com/desertthunder/crate/internal/formatter"
	"github.com/urfave/cli/v3"
)

// serveCommand runs the token endpoint
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve catalog access tokens at /api/token",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host (overrides config)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Listen port (overrides config)",
			},
		},
		Action: r.Serve,
	}
}

// tuiCommand returns the top-level TUI command for interactive search and playlist management.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI to search songs and build playlists",
		Action:  r.TUI,
	}
}

// searchCommand queries the catalog, or lists past searches
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search the catalog for tracks",
		ArgsUsage: "<query>",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Maximum number of results to print",
				Value:   10,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
				Value: true,
			},
			&cli.BoolFlag{
				Name:  "history",
				Usage: "List recent searches instead of searching",
			},
			&cli.BoolFlag{
				Name:  "clear-history",
				Usage: "Delete all recorded searches",
			},
		},
		Action: r.Search,
	}
}

func playlistArg() cli.Argument {
	return &cli.StringArg{Name: "playlist", UsageText: "playlist id or name"}
}

func jsonFlag() cli.Flag {
	return &cli.BoolFlag{Name: "json", Usage: "Output raw JSON"}
}

// playlistCommand manages locally stored playlists
func playlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlist",
		Aliases: []string{"pl"},
		Usage:   "Manage local playlists",
		Commands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List playlists",
				Flags:   []cli.Flag{jsonFlag()},
				Action:  r.PlaylistList,
			},
			{
				Name:      "show",
				Usage:     "Show a playlist's tracks",
				Arguments: []cli.Argument{playlistArg()},
				Flags:     []cli.Flag{jsonFlag()},
				Action:    r.PlaylistShow,
			},
			{
				Name:      "create",
				Usage:     "Create a playlist (prompts when no name is given)",
				Arguments: []cli.Argument{&cli.StringArg{Name: "name"}},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "cover",
						Usage: "Cover image URL",
					},
				},
				Action: r.PlaylistCreate,
			},
			{
				Name:      "rename",
				Usage:     "Rename a playlist",
				Arguments: []cli.Argument{playlistArg(), &cli.StringArg{Name: "name"}},
				Action:    r.PlaylistRename,
			},
			{
				Name:      "cover",
				Usage:     "Set a playlist's cover image URL",
				Arguments: []cli.Argument{playlistArg(), &cli.StringArg{Name: "url"}},
				Action:    r.PlaylistCover,
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "Delete a playlist",
				Arguments: []cli.Argument{playlistArg()},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "yes",
						Aliases: []string{"y"},
						Usage:   "Skip confirmation",
					},
				},
				Action: r.PlaylistDelete,
			},
			{
				Name:      "add",
				Usage:     "Search the catalog and add a track to a playlist",
				Arguments: []cli.Argument{playlistArg(), &cli.StringArg{Name: "query"}},
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "pick",
						Usage: "1-based result to add (prompts when interactive and unset)",
					},
				},
				Action: r.PlaylistAdd,
			},
			{
				Name:      "remove",
				Usage:     "Remove a track by id or 1-based position",
				Arguments: []cli.Argument{playlistArg(), &cli.StringArg{Name: "track"}},
				Action:    r.PlaylistRemove,
			},
			{
				Name:      "export",
				Usage:     "Export one playlist, or all with --all",
				Arguments: []cli.Argument{playlistArg()},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   fmt.Sprintf("Export format (%s)", formatNames()),
						Value:   string(formatter.FormatJSON),
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output directory",
					},
					&cli.BoolFlag{
						Name:  "all",
						Usage: "Export every playlist with a manifest",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent workers for --all",
						Value: 5,
					},
				},
				Action: r.PlaylistExport,
			},
		},
	}
}

func formatNames() string {
	names := make([]string, len(formatter.Formats))
	for i, f := range formatter.Formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

// setupCommand handles setup operations for configuration and the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Write a config file, optionally filling in Spotify credentials",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
					&cli.StringFlag{
						Name:  "client-id",
						Usage: "Spotify client ID",
					},
					&cli.StringFlag{
						Name:  "client-secret",
						Usage: "Spotify client secret",
					},
				},
				Action: r.SetupConfig,
			},
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}
