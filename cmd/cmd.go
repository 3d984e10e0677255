// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// setupCommand handles setup operations for configuration and the local database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize the snapshot database and run migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
		},
	}
}

// authCommand handles session operations against the backend.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage the admin session",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Sign in and store the session token",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "email",
						Aliases:  []string{"e"},
						Usage:    "Admin account email",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "password",
						Aliases: []string{"p"},
						Usage:   "Admin account password (prompted when omitted)",
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "logout",
				Usage:  "Discard the stored session",
				Action: r.AuthLogout,
			},
			{
				Name:   "status",
				Usage:  "Check whether the stored session is still valid",
				Action: r.AuthStatus,
			},
		},
	}
}

// episodesCommand handles episode management.
func episodesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "episodes",
		Aliases: []string{"ep"},
		Usage:   "Manage podcast episodes",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List all episodes, drafts included",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.EpisodesList,
			},
			{
				Name:      "get",
				Usage:     "Show a single episode, draft or published",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.EpisodesGet,
			},
			{
				Name:   "create",
				Usage:  "Create a draft episode",
				Flags:  episodeFieldFlags(true),
				Action: r.EpisodesCreate,
			},
			{
				Name:      "update",
				Usage:     "Update an episode's fields",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     episodeFieldFlags(true),
				Action:    r.EpisodesUpdate,
			},
			{
				Name:      "delete",
				Usage:     "Delete an episode",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "yes",
						Aliases: []string{"y"},
						Usage:   "Skip the confirmation prompt",
					},
				},
				Action: r.EpisodesDelete,
			},
			{
				Name:      "publish",
				Usage:     "Publish a draft episode",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.EpisodesPublish,
			},
			{
				Name:      "unpublish",
				Usage:     "Return a published episode to draft",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.EpisodesUnpublish,
			},
		},
	}
}

func episodeFieldFlags(withRequired bool) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "title",
			Usage:    "Episode title",
			Required: withRequired,
		},
		&cli.StringFlag{
			Name:     "description",
			Usage:    "Episode description",
			Required: withRequired,
		},
		&cli.StringFlag{
			Name:  "thumbnail",
			Usage: "Thumbnail image URL",
		},
		&cli.StringFlag{
			Name:  "spotify",
			Usage: "Spotify episode URL",
		},
		&cli.StringFlag{
			Name:  "youtube",
			Usage: "YouTube episode URL",
		},
		&cli.StringFlag{
			Name:  "tags",
			Usage: "Comma separated tags",
		},
	}
}

// linksCommand handles official link management.
func linksCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "links",
		Usage: "Manage official links",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List official links in display order",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.LinksList,
			},
			{
				Name:  "create",
				Usage: "Create an official link",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "label",
						Usage:    "Link label",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "url",
						Usage:    "Link URL",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "type",
						Usage: "Link type (spotify, youtube, instagram, website, other)",
						Value: "other",
					},
				},
				Action: r.LinksCreate,
			},
			{
				Name:      "update",
				Usage:     "Update an official link",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "label",
						Usage:    "Link label",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "url",
						Usage:    "Link URL",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "type",
						Usage: "Link type (spotify, youtube, instagram, website, other)",
						Value: "other",
					},
				},
				Action: r.LinksUpdate,
			},
			{
				Name:      "delete",
				Usage:     "Delete an official link",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "yes",
						Aliases: []string{"y"},
						Usage:   "Skip the confirmation prompt",
					},
				},
				Action: r.LinksDelete,
			},
			{
				Name:  "reorder",
				Usage: "Set display order from a comma separated ID list",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "ids",
						Usage:    "Link IDs in the desired order, e.g. 3,1,2",
						Required: true,
					},
				},
				Action: r.LinksReorder,
			},
		},
	}
}

// snapshotCommand handles local content snapshots.
func snapshotCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "snapshot",
		Usage: "Capture and export local content snapshots",
		Commands: []*cli.Command{
			{
				Name:   "save",
				Usage:  "Capture the backend's current content into the local database",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SnapshotSave,
			},
			{
				Name:   "list",
				Usage:  "List stored snapshots",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SnapshotList,
			},
			{
				Name:      "export",
				Usage:     "Export a snapshot to CSV, Markdown or JSON",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format (json, markdown, csv)",
						Value:   "json",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path (stdout when omitted)",
					},
				},
				Action: r.SnapshotExport,
			},
		},
	}
}

// siteCommand serves the public website.
func siteCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "site",
		Usage: "Public website operations",
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Serve the public promotional site",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "host",
						Usage: "Host to bind",
					},
					&cli.IntFlag{
						Name:  "port",
						Usage: "Port to bind",
					},
				},
				Action: r.SiteServe,
			},
		},
	}
}

// tuiCommand returns the top-level command for the interactive admin console.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "admin",
		Aliases: []string{"tui"},
		Usage:   "Launch the interactive admin console",
		Action:  r.TUI,
	}
}
