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

// setupCommand creates the config file and initializes the gallery database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create config.toml if missing, initialize the gallery database and run migrations",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "save-env",
				Usage: "Write credentials from the environment (or .env) into the config file",
			},
		},
		Action: r.Setup,
	}
}

// serveCommand runs the web app.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the web app (login, callback, art)",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address (default: server.host:server.port from config)",
			},
			&cli.BoolFlag{
				Name:  "no-gallery",
				Usage: "Do not record generated art in the gallery database",
			},
		},
		Action: r.Serve,
	}
}

// loginCommand runs the one-shot CLI authorization flow and renders art into a file.
func loginCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Authorize with WHOOP in the browser and render today's art",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Image output path (extension added from content type when missing)",
				Value:   "healthart",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "How long to wait for the browser callback",
				Value: defaultLoginTimeout,
			},
			&cli.BoolFlag{
				Name:  "no-browser",
				Usage: "Print the authorization URL instead of opening a browser",
			},
			&cli.BoolFlag{
				Name:  "no-gallery",
				Usage: "Do not record the artwork in the gallery database",
			},
		},
		Action: r.Login,
	}
}

// promptCommand prints the prompt for a snapshot without calling any API.
func promptCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "prompt",
		Usage: "Print the image prompt for the given metrics (offline)",
		Flags: []cli.Flag{
			&cli.FloatFlag{
				Name:     "score",
				Aliases:  []string{"s"},
				Usage:    "Recovery score (0-100)",
				Required: true,
			},
			&cli.FloatFlag{
				Name:  "sleep",
				Usage: "Sleep quality (0-100)",
			},
			&cli.FloatFlag{
				Name:  "strain",
				Usage: "Day strain (0-21)",
			},
			&cli.FloatFlag{
				Name:  "hrv",
				Usage: "Heart rate variability in ms",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output snapshot and prompt as JSON",
			},
		},
		Action: r.Prompt,
	}
}

// galleryCommand handles stored artworks.
func galleryCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "gallery",
		Aliases: []string{"g"},
		Usage:   "Browse generated artworks",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List stored artworks, newest first",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of artworks to return",
						Value: 20,
					},
					&cli.IntFlag{
						Name:  "offset",
						Usage: "Number of artworks to skip",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
					&cli.BoolFlag{
						Name:  "csv",
						Usage: "Output CSV",
					},
				},
				Action: r.GalleryList,
			},
			{
				Name:  "export",
				Usage: "Write an artwork image and README into a directory",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "dir",
						Aliases: []string{"d"},
						Usage:   "Output directory (default: artwork ID)",
					},
				},
				Action: r.GalleryExport,
			},
			{
				Name:  "delete",
				Usage: "Delete an artwork",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.GalleryDelete,
			},
		},
	}
}
