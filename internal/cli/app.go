package cli

import (
	commands "github.com/urfave/cli/v3"

	"github.com/st3v3nmw/hiscore/internal/config"
)

// NewCommand builds the hiscore command tree.
func NewCommand() *commands.Command {
	return &commands.Command{
		Name:  "hiscore",
		Usage: "Keep per-level high score tables over HTTP",
		Commands: []*commands.Command{
			{
				Name:  "serve",
				Usage: "Run the score server",
				Flags: []commands.Flag{
					&commands.StringFlag{
						Name:    "config",
						Usage:   "Path to the config file",
						Aliases: []string{"c"},
						Value:   config.DefaultPath,
					},
					&commands.StringFlag{Name: "listen", Usage: "Address to listen on (host:port)"},
					&commands.StringFlag{Name: "port", Usage: "Port to listen on, keeping the configured host"},
					&commands.StringFlag{Name: "working-dir", Usage: "Directory that relative storage paths live under"},
					&commands.BoolFlag{Name: "strict", Usage: "Return 404 for scopes that were never submitted to"},
				},
				Action: Serve,
			},
			{
				Name:   "get",
				Usage:  "Print the high scores for a version and level",
				Flags:  append(scopeFlags(), addrFlag()),
				Action: Get,
			},
			{
				Name:  "submit",
				Usage: "Submit a score",
				Flags: append(scopeFlags(), addrFlag(),
					&commands.StringFlag{Name: "name", Usage: "Player name", Required: true},
					&commands.StringFlag{Name: "score", Usage: "Score (decimal number)", Required: true},
				),
				Action: Submit,
			},
			{
				Name:      "check",
				Usage:     "Run conformance stages against a score server",
				ArgsUsage: "[stage...]",
				Flags: []commands.Flag{
					&commands.StringFlag{
						Name:  "checklist",
						Usage: "Checklist to run",
						Value: "hiscore",
					},
					&commands.StringFlag{
						Name:  "command",
						Usage: "Server command to start (default: this binary's serve command)",
					},
					&commands.StringFlag{
						Name:  "addr",
						Usage: "Check an already running server instead of starting one (restart stages will fail)",
					},
					&commands.StringFlag{
						Name:  "working-dir",
						Usage: "Base directory for per-run server data and logs",
						Value: ".hiscore",
					},
					&commands.BoolFlag{
						Name:  "keep-going",
						Usage: "Run the remaining stages after a failure",
					},
					&commands.BoolFlag{
						Name:  "list",
						Usage: "List the stages and exit",
					},
				},
				Action: Check,
			},
			{
				Name:      "init",
				Usage:     "Write a default config file",
				ArgsUsage: "[path]",
				Flags: []commands.Flag{
					&commands.BoolFlag{Name: "force", Usage: "Overwrite an existing file"},
				},
				Action: Init,
			},
		},
	}
}

func addrFlag() commands.Flag {
	return &commands.StringFlag{
		Name:    "addr",
		Usage:   "Address of the score server",
		Aliases: []string{"a"},
		Value:   config.DefaultListen,
		Sources: commands.EnvVars("HISCORE_ADDR"),
	}
}

func scopeFlags() []commands.Flag {
	return []commands.Flag{
		&commands.StringFlag{Name: "version", Usage: "Game version", Required: true},
		&commands.StringFlag{Name: "level", Usage: "Game level", Required: true},
	}
}
