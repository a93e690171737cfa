package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/litesuggar/omikuji/internal/config"
	"github.com/litesuggar/omikuji/internal/daily"
	"github.com/litesuggar/omikuji/internal/errors"
	"github.com/litesuggar/omikuji/internal/fortune"
	"github.com/litesuggar/omikuji/internal/ops"
	"github.com/litesuggar/omikuji/internal/web"
)

// appEnv bundles the shared dependencies of the CLI commands.
type appEnv struct {
	db        *sql.DB
	cfg       *config.Config
	daily     *daily.Store
	generator ops.Generator
	locks     *ops.KeyLocks
}

func (e *appEnv) drawDeps() ops.DrawDeps {
	if e.locks == nil {
		e.locks = ops.NewKeyLocks()
	}
	return ops.DrawDeps{
		DB:        e.db,
		Config:    e.cfg,
		Daily:     e.daily,
		Locks:     e.locks,
		Generator: e.generator,
	}
}

// newCLIApp creates the CLI application with all commands.
func newCLIApp(env *appEnv) *cli.App {
	app := &cli.App{
		Name:    "omikuji",
		Usage:   "Fortune sign cache and generator",
		Version: Version,
		Commands: []*cli.Command{
			drawCmd(env),
			dailyCmd(env),
			invalidateCmd(env),
			corpusGetCmd(env),
			corpusListCmd(env),
			sweepCmd(env),
			webCmd(env),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// drawCmd creates the draw command.
func drawCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "draw",
		Usage: "Draw today's fortune sign for a user",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "user", Aliases: []string{"u"}, Required: true, Usage: "User identifier"},
			&cli.StringFlag{Name: "theme", Aliases: []string{"t"}, Required: true, Usage: "Sign theme"},
			&cli.StringFlag{Name: "level", Aliases: []string{"l"}, Usage: "Fortune grade (default: weighted random)"},
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Display name for the greeting"},
			&cli.BoolFlag{Name: "json", Usage: "Print the raw record instead of the rendered sign"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Draw(c.Context, env.drawDeps(), ops.DrawInput{
				UserID: c.String("user"),
				Theme:  c.String("theme"),
				Level:  c.String("level"),
			})
			if err != nil {
				return outputError(err)
			}

			if c.Bool("json") {
				return outputJSON(output)
			}
			fmt.Print(fortune.Format(output.Fortune, c.String("name")))
			return nil
		},
	}
}

// dailyCmd creates the daily command.
func dailyCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "daily",
		Usage: "Show a user's sign for today without drawing",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "user", Aliases: []string{"u"}, Required: true, Usage: "User identifier"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.DailyGet(env.daily, ops.DailyGetInput{
				UserID: c.String("user"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// invalidateCmd creates the invalidate command.
func invalidateCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "invalidate",
		Usage: "Discard a user's sign for today",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "user", Aliases: []string{"u"}, Required: true, Usage: "User identifier"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Invalidate(env.daily, ops.InvalidateInput{
				UserID: c.String("user"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// corpusGetCmd creates the corpus-get command.
func corpusGetCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "corpus-get",
		Usage: "Show the stored variants for one (level, theme) key",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "level", Aliases: []string{"l"}, Required: true, Usage: "Fortune grade"},
			&cli.StringFlag{Name: "theme", Aliases: []string{"t"}, Required: true, Usage: "Sign theme"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.CorpusGet(c.Context, env.db, env.cfg, ops.CorpusGetInput{
				Level: c.String("level"),
				Theme: c.String("theme"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// corpusListCmd creates the corpus-list command.
func corpusListCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "corpus-list",
		Usage: "List corpus entries with variant counts",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "level", Aliases: []string{"l"}, Usage: "Filter by fortune grade"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.CorpusList(c.Context, env.db, env.cfg, ops.CorpusListInput{
				Level: c.String("level"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// sweepCmd creates the sweep command.
func sweepCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "sweep",
		Usage: "Delete corpus entries past the retention window",
		Action: func(c *cli.Context) error {
			output, err := ops.Sweep(c.Context, env.db, env.cfg)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// webCmd creates the web command.
func webCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "web",
		Usage: "Serve the corpus web UI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Aliases: []string{"b"}, Value: "127.0.0.1", Usage: "Bind address"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Value: 7980, Usage: "Listen port"},
		},
		Action: func(c *cli.Context) error {
			srv := web.NewServer(env.db, env.cfg, env.daily, Version, c.String("bind"), c.Int("port"))
			return web.Run(srv)
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if oErr, ok := err.(*errors.OmikujiError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", oErr.Code, oErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}
