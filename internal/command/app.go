// Package command defines the devtrack command line.
package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"

	"github.com/sadopc/devtrack/internal/backup"
	"github.com/sadopc/devtrack/internal/config"
	"github.com/sadopc/devtrack/internal/store"
)

type Deps struct {
	LoadConfig func(path string) (*config.Config, error)
	RunTUI     func(context.Context, *config.Config) error
	RunServe   func(context.Context, *config.Config) error
	ListFiles  func(context.Context, *config.Config) ([]backup.File, error)
	Cleanup    func(ctx context.Context, cfg *config.Config, days int) (int, error)
	Out        io.Writer
	Now        func() time.Time
}

func BuildApp(deps Deps) *cli.App {
	out := deps.Out
	if out == nil {
		out = os.Stdout
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	return &cli.App{
		Name:      "devtrack",
		Usage:     "track coding sessions, commits, tasks and breaks",
		Writer:    out,
		ErrWriter: out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to config.yaml",
				Value:   config.DefaultPath(),
			},
		},
		Action: func(ctx *cli.Context) error {
			cfg, err := loadConfig(ctx, deps)
			if err != nil {
				return err
			}
			return run(ctx.Context, deps.RunTUI, cfg, "tui")
		},
		Commands: []*cli.Command{
			{
				Name:  "tui",
				Usage: "open the terminal dashboard",
				Action: func(ctx *cli.Context) error {
					cfg, err := loadConfig(ctx, deps)
					if err != nil {
						return err
					}
					return run(ctx.Context, deps.RunTUI, cfg, "tui")
				},
			},
			{
				Name:  "serve",
				Usage: "serve the HTTP API and activity websocket",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "listen", Aliases: []string{"l"}, Usage: "listen address, overrides the config"},
				},
				Action: func(ctx *cli.Context) error {
					cfg, err := loadConfig(ctx, deps)
					if err != nil {
						return err
					}
					if l := ctx.String("listen"); l != "" {
						cfg.Listen = l
					}
					return run(ctx.Context, deps.RunServe, cfg, "serve")
				},
			},
			{
				Name:  "backups",
				Usage: "list backups and daily snapshots",
				Action: func(ctx *cli.Context) error {
					cfg, err := loadConfig(ctx, deps)
					if err != nil {
						return err
					}
					if deps.ListFiles == nil {
						return errors.New("backups runner is not configured")
					}
					files, err := deps.ListFiles(ctx.Context, cfg)
					if err != nil {
						return err
					}
					PrintFiles(out, files, now())
					return nil
				},
			},
			{
				Name:  "cleanup",
				Usage: "delete old backups",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "days", Usage: "keep backups from the last N days (default: the backup_retention_days preference)", Value: -1},
				},
				Action: func(ctx *cli.Context) error {
					cfg, err := loadConfig(ctx, deps)
					if err != nil {
						return err
					}
					if deps.Cleanup == nil {
						return errors.New("cleanup runner is not configured")
					}
					n, err := deps.Cleanup(ctx.Context, cfg, ctx.Int("days"))
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "Cleaned up %d old backups\n", n)
					return nil
				},
			},
			{
				Name:      "inspect",
				Usage:     "validate a backup or snapshot file and print its record counts",
				ArgsUsage: "<file>",
				Action: func(ctx *cli.Context) error {
					if ctx.NArg() != 1 {
						return errors.New("inspect needs exactly one file")
					}
					return Inspect(out, ctx.Args().First())
				},
			},
		},
	}
}

func loadConfig(ctx *cli.Context, deps Deps) (*config.Config, error) {
	load := deps.LoadConfig
	if load == nil {
		load = config.Load
	}
	cfg, err := load(ctx.String("config"))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func run(ctx context.Context, fn func(context.Context, *config.Config) error, cfg *config.Config, name string) error {
	if fn == nil {
		return fmt.Errorf("%s runner is not configured", name)
	}
	return fn(ctx, cfg)
}

// Inspect decodes the snapshot at path and prints its header and counts.
func Inspect(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	snap, err := store.DecodeSnapshot(f)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	fmt.Fprintf(w, "version:     %s\n", snap.Version)
	fmt.Fprintf(w, "exported at: %s\n", snap.ExportedAt.Format(time.RFC3339))

	counts := snap.Counts()
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-12s %s\n", name, humanize.Comma(int64(counts[name])))
	}
	return nil
}

// PrintFiles lists backup files with their size and age relative to now.
func PrintFiles(w io.Writer, files []backup.File, now time.Time) {
	if len(files) == 0 {
		fmt.Fprintln(w, "no backups")
		return
	}
	for _, f := range files {
		fmt.Fprintf(w, "%-8s %-44s %9s  %s\n", f.Kind, f.Name, humanize.Bytes(uint64(f.Size)), humanize.RelTime(f.ModTime, now, "ago", "from now"))
	}
}
