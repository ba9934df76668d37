// Command runbook is the CLI entrypoint: it loads configuration and alias
// sources, wires the core pipeline together, and dispatches subcommands via
// internal/cliapp.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/nullstream-dev/runbook/internal/alias"
	"github.com/nullstream-dev/runbook/internal/cache"
	"github.com/nullstream-dev/runbook/internal/cliapp"
	"github.com/nullstream-dev/runbook/internal/config"
	"github.com/nullstream-dev/runbook/internal/engine"
	"github.com/nullstream-dev/runbook/internal/execshell"
	"github.com/nullstream-dev/runbook/internal/execshell/tmux"
	"github.com/nullstream-dev/runbook/internal/history"
	"github.com/nullstream-dev/runbook/internal/ids"
	"github.com/nullstream-dev/runbook/internal/logging"
	"github.com/nullstream-dev/runbook/internal/resolve"
	"github.com/nullstream-dev/runbook/internal/resolve/firstchoice"
	"github.com/nullstream-dev/runbook/internal/source"
	"github.com/nullstream-dev/runbook/internal/store"
	"github.com/nullstream-dev/runbook/internal/tui"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "runbook:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfgFile := os.Getenv("RUNBOOK_CONFIG")
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	app := cliapp.New("runbook", cliapp.WithDescription("run interactive command playbooks"))

	globalFlags := []cliapp.Flag{
		{Name: "dry", Type: cliapp.FlagBool, Env: "RUNBOOK_DRY", Description: "resolve and record without executing"},
		{Name: "silent", Type: cliapp.FlagBool, Env: "RUNBOOK_SILENT", Description: "suppress log output"},
		{Name: "no-cache", Type: cliapp.FlagBool, Env: "RUNBOOK_NO_CACHE", Description: "bypass the dynamic-variable cache"},
	}

	bootstrap := func(ctx *cliapp.Context) (*engine.Engine, error) {
		dry, _ := ctx.Bool("dry")
		silent, _ := ctx.Bool("silent")
		noCache, _ := ctx.Bool("no-cache")
		return buildEngine(cfg, dry || cfg.Dry, silent || cfg.Silent, noCache || cfg.NoCache)
	}

	_ = app.AddCommand(&cliapp.Command{
		Name:        "run",
		Description: "Pick an alias interactively, or run one by name",
		Usage:       "run [alias]",
		Flags:       globalFlags,
		Execute: func(ctx *cliapp.Context) error {
			eng, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			ctxBg := context.Background()
			if len(ctx.Args()) == 0 {
				res, err := eng.PickAndRun(ctxBg)
				return report(ctx, res, err)
			}
			id, err := ids.Sanitize(ctx.Args()[0])
			if err != nil {
				return err
			}
			res, err := eng.RunById(ctxBg, id)
			return report(ctx, res, err)
		},
	})

	_ = app.AddCommand(&cliapp.Command{
		Name:        "last",
		Description: "Show the most recently executed alias",
		Execute: func(ctx *cliapp.Context) error {
			eng, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			entry, err := eng.ShowLast()
			if err != nil {
				return err
			}
			printEntry(ctx, *entry)
			return nil
		},
	})

	_ = app.AddCommand(&cliapp.Command{
		Name:        "replay",
		Description: "Re-run the most recently executed alias's commands verbatim",
		Aliases:     []string{"r"},
		Flags:       globalFlags,
		Execute: func(ctx *cliapp.Context) error {
			eng, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			res, err := eng.RunLast(context.Background())
			return report(ctx, res, err)
		},
	})

	_ = app.AddCommand(&cliapp.Command{
		Name:        "edit-last",
		Description: "Re-run the last alias, overriding one variable's choice",
		Usage:       "edit-last [identifier]",
		Example:     "edit-last\nedit-last env",
		Aliases:     []string{"edit"},
		Flags:       globalFlags,
		ArgsMax:     1,
		Execute: func(ctx *cliapp.Context) error {
			eng, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			var id ids.Identifier
			if len(ctx.Args()) == 1 {
				id, err = ids.Sanitize(ctx.Args()[0])
				if err != nil {
					return err
				}
			}
			res, err := eng.ModifyLast(context.Background(), id)
			return report(ctx, res, err)
		},
	})

	_ = app.AddCommand(&cliapp.Command{
		Name:        "history",
		Description: "Show recent executions",
		Aliases:     []string{"h", "log"},
		Example:     "history\nhistory -n 25",
		Flags: []cliapp.Flag{
			{Name: "n", Short: 'n', Type: cliapp.FlagInt, Default: "10", Description: "number of entries to show"},
		},
		Execute: func(ctx *cliapp.Context) error {
			eng, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			n, _ := ctx.Int("n")
			entries, err := eng.ShowHistory(int(n))
			if err != nil {
				return err
			}
			for _, e := range entries {
				printEntry(ctx, e)
			}
			return nil
		},
	})

	_ = app.AddCommand(&cliapp.Command{
		Name:        "cache",
		Description: "Inspect or clear the dynamic-variable cache",
		SubCommands: []*cliapp.Command{
			{
				Name:        "clear",
				Description: "Remove every cached entry",
				Execute: func(ctx *cliapp.Context) error {
					store := cache.New(cfg.CachePath, cfg.TTL)
					return store.Clear()
				},
			},
			{
				Name:        "ls",
				Description: "List cached entries",
				Execute: func(ctx *cliapp.Context) error {
					store := cache.New(cfg.CachePath, cfg.TTL)
					entries, err := store.Entries()
					if err != nil {
						return err
					}
					for key, v := range entries {
						stale := ""
						if v.Stale {
							stale = " (stale)"
						}
						fmt.Fprintf(ctx.Output(), "%s%s\n", key, stale)
					}
					return nil
				},
			},
		},
	})

	return app.Run(args)
}

// buildEngine assembles an Engine from configuration: it discovers and
// parses every alias/variable source, builds the alias set, and wires the
// cache, history, executor and resolver per cfg and the per-invocation
// overrides.
func buildEngine(cfg *config.Config, dry, silent, noCache bool) (*engine.Engine, error) {
	log := logging.New(silent)

	aliasFiles, varFiles, err := source.Discover(cfg.RootDirs)
	if err != nil {
		return nil, err
	}

	vstore := store.New()
	var raws []alias.Raw
	for _, f := range aliasFiles {
		rs, err := source.ReadAliases(f)
		if err != nil {
			return nil, err
		}
		raws = append(raws, rs...)
	}
	for _, f := range varFiles {
		vs, err := source.ReadVars(f)
		if err != nil {
			return nil, err
		}
		for _, v := range vs {
			vstore.Add(v)
		}
	}
	vstore.SetDefaults(cfg.Defaults)

	aliases, err := alias.Expand(raws)
	if err != nil {
		return nil, err
	}

	var cacheStore cache.Store
	if noCache {
		cacheStore = cache.NoopStore{}
	} else {
		cacheStore = cache.New(cfg.CachePath, cfg.TTL)
	}

	hist := history.New(cfg.HistoryPath, cfg.HistoryMax)

	var exec engine.Executor
	switch cfg.Executor {
	case "tmux":
		session := cfg.TmuxSession
		if session == "" {
			session, err = tmux.CurrentSession()
			if err != nil {
				return nil, err
			}
		}
		exec = tmux.New(session)
	default:
		exec = execshell.New()
	}

	shell := cfg.EnvVariables["SHELL"]
	var resolver resolve.Resolver
	if !dry && tui.Available() {
		resolver = tui.New(cacheStore, cfg.EnvVariables, shell)
	} else {
		resolver = firstchoice.New(cacheStore, cfg.EnvVariables, shell)
	}

	return &engine.Engine{
		Aliases:  aliases,
		VarStore: vstore,
		Resolver: resolver,
		History:  hist,
		Cache:    cacheStore,
		Executor: exec,
		Env:      cfg.EnvVariables,
		Log:      log,
		Dry:      dry,
		NoCache:  noCache,
	}, nil
}

func report(ctx *cliapp.Context, res *engine.Result, err error) error {
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.Output(), "%s: %d command(s), exit %d\n", res.Resolved.ID, len(res.Resolved.Commands), res.ExitCode)
	if res.ExitCode != 0 {
		os.Exit(res.ExitCode)
	}
	return nil
}

func printEntry(ctx *cliapp.Context, e history.Entry) {
	var parts []string
	for id, cs := range e.Resolved.Choices {
		var vals []string
		for _, c := range cs {
			vals = append(vals, c.Value)
		}
		parts = append(parts, id.String()+"="+strings.Join(vals, ","))
	}
	fmt.Fprintf(ctx.Output(), "[%s] %s at %s (%s)\n", e.ID, e.Resolved.ID, e.At.Format("2006-01-02 15:04:05"), strings.Join(parts, " "))
}
