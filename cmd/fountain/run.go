// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/fountain/internal/catalog"
	"github.com/holomush/fountain/internal/config"
	"github.com/holomush/fountain/internal/eventbus"
	"github.com/holomush/fountain/internal/hud"
	"github.com/holomush/fountain/internal/journal"
	"github.com/holomush/fountain/internal/logging"
	"github.com/holomush/fountain/internal/observability"
	"github.com/holomush/fountain/internal/panel"
	"github.com/holomush/fountain/internal/quest"
	"github.com/holomush/fountain/internal/schedule"
	"github.com/holomush/fountain/internal/simulation"
	"github.com/holomush/fountain/pkg/errutil"
)

// runConfig holds flags that are not part of config.Config.
type runConfig struct {
	levelFile string
	quiet     bool
}

// NewRunCmd creates the run subcommand.
func NewRunCmd() *cobra.Command {
	return newRunCmd(nil)
}

func newRunCmd(deps *RunDeps) *cobra.Command {
	rc := &runConfig{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a level script through the quest core",
		Long: `Load a level file, build its scene and task triggers, and replay its
script on a fixed-step simulated clock. The task HUD is printed whenever it
changes, followed by a summary of the run.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWithDeps(cmd.Context(), rc, cmd, deps)
		},
	}

	cmd.Flags().StringVar(&rc.levelFile, "level", "", "level file (YAML)")
	cmd.Flags().BoolVar(&rc.quiet, "quiet", false, "print only the run summary")
	cmd.Flags().Duration("tick", simulation.DefaultStep, "simulated time per tick")
	cmd.Flags().Int("max-ticks", 0, "stop after this many ticks (0 = until the level finishes)")
	cmd.Flags().String("journal", config.JournalMemory, "journal backend (memory or postgres)")
	cmd.Flags().String("database-url", "", "PostgreSQL URL for the postgres journal (default: DATABASE_URL)")
	cmd.Flags().String("metrics-addr", "", "metrics/health HTTP address (empty = disabled)")
	_ = cmd.MarkFlagRequired("level")

	return cmd
}

// game is the wired quest core for one run.
type game struct {
	sched    *schedule.Scheduler
	bus      *eventbus.Bus
	hud      *hud.HUD
	registry *quest.Registry
	panels   *panel.Manager
	locales  *panel.Locales
}

func newGame(cfg config.Config, logger *slog.Logger) *game {
	g := &game{sched: schedule.New()}
	g.bus = eventbus.New(
		eventbus.WithHistorySize(cfg.Bus.HistorySize),
		eventbus.WithLogger(logging.Component(logger, "eventbus")))
	g.hud = hud.New(g.sched,
		hud.WithFadeIn(cfg.HUD.FadeIn),
		hud.WithWidth(cfg.HUD.Width),
		hud.WithLogger(logging.Component(logger, "hud")))
	g.registry = quest.NewRegistry(
		quest.WithPresenter(g.hud),
		quest.WithScheduler(g.sched),
		quest.WithBus(g.bus),
		quest.WithRetirement(cfg.Quest.VisibleDelay, cfg.Quest.FadeDelay),
		quest.WithLogger(logging.Component(logger, "quest")))
	g.hud.Attach(g.registry)
	g.panels = panel.NewManager(g.bus, logging.Component(logger, "panel"))
	g.locales = panel.NewLocales(g.bus)
	return g
}

// runWithDeps runs a level with injectable dependencies.
// If deps is nil, default implementations are used.
func runWithDeps(ctx context.Context, rc *runConfig, cmd *cobra.Command, deps *RunDeps) error {
	if deps == nil {
		deps = &RunDeps{}
	}
	if deps.JournalFactory == nil {
		deps.JournalFactory = openJournal
	}
	if deps.ObservabilityServerFactory == nil {
		deps.ObservabilityServerFactory = func(addr string, readinessChecker observability.ReadinessChecker) ObservabilityServer {
			return observability.NewServer(addr, readinessChecker)
		}
	}
	if deps.DatabaseURLGetter == nil {
		deps.DatabaseURLGetter = func() string { return os.Getenv("DATABASE_URL") }
	}

	cfg, err := config.Load(config.ResolvePath(configFile), cmd.Flags())
	if err != nil {
		return err
	}
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return oops.Code("CONFIG_INVALID").Wrap(err)
	}
	logger := logging.Setup("fountain", version, cfg.Log.Format, level, cmd.ErrOrStderr())

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	data, err := os.ReadFile(rc.levelFile)
	if err != nil {
		return oops.Code("LEVEL_READ_FAILED").With("path", rc.levelFile).Wrap(err)
	}
	if err := catalog.ValidateSchema(data); err != nil {
		return err
	}

	var ready atomic.Bool
	var metrics *observability.Metrics
	if cfg.Metrics.Addr != "" {
		srv := deps.ObservabilityServerFactory(cfg.Metrics.Addr, ready.Load)
		errCh, err := srv.Start()
		if err != nil {
			return oops.Code("OBSERVABILITY_START_FAILED").With("addr", cfg.Metrics.Addr).Wrap(err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Stop(shutdownCtx); err != nil {
				errutil.LogError(logger, "observability server stop failed", err)
			}
		}()
		go func() {
			for err := range errCh {
				errutil.LogError(logger, "observability server error", oops.Wrap(err))
			}
		}()
		metrics = srv.Metrics()
	}

	g := newGame(cfg, logger)

	databaseURL := cfg.Journal.DatabaseURL
	if databaseURL == "" {
		databaseURL = deps.DatabaseURLGetter()
	}
	store, err := deps.JournalFactory(ctx, cfg.Journal.Backend, databaseURL)
	if err != nil {
		return err
	}
	defer store.Close()
	recorder := journal.NewRecorder(store, g.bus,
		journal.WithRetry(cfg.Journal.Retries, cfg.Journal.RetryBase),
		journal.WithLogger(logging.Component(logger, "journal")))
	defer recorder.Close()

	lvl, err := catalog.Load(data, catalog.Deps{
		Tasks:         g.registry,
		ScriptTimeout: cfg.Simulation.ScriptTimeout,
		Logger:        logging.Component(logger, "trigger"),
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	loop, err := simulation.New(lvl, simulation.Deps{
		Scheduler: g.sched,
		Bus:       g.bus,
		Panels:    g.panels,
		Locales:   g.locales,
		Logger:    logging.Component(logger, "simulation"),
	},
		simulation.WithStep(cfg.Simulation.Tick),
		simulation.WithMaxTicks(cfg.Simulation.MaxTicks),
		simulation.WithOnTick(func(_ context.Context, tick simulation.Tick) {
			if metrics != nil {
				metrics.Ticks.Inc()
			}
			if g.hud.Changed() && !rc.quiet {
				printHUD(out, tick, g.hud)
			}
		}))
	if err != nil {
		return err
	}

	ready.Store(true)
	res, runErr := loop.Run(ctx)
	ready.Store(false)
	if metrics != nil {
		metrics.Runs.WithLabelValues(string(res.Reason)).Inc()
		metrics.StepsSkipped.Add(float64(res.Skipped))
	}

	entries, err := store.Recent(ctx, "", 0)
	if err != nil {
		errutil.LogWarn(logger, "journal read failed", err)
	}
	printSummary(out, lvl, g, res, len(entries))
	return runErr
}

// openJournal opens the configured journal backend.
func openJournal(ctx context.Context, backend, databaseURL string) (JournalStore, error) {
	switch backend {
	case config.JournalPostgres:
		if databaseURL == "" {
			return nil, oops.Code("CONFIG_INVALID").Errorf("postgres journal needs journal.database_url or DATABASE_URL")
		}
		store, err := journal.OpenPostgres(ctx, databaseURL)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return memoryJournal{journal.NewMemoryStore()}, nil
	}
}

// memoryJournal gives MemoryStore the Close the run command expects.
type memoryJournal struct {
	*journal.MemoryStore
}

func (memoryJournal) Close() {}

func printHUD(w io.Writer, tick simulation.Tick, h *hud.HUD) {
	_, _ = fmt.Fprintf(w, "-- t=%s (tick %d)\n", tick.Elapsed, tick.N)
	_, _ = fmt.Fprintln(w, h.Render())
}

func printSummary(w io.Writer, lvl *catalog.Level, g *game, res simulation.Result, journaled int) {
	_, _ = fmt.Fprintf(w, "level %q %s after %d ticks (%s)\n", lvl.Name, res.Reason, res.Ticks, res.Elapsed)
	_, _ = fmt.Fprintf(w, "  triggers completed: %d/%d\n", lvl.Triggers.Completed(), lvl.Triggers.Len())
	_, _ = fmt.Fprintf(w, "  tasks still active: %d\n", g.registry.Len())
	_, _ = fmt.Fprintf(w, "  objects removed:    %d\n", lvl.Scene.Removed())
	_, _ = fmt.Fprintf(w, "  steps skipped:      %d\n", res.Skipped)
	_, _ = fmt.Fprintf(w, "  journal entries:    %d\n", journaled)
	_, _ = fmt.Fprintf(w, "  locale:             %s\n", g.locales.Current())
}
