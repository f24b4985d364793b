// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package simulation_test

import (
	"context"
	"log/slog"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/holomush/fountain/internal/catalog"
	"github.com/holomush/fountain/internal/eventbus"
	"github.com/holomush/fountain/internal/hud"
	"github.com/holomush/fountain/internal/journal"
	"github.com/holomush/fountain/internal/panel"
	"github.com/holomush/fountain/internal/quest"
	"github.com/holomush/fountain/internal/schedule"
	"github.com/holomush/fountain/internal/simulation"
)

// world is a fully wired core for one level.
type world struct {
	sched    *schedule.Scheduler
	bus      *eventbus.Bus
	hud      *hud.HUD
	registry *quest.Registry
	panels   *panel.Manager
	locales  *panel.Locales
	journal  *journal.MemoryStore
	recorder *journal.Recorder
	level    *catalog.Level
}

func newWorld(doc *catalog.Document) *world {
	logger := slog.New(slog.DiscardHandler)
	w := &world{
		sched:   schedule.New(),
		bus:     eventbus.New(eventbus.WithLogger(logger)),
		journal: journal.NewMemoryStore(),
	}
	w.hud = hud.New(w.sched, hud.WithLogger(logger))
	w.registry = quest.NewRegistry(
		quest.WithPresenter(w.hud),
		quest.WithScheduler(w.sched),
		quest.WithBus(w.bus),
		quest.WithLogger(logger),
	)
	w.hud.Attach(w.registry)
	w.panels = panel.NewManager(w.bus, logger)
	w.locales = panel.NewLocales(w.bus)
	w.recorder = journal.NewRecorder(w.journal, w.bus, journal.WithLogger(logger))

	lvl, err := catalog.Build(doc, catalog.Deps{Tasks: w.registry, Logger: logger})
	Expect(err).NotTo(HaveOccurred())
	w.level = lvl
	return w
}

func (w *world) loop(opts ...simulation.Option) *simulation.Loop {
	l, err := simulation.New(w.level, simulation.Deps{
		Scheduler: w.sched,
		Bus:       w.bus,
		Panels:    w.panels,
		Locales:   w.locales,
		Logger:    slog.New(slog.DiscardHandler),
	}, opts...)
	Expect(err).NotTo(HaveOccurred())
	return l
}

func courtyard() *catalog.Document {
	data, err := os.ReadFile("../catalog/testdata/courtyard.yaml")
	Expect(err).NotTo(HaveOccurred())
	doc, err := catalog.Parse(data)
	Expect(err).NotTo(HaveOccurred())
	return doc
}

func kinds(entries []journal.Entry) map[journal.Kind]int {
	out := make(map[journal.Kind]int)
	for _, e := range entries {
		out[e.Kind]++
	}
	return out
}

var _ = Describe("Loop", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Describe("running the courtyard level", func() {
		var (
			w     *world
			res   simulation.Result
			ticks int
		)

		BeforeEach(func() {
			w = newWorld(courtyard())
			DeferCleanup(w.recorder.Close)

			l := w.loop(simulation.WithOnTick(func(context.Context, simulation.Tick) { ticks++ }))
			var err error
			res, err = l.Run(ctx)
			Expect(err).NotTo(HaveOccurred())
		})

		It("finishes with no active tasks or pending work", func() {
			Expect(res.Reason).To(Equal(simulation.StopFinished))
			Expect(res.Skipped).To(BeZero())
			Expect(w.registry.Len()).To(BeZero())
			Expect(w.sched.Len()).To(BeZero())
			Expect(w.hud.Len()).To(BeZero())
			Expect(ticks).To(Equal(res.Ticks))
		})

		It("completes every trigger", func() {
			Expect(w.level.Triggers.Completed()).To(Equal(5))
		})

		It("removes consumed objects from the scene", func() {
			Expect(w.level.Scene.Removed()).To(Equal(6))
			Expect(w.level.Scene.Exists("lever-a")).To(BeTrue())
			Expect(w.level.Scene.Exists("lever-b")).To(BeFalse())
			Expect(w.level.Scene.Exists("coin-2")).To(BeFalse())
		})

		It("journals each task's lifecycle", func() {
			for _, task := range []string{"reach-fountain", "gather-gems", "pull-levers", "pray", "coins"} {
				entries, err := w.journal.Recent(ctx, task, 0)
				Expect(err).NotTo(HaveOccurred())
				counts := kinds(entries)
				Expect(counts[journal.KindStarted]).To(Equal(1), task)
				Expect(counts[journal.KindCompleted]).To(Equal(1), task)
				Expect(counts[journal.KindRetired]).To(Equal(1), task)
				Expect(entries[0].Kind).To(Equal(journal.KindStarted), task)
				Expect(entries[len(entries)-1].Kind).To(Equal(journal.KindRetired), task)
			}
		})

		It("routes panel and locale steps through the bus", func() {
			Expect(w.panels.State().Paused).To(BeFalse())
			Expect(w.panels.State().TimeScale).To(Equal(1.0))
			Expect(w.locales.Current()).To(Equal(eventbus.LocaleEn))
		})

		It("freezes deferred time while paused", func() {
			// The last completion lands at 1.8s and the 100ms pause holds
			// retirement back past 4.3s.
			Expect(res.Elapsed).To(BeNumerically(">", 4300*time.Millisecond))
		})
	})

	It("stops at MaxTicks", func() {
		w := newWorld(courtyard())
		DeferCleanup(w.recorder.Close)

		res, err := w.loop(simulation.WithMaxTicks(10)).Run(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Reason).To(Equal(simulation.StopMaxTicks))
		Expect(res.Ticks).To(Equal(10))
		Expect(res.Elapsed).To(Equal(10 * simulation.DefaultStep))
	})

	It("returns an error when cancelled", func() {
		w := newWorld(courtyard())
		DeferCleanup(w.recorder.Close)
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		res, err := w.loop().Run(cancelled)
		Expect(err).To(MatchError(ContainSubstring("simulation cancelled")))
		Expect(res.Reason).To(Equal(simulation.StopCancelled))
		Expect(res.Ticks).To(BeZero())
	})

	It("skips steps whose object is gone", func() {
		doc := &catalog.Document{
			Version: "1.0.0",
			Objects: []catalog.ObjectSpec{
				{ID: "player", Tag: "Player"},
				{ID: "gem", Tag: "Collectible"},
			},
			Triggers: []catalog.TriggerSpec{
				{Task: "gems", Target: 2, Kind: catalog.KindCollectItem},
			},
			Script: []catalog.Step{
				{At: 0, Action: catalog.ActionEnter, Trigger: "gems", Object: "gem"},
				{At: catalog.Duration(100 * time.Millisecond), Action: catalog.ActionEnter, Trigger: "gems", Object: "gem"},
			},
		}
		w := newWorld(doc)
		DeferCleanup(w.recorder.Close)

		res, err := w.loop(simulation.WithMaxTicks(20)).Run(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Skipped).To(Equal(1))
		snap, ok := w.registry.Snapshot("gems")
		Expect(ok).To(BeTrue())
		Expect(snap.Current).To(Equal(1))
	})

	It("holds retirement while the game is paused", func() {
		doc := &catalog.Document{
			Version:  "1.0.0",
			Objects:  []catalog.ObjectSpec{{ID: "player", Tag: "Player"}},
			Triggers: []catalog.TriggerSpec{{Task: "walk", Target: 1, Kind: catalog.KindAreaEnter}},
			Script: []catalog.Step{
				{At: 0, Action: catalog.ActionEnter, Trigger: "walk", Object: "player"},
				{At: 0, Action: catalog.ActionPublish, Event: catalog.EventPause},
			},
		}
		w := newWorld(doc)
		DeferCleanup(w.recorder.Close)

		l := w.loop()
		runCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()

		res, err := l.Run(runCtx)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Reason).To(Equal(simulation.StopPaused))
		Expect(res.Ticks).To(Equal(1))
		Expect(l.Stalled()).To(BeTrue())
		Expect(l.Done()).To(BeFalse())
		Expect(w.registry.RetirementPending("walk")).To(BeTrue())
		Expect(w.panels.State().Paused).To(BeTrue())
	})

	It("finishes once a paused game continues", func() {
		doc := &catalog.Document{
			Version:  "1.0.0",
			Objects:  []catalog.ObjectSpec{{ID: "player", Tag: "Player"}},
			Triggers: []catalog.TriggerSpec{{Task: "walk", Target: 1, Kind: catalog.KindAreaEnter}},
			Script: []catalog.Step{
				{At: 0, Action: catalog.ActionEnter, Trigger: "walk", Object: "player"},
				{At: 0, Action: catalog.ActionPublish, Event: catalog.EventPause},
				{At: catalog.Duration(time.Second), Action: catalog.ActionPublish, Event: catalog.EventContinue},
			},
		}
		w := newWorld(doc)
		DeferCleanup(w.recorder.Close)

		res, err := w.loop().Run(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Reason).To(Equal(simulation.StopFinished))
		Expect(w.registry.Len()).To(BeZero())
		Expect(res.Elapsed).To(BeNumerically(">", time.Second+2500*time.Millisecond))
	})

	It("ticks step by step", func() {
		w := newWorld(courtyard())
		DeferCleanup(w.recorder.Close)
		l := w.loop(simulation.WithStep(100 * time.Millisecond))

		first := l.Tick(ctx)
		Expect(first.N).To(Equal(1))
		Expect(first.Applied).To(Equal(1))
		Expect(l.Elapsed()).To(Equal(100 * time.Millisecond))
		Expect(l.Remaining()).To(Equal(12))
		Expect(l.Done()).To(BeFalse())
	})

	It("rejects missing dependencies", func() {
		_, err := simulation.New(nil, simulation.Deps{})
		Expect(err).To(HaveOccurred())
	})
})
