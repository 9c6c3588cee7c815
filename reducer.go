package main

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ReducerConfig is everything the Reducer needs for one run, already
// resolved from flags and an optional config file.
type ReducerConfig struct {
	Predicate     string
	Cases         []string
	Manager       ManagerConfig
	Tidy          bool
	SkipInitial   bool
	PassGroupFile string
	Active        map[Option]bool
	FastRegistry  map[string]FastPredicate
	NoFastTest    bool
	Env           []string
}

// Reducer is the top-level orchestrator: validate → build pass group →
// sanity check → backup → first → main (to fixed point) → last →
// report.
type Reducer struct {
	cfg          ReducerConfig
	registry     *Registry
	cache        *ResultCache
	stats        *PassStatistic
	runner       TestRunner
	cleanupFuncs []func() error
	mu           sync.Mutex
}

// NewReducer wires a Reducer around a freshly built Registry and the
// runner chosen for this predicate.
func NewReducer(cfg ReducerConfig) *Reducer {
	registry := NewRegistry()
	runner := NewRunner(cfg.Predicate, cfg.Env, cfg.Manager.AlsoInteresting, cfg.NoFastTest, cfg.FastRegistry)

	return &Reducer{
		cfg:      cfg,
		registry: registry,
		cache:    NewResultCache(cfg.Manager.CacheEnabled),
		stats:    NewPassStatistic(),
		runner:   runner,
	}
}

// RegisterCleanup adds a teardown step run in LIFO order by Cleanup.
func (r *Reducer) RegisterCleanup(fn func() error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cleanupFuncs = append(r.cleanupFuncs, fn)
}

// Cleanup runs every registered cleanup function in reverse order,
// collecting (not stopping on) individual failures.
func (r *Reducer) Cleanup() error {
	r.mu.Lock()
	funcs := make([]func() error, len(r.cleanupFuncs))
	copy(funcs, r.cleanupFuncs)
	r.mu.Unlock()

	var errs []error
	for i := len(funcs) - 1; i >= 0; i-- {
		if err := funcs[i](); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("cleanup errors: %v", errs)
	}
	return nil
}

// Run executes the full reduction: validate, build the pass group,
// sanity-check, back up, then run first/main/last.
func (r *Reducer) Run(ctx context.Context) error {
	cases, err := NewTestCases(r.cfg.Cases)
	if err != nil {
		return err
	}
	if len(cases) == 0 {
		return ErrNoTestCases
	}

	entries, err := r.buildCatalogue()
	if err != nil {
		return err
	}

	if err := r.checkPrerequisites(ctx, entries); err != nil {
		return err
	}

	group := BuildPassGroup(entries, r.cfg.Active)

	if err := r.sanityCheck(ctx, cases); err != nil {
		return err
	}

	if !r.cfg.Tidy {
		for _, tc := range cases {
			if err := tc.Backup(); err != nil {
				return err
			}
		}
	}

	manager := NewTestManager(r.cfg.Manager, r.cache, r.runner, r.stats, cases)

	if !r.cfg.SkipInitial {
		if err := r.runPhase(ctx, manager, group.First); err != nil {
			return err
		}
	}

	if err := r.runMainToFixedPoint(ctx, manager, group.Main, cases); err != nil {
		return err
	}

	if err := r.runPhase(ctx, manager, group.Last); err != nil {
		return err
	}

	fmt.Print(r.stats.Report())

	return nil
}

// buildCatalogue resolves the active pass list: either the built-in
// catalogue or a user-supplied pass-group file, which are mutually
// exclusive.
func (r *Reducer) buildCatalogue() ([]PassEntry, error) {
	if r.cfg.PassGroupFile != "" {
		return LoadPassGroupFile(r.cfg.PassGroupFile, r.registry)
	}
	return BuiltinCatalogue(), nil
}

// checkPrerequisites verifies every distinct pass kind named by entries
// has its external tools available, in parallel.
func (r *Reducer) checkPrerequisites(ctx context.Context, entries []PassEntry) error {
	seen := make(map[string]bool)
	g, _ := errgroup.WithContext(ctx)

	for _, e := range entries {
		if seen[e.Kind] {
			continue
		}
		seen[e.Kind] = true

		kind := e.Kind
		g.Go(func() error {
			pass, ok := r.registry.Lookup(kind)
			if !ok {
				return fmt.Errorf("%w: %s", ErrUnknownPass, kind)
			}
			if !pass.CheckPrerequisites() {
				return fmt.Errorf("%w: %s", ErrPrerequisitesMissing, kind)
			}
			return nil
		})
	}

	return g.Wait()
}

// sanityCheck runs the predicate against the unmodified test cases and
// requires Interesting before any pass is allowed to run.
func (r *Reducer) sanityCheck(ctx context.Context, cases []*TestCase) error {
	sandbox, err := CreateSandbox(cases)
	if err != nil {
		return err
	}
	defer sandbox.Cleanup()

	verdict, _, err := r.runner.Run(ctx, sandbox.Dir)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSanityCheckFailed, err)
	}
	if verdict != Interesting {
		return ErrSanityCheckFailed
	}
	return nil
}

// runPhase runs every entry in a phase exactly once, in priority order.
func (r *Reducer) runPhase(ctx context.Context, manager *TestManager, entries []PassEntry) error {
	for _, e := range entries {
		if err := manager.RunPass(ctx, r.registry, e); err != nil {
			return err
		}
	}
	return nil
}

// runMainToFixedPoint repeats the main phase until a full pass over
// every entry produces no further reduction in total test-case size.
func (r *Reducer) runMainToFixedPoint(ctx context.Context, manager *TestManager, entries []PassEntry, cases []*TestCase) error {
	for {
		before, err := TotalSize(cases)
		if err != nil {
			return err
		}

		if err := r.runPhase(ctx, manager, entries); err != nil {
			return err
		}

		after, err := TotalSize(cases)
		if err != nil {
			return err
		}

		if after >= before {
			return nil
		}
	}
}
