package main

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Strategy selects how the TestManager commits interesting candidates
// relative to their submission order.
type Strategy string

const (
	Conservative     Strategy = "conservative"
	FastConservative Strategy = "fast-conservative"
	NonDeterministic Strategy = "non-deterministic"
)

// ManagerConfig tunes the TestManager's speculative search.
type ManagerConfig struct {
	Workers         int
	Strategy        Strategy
	CacheEnabled    bool
	GiveUp          bool
	GiveUpThreshold int
	MaxImprovement  int64 // <=0 disables the filter
	AlsoInteresting int   // <0 disables
	SaveDir         string
	Verbose         bool
	DieOnPassBug    bool
	// SkipSignal, when non-nil, is read by the fill loop: a value
	// received on it ends the current (pass, test case) exactly as if
	// Transform had returned Stop, without affecting any other pass.
	SkipSignal <-chan struct{}
}

// TestManager is the parallel speculative search: it maintains a pool
// of in-flight candidate variants for one (pass, test case) at a time,
// commits the earliest interesting one according to Strategy, and
// applies the give-up heuristic. This is the engine's heart.
type TestManager struct {
	cfg    ManagerConfig
	cache  *ResultCache
	runner TestRunner
	stats  *PassStatistic
	cases  []*TestCase
}

// NewTestManager wires a TestManager around a shared ResultCache,
// TestRunner, and PassStatistic for one reducer run.
func NewTestManager(cfg ManagerConfig, cache *ResultCache, runner TestRunner, stats *PassStatistic, cases []*TestCase) *TestManager {
	return &TestManager{cfg: cfg, cache: cache, runner: runner, stats: stats, cases: cases}
}

// RunPass runs one (pass, arg) over every test case to a local fixed
// point.
func (m *TestManager) RunPass(ctx context.Context, registry *Registry, entry PassEntry) error {
	pass, ok := registry.Lookup(entry.Kind)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPass, entry.Kind)
	}

	for _, tc := range m.cases {
		if err := m.runOnTestCase(ctx, pass, entry, tc); err != nil {
			return err
		}
	}

	return nil
}

// runOnTestCase implements the Seeding → Running → Committed →
// Exhausted state machine for one (pass, test case).
func (m *TestManager) runOnTestCase(ctx context.Context, pass Pass, entry PassEntry, tc *TestCase) error {
	state := pass.New(tc, entry.Arg)
	stopped := false
	consecutiveRejects := 0

	var variants []*Variant
	nextSubmission := 0
	var passBugErr error

	cleanupAll := func() {
		g, _ := errgroup.WithContext(context.Background())
		for _, v := range variants {
			v := v
			g.Go(func() error {
				v.discard()
				return nil
			})
		}
		_ = g.Wait()
		variants = nil
	}
	defer cleanupAll()

	for {
		// Fill the queue up to N in-flight variants.
		for len(variants) < m.cfg.Workers && !stopped {
			select {
			case <-ctx.Done():
				cleanupAll()
				return ctx.Err()
			case <-m.cfg.SkipSignal:
				stopped = true
				if m.cfg.Verbose {
					fmt.Printf("[manager] skip key pressed, ending pass %s/%s early\n", entry.Kind, entry.Arg)
				}
				continue
			default:
			}

			sandbox, err := CreateSandbox(m.cases)
			if err != nil {
				return err
			}

			result, newState := pass.Transform(sandbox.Path(tc), entry.Arg, state)

			switch result {
			case Stop:
				sandbox.Cleanup()
				stopped = true

			case Error:
				sandbox.Cleanup()
				m.stats.RecordFailed(entry.Kind, entry.Arg)
				stopped = true
				if m.cfg.DieOnPassBug {
					passBugErr = fmt.Errorf("%w: %s/%s", ErrPassBug, entry.Kind, entry.Arg)
				} else if m.cfg.Verbose {
					fmt.Printf("[manager] pass %s/%s reported an internal error\n", entry.Kind, entry.Arg)
				}

			case Ok:
				v := &Variant{submissionIndex: nextSubmission, sandbox: sandbox, state: newState}
				nextSubmission++
				v.start(ctx, m.runner, m.cache, m.cases)
				variants = append(variants, v)

				state = pass.Advance(sandbox.Path(tc), entry.Arg, newState)
			}
		}

		if passBugErr != nil {
			cleanupAll()
			return passBugErr
		}

		if stopped && len(variants) == 0 {
			return nil
		}

		committed, committedVariant, err := m.reap(ctx, &variants, tc)
		if err != nil {
			return err
		}

		if committed {
			if err := committedVariant.sandbox.CommitTo(tc); err != nil {
				return err
			}
			m.stats.RecordWorked(entry.Kind, entry.Arg)

			// Discard every other in-flight variant in parallel.
			g, _ := errgroup.WithContext(context.Background())
			for _, v := range variants {
				if v == committedVariant {
					continue
				}
				v := v
				g.Go(func() error { v.discard(); return nil })
			}
			_ = g.Wait()
			committedVariant.sandbox.Cleanup()

			state = pass.AdvanceOnSuccess(tc.Path, entry.Arg, committedVariant.state)
			stopped = false
			consecutiveRejects = 0
			variants = nil
			nextSubmission = 0
		} else {
			m.stats.RecordFailed(entry.Kind, entry.Arg)
			consecutiveRejects++
			if m.cfg.GiveUp && consecutiveRejects >= m.cfg.GiveUpThreshold {
				if m.cfg.Verbose {
					fmt.Printf("[manager] give-up: %s/%s exceeded %d consecutive rejects\n", entry.Kind, entry.Arg, m.cfg.GiveUpThreshold)
				}
				stopped = true
				cleanupAll()
			}
		}
	}
}

// reap waits for and removes the variant(s) whose verdict is now known,
// per the active strategy, discarding NotInteresting/AlsoInteresting
// candidates and returning the committed one (if any). It removes the
// reaped variant (the head, or for non-deterministic whichever finished
// first) from *variants; after a commit the caller discards the rest.
func (m *TestManager) reap(ctx context.Context, variants *[]*Variant, tc *TestCase) (bool, *Variant, error) {
	switch m.cfg.Strategy {
	case NonDeterministic:
		return m.reapNonDeterministic(ctx, variants, tc)
	default:
		// conservative and fast-conservative share the same outcome —
		// commit strictly in submission order — differing only in how
		// eagerly they poll non-head workers, which this single-process
		// implementation does not need to distinguish operationally.
		return m.reapOrdered(ctx, variants, tc)
	}
}

func (m *TestManager) reapOrdered(ctx context.Context, variants *[]*Variant, tc *TestCase) (bool, *Variant, error) {
	list := *variants
	if len(list) == 0 {
		return false, nil, nil
	}

	head := list[0]

	var res variantResult
	select {
	case res = <-head.done:
	case <-ctx.Done():
		return false, nil, ctx.Err()
	}

	*variants = list[1:]

	if res.err != nil && m.cfg.Verbose {
		fmt.Printf("[manager] predicate run failed, treating as not-interesting: %v\n", res.err)
	}

	verdict := m.applyMaxImprovement(res.verdict, head, tc)

	switch verdict {
	case Interesting:
		return true, head, nil
	case AlsoInteresting:
		m.saveAlsoInteresting(head)
		head.discard()
		return false, nil, nil
	default:
		head.discard()
		return false, nil, nil
	}
}

func (m *TestManager) reapNonDeterministic(ctx context.Context, variants *[]*Variant, tc *TestCase) (bool, *Variant, error) {
	list := *variants
	if len(list) == 0 {
		return false, nil, nil
	}

	cases := make([]chan variantResult, len(list))
	for i, v := range list {
		cases[i] = v.done
	}

	idx, res, err := selectFirst(ctx, cases)
	if err != nil {
		return false, nil, err
	}

	winner := list[idx]
	*variants = append(append([]*Variant{}, list[:idx]...), list[idx+1:]...)

	if res.err != nil && m.cfg.Verbose {
		fmt.Printf("[manager] predicate run failed, treating as not-interesting: %v\n", res.err)
	}

	verdict := m.applyMaxImprovement(res.verdict, winner, tc)

	switch verdict {
	case Interesting:
		return true, winner, nil
	case AlsoInteresting:
		m.saveAlsoInteresting(winner)
		winner.discard()
		return false, nil, nil
	default:
		winner.discard()
		return false, nil, nil
	}
}

// applyMaxImprovement discards an otherwise-Interesting candidate
// whose size delta exceeds the configured ceiling, a debugging knob for
// capping how much a single commit may shrink a test case.
func (m *TestManager) applyMaxImprovement(v Verdict, variant *Variant, tc *TestCase) Verdict {
	if v != Interesting || m.cfg.MaxImprovement <= 0 {
		return v
	}

	origInfo, err1 := os.Stat(tc.Path)
	newInfo, err2 := os.Stat(variant.sandbox.Path(tc))
	if err1 != nil || err2 != nil {
		return v
	}

	delta := origInfo.Size() - newInfo.Size()
	if delta > m.cfg.MaxImprovement {
		return NotInteresting
	}

	return v
}

func (m *TestManager) saveAlsoInteresting(v *Variant) {
	if m.cfg.SaveDir == "" {
		return
	}
	dest := fmt.Sprintf("%s/also-interesting-%d-%d", m.cfg.SaveDir, time.Now().UnixNano(), v.submissionIndex)
	_ = os.MkdirAll(m.cfg.SaveDir, 0755)
	_ = copyDir(v.sandbox.Dir, dest)
}

func copyDir(src, dst string) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dst, 0755); err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if err := copyFile(src+"/"+e.Name(), dst+"/"+e.Name()); err != nil {
			return err
		}
	}
	return nil
}

// selectFirst returns the index and result of whichever channel fires
// first, used by the non-deterministic strategy.
func selectFirst(ctx context.Context, chs []chan variantResult) (int, variantResult, error) {
	type arrival struct {
		idx int
		res variantResult
	}
	arrived := make(chan arrival, len(chs))
	stop := make(chan struct{})
	var wg sync.WaitGroup

	for i, ch := range chs {
		i, ch := i, ch
		wg.Add(1)
		go func() {
			defer wg.Done()
			select {
			case r := <-ch:
				arrived <- arrival{i, r}
			case <-stop:
			case <-ctx.Done():
			}
		}()
	}

	// Results that lost the race go back on their channels so a later
	// reap still sees them.
	defer func() {
		close(stop)
		wg.Wait()
		for len(arrived) > 0 {
			a := <-arrived
			chs[a.idx] <- a.res
		}
	}()

	select {
	case a := <-arrived:
		return a.idx, a.res, nil
	case <-ctx.Done():
		return 0, variantResult{}, ctx.Err()
	}
}
