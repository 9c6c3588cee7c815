package main

import (
	"fmt"
	"sort"
	"sync"
)

// passKey identifies one (pass, arg) pair for statistics purposes.
type passKey struct {
	kind string
	arg  string
}

// passCounts is an append-only (mutated only by the TestManager)
// worked/failed accumulator for one (pass, arg) pair.
type passCounts struct {
	worked int
	failed int
}

// PassStatistic accumulates worked/failed counts per (pass, arg) for
// the end-of-run "N passed, M failed" summary report.
type PassStatistic struct {
	mu     sync.Mutex
	counts map[passKey]*passCounts
}

// NewPassStatistic creates an empty accumulator.
func NewPassStatistic() *PassStatistic {
	return &PassStatistic{counts: make(map[passKey]*passCounts)}
}

// RecordWorked increments the worked (committed) count for (kind, arg).
func (s *PassStatistic) RecordWorked(kind, arg string) {
	s.entry(kind, arg).worked++
}

// RecordFailed increments the failed (rejected or errored) count.
func (s *PassStatistic) RecordFailed(kind, arg string) {
	s.entry(kind, arg).failed++
}

func (s *PassStatistic) entry(kind, arg string) *passCounts {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := passKey{kind, arg}
	c, ok := s.counts[key]
	if !ok {
		c = &passCounts{}
		s.counts[key] = c
	}
	return c
}

// Report renders a stable, sorted summary table.
func (s *PassStatistic) Report() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]passKey, 0, len(s.counts))
	for k := range s.counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].kind != keys[j].kind {
			return keys[i].kind < keys[j].kind
		}
		return keys[i].arg < keys[j].arg
	})

	out := ""
	for _, k := range keys {
		c := s.counts[k]
		out += fmt.Sprintf("  %-16s %-24s worked=%-6d failed=%-6d\n", k.kind, k.arg, c.worked, c.failed)
	}
	return out
}
