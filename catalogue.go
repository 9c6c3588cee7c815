package main

import (
	"encoding/json"
	"fmt"
	"os"
)

// Option is one of the closed set of pass-option flags:
// {sanitize, slow, windows}.
type Option string

const (
	OptionSanitize Option = "sanitize"
	OptionSlow     Option = "slow"
	OptionWindows  Option = "windows"
)

func validOption(o Option) bool {
	switch o {
	case OptionSanitize, OptionSlow, OptionWindows:
		return true
	default:
		return false
	}
}

// PassEntry is one element of the catalogue: {pass, arg, phase_priority},
// plus the include/exclude option gates.
type PassEntry struct {
	Kind     string
	Arg      string
	Priority int
	Include  map[Option]bool
	Exclude  map[Option]bool

	// phaseOverride is set when an entry came from a pass-group file,
	// which assigns phases explicitly instead of via phaseOf.
	phaseOverride string
}

func (e PassEntry) included(active map[Option]bool) bool {
	if len(e.Include) == 0 {
		return true
	}
	for o := range e.Include {
		if active[o] {
			return true
		}
	}
	return false
}

func (e PassEntry) excluded(active map[Option]bool) bool {
	if len(e.Exclude) == 0 {
		return false
	}
	for o := range e.Exclude {
		if active[o] {
			return true
		}
	}
	return false
}

// PassGroup is {first, main, last: []PassEntry}, each sorted by
// descending priority with ties broken by catalogue declaration order.
type PassGroup struct {
	First []PassEntry
	Main  []PassEntry
	Last  []PassEntry
}

// Registry resolves a PassEntry.Kind to the concrete Pass
// implementation. New pass kinds are registered here once, at process
// start, and never mutated afterward.
type Registry struct {
	passes map[string]Pass
}

// NewRegistry builds the fixed registry of concrete pass kinds.
func NewRegistry() *Registry {
	r := &Registry{passes: make(map[string]Pass)}
	for _, p := range []Pass{
		BlankPass{},
		IncludesPass{},
		LinesPass{},
		TernaryPass{},
		ClangDeltaPass{},
		UnIfDefPass{},
		IndentPass{},
	} {
		r.passes[p.Kind()] = p
	}
	return r
}

// Lookup returns the concrete Pass for a catalogue kind.
func (r *Registry) Lookup(kind string) (Pass, bool) {
	p, ok := r.passes[kind]
	return p, ok
}

// BuiltinCatalogue is the shipped pass list (data, not code). Priorities
// encode empirically-tuned scheduling and must be preserved.
func BuiltinCatalogue() []PassEntry {
	return []PassEntry{
		{Kind: "blank", Arg: "", Priority: 700},
		{Kind: "includes", Arg: "", Priority: 600},
		{Kind: "lines", Arg: "0", Priority: 410},
		{Kind: "lines", Arg: "1", Priority: 400},
		{Kind: "ternary", Arg: "b", Priority: 300},
		{Kind: "ternary", Arg: "c", Priority: 300},
		{Kind: "clangdelta", Arg: "remove-unused-function", Priority: 200, Exclude: map[Option]bool{OptionSlow: true}},
		{Kind: "unifdef", Arg: "", Priority: 150, Include: map[Option]bool{OptionSanitize: true}},
		{Kind: "indent", Arg: "final", Priority: 100},
	}
}

// phaseOf assigns each catalogue entry to the phase(s) it belongs to.
// The shipped catalogue above is deliberately simple: "blank" and
// "includes" warm up in first, everything but indent runs to a fixed
// point in main, and indent cleans up once in last. A pass-group file
// expresses this explicitly per entry instead.
func phaseOf(kind string) string {
	switch kind {
	case "blank", "includes":
		return "first"
	case "indent":
		return "last"
	default:
		return "main"
	}
}

// BuildPassGroup filters the catalogue by the active option set and
// partitions it into first/main/last, each sorted by descending
// priority with ties broken by declaration order.
func BuildPassGroup(entries []PassEntry, active map[Option]bool) PassGroup {
	var g PassGroup

	for _, e := range entries {
		if !e.included(active) || e.excluded(active) {
			continue
		}

		phase := e.phaseOverride
		if phase == "" {
			phase = phaseOf(e.Kind)
		}

		switch phase {
		case "first":
			g.First = append(g.First, e)
		case "last":
			g.Last = append(g.Last, e)
		default:
			g.Main = append(g.Main, e)
		}
	}

	stablePrioritySort(g.First)
	stablePrioritySort(g.Main)
	stablePrioritySort(g.Last)

	return g
}

func stablePrioritySort(entries []PassEntry) {
	// Insertion sort: the catalogue is small and this keeps ties in
	// declaration order without relying on sort.SliceStable semantics
	// being re-derived at every call site.
	for i := 1; i < len(entries); i++ {
		j := i
		for j > 0 && entries[j-1].Priority < entries[j].Priority {
			entries[j-1], entries[j] = entries[j], entries[j-1]
			j--
		}
	}
}

// passGroupFile is the JSON pass-group file format.
type passGroupFile struct {
	First []passGroupFileEntry `json:"first"`
	Main  []passGroupFileEntry `json:"main"`
	Last  []passGroupFileEntry `json:"last"`
}

type passGroupFileEntry struct {
	Pass    string   `json:"pass"`
	Arg     *string  `json:"arg"`
	Include []string `json:"include,omitempty"`
	Exclude []string `json:"exclude,omitempty"`
}

// LoadPassGroupFile parses a user-supplied pass-group JSON file.
// Unknown pass names or missing required fields are hard errors.
func LoadPassGroupFile(path string, registry *Registry) ([]PassEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPassOption, err)
	}

	var raw passGroupFile
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON: %v", ErrPassOption, err)
	}

	var entries []PassEntry
	priority := 1000

	for _, category := range []struct {
		name string
		list []passGroupFileEntry
	}{
		{"first", raw.First},
		{"main", raw.Main},
		{"last", raw.Last},
	} {
		for _, e := range category.list {
			if e.Pass == "" {
				return nil, fmt.Errorf("%w: category %s: missing pass name", ErrPassOption, category.name)
			}
			if _, ok := registry.Lookup(e.Pass); !ok {
				return nil, fmt.Errorf("%w: %s", ErrUnknownPass, e.Pass)
			}
			if e.Arg == nil {
				return nil, fmt.Errorf("%w: category %s: pass %s: missing arg", ErrPassOption, category.name, e.Pass)
			}

			entry := PassEntry{Kind: e.Pass, Arg: *e.Arg, Priority: priority, phaseOverride: category.name}
			priority--

			if len(e.Include) > 0 {
				entry.Include = map[Option]bool{}
				for _, o := range e.Include {
					opt := Option(o)
					if !validOption(opt) {
						return nil, fmt.Errorf("%w: %s", ErrPassOption, o)
					}
					entry.Include[opt] = true
				}
			}
			if len(e.Exclude) > 0 {
				entry.Exclude = map[Option]bool{}
				for _, o := range e.Exclude {
					opt := Option(o)
					if !validOption(opt) {
						return nil, fmt.Errorf("%w: %s", ErrPassOption, o)
					}
					entry.Exclude[opt] = true
				}
			}

			entries = append(entries, entry)
		}
	}

	return entries, nil
}
