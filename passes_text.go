package main

import (
	"os"
	"regexp"
	"strings"
)

// BlankPass strips fully-blank lines, one attempt covering the whole
// file per Transform call. It has exactly one useful transformation:
// once run, a second attempt finds nothing left to strip and Stops.
type BlankPass struct{}

func (BlankPass) Kind() string                 { return "blank" }
func (BlankPass) CheckPrerequisites() bool     { return true }
func (BlankPass) New(tc *TestCase, arg string) any { return IntCursorState{Index: 0} }

func (BlankPass) Transform(path, arg string, state any) (TransformResult, any) {
	s := state.(IntCursorState)
	if s.Index > 0 {
		return Stop, s
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Error, s
	}

	text := string(data)
	trailingNewline := strings.HasSuffix(text, "\n")
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	kept := lines[:0]
	changed := false
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			changed = true
			continue
		}
		kept = append(kept, l)
	}

	if !changed {
		return Stop, s
	}

	out := strings.Join(kept, "\n")
	if trailingNewline && len(kept) > 0 {
		out += "\n"
	}
	if err := os.WriteFile(path, []byte(out), 0644); err != nil {
		return Error, s
	}

	return Ok, IntCursorState{Index: 1}
}

func (BlankPass) Advance(path, arg string, state any) any {
	return IntCursorState{Index: 1}
}

func (BlankPass) AdvanceOnSuccess(path, arg string, state any) any {
	return IntCursorState{Index: 1}
}

// includeRE matches a #include preprocessor line.
var includeRE = regexp.MustCompile(`^\s*#\s*include\b`)

// IncludesPass deletes one #include line per cycle, index-based,
// keeping the index unchanged on success since removal shifts
// successor lines down.
type IncludesPass struct{}

func (IncludesPass) Kind() string                 { return "includes" }
func (IncludesPass) CheckPrerequisites() bool     { return true }
func (IncludesPass) New(tc *TestCase, arg string) any { return IntCursorState{Index: 0} }

func (IncludesPass) Transform(path, arg string, state any) (TransformResult, any) {
	s := state.(IntCursorState)

	data, err := os.ReadFile(path)
	if err != nil {
		return Error, s
	}

	lines := strings.Split(string(data), "\n")

	for i := s.Index; i < len(lines); i++ {
		if includeRE.MatchString(lines[i]) {
			out := append(append([]string{}, lines[:i]...), lines[i+1:]...)
			if err := os.WriteFile(path, []byte(strings.Join(out, "\n")), 0644); err != nil {
				return Error, s
			}
			return Ok, IntCursorState{Index: i}
		}
	}

	return Stop, s
}

func (IncludesPass) Advance(path, arg string, state any) any {
	s := state.(IntCursorState)
	return IntCursorState{Index: s.Index + 1}
}

func (IncludesPass) AdvanceOnSuccess(path, arg string, state any) any {
	return state
}

// ternaryRE finds the first non-nested ternary expression on a line:
// a condition (a single identifier or a balanced-paren group, so the
// match doesn't swallow unrelated text to its left, e.g. "int res = "),
// then "? b-branch : c-branch", where each branch may itself be a
// balanced-paren group; otherwise the b-branch is the shortest run of
// non-':' characters and the c-branch a run of non-';' characters.
var ternaryRE = regexp.MustCompile(`(?:\([^()]*\)|\w+)\s*\?\s*(\([^()]*\)|[^:]+?)\s*:\s*(\([^()]*\)|[^;]+)`)

// TernaryPass rewrites "cond ? b : c" to just the b or c branch,
// depending on arg.
type TernaryPass struct{}

func (TernaryPass) Kind() string                 { return "ternary" }
func (TernaryPass) CheckPrerequisites() bool     { return true }
func (TernaryPass) New(tc *TestCase, arg string) any { return IntCursorState{Index: 0} }

func (TernaryPass) Transform(path, arg string, state any) (TransformResult, any) {
	s := state.(IntCursorState)

	data, err := os.ReadFile(path)
	if err != nil {
		return Error, s
	}

	lines := strings.Split(string(data), "\n")

	for i := s.Index; i < len(lines); i++ {
		loc := ternaryRE.FindStringSubmatchIndex(lines[i])
		if loc == nil {
			continue
		}

		branch := lines[i][loc[2]:loc[3]]
		if arg == "c" {
			branch = lines[i][loc[4]:loc[5]]
		}

		lines[i] = lines[i][:loc[0]] + branch + lines[i][loc[1]:]

		if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0644); err != nil {
			return Error, s
		}

		return Ok, IntCursorState{Index: i}
	}

	return Stop, s
}

func (TernaryPass) Advance(path, arg string, state any) any {
	s := state.(IntCursorState)
	return IntCursorState{Index: s.Index + 1}
}

func (TernaryPass) AdvanceOnSuccess(path, arg string, state any) any {
	// The same line may still contain a nested ternary after one
	// rewrite, so retry it rather than advancing past it.
	return state
}

// LinesPass is a chunk-halving binary search over contiguous line
// ranges to delete, the concrete pass exercising the ChunkState shape
// without depending on an external tool. arg "0"/"1" are two catalogue
// entries for the same Kind at different priorities, showing the same
// pass kind can be scheduled more than once; the pass does not read arg,
// so both entries run the same search.
type LinesPass struct{}

func (LinesPass) Kind() string { return "lines" }
func (LinesPass) CheckPrerequisites() bool { return true }

func (LinesPass) New(tc *TestCase, arg string) any {
	return &ChunkState{Starting: true}
}

func (LinesPass) Transform(path, arg string, state any) (TransformResult, any) {
	s := state.(*ChunkState).clone()

	data, err := os.ReadFile(path)
	if err != nil {
		return Error, s
	}
	lines := strings.Split(string(data), "\n")
	total := len(lines)
	s.Instances = total

	if s.Starting {
		s.Starting = false
		s.Chunk = total
		s.Index = 1
	}

	for {
		if s.Index <= s.Instances {
			end := s.Index + s.Chunk - 1
			if end > s.Instances {
				end = s.Instances
			}

			out := append(append([]string{}, lines[:s.Index-1]...), lines[end:]...)

			if err := os.WriteFile(path, []byte(strings.Join(out, "\n")), 0644); err != nil {
				return Error, s
			}

			return Ok, s
		}

		if !s.rechunk() {
			return Stop, s
		}
	}
}

func (LinesPass) Advance(path, arg string, state any) any {
	s := state.(*ChunkState).clone()
	s.Index += s.Chunk
	return s
}

func (LinesPass) AdvanceOnSuccess(path, arg string, state any) any {
	// Deletion shifts later lines down; keep trying the same chunk
	// granularity at the same starting index.
	s := state.(*ChunkState).clone()
	return s
}
