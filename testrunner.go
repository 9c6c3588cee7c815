package main

import (
	"context"
)

// Verdict is the outcome of evaluating the interestingness predicate
// against a candidate.
type Verdict int

const (
	Interesting Verdict = iota
	NotInteresting
	AlsoInteresting
)

func (v Verdict) String() string {
	switch v {
	case Interesting:
		return "interesting"
	case NotInteresting:
		return "not-interesting"
	case AlsoInteresting:
		return "also-interesting"
	default:
		return "unknown"
	}
}

// TestRunner executes the interestingness predicate against a sandbox
// and reports a Verdict. Implementations must not mutate any file
// outside the sandbox they were given.
type TestRunner interface {
	Run(ctx context.Context, sandboxDir string) (Verdict, int, error)
}

// SubprocessRunner is the general-purpose TestRunner: it forks the
// predicate executable with sandboxDir as its working directory.
type SubprocessRunner struct {
	Predicate       string
	AlsoInteresting int // -1 disables the also-interesting code path
	Env             []string
}

// Run executes the predicate and classifies its exit code:
// 0 = Interesting, AlsoInteresting code = AlsoInteresting, anything
// else = NotInteresting.
func (r *SubprocessRunner) Run(ctx context.Context, sandboxDir string) (Verdict, int, error) {
	proc := &ProcGroup{}
	if err := proc.Start(ctx, sandboxDir, r.Predicate, r.Env); err != nil {
		return NotInteresting, -1, err
	}

	code, err := proc.Wait()
	if err != nil {
		// RunnerFailure: logged by the caller, treated as NotInteresting.
		return NotInteresting, code, err
	}

	return classify(code, r.AlsoInteresting), code, nil
}

// FastPredicate is the function-shaped form of a predicate that the
// FastRunner can evaluate in-process, skipping fork+exec entirely.
// It must behave exactly as the equivalent subprocess invocation would:
// return an exit code, not a verdict directly, so that classification
// logic is shared and the two runners can never disagree.
type FastPredicate func(sandboxDir string) (exitCode int)

// FastRunner evaluates a predicate that has been statically identified
// as conforming to the FastPredicate shape, used automatically unless
// --no-fast-test is given. This is a pure optimization: given the same
// inputs it must produce the same Verdict as SubprocessRunner would for
// an equivalent external script.
type FastRunner struct {
	Predicate       FastPredicate
	AlsoInteresting int
}

func (r *FastRunner) Run(ctx context.Context, sandboxDir string) (Verdict, int, error) {
	select {
	case <-ctx.Done():
		return NotInteresting, -1, ctx.Err()
	default:
	}

	code := r.Predicate(sandboxDir)
	return classify(code, r.AlsoInteresting), code, nil
}

func classify(code, alsoInteresting int) Verdict {
	switch {
	case code == 0:
		return Interesting
	case alsoInteresting >= 0 && code == alsoInteresting:
		return AlsoInteresting
	default:
		return NotInteresting
	}
}

// NewRunner picks FastRunner over SubprocessRunner when a fast
// predicate has been registered for this executable path and
// --no-fast-test was not requested; otherwise it falls back to the
// general subprocess runner. The choice is a pure optimization.
func NewRunner(predicate string, env []string, alsoInteresting int, noFastTest bool, registry map[string]FastPredicate) TestRunner {
	if !noFastTest {
		if fp, ok := registry[predicate]; ok {
			return &FastRunner{Predicate: fp, AlsoInteresting: alsoInteresting}
		}
	}

	return &SubprocessRunner{Predicate: predicate, AlsoInteresting: alsoInteresting, Env: env}
}
