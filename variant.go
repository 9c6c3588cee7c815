package main

import "context"

// variantResult is what a worker reports back to the manager once the
// predicate has finished evaluating a candidate.
type variantResult struct {
	verdict Verdict
	err     error
}

// Variant is an in-flight speculative candidate: a sandbox holding a
// copy of every test case, one of which was just mutated by a pass,
// being evaluated by one worker.
type Variant struct {
	submissionIndex int
	sandbox         *Sandbox
	state           any // the PassState describing the candidate just written
	done            chan variantResult
	cancel          context.CancelFunc
}

// start launches the worker goroutine that evaluates this variant
// against the interestingness predicate, reporting its verdict on the
// done channel exactly once.
func (v *Variant) start(ctx context.Context, runner TestRunner, cache *ResultCache, cases []*TestCase) {
	workerCtx, cancel := context.WithCancel(ctx)
	v.cancel = cancel
	v.done = make(chan variantResult, 1)

	go func() {
		fp, err := FingerprintSandbox(v.sandbox.Dir, cases)
		if err != nil {
			v.done <- variantResult{verdict: NotInteresting, err: err}
			return
		}

		verdict, err := cache.Evaluate(workerCtx, fp, func(ctx context.Context) (Verdict, error) {
			verdict, _, runErr := runner.Run(ctx, v.sandbox.Dir)
			return verdict, runErr
		})

		v.done <- variantResult{verdict: verdict, err: err}
	}()
}

// discard cancels the worker's context (which kills its process group,
// if any) and removes its sandbox. Any verdict produced after this
// call must be ignored by the caller.
func (v *Variant) discard() {
	if v.cancel != nil {
		v.cancel()
	}
	if v.sandbox != nil {
		_ = v.sandbox.Cleanup()
	}
}
