package main

// builtinFastPredicates is the registry NewRunner consults to decide
// whether a predicate path can be evaluated in-process instead of via
// fork+exec. The CLI ships none: fast predicates are a
// pure optimization for predicates the caller controls, registered by
// path, and a general-purpose CLI invocation always receives someone
// else's executable. Tests construct their own registry directly
// instead of going through this one.
func builtinFastPredicates() map[string]FastPredicate {
	return map[string]FastPredicate{}
}
