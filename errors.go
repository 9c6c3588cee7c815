package main

import "errors"

// Sentinel errors for the reducer
var (
	// Test case validation
	ErrInvalidTestCase = errors.New("invalid test case")
	ErrNoTestCases     = errors.New("no test cases given")

	// Prerequisites
	ErrPrerequisitesMissing = errors.New("prerequisites missing for one or more passes")

	// Sanity check
	ErrSanityCheckFailed = errors.New("sanity check failed: original test case is not interesting")

	// Pass bugs
	ErrPassBug = errors.New("pass reported an internal error")

	// Pass group / catalogue loading
	ErrPassOption  = errors.New("invalid pass option")
	ErrUnknownPass = errors.New("unknown pass name")

	// Sandbox isolation
	ErrSandboxCreateFailed  = errors.New("failed to create sandbox")
	ErrSandboxCleanupFailed = errors.New("failed to clean up sandbox")

	// Process group management
	ErrProcStartFailed = errors.New("failed to start predicate process")
	ErrProcKillFailed  = errors.New("failed to kill predicate process group")

	// Test manager / runner
	ErrRunnerFailure      = errors.New("failed to spawn or wait on a worker")
	ErrWorkerNotAvailable = errors.New("no worker slot available")
)
