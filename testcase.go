package main

import (
	"fmt"
	"os"
	"path/filepath"
)

// TestCase is an absolute filesystem path to a file the reducer is
// shrinking. Its size is monotonically non-increasing across committed
// variants within a main-phase iteration, with the exception of
// normalizing passes such as indent.
type TestCase struct {
	Path string
}

// NewTestCases resolves and validates each given path, failing fast
// if any file is missing, unreadable, or unwritable.
func NewTestCases(paths []string) ([]*TestCase, error) {
	if len(paths) == 0 {
		return nil, ErrNoTestCases
	}

	cases := make([]*TestCase, 0, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidTestCase, p, err)
		}

		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidTestCase, p, err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("%w: %s: is a directory", ErrInvalidTestCase, p)
		}

		f, err := os.OpenFile(abs, os.O_RDWR, 0)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: not readable/writable: %v", ErrInvalidTestCase, p, err)
		}
		f.Close()

		cases = append(cases, &TestCase{Path: abs})
	}

	return cases, nil
}

// Name returns the base filename, used to locate the test case's copy
// inside a sandbox (every sandbox copy lives at sandboxDir/Name()).
func (t *TestCase) Name() string {
	return filepath.Base(t.Path)
}

// Size returns the current on-disk size in bytes.
func (t *TestCase) Size() (int64, error) {
	info, err := os.Stat(t.Path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// Backup writes a <name>.orig copy of the current content, unless one
// already exists. Called once by the Reducer before the first mutation,
// skipped entirely when --tidy is set.
func (t *TestCase) Backup() error {
	backupPath := t.Path + ".orig"

	if _, err := os.Stat(backupPath); err == nil {
		return nil // already backed up
	}

	data, err := os.ReadFile(t.Path)
	if err != nil {
		return fmt.Errorf("backup: read %s: %w", t.Path, err)
	}

	if err := os.WriteFile(backupPath, data, 0644); err != nil {
		return fmt.Errorf("backup: write %s: %w", backupPath, err)
	}

	return nil
}

// TotalSize sums the on-disk size of every test case.
func TotalSize(cases []*TestCase) (int64, error) {
	var total int64
	for _, tc := range cases {
		size, err := tc.Size()
		if err != nil {
			return 0, err
		}
		total += size
	}
	return total, nil
}
