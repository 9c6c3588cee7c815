package main

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
)

// Fingerprint is a content-addressed hash over the concatenated bytes
// of all test-case files of a candidate, used as the ResultCache key.
// Two byte-identical candidate states always produce identical
// fingerprints.
type Fingerprint string

// FingerprintSandbox hashes every test case's copy inside a sandbox
// directory, in the order of cases (not directory-listing order), so
// the same case list over the same contents always hashes the same.
func FingerprintSandbox(sandboxDir string, cases []*TestCase) (Fingerprint, error) {
	h := sha256.New()

	for _, tc := range cases {
		path := sandboxPath(sandboxDir, tc)

		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("fingerprint: read %s: %w", path, err)
		}

		// Length-prefix each file so that concatenation boundaries are
		// unambiguous (two files "ab"+"c" must not fingerprint the same
		// as "a"+"bc").
		fmt.Fprintf(h, "%d:", len(data))
		h.Write(data)
	}

	return Fingerprint(hex.EncodeToString(h.Sum(nil))), nil
}
