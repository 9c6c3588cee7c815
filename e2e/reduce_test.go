package e2e

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

func runShrinker(t *testing.T, args ...string) (string, error) {
	t.Helper()
	bin := BuildBinary(t)
	cmd := exec.Command(bin, args...)
	out, err := cmd.CombinedOutput()
	t.Logf("shrinker output:\n%s", out)
	return string(out), err
}

func writePassGroupFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write pass group file: %v", err)
	}
	return path
}

// Ternary pass picks the b-branch.
func TestTernaryBranchB(t *testing.T) {
	dir := t.TempDir()
	predicate := WriteScript(t, dir, "predicate.sh", "exit 0")
	tc := WriteTestCase(t, dir, "case.c", "int res = a ? b : c;\n")
	pg := writePassGroupFile(t, dir, "passes.json", `{"main":[{"pass":"ternary","arg":"b"}]}`)

	_, err := runShrinker(t, "--pass-group-file", pg, predicate, tc)
	if err != nil {
		t.Fatalf("shrinker failed: %v", err)
	}

	got := ReadFile(t, tc)
	want := "int res = b;\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

// Ternary pass picks the c-branch.
func TestTernaryBranchC(t *testing.T) {
	dir := t.TempDir()
	predicate := WriteScript(t, dir, "predicate.sh", "exit 0")
	tc := WriteTestCase(t, dir, "case.c", "int res = a ? b : c;\n")
	pg := writePassGroupFile(t, dir, "passes.json", `{"main":[{"pass":"ternary","arg":"c"}]}`)

	_, err := runShrinker(t, "--pass-group-file", pg, predicate, tc)
	if err != nil {
		t.Fatalf("shrinker failed: %v", err)
	}

	got := ReadFile(t, tc)
	want := "int res = c;\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

// Includes pass deletes a broken #include line. "Syntactically
// compilable" is approximated here as "still contains the int main line".
func TestIncludesLineRemoval(t *testing.T) {
	dir := t.TempDir()
	predicate := WriteScript(t, dir, "predicate.sh", `grep -q "int main" ./*.c`)
	tc := WriteTestCase(t, dir, "case.c",
		"#include \"missing1.h\"\n#include \"missing2.h\"\nint main(){return 0;}\n")
	pg := writePassGroupFile(t, dir, "passes.json", `{"main":[{"pass":"includes","arg":""}]}`)

	_, err := runShrinker(t, "--pass-group-file", pg, predicate, tc)
	if err != nil {
		t.Fatalf("shrinker failed: %v", err)
	}

	got := ReadFile(t, tc)
	want := "int main(){return 0;}\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

// A failing sanity check must leave the test case untouched.
func TestSanityCheckFailureLeavesFileUnchanged(t *testing.T) {
	dir := t.TempDir()
	predicate := WriteScript(t, dir, "predicate.sh", "exit 1")
	original := "int res = a ? b : c;\n"
	tc := WriteTestCase(t, dir, "case.c", original)

	_, err := runShrinker(t, predicate, tc)
	if err == nil {
		t.Fatal("expected shrinker to exit non-zero on sanity-check failure")
	}

	got := ReadFile(t, tc)
	if got != original {
		t.Fatalf("test case was modified despite sanity-check failure: got %q", got)
	}
}
