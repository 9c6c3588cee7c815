package main

import (
	"os"
	"testing"
)

func TestTernaryPassBBranch(t *testing.T) {
	path := writeTempFile(t, "int res = a ? b : c;\n")
	TernaryPass{}.Transform(path, "b", IntCursorState{Index: 0})

	got := readTempFile(t, path)
	want := "int res = b;\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestTernaryPassCBranch(t *testing.T) {
	path := writeTempFile(t, "int res = a ? b : c;\n")
	TernaryPass{}.Transform(path, "c", IntCursorState{Index: 0})

	got := readTempFile(t, path)
	want := "int res = c;\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestTernaryPassParenthesizedBranches(t *testing.T) {
	path := writeTempFile(t, "int res = (a != 0) ? (b + 5) : c;\n")
	TernaryPass{}.Transform(path, "b", IntCursorState{Index: 0})

	got := readTempFile(t, path)
	want := "int res = (b + 5);\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestTernaryPassStopsWhenNoTernaryRemains(t *testing.T) {
	path := writeTempFile(t, "int res = b;\n")
	result, _ := TernaryPass{}.Transform(path, "b", IntCursorState{Index: 0})
	if result != Stop {
		t.Fatalf("Transform on a line with no ternary = %v, want Stop", result)
	}
}

func TestBlankPassStripsBlankLinesOnce(t *testing.T) {
	path := writeTempFile(t, "a\n\nb\n\n\nc\n")
	result, next := BlankPass{}.Transform(path, "", IntCursorState{Index: 0})
	if result != Ok {
		t.Fatalf("first Transform = %v, want Ok", result)
	}

	got := readTempFile(t, path)
	want := "a\nb\nc\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	result2, _ := BlankPass{}.Transform(path, "", next)
	if result2 != Stop {
		t.Fatalf("second Transform = %v, want Stop", result2)
	}
}

func TestIncludesPassDeletesOneLinePerCycle(t *testing.T) {
	path := writeTempFile(t, "#include \"missing1.h\"\n#include \"missing2.h\"\nint main(){return 0;}\n")
	p := IncludesPass{}

	state := p.New(nil, "")
	result, next := p.Transform(path, "", state)
	if result != Ok {
		t.Fatalf("Transform = %v, want Ok", result)
	}
	got := readTempFile(t, path)
	want := "#include \"missing2.h\"\nint main(){return 0;}\n"
	if got != want {
		t.Fatalf("after first removal: got %q, want %q", got, want)
	}

	state = p.AdvanceOnSuccess(path, "", next)
	result, next = p.Transform(path, "", state)
	if result != Ok {
		t.Fatalf("Transform = %v, want Ok", result)
	}
	got = readTempFile(t, path)
	want = "int main(){return 0;}\n"
	if got != want {
		t.Fatalf("after second removal: got %q, want %q", got, want)
	}

	state = p.AdvanceOnSuccess(path, "", next)
	result, _ = p.Transform(path, "", state)
	if result != Stop {
		t.Fatalf("Transform after exhaustion = %v, want Stop", result)
	}
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := t.TempDir() + "/case.txt"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func readTempFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read temp file: %v", err)
	}
	return string(data)
}
