package paths

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSafeRel(t *testing.T) {
	base := filepath.FromSlash("/repo")
	tests := []struct {
		path string
		want string
	}{
		{filepath.FromSlash("/repo/app/pom.xml"), filepath.FromSlash("app/pom.xml")},
		{filepath.FromSlash("/repo"), "."},
		{filepath.FromSlash("/elsewhere/pom.xml"), filepath.FromSlash("/elsewhere/pom.xml")},
	}
	for _, tt := range tests {
		if got := SafeRel(tt.path, base); got != tt.want {
			t.Errorf("SafeRel(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestCanonicalizePath(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "core", "api")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatal(err)
	}

	got, err := CanonicalizePath(sub, root)
	if err != nil {
		t.Fatalf("CanonicalizePath failed: %v", err)
	}
	if got != "core/api" {
		t.Errorf("got %q, want core/api", got)
	}
	if !IsWithinRepo(sub, root) {
		t.Error("sub should be within repo")
	}
	if IsWithinRepo(filepath.Dir(root), root) {
		t.Error("parent of root should not be within repo")
	}
}

func TestHasPathSegment(t *testing.T) {
	if !HasPathSegment("a/target/pom.xml", "target") {
		t.Error("expected target segment")
	}
	if HasPathSegment("a/targets/pom.xml", "target") {
		t.Error("targets is not target")
	}
}

func TestExistsHelpers(t *testing.T) {
	root := t.TempDir()
	f := filepath.Join(root, "pom.xml")
	if err := os.WriteFile(f, []byte("<project/>"), 0644); err != nil {
		t.Fatal(err)
	}
	if !FileExists(f) || FileExists(root) {
		t.Error("FileExists mismatch")
	}
	if !DirExists(root) || DirExists(f) {
		t.Error("DirExists mismatch")
	}
}

func TestStateDirs(t *testing.T) {
	root := t.TempDir()
	dir, err := EnsureStateDir(root)
	if err != nil {
		t.Fatalf("EnsureStateDir failed: %v", err)
	}
	if dir != filepath.Join(root, StateDirName) || !DirExists(dir) {
		t.Errorf("unexpected state dir %q", dir)
	}
	logs, err := EnsureLogsDir(root)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Dir(GetLogPath(root)) != logs {
		t.Errorf("log path %q not under %q", GetLogPath(root), logs)
	}
}

func TestResolveUnder(t *testing.T) {
	root := filepath.FromSlash("/repo")
	if got := ResolveUnder(root, "out"); got != filepath.Join(root, "out") {
		t.Errorf("relative: got %q", got)
	}
	abs := filepath.FromSlash("/tmp/out")
	if got := ResolveUnder(root, abs); got != abs {
		t.Errorf("absolute: got %q", got)
	}
}
