package scan

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func rels(files []FileInfo) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Rel
	}
	return out
}

func TestWalkIncludeExclude(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main")
	writeFile(t, root, "lib/util.go", "package lib")
	writeFile(t, root, "lib/util_test.go", "package lib")
	writeFile(t, root, "README.md", "# readme")
	writeFile(t, root, "vendor/dep/dep.go", "package dep")

	w := NewWalker([]string{"**/*.go"}, []string{"vendor/**", "**/*_test.go"})
	files, err := w.Walk(root)
	if err != nil {
		t.Fatal(err)
	}

	got := rels(files)
	want := map[string]bool{"main.go": true, "lib/util.go": true}
	if len(got) != len(want) {
		t.Fatalf("matched %v, want %v", got, want)
	}
	for _, r := range got {
		if !want[r] {
			t.Errorf("unexpected match %q", r)
		}
	}
}

func TestWalkSkipsExcludedDirs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/a.py", "pass")
	writeFile(t, root, ".git/objects/aa/blob", "binary")

	w := NewWalker(nil, []string{".git/**"})
	files, err := w.Walk(root)
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range files {
		if f.Rel == ".git/objects/aa/blob" {
			t.Error("excluded directory was walked")
		}
	}
}

func TestWalkMaxFileSize(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "small.txt", "tiny")
	writeFile(t, root, "big.txt", string(make([]byte, 2048)))

	w := NewWalker([]string{"**/*.txt"}, nil).WithMaxFileSize(1024)
	files, err := w.Walk(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 || files[0].Rel != "small.txt" {
		t.Errorf("size ceiling not applied: %v", rels(files))
	}
}
