package internal

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/spf13/afero"
)

func resolverFixture(t *testing.T) (*PathResolver, *test.Hook) {
	t.Helper()
	fs := newMemFS(t, map[string]string{
		"/res/to_match.txt":    "need\n",
		"/res/empty.txt":       "",
		"/res/other.dat":       "x\n",
		"/res/to_match_dir/":   "",
		"/res/to_match_dir/in": "nested\n",
		"/res/only_dirs/a/":    "",
		"/res/only_dirs/b/":    "",
		"/flat/single/readme":  "r\n",
	})
	log, hook := test.NewNullLogger()
	return NewPathResolver(NewSlashFileSystem(fs, "mem:"), log), hook
}

func paths(sts []FileStatus) []string {
	out := make([]string, 0, len(sts))
	for _, st := range sts {
		out = append(out, st.Path)
	}
	return out
}

func resolve(t *testing.T, r *PathResolver, source string, filter *Pattern) []string {
	t.Helper()
	got, err := r.Resolve(source, filter)
	if err != nil {
		t.Fatalf("Resolve(%q) error: %v", source, err)
	}
	return paths(got)
}

func expectWarning(t *testing.T, hook *test.Hook) *logrus.Entry {
	t.Helper()
	e := hook.LastEntry()
	if e == nil || e.Level != logrus.WarnLevel {
		t.Fatalf("expected a warning, got %v", e)
	}
	return e
}

func TestResolve_SingleFileIgnoresFilter(t *testing.T) {
	r, hook := resolverFixture(t)

	got := resolve(t, r, "/res/to_match.txt", MustCompilePattern("nothing-matches-this"))
	if !reflect.DeepEqual(got, []string{"/res/to_match.txt"}) {
		t.Errorf("got %v", got)
	}
	if len(hook.Entries) != 0 {
		t.Errorf("unexpected log entries: %v", hook.Entries)
	}
}

func TestResolve_DirectoryWithFilter(t *testing.T) {
	r, _ := resolverFixture(t)

	// to_match_dir passes the filter but directories are never candidates
	got := resolve(t, r, "/res", MustCompilePattern("to_match.*"))
	if !reflect.DeepEqual(got, []string{"/res/to_match.txt"}) {
		t.Errorf("got %v", got)
	}
}

func TestResolve_DirectoryDefaultFilter(t *testing.T) {
	r, _ := resolverFixture(t)

	got := resolve(t, r, "/res", nil)
	want := []string{"/res/empty.txt", "/res/other.dat", "/res/to_match.txt"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestResolve_FilterIsFullMatch(t *testing.T) {
	r, hook := resolverFixture(t)

	if got := resolve(t, r, "/res", MustCompilePattern("match")); len(got) != 0 {
		t.Errorf("expected no candidates, got %v", got)
	}
	e := expectWarning(t, hook)
	if e.Data["source"] != "/res" || e.Data["fileRegex"] != "match" {
		t.Errorf("warning fields = %v", e.Data)
	}
}

func TestResolve_Glob(t *testing.T) {
	r, _ := resolverFixture(t)

	if got := resolve(t, r, "/res/*.txt", nil); !reflect.DeepEqual(got, []string{"/res/empty.txt", "/res/to_match.txt"}) {
		t.Errorf("glob: got %v", got)
	}
	if got := resolve(t, r, "/res/*.txt", MustCompilePattern("e.*")); !reflect.DeepEqual(got, []string{"/res/empty.txt"}) {
		t.Errorf("glob with filter: got %v", got)
	}
}

func TestResolve_GlobMatchingNothingWarns(t *testing.T) {
	r, hook := resolverFixture(t)

	if got := resolve(t, r, "/res/*.csv", nil); len(got) != 0 {
		t.Errorf("expected no candidates, got %v", got)
	}
	expectWarning(t, hook)
}

func TestResolve_GlobSingleDirectoryFallsBack(t *testing.T) {
	r, _ := resolverFixture(t)

	// the glob finds only the directory itself, so it is listed instead
	if got := resolve(t, r, "/flat/single", nil); !reflect.DeepEqual(got, []string{"/flat/single/readme"}) {
		t.Errorf("got %v", got)
	}
}

func TestResolve_OnlySubdirectories(t *testing.T) {
	r, hook := resolverFixture(t)

	if got := resolve(t, r, "/res/only_dirs", nil); len(got) != 0 {
		t.Errorf("expected no candidates, got %v", got)
	}
	expectWarning(t, hook)
}

func TestResolve_NoRecursion(t *testing.T) {
	r, _ := resolverFixture(t)

	for _, p := range resolve(t, r, "/res", nil) {
		if p == "/res/to_match_dir/in" {
			t.Errorf("nested file %s must not be a candidate", p)
		}
	}
}

func TestResolve_MissingPath(t *testing.T) {
	r, _ := resolverFixture(t)

	_, err := r.Resolve("/does/not/exist", nil)
	var ioErr *IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("expected *IOError, got %v", err)
	}
	if ioErr.Path != "/does/not/exist" || ioErr.Op != "listing" {
		t.Errorf("IOError = %+v", ioErr)
	}
}

// symlinkTree lays out dir with a real empty file, a real subdirectory and a
// link to each.
func symlinkTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "in")
	if err := os.MkdirAll(filepath.Join(root, "sub"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "empty.txt"), nil, 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(filepath.Join(root, "empty.txt"), filepath.Join(dir, "link.txt")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}
	if err := os.Symlink(filepath.Join(root, "sub"), filepath.Join(dir, "linkdir")); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(filepath.Join(root, "gone"), filepath.Join(dir, "dangling")); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestResolve_SymlinksFollowTheirTargets(t *testing.T) {
	dir := symlinkTree(t)
	r := NewPathResolver(NewAferoFileSystem(afero.NewOsFs(), ""), nil)

	for _, source := range []string{dir, filepath.Join(dir, "*")} {
		got, err := r.Resolve(source, nil)
		if err != nil {
			t.Fatalf("Resolve(%q) error: %v", source, err)
		}
		if len(got) != 1 {
			t.Fatalf("Resolve(%q) = %v, want only link.txt", source, paths(got))
		}
		if got[0].Name != "link.txt" || got[0].Size != 0 || got[0].IsDir {
			t.Errorf("Resolve(%q) link.txt = %+v, want the empty target", source, got[0])
		}
	}
}

func TestRun_SymlinkedEmptyFileFails(t *testing.T) {
	dir := symlinkTree(t)

	for _, source := range []string{dir, filepath.Join(dir, "*")} {
		err := NewFileContentsAction(Config{SourcePath: source, FailOnEmptyFile: "true"}).Run(context.Background())
		if !errors.Is(err, ErrEmptyFile) {
			t.Errorf("source %s: expected empty file error, got %v", source, err)
		}

		err = NewFileContentsAction(Config{SourcePath: source, FileContentsRegex: ".*", FailOnEmptyFile: "false"}).Run(context.Background())
		if !errors.Is(err, ErrContentMismatch) {
			t.Errorf("source %s: expected content mismatch on link.txt only, got %v", source, err)
		}
	}
}
