package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/mholt/archives"
	"github.com/spf13/afero"
)

// FileStatus describes one filesystem entry.
type FileStatus struct {
	Path     string // native to the FileSystem it came from
	Location string // fully qualified, for messages
	Name     string
	IsDir    bool
	Size     int64
}

// PathFilter selects entries by base name.
type PathFilter func(name string) bool

func acceptAll(string) bool { return true }

// FileSystem is everything path resolution and validation need from storage.
type FileSystem interface {
	Exists(path string) (bool, error)
	Stat(path string) (FileStatus, error)
	Glob(pattern string, filter PathFilter) ([]FileStatus, error)
	List(dir string, filter PathFilter) ([]FileStatus, error)
	Open(path string) (io.ReadCloser, error)
}

// AferoFileSystem adapts an afero.Fs. Locations are the native path with prefix prepended.
type AferoFileSystem struct {
	fs     afero.Fs
	prefix string
	join   func(elem ...string) string
}

// NewAferoFileSystem wraps an OS-style filesystem.
func NewAferoFileSystem(fs afero.Fs, prefix string) *AferoFileSystem {
	return &AferoFileSystem{fs: fs, prefix: prefix, join: filepath.Join}
}

// NewSlashFileSystem wraps a filesystem that always uses forward slashes,
// such as an io/fs view or an in-memory tree.
func NewSlashFileSystem(fs afero.Fs, prefix string) *AferoFileSystem {
	return &AferoFileSystem{fs: fs, prefix: prefix, join: path.Join}
}

func (a *AferoFileSystem) status(p string, info os.FileInfo) FileStatus {
	return FileStatus{
		Path:     p,
		Location: a.prefix + p,
		Name:     info.Name(),
		IsDir:    info.IsDir(),
		Size:     info.Size(),
	}
}

func (a *AferoFileSystem) Exists(p string) (bool, error) {
	return afero.Exists(a.fs, p)
}

func (a *AferoFileSystem) Stat(p string) (FileStatus, error) {
	info, err := a.fs.Stat(p)
	if err != nil {
		return FileStatus{}, err
	}
	return a.status(p, info), nil
}

// Glob expands pattern and keeps matches whose base name passes filter.
func (a *AferoFileSystem) Glob(pattern string, filter PathFilter) ([]FileStatus, error) {
	if filter == nil {
		filter = acceptAll
	}
	matches, err := afero.Glob(a.fs, pattern)
	if err != nil {
		return nil, err
	}
	out := make([]FileStatus, 0, len(matches))
	for _, m := range matches {
		info, err := a.fs.Stat(m)
		if errors.Is(err, iofs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if !filter(info.Name()) {
			continue
		}
		out = append(out, a.status(m, info))
	}
	return out, nil
}

// List returns the entries of dir that pass filter, sorted by name. A regular
// file lists as itself. Symbolic links are described by their targets and
// dangling ones are skipped.
func (a *AferoFileSystem) List(dir string, filter PathFilter) ([]FileStatus, error) {
	if filter == nil {
		filter = acceptAll
	}
	info, err := a.fs.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		if !filter(info.Name()) {
			return nil, nil
		}
		return []FileStatus{a.status(dir, info)}, nil
	}
	entries, err := afero.ReadDir(a.fs, dir)
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	out := make([]FileStatus, 0, len(entries))
	for _, e := range entries {
		if !filter(e.Name()) {
			continue
		}
		p := a.join(dir, e.Name())
		info, err := a.fs.Stat(p)
		if errors.Is(err, iofs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, a.status(p, info))
	}
	return out, nil
}

func (a *AferoFileSystem) Open(p string) (io.ReadCloser, error) {
	return a.fs.Open(p)
}

// HasGlobMeta reports whether p contains glob metacharacters.
func HasGlobMeta(p string) bool {
	return strings.ContainsAny(p, "*?[")
}

// Opener builds a FileSystem for a source with its scheme already removed and
// returns the path to use inside it.
type Opener func(ctx context.Context, rest string) (FileSystem, string, error)

// ErrUnknownScheme is returned for a source whose scheme has no opener.
var ErrUnknownScheme = errors.New("unknown filesystem scheme")

const (
	SchemeFile    = "file"
	SchemeArchive = "archive"

	// archiveSeparator splits "archive:<archive>!/<inner>".
	archiveSeparator = "!/"
)

// FileSystems routes a source path to a FileSystem by its scheme.
type FileSystems struct {
	mu      sync.RWMutex
	openers map[string]Opener
}

// NewFileSystems returns a registry with the local disk and archive schemes.
func NewFileSystems() *FileSystems {
	r := &FileSystems{openers: map[string]Opener{}}
	r.Register(SchemeFile, openLocal)
	r.Register(SchemeArchive, openArchive)
	return r
}

// Register adds or replaces the opener for scheme.
func (r *FileSystems) Register(scheme string, o Opener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.openers[strings.ToLower(scheme)] = o
}

// Supports reports whether source has a scheme with a registered opener.
func (r *FileSystems) Supports(source string) bool {
	scheme, _ := SplitScheme(source)
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.openers[scheme]
	return ok
}

// Open resolves the filesystem for source and the path inside it.
func (r *FileSystems) Open(ctx context.Context, source string) (FileSystem, string, error) {
	scheme, rest := SplitScheme(source)
	r.mu.RLock()
	o, ok := r.openers[scheme]
	r.mu.RUnlock()
	if !ok {
		return nil, "", fmt.Errorf("%w %q", ErrUnknownScheme, scheme)
	}
	return o(ctx, rest)
}

// SplitScheme returns the lower-cased scheme of source (file when absent) and
// the remainder. A single letter before the colon is a drive letter.
func SplitScheme(source string) (string, string) {
	i := strings.Index(source, ":")
	if i < 2 {
		return SchemeFile, source
	}
	scheme := source[:i]
	for j, c := range scheme {
		isAlpha := c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
		if !isAlpha && (j == 0 || !(c >= '0' && c <= '9' || c == '+' || c == '-' || c == '.')) {
			return SchemeFile, source
		}
	}
	return strings.ToLower(scheme), source[i+1:]
}

// trimAuthority drops the empty authority of "scheme:///path" style URIs.
func trimAuthority(rest string) string {
	if strings.HasPrefix(rest, "//") {
		return rest[2:]
	}
	return rest
}

func openLocal(_ context.Context, rest string) (FileSystem, string, error) {
	return NewAferoFileSystem(afero.NewOsFs(), ""), trimAuthority(rest), nil
}

// archiveFileSystem is a read-only view into an archive on the local disk.
type archiveFileSystem struct {
	*AferoFileSystem
	closer io.Closer
}

func (a *archiveFileSystem) Close() error {
	if a.closer != nil {
		return a.closer.Close()
	}
	return nil
}

func openArchive(ctx context.Context, rest string) (FileSystem, string, error) {
	rest = trimAuthority(rest)
	archivePath, inner, _ := strings.Cut(rest, archiveSeparator)
	if archivePath == "" {
		return nil, "", fmt.Errorf("archive path missing in %q", rest)
	}
	fsys, err := archives.FileSystem(ctx, archivePath, nil)
	if err != nil {
		return nil, "", fmt.Errorf("open archive %s: %w", archivePath, err)
	}
	inner = strings.Trim(inner, "/")
	if inner == "" {
		inner = "."
	}
	if !iofs.ValidPath(inner) {
		return nil, "", fmt.Errorf("invalid path %q inside archive %s", inner, archivePath)
	}
	afs := &archiveFileSystem{
		AferoFileSystem: NewSlashFileSystem(afero.FromIOFS{FS: fsys}, SchemeArchive+":"+archivePath+archiveSeparator),
	}
	if closer, ok := fsys.(io.Closer); ok {
		afs.closer = closer
	}
	return afs, inner, nil
}
