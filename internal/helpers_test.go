package internal

import (
	"context"
	"io"
	"os"
	"path"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// newMemFS builds an in-memory tree. Keys ending in "/" are directories.
func newMemFS(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for name, body := range files {
		if name[len(name)-1] == '/' {
			require.NoError(t, fs.MkdirAll(name, 0755))
			continue
		}
		require.NoError(t, fs.MkdirAll(path.Dir(name), 0755))
		require.NoError(t, afero.WriteFile(fs, name, []byte(body), 0644))
	}
	return fs
}

// memFileSystems serves fs under the "mem" scheme next to the built-ins.
func memFileSystems(fs afero.Fs) *FileSystems {
	fss := NewFileSystems()
	fss.Register("mem", func(_ context.Context, rest string) (FileSystem, string, error) {
		return NewSlashFileSystem(fs, "mem:"), trimAuthority(rest), nil
	})
	return fss
}

type errorReader struct{}

func (e *errorReader) Read(p []byte) (int, error) { return 0, os.ErrInvalid }

// brokenReadFS opens every file as an errorReader.
type brokenReadFS struct {
	FileSystem
}

func (brokenReadFS) Open(string) (io.ReadCloser, error) {
	return io.NopCloser(&errorReader{}), nil
}

// deniedOpenFS refuses to open any file.
type deniedOpenFS struct {
	FileSystem
}

func (deniedOpenFS) Open(string) (io.ReadCloser, error) {
	return nil, os.ErrPermission
}
