package internal

import (
	"errors"
	iofs "io/fs"

	"github.com/sirupsen/logrus"
)

// DefaultFileRegex is used when fileRegex is not set.
const DefaultFileRegex = ".*"

// PathResolver turns a source path into the ordered list of files to validate.
type PathResolver struct {
	fs  FileSystem
	log logrus.FieldLogger
}

func NewPathResolver(fs FileSystem, log logrus.FieldLogger) *PathResolver {
	if log == nil {
		log = discardLogger()
	}
	return &PathResolver{fs: fs, log: log}
}

// Resolve returns the candidate files for source. An existing regular file is
// returned on its own and filter is not consulted. Anything else is expanded
// as a glob, falling back to a plain listing of source when the glob finds
// nothing or only a single directory. Directories never become candidates.
func (r *PathResolver) Resolve(source string, filter *Pattern) ([]FileStatus, error) {
	if filter == nil {
		filter = MustCompilePattern(DefaultFileRegex)
	}

	exists, err := r.fs.Exists(source)
	if err != nil {
		return nil, &IOError{Op: "checking", Path: source, Err: err}
	}
	if exists {
		st, err := r.fs.Stat(source)
		if err != nil {
			return nil, &IOError{Op: "checking", Path: source, Err: err}
		}
		if !st.IsDir {
			return []FileStatus{st}, nil
		}
	}

	listing, err := r.fs.Glob(source, filter.Match)
	if err != nil {
		return nil, &IOError{Op: "globbing", Path: source, Err: err}
	}
	if len(listing) == 0 || (len(listing) == 1 && listing[0].IsDir) {
		r.log.WithField("source", source).Debug("Glob found no files, listing directory")
		listing, err = r.fs.List(source, filter.Match)
		if err != nil {
			if !(errors.Is(err, iofs.ErrNotExist) && HasGlobMeta(source)) {
				return nil, &IOError{Op: "listing", Path: source, Err: err}
			}
			listing = nil
		}
	}

	candidates := make([]FileStatus, 0, len(listing))
	for _, st := range listing {
		if st.IsDir {
			continue
		}
		candidates = append(candidates, st)
	}
	if len(candidates) == 0 {
		r.log.WithFields(logrus.Fields{"source": source, "fileRegex": filter.Desc()}).
			Warn("Not checking any files from source matching regular expression")
	}
	return candidates, nil
}
