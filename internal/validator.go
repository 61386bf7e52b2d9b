package internal

import (
	"github.com/sirupsen/logrus"
)

// FileValidator checks one candidate file for emptiness and required contents.
type FileValidator struct {
	fs          FileSystem
	failOnEmpty bool
	patterns    *PatternSet
	log         logrus.FieldLogger
}

func NewFileValidator(fs FileSystem, failOnEmpty bool, patterns *PatternSet, log logrus.FieldLogger) *FileValidator {
	if patterns == nil {
		patterns = &PatternSet{}
	}
	if log == nil {
		log = discardLogger()
	}
	return &FileValidator{fs: fs, failOnEmpty: failOnEmpty, patterns: patterns, log: log}
}

// Validate returns nil, *EmptyFileError, *ContentMismatchError or *IOError.
// Emptiness is checked and reported before contents.
func (v *FileValidator) Validate(file FileStatus) error {
	v.log.WithFields(logrus.Fields{"file": file.Location, "size": file.Size}).Debug("Checking file")

	if v.failOnEmpty && file.Size == 0 {
		return &EmptyFileError{Path: file.Location}
	}
	if v.patterns.Empty() {
		return nil
	}

	ok, err := v.hasContents(file)
	if err != nil {
		return err
	}
	if !ok {
		return &ContentMismatchError{Path: file.Location, Patterns: v.patterns.String()}
	}
	return nil
}

func (v *FileValidator) hasContents(file FileStatus) (bool, error) {
	f, err := v.fs.Open(file.Path)
	if err != nil {
		return false, &IOError{Op: "opening", Path: file.Location, Err: err}
	}
	defer f.Close()

	ok, err := v.patterns.SatisfiedBy(f)
	if err != nil {
		return false, &IOError{Op: "reading", Path: file.Location, Err: err}
	}
	return ok, nil
}
