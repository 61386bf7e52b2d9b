package internal

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
)

var (
	ErrEmptyFile       = errors.New("empty file")
	ErrContentMismatch = errors.New("contents not found")
)

// ConfigError is a single configuration problem tied to a config property.
type ConfigError struct {
	Field   string
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Field, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// EmptyFileError is returned when failOnEmptyFile is set and a candidate has zero length.
type EmptyFileError struct {
	Path string
}

func (e *EmptyFileError) Error() string { return "Empty file " + e.Path }

func (e *EmptyFileError) Is(target error) bool { return target == ErrEmptyFile }

// ContentMismatchError is returned when at least one pattern has no full-line match in a file.
type ContentMismatchError struct {
	Path     string
	Patterns string
}

func (e *ContentMismatchError) Error() string {
	return fmt.Sprintf("The pattern %s was not found in file %s", e.Patterns, e.Path)
}

func (e *ContentMismatchError) Is(target error) bool { return target == ErrContentMismatch }

// IOError wraps a failed list/stat/open/read with the path it concerns.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("failed %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// ConfigErrors flattens an error returned by Config.Validate into its parts.
func ConfigErrors(err error) []*ConfigError {
	if err == nil {
		return nil
	}
	var merr *multierror.Error
	var out []*ConfigError
	if errors.As(err, &merr) {
		for _, e := range merr.Errors {
			var ce *ConfigError
			if errors.As(e, &ce) {
				out = append(out, ce)
			}
		}
		return out
	}
	var ce *ConfigError
	if errors.As(err, &ce) {
		out = append(out, ce)
	}
	return out
}
