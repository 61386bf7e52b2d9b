package internal

import (
	"path/filepath"
	"strconv"

	"github.com/hashicorp/go-multierror"
)

// PluginName is the stage name the action registers under.
const PluginName = "FileContents"

// Config property names.
const (
	FieldSourcePath        = "sourceFilePath"
	FieldFileRegex         = "fileRegex"
	FieldFileContentsRegex = "fileContentsRegex"
	FieldFailOnEmptyFile   = "failOnEmptyFile"
)

// Config is the stage configuration. String fields may hold ${name} macros
// that are expanded from runtime arguments before the action runs.
type Config struct {
	// SourcePath is a file, a directory or a glob, optionally with a scheme.
	SourcePath string `koanf:"sourceFilePath"`
	// FileRegex filters base names when SourcePath is not a single file.
	FileRegex string `koanf:"fileRegex"`
	// FileContentsRegex is a ~-separated list of full-line patterns.
	FileContentsRegex string `koanf:"fileContentsRegex"`
	// FailOnEmptyFile is required: "true", "false" or a macro that expands to
	// one of them.
	FailOnEmptyFile string `koanf:"failOnEmptyFile"`
}

// FailOnEmpty returns the flag value, false when unset or not a boolean.
func (c Config) FailOnEmpty() bool {
	v, _ := strconv.ParseBool(c.FailOnEmptyFile)
	return v
}

// Validate checks every property and returns all problems together as a
// *multierror.Error of *ConfigError, or nil. Properties that still contain a
// macro are skipped. fss may be nil to skip the filesystem scheme check.
func (c Config) Validate(fss *FileSystems) error {
	var result *multierror.Error

	if c.FileRegex != "" && !ContainsMacro(c.FileRegex) {
		if _, err := CompilePattern(c.FileRegex); err != nil {
			result = multierror.Append(result, &ConfigError{
				Field:   FieldFileRegex,
				Message: "The regular expression pattern provided to match files is not a valid regular expression",
				Err:     err,
			})
		}
	}

	if !ContainsMacro(c.FileContentsRegex) {
		for _, seg := range SplitPatterns(c.FileContentsRegex) {
			if _, err := CompilePattern(seg); err != nil {
				result = multierror.Append(result, &ConfigError{
					Field:   FieldFileContentsRegex,
					Message: "The regular expression pattern '" + seg + "' provided to check file contents is not a valid regular expression",
					Err:     err,
				})
			}
		}
	}

	switch {
	case c.SourcePath == "":
		result = multierror.Append(result, &ConfigError{
			Field:   FieldSourcePath,
			Message: "Source file path must be specified",
		})
	case ContainsMacro(c.SourcePath):
	case fss != nil && !fss.Supports(c.SourcePath):
		result = multierror.Append(result, &ConfigError{
			Field:   FieldSourcePath,
			Message: "Cannot determine the file system of the source file",
		})
	default:
		// same matcher as afero.Glob
		if _, rest := SplitScheme(c.SourcePath); HasGlobMeta(rest) {
			if _, err := filepath.Match(rest, ""); err != nil {
				result = multierror.Append(result, &ConfigError{
					Field:   FieldSourcePath,
					Message: "The source file path is not a valid glob pattern",
					Err:     err,
				})
			}
		}
	}

	switch {
	case c.FailOnEmptyFile == "":
		result = multierror.Append(result, &ConfigError{
			Field:   FieldFailOnEmptyFile,
			Message: "Fail on empty file must be specified",
		})
	case ContainsMacro(c.FailOnEmptyFile):
	default:
		if _, err := strconv.ParseBool(c.FailOnEmptyFile); err != nil {
			result = multierror.Append(result, &ConfigError{
				Field:   FieldFailOnEmptyFile,
				Message: "Fail on empty file must be true or false",
				Err:     err,
			})
		}
	}

	return result.ErrorOrNil()
}

// Expand returns a copy of c with macros replaced from args. Every property
// left with an unknown macro is reported.
func (c Config) Expand(args map[string]string) (Config, error) {
	var result *multierror.Error
	expand := func(field, value string) string {
		out, missing := expandMacros(value, args)
		for _, name := range missing {
			result = multierror.Append(result, &ConfigError{
				Field:   field,
				Message: "No runtime argument for macro ${" + name + "}",
			})
		}
		return out
	}

	out := c
	out.SourcePath = expand(FieldSourcePath, c.SourcePath)
	out.FileRegex = expand(FieldFileRegex, c.FileRegex)
	out.FileContentsRegex = expand(FieldFileContentsRegex, c.FileContentsRegex)
	out.FailOnEmptyFile = expand(FieldFailOnEmptyFile, c.FailOnEmptyFile)
	return out, result.ErrorOrNil()
}
