package internal

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// FileContentsAction checks that the files behind a source path are not empty
// and contain the configured lines. It is one pipeline stage.
type FileContentsAction struct {
	cfg   Config
	fss   *FileSystems
	args  map[string]string
	log   logrus.FieldLogger
	stats *RunStats
}

type Option func(*FileContentsAction)

// WithLogger sets where diagnostics go. The default discards them.
func WithLogger(log logrus.FieldLogger) Option {
	return func(a *FileContentsAction) { a.log = log }
}

// WithFileSystems replaces the default scheme registry.
func WithFileSystems(fss *FileSystems) Option {
	return func(a *FileContentsAction) { a.fss = fss }
}

// WithArguments sets the runtime arguments macros are expanded from.
func WithArguments(args map[string]string) Option {
	return func(a *FileContentsAction) { a.args = args }
}

// WithStats collects run counters into stats.
func WithStats(stats *RunStats) Option {
	return func(a *FileContentsAction) { a.stats = stats }
}

func NewFileContentsAction(cfg Config, opts ...Option) *FileContentsAction {
	a := &FileContentsAction{cfg: cfg}
	for _, o := range opts {
		o(a)
	}
	if a.fss == nil {
		a.fss = NewFileSystems()
	}
	if a.log == nil {
		a.log = discardLogger()
	}
	if a.stats == nil {
		a.stats = &RunStats{}
	}
	return a
}

func (a *FileContentsAction) Name() string { return PluginName }

// Configure validates the configuration at deploy time. Properties holding
// macros are not checked until Run.
func (a *FileContentsAction) Configure(_ context.Context) error {
	return a.cfg.Validate(a.fss)
}

// Run expands macros, validates, resolves the candidate files and validates
// them in order. The first failing file ends the run.
func (a *FileContentsAction) Run(ctx context.Context) error {
	a.stats.Start()

	cfg, err := a.cfg.Expand(a.args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(a.fss); err != nil {
		return err
	}

	patterns, err := ParsePatternSet(cfg.FileContentsRegex)
	if err != nil {
		return err
	}
	fileRegex := cfg.FileRegex
	if fileRegex == "" {
		fileRegex = DefaultFileRegex
	}
	filter, err := CompilePattern(fileRegex)
	if err != nil {
		return &ConfigError{Field: FieldFileRegex, Message: "invalid regular expression", Err: err}
	}
	a.log.Debugf("Loaded %d content patterns", patterns.Len())

	fsys, source, err := a.fss.Open(ctx, cfg.SourcePath)
	if err != nil {
		return &IOError{Op: "opening filesystem for", Path: cfg.SourcePath, Err: err}
	}
	if closer, ok := fsys.(io.Closer); ok {
		defer closer.Close()
	}

	log := a.log.WithField("stage", a.Name())
	candidates, err := NewPathResolver(fsys, log).Resolve(source, filter)
	if err != nil {
		return err
	}
	a.stats.Candidates.Add(int64(len(candidates)))

	validator := NewFileValidator(fsys, cfg.FailOnEmpty(), patterns, log)
	for _, file := range candidates {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("run aborted: %w", err)
		}
		if file.Size == 0 {
			a.stats.Empty.Add(1)
		}
		if err := validator.Validate(file); err != nil {
			return err
		}
		a.stats.Checked.Add(1)
	}

	log.Infof("Stats: candidates=%d checked=%d empty=%d elapsed=%s",
		a.stats.Candidates.Load(), a.stats.Checked.Load(), a.stats.Empty.Load(), a.stats.Elapsed())
	return nil
}
