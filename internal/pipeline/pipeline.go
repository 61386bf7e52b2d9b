package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// Stage is one discrete step of a pipeline run.
type Stage interface {
	Name() string
	// Configure validates the stage before anything runs.
	Configure(ctx context.Context) error
	// Run executes the stage once. A non-nil error fails the whole run.
	Run(ctx context.Context) error
}

const (
	PhaseConfigure = "configure"
	PhaseRun       = "run"
)

// StageError is the terminal outcome of a failed run.
type StageError struct {
	Stage string
	Phase string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s failed to %s: %v", e.Stage, e.Phase, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Run configures every stage, then runs them in order. It stops at the first
// failure.
func Run(ctx context.Context, log logrus.FieldLogger, stages ...Stage) error {
	for _, s := range stages {
		if err := s.Configure(ctx); err != nil {
			return &StageError{Stage: s.Name(), Phase: PhaseConfigure, Err: err}
		}
	}
	for _, s := range stages {
		if err := ctx.Err(); err != nil {
			return &StageError{Stage: s.Name(), Phase: PhaseRun, Err: err}
		}
		start := time.Now()
		log.WithField("stage", s.Name()).Info("Stage started")
		if err := s.Run(ctx); err != nil {
			log.WithFields(logrus.Fields{"stage": s.Name(), "err": err}).Error("Stage failed")
			return &StageError{Stage: s.Name(), Phase: PhaseRun, Err: err}
		}
		log.WithField("stage", s.Name()).Infof("Stage finished in %s", time.Since(start))
	}
	return nil
}
