package sim

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/simpilot/simpilot/internal/ode"
)

// Status is the closed classification of a finished launch.
type Status string

const (
	// StatusCompleted: the engine reached the final time.
	StatusCompleted Status = "completed"
	// StatusStepLimit: the engine gave up after its step budget; an
	// expected early termination, not a failure.
	StatusStepLimit Status = "step-limit"
	// StatusFailed: anything else the engine reported.
	StatusFailed Status = "failed"
)

// Outcome describes how a launch ended. FinalTime is the configured final
// time for a completed run and the time actually reached for an early
// termination. Message carries the flattened failure chain, empty unless
// the run failed.
type Outcome struct {
	Status    Status
	Stats     ode.Stats
	FinalTime float64
	Message   string
}

// Classify maps an integration result to its status.
func Classify(err error) Status {
	if err == nil {
		return StatusCompleted
	}
	var sle *ode.StepLimitError
	if errors.As(err, &sle) {
		return StatusStepLimit
	}
	return StatusFailed
}

// report logs the integration result and folds it into an Outcome.
func (s *Simulation[U]) report(logger *slog.Logger, stats ode.Stats, err error) Outcome {
	out := Outcome{Status: Classify(err), Stats: stats}
	switch out.Status {
	case StatusCompleted:
		out.FinalTime = s.FinalTime
		logger.Info("completed simulation",
			"name", s.Name,
			"time", s.FinalTime,
			"stats", stats.String())
	case StatusStepLimit:
		var sle *ode.StepLimitError
		errors.As(err, &sle)
		out.FinalTime = sle.Time
		logger.Warn("terminating simulation early, step limit reached",
			"name", s.Name,
			"time", sle.Time,
			"max_steps", sle.Steps)
	case StatusFailed:
		out.Message = fmt.Sprintf("aborting simulation %s: %s", s.Name, FlattenError(err))
		fmt.Fprintf(os.Stderr, "Error: %s\n", out.Message)
		logger.Error(out.Message)
	}
	return out
}

// FlattenError renders an error chain as a single line, proximate cause
// first down to the root, each layer's own message appearing once.
func FlattenError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	for cause := errors.Unwrap(err); cause != nil; cause = errors.Unwrap(cause) {
		s := cause.Error()
		if !strings.HasSuffix(msg, s) {
			msg += ": " + s
		}
	}
	return msg
}
