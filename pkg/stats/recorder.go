package stats

import (
	"github.com/rs/zerolog"

	"github.com/zentheon/respackr/pkg/errors"
	"github.com/zentheon/respackr/pkg/logging"
)

// Recorder is the single sink for non-fatal problems during a run. It logs
// the problem, counts it in the tally, and decides whether the run should
// keep going. With exitOnError set, every recorded error is promoted to a
// fatal abort (strict CI mode); warnings are never promoted.
type Recorder struct {
	tally       *Tally
	logger      zerolog.Logger
	exitOnError bool
}

// NewRecorder creates a Recorder writing into tally.
func NewRecorder(tally *Tally, exitOnError bool) *Recorder {
	return &Recorder{
		tally:       tally,
		logger:      logging.GetLogger("recorder"),
		exitOnError: exitOnError,
	}
}

// Tally returns the underlying tally.
func (r *Recorder) Tally() *Tally {
	return r.tally
}

// Warn records a warning and always returns nil.
func (r *Recorder) Warn(err *errors.Error) error {
	if err == nil {
		return nil
	}
	err.Severity = errors.SeverityWarning
	r.tally.CountProblem(errors.SeverityWarning, err.Code)
	r.event(r.logger.Warn(), err).Msg(err.Message)
	return nil
}

// Error records a non-fatal error. It returns nil unless exit-on-error is
// set, in which case the error comes back promoted to fatal and the caller
// is expected to abort.
func (r *Recorder) Error(err *errors.Error) error {
	if err == nil {
		return nil
	}
	err.Severity = errors.SeverityError
	r.tally.CountProblem(errors.SeverityError, err.Code)
	r.event(r.logger.Error(), err).Msg(err.Message)
	if r.exitOnError {
		r.logger.Debug().Msg("exit-on-error set, promoting to fatal")
		return err.AsFatal()
	}
	return nil
}

// Fatal records a fatal error and returns it for propagation up the
// pipeline.
func (r *Recorder) Fatal(err *errors.Error) error {
	if err == nil {
		return nil
	}
	err.Severity = errors.SeverityFatal
	r.tally.CountProblem(errors.SeverityFatal, err.Code)
	r.event(r.logger.Error(), err).Msg(err.Message)
	return err
}

func (r *Recorder) event(ev *zerolog.Event, err *errors.Error) *zerolog.Event {
	ev = ev.Str("kind", string(err.Code))
	for k, v := range err.Details {
		ev = ev.Interface(k, v)
	}
	if err.Wrapped != nil {
		ev = ev.Err(err.Wrapped)
	}
	return ev
}
