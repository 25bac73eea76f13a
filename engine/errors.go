package engine

import (
	"errors"
	"fmt"
)

// Stage identifies the pipeline step that failed.
type Stage int

const (
	StageConfig Stage = iota + 1
	StageGenerate
	StageReparse
	StageSplice
)

func (s Stage) String() string {
	switch s {
	case StageConfig:
		return "configuration"
	case StageGenerate:
		return "binding generation"
	case StageReparse:
		return "reparsing generated bindings"
	case StageSplice:
		return "splicing bindings"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// Error is returned by every failing step of the pipeline. Callers decide
// whether to retry or report based on Stage.
type Error struct {
	Stage Stage
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func stageErr(stage Stage, err error) error {
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	return &Error{Stage: stage, Err: err}
}

func stageErrf(stage Stage, format string, args ...interface{}) error {
	return &Error{Stage: stage, Err: fmt.Errorf(format, args...)}
}

// StageOf extracts the failing stage from err, if it came from this package.
func StageOf(err error) (Stage, bool) {
	var se *Error
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return 0, false
}
