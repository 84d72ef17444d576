package resumes

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

// Stage names the pipeline step an upload failed in.
type Stage string

const (
	StageIntake     Stage = "intake"
	StageExtraction Stage = "extraction"
	StageAnalysis   Stage = "analysis"
	StagePersist    Stage = "persist"
)

// Upload states, logged as the pipeline advances.
const (
	stateReceived  = "received"
	stateValidated = "validated"
	stateExtracted = "extracted"
	stateAnalyzed  = "analyzed"
	statePersisted = "persisted"
	stateFailed    = "failed"
)

// StageError is the terminal Failed(stage, reason) of an upload.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("upload failed at %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
