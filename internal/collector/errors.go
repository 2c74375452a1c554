package collector

import "fmt"

// Stage names the pipeline step a run failed in
type Stage string

// Pipeline stages, in execution order
const (
	StageConfig  Stage = "config"
	StageSecrets Stage = "secrets"
	StageSink    Stage = "sink"
	StageBilling Stage = "billing"
	StageReport  Stage = "report"
	StageWrite   Stage = "write"
)

// FatalRunError ends a run. Every failure, whatever its cause, is reported
// as one of these; there is no retry and no partial success.
type FatalRunError struct {
	Stage Stage
	Err   error
}

func (e *FatalRunError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *FatalRunError) Unwrap() error {
	return e.Err
}

func fatal(stage Stage, err error) error {
	return &FatalRunError{Stage: stage, Err: err}
}
