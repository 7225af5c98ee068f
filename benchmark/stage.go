package benchmark

import "fmt"

// Stage names a step of a cell.
type Stage string

const (
	StageConfigure Stage = "configure"
	StageLoad      Stage = "load"
	StagePrepare   Stage = "prepare"
	StageDiscovery Stage = "discovery"
	StageWarmup    Stage = "warmup"
	StageTimed     Stage = "timed"
)

// StageError is a cell failure attributed to the stage that produced it.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
