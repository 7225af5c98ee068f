package benchmark

import (
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"github.com/nvr-ai/inferbench/inference"
	"github.com/nvr-ai/inferbench/inference/providers"
	"github.com/nvr-ai/inferbench/models"
)

// Cell is one combination of the sweep.
type Cell struct {
	Model    models.Descriptor
	Size     int
	Provider providers.Name
	Level    providers.OptimizationLevel
}

func (c Cell) target() providers.Target {
	return providers.Target{Model: c.Model, Provider: c.Provider, Level: c.Level}
}

// RunnerOptions configures a Runner.
type RunnerOptions struct {
	Backend inference.Backend
	Factory *providers.Factory
	Warmup  int
	Runs    int
	Seed    uint64
	Logger  *slog.Logger
}

// Runner executes single cells. The session of a cell is closed before
// RunCell returns on every path, including panics raised by the backend.
type Runner struct {
	backend inference.Backend
	factory *providers.Factory
	warmup  int
	runs    int
	seed    uint64
	logger  *slog.Logger
	now     func() time.Time
}

// NewRunner creates a cell runner.
func NewRunner(opts RunnerOptions) *Runner {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		backend: opts.Backend,
		factory: opts.Factory,
		warmup:  opts.Warmup,
		runs:    opts.Runs,
		seed:    opts.Seed,
		logger:  logger,
		now:     time.Now,
	}
}

// RunCell benchmarks one cell. Failures never escape: they are returned as a
// failed RunResult whose Error names the failing stage.
//
// Arguments:
//   - cell: The combination to run.
//
// Returns:
//   - RunResult: The outcome.
func (r *Runner) RunCell(cell Cell) (result RunResult) {
	result = RunResult{
		Provider: string(cell.Provider),
		Model:    cell.Model.Alias,
		Level:    string(cell.Level),
		Size:     cell.Size,
	}

	stage := StageConfigure
	defer func() {
		if p := recover(); p != nil {
			result = result.fail(&StageError{Stage: stage, Err: errors.Errorf("panic: %v", p)})
		}
		if !result.Success {
			r.logger.Error("cell failed", "model", result.Model, "provider", result.Provider,
				"level", result.Level, "size", result.SizeString(), "error", result.Error)
		}
	}()

	if err := r.run(cell, &result, &stage); err != nil {
		return result.fail(err)
	}
	result.Success = true
	return result
}

func (r *Runner) run(cell Cell, result *RunResult, stage *Stage) error {
	fail := func(err error) error {
		return &StageError{Stage: *stage, Err: err}
	}

	cfg, artifact, err := r.factory.Configure(cell.target())
	if err != nil {
		return fail(err)
	}
	result.Level = cfg.LevelLabel()

	if providers.IsSlowCompile(cell.Provider) {
		r.logger.Warn("first inference compiles an engine and may block for several minutes",
			"provider", cell.Provider, "model", cell.Model.Alias, "size", cell.Size)
	}

	*stage = StageLoad
	start := r.now()
	session, err := r.backend.NewSession(artifact, cfg)
	result.LoadTime = r.since(start)
	if err != nil {
		return fail(err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			r.logger.Warn("failed to close session", "model", cell.Model.Alias, "provider", cell.Provider, "error", err)
		}
	}()

	*stage = StagePrepare
	input, err := inference.NewInputTensor(cell.Size, session.InputPrecision(), r.seed)
	if err != nil {
		return fail(err)
	}
	r.logger.Debug("input prepared", "shape", input.Shape, "precision", input.Precision,
		"fingerprint", input.Fingerprint())

	*stage = StageDiscovery
	start = r.now()
	shape, err := session.Discover(input)
	result.FirstRunTime = r.since(start)
	if err != nil {
		return fail(err)
	}
	result.OutputShape = shape

	*stage = StagePrepare
	output, err := inference.NewTensor(shape, session.OutputPrecision())
	if err != nil {
		return fail(errors.Wrap(err, "error allocating output"))
	}

	*stage = StageWarmup
	for i := 0; i < r.warmup; i++ {
		if err := session.Run(input, output); err != nil {
			return fail(errors.Wrapf(err, "warmup iteration %d", i))
		}
	}

	*stage = StageTimed
	timings := make([]float64, 0, r.runs)
	for i := 0; i < r.runs; i++ {
		start = r.now()
		err := session.Run(input, output)
		elapsed := r.since(start)
		if err != nil {
			return fail(errors.Wrapf(err, "timed iteration %d", i))
		}
		timings = append(timings, elapsed)
	}
	result.Timings = timings
	return nil
}

func (r *Runner) since(start time.Time) float64 {
	return r.now().Sub(start).Seconds()
}
