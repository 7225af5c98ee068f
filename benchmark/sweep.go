package benchmark

import (
	"context"
	"log/slog"

	"github.com/nvr-ai/inferbench/inference"
	"github.com/nvr-ai/inferbench/inference/providers"
	"github.com/nvr-ai/inferbench/models"
)

// Plan is a validated request with its model and provider axes resolved.
type Plan struct {
	Request   Request
	Models    []models.Descriptor
	Selection providers.Selection
}

// Sizes returns the size axis for a model.
func (p *Plan) Sizes(model models.Descriptor) []int {
	switch {
	case model.HasFixedSize():
		return []int{model.FixedSize}
	case p.Request.SweepSizes():
		return CanonicalSizes()
	default:
		return []int{p.Request.Size}
	}
}

// Providers returns the provider axis for a size. During a size sweep the cpu
// provider only runs at SmallestSize.
func (p *Plan) Providers(size int) []providers.Name {
	if !p.Request.SweepSizes() || size == SmallestSize {
		return p.Selection.Providers
	}
	out := make([]providers.Name, 0, len(p.Selection.Providers))
	for _, n := range p.Selection.Providers {
		if n != providers.CPU {
			out = append(out, n)
		}
	}
	return out
}

// Cells enumerates the sweep: models, then sizes, then providers, then levels.
func (p *Plan) Cells() []Cell {
	cells, _ := p.enumerate()
	return cells
}

// Skipped returns the cells left out by the cpu size policy.
func (p *Plan) Skipped() []Cell {
	_, skipped := p.enumerate()
	return skipped
}

func (p *Plan) enumerate() (cells, skipped []Cell) {
	levels := p.Request.Levels()
	for _, m := range p.Models {
		for _, size := range p.Sizes(m) {
			allowed := make(map[providers.Name]bool)
			for _, n := range p.Providers(size) {
				allowed[n] = true
			}
			for _, n := range p.Selection.Providers {
				for _, level := range levels {
					c := Cell{Model: m, Size: size, Provider: n, Level: level}
					if allowed[n] {
						cells = append(cells, c)
					} else {
						skipped = append(skipped, c)
					}
				}
			}
		}
	}
	return cells, skipped
}

// SweepOptions wires the collaborators of a sweep.
type SweepOptions struct {
	Models    *models.Catalog
	Providers *providers.Catalog
	Backend   inference.Backend
	// Recorder receives every result. Nil disables recording.
	Recorder *Recorder
	Logger   *slog.Logger
}

// Sweep plans and executes benchmark sweeps one cell at a time.
type Sweep struct {
	models    *models.Catalog
	providers *providers.Catalog
	backend   inference.Backend
	recorder  *Recorder
	logger    *slog.Logger
}

// NewSweep creates a sweep controller.
func NewSweep(opts SweepOptions) *Sweep {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweep{
		models:    opts.Models,
		providers: opts.Providers,
		backend:   opts.Backend,
		recorder:  opts.Recorder,
		logger:    logger,
	}
}

// Plan resolves the request against the catalogs. Every error returned here
// is a configuration error and no session has been created.
//
// Arguments:
//   - req: The sweep request.
//
// Returns:
//   - *Plan: The resolved plan.
//   - error: models.ErrUnknownModel, models.ErrMissingArtifact,
//     providers.ErrUnknownProvider or providers.ErrNoProviders.
func (s *Sweep) Plan(req Request) (*Plan, error) {
	descriptors, err := s.models.Resolve(req.Model)
	if err != nil {
		return nil, err
	}
	if err := models.CheckArtifacts(descriptors); err != nil {
		return nil, err
	}

	selection, err := s.providers.Intersect(req.Provider, req.IncludeTensorRT)
	if err != nil {
		return nil, err
	}
	for _, n := range selection.Unavailable {
		s.logger.Warn("requested provider is not available, skipping", "provider", n)
	}
	for _, n := range selection.Excluded {
		s.logger.Info("provider left out of group request, pass --include-tensorrt to run it", "provider", n)
	}

	return &Plan{Request: req, Models: descriptors, Selection: selection}, nil
}

// Run executes every cell of the plan in order. Cell failures are part of the
// results; Run only stops early when ctx is cancelled between cells.
//
// Arguments:
//   - ctx: Cancellation, checked before each cell.
//   - plan: The plan from Plan.
//
// Returns:
//   - []RunResult: One result per executed cell.
//   - error: ctx.Err() if the sweep was interrupted.
func (s *Sweep) Run(ctx context.Context, plan *Plan) ([]RunResult, error) {
	req := plan.Request
	runner := NewRunner(RunnerOptions{
		Backend: s.backend,
		Factory: providers.NewFactory(req.FactoryOptions()),
		Warmup:  req.Warmup,
		Runs:    req.Runs,
		Seed:    req.Seed,
		Logger:  s.logger,
	})

	for _, c := range plan.Skipped() {
		s.logger.Debug("cell skipped by cpu size policy", "model", c.Model.Alias, "provider", c.Provider, "size", c.Size)
	}

	if s.recorder != nil {
		s.recorder.Begin(req)
	}

	cells := plan.Cells()
	results := make([]RunResult, 0, len(cells))
	for i, c := range cells {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		s.logger.Info("running cell",
			"cell", i+1, "of", len(cells),
			"model", c.Model.Alias, "size", c.Size, "provider", c.Provider, "level", c.Level)

		res := runner.RunCell(c)
		if s.recorder != nil {
			s.recorder.Record(res, req.GPU)
		}
		results = append(results, res)
	}
	return results, nil
}
