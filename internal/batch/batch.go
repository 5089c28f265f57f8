package batch

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/limaJavier/wsat/internal/telemetry"
	"github.com/limaJavier/wsat/pkg/genetic"
	"github.com/limaJavier/wsat/pkg/sat"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

type Report struct {
	RunID       string
	Path        string
	Variables   uint64
	Clauses     uint64
	Best        uint64
	Generations int
	Duration    time.Duration
	Solution    sat.Solution // Empty when no satisfying assignment was found
}

// Runner solves formula files with independent genetic engines. The engine for the i-th file draws from a source
// seeded with (seed, i), so reports are reproducible whatever the degree of parallelism
type Runner struct {
	config   genetic.Config
	seed     uint64
	parallel int
	logger   *slog.Logger
	metrics  *telemetry.Metrics
}

type Option func(*Runner)

func WithSeed(seed uint64) Option {
	return func(runner *Runner) { runner.seed = seed }
}

// WithParallel sets how many files are solved at the same time
func WithParallel(parallel int) Option {
	return func(runner *Runner) { runner.parallel = max(parallel, 1) }
}

func WithLogger(logger *slog.Logger) Option {
	return func(runner *Runner) { runner.logger = logger }
}

func WithMetrics(metrics *telemetry.Metrics) Option {
	return func(runner *Runner) { runner.metrics = metrics }
}

// NewRunner validates config. A zero seed is replaced by a random one, available through Seed
func NewRunner(config genetic.Config, options ...Option) (*Runner, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	runner := &Runner{
		config:   config,
		parallel: 1,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, option := range options {
		option(runner)
	}
	for runner.seed == 0 {
		runner.seed = rand.Uint64()
	}
	return runner, nil
}

func (runner *Runner) Seed() uint64 {
	return runner.seed
}

// Run solves every file in paths and returns the reports in the same order. The first error stops scheduling new
// files; running searches are never interrupted
func (runner *Runner) Run(ctx context.Context, paths []string) ([]Report, error) {
	reports := make([]Report, len(paths))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(runner.parallel)
	for i, path := range paths {
		if groupCtx.Err() != nil {
			break
		}
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			report, err := runner.RunFile(path, uint64(i))
			if err != nil {
				return err
			}
			reports[i] = report
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return reports, nil
}

// RunFile solves the formula stored at path using the stream-th random source of the runner
func (runner *Runner) RunFile(path string, stream uint64) (Report, error) {
	formula, err := sat.FormulaFromFile(path)
	if err != nil {
		return Report{}, err
	}

	name := filepath.Base(path)
	report := Report{
		RunID:     uuid.NewString(),
		Path:      path,
		Variables: formula.Variables,
		Clauses:   formula.Clauses,
	}
	logger := runner.logger.With("run", report.RunID, "formula", name)

	observers := []genetic.Observer{genetic.NewLogObserver(logger)}
	if runner.metrics != nil {
		observers = append(observers, runner.metrics.Observer(name))
	}

	engine, err := genetic.NewEngine(
		formula,
		runner.config,
		rand.New(rand.NewPCG(runner.seed, stream)),
		genetic.WithObserver(genetic.MultiObserver(observers...)),
	)
	if err != nil {
		return Report{}, fmt.Errorf("cannot solve %v: %w", path, err)
	}

	logger.Info("solving formula", "variables", formula.Variables, "clauses", formula.Clauses)
	start := time.Now()
	result := engine.Run()
	report.Duration = time.Since(start)

	report.Best = result.Best.Fitness()
	report.Generations = result.Generations
	if report.Best > 0 {
		report.Solution = result.Best.Solution()
	}
	if runner.metrics != nil {
		runner.metrics.Finish(name, report.Best, report.Duration)
	}

	logger.Info("formula solved", "fitness", report.Best, "generations", report.Generations, "duration", report.Duration)
	return report, nil
}

func AverageDuration(reports []Report) time.Duration {
	if len(reports) == 0 {
		return 0
	}
	return lo.SumBy(reports, func(report Report) time.Duration { return report.Duration }) / time.Duration(len(reports))
}
