package main

import (
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/limaJavier/wsat/internal/batch"
	"github.com/limaJavier/wsat/internal/config"
	"github.com/limaJavier/wsat/internal/telemetry"
	"github.com/limaJavier/wsat/pkg/sat"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var (
	header  = color.New(color.FgCyan, color.Bold)
	success = color.New(color.FgGreen)
	failure = color.New(color.FgRed)

	solvers = map[string]func() sat.SATSolver{
		"gophersat": sat.NewGophersatSolver,
		"gini":      sat.NewGiniSolver,
	}
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "wsat",
		Short:         "Genetic algorithm for weighted 3-SAT formulas",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newSolveCommand(), newWeightsCommand(), newExactCommand())
	return root
}

func newSolveCommand() *cobra.Command {
	var (
		configPath  string
		metricsAddr string
		verbose     bool
		settings    = config.Default()
	)

	command := &cobra.Command{
		Use:   "solve PATH [POPULATION_SIZE GENERATIONS MUTATION_PROBABILITY TOURNAMENT_SIZE NUMBER_OF_ELITES]",
		Short: "Run the genetic algorithm on a weighted DIMACS .cnf file or on every .cnf file of a directory",
		Long: `Run the genetic algorithm on a weighted DIMACS .cnf file or on every .cnf file of a directory.

Parameters may come from a config file (--config, or config.json next to the executable), from flags or from the
five positional values following PATH, in increasing order of precedence. A negative number of generations stops
the search once the best fitness stays unchanged for that many consecutive generations; separate the positional
values with -- in that case (e.g. wsat solve -- f.cnf 100 -50 0.05 3 2).`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 && len(args) != 6 {
				return fmt.Errorf("expected PATH and optionally the five genetic parameters, got %d arguments", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			resolved, err := resolveConfig(cmd, configPath, settings, args[1:])
			if err != nil {
				return err
			}
			return solve(cmd, args[0], resolved, metricsAddr, verbose)
		},
	}

	flags := command.Flags()
	flags.StringVar(&configPath, "config", "", "Path to a JSON config file")
	flags.IntVar(&settings.PopulationSize, "population", settings.PopulationSize, "Size of the population")
	flags.IntVar(&settings.Generations, "generations", settings.Generations, "Number of generations; negative values stop after that many generations without improvement")
	flags.Float64Var(&settings.MutationProbability, "mutation", settings.MutationProbability, "Probability of mutating an offspring")
	flags.IntVar(&settings.TournamentSize, "tournament", settings.TournamentSize, "Size of the tournament")
	flags.IntVar(&settings.NumberOfElites, "elites", settings.NumberOfElites, "Number of fittest chromosomes carried over to the next generation")
	flags.IntVar(&settings.Workers, "workers", settings.Workers, "Goroutines computing fitness within a generation")
	flags.IntVar(&settings.Parallel, "parallel", settings.Parallel, "Formulas solved at the same time")
	flags.Uint64Var(&settings.Seed, "seed", settings.Seed, "Master random seed; 0 picks a random one")
	flags.BoolVar(&settings.Annotate, "annotate", settings.Annotate, "Generate weights for files lacking a weights line before solving")
	flags.StringVar(&metricsAddr, "metrics-addr", "", "Expose Prometheus metrics on this address (e.g. :9090) while solving")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Log the best fitness of every generation")
	return command
}

// resolveConfig layers the config file, the explicitly set flags and the positional parameters, in that order
func resolveConfig(cmd *cobra.Command, configPath string, flagged config.Config, positional []string) (config.Config, error) {
	if configPath == "" {
		configPath = config.Locate()
	}

	resolved := config.Default()
	if configPath != "" {
		var err error
		if resolved, err = config.Load(configPath); err != nil {
			return config.Config{}, err
		}
	}

	overrides := map[string]func(){
		"population":  func() { resolved.PopulationSize = flagged.PopulationSize },
		"generations": func() { resolved.Generations = flagged.Generations },
		"mutation":    func() { resolved.MutationProbability = flagged.MutationProbability },
		"tournament":  func() { resolved.TournamentSize = flagged.TournamentSize },
		"elites":      func() { resolved.NumberOfElites = flagged.NumberOfElites },
		"workers":     func() { resolved.Workers = flagged.Workers },
		"parallel":    func() { resolved.Parallel = flagged.Parallel },
		"seed":        func() { resolved.Seed = flagged.Seed },
		"annotate":    func() { resolved.Annotate = flagged.Annotate },
	}
	for name, override := range overrides {
		if cmd.Flags().Changed(name) {
			override()
		}
	}

	if len(positional) == 5 {
		var err error
		if resolved.PopulationSize, err = strconv.Atoi(positional[0]); err != nil {
			return config.Config{}, fmt.Errorf("invalid population size %q: %w", positional[0], err)
		}
		if resolved.Generations, err = strconv.Atoi(positional[1]); err != nil {
			return config.Config{}, fmt.Errorf("invalid generations %q: %w", positional[1], err)
		}
		if resolved.MutationProbability, err = strconv.ParseFloat(positional[2], 64); err != nil {
			return config.Config{}, fmt.Errorf("invalid mutation probability %q: %w", positional[2], err)
		}
		if resolved.TournamentSize, err = strconv.Atoi(positional[3]); err != nil {
			return config.Config{}, fmt.Errorf("invalid tournament size %q: %w", positional[3], err)
		}
		if resolved.NumberOfElites, err = strconv.Atoi(positional[4]); err != nil {
			return config.Config{}, fmt.Errorf("invalid number of elites %q: %w", positional[4], err)
		}
	}

	return resolved, resolved.Validate()
}

func solve(cmd *cobra.Command, path string, settings config.Config, metricsAddr string, verbose bool) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	out := cmd.OutOrStdout()

	paths, directory, err := formulaPaths(path)
	if err != nil {
		return err
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	options := []batch.Option{
		batch.WithSeed(settings.Seed),
		batch.WithParallel(settings.Parallel),
		batch.WithLogger(logger),
	}
	if metricsAddr != "" {
		registry := prometheus.NewRegistry()
		options = append(options, batch.WithMetrics(telemetry.NewMetrics(registry)))
		go func() {
			if err := telemetry.Serve(ctx, metricsAddr, registry); err != nil {
				logger.Error("cannot expose metrics", "error", err)
			}
		}()
	}

	runner, err := batch.NewRunner(settings.Config, options...)
	if err != nil {
		return err
	}
	logger.Info("random seed", "seed", runner.Seed())

	if settings.Annotate {
		if err := annotateFormulas(runner.Seed(), paths); err != nil {
			return err
		}
	}

	reports, err := runner.Run(ctx, paths)
	if err != nil {
		return err
	}

	for _, report := range reports {
		printReport(out, report)
	}
	if directory {
		fmt.Fprintf(out, "\nAVERAGE TIME OF GENETIC ALGORITHM: %v ms\n", batch.AverageDuration(reports).Milliseconds())
	}
	return nil
}

// annotateFormulas adds weights to the files of paths lacking them. Weights are drawn from a stream of seed that the
// runner never uses
func annotateFormulas(seed uint64, paths []string) error {
	random := rand.New(rand.NewPCG(seed, uint64(len(paths))))
	for _, file := range paths {
		if _, err := sat.AnnotateFile(random, file); err != nil {
			return err
		}
	}
	return nil
}

func printReport(out io.Writer, report batch.Report) {
	header.Fprintf(out, "\n### SOLVING FORMULA: %v ###\n", filepath.Base(report.Path))
	fmt.Fprintf(out, "VARIABLES: %v CLAUSES: %v GENERATIONS: %v\n", report.Variables, report.Clauses, report.Generations)
	if report.Best > 0 {
		success.Fprintf(out, "BEST FITNESS: %v\n", report.Best)
	} else {
		failure.Fprintf(out, "BEST FITNESS: %v (no satisfying assignment found)\n", report.Best)
	}
	fmt.Fprintf(out, "TIME OF GENETIC ALGORITHM: %v ms\n", report.Duration.Milliseconds())
}

// formulaPaths returns the formula files denoted by path and whether path is a directory
func formulaPaths(path string) ([]string, bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, false, fmt.Errorf("specified path doesn't exist: %w", err)
	}
	if !info.IsDir() {
		return []string{path}, false, nil
	}

	paths, err := sat.FormulaFiles(path)
	if err != nil {
		return nil, true, err
	} else if len(paths) == 0 {
		return nil, true, fmt.Errorf("no .cnf files found in %v", path)
	}
	return paths, true, nil
}

func newWeightsCommand() *cobra.Command {
	var seed uint64

	command := &cobra.Command{
		Use:   "weights PATH",
		Short: "Generate random weights for a DIMACS .cnf file, or every .cnf file of a directory, lacking them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for seed == 0 {
				seed = rand.Uint64()
			}
			random := rand.New(rand.NewPCG(seed, 0))

			paths, _, err := formulaPaths(args[0])
			if err != nil {
				return err
			}
			for _, path := range paths {
				annotated, err := sat.AnnotateFile(random, path)
				if err != nil {
					return err
				}
				if annotated {
					fmt.Fprintf(cmd.OutOrStdout(), "weights written to %v\n", path)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "%v already has weights\n", path)
				}
			}
			return nil
		},
	}
	command.Flags().Uint64Var(&seed, "seed", 0, "Random seed; 0 picks a random one")
	return command
}

func newExactCommand() *cobra.Command {
	var solverName string

	command := &cobra.Command{
		Use:   "exact PATH",
		Short: "Solve a weighted DIMACS .cnf file with an exact solver, as a reference for the genetic algorithm",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			newSolver, ok := solvers[solverName]
			if !ok {
				return fmt.Errorf("%v is not a valid solver", solverName)
			}

			paths, _, err := formulaPaths(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, path := range paths {
				formula, err := sat.FormulaFromFile(path)
				if err != nil {
					return err
				}

				start := time.Now()
				solution, err := newSolver().Solve(formula)
				if err != nil {
					return fmt.Errorf("an error occurred while solving %v: %w", path, err)
				}

				header.Fprintf(out, "\n### SOLVING FORMULA: %v ###\n", filepath.Base(path))
				if solution == nil {
					failure.Fprintln(out, "UNSATISFIABLE")
				} else {
					success.Fprintf(out, "WEIGHT: %v\n", formula.Weight(solution.Assignment(formula.Variables)))
				}
				fmt.Fprintf(out, "TIME OF %v: %v ms\n", solverName, time.Since(start).Milliseconds())
			}
			return nil
		},
	}
	command.Flags().StringVar(&solverName, "solver", "gophersat", "Exact solver: \"gophersat\" (maximum weight) or \"gini\" (any satisfying assignment)")
	return command
}

