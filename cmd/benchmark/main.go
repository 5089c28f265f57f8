package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/limaJavier/wsat/pkg/genetic"
	"github.com/limaJavier/wsat/pkg/sat"
	"github.com/spf13/cobra"
)

const (
	testDirectory = "../../test/"
	resultsFile   = "benchmark_results.csv"
	seed          = 42
)

type ResultType int

const (
	optimal       ResultType = iota // Best fitness equals the exact optimum
	suboptimal                      // A satisfying assignment below the optimum was found
	unsatisfied                     // The formula is satisfiable but no satisfying assignment was found
	unsatisfiable                   // The formula has no satisfying assignment
)

var resultTypes = map[ResultType]string{
	optimal:       "optimal",
	suboptimal:    "suboptimal",
	unsatisfied:   "unsatisfied",
	unsatisfiable: "unsatisfiable",
}

type TestMetadata struct {
	Name        string
	Variables   uint64
	Clauses     uint64
	TotalWeight uint64
	Satisfiable bool
	Optimum     uint64 // Maximum weight of a satisfying assignment, meaningless when unsatisfiable
}

type BenchmarkResult struct {
	RunID       string
	Test        TestMetadata
	Config      genetic.Config
	Best        uint64
	Generations int
	Duration    time.Duration
	Result      ResultType
}

func main() {
	var directory, output string

	command := &cobra.Command{
		Use:   "benchmark",
		Short: "Compare the genetic algorithm against the exact maximum weight of every .cnf file of a directory",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			paths, err := sat.FormulaFiles(directory)
			if err != nil {
				log.Fatal(err)
			}

			configs := getConfigs()
			results := make([]BenchmarkResult, 0, len(paths)*len(configs))
			for i, path := range paths {
				formula, err := sat.FormulaFromFile(path)
				if err != nil {
					log.Fatal(err)
				}
				test := getTest(path, formula)

				for j, config := range configs {
					fmt.Printf("Benchmarking test \"%v\" with population %v, generations %v, mutation %v, tournament %v and elites %v\n", test.Name, config.PopulationSize, config.Generations, config.MutationProbability, config.TournamentSize, config.NumberOfElites)
					results = append(results, measure(formula, test, config, uint64(i*len(configs)+j)))
				}
			}

			file, err := os.Create(output)
			if err != nil {
				log.Panicf("cannot create CSV file: %v", err)
			}
			defer file.Close()

			if err := toCsv(file, results); err != nil {
				log.Panic(err)
			}
		},
	}
	command.Flags().StringVar(&directory, "directory", testDirectory, "Directory holding the weighted .cnf files")
	command.Flags().StringVar(&output, "output", resultsFile, "CSV file receiving the results")

	if err := command.Execute(); err != nil {
		os.Exit(1)
	}
}

func getTest(path string, formula sat.Formula) TestMetadata {
	solution, err := sat.NewGophersatSolver().Solve(formula)
	if err != nil {
		log.Fatalf("cannot compute the optimum of %v: %v", path, err)
	}

	test := TestMetadata{
		Name:        filepath.Base(path),
		Variables:   formula.Variables,
		Clauses:     formula.Clauses,
		TotalWeight: formula.TotalWeight(),
	}
	if solution != nil {
		test.Satisfiable = true
		test.Optimum = formula.Weight(solution.Assignment(formula.Variables))
	}
	return test
}

func getConfigs() []genetic.Config {
	return []genetic.Config{
		genetic.DefaultConfig(),

		{
			PopulationSize:      50,
			Generations:         -20,
			MutationProbability: 0.1,
			TournamentSize:      2,
			NumberOfElites:      1,
			Workers:             1,
		},

		{
			PopulationSize:      200,
			Generations:         500,
			MutationProbability: 0.05,
			TournamentSize:      5,
			NumberOfElites:      4,
			Workers:             4,
		},
	}
}

func measure(formula sat.Formula, test TestMetadata, config genetic.Config, stream uint64) BenchmarkResult {
	engine, err := genetic.NewEngine(formula, config, rand.New(rand.NewPCG(seed, stream)))
	if err != nil {
		log.Fatalf("cannot benchmark %v: %v", test.Name, err)
	}

	start := time.Now()
	result := engine.Run()
	duration := time.Since(start)

	best := result.Best.Fitness()
	return BenchmarkResult{
		RunID:       uuid.NewString(),
		Test:        test,
		Config:      config,
		Best:        best,
		Generations: result.Generations,
		Duration:    duration,
		Result:      classify(best, test),
	}
}

// classify compares the fitness reached by the genetic algorithm with the exact optimum of test. A formula whose only
// satisfying assignments weigh zero is solved optimally by a zero fitness
func classify(best uint64, test TestMetadata) ResultType {
	switch {
	case !test.Satisfiable:
		return unsatisfiable
	case best >= test.Optimum:
		return optimal
	case best == 0:
		return unsatisfied
	default:
		return suboptimal
	}
}

// gap is the relative distance between best and optimum
func gap(best, optimum uint64) float64 {
	if optimum == 0 || best >= optimum {
		return 0
	}
	return float64(optimum-best) / float64(optimum)
}

func toRecord(result BenchmarkResult) []string {
	return []string{
		result.RunID,
		result.Test.Name,
		fmt.Sprintf("%d", result.Test.Variables),
		fmt.Sprintf("%d", result.Test.Clauses),
		fmt.Sprintf("%v", result.Test.Satisfiable),
		fmt.Sprintf("%d", result.Config.PopulationSize),
		fmt.Sprintf("%d", result.Config.Generations),
		fmt.Sprintf("%f", result.Config.MutationProbability),
		fmt.Sprintf("%d", result.Config.TournamentSize),
		fmt.Sprintf("%d", result.Config.NumberOfElites),
		fmt.Sprintf("%d", result.Generations),
		fmt.Sprintf("%d", result.Best),
		fmt.Sprintf("%d", result.Test.Optimum),
		fmt.Sprintf("%.4f", gap(result.Best, result.Test.Optimum)),
		fmt.Sprintf("%d", result.Duration.Milliseconds()),
		resultTypes[result.Result],
	}
}

func toCsv(out io.Writer, results []BenchmarkResult) error {
	writer := csv.NewWriter(out)

	header := []string{"RunID", "Test", "Variables", "Clauses", "Satisfiable", "Population", "Generations", "Mutation", "Tournament", "Elites", "Generations Run", "Best", "Optimum", "Gap", "Duration(ms)", "Result"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("cannot write CSV header: %w", err)
	}

	for _, result := range results {
		if err := writer.Write(toRecord(result)); err != nil {
			return fmt.Errorf("cannot write CSV record: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
