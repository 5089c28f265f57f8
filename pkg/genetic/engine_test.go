package genetic

import (
	"testing"

	"github.com/limaJavier/wsat/pkg/sat"
	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// (x1 v x2 v x3), the maximum is reached with every variable set to true
var singleClauseFormula = sat.Formula{
	Variables: 3,
	Clauses:   1,
	Weights:   []uint64{5, 3, 1},
	Literals:  []int64{1, 2, 3},
}

// (x1 v x1 v x1) ^ (-x1 v -x1 v -x1)
var unsatisfiableFormula = sat.Formula{
	Variables: 3,
	Clauses:   2,
	Weights:   []uint64{4, 2, 1},
	Literals:  []int64{1, 1, 1, -1, -1, -1},
}

type recorder struct {
	generations []int
	fitness     []uint64
}

func (recorder *recorder) Observe(generation int, bestFitness uint64) {
	recorder.generations = append(recorder.generations, generation)
	recorder.fitness = append(recorder.fitness, bestFitness)
}

func TestSolveSingleClause(t *testing.T) {
	g := NewWithT(t)
	config := Config{PopulationSize: 50, Generations: 20, MutationProbability: 0.05, TournamentSize: 3, NumberOfElites: 2}

	for seed := range uint64(10) {
		best, err := Solve(singleClauseFormula, config, newRandom(seed))

		g.Expect(err).NotTo(HaveOccurred())
		g.Expect(best).To(Equal(uint64(9)))
	}
}

func TestSolveUnsatisfiable(t *testing.T) {
	g := NewWithT(t)

	for _, generations := range []int{0, 1, 10, -3} {
		config := Config{PopulationSize: 30, Generations: generations, MutationProbability: 0.5, TournamentSize: 2, NumberOfElites: 3}

		best, err := Solve(unsatisfiableFormula, config, newRandom(uint64(generations+10)))

		g.Expect(err).NotTo(HaveOccurred())
		g.Expect(best).To(BeZero())
	}
}

func TestFixedGenerations(t *testing.T) {
	//** Arrange
	recorder := &recorder{}
	config := Config{PopulationSize: 20, Generations: 5, MutationProbability: 0.1, TournamentSize: 2, NumberOfElites: 1}
	engine, err := NewEngine(singleClauseFormula, config, newRandom(1), WithObserver(recorder))
	require.NoError(t, err)

	//** Act
	result := engine.Run()

	//** Assert
	assert.Equal(t, 5, result.Generations)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, recorder.generations)
}

func TestZeroGenerations(t *testing.T) {
	recorder := &recorder{}
	config := Config{PopulationSize: 20, Generations: 0, MutationProbability: 0.1, TournamentSize: 2, NumberOfElites: 1}
	engine, err := NewEngine(singleClauseFormula, config, newRandom(1), WithObserver(recorder))
	require.NoError(t, err)

	result := engine.Run()

	assert.Equal(t, 0, result.Generations)
	assert.Empty(t, recorder.generations)
	assert.NotNil(t, result.Best)
}

func TestStagnationWithConstantFitness(t *testing.T) {
	//** Arrange
	recorder := &recorder{}
	config := Config{PopulationSize: 20, Generations: -3, MutationProbability: 0.1, TournamentSize: 2, NumberOfElites: 2}
	engine, err := NewEngine(unsatisfiableFormula, config, newRandom(2), WithObserver(recorder))
	require.NoError(t, err)

	//** Act
	result := engine.Run()

	//** Assert
	// Every population scores 0, which equals the initial reference, so each generation stagnates
	assert.Equal(t, 3, result.Generations)
	assert.Equal(t, []uint64{0, 0, 0}, recorder.fitness)
}

func TestStagnationStopsAfterPlateau(t *testing.T) {
	random := newRandom(3)

	for seed := range uint64(10) {
		//** Arrange
		formula, _ := sat.GeneratePlantedFormula(random, 30, 60)
		recorder := &recorder{}
		config := Config{PopulationSize: 40, Generations: -4, MutationProbability: 0.2, TournamentSize: 3, NumberOfElites: 2}
		engine, err := NewEngine(formula, config, newRandom(seed), WithObserver(recorder))
		require.NoError(t, err)

		//** Act
		result := engine.Run()

		//** Assert
		// Best fitness after each generation: what the observer saw before the next one, plus the final result
		after := append(recorder.fitness[1:], result.Best.Fitness())
		require.Len(t, after, result.Generations)

		lastChange := -1 // Index of the last generation whose best differs from the previous best (0 before the first)
		previous := uint64(0)
		for i, best := range after {
			if best != previous {
				lastChange = i
			}
			previous = best
		}
		assert.Equal(t, lastChange+1+4, result.Generations)
	}
}

func TestElitesLeadNextGeneration(t *testing.T) {
	random := newRandom(4)

	for _, numberOfElites := range []int{0, 1, 3, 10, 30} {
		//** Arrange
		formula, _ := sat.GeneratePlantedFormula(random, 12, 20)
		config := Config{PopulationSize: 30, Generations: 1, MutationProbability: 0.3, TournamentSize: 3, NumberOfElites: numberOfElites}
		engine, err := NewEngine(formula, config, newRandom(uint64(numberOfElites)))
		require.NoError(t, err)
		population := engine.initialPopulation()
		expected := expectedElites(population, numberOfElites)

		//** Act
		next := engine.nextGeneration(population)

		//** Assert
		require.Len(t, next, config.PopulationSize)
		for i, elite := range expected {
			assert.Same(t, elite, next[i])
			assert.Positive(t, elite.Fitness())
			if i > 0 {
				assert.LessOrEqual(t, elite.Fitness(), expected[i-1].Fitness())
			}
		}
		for _, chromosome := range next {
			assert.NotNil(t, chromosome)
			assert.Equal(t, Fitness(chromosome.genes, formula), chromosome.Fitness())
		}
		assert.Len(t, engine.matingPool, config.PopulationSize-len(expected))
	}
}

func TestWholePopulationOfElites(t *testing.T) {
	config := Config{PopulationSize: 10, Generations: 3, MutationProbability: 1, TournamentSize: 2, NumberOfElites: 10}
	formula := sat.Formula{Variables: 2, Clauses: 1, Weights: []uint64{1, 1}, Literals: []int64{1, -1, 2}}
	engine, err := NewEngine(formula, config, newRandom(5))
	require.NoError(t, err)

	population := engine.initialPopulation()
	next := engine.nextGeneration(population)

	// Every assignment satisfies the tautology, so only all-false chromosomes are dropped
	elites := expectedElites(population, 10)
	assert.Equal(t, elites, next[:len(elites)])
	for _, chromosome := range next[len(elites):] {
		assert.NotNil(t, chromosome)
	}
}

func TestWorkersDoNotChangeTheSearch(t *testing.T) {
	g := NewWithT(t)
	formula, _ := sat.GeneratePlantedFormula(newRandom(6), 40, 120)

	run := func(workers int) Result {
		config := Config{PopulationSize: 60, Generations: 15, MutationProbability: 0.2, TournamentSize: 3, NumberOfElites: 2, Workers: workers}
		engine, err := NewEngine(formula, config, newRandom(7))
		g.Expect(err).NotTo(HaveOccurred())
		return engine.Run()
	}

	sequential, parallel := run(1), run(8)

	g.Expect(parallel.Best.Fitness()).To(Equal(sequential.Best.Fitness()))
	g.Expect(parallel.Best.Assignment()).To(Equal(sequential.Best.Assignment()))
	g.Expect(parallel.Generations).To(Equal(sequential.Generations))
}

func TestBestSatisfiesFormula(t *testing.T) {
	formula, _ := sat.GeneratePlantedFormula(newRandom(8), 20, 40)
	config := Config{PopulationSize: 100, Generations: -10, MutationProbability: 0.2, TournamentSize: 3, NumberOfElites: 4}
	engine, err := NewEngine(formula, config, newRandom(9))
	require.NoError(t, err)

	result := engine.Run()

	if result.Best.Fitness() > 0 {
		assert.True(t, sat.AssertSolution(formula, result.Best.Solution()))
		assert.Equal(t, formula.Weight(result.Best.Assignment()), result.Best.Fitness())
	}
}

func TestNewEngineRejectsInvalidInput(t *testing.T) {
	g := NewWithT(t)
	config := DefaultConfig()

	_, err := NewEngine(singleClauseFormula, Config{PopulationSize: 0, TournamentSize: 1}, newRandom(1))
	g.Expect(err).To(MatchError(ErrInvalidConfiguration))

	_, err = NewEngine(sat.Formula{Variables: 2, Clauses: 1, Weights: []uint64{1, 1}, Literals: []int64{1, 2, 5}}, config, newRandom(1))
	g.Expect(err).To(MatchError(sat.ErrInvalidFormula))

	_, err = NewEngine(singleClauseFormula, config, nil)
	g.Expect(err).To(MatchError(ErrInvalidConfiguration))

	_, err = Solve(singleClauseFormula, Config{PopulationSize: 5, TournamentSize: 6}, newRandom(1))
	g.Expect(err).To(MatchError(ErrInvalidConfiguration))
}

// expectedElites inserts every chromosome with positive fitness right after the fitter or equally fit ones seen
// before it and keeps the first count
func expectedElites(population []*Chromosome, count int) []*Chromosome {
	elites := make([]*Chromosome, 0, len(population))
	for _, chromosome := range population {
		if chromosome.Fitness() == 0 {
			continue
		}
		position := len(elites)
		for position > 0 && elites[position-1].Fitness() < chromosome.Fitness() {
			position--
		}
		elites = append(elites, nil)
		copy(elites[position+1:], elites[position:])
		elites[position] = chromosome
	}
	if len(elites) > count {
		elites = elites[:count]
	}
	return elites
}
