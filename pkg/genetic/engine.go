package genetic

import (
	"fmt"
	"math/rand/v2"

	"github.com/bits-and-blooms/bitset"
	"github.com/limaJavier/wsat/pkg/sat"
	"golang.org/x/sync/errgroup"
)

// Engine runs a genetic search over the assignments of a single formula. An engine is not safe for concurrent use,
// independent engines are
type Engine struct {
	formula    sat.Formula
	config     Config
	random     *rand.Rand
	observer   Observer
	matingPool []*Chromosome
}

type Option func(*Engine)

// WithObserver registers an observer notified before every generation
func WithObserver(observer Observer) Option {
	return func(engine *Engine) {
		engine.observer = observer
	}
}

type Result struct {
	Best        *Chromosome // Fittest chromosome of the last population
	Generations int         // Generations actually run
}

// NewEngine validates formula and config. Every random decision of the search is drawn from random, so two engines
// built with equally seeded sources produce the same search regardless of config.Workers
func NewEngine(formula sat.Formula, config Config, random *rand.Rand, options ...Option) (*Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if err := formula.Validate(); err != nil {
		return nil, err
	}
	if random == nil {
		return nil, fmt.Errorf("%w: a random source is required", ErrInvalidConfiguration)
	}

	engine := &Engine{
		formula:    formula,
		config:     config,
		random:     random,
		observer:   nopObserver{},
		matingPool: make([]*Chromosome, 0, config.PopulationSize),
	}
	for _, option := range options {
		option(engine)
	}
	return engine, nil
}

// Solve runs a whole genetic search on formula and returns the best fitness found
func Solve(formula sat.Formula, config Config, random *rand.Rand, options ...Option) (uint64, error) {
	engine, err := NewEngine(formula, config, random, options...)
	if err != nil {
		return 0, err
	}
	return engine.Run().Best.Fitness(), nil
}

func (engine *Engine) Run() Result {
	population := engine.initialPopulation()
	terminator := newTerminator(engine.config.Generations)

	generation := 0
	for !terminator.done(generation) {
		engine.observer.Observe(generation, fittest(population).fitness)

		population = engine.nextGeneration(population)
		generation++

		terminator.record(fittest(population).fitness)
	}

	return Result{
		Best:        fittest(population),
		Generations: generation,
	}
}

func (engine *Engine) initialPopulation() []*Chromosome {
	genes := make([]*bitset.BitSet, engine.config.PopulationSize)
	for i := range genes {
		genes[i] = randomGenes(engine.random, engine.formula.Variables)
	}

	population := make([]*Chromosome, engine.config.PopulationSize)
	engine.evaluate(population, genes, 0)
	return population
}

// nextGeneration carries the elites over and fills the remaining slots with offspring of tournament-selected parents.
// Parents are paired circularly: (0, 1), (1, 2), ..., (last, 0)
func (engine *Engine) nextGeneration(population []*Chromosome) []*Chromosome {
	size := engine.config.PopulationSize
	next := make([]*Chromosome, size)

	elites := selectElites(population, engine.config.NumberOfElites)
	elitesCount := copy(next, elites)

	parentsCount := size - elitesCount
	if parentsCount == 0 {
		return next
	}
	engine.fillMatingPool(population, parentsCount)

	offspring := make([]*bitset.BitSet, parentsCount)
	for i := range parentsCount {
		offspring[i] = engine.crossover(engine.matingPool[i], engine.matingPool[(i+1)%parentsCount])
	}

	engine.evaluate(next, offspring, elitesCount)
	return next
}

// fillMatingPool rebuilds the mating pool with parentsCount tournament winners in the order they were drawn
func (engine *Engine) fillMatingPool(population []*Chromosome, parentsCount int) {
	engine.matingPool = engine.matingPool[:0]
	for range parentsCount {
		engine.matingPool = append(engine.matingPool, tournament(engine.random, population, engine.config.TournamentSize))
	}
}

// crossover returns the genes of a single offspring of first and second, mutated with the configured probability
func (engine *Engine) crossover(first, second *Chromosome) *bitset.BitSet {
	length := engine.formula.Variables
	genes := cross(first.genes, second.genes, splitPoint(engine.random, length), length)

	if engine.random.Float64() < engine.config.MutationProbability {
		mutate(engine.random, genes, length)
	}
	return genes
}

// evaluate builds the chromosomes of genes into population[offset:]. Fitness computation is spread over
// config.Workers goroutines, each writing its own slots
func (engine *Engine) evaluate(population []*Chromosome, genes []*bitset.BitSet, offset int) {
	if engine.config.Workers <= 1 {
		for i, g := range genes {
			population[offset+i] = newChromosome(g, engine.formula)
		}
		return
	}

	var group errgroup.Group
	group.SetLimit(engine.config.Workers)
	for i, g := range genes {
		group.Go(func() error {
			population[offset+i] = newChromosome(g, engine.formula)
			return nil
		})
	}
	group.Wait()
}
