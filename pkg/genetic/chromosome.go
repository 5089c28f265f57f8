package genetic

import (
	"github.com/bits-and-blooms/bitset"
	"github.com/limaJavier/wsat/pkg/sat"
)

// Chromosome is a candidate assignment together with its fitness. Its genes are never modified once built, so
// chromosomes can be shared between populations and mating pools
type Chromosome struct {
	genes   *bitset.BitSet // Bit i-1 holds the value of variable i
	fitness uint64
}

func newChromosome(genes *bitset.BitSet, formula sat.Formula) *Chromosome {
	return &Chromosome{
		genes:   genes,
		fitness: Fitness(genes, formula),
	}
}

func (chromosome *Chromosome) Fitness() uint64 {
	return chromosome.fitness
}

func (chromosome *Chromosome) Len() uint64 {
	return uint64(chromosome.genes.Len())
}

// Gene returns the value of variable i+1
func (chromosome *Chromosome) Gene(i uint64) bool {
	return chromosome.genes.Test(uint(i))
}

func (chromosome *Chromosome) Assignment() []bool {
	assignment := make([]bool, chromosome.genes.Len())
	for i, ok := chromosome.genes.NextSet(0); ok; i, ok = chromosome.genes.NextSet(i + 1) {
		assignment[i] = true
	}
	return assignment
}

func (chromosome *Chromosome) Solution() sat.Solution {
	return sat.SolutionFromAssignment(chromosome.Assignment())
}

func (chromosome *Chromosome) String() string {
	return chromosome.genes.DumpAsBits()
}
