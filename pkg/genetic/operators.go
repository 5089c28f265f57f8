package genetic

import (
	"cmp"
	"math/rand/v2"
	"slices"

	"github.com/bits-and-blooms/bitset"
	"github.com/samber/lo"
)

// randomGenes sets every gene with probability 0.5
func randomGenes(random *rand.Rand, length uint64) *bitset.BitSet {
	genes := bitset.New(uint(length))
	for i := range uint(length) {
		if random.Float64() < 0.5 {
			genes.Set(i)
		}
	}
	return genes
}

// selectElites returns at most numberOfElites chromosomes with positive fitness, fittest first. Equal fitness keeps
// population order
func selectElites(population []*Chromosome, numberOfElites int) []*Chromosome {
	if numberOfElites == 0 {
		return nil
	}

	candidates := lo.Filter(population, func(chromosome *Chromosome, _ int) bool {
		return chromosome.fitness > 0
	})
	slices.SortStableFunc(candidates, func(a, b *Chromosome) int {
		return cmp.Compare(b.fitness, a.fitness)
	})
	return candidates[:min(numberOfElites, len(candidates))]
}

// tournament draws tournamentSize chromosomes with replacement and returns the fittest one; the first drawn wins ties
func tournament(random *rand.Rand, population []*Chromosome, tournamentSize int) *Chromosome {
	var fittest *Chromosome
	for range tournamentSize {
		candidate := population[random.IntN(len(population))]
		if fittest == nil || candidate.fitness > fittest.fitness {
			fittest = candidate
		}
	}
	return fittest
}

// splitPoint draws the crossover point in [1, length-1]. Chromosomes shorter than two genes cannot be split, in which
// case the whole offspring comes from the first parent
func splitPoint(random *rand.Rand, length uint64) uint64 {
	if length < 2 {
		return length
	}
	return 1 + random.Uint64N(length-1)
}

// cross builds genes equal to first on [0, split) and to second on [split, length)
func cross(first, second *bitset.BitSet, split, length uint64) *bitset.BitSet {
	genes := first.Clone()
	for i := uint(split); i < uint(length); i++ {
		genes.SetTo(i, second.Test(i))
	}
	return genes
}

// mutate flips one uniformly chosen gene in place
func mutate(random *rand.Rand, genes *bitset.BitSet, length uint64) {
	if length == 0 {
		return
	}
	genes.Flip(uint(random.Uint64N(length)))
}

// fittest returns the chromosome with the highest fitness; the last one wins ties
func fittest(population []*Chromosome) *Chromosome {
	return lo.MaxBy(population, func(a, b *Chromosome) bool {
		return a.fitness >= b.fitness
	})
}
