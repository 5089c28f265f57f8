package genetic

import (
	"github.com/bits-and-blooms/bitset"
	"github.com/limaJavier/wsat/pkg/sat"
)

// Fitness returns 0 if genes violate any clause of formula, otherwise the sum of the weights of the true variables.
// Literals referring to variables outside genes evaluate to false
func Fitness(genes *bitset.BitSet, formula sat.Formula) uint64 {
	for i := 0; i+2 < len(formula.Literals); i += 3 {
		if !literalValue(genes, formula.Literals[i]) &&
			!literalValue(genes, formula.Literals[i+1]) &&
			!literalValue(genes, formula.Literals[i+2]) {
			return 0
		}
	}

	var fitness uint64
	for i, ok := genes.NextSet(0); ok && i < uint(len(formula.Weights)); i, ok = genes.NextSet(i + 1) {
		fitness += formula.Weights[i]
	}
	return fitness
}

func literalValue(genes *bitset.BitSet, literal int64) bool {
	positive := literal > 0
	if !positive {
		literal = -literal
	}
	if literal == 0 || uint64(literal) > uint64(genes.Len()) {
		return false
	}
	return genes.Test(uint(literal-1)) == positive
}
