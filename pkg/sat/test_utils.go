package sat

import "math/rand/v2"

// GenerateFormula builds a random weighted 3-CNF formula. Literals of the same clause may repeat
func GenerateFormula(random *rand.Rand, variables, clauses uint64) Formula {
	formula := Formula{
		Variables: variables,
		Clauses:   clauses,
		Weights:   GenerateWeights(random, variables),
		Literals:  make([]int64, 0, clauses*3),
	}

	for range clauses * 3 {
		literal := int64(random.Uint64N(variables) + 1)
		if random.Float64() < 0.5 {
			literal = -literal
		}
		formula.Literals = append(formula.Literals, literal)
	}

	return formula
}

// GeneratePlantedFormula builds a random weighted 3-CNF formula that is satisfied by the returned assignment
func GeneratePlantedFormula(random *rand.Rand, variables, clauses uint64) (Formula, []bool) {
	planted := make([]bool, variables)
	for i := range planted {
		planted[i] = random.Float64() < 0.5
	}

	formula := GenerateFormula(random, variables, clauses)
	for i := range clauses {
		clause := formula.Literals[3*i : 3*i+3]
		if !(Formula{Variables: variables, Clauses: 1, Literals: clause}).Satisfies(planted) {
			// Flip the first literal so that it agrees with the planted assignment
			clause[0] = -clause[0]
		}
	}

	return formula, planted
}

func AssertSolution(formula Formula, solution Solution) bool {
	// Make sure there are no duplicates nor contradictions
	literals := make(map[int64]bool)
	for _, literal := range solution {
		if literals[literal] || literals[-literal] {
			return false
		}
		literals[literal] = true
	}

	// Check that all clauses are satisfied
	for i := range formula.Clauses {
		satisfied := false
		for _, literal := range formula.Clause(i) {
			if literals[literal] {
				satisfied = true
				break
			}
		}
		if !satisfied {
			return false
		}
	}

	return true
}
