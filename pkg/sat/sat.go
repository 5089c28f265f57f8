package sat

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidFormula = errors.New("invalid formula")

// Formula is a weighted 3-CNF instance. Variables are indexed from 1 to Variables and the clause i is
// formed by Literals[3i], Literals[3i+1] and Literals[3i+2]
type Formula struct {
	Variables uint64
	Clauses   uint64
	Weights   []uint64 // Weights[i-1] is the weight of variable i
	Literals  []int64
}

// Solution holds the signed literals of an assignment (i.e. v if variable v is true and -v otherwise)
type Solution []int64

func (formula Formula) Validate() error {
	if formula.Variables == 0 {
		return fmt.Errorf("%w: formula has no variables", ErrInvalidFormula)
	} else if uint64(len(formula.Weights)) != formula.Variables {
		return fmt.Errorf("%w: %d weights for %d variables", ErrInvalidFormula, len(formula.Weights), formula.Variables)
	} else if uint64(len(formula.Literals)) != formula.Clauses*3 {
		return fmt.Errorf("%w: %d literals for %d clauses", ErrInvalidFormula, len(formula.Literals), formula.Clauses)
	}

	for i, literal := range formula.Literals {
		if !formula.inRange(literal) {
			return fmt.Errorf("%w: literal %d of clause %d is out of range [1, %d]", ErrInvalidFormula, literal, i/3+1, formula.Variables)
		}
	}
	return nil
}

func (formula Formula) inRange(literal int64) bool {
	return literal != 0 && absolute(literal) <= formula.Variables
}

func (formula Formula) Clause(i uint64) [3]int64 {
	return [3]int64{formula.Literals[3*i], formula.Literals[3*i+1], formula.Literals[3*i+2]}
}

// Satisfies reports whether every clause holds under assignment, where assignment[i-1] is the value of variable i
func (formula Formula) Satisfies(assignment []bool) bool {
	for i := uint64(0); i < formula.Clauses; i++ {
		satisfied := false
		for _, literal := range formula.Clause(i) {
			variable := absolute(literal)
			if variable == 0 || variable > uint64(len(assignment)) {
				continue
			}
			if assignment[variable-1] == (literal > 0) {
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

// Weight sums the weights of the true variables of assignment, regardless of satisfiability
func (formula Formula) Weight(assignment []bool) uint64 {
	var weight uint64
	for i, value := range assignment {
		if value && i < len(formula.Weights) {
			weight += formula.Weights[i]
		}
	}
	return weight
}

func (formula Formula) TotalWeight() uint64 {
	var total uint64
	for _, weight := range formula.Weights {
		total += weight
	}
	return total
}

// ToDIMACS transforms the formula into the weighted DIMACS-CNF format understood by ParseDIMACS
func (formula Formula) ToDIMACS() string {
	var builder strings.Builder
	builder.WriteString("w")
	for _, weight := range formula.Weights {
		fmt.Fprintf(&builder, " %d", weight)
	}
	builder.WriteString("\n")
	fmt.Fprintf(&builder, "p cnf %d %d\n", formula.Variables, formula.Clauses)
	for i := uint64(0); i < formula.Clauses; i++ {
		for _, literal := range formula.Clause(i) {
			fmt.Fprintf(&builder, "%d ", literal)
		}
		builder.WriteString("0\n")
	}
	return builder.String()
}

// Assignment turns a solution into a boolean slice indexed by variable-1. Variables missing from the solution are false
func (solution Solution) Assignment(variables uint64) []bool {
	assignment := make([]bool, variables)
	for _, literal := range solution {
		if literal > 0 && uint64(literal) <= variables {
			assignment[literal-1] = true
		}
	}
	return assignment
}

func SolutionFromAssignment(assignment []bool) Solution {
	solution := make(Solution, len(assignment))
	for i, value := range assignment {
		solution[i] = int64(i + 1)
		if !value {
			solution[i] = -solution[i]
		}
	}
	return solution
}

func absolute(literal int64) uint64 {
	if literal < 0 {
		return uint64(-literal)
	}
	return uint64(literal)
}
