package sat

import (
	"fmt"

	"github.com/crillab/gophersat/maxsat"
	"github.com/samber/lo"
)

// gophersatSolver finds a maximum-weight satisfying assignment by encoding the formula as a weighted MAXSAT problem:
// every clause is hard and every variable contributes a soft unit clause weighted by the variable's weight
type gophersatSolver struct{}

func NewGophersatSolver() SATSolver {
	return &gophersatSolver{}
}

func (solver *gophersatSolver) Solve(formula Formula) (Solution, error) {
	if err := formula.Validate(); err != nil {
		return nil, err
	}

	constraints := make([]maxsat.Constr, 0, formula.Clauses+formula.Variables)
	for i := uint64(0); i < formula.Clauses; i++ {
		literals := formula.Clause(i)
		clause := lo.Uniq(literals[:])
		if lo.SomeBy(clause, func(literal int64) bool { return lo.Contains(clause, -literal) }) {
			continue // Tautologies are always satisfied
		}

		lits := lo.Map(clause, func(literal int64, _ int) maxsat.Lit {
			if literal > 0 {
				return maxsat.Var(variableName(uint64(literal)))
			}
			return maxsat.Not(variableName(uint64(-literal)))
		})
		constraints = append(constraints, maxsat.HardClause(lits...))
	}
	for variable := uint64(1); variable <= formula.Variables; variable++ {
		constraints = append(constraints, maxsat.WeightedClause([]maxsat.Lit{maxsat.Var(variableName(variable))}, int(formula.Weights[variable-1])))
	}

	model, _ := maxsat.New(constraints...).Solve()
	if model == nil {
		return nil, nil
	}

	assignment := make([]bool, formula.Variables)
	for variable := uint64(1); variable <= formula.Variables; variable++ {
		assignment[variable-1] = model[variableName(variable)]
	}
	return SolutionFromAssignment(assignment), nil
}

func variableName(variable uint64) string {
	return fmt.Sprintf("x%d", variable)
}
