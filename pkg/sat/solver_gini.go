package sat

import (
	"fmt"

	"github.com/go-air/gini"
	"github.com/go-air/gini/z"
)

// giniSolver only looks for a satisfying assignment. Weights are ignored, but variables that appear in no clause are
// set to true since that never breaks satisfiability
type giniSolver struct{}

func NewGiniSolver() SATSolver {
	return &giniSolver{}
}

func (solver *giniSolver) Solve(formula Formula) (Solution, error) {
	if err := formula.Validate(); err != nil {
		return nil, err
	}

	occurs := make([]bool, formula.Variables)
	g := gini.NewVc(int(formula.Variables), int(formula.Clauses))
	for i := uint64(0); i < formula.Clauses; i++ {
		for _, literal := range formula.Clause(i) {
			occurs[absolute(literal)-1] = true
			g.Add(z.Dimacs2Lit(int(literal)))
		}
		g.Add(0) // Clause terminator
	}

	switch result := g.Solve(); result {
	case -1:
		return nil, nil
	case 1:
	default:
		return nil, fmt.Errorf("gini returned an unknown result: %d", result)
	}

	assignment := make([]bool, formula.Variables)
	for variable := uint64(1); variable <= formula.Variables; variable++ {
		if !occurs[variable-1] {
			assignment[variable-1] = true
			continue
		}
		assignment[variable-1] = g.Value(z.Var(variable).Pos())
	}
	return SolutionFromAssignment(assignment), nil
}
