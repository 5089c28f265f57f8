package sat

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	valid := Formula{Variables: 3, Clauses: 1, Weights: []uint64{1, 2, 3}, Literals: []int64{1, -2, 3}}
	assert.NoError(t, valid.Validate())

	scenarios := map[string]Formula{
		"no variables":     {Variables: 0, Clauses: 0},
		"missing weights":  {Variables: 3, Clauses: 1, Weights: []uint64{1, 2}, Literals: []int64{1, 2, 3}},
		"missing literals": {Variables: 3, Clauses: 2, Weights: []uint64{1, 2, 3}, Literals: []int64{1, 2, 3}},
		"zero literal":     {Variables: 3, Clauses: 1, Weights: []uint64{1, 2, 3}, Literals: []int64{1, 0, 3}},
		"out of range":     {Variables: 3, Clauses: 1, Weights: []uint64{1, 2, 3}, Literals: []int64{1, -4, 3}},
	}
	for name, formula := range scenarios {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, formula.Validate(), ErrInvalidFormula)
		})
	}
}

func TestSatisfiesAndWeight(t *testing.T) {
	formula := Formula{Variables: 4, Clauses: 2, Weights: []uint64{1, 2, 4, 8}, Literals: []int64{1, 2, 3, -1, -2, 4}}

	assert.True(t, formula.Satisfies([]bool{true, false, false, false}))
	assert.False(t, formula.Satisfies([]bool{false, false, false, true}))
	assert.False(t, formula.Satisfies([]bool{true, true, false, false}))
	assert.Equal(t, uint64(9), formula.Weight([]bool{true, false, false, true}))
	assert.Equal(t, uint64(15), formula.TotalWeight())
}

func TestSolutionAssignmentRoundTrip(t *testing.T) {
	assignment := []bool{true, false, true, true, false}

	solution := SolutionFromAssignment(assignment)

	assert.Equal(t, Solution{1, -2, 3, 4, -5}, solution)
	assert.Equal(t, assignment, solution.Assignment(5))
}

func TestToDIMACSIsParsable(t *testing.T) {
	random := rand.New(rand.NewPCG(3, 5))

	for range 10 {
		//** Arrange
		formula := GenerateFormula(random, random.Uint64N(50)+1, random.Uint64N(100)+1)

		//** Act
		parsed, err := ParseDIMACS(strings.NewReader(formula.ToDIMACS()))

		//** Assert
		require.NoError(t, err)
		if diff := cmp.Diff(formula, parsed); diff != "" {
			t.Errorf("parsed formula mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestGeneratePlantedFormula(t *testing.T) {
	random := rand.New(rand.NewPCG(9, 9))

	for range 10 {
		formula, planted := GeneratePlantedFormula(random, 20, 90)

		assert.NoError(t, formula.Validate())
		assert.True(t, formula.Satisfies(planted))
		assert.True(t, AssertSolution(formula, SolutionFromAssignment(planted)))
	}
}
