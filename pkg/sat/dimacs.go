package sat

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

var ErrMalformedInput = errors.New("malformed input")

type malformedInputError struct {
	line   int
	reason string
}

func (err malformedInputError) Error() string {
	if err.line == 0 {
		return fmt.Sprintf("%v: %v", ErrMalformedInput, err.reason)
	}
	return fmt.Sprintf("%v at line %d: %v", ErrMalformedInput, err.line, err.reason)
}

func (err malformedInputError) Unwrap() error {
	return ErrMalformedInput
}

func malformed(line int, format string, args ...any) error {
	return malformedInputError{line: line, reason: fmt.Sprintf(format, args...)}
}

// FormulaFromFile loads a weighted DIMACS-CNF file
func FormulaFromFile(path string) (Formula, error) {
	file, err := os.Open(path)
	if err != nil {
		return Formula{}, fmt.Errorf("could not open file: %w", err)
	}
	defer file.Close()

	formula, err := ParseDIMACS(file)
	if err != nil {
		return Formula{}, fmt.Errorf("cannot parse %v: %w", path, err)
	}
	return formula, nil
}

// FormulaFiles returns the sorted paths of the "*.cnf" files inside directory
func FormulaFiles(directory string) ([]string, error) {
	entries, err := os.ReadDir(directory)
	if err != nil {
		return nil, fmt.Errorf("cannot read directory: %w", err)
	}

	files := lo.FilterMap(entries, func(entry os.DirEntry, _ int) (string, bool) {
		return filepath.Join(directory, entry.Name()), !entry.IsDir() && filepath.Ext(entry.Name()) == ".cnf"
	})
	slices.Sort(files)
	return files, nil
}

// ParseDIMACS reads a weighted DIMACS-CNF description:
//
//	c comment
//	w <weight_1> ... <weight_n>
//	p cnf <variables> <clauses>
//	<lit> <lit> <lit> 0
//
// The weights line must precede the problem line and every clause must hold exactly three literals.
// Lines beyond the declared number of clauses are ignored
func ParseDIMACS(reader io.Reader) (Formula, error) {
	var (
		formula      Formula
		weights      []uint64
		problemFound bool
		counter      uint64
		lineNumber   int
	)

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024) // Weights lines grow with the number of variables
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch line[0] {
		case 'c':
			continue
		case 'w':
			var err error
			weights, err = parseWeights(line, lineNumber)
			if err != nil {
				return Formula{}, err
			}
		case 'p':
			variables, clauses, err := parseProblem(line, lineNumber)
			if err != nil {
				return Formula{}, err
			}
			if weights == nil {
				return Formula{}, malformed(lineNumber, "no weights specified before the problem line")
			} else if uint64(len(weights)) != variables {
				return Formula{}, malformed(lineNumber, "%d weights do not match %d variables", len(weights), variables)
			}

			formula = Formula{
				Variables: variables,
				Clauses:   clauses,
				Weights:   weights,
				Literals:  make([]int64, 0, clauses*3),
			}
			problemFound = true
		default:
			if !problemFound {
				return Formula{}, malformed(lineNumber, "clause found before the problem line (file format has to be DIMACS)")
			}
			if counter == formula.Clauses {
				continue
			}

			clause, err := parseClause(line, lineNumber, formula.Variables)
			if err != nil {
				return Formula{}, err
			}
			formula.Literals = append(formula.Literals, clause...)
			counter++
		}
	}

	if err := scanner.Err(); err != nil {
		return Formula{}, fmt.Errorf("error reading formula: %w", err)
	}

	if !problemFound {
		return Formula{}, malformed(0, "no problem line found")
	} else if counter != formula.Clauses {
		return Formula{}, malformed(0, "expected %d clauses, found %d", formula.Clauses, counter)
	}

	return formula, nil
}

func parseWeights(line string, lineNumber int) ([]uint64, error) {
	fields := strings.Fields(line)[1:]
	weights := make([]uint64, 0, len(fields))
	for _, field := range fields {
		weight, err := strconv.ParseUint(field, 10, 64)
		if err != nil || weight == 0 {
			return nil, malformed(lineNumber, "invalid weight '%s'", field)
		}
		weights = append(weights, weight)
	}
	return weights, nil
}

func parseProblem(line string, lineNumber int) (variables, clauses uint64, err error) {
	parts := strings.Fields(line)
	if len(parts) != 4 {
		return 0, 0, malformed(lineNumber, "invalid problem line: %s", line)
	}

	variables, err = strconv.ParseUint(parts[2], 10, 64)
	if err != nil {
		return 0, 0, malformed(lineNumber, "invalid variable count '%s'", parts[2])
	}
	clauses, err = strconv.ParseUint(parts[3], 10, 64)
	if err != nil {
		return 0, 0, malformed(lineNumber, "invalid clause count '%s'", parts[3])
	}
	return variables, clauses, nil
}

func parseClause(line string, lineNumber int, variables uint64) ([]int64, error) {
	clause := make([]int64, 0, 3)
	for _, field := range strings.Fields(line) {
		literal, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return nil, malformed(lineNumber, "invalid literal '%s'", field)
		}
		if literal == 0 {
			break
		}
		if absolute(literal) > variables {
			return nil, malformed(lineNumber, "literal %d is out of range [1, %d]", literal, variables)
		}
		clause = append(clause, literal)
	}

	if len(clause) != 3 {
		return nil, malformed(lineNumber, "wrong number of literals in clause: expected 3, found %d", len(clause))
	}
	return clause, nil
}
