package sat

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// GenerateWeights draws count weights uniformly from [1, count]
func GenerateWeights(random *rand.Rand, count uint64) []uint64 {
	weights := make([]uint64, count)
	for i := range weights {
		weights[i] = random.Uint64N(count) + 1
	}
	return weights
}

// AnnotateWeights copies a DIMACS-CNF description from in to out inserting a randomly generated weights line right
// before the problem line. Descriptions that already carry a weights line are copied unchanged
func AnnotateWeights(random *rand.Rand, in io.Reader, out io.Writer) error {
	lines, err := readLines(in)
	if err != nil {
		return err
	}

	lines, _, err = annotate(random, lines)
	if err != nil {
		return err
	}
	return writeLines(out, lines)
}

// AnnotateFile rewrites the file at path with a weights line, unless it has one already. It reports whether the file
// was modified
func AnnotateFile(random *rand.Rand, path string) (bool, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("cannot read file: %w", err)
	}

	lines, err := readLines(bytes.NewReader(content))
	if err != nil {
		return false, err
	}

	lines, annotated, err := annotate(random, lines)
	if err != nil {
		return false, fmt.Errorf("cannot annotate %v: %w", path, err)
	} else if !annotated {
		return false, nil
	}

	var buffer bytes.Buffer
	if err := writeLines(&buffer, lines); err != nil {
		return false, err
	}
	if err := os.WriteFile(path, buffer.Bytes(), 0666); err != nil {
		return false, fmt.Errorf("cannot write file: %w", err)
	}
	return true, nil
}

// AnnotateDirectory annotates every "*.cnf" file inside directory and returns the paths of the modified files
func AnnotateDirectory(random *rand.Rand, directory string) ([]string, error) {
	files, err := FormulaFiles(directory)
	if err != nil {
		return nil, err
	}

	modified := make([]string, 0, len(files))
	for _, file := range files {
		annotated, err := AnnotateFile(random, file)
		if err != nil {
			return modified, err
		} else if annotated {
			modified = append(modified, file)
		}
	}
	return modified, nil
}

func annotate(random *rand.Rand, lines []string) ([]string, bool, error) {
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "c"):
			continue
		case strings.HasPrefix(line, "w"):
			return lines, false, nil
		case strings.HasPrefix(line, "p"):
			variables, _, err := parseProblem(line, i+1)
			if err != nil {
				return nil, false, err
			}

			weights := lo.Map(GenerateWeights(random, variables), func(weight uint64, _ int) string {
				return strconv.FormatUint(weight, 10)
			})
			weightsLine := "w " + strings.Join(weights, " ")
			return append(lines[:i:i], append([]string{weightsLine}, lines[i:]...)...), true, nil
		}
	}
	return nil, false, malformed(0, "no problem line found")
}

func readLines(reader io.Reader) ([]string, error) {
	lines := make([]string, 0)
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading formula: %w", err)
	}
	return lines, nil
}

func writeLines(writer io.Writer, lines []string) error {
	buffered := bufio.NewWriter(writer)
	for _, line := range lines {
		if _, err := buffered.WriteString(line + "\n"); err != nil {
			return fmt.Errorf("error writing formula: %w", err)
		}
	}
	return buffered.Flush()
}
