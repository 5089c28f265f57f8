package genetic

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidConfiguration = errors.New("invalid configuration")

// Config holds the parameters of a genetic search. A non-negative Generations runs exactly that many generations,
// whereas a negative one runs until the best fitness stays unchanged for |Generations| consecutive generations
type Config struct {
	PopulationSize      int     `mapstructure:"populationSize"`
	Generations         int     `mapstructure:"generations"`
	MutationProbability float64 `mapstructure:"mutationProbability"`
	TournamentSize      int     `mapstructure:"tournamentSize"`
	NumberOfElites      int     `mapstructure:"numberOfElites"`
	Workers             int     `mapstructure:"workers"` // Goroutines evaluating fitness; 0 and 1 both mean sequential evaluation
}

func DefaultConfig() Config {
	return Config{
		PopulationSize:      100,
		Generations:         -50,
		MutationProbability: 0.05,
		TournamentSize:      3,
		NumberOfElites:      2,
		Workers:             1,
	}
}

func (config Config) Validate() error {
	switch {
	case config.PopulationSize <= 0:
		return fmt.Errorf("%w: population size must be positive: %d", ErrInvalidConfiguration, config.PopulationSize)
	case config.TournamentSize <= 0 || config.TournamentSize > config.PopulationSize:
		return fmt.Errorf("%w: tournament size must be between 1 and the population size (%d): %d", ErrInvalidConfiguration, config.PopulationSize, config.TournamentSize)
	case config.NumberOfElites < 0 || config.NumberOfElites > config.PopulationSize:
		return fmt.Errorf("%w: number of elites must be between 0 and the population size (%d): %d", ErrInvalidConfiguration, config.PopulationSize, config.NumberOfElites)
	case math.IsNaN(config.MutationProbability) || config.MutationProbability < 0 || config.MutationProbability > 1:
		return fmt.Errorf("%w: mutation probability must be between 0 and 1: %v", ErrInvalidConfiguration, config.MutationProbability)
	case config.Workers < 0:
		return fmt.Errorf("%w: workers must not be negative: %d", ErrInvalidConfiguration, config.Workers)
	}
	return nil
}
