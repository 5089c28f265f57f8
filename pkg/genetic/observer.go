package genetic

import "log/slog"

// Observer receives the progress of a search: the index of the generation about to run and the best fitness of the
// current population
type Observer interface {
	Observe(generation int, bestFitness uint64)
}

type ObserverFunc func(generation int, bestFitness uint64)

func (f ObserverFunc) Observe(generation int, bestFitness uint64) {
	f(generation, bestFitness)
}

type nopObserver struct{}

func (nopObserver) Observe(int, uint64) {}

type logObserver struct {
	logger *slog.Logger
}

func NewLogObserver(logger *slog.Logger) Observer {
	return &logObserver{logger: logger}
}

func (observer *logObserver) Observe(generation int, bestFitness uint64) {
	observer.logger.Info("generation", "generation", generation, "fitness", bestFitness)
}

type multiObserver []Observer

// MultiObserver notifies every observer in order
func MultiObserver(observers ...Observer) Observer {
	return multiObserver(observers)
}

func (observers multiObserver) Observe(generation int, bestFitness uint64) {
	for _, observer := range observers {
		observer.Observe(generation, bestFitness)
	}
}
