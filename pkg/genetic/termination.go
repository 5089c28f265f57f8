package genetic

// terminator decides when the generation loop stops. With a non-negative budget it counts generations; with a
// negative one it counts consecutive generations whose best fitness equals the previous generation's best
type terminator struct {
	generations int
	lastBest    uint64
	stagnation  int
}

func newTerminator(generations int) *terminator {
	return &terminator{generations: generations}
}

func (terminator *terminator) done(generation int) bool {
	if terminator.generations >= 0 {
		return generation == terminator.generations
	}
	return terminator.stagnation == -terminator.generations
}

// record registers the best fitness of the population produced by the last generation
func (terminator *terminator) record(best uint64) {
	if terminator.generations >= 0 {
		return
	}

	if best == terminator.lastBest {
		terminator.stagnation++
	} else {
		terminator.lastBest = best
		terminator.stagnation = 0
	}
}
