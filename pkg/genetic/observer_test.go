package genetic

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMultiObserver(t *testing.T) {
	var calls []uint64
	first := ObserverFunc(func(_ int, bestFitness uint64) { calls = append(calls, bestFitness) })
	second := ObserverFunc(func(generation int, _ uint64) { calls = append(calls, uint64(generation)) })

	MultiObserver(first, second).Observe(7, 42)

	assert.Equal(t, []uint64{42, 7}, calls)
}

func TestLogObserver(t *testing.T) {
	var buffer bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buffer, nil))

	NewLogObserver(logger).Observe(3, 120)

	assert.Contains(t, buffer.String(), "generation=3")
	assert.Contains(t, buffer.String(), "fitness=120")
}
