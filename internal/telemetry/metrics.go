package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/limaJavier/wsat/pkg/genetic"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes the progress of genetic searches, labelled by formula
type Metrics struct {
	generations   *prometheus.CounterVec
	bestFitness   *prometheus.GaugeVec
	solveDuration prometheus.Histogram
	solved        prometheus.Counter
}

func NewMetrics(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		generations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "wsat_generations_total",
			Help: "Generations run by the genetic search",
		}, []string{"formula"}),
		bestFitness: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "wsat_best_fitness",
			Help: "Best fitness of the current population",
		}, []string{"formula"}),
		solveDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "wsat_solve_duration_seconds",
			Help:    "Duration of a whole genetic search",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10), // 1ms to ~4min
		}),
		solved: factory.NewCounter(prometheus.CounterOpts{
			Name: "wsat_formulas_solved_total",
			Help: "Formulas whose genetic search finished",
		}),
	}
}

// Observer returns a genetic.Observer recording the progress of the search on formula
func (metrics *Metrics) Observer(formula string) genetic.Observer {
	generations := metrics.generations.WithLabelValues(formula)
	bestFitness := metrics.bestFitness.WithLabelValues(formula)
	return genetic.ObserverFunc(func(_ int, fitness uint64) {
		generations.Inc()
		bestFitness.Set(float64(fitness))
	})
}

// Finish records the outcome of the search on formula
func (metrics *Metrics) Finish(formula string, best uint64, duration time.Duration) {
	metrics.bestFitness.WithLabelValues(formula).Set(float64(best))
	metrics.solveDuration.Observe(duration.Seconds())
	metrics.solved.Inc()
}

// Serve exposes gatherer on address under /metrics until ctx is done
func Serve(ctx context.Context, address string, gatherer prometheus.Gatherer) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	server := &http.Server{Addr: address, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server failed: %w", err)
	}
	return nil
}
