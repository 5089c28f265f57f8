package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/limaJavier/wsat/pkg/genetic"
	"github.com/onsi/gomega"
)

func TestDecode(t *testing.T) {
	g := gomega.NewWithT(t)

	config, err := Decode([]byte(`{
		"populationSize": 250,
		"generations": -20,
		"mutationProbability": "0.15",
		"tournamentSize": 4,
		"numberOfElites": 3,
		"workers": 2,
		"seed": 9007199254740993,
		"parallel": 4,
		"annotate": true
	}`))

	g.Expect(err).NotTo(gomega.HaveOccurred())
	g.Expect(config.Config).To(gomega.Equal(genetic.Config{
		PopulationSize:      250,
		Generations:         -20,
		MutationProbability: 0.15,
		TournamentSize:      4,
		NumberOfElites:      3,
		Workers:             2,
	}))
	g.Expect(config.Seed).To(gomega.Equal(uint64(9007199254740993)))
	g.Expect(config.Parallel).To(gomega.Equal(4))
	g.Expect(config.Annotate).To(gomega.BeTrue())
	g.Expect(config.Validate()).To(gomega.Succeed())
}

func TestDecodeKeepsDefaults(t *testing.T) {
	g := gomega.NewWithT(t)

	config, err := Decode([]byte(`{"populationSize": 30}`))

	g.Expect(err).NotTo(gomega.HaveOccurred())
	expected := Default()
	expected.PopulationSize = 30
	g.Expect(config).To(gomega.Equal(expected))
}

func TestDecodeRejectsUnknownKeys(t *testing.T) {
	g := gomega.NewWithT(t)

	_, err := Decode([]byte(`{"populationSize": 30, "crossoverRate": 0.3}`))
	g.Expect(err).To(gomega.MatchError(ErrInvalidConfig))

	_, err = Decode([]byte(`{"populationSize": `))
	g.Expect(err).To(gomega.MatchError(ErrInvalidConfig))
}

func TestValidate(t *testing.T) {
	g := gomega.NewWithT(t)

	config := Default()
	config.Parallel = 0
	g.Expect(config.Validate()).To(gomega.MatchError(genetic.ErrInvalidConfiguration))

	config = Default()
	config.TournamentSize = config.PopulationSize + 1
	g.Expect(config.Validate()).To(gomega.MatchError(genetic.ErrInvalidConfiguration))
}

func TestLoad(t *testing.T) {
	g := gomega.NewWithT(t)
	file := filepath.Join(t.TempDir(), FileName)
	g.Expect(os.WriteFile(file, []byte(`{"generations": 12}`), 0666)).To(gomega.Succeed())

	config, err := Load(file)

	g.Expect(err).NotTo(gomega.HaveOccurred())
	g.Expect(config.Generations).To(gomega.Equal(12))

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	g.Expect(err).To(gomega.HaveOccurred())
}
