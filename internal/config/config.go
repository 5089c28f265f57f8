package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"slices"

	"github.com/limaJavier/wsat/pkg/genetic"
	"github.com/mitchellh/mapstructure"
	"github.com/samber/lo"
)

const FileName = "config.json"

var ErrInvalidConfig = errors.New("invalid config file")

// Config gathers the genetic parameters together with the options of a run over one or more formula files
type Config struct {
	genetic.Config `mapstructure:",squash"`

	Seed     uint64 `mapstructure:"seed"`     // Master seed; 0 draws a fresh one
	Parallel int    `mapstructure:"parallel"` // Formulas solved at the same time
	Annotate bool   `mapstructure:"annotate"` // Generate weights for formula files lacking them before solving
}

func Default() Config {
	return Config{
		Config:   genetic.DefaultConfig(),
		Parallel: 1,
	}
}

func (config Config) Validate() error {
	if err := config.Config.Validate(); err != nil {
		return err
	}
	if config.Parallel <= 0 {
		return fmt.Errorf("%w: parallel must be positive: %d", genetic.ErrInvalidConfiguration, config.Parallel)
	}
	return nil
}

// Load decodes a JSON config file on top of the default values. Unknown keys are rejected
func Load(file string) (Config, error) {
	content, err := os.ReadFile(file)
	if err != nil {
		return Config{}, fmt.Errorf("cannot read config file: %w", err)
	}
	return Decode(content)
}

func Decode(content []byte) (Config, error) {
	decoder := json.NewDecoder(bytes.NewReader(content))
	decoder.UseNumber()

	var inputJson map[string]any
	if err := decoder.Decode(&inputJson); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	config := Default()
	mapDecoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &config,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return Config{}, err
	}
	if err := mapDecoder.Decode(inputJson); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return config, nil
}

// Locate returns the path of the config file placed next to the executable, or an empty string if there is none
func Locate() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}
	execPath = path.Dir(execPath)

	files, err := os.ReadDir(execPath)
	if err != nil {
		return ""
	}
	fileNames := lo.Map(files, func(file os.DirEntry, _ int) string { return file.Name() })

	if !slices.Contains(fileNames, FileName) {
		return ""
	}
	return path.Join(execPath, FileName)
}
