package dataset

import (
	"embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed data/world.json data/hideouts.json
var bundled embed.FS

const (
	bundledWorld    = "data/world.json"
	bundledHideouts = "data/hideouts.json"
)

// Loader reads a dataset file, or the copy bundled in the binary when no path is set.
// Datasets are JSON; they are decoded with yaml.v3, so YAML files work as well.
type Loader struct {
	filePath string
	bundled  string
}

// NewWorldLoader creates a loader for the zone dataset
func NewWorldLoader(filePath string) *Loader {
	return &Loader{filePath: filePath, bundled: bundledWorld}
}

// NewHideoutsLoader creates a loader for the hideout dataset
func NewHideoutsLoader(filePath string) *Loader {
	return &Loader{filePath: filePath, bundled: bundledHideouts}
}

// Source describes where the data is read from, for logging.
func (l *Loader) Source() string {
	if l.filePath == "" {
		return "bundled:" + l.bundled
	}
	return l.filePath
}

func (l *Loader) read() ([]byte, error) {
	if l.filePath == "" {
		data, err := bundled.ReadFile(l.bundled)
		if err != nil {
			return nil, fmt.Errorf("failed to read bundled dataset: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset file: %w", err)
	}
	return data, nil
}

// LoadWorld reads and parses a world dataset
func (l *Loader) LoadWorld() (WorldConfig, error) {
	data, err := l.read()
	if err != nil {
		return nil, err
	}
	return ParseWorld(data)
}

// LoadHideouts reads and parses a hideout dataset
func (l *Loader) LoadHideouts() (HideoutsConfig, error) {
	data, err := l.read()
	if err != nil {
		return HideoutsConfig{}, err
	}
	return ParseHideouts(data)
}

// ParseWorld decodes raw world.json content
func ParseWorld(data []byte) (WorldConfig, error) {
	var config WorldConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse world dataset: %w", err)
	}
	return config, nil
}

// ParseHideouts decodes raw hideouts.json content
func ParseHideouts(data []byte) (HideoutsConfig, error) {
	var config HideoutsConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return HideoutsConfig{}, fmt.Errorf("failed to parse hideouts dataset: %w", err)
	}
	return config, nil
}
