package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ErrConfigExists is returned when the target config file already exists.
var ErrConfigExists = errors.New("config file already exists")

const configHeader = `# fsk configuration
# Every key can be overridden with an FSK_ environment variable or the matching flag.

`

// Generator writes config files
type Generator struct{}

// NewGenerator creates a new config generator
func NewGenerator() *Generator {
	return &Generator{}
}

// GenerateConfig writes settings as TOML to outputPath. An existing file is only
// replaced when force is set.
func (g *Generator) GenerateConfig(settings Settings, outputPath string, force bool) error {
	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("%w: %s", ErrConfigExists, outputPath)
		}
	}

	content, err := g.generateConfigContent(settings)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(outputPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func (g *Generator) generateConfigContent(settings Settings) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(configHeader)
	if err := toml.NewEncoder(&buf).Encode(settings); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return buf.Bytes(), nil
}
