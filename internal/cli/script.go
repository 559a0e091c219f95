package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/typomata/pkg/codec"
	"gopkg.in/yaml.v3"
)

// Script is a recorded run: an initial state and the actions to apply in order.
type Script struct {
	Machine string           `yaml:"machine,omitempty" json:"machine,omitempty"`
	Initial codec.Envelope   `yaml:"initial" json:"initial"`
	Actions []codec.Envelope `yaml:"actions" json:"actions"`
}

// LoadScript reads a script file (YAML or JSON, chosen by extension).
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	return ParseScript(data, strings.ToLower(filepath.Ext(path)) == ".json")
}

// ParseScript decodes a script. YAML is the default.
func ParseScript(data []byte, isJSON bool) (*Script, error) {
	var s Script
	if isJSON {
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("failed to parse script JSON: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("failed to parse script YAML: %w", err)
		}
	}

	if s.Initial.Type == "" {
		return nil, errors.New("script has no initial state")
	}
	return &s, nil
}
