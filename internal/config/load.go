package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadPipeline decodes a pipeline file. Unknown fields are rejected so a
// typoed key fails loudly instead of silently disabling a setting.
func LoadPipeline(path string) (Pipeline, error) {
	f, err := os.Open(path)
	if err != nil {
		return Pipeline{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	var p Pipeline
	if err := dec.Decode(&p); err != nil {
		return Pipeline{}, fmt.Errorf("decode config %s: %w", path, err)
	}
	return p, nil
}
