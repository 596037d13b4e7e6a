// Package config holds the server's invocation-fixed identity and an
// optional set of operational tuning knobs.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Identity holds the three values §3 calls "Server configuration":
// immutable after construction, sourced only from argv per §6 — never
// from a file or the environment.
type Identity struct {
	Port     int
	Password string
	Host     string
}

// Tuning holds operational knobs the spec leaves to the implementer
// (§4.2's line-length cap, §5's output-queue sizing). Unlike Identity,
// Tuning may be loaded from an optional YAML file; anything unset in
// the file keeps its default.
type Tuning struct {
	MaxLineLength    int           `yaml:"max_line_length"`
	OutputQueueDepth int           `yaml:"output_queue_depth"`
	ReadTimeout      time.Duration `yaml:"read_timeout"`
	IdleTimeout      time.Duration `yaml:"idle_timeout"`
}

// DefaultTuning returns the compiled-in defaults used when no tuning
// file is given or it cannot be found.
func DefaultTuning() Tuning {
	return Tuning{
		MaxLineLength:    512,
		OutputQueueDepth: 100,
		ReadTimeout:      10 * time.Minute,
		IdleTimeout:      0, // 0 disables idle reaping
	}
}

// LoadTuning reads path as YAML into a Tuning starting from the
// defaults, so a partial file only overrides the fields it mentions. An
// empty path, or a path that does not exist, returns the defaults
// unchanged — this is optional ambient configuration, not part of the
// required invocation contract in §6.
func LoadTuning(path string) (Tuning, error) {
	t := DefaultTuning()
	if path == "" {
		return t, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return t, nil
		}
		return t, fmt.Errorf("config: read tuning file: %w", err)
	}

	if err := yaml.Unmarshal(data, &t); err != nil {
		return t, fmt.Errorf("config: parse tuning file: %w", err)
	}
	return t, nil
}
