package app

import "errors"

// Config holds everything an App instance needs to run.
type Config struct {
	// ModelPath points at the .hcl model declaration.
	ModelPath string

	LogFormat string
	LogLevel  string

	// Steps is the number of gradient-descent steps to run; 0 means
	// describe the compiled model and stop.
	Steps    int
	StepSize float64
	Tol      float64
}

// NewConfig validates a Config and returns it.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.ModelPath == "" {
		return nil, errors.New("ModelPath is a required configuration field and cannot be empty")
	}
	if cfg.Steps < 0 {
		return nil, errors.New("Steps cannot be negative")
	}
	if cfg.Steps > 0 && cfg.StepSize <= 0 {
		return nil, errors.New("StepSize must be positive when Steps is set")
	}
	return &cfg, nil
}
