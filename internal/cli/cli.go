package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/paramtree/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("paramtree", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
paramtree - compile declarative parameter trees and fit them by gradient descent.

Usage:
  paramtree [options] [MODEL_PATH]

Arguments:
  MODEL_PATH
    Path to a .hcl model declaration file.

Options:
`)
		flagSet.PrintDefaults()
	}

	modelFlag := flagSet.String("model", "", "Path to the model declaration file.")
	mFlag := flagSet.String("m", "", "Path to the model declaration file (shorthand).")
	logFormatFlag := flagSet.String("log-format", "json", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	stepsFlag := flagSet.Int("steps", 0, "Number of gradient-descent steps. 0 only describes the compiled model.")
	stepSizeFlag := flagSet.Float64("step-size", 0.01, "Gradient-descent step size.")
	tolFlag := flagSet.Float64("tol", 1e-8, "Stop early once the gradient norm falls below this value.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	if *modelFlag != "" {
		path = *modelFlag
	} else if *mFlag != "" {
		path = *mFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	slog.Debug("Model path determined.", "path", path)

	if path == "" {
		slog.Debug("No model path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		ModelPath: path,
		LogFormat: logFormat,
		LogLevel:  logLevel,
		Steps:     *stepsFlag,
		StepSize:  *stepSizeFlag,
		Tol:       *tolFlag,
	})

	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
