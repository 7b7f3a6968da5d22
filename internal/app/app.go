// Package app wires the HCL loader, registry, builder, and optimizer into
// one runnable application instance.
package app

import (
	"context"
	"fmt"
	"io"

	"github.com/vk/paramtree/internal/builder"
	"github.com/vk/paramtree/internal/ctxlog"
	"github.com/vk/paramtree/internal/fsutil"
	"github.com/vk/paramtree/internal/hcl"
	"github.com/vk/paramtree/internal/model"
	"github.com/vk/paramtree/internal/optim"
	"github.com/vk/paramtree/internal/registry"
	"github.com/vk/paramtree/internal/tree"
)

// App loads a model declaration, compiles it, and either describes the
// compiled layout or fits the model with gradient descent.
type App struct {
	out      io.Writer
	config   *Config
	loader   *hcl.Loader
	registry *registry.Registry
}

// NewApp assembles an App around the given output writer and config. Log
// output also goes to out; results are plain text on the same stream.
func NewApp(out io.Writer, config *Config) *App {
	return &App{
		out:      out,
		config:   config,
		loader:   hcl.NewLoader(),
		registry: registry.New(),
	}
}

// Run executes the configured workload: load, build, compile, then
// describe or fit.
func (a *App) Run(ctx context.Context) error {
	logger := newLogger(a.config.LogLevel, a.config.LogFormat, a.out)
	ctx = ctxlog.WithLogger(ctx, logger)

	path, err := fsutil.ResolveModelPath(a.config.ModelPath)
	if err != nil {
		return err
	}
	spec, err := a.loader.LoadFile(ctx, path)
	if err != nil {
		return err
	}

	m, err := builder.Build(ctx, spec, a.registry)
	if err != nil {
		return err
	}

	if err := a.describe(ctx, spec.Name, m); err != nil {
		return err
	}
	if a.config.Steps == 0 {
		return nil
	}
	return a.fit(ctx, m)
}

// describe compiles the model and prints the free-vector layout table.
func (a *App) describe(ctx context.Context, name string, m *model.Model) error {
	compiled, err := m.Compile()
	if err != nil {
		return fmt.Errorf("compile model: %w", err)
	}

	fmt.Fprintf(a.out, "model %q: %d free dimensions, %d data slots\n",
		name, compiled.FreeDim, len(compiled.Data))
	for _, seg := range compiled.Layout {
		fmt.Fprintf(a.out, "  [%3d:%3d) %-24s shape %-8s transform %s\n",
			seg.Offset, seg.Offset+seg.Size, seg.Path, seg.Shape, seg.Transform)
	}
	for path := range compiled.Data {
		fmt.Fprintf(a.out, "  data %-28s shape %s\n", path, compiled.DataShapes[path])
	}
	return nil
}

// fit runs gradient descent from the model's current state and writes the
// optimized parameters back into the tree.
func (a *App) fit(ctx context.Context, m *model.Model) error {
	logger := ctxlog.FromContext(ctx)

	data, err := m.Bindings()
	if err != nil {
		return fmt.Errorf("collect data bindings: %w", err)
	}
	init, err := m.FreeState()
	if err != nil {
		return fmt.Errorf("marshal free state: %w", err)
	}

	objective := func(flat []float64) (float64, []float64, error) {
		return m.Objective(flat, data)
	}

	logger.Info("Starting descent.", "steps", a.config.Steps, "step_size", a.config.StepSize)
	res, err := optim.Descend(ctx, objective, init, a.config.StepSize, a.config.Steps, a.config.Tol)
	if err != nil {
		return err
	}

	if err := m.SetState(res.State); err != nil {
		return fmt.Errorf("write optimized state: %w", err)
	}

	fmt.Fprintf(a.out, "fit finished after %d steps, objective %.6g\n", res.Steps, res.Objective)
	for _, p := range tree.SortedParams(m.Root()) {
		fmt.Fprintf(a.out, "  %-24s = %v\n", tree.Path(p), p.Value())
	}
	return nil
}
