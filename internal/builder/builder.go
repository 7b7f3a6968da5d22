// Package builder turns a format-agnostic model declaration into a live
// Model: it resolves transform, prior, and objective names through the
// registry and assembles the parameter tree container by container.
package builder

import (
	"context"
	"fmt"

	"github.com/vk/paramtree/internal/config"
	"github.com/vk/paramtree/internal/ctxlog"
	"github.com/vk/paramtree/internal/exprgraph"
	"github.com/vk/paramtree/internal/model"
	"github.com/vk/paramtree/internal/registry"
	"github.com/vk/paramtree/internal/tree"
)

// Build assembles a Model from its declaration. Every name in the declaration is
// resolved through reg; unknown transforms, priors, or objectives fail the
// build rather than degrade silently.
func Build(ctx context.Context, spec *config.ModelSpec, reg *registry.Registry) (*model.Model, error) {
	logger := ctxlog.FromContext(ctx)

	buildFunc, err := reg.Objective(spec.Objective)
	if err != nil {
		return nil, fmt.Errorf("model %q: %w", spec.Name, err)
	}

	m := model.New(buildFunc)
	if err := populate(m.Root(), spec.Params, spec.Data, spec.Containers, reg); err != nil {
		return nil, fmt.Errorf("model %q: %w", spec.Name, err)
	}

	logger.Debug("Model built.",
		"model", spec.Name,
		"params", len(tree.SortedParams(m.Root())),
		"free_dim", tree.TotalFreeDim(m.Root()),
	)
	return m, nil
}

func populate(
	c *tree.Container,
	params []*config.ParamSpec,
	data []*config.DataSpec,
	containers []*config.ContainerSpec,
	reg *registry.Registry,
) error {
	for _, ps := range params {
		p, err := buildParam(ps, reg)
		if err != nil {
			return err
		}
		if err := c.Attach(ps.Name, p); err != nil {
			return err
		}
	}
	for _, ds := range data {
		d, err := buildData(ds)
		if err != nil {
			return err
		}
		if err := c.Attach(ds.Name, d); err != nil {
			return err
		}
	}
	for _, cs := range containers {
		sub := tree.NewContainer()
		if err := c.Attach(cs.Name, sub); err != nil {
			return err
		}
		if err := populate(sub, cs.Params, cs.Data, cs.Containers, reg); err != nil {
			return err
		}
	}
	return nil
}

func buildParam(ps *config.ParamSpec, reg *registry.Registry) (*tree.Param, error) {
	shape := specShape(ps.Shape, ps.HasShape, len(ps.Values))
	p, err := tree.NewParam(ps.Values, shape)
	if err != nil {
		return nil, fmt.Errorf("param %q: %w", ps.Name, err)
	}
	if ps.Transform != "" {
		t, err := reg.Transform(ps.Transform)
		if err != nil {
			return nil, fmt.Errorf("param %q: %w", ps.Name, err)
		}
		p.SetTransform(t)
	}
	if ps.Prior != "" {
		pr, err := reg.Prior(ps.Prior)
		if err != nil {
			return nil, fmt.Errorf("param %q: %w", ps.Name, err)
		}
		p.SetPrior(pr)
	}
	if ps.Fixed {
		p.SetFixed(true)
	}
	return p, nil
}

func buildData(ds *config.DataSpec) (*tree.DataSlot, error) {
	shape := specShape(ds.Shape, true, 0)
	if ds.Values == nil {
		d, err := tree.NewDataSlot(shape)
		if err != nil {
			return nil, fmt.Errorf("data %q: %w", ds.Name, err)
		}
		return d, nil
	}
	d, err := tree.NewDataSlotWithValue(ds.Values, shape)
	if err != nil {
		return nil, fmt.Errorf("data %q: %w", ds.Name, err)
	}
	return d, nil
}

// specShape resolves a declared shape: an omitted shape defaults to a
// rank-1 shape of the value count, while an explicit empty list declares a
// scalar.
func specShape(dims []int, declared bool, valueCount int) exprgraph.Shape {
	if !declared {
		return exprgraph.Shape{valueCount}
	}
	out := make(exprgraph.Shape, len(dims))
	for i, d := range dims {
		out[i] = d
	}
	return out
}
