package hcl

import (
	"fmt"

	"github.com/vk/paramtree/internal/config"
	"github.com/vk/paramtree/internal/schema"
)

// translateModel converts the decoded top-level model block into the
// agnostic config model.
func (l *Loader) translateModel(m *schema.ModelBlock) (*config.ModelSpec, error) {
	spec := &config.ModelSpec{Name: m.Name, Objective: m.Objective}
	if spec.Objective == "" {
		return nil, fmt.Errorf("model %q: objective must not be empty", m.Name)
	}
	var err error
	if spec.Params, spec.Data, spec.Containers, err = l.translateChildren(
		m.Params, m.Data, m.Containers); err != nil {
		return nil, fmt.Errorf("model %q: %w", m.Name, err)
	}
	return spec, nil
}

func (l *Loader) translateChildren(
	params []*schema.ParamBlock,
	data []*schema.DataBlock,
	containers []*schema.ContainerBlock,
) ([]*config.ParamSpec, []*config.DataSpec, []*config.ContainerSpec, error) {
	outParams := make([]*config.ParamSpec, 0, len(params))
	for _, p := range params {
		spec, err := l.translateParam(p)
		if err != nil {
			return nil, nil, nil, err
		}
		outParams = append(outParams, spec)
	}

	outData := make([]*config.DataSpec, 0, len(data))
	for _, d := range data {
		spec, err := l.translateData(d)
		if err != nil {
			return nil, nil, nil, err
		}
		outData = append(outData, spec)
	}

	outContainers := make([]*config.ContainerSpec, 0, len(containers))
	for _, c := range containers {
		spec, err := l.translateContainer(c)
		if err != nil {
			return nil, nil, nil, err
		}
		outContainers = append(outContainers, spec)
	}
	return outParams, outData, outContainers, nil
}

func (l *Loader) translateContainer(c *schema.ContainerBlock) (*config.ContainerSpec, error) {
	spec := &config.ContainerSpec{Name: c.Name}
	var err error
	if spec.Params, spec.Data, spec.Containers, err = l.translateChildren(
		c.Params, c.Data, c.Containers); err != nil {
		return nil, fmt.Errorf("container %q: %w", c.Name, err)
	}
	return spec, nil
}

func (l *Loader) translateParam(p *schema.ParamBlock) (*config.ParamSpec, error) {
	values, err := floatList(p.Value, "value")
	if err != nil {
		return nil, fmt.Errorf("param %q: %w", p.Name, err)
	}
	if values == nil {
		return nil, fmt.Errorf("param %q: value must be set", p.Name)
	}
	spec := &config.ParamSpec{
		Name:      p.Name,
		Values:    values,
		Transform: p.Transform,
		Prior:     p.Prior,
		Fixed:     p.Fixed,
	}
	shape, present, err := intList(p.Shape, "shape")
	if err != nil {
		return nil, fmt.Errorf("param %q: %w", p.Name, err)
	}
	if present {
		spec.Shape = shape
		spec.HasShape = true
	}
	return spec, nil
}

func (l *Loader) translateData(d *schema.DataBlock) (*config.DataSpec, error) {
	shape, present, err := intList(d.Shape, "shape")
	if err != nil {
		return nil, fmt.Errorf("data %q: %w", d.Name, err)
	}
	if !present {
		return nil, fmt.Errorf("data %q: shape must be set", d.Name)
	}
	values, err := floatList(d.Value, "value")
	if err != nil {
		return nil, fmt.Errorf("data %q: %w", d.Name, err)
	}
	return &config.DataSpec{Name: d.Name, Shape: shape, Values: values}, nil
}
