// Package schema defines the HCL-facing structure of a model file. These
// structs are decode targets only; the hcl package translates them into
// the format-agnostic config model.
package schema

import "github.com/hashicorp/hcl/v2"

// ParamBlock is a `param "name" { ... }` block declaring one trainable
// leaf. Value and Shape stay as expressions here; evaluation and numeric
// conversion happen during translation.
type ParamBlock struct {
	Name      string         `hcl:"name,label"`
	Value     hcl.Expression `hcl:"value"`
	Shape     hcl.Expression `hcl:"shape,optional"`
	Transform string         `hcl:"transform,optional"`
	Prior     string         `hcl:"prior,optional"`
	Fixed     bool           `hcl:"fixed,optional"`
}

// DataBlock is a `data "name" { ... }` block declaring one data slot. The
// value is optional; a shape-only slot must be bound at evaluation time.
type DataBlock struct {
	Name  string         `hcl:"name,label"`
	Shape hcl.Expression `hcl:"shape"`
	Value hcl.Expression `hcl:"value,optional"`
}

// ContainerBlock is a `container "name" { ... }` block; containers nest
// arbitrarily deep.
type ContainerBlock struct {
	Name       string            `hcl:"name,label"`
	Params     []*ParamBlock     `hcl:"param,block"`
	Data       []*DataBlock      `hcl:"data,block"`
	Containers []*ContainerBlock `hcl:"container,block"`
}

// ModelBlock is the top-level `model "name" { ... }` block.
type ModelBlock struct {
	Name       string            `hcl:"name,label"`
	Objective  string            `hcl:"objective"`
	Params     []*ParamBlock     `hcl:"param,block"`
	Data       []*DataBlock      `hcl:"data,block"`
	Containers []*ContainerBlock `hcl:"container,block"`
}

// File is the root of a model file: exactly one model block.
type File struct {
	Model *ModelBlock `hcl:"model,block"`
}
