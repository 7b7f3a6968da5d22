// Package config holds the format-agnostic model declaration: what the
// HCL loader produces and the tree builder consumes. Keeping it free of
// hcl types means alternative front ends only need to produce these specs.
package config

// ParamSpec declares one trainable leaf. A nil Shape means a rank-1 shape
// of len(Values); an explicit empty Shape declares a scalar. Transform and
// Prior are registry spec strings ("" means identity / no prior).
type ParamSpec struct {
	Name      string
	Values    []float64
	Shape     []int
	HasShape  bool
	Transform string
	Prior     string
	Fixed     bool
}

// DataSpec declares one data slot. Values is an optional default binding.
type DataSpec struct {
	Name   string
	Shape  []int
	Values []float64
}

// ContainerSpec declares a named interior node with its children.
type ContainerSpec struct {
	Name       string
	Params     []*ParamSpec
	Data       []*DataSpec
	Containers []*ContainerSpec
}

// ModelSpec is a complete model declaration: the root-level children plus
// the name of the objective builder to compile against.
type ModelSpec struct {
	Name       string
	Objective  string
	Params     []*ParamSpec
	Data       []*DataSpec
	Containers []*ContainerSpec
}
