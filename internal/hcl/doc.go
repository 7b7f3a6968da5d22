// Package hcl is the HCL front end for model declarations. It parses model
// files into the schema structs, evaluates value and shape expressions
// through cty, and translates the result into the format-agnostic config
// model consumed by the tree builder.
package hcl
