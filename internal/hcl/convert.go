package hcl

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// floatList evaluates expr to a list of numbers. A bare number is accepted
// as a one-element list. Returns nil with no error when the attribute was
// absent.
func floatList(expr hcl.Expression, what string) ([]float64, error) {
	val, present, err := evalExpr(expr, what)
	if err != nil || !present {
		return nil, err
	}
	if val.Type().IsPrimitiveType() {
		var f float64
		if err := gocty.FromCtyValue(val, &f); err != nil {
			return nil, fmt.Errorf("%s: %w", what, err)
		}
		return []float64{f}, nil
	}
	listVal, err := convert.Convert(val, cty.List(cty.Number))
	if err != nil {
		return nil, fmt.Errorf("%s must be a list of numbers: %w", what, err)
	}
	out := make([]float64, 0, listVal.LengthInt())
	for _, elem := range listVal.AsValueSlice() {
		var f float64
		if err := gocty.FromCtyValue(elem, &f); err != nil {
			return nil, fmt.Errorf("%s: %w", what, err)
		}
		out = append(out, f)
	}
	return out, nil
}

// intList evaluates expr to a list of integers, reporting whether the
// attribute was present at all. An empty list is a legal, present value:
// it declares a scalar shape.
func intList(expr hcl.Expression, what string) ([]int, bool, error) {
	val, present, err := evalExpr(expr, what)
	if err != nil || !present {
		return nil, false, err
	}
	listVal, err := convert.Convert(val, cty.List(cty.Number))
	if err != nil {
		return nil, false, fmt.Errorf("%s must be a list of integers: %w", what, err)
	}
	out := make([]int, 0, listVal.LengthInt())
	for _, elem := range listVal.AsValueSlice() {
		var n int
		if err := gocty.FromCtyValue(elem, &n); err != nil {
			return nil, false, fmt.Errorf("%s: %w", what, err)
		}
		out = append(out, n)
	}
	return out, true, nil
}

// evalExpr evaluates a literal expression, distinguishing absent optional
// attributes (nil or null) from real values.
func evalExpr(expr hcl.Expression, what string) (cty.Value, bool, error) {
	if expr == nil {
		return cty.NilVal, false, nil
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return cty.NilVal, false, fmt.Errorf("%s: %w", what, diags)
	}
	if val.IsNull() {
		return cty.NilVal, false, nil
	}
	return val, true, nil
}
