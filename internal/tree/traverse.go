package tree

import (
	"fmt"
	"strings"
)

// Walk visits every node under c depth-first, children in canonical name
// order. The visit order is identical across calls for a fixed tree shape.
func Walk(c *Container, visit func(n Node)) {
	for _, name := range c.ChildNames() {
		child, _ := c.Child(name)
		visit(child)
		if sub, ok := child.(*Container); ok {
			Walk(sub, visit)
		}
	}
}

// SortedParams returns every Param leaf reachable from c in canonical
// order, fixed parameters included. This ordering is the bedrock of the
// flat-vector mapping: two calls with no structural change in between
// return identical sequences.
func SortedParams(c *Container) []*Param {
	var params []*Param
	Walk(c, func(n Node) {
		if p, ok := n.(*Param); ok {
			params = append(params, p)
		}
	})
	return params
}

// FreeParams returns the non-fixed Param leaves in canonical order. These
// are the leaves that receive slices of the free vector.
func FreeParams(c *Container) []*Param {
	var params []*Param
	for _, p := range SortedParams(c) {
		if !p.Fixed() {
			params = append(params, p)
		}
	}
	return params
}

// DataSlots returns every DataSlot leaf reachable from c in canonical order.
func DataSlots(c *Container) []*DataSlot {
	var slots []*DataSlot
	Walk(c, func(n Node) {
		if d, ok := n.(*DataSlot); ok {
			slots = append(slots, d)
		}
	})
	return slots
}

// TotalFreeDim returns the summed flattened sizes of all free Param leaves
// under c: the length of the flat free-state vector.
func TotalFreeDim(c *Container) int {
	total := 0
	for _, p := range FreeParams(c) {
		total += p.Size()
	}
	return total
}

// Lookup resolves a dotted path like "noise.variance" relative to c.
func Lookup(c *Container, path string) (Node, error) {
	parts := strings.Split(path, ".")
	cur := c
	for i, part := range parts {
		child, ok := cur.Child(part)
		if !ok {
			return nil, fmt.Errorf("lookup %q: no child %q under %q",
				path, part, strings.Join(parts[:i], "."))
		}
		if i == len(parts)-1 {
			return child, nil
		}
		sub, ok := child.(*Container)
		if !ok {
			return nil, fmt.Errorf("lookup %q: %q is a leaf, not a container",
				path, strings.Join(parts[:i+1], "."))
		}
		cur = sub
	}
	return nil, fmt.Errorf("lookup %q: empty path", path)
}

// ParamAt resolves a dotted path and requires it to name a Param.
func ParamAt(c *Container, path string) (*Param, error) {
	n, err := Lookup(c, path)
	if err != nil {
		return nil, err
	}
	p, ok := n.(*Param)
	if !ok {
		return nil, fmt.Errorf("lookup %q: node is not a param", path)
	}
	return p, nil
}

// DataAt resolves a dotted path and requires it to name a DataSlot.
func DataAt(c *Container, path string) (*DataSlot, error) {
	n, err := Lookup(c, path)
	if err != nil {
		return nil, err
	}
	d, ok := n.(*DataSlot)
	if !ok {
		return nil, fmt.Errorf("lookup %q: node is not a data slot", path)
	}
	return d, nil
}
