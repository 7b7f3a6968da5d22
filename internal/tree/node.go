package tree

import "strings"

// maxDepth bounds upward walks so that a corrupted parent chain fails with
// a StructuralError instead of looping forever.
const maxDepth = 1 << 16

// Node is a single vertex in the parameter tree: a Param leaf, a DataSlot
// leaf, or a Container. Every node has at most one parent; only the root
// Container has none. The interface is sealed to this package so that no
// other type can be attached into a tree's namespace.
type Node interface {
	// Name returns the node's key in its parent, or "" when detached.
	Name() string
	// Parent returns the owning container, or nil for the root.
	Parent() *Container

	setParent(parent *Container, name string)
}

// RootOf follows parent references from n until a node with no parent is
// found. It returns a StructuralError if the parent chain contains a cycle,
// which a correctly assembled tree can never have.
func RootOf(n Node) (Node, error) {
	seen := map[Node]bool{}
	for {
		if seen[n] {
			return nil, &StructuralError{Reason: "cycle in parent links at " + nodeLabel(n)}
		}
		seen[n] = true
		p := n.Parent()
		if p == nil {
			return n, nil
		}
		n = p
	}
}

// Path returns the dotted name path of n from its root, e.g.
// "noise.variance". The root itself has the empty path.
func Path(n Node) string {
	var parts []string
	depth := 0
	for cur := n; cur != nil && cur.Name() != ""; cur = cur.Parent() {
		parts = append(parts, cur.Name())
		depth++
		if depth > maxDepth {
			panic(&StructuralError{Reason: "cycle in parent links at " + nodeLabel(n)})
		}
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, ".")
}

// bump increments the structural generation of n's root. Mutating
// operations call it so that compiled-graph caches can detect staleness.
// The parent chain is trusted here; Attach refuses to create cycles.
func bump(n Node) {
	depth := 0
	for {
		p := n.Parent()
		if p == nil {
			if c, ok := n.(*Container); ok {
				c.gen++
			}
			return
		}
		n = p
		depth++
		if depth > maxDepth {
			panic(&StructuralError{Reason: "cycle in parent links at " + nodeLabel(n)})
		}
	}
}

// Generation returns the structural generation of n's root container. It
// changes whenever the tree shape, child names, fixed flags, or leaf shapes
// change, and is the compiled-graph cache's validity token.
func Generation(n Node) uint64 {
	root, err := RootOf(n)
	if err != nil {
		panic(err)
	}
	if c, ok := root.(*Container); ok {
		return c.gen
	}
	return 0
}

func nodeLabel(n Node) string {
	if name := n.Name(); name != "" {
		return name
	}
	return "(unnamed node)"
}
