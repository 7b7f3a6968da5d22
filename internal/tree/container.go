package tree

import (
	"fmt"
	"sort"
)

// Container is an interior node holding named children. The child map is
// explicit: children enter the namespace through Attach only, and leave it
// through Detach. Iteration is always in lexicographic name order.
type Container struct {
	name   string
	parent *Container

	children map[string]Node
	// gen is the structural generation counter. It is meaningful on the
	// root only; bump always increments the root's counter.
	gen uint64
}

// NewContainer creates an empty, detached container. A container with no
// parent is a root.
func NewContainer() *Container {
	return &Container{children: make(map[string]Node)}
}

// Name returns the container's key in its parent, or "" for the root.
func (c *Container) Name() string { return c.name }

// Parent returns the owning container, or nil for the root.
func (c *Container) Parent() *Container { return c.parent }

func (c *Container) setParent(parent *Container, name string) {
	c.parent = parent
	c.name = name
}

// Len returns the number of direct children.
func (c *Container) Len() int { return len(c.children) }

// Attach adds child under the given name. It refuses empty and duplicate
// names, children that already have a parent, and attachments that would
// make a node its own ancestor. Attaching is a structural change.
func (c *Container) Attach(name string, child Node) error {
	if name == "" {
		return fmt.Errorf("attach to %q: child name must not be empty", Path(c))
	}
	if child == nil {
		return fmt.Errorf("attach %q to %q: child must not be nil", name, Path(c))
	}
	if _, exists := c.children[name]; exists {
		return fmt.Errorf("attach %q to %q: name already in use", name, Path(c))
	}
	if child.Parent() != nil {
		return fmt.Errorf("attach %q to %q: child is already attached at %q",
			name, Path(c), Path(child))
	}
	if childC, ok := child.(*Container); ok {
		depth := 0
		for cur := c; cur != nil; cur = cur.parent {
			if cur == childC {
				return &StructuralError{
					Reason: fmt.Sprintf("attaching %q under %q would create a cycle", name, Path(c)),
				}
			}
			depth++
			if depth > maxDepth {
				return &StructuralError{Reason: "cycle in parent links at " + Path(c)}
			}
		}
	}
	child.setParent(c, name)
	c.children[name] = child
	bump(c)
	return nil
}

// Detach removes and returns the child with the given name. The detached
// node keeps its values but loses its parent link. Detaching is a
// structural change.
func (c *Container) Detach(name string) (Node, error) {
	child, ok := c.children[name]
	if !ok {
		return nil, fmt.Errorf("detach %q from %q: no such child", name, Path(c))
	}
	delete(c.children, name)
	child.setParent(nil, "")
	bump(c)
	return child, nil
}

// Child returns the direct child with the given name.
func (c *Container) Child(name string) (Node, bool) {
	child, ok := c.children[name]
	return child, ok
}

// ChildNames returns the names of all direct children in canonical
// (lexicographic) order.
func (c *Container) ChildNames() []string {
	names := make([]string, 0, len(c.children))
	for name := range c.children {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
