package exprgraph

import "fmt"

// op identifies the operation a node performs.
type op int

const (
	opPlaceholder op = iota
	opConst
	opAdd
	opSub
	opMul
	opDiv
	opNeg
	opExp
	opLog
	opSquare
	opSoftplus
	opSigmoid
	opSum
	opSlice
	opReshape
)

var opNames = map[op]string{
	opPlaceholder: "placeholder",
	opConst:       "const",
	opAdd:         "add",
	opSub:         "sub",
	opMul:         "mul",
	opDiv:         "div",
	opNeg:         "neg",
	opExp:         "exp",
	opLog:         "log",
	opSquare:      "square",
	opSoftplus:    "softplus",
	opSigmoid:     "sigmoid",
	opSum:         "sum",
	opSlice:       "slice",
	opReshape:     "reshape",
}

// Node is a single vertex in an expression graph. Nodes are created through
// Graph methods only and are owned by their Graph; the id doubles as the
// index into per-run value and adjoint buffers.
type Node struct {
	id     int
	op     op
	shape  Shape
	inputs []*Node

	// value holds the literal for const nodes, nil otherwise.
	value []float64
	// name labels placeholder nodes for binding and error messages.
	name string
	// lo and hi are the half-open bounds of a slice node.
	lo, hi int
}

// Shape returns the shape of the node's value.
func (n *Node) Shape() Shape { return n.shape }

// Name returns the placeholder name, or "" for non-placeholder nodes.
func (n *Node) Name() string { return n.name }

// String renders the node for log and error output.
func (n *Node) String() string {
	if n.op == opPlaceholder {
		return fmt.Sprintf("placeholder(%q, %s)", n.name, n.shape)
	}
	return fmt.Sprintf("%s#%d%s", opNames[n.op], n.id, n.shape)
}

// BuildError reports an invalid graph construction, such as an elementwise
// op over incompatible shapes. Op constructors panic with *BuildError; use
// RecoverBuildError at the boundary that assembles graphs from user input.
type BuildError struct {
	Op     string
	Detail string
}

// Error implements the error interface for BuildError.
func (e *BuildError) Error() string {
	return fmt.Sprintf("exprgraph: invalid %s: %s", e.Op, e.Detail)
}

func buildFail(opName, format string, args ...any) {
	panic(&BuildError{Op: opName, Detail: fmt.Sprintf(format, args...)})
}

// RecoverBuildError converts a *BuildError panic into an ordinary error.
// Use it in a defer around graph-building code:
//
//	defer exprgraph.RecoverBuildError(&err)
//
// Panics of any other type are re-raised untouched.
func RecoverBuildError(err *error) {
	r := recover()
	if r == nil {
		return
	}
	if be, ok := r.(*BuildError); ok {
		*err = be
		return
	}
	panic(r)
}

// Graph owns a set of expression nodes. Node ids are assigned in creation
// order, so the node slice is already a valid topological order for both
// the forward and the reverse pass.
type Graph struct {
	nodes []*Node
}

// New creates an empty expression graph.
func New() *Graph {
	return &Graph{}
}

// Len returns the number of nodes currently in the graph.
func (g *Graph) Len() int { return len(g.nodes) }

func (g *Graph) add(n *Node) *Node {
	n.id = len(g.nodes)
	g.nodes = append(g.nodes, n)
	return n
}

func (g *Graph) owns(n *Node) bool {
	return n != nil && n.id < len(g.nodes) && g.nodes[n.id] == n
}

func (g *Graph) checkInput(opName string, n *Node) {
	if !g.owns(n) {
		buildFail(opName, "input node belongs to a different graph")
	}
}

// Placeholder creates a named input node of the given shape. Its value is
// supplied through Bindings at run time.
func (g *Graph) Placeholder(name string, shape Shape) *Node {
	if err := shape.Validate(); err != nil {
		buildFail("placeholder", "%v", err)
	}
	return g.add(&Node{op: opPlaceholder, name: name, shape: shape.Clone()})
}

// Const creates a literal node holding the given values.
func (g *Graph) Const(values []float64, shape Shape) *Node {
	if err := shape.Validate(); err != nil {
		buildFail("const", "%v", err)
	}
	if len(values) != shape.Size() {
		buildFail("const", "got %d values for shape %s", len(values), shape)
	}
	v := make([]float64, len(values))
	copy(v, values)
	return g.add(&Node{op: opConst, value: v, shape: shape.Clone()})
}

// Scalar creates a scalar literal node.
func (g *Graph) Scalar(v float64) *Node {
	return g.add(&Node{op: opConst, value: []float64{v}, shape: nil})
}
