package exprgraph

import (
	"fmt"
	"math"
)

// Bindings maps placeholder nodes to the concrete flat values they take for
// one run. Every placeholder reachable from the requested output must be
// bound; a binding for an owned placeholder that the output never reads is
// accepted and ignored.
type Bindings map[*Node][]float64

// Run evaluates the scalar node output under the given bindings and returns
// its value together with d(output)/d(wrt), computed by a single
// reverse-mode sweep. wrt may be nil when only the value is needed.
func (g *Graph) Run(output, wrt *Node, b Bindings) (float64, []float64, error) {
	if !g.owns(output) {
		return 0, nil, fmt.Errorf("exprgraph: output node belongs to a different graph")
	}
	if output.shape.Size() != 1 {
		return 0, nil, fmt.Errorf("exprgraph: output must be scalar, got shape %s", output.shape)
	}
	if wrt != nil && !g.owns(wrt) {
		return 0, nil, fmt.Errorf("exprgraph: gradient target belongs to a different graph")
	}
	for n, v := range b {
		if !g.owns(n) {
			return 0, nil, fmt.Errorf("exprgraph: binding for a node of a different graph")
		}
		if n.op != opPlaceholder {
			return 0, nil, fmt.Errorf("exprgraph: binding for non-placeholder node %s", n)
		}
		if len(v) != n.shape.Size() {
			return 0, nil, fmt.Errorf("exprgraph: binding for %s has %d values, want %d",
				n, len(v), n.shape.Size())
		}
	}

	needed := g.reachable(output)
	vals := make([][]float64, len(g.nodes))
	for id := 0; id <= output.id; id++ {
		if !needed[id] {
			continue
		}
		v, err := g.forward(g.nodes[id], vals, b)
		if err != nil {
			return 0, nil, err
		}
		vals[id] = v
	}

	value := vals[output.id][0]
	if wrt == nil {
		return value, nil, nil
	}

	adj := make([][]float64, len(g.nodes))
	adj[output.id] = []float64{1}
	for id := output.id; id >= 0; id-- {
		if !needed[id] || adj[id] == nil {
			continue
		}
		g.backward(g.nodes[id], vals, adj)
	}

	grad := make([]float64, wrt.shape.Size())
	if adj[wrt.id] != nil {
		copy(grad, adj[wrt.id])
	}
	return value, grad, nil
}

// reachable marks every node the output transitively depends on.
func (g *Graph) reachable(output *Node) []bool {
	needed := make([]bool, len(g.nodes))
	stack := []*Node{output}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if needed[n.id] {
			continue
		}
		needed[n.id] = true
		stack = append(stack, n.inputs...)
	}
	return needed
}

// at reads operand element i under scalar broadcast.
func at(v []float64, i int) float64 {
	if len(v) == 1 {
		return v[0]
	}
	return v[i]
}

func (g *Graph) forward(n *Node, vals [][]float64, b Bindings) ([]float64, error) {
	size := n.shape.Size()
	switch n.op {
	case opPlaceholder:
		v, ok := b[n]
		if !ok {
			return nil, fmt.Errorf("exprgraph: no binding for %s", n)
		}
		return v, nil
	case opConst:
		return n.value, nil
	case opSlice:
		return vals[n.inputs[0].id][n.lo:n.hi], nil
	case opReshape:
		return vals[n.inputs[0].id], nil
	case opSum:
		total := 0.0
		for _, x := range vals[n.inputs[0].id] {
			total += x
		}
		return []float64{total}, nil
	}

	out := make([]float64, size)
	switch n.op {
	case opAdd, opSub, opMul, opDiv:
		av := vals[n.inputs[0].id]
		bv := vals[n.inputs[1].id]
		for i := range out {
			x, y := at(av, i), at(bv, i)
			switch n.op {
			case opAdd:
				out[i] = x + y
			case opSub:
				out[i] = x - y
			case opMul:
				out[i] = x * y
			case opDiv:
				out[i] = x / y
			}
		}
	case opNeg, opExp, opLog, opSquare, opSoftplus, opSigmoid:
		av := vals[n.inputs[0].id]
		for i, x := range av {
			switch n.op {
			case opNeg:
				out[i] = -x
			case opExp:
				out[i] = math.Exp(x)
			case opLog:
				out[i] = math.Log(x)
			case opSquare:
				out[i] = x * x
			case opSoftplus:
				out[i] = softplus(x)
			case opSigmoid:
				out[i] = sigmoid(x)
			}
		}
	default:
		return nil, fmt.Errorf("exprgraph: unhandled op %q", opNames[n.op])
	}
	return out, nil
}

// accumulate adds contribution g at result index i into the adjoint of in,
// collapsing broadcast operands by summation into their single element.
func accumulate(adj [][]float64, in *Node, i int, contribution float64) {
	if adj[in.id] == nil {
		adj[in.id] = make([]float64, in.shape.Size())
	}
	if in.shape.Size() == 1 {
		adj[in.id][0] += contribution
		return
	}
	adj[in.id][i] += contribution
}

func (g *Graph) backward(n *Node, vals, adj [][]float64) {
	grad := adj[n.id]
	switch n.op {
	case opPlaceholder, opConst:
		return
	case opSlice:
		in := n.inputs[0]
		for i, gv := range grad {
			accumulate(adj, in, n.lo+i, gv)
		}
	case opReshape:
		in := n.inputs[0]
		for i, gv := range grad {
			accumulate(adj, in, i, gv)
		}
	case opSum:
		in := n.inputs[0]
		for i := 0; i < in.shape.Size(); i++ {
			accumulate(adj, in, i, grad[0])
		}
	case opAdd, opSub, opMul, opDiv:
		a, b := n.inputs[0], n.inputs[1]
		av, bv := vals[a.id], vals[b.id]
		for i, gv := range grad {
			x, y := at(av, i), at(bv, i)
			switch n.op {
			case opAdd:
				accumulate(adj, a, i, gv)
				accumulate(adj, b, i, gv)
			case opSub:
				accumulate(adj, a, i, gv)
				accumulate(adj, b, i, -gv)
			case opMul:
				accumulate(adj, a, i, gv*y)
				accumulate(adj, b, i, gv*x)
			case opDiv:
				accumulate(adj, a, i, gv/y)
				accumulate(adj, b, i, -gv*x/(y*y))
			}
		}
	case opNeg, opExp, opLog, opSquare, opSoftplus, opSigmoid:
		a := n.inputs[0]
		av := vals[a.id]
		ov := vals[n.id]
		for i, gv := range grad {
			switch n.op {
			case opNeg:
				accumulate(adj, a, i, -gv)
			case opExp:
				accumulate(adj, a, i, gv*ov[i])
			case opLog:
				accumulate(adj, a, i, gv/av[i])
			case opSquare:
				accumulate(adj, a, i, 2*av[i]*gv)
			case opSoftplus:
				accumulate(adj, a, i, gv*sigmoid(av[i]))
			case opSigmoid:
				accumulate(adj, a, i, gv*ov[i]*(1-ov[i]))
			}
		}
	}
}

func sigmoid(x float64) float64 {
	if x >= 0 {
		return 1 / (1 + math.Exp(-x))
	}
	e := math.Exp(x)
	return e / (1 + e)
}

func softplus(x float64) float64 {
	// log(1+e^x) rewritten to avoid overflow for large x.
	if x > 30 {
		return x
	}
	return math.Log1p(math.Exp(x))
}
