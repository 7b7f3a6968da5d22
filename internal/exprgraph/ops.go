package exprgraph

// broadcastShape resolves the result shape of an elementwise binary op.
// Shapes must either be identical, or one operand must have a flattened
// size of one (a scalar broadcast). Anything richer is rejected.
func (g *Graph) broadcastShape(opName string, a, b *Node) Shape {
	g.checkInput(opName, a)
	g.checkInput(opName, b)
	switch {
	case a.shape.Equal(b.shape):
		return a.shape
	case a.shape.Size() == 1:
		return b.shape
	case b.shape.Size() == 1:
		return a.shape
	}
	buildFail(opName, "incompatible shapes %s and %s", a.shape, b.shape)
	return nil
}

func (g *Graph) binary(o op, opName string, a, b *Node) *Node {
	shape := g.broadcastShape(opName, a, b)
	return g.add(&Node{op: o, inputs: []*Node{a, b}, shape: shape.Clone()})
}

func (g *Graph) unary(o op, opName string, a *Node) *Node {
	g.checkInput(opName, a)
	return g.add(&Node{op: o, inputs: []*Node{a}, shape: a.shape.Clone()})
}

// Add returns the elementwise sum a + b. One operand may be a scalar.
func (g *Graph) Add(a, b *Node) *Node { return g.binary(opAdd, "add", a, b) }

// Sub returns the elementwise difference a - b. One operand may be a scalar.
func (g *Graph) Sub(a, b *Node) *Node { return g.binary(opSub, "sub", a, b) }

// Mul returns the elementwise product a * b. One operand may be a scalar.
func (g *Graph) Mul(a, b *Node) *Node { return g.binary(opMul, "mul", a, b) }

// Div returns the elementwise quotient a / b. One operand may be a scalar.
func (g *Graph) Div(a, b *Node) *Node { return g.binary(opDiv, "div", a, b) }

// Neg returns -a.
func (g *Graph) Neg(a *Node) *Node { return g.unary(opNeg, "neg", a) }

// Exp returns e^a elementwise.
func (g *Graph) Exp(a *Node) *Node { return g.unary(opExp, "exp", a) }

// Log returns the natural logarithm of a elementwise.
func (g *Graph) Log(a *Node) *Node { return g.unary(opLog, "log", a) }

// Square returns a * a elementwise.
func (g *Graph) Square(a *Node) *Node { return g.unary(opSquare, "square", a) }

// Softplus returns log(1 + e^a) elementwise.
func (g *Graph) Softplus(a *Node) *Node { return g.unary(opSoftplus, "softplus", a) }

// Sigmoid returns 1 / (1 + e^-a) elementwise.
func (g *Graph) Sigmoid(a *Node) *Node { return g.unary(opSigmoid, "sigmoid", a) }

// Sum reduces a to a scalar by summing all elements.
func (g *Graph) Sum(a *Node) *Node {
	g.checkInput("sum", a)
	return g.add(&Node{op: opSum, inputs: []*Node{a}, shape: nil})
}

// Slice returns the contiguous elements [lo, hi) of a rank-1 node.
func (g *Graph) Slice(a *Node, lo, hi int) *Node {
	g.checkInput("slice", a)
	if len(a.shape) != 1 {
		buildFail("slice", "input must be rank 1, got shape %s", a.shape)
	}
	if lo < 0 || hi < lo || hi > a.shape[0] {
		buildFail("slice", "bounds [%d, %d) out of range for shape %s", lo, hi, a.shape)
	}
	return g.add(&Node{op: opSlice, inputs: []*Node{a}, shape: Shape{hi - lo}, lo: lo, hi: hi})
}

// Reshape reinterprets a's elements under a new shape of identical size.
func (g *Graph) Reshape(a *Node, shape Shape) *Node {
	g.checkInput("reshape", a)
	if err := shape.Validate(); err != nil {
		buildFail("reshape", "%v", err)
	}
	if shape.Size() != a.shape.Size() {
		buildFail("reshape", "cannot reshape %s to %s", a.shape, shape)
	}
	return g.add(&Node{op: opReshape, inputs: []*Node{a}, shape: shape.Clone()})
}
