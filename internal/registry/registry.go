// Package registry resolves the names used in declarative model files into
// concrete transforms, priors, and built-in objective builders. It plays
// the same role for model declarations that a handler registry plays for a
// plugin system: one lookup table per concern, populated with the
// built-ins at construction.
package registry

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/vk/paramtree/internal/compiler"
	"github.com/vk/paramtree/internal/exprgraph"
	"github.com/vk/paramtree/internal/prior"
	"github.com/vk/paramtree/internal/transform"
	"github.com/vk/paramtree/internal/tree"
)

// TransformCtor builds a transform from the numeric arguments of a spec
// string like "logistic(0, 1)".
type TransformCtor func(args []float64) (transform.Transform, error)

// PriorCtor builds a prior from the numeric arguments of a spec string
// like "normal(0, 1)".
type PriorCtor func(args []float64) (prior.Prior, error)

// Registry holds the name-indexed constructors and objective builders for
// one application instance.
type Registry struct {
	transforms map[string]TransformCtor
	priors     map[string]PriorCtor
	objectives map[string]compiler.BuildFunc
}

// New creates a Registry with every built-in registered.
func New() *Registry {
	r := &Registry{
		transforms: make(map[string]TransformCtor),
		priors:     make(map[string]PriorCtor),
		objectives: make(map[string]compiler.BuildFunc),
	}

	r.transforms["identity"] = func(args []float64) (transform.Transform, error) {
		if len(args) != 0 {
			return nil, fmt.Errorf("identity takes no arguments")
		}
		return transform.Identity, nil
	}
	r.transforms["exp"] = func(args []float64) (transform.Transform, error) {
		if len(args) != 0 {
			return nil, fmt.Errorf("exp takes no arguments")
		}
		return transform.Exp{}, nil
	}
	r.transforms["softplus"] = func(args []float64) (transform.Transform, error) {
		if len(args) != 0 {
			return nil, fmt.Errorf("softplus takes no arguments")
		}
		return transform.Softplus{}, nil
	}
	r.transforms["logistic"] = func(args []float64) (transform.Transform, error) {
		switch len(args) {
		case 0:
			return transform.Logistic{Lo: 0, Hi: 1}, nil
		case 2:
			if args[1] <= args[0] {
				return nil, fmt.Errorf("logistic bounds must satisfy lo < hi, got (%v, %v)",
					args[0], args[1])
			}
			return transform.Logistic{Lo: args[0], Hi: args[1]}, nil
		}
		return nil, fmt.Errorf("logistic takes zero or two arguments, got %d", len(args))
	}

	r.priors["normal"] = func(args []float64) (prior.Prior, error) {
		mean, sd, err := twoArgs("normal", args, 0, 1)
		if err != nil {
			return nil, err
		}
		if sd <= 0 {
			return nil, fmt.Errorf("normal stddev must be positive, got %v", sd)
		}
		return prior.Normal{Mean: mean, Stddev: sd}, nil
	}
	r.priors["lognormal"] = func(args []float64) (prior.Prior, error) {
		mu, sigma, err := twoArgs("lognormal", args, 0, 1)
		if err != nil {
			return nil, err
		}
		if sigma <= 0 {
			return nil, fmt.Errorf("lognormal sigma must be positive, got %v", sigma)
		}
		return prior.LogNormal{Mu: mu, Sigma: sigma}, nil
	}

	r.objectives["gaussian_loglik"] = gaussianLoglik
	r.objectives["sum_squares"] = sumSquares

	return r
}

// Transform resolves a spec string like "exp" or "logistic(-1, 1)".
func (r *Registry) Transform(spec string) (transform.Transform, error) {
	name, args, err := parseSpec(spec)
	if err != nil {
		return nil, err
	}
	ctor, ok := r.transforms[name]
	if !ok {
		return nil, fmt.Errorf("unknown transform %q", name)
	}
	return ctor(args)
}

// Prior resolves a spec string like "normal(0, 1)".
func (r *Registry) Prior(spec string) (prior.Prior, error) {
	name, args, err := parseSpec(spec)
	if err != nil {
		return nil, err
	}
	ctor, ok := r.priors[name]
	if !ok {
		return nil, fmt.Errorf("unknown prior %q", name)
	}
	return ctor(args)
}

// Objective resolves a built-in objective builder by name.
func (r *Registry) Objective(name string) (compiler.BuildFunc, error) {
	build, ok := r.objectives[name]
	if !ok {
		return nil, fmt.Errorf("unknown objective %q", name)
	}
	return build, nil
}

// RegisterObjective adds a custom objective builder under the given name.
func (r *Registry) RegisterObjective(name string, build compiler.BuildFunc) error {
	if _, exists := r.objectives[name]; exists {
		return fmt.Errorf("objective %q already registered", name)
	}
	r.objectives[name] = build
	return nil
}

// parseSpec splits "name(a, b)" into its name and numeric arguments; a
// bare "name" has no arguments.
func parseSpec(spec string) (string, []float64, error) {
	spec = strings.TrimSpace(spec)
	open := strings.IndexByte(spec, '(')
	if open < 0 {
		if spec == "" {
			return "", nil, fmt.Errorf("empty spec")
		}
		return spec, nil, nil
	}
	if !strings.HasSuffix(spec, ")") {
		return "", nil, fmt.Errorf("malformed spec %q: missing closing parenthesis", spec)
	}
	name := strings.TrimSpace(spec[:open])
	if name == "" {
		return "", nil, fmt.Errorf("malformed spec %q: missing name", spec)
	}
	inner := strings.TrimSpace(spec[open+1 : len(spec)-1])
	if inner == "" {
		return name, nil, nil
	}
	parts := strings.Split(inner, ",")
	args := make([]float64, len(parts))
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return "", nil, fmt.Errorf("malformed spec %q: argument %d is not a number", spec, i+1)
		}
		args[i] = v
	}
	return name, args, nil
}

func twoArgs(name string, args []float64, d1, d2 float64) (float64, float64, error) {
	switch len(args) {
	case 0:
		return d1, d2, nil
	case 2:
		return args[0], args[1], nil
	}
	return 0, 0, fmt.Errorf("%s takes zero or two arguments, got %d", name, len(args))
}

// gaussianLoglik is the iid Gaussian likelihood of data "y" under a scalar
// param "mean" and a scalar positive param "variance":
//
//	-n/2 log(2 pi) - n/2 log(variance) - sum((y-mean)^2) / (2 variance)
func gaussianLoglik(g *exprgraph.Graph, root *tree.Container) (*exprgraph.Node, error) {
	mean, err := paramNamed(root, "mean")
	if err != nil {
		return nil, err
	}
	variance, err := paramNamed(root, "variance")
	if err != nil {
		return nil, err
	}
	if variance.Size() != 1 || mean.Size() != 1 {
		return nil, fmt.Errorf("gaussian_loglik: mean and variance must be scalar-sized")
	}
	y, err := dataNamed(root, "y")
	if err != nil {
		return nil, err
	}

	n := float64(y.Shape().Size())
	resid := g.Sum(g.Square(g.Sub(y.Live(), mean.Live())))
	fit := g.Div(resid, g.Mul(g.Scalar(2), variance.Live()))
	logdet := g.Mul(g.Scalar(n/2), g.Log(variance.Live()))
	constTerm := g.Scalar(n / 2 * math.Log(2*math.Pi))
	return g.Neg(g.Add(constTerm, g.Add(logdet, fit))), nil
}

// paramNamed resolves a root-level param first, then falls back to a
// uniquely named leaf anywhere in the tree, so the built-ins work with
// nested container layouts.
func paramNamed(root *tree.Container, name string) (*tree.Param, error) {
	if p, err := tree.ParamAt(root, name); err == nil {
		return p, nil
	}
	var found *tree.Param
	for _, p := range tree.SortedParams(root) {
		if p.Name() != name {
			continue
		}
		if found != nil {
			return nil, fmt.Errorf("param %q is ambiguous: declared at %q and %q",
				name, tree.Path(found), tree.Path(p))
		}
		found = p
	}
	if found == nil {
		return nil, fmt.Errorf("no param named %q in the tree", name)
	}
	return found, nil
}

// dataNamed is paramNamed for data slots.
func dataNamed(root *tree.Container, name string) (*tree.DataSlot, error) {
	if d, err := tree.DataAt(root, name); err == nil {
		return d, nil
	}
	var found *tree.DataSlot
	for _, d := range tree.DataSlots(root) {
		if d.Name() != name {
			continue
		}
		if found != nil {
			return nil, fmt.Errorf("data slot %q is ambiguous: declared at %q and %q",
				name, tree.Path(found), tree.Path(d))
		}
		found = d
	}
	if found == nil {
		return nil, fmt.Errorf("no data slot named %q in the tree", name)
	}
	return found, nil
}

// sumSquares is the negated sum of squares of every param's constrained
// value. It is mostly useful for smoke tests and examples.
func sumSquares(g *exprgraph.Graph, root *tree.Container) (*exprgraph.Node, error) {
	total := g.Scalar(0)
	for _, p := range tree.SortedParams(root) {
		total = g.Add(total, g.Sum(g.Square(p.Live())))
	}
	return g.Neg(total), nil
}
