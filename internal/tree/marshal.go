package tree

// FreeState traverses c in canonical order and returns the flat free-state
// vector: for each free Param, the inverse transform of its current
// constrained value, flattened and concatenated. This is the exact vector
// an external optimizer should start from.
func FreeState(c *Container) ([]float64, error) {
	free := FreeParams(c)
	total := 0
	for _, p := range free {
		total += p.Size()
	}
	if total == 0 {
		return nil, &StructuralMismatch{Reason: "tree has no free parameters"}
	}
	out := make([]float64, 0, total)
	for _, p := range free {
		out = append(out, p.Transform().Backward(p.value)...)
	}
	return out, nil
}

// SetState is the inverse of FreeState: it slices flat by the canonical
// offsets, applies each leaf's forward transform, and assigns the result
// into the leaf's raw value. A LengthMismatch is returned when the vector
// length disagrees with the tree's total free dimension; no leaf is
// modified in that case.
func SetState(c *Container, flat []float64) error {
	free := FreeParams(c)
	total := 0
	for _, p := range free {
		total += p.Size()
	}
	if len(flat) != total {
		return &LengthMismatch{Want: total, Got: len(flat)}
	}
	offset := 0
	for _, p := range free {
		size := p.Size()
		constrained := p.Transform().Forward(flat[offset : offset+size])
		copy(p.value, constrained)
		offset += size
	}
	return nil
}
