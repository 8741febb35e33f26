package report

// Primitives returns the set of module types the builder must not expand:
// exactly those marked blackbox or whitebox. Cell types that the report
// never defines are handled by the builder, not here.
func (r *Report) Primitives() map[string]bool {
	prims := make(map[string]bool)
	if r == nil {
		return prims
	}
	for name, m := range r.Modules {
		if m.IsPrimitive() {
			prims[name] = true
		}
	}
	return prims
}
