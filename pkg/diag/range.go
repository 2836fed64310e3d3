package diag

// Ranger is implemented by template nodes, placeholders and parse errors that
// point into a template source.
type Ranger interface {
	Range() Ranging
}

// Ranging is a span [From, To) of byte offsets into a template source. Nodes
// embed it, which gives them a Range method; a field named Range would not.
type Ranging struct {
	From int
	To   int
}

func (r Ranging) Range() Ranging { return r }

// PointRanging returns an empty span at offset p, used for errors that point
// at a single position such as the end of the source.
func PointRanging(p int) Ranging {
	return Ranging{p, p}
}

// MixedRanging spans from the start of a to the end of b, such as a region
// from its opening marker to its closing one.
func MixedRanging(a, b Ranger) Ranging {
	return Ranging{a.Range().From, b.Range().To}
}
