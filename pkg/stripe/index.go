package stripe

import "github.com/Algy/plaidml/pkg/affine"

// Index is one axis of a Block's iteration space. If Affine is a pure
// constant, the index is fixed at that single value; otherwise it ranges
// over [0, Range).
type Index struct {
	Taggable
	Name   string
	Range  uint64
	Affine affine.Affine
}

// NewIndex constructs a ranged Index with the identity affine (i.e. the
// index simply names itself).
func NewIndex(name string, rangeVal uint64) Index {
	return Index{Name: name, Range: rangeVal, Affine: affine.New(name, 1)}
}

// IsFixed reports whether this index is pinned to a single constant value
// rather than ranging over [0, Range).
func (i Index) IsFixed() bool {
	return i.Affine.IsConstant()
}

// Equal reports whether two indices are structurally identical (tags are
// not compared, matching the original implementation's operator== which
// only inspects name/range/affine).
func (i Index) Equal(o Index) bool {
	return i.Name == o.Name && i.Range == o.Range && i.Affine.Equal(o.Affine)
}
