package stripe

import (
	"fmt"

	"github.com/Algy/plaidml/pkg/affine"
)

// Dir describes how a Refinement relates to its enclosing block.
type Dir int

// The four refinement directions. Values are chosen so that UnionDir can be
// implemented as a bitwise OR, matching the original RefDir encoding.
const (
	DirNone  Dir = 0
	DirIn    Dir = 1
	DirOut   Dir = 2
	DirInOut Dir = DirIn | DirOut
)

func (d Dir) String() string {
	switch d {
	case DirNone:
		return "None"
	case DirIn:
		return "In"
	case DirOut:
		return "Out"
	case DirInOut:
		return "InOut"
	default:
		return fmt.Sprintf("Dir(%d)", int(d))
	}
}

// IsReadDir reports whether values reach the refinement's owner by reading
// through it, i.e. dir is In or InOut.
func IsReadDir(d Dir) bool { return d&DirIn != 0 }

// IsWriteDir reports whether values leave the refinement's owner by writing
// through it, i.e. dir is Out or InOut.
func IsWriteDir(d Dir) bool { return d&DirOut != 0 }

// UnionDir combines two directions, e.g. when a refinement is read in one
// sub-block and written in another.
func UnionDir(a, b Dir) Dir { return a | b }

// BankDimension names which dimension of a refinement's shape is banked
// across parallel memories, when the refinement is banked at all.
type BankDimension struct {
	DimPos uint
}

// Refinement is a tensor view: either a fresh allocation (Dir == DirNone) or
// a borrowed sub-tile of a refinement in the immediately enclosing block
// (identified by From).
type Refinement struct {
	Taggable
	Dir           Dir
	From          string
	Into          string
	Access        []affine.Affine
	InteriorShape TensorShape
	AggOp         string
	Location      Location
	IsConst       bool
	Offset        uint64
	BankDim       *BankDimension
	CacheUnit     *affine.Affine
}

// Clone returns a deep copy of the refinement (Access slice and BankDim /
// CacheUnit pointers are duplicated so mutating the clone never affects the
// original).
func (r Refinement) Clone() Refinement {
	c := r
	c.Access = append([]affine.Affine(nil), r.Access...)
	c.Tags = r.Tags.Clone()
	if r.BankDim != nil {
		bd := *r.BankDim
		c.BankDim = &bd
	}
	if r.CacheUnit != nil {
		cu := *r.CacheUnit
		c.CacheUnit = &cu
	}
	return c
}

func (r Refinement) String() string {
	dirPart := ""
	if r.Dir != DirNone {
		dirPart = fmt.Sprintf("%s from %s ", r.Dir, r.From)
	}
	return fmt.Sprintf("%s%s@%s%s", dirPart, r.Into, r.Location, r.InteriorShape)
}
