package stripe

import (
	"fmt"

	"github.com/Algy/plaidml/pkg/affine"
)

// Location identifies a physical address space (e.g. main memory, a
// scratchpad, a DMA engine), optionally parameterized by an Affine "unit"
// expression that distinguishes, for example, which bank or processor tile
// a location refers to.
type Location struct {
	Name string
	Unit affine.Affine
}

// NewLocation constructs a Location with a zero (constant 0) unit.
func NewLocation(name string) Location {
	return Location{Name: name, Unit: affine.Zero()}
}

// Add returns a copy of l with other's unit added to its own. Used when
// composing locations across nested refinements that borrow from an outer
// one (AliasMap construction, §4.2).
func (l Location) Add(other affine.Affine) Location {
	return Location{Name: l.Name, Unit: l.Unit.Add(other)}
}

// Equal reports whether two locations are structurally identical.
func (l Location) Equal(o Location) bool {
	return l.Name == o.Name && l.Unit.Equal(o.Unit)
}

func (l Location) String() string {
	if l.Unit.IsConstant() && l.Unit.Constant() == 0 {
		return l.Name
	}
	return fmt.Sprintf("%s[%s]", l.Name, l.Unit.String())
}
