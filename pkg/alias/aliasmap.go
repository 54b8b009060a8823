// Package alias computes, for each refinement visible within a block,
// which physical buffer it ultimately names and what region of that
// buffer it can touch — the information every downstream pass (cache,
// schedule, and the peripheral passes of §6) needs before it may safely
// rewrite a refinement or reorder statements around it.
package alias

import (
	"fmt"
	"sort"

	"github.com/Algy/plaidml/pkg/affine"
	"github.com/Algy/plaidml/pkg/stripe"
)

// Type classifies the relationship between two AliasInfos describing
// refinements that may or may not name overlapping memory.
type Type int

// The three alias relationships a Compare can report.
const (
	// None means the two refinements can never touch the same byte.
	None Type = iota
	// Partial means the refinements may overlap, conservatively.
	Partial
	// Exact means the refinements always name identical memory.
	Exact
)

func (t Type) String() string {
	switch t {
	case None:
		return "None"
	case Partial:
		return "Partial"
	case Exact:
		return "Exact"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// Extent is the inclusive range of offsets, within a single access
// dimension, that a refinement can touch across every value its
// enclosing indices may take.
type Extent struct {
	Min int64
	Max int64
}

func (e Extent) String() string { return fmt.Sprintf("(%d, %d)", e.Min, e.Max) }

// Info is everything the alias map knows about one name visible inside a
// particular block: which root allocation it traces back to, the access
// expression relating its own index space to that root, and the extents
// that access expression can reach.
type Info struct {
	BaseBlock *stripe.Block
	BaseRef   *stripe.Refinement
	BaseName  string
	Access    []affine.Affine
	Extents   []Extent
	Location  stripe.Location
	Shape     stripe.TensorShape
}

// IsBanked reports whether the refinement this Info traces to is split
// across parallel banks along one dimension.
func (info Info) IsBanked() bool {
	return info.BaseRef != nil && info.BaseRef.BankDim != nil
}

func (info Info) String() string {
	return fmt.Sprintf("(%s, %s, %v, %s)", info.BaseName, info.Location, info.Access, info.Shape)
}

// CheckOverlap reports whether two same-rank extent lists have a nonempty
// intersection in every dimension. It panics if the ranks differ, which
// indicates a caller compared refinements of incompatible shape.
func CheckOverlap(a, b []Extent) bool {
	if len(a) != len(b) {
		panic("alias: incompatible extents")
	}
	for i := range a {
		if !(b[i].Min <= a[i].Max && a[i].Min <= b[i].Max) {
			return false
		}
	}
	return true
}

// Compare classifies the relationship between two AliasInfos. Refinements
// tracing back to different root allocations never alias. Refinements of
// the same shape that are pinned to different constant banks never alias.
// Identical access expressions alias exactly. Otherwise, the extents are
// checked for overlap; a conservative Partial is returned whenever a
// precise answer would require case splitting on index values this
// function does not attempt.
func Compare(a, b Info) Type {
	if a.BaseName != b.BaseName {
		return None
	}
	if a.Shape.Equal(b.Shape) {
		if a.Location.Unit.IsConstant() && b.Location.Unit.IsConstant() && !a.Location.Equal(b.Location) {
			return None
		}
		if accessEqual(a.Access, b.Access) {
			return Exact
		}
		if !CheckOverlap(a.Extents, b.Extents) {
			return None
		}
	}
	return Partial
}

func accessEqual(a, b []affine.Affine) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// Map is, for one block, the mapping from every refinement name visible
// in that block (i.e. every Into name in block.Refs) to the Info
// describing the root buffer it reaches and the region of that buffer it
// names. A Map is built top-down from the root block downward; each
// level's Map is derived from its immediate parent's.
type Map struct {
	depth int
	info  map[string]Info
}

// Root constructs the alias map for the top-level (program) scope, which
// has no refinements and no outer context.
func Root() Map {
	return Map{depth: 0, info: map[string]Info{}}
}

// At looks up the Info for a name visible in this map's block, i.e. some
// ref.Into value. It panics if name was never registered, mirroring the
// original implementation's fail-fast accessor.
func (m Map) At(name string) Info {
	info, ok := m.info[name]
	if !ok {
		panic(fmt.Sprintf("alias: no such name %q", name))
	}
	return info
}

// Lookup is the non-panicking form of At.
func (m Map) Lookup(name string) (Info, bool) {
	info, ok := m.info[name]
	return info, ok
}

// New builds the alias map for block's interior scope, given the alias
// map of its immediately enclosing block. Every refinement of block
// contributes one entry: a borrowing refinement (Dir != DirNone) inherits
// its base identity from outer, offsetting location and access by the
// amounts this refinement's access expressions add at this nesting depth;
// a fresh allocation (Dir == DirNone) starts a new base identity rooted at
// this refinement.
//
// Variable names appearing in block's own access expressions are
// uniquified with a depth-specific prefix before being folded into the
// accumulated access, so that same-named indices at different nesting
// depths never alias by name collision once lifted into a shared
// coordinate system.
func New(outer Map, block *stripe.Block) Map {
	depth := outer.depth + 1
	prefix := fmt.Sprintf("d%d:", depth)
	info := make(map[string]Info, len(block.Refs))

	minIdx := map[string]int64{}
	maxIdx := map[string]int64{}
	for _, idx := range block.Idxs {
		if idx.Affine.IsConstant() {
			c := idx.Affine.Constant()
			minIdx[idx.Name] = c
			maxIdx[idx.Name] = c
		} else {
			minIdx[idx.Name] = 0
			maxIdx[idx.Name] = int64(idx.Range) - 1
		}
	}

	for i := range block.Refs {
		ref := &block.Refs[i]
		var cur Info
		if ref.Dir != stripe.DirNone {
			base, ok := outer.info[ref.From]
			if !ok {
				panic(fmt.Sprintf("alias: invalid ref.from during aliasing computation: %q (ref: %s)", ref.From, ref))
			}
			cur = Info{
				BaseBlock: base.BaseBlock,
				BaseRef:   base.BaseRef,
				BaseName:  base.BaseName,
				Access:    append([]affine.Affine(nil), base.Access...),
				Location:  base.Location.Add(ref.Location.Unit),
			}
		} else {
			cur = Info{
				BaseBlock: block,
				BaseRef:   ref,
				BaseName:  prefix + ref.Into,
				Access:    make([]affine.Affine, len(ref.Access)),
				Location:  ref.Location,
			}
		}
		if len(cur.Access) != len(ref.Access) {
			panic(fmt.Sprintf("alias: mismatched access dimensions on refinement: %s %s", cur.BaseName, ref.Into))
		}

		cur.Extents = make([]Extent, len(ref.Access))
		for d := range ref.Access {
			cur.Access[d] = cur.Access[d].Add(ref.Access[d].Uniquify(prefix))
			minExtent := ref.Access[d].Eval(minIdx)
			maxExtent := ref.Access[d].Eval(maxIdx) + ref.InteriorShape.Dims[d].Size - 1
			cur.Extents[d] = Extent{Min: minExtent, Max: maxExtent}
		}
		cur.Shape = ref.InteriorShape
		info[ref.Into] = cur
	}
	return Map{depth: depth, info: info}
}

// RefUseCounts returns, for every buffer name read or written by any
// direct statement of block, the number of statements touching it. A
// statement that both reads and writes the same name counts once.
func RefUseCounts(block *stripe.Block) map[string]int {
	counts := map[string]int{}
	for _, stmt := range block.Stmts {
		touched := map[string]struct{}{}
		for _, name := range stmt.BufferReads() {
			touched[name] = struct{}{}
		}
		for _, name := range stmt.BufferWrites() {
			touched[name] = struct{}{}
		}
		names := make([]string, 0, len(touched))
		for name := range touched {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			counts[name]++
		}
	}
	return counts
}

// VisitFunc is invoked by RunOnBlocks for every block (at any depth) that
// carries every tag in reqs, along with the alias map valid inside that
// block.
type VisitFunc func(m Map, block *stripe.Block)

// RunOnBlocks walks root's statement tree depth-first, building the
// alias map incrementally, and invokes fn on every nested Block whose
// tags are a superset of reqs. Descent stops at the first matching block
// along each path: fn is responsible for recursing further if it needs
// to inspect blocks nested inside a match.
func RunOnBlocks(root *stripe.Block, reqs stripe.Tags, fn VisitFunc) {
	rootMap := New(Root(), root)
	runOnBlocksRecurse(rootMap, root, reqs, fn)
}

func runOnBlocksRecurse(m Map, block *stripe.Block, reqs stripe.Tags, fn VisitFunc) {
	if block.HasTags(reqs) {
		fn(m, block)
		return
	}
	for _, stmt := range block.Stmts {
		inner, ok := stmt.(*stripe.Block)
		if !ok {
			continue
		}
		innerMap := New(m, inner)
		runOnBlocksRecurse(innerMap, inner, reqs, fn)
	}
}
