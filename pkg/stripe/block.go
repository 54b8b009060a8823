package stripe

import (
	"fmt"

	"github.com/Algy/plaidml/pkg/affine"
)

// Block is a named scope carrying an iteration space (Idxs/Constraints), a
// set of tensor views into its enclosing scope (Refs), and an ordered list
// of statements, one of which may itself be a nested Block. Block satisfies
// Statement so that it can appear inside another Block's Stmts list.
type Block struct {
	StmtBase
	Name        string
	Comments    string
	Idxs        []Index
	Constraints []affine.Affine
	Refs        []Refinement
	Stmts       []Statement
	Location    Location
}

// NewBlock constructs an empty, unlocated Block with the given name.
func NewBlock(name string) *Block {
	return &Block{Name: name}
}

// Kind implements Statement.
func (b *Block) Kind() StmtKind { return BlockKind }

// BufferReads implements Statement: the outer-visible names of every
// refinement this block reads through (dir In or InOut).
func (b *Block) BufferReads() []string {
	var out []string
	for _, r := range b.Refs {
		if IsReadDir(r.Dir) {
			out = append(out, r.From)
		}
	}
	return out
}

// BufferWrites implements Statement: the outer-visible names of every
// refinement this block writes through (dir Out or InOut).
func (b *Block) BufferWrites() []string {
	var out []string
	for _, r := range b.Refs {
		if IsWriteDir(r.Dir) {
			out = append(out, r.From)
		}
	}
	return out
}

// ScalarUses implements Statement. Blocks communicate only through
// refinements, never through the enclosing scope's scalars.
func (b *Block) ScalarUses() []string { return nil }

// ScalarDefs implements Statement.
func (b *Block) ScalarDefs() []string { return nil }

// Base implements Statement.
func (b *Block) Base() *StmtBase { return &b.StmtBase }

// IsLeaf reports whether this block contains no nested Block statement.
func (b *Block) IsLeaf() bool {
	for _, s := range b.Stmts {
		if s.Kind() == BlockKind {
			return false
		}
	}
	return true
}

// RefByInto finds the refinement with the given Into name, returning its
// index and true, or (-1, false) if none exists. Ref names are unique
// within a block by construction (see UniqueRefName), so at most one match
// can exist.
func (b *Block) RefByInto(into string) (int, bool) {
	for i, r := range b.Refs {
		if r.Into == into {
			return i, true
		}
	}
	return -1, false
}

// RefByFrom finds the first refinement borrowing from the given outer name.
func (b *Block) RefByFrom(from string) (int, bool) {
	for i, r := range b.Refs {
		if r.Dir != DirNone && r.From == from {
			return i, true
		}
	}
	return -1, false
}

// RefIns returns pointers to every refinement with dir In or InOut.
func (b *Block) RefIns() []*Refinement {
	var out []*Refinement
	for i := range b.Refs {
		if IsReadDir(b.Refs[i].Dir) {
			out = append(out, &b.Refs[i])
		}
	}
	return out
}

// RefOuts returns pointers to every refinement with dir Out or InOut.
func (b *Block) RefOuts() []*Refinement {
	var out []*Refinement
	for i := range b.Refs {
		if IsWriteDir(b.Refs[i].Dir) {
			out = append(out, &b.Refs[i])
		}
	}
	return out
}

// UniqueRefName returns the first name of the form "into" or "into_k" (k >=
// 2) that does not collide with an existing refinement's Into.
func (b *Block) UniqueRefName(into string) string {
	if _, exists := b.RefByInto(into); !exists {
		return into
	}
	for k := 2; ; k++ {
		candidate := fmt.Sprintf("%s_%d", into, k)
		if _, exists := b.RefByInto(candidate); !exists {
			return candidate
		}
	}
}

// IdxByName returns the index with the given name, or (nil, false).
func (b *Block) IdxByName(name string) (*Index, bool) {
	for i := range b.Idxs {
		if b.Idxs[i].Name == name {
			return &b.Idxs[i], true
		}
	}
	return nil, false
}

// AddStmt appends a statement to the block's statement list, returning its
// index.
func (b *Block) AddStmt(s Statement) int {
	b.Stmts = append(b.Stmts, s)
	return len(b.Stmts) - 1
}
