package stripe

import (
	"testing"

	"github.com/Algy/plaidml/pkg/affine"
)

func simpleShape() TensorShape {
	return SimpleShape(Float32, []int64{4, 4})
}

func TestUniqueRefName(t *testing.T) {
	b := NewBlock("main")
	b.Refs = append(b.Refs, Refinement{Into: "x"})
	got := b.UniqueRefName("x")
	if got != "x_2" {
		t.Fatalf("expected x_2, got %s", got)
	}
	b.Refs = append(b.Refs, Refinement{Into: "x_2"})
	got = b.UniqueRefName("x")
	if got != "x_3" {
		t.Fatalf("expected x_3, got %s", got)
	}
	if b.UniqueRefName("y") != "y" {
		t.Fatalf("expected fresh name y to pass through unchanged")
	}
}

func TestRefByIntoAndFrom(t *testing.T) {
	b := NewBlock("main")
	b.Refs = append(b.Refs,
		Refinement{Dir: DirIn, From: "A", Into: "a"},
		Refinement{Dir: DirOut, From: "B", Into: "b"},
	)
	if i, ok := b.RefByInto("a"); !ok || i != 0 {
		t.Fatalf("RefByInto(a) = %d, %v", i, ok)
	}
	if i, ok := b.RefByFrom("B"); !ok || i != 1 {
		t.Fatalf("RefByFrom(B) = %d, %v", i, ok)
	}
	if _, ok := b.RefByInto("missing"); ok {
		t.Fatalf("expected no match for missing ref")
	}
}

func TestRefInsRefOuts(t *testing.T) {
	b := NewBlock("main")
	b.Refs = append(b.Refs,
		Refinement{Dir: DirIn, From: "A", Into: "a"},
		Refinement{Dir: DirOut, From: "B", Into: "b"},
		Refinement{Dir: DirInOut, From: "C", Into: "c"},
		Refinement{Dir: DirNone, Into: "tmp"},
	)
	ins := b.RefIns()
	outs := b.RefOuts()
	if len(ins) != 2 {
		t.Fatalf("expected 2 ins, got %d", len(ins))
	}
	if len(outs) != 2 {
		t.Fatalf("expected 2 outs, got %d", len(outs))
	}
}

func TestBlockBufferReadsWrites(t *testing.T) {
	b := NewBlock("main")
	b.Refs = append(b.Refs,
		Refinement{Dir: DirIn, From: "A", Into: "a"},
		Refinement{Dir: DirOut, From: "B", Into: "b"},
		Refinement{Dir: DirInOut, From: "C", Into: "c"},
	)
	reads := b.BufferReads()
	writes := b.BufferWrites()
	if len(reads) != 2 || reads[0] != "A" || reads[1] != "C" {
		t.Fatalf("unexpected reads: %v", reads)
	}
	if len(writes) != 2 || writes[0] != "B" || writes[1] != "C" {
		t.Fatalf("unexpected writes: %v", writes)
	}
}

func TestIsLeaf(t *testing.T) {
	b := NewBlock("main")
	b.AddStmt(NewLoad("A", "$x"))
	if !b.IsLeaf() {
		t.Fatalf("expected leaf block")
	}
	inner := NewBlock("inner")
	b.AddStmt(inner)
	if b.IsLeaf() {
		t.Fatalf("expected non-leaf block once a nested Block statement is present")
	}
}

func TestAddStmtAssignsSequentialIndices(t *testing.T) {
	b := NewBlock("main")
	i0 := b.AddStmt(NewLoad("A", "$x"))
	i1 := b.AddStmt(NewStore("$x", "B"))
	if i0 != 0 || i1 != 1 {
		t.Fatalf("expected sequential indices 0,1 got %d,%d", i0, i1)
	}
	if len(b.Stmts) != 2 {
		t.Fatalf("expected 2 stmts, got %d", len(b.Stmts))
	}
}

func TestIdxByName(t *testing.T) {
	b := NewBlock("main")
	b.Idxs = append(b.Idxs, NewIndex("i", 4), NewIndex("j", 8))
	idx, ok := b.IdxByName("j")
	if !ok || idx.Range != 8 {
		t.Fatalf("IdxByName(j) = %v, %v", idx, ok)
	}
	if _, ok := b.IdxByName("k"); ok {
		t.Fatalf("expected no match for missing index")
	}
}

func TestBlockStringDoesNotPanic(t *testing.T) {
	b := NewBlock("main")
	b.Idxs = append(b.Idxs, NewIndex("i", 4))
	b.Constraints = append(b.Constraints, affine.New("i", 1))
	b.Refs = append(b.Refs, Refinement{
		Dir: DirIn, From: "A", Into: "a",
		Access:        []affine.Affine{affine.New("i", 1)},
		InteriorShape: simpleShape(),
	})
	b.AddStmt(NewLoad("a", "$x"))
	inner := NewBlock("inner")
	inner.AddStmt(NewIntConstant("$c", 1))
	b.AddStmt(inner)

	s := b.String()
	if s == "" {
		t.Fatalf("expected non-empty string rendering")
	}
}
