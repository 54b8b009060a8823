package codegen

import (
	"testing"

	"github.com/Algy/plaidml/pkg/affine"
	"github.com/Algy/plaidml/pkg/stripe"
)

func blockWithInRef(name string, dir stripe.Dir) *stripe.Block {
	b := stripe.NewBlock("main")
	b.Refs = append(b.Refs, stripe.Refinement{
		Dir:           dir,
		From:          "OUTER",
		Into:          name,
		Access:        []affine.Affine{affine.Zero(), affine.Zero()},
		InteriorShape: stripe.SimpleShape(stripe.Float32, []int64{4, 4}),
		Location:      stripe.NewLocation("MEM"),
	})
	return b
}

func TestApplyCacheOnInRefinement(t *testing.T) {
	b := blockWithInRef("V", stripe.DirIn)
	memLoc := stripe.NewLocation("CACHE")
	xferLoc := stripe.NewLocation("DMA")

	if err := ApplyCache(b, "V", memLoc, xferLoc); err != nil {
		t.Fatalf("ApplyCache: %v", err)
	}

	if _, ok := b.RefByInto("V_raw"); !ok {
		t.Fatalf("expected renamed refinement V_raw")
	}
	vIdx, ok := b.RefByInto("V")
	if !ok {
		t.Fatalf("expected fresh refinement V at mem_loc")
	}
	if b.Refs[vIdx].Location.Name != "CACHE" {
		t.Fatalf("V.location = %s, want CACHE", b.Refs[vIdx].Location.Name)
	}
	if b.Refs[vIdx].Dir != stripe.DirNone {
		t.Fatalf("V.dir = %s, want None", b.Refs[vIdx].Dir)
	}

	if len(b.Stmts) != 1 {
		t.Fatalf("expected exactly one cache_load block prepended, got %d statements", len(b.Stmts))
	}
	loadBlock, ok := b.Stmts[0].(*stripe.Block)
	if !ok {
		t.Fatalf("expected the sole statement to be a block")
	}
	if !loadBlock.HasTags(stripe.NewTags("cache", "cache_load")) {
		t.Fatalf("expected cache_load tags on %+v", loadBlock.Tags)
	}
	if loadBlock.HasTag("cache_store") {
		t.Fatalf("did not expect a cache_store tag on an In refinement's cache pass")
	}
}

func TestApplyCacheOnOutRefinement(t *testing.T) {
	b := blockWithInRef("V", stripe.DirOut)
	if err := ApplyCache(b, "V", stripe.NewLocation("CACHE"), stripe.NewLocation("DMA")); err != nil {
		t.Fatalf("ApplyCache: %v", err)
	}
	if len(b.Stmts) != 1 {
		t.Fatalf("expected exactly one cache_store block appended, got %d", len(b.Stmts))
	}
	storeBlock := b.Stmts[0].(*stripe.Block)
	if !storeBlock.HasTags(stripe.NewTags("cache", "cache_store")) {
		t.Fatalf("expected cache_store tags")
	}
}

func TestApplyCacheOnInOutRefinementAddsBothTransfers(t *testing.T) {
	b := blockWithInRef("V", stripe.DirInOut)
	if err := ApplyCache(b, "V", stripe.NewLocation("CACHE"), stripe.NewLocation("DMA")); err != nil {
		t.Fatalf("ApplyCache: %v", err)
	}
	if len(b.Stmts) != 2 {
		t.Fatalf("expected a cache_load and a cache_store, got %d statements", len(b.Stmts))
	}
	load := b.Stmts[0].(*stripe.Block)
	store := b.Stmts[1].(*stripe.Block)
	if !load.HasTag("cache_load") || !store.HasTag("cache_store") {
		t.Fatalf("expected load first then store")
	}
}

func TestApplyCacheUnknownRefFails(t *testing.T) {
	b := stripe.NewBlock("main")
	if err := ApplyCache(b, "missing", stripe.NewLocation("CACHE"), stripe.NewLocation("DMA")); err == nil {
		t.Fatalf("expected an error for an unknown var_name")
	}
}

func TestApplyCacheTwiceGetsFreshRawName(t *testing.T) {
	b := blockWithInRef("V", stripe.DirIn)
	memLoc := stripe.NewLocation("CACHE")
	xferLoc := stripe.NewLocation("DMA")
	if err := ApplyCache(b, "V", memLoc, xferLoc); err != nil {
		t.Fatalf("first ApplyCache: %v", err)
	}
	if err := ApplyCache(b, "V", memLoc, xferLoc); err != nil {
		t.Fatalf("second ApplyCache: %v", err)
	}
	if _, ok := b.RefByInto("V_raw"); !ok {
		t.Fatalf("expected V_raw to still exist")
	}
	if _, ok := b.RefByInto("V_raw_2"); !ok {
		t.Fatalf("expected a fresh V_raw_2 name on re-cache")
	}
}

func TestCacheBlockAppliesToMatchingDirsOnly(t *testing.T) {
	b := stripe.NewBlock("main")
	b.Refs = append(b.Refs,
		stripe.Refinement{Dir: stripe.DirIn, From: "A", Into: "a", Access: []affine.Affine{affine.Zero()}, InteriorShape: stripe.SimpleShape(stripe.Float32, []int64{4}), Location: stripe.NewLocation("MEM")},
		stripe.Refinement{Dir: stripe.DirOut, From: "B", Into: "b", Access: []affine.Affine{affine.Zero()}, InteriorShape: stripe.SimpleShape(stripe.Float32, []int64{4}), Location: stripe.NewLocation("MEM")},
	)
	if err := CacheBlock(b, []stripe.Dir{stripe.DirIn}, stripe.NewLocation("CACHE"), stripe.NewLocation("DMA")); err != nil {
		t.Fatalf("CacheBlock: %v", err)
	}
	if _, ok := b.RefByInto("a_raw"); !ok {
		t.Fatalf("expected 'a' to be cached")
	}
	if _, ok := b.RefByInto("b_raw"); ok {
		t.Fatalf("did not expect 'b' to be cached")
	}
}
