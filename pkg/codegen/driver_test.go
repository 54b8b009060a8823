package codegen

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Algy/plaidml/pkg/affine"
	"github.com/Algy/plaidml/pkg/stripe"
)

func TestOptimizeDispatchesCacheAndSchedule(t *testing.T) {
	main := buildMainWithRefs()
	child := stripe.NewBlock("child")
	child.SetTag("main")
	child.Refs = append(child.Refs,
		stripe.Refinement{Dir: stripe.DirIn, From: "i1", Into: "i1", Access: []affine.Affine{affine.Zero()}, InteriorShape: ioShape(), Location: stripe.NewLocation("MEM")},
		stripe.Refinement{Dir: stripe.DirOut, From: "o1", Into: "o1", Access: []affine.Affine{affine.Zero()}, InteriorShape: ioShape(), Location: stripe.NewLocation("MEM")},
	)
	main.AddStmt(child)

	cfg := Config{
		ScheduleConfig{
			Reqs:      stripe.NewTags("main"),
			MemLoc:    stripe.NewLocation("CACHE"),
			MemKiB:    1024,
			Alignment: 16,
			XferLoc:   stripe.NewLocation("DMA"),
		},
	}
	if err := Optimize(programFor(main), cfg, OptimizeOptions{}); err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	if _, ok := main.RefByInto("i1^0"); !ok {
		t.Fatalf("expected schedule pass to have run")
	}
}

func TestOptimizePeripheralKindIsANoOp(t *testing.T) {
	main := stripe.NewBlock("main")
	cfg := Config{OpaqueConfig{PassKind: "unroll", Reqs: nil}}
	if err := Optimize(main, cfg, OptimizeOptions{}); err != nil {
		t.Fatalf("expected the opaque stub to succeed as a no-op, got: %v", err)
	}
}

func TestOptimizeDumpsPassesInOrder(t *testing.T) {
	dir := t.TempDir()
	main := stripe.NewBlock("main")
	cfg := Config{
		OpaqueConfig{PassKind: "prune_idxs", Reqs: nil},
		OpaqueConfig{PassKind: "prune_refs", Reqs: nil},
	}
	if err := Optimize(main, cfg, OptimizeOptions{DumpPasses: true, DbgDir: dir}); err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	for _, name := range []string{"00_initial.txt", "01_prune_idxs.txt", "02_prune_refs.txt"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected dump file %s: %v", name, err)
		}
	}
}
