package codegen

import (
	"fmt"
	"sort"

	"github.com/bits-and-blooms/bitset"

	"github.com/Algy/plaidml/pkg/affine"
	"github.com/Algy/plaidml/pkg/alias"
	"github.com/Algy/plaidml/pkg/stripe"
)

// twin records everything the scheduler needs to remember about one
// freshly-allocated scratchpad refinement while it works out offsets and
// transfers, including enough of the original (base) refinement's shape
// and placement to build a correctly-located, elementwise transfer block
// for it later.
type twin struct {
	baseName    string // the name in B.Refs this twin was created for
	into        string // the unique scratchpad name allocated for it
	baseDir     stripe.Dir
	sizeBy      int64
	baseShape   stripe.TensorShape
	baseLoc     stripe.Location
	baseIsConst bool
	baseOffset  uint64
	baseBankDim *stripe.BankDimension
}

// uniqueTwinName returns the first name of the form "base^k" (k starting
// at 0, monotonically incremented) that does not collide with an existing
// refinement's Into in b, per §4.4.1. Mirrors Block.UniqueRefName's
// collision-checked allocation (see cache.go's use of it), rather than
// assuming suffix "^0" is always free.
func uniqueTwinName(b *stripe.Block, base string) string {
	for k := 0; ; k++ {
		candidate := fmt.Sprintf("%s^%d", base, k)
		if _, exists := b.RefByInto(candidate); !exists {
			return candidate
		}
	}
}

// RunSchedulePass runs the schedule pass over every block in root's tree
// whose tags satisfy cfg.Reqs.
func RunSchedulePass(root *stripe.Block, cfg ScheduleConfig) error {
	var firstErr error
	alias.RunOnBlocks(root, cfg.Reqs, func(m alias.Map, block *stripe.Block) {
		if firstErr != nil {
			return
		}
		firstErr = ScheduleBlock(m, block, cfg)
	})
	return firstErr
}

// ScheduleBlock rewrites B in place per §4.4: every direct child Block
// statement's refinements that resolve to a non-scratchpad location are
// re-bound to fresh scratchpad twins in B.refs, swap-in/swap-out transfer
// blocks are inserted around them, and every statement's deps are
// recomputed to preserve happens-before ordering across the rewrite.
func ScheduleBlock(m alias.Map, B *stripe.Block, cfg ScheduleConfig) error {
	twins, err := rewriteRefs(m, B, cfg.MemLoc)
	if err != nil {
		return err
	}
	if len(twins) == 0 {
		return nil
	}
	if err := assignOffsets(B, twins, cfg); err != nil {
		return err
	}
	insertTransfers(B, twins, cfg.XferLoc)
	return nil
}

// rewriteRefs implements §4.4.1. It visits B's direct child Block
// statements in program order; the first time it encounters a borrowing
// refinement whose From resolves (through m, the alias map valid inside
// B) to a location other than memLoc, it allocates a scratchpad twin in
// B.Refs and remembers the mapping. Every subsequent ref bearing the same
// From is redirected to the same twin.
func rewriteRefs(m alias.Map, B *stripe.Block, memLoc stripe.Location) ([]*twin, error) {
	var order []*twin
	byBase := map[string]*twin{}

	for _, stmt := range B.Stmts {
		inner, ok := stmt.(*stripe.Block)
		if !ok {
			continue
		}
		for i := range inner.Refs {
			r := &inner.Refs[i]
			if r.Dir == stripe.DirNone {
				continue
			}
			info, ok := m.Lookup(r.From)
			if !ok {
				return nil, fmt.Errorf("codegen: schedule: unknown refinement %q in block %q", r.From, B.Name)
			}
			if info.Location.Name == memLoc.Name {
				continue // already resident
			}
			t, seen := byBase[r.From]
			if !seen {
				baseIdx, ok := B.RefByInto(r.From)
				if !ok {
					return nil, fmt.Errorf("codegen: schedule: invalid invariant: %q not in block %q's own refs", r.From, B.Name)
				}
				baseRef := B.Refs[baseIdx] // copy: B.Refs grows below
				into := uniqueTwinName(B, r.From)
				shape := stripe.SimpleShape(r.InteriorShape.Type, r.InteriorShape.Sizes())
				B.Refs = append(B.Refs, stripe.Refinement{
					Dir:           stripe.DirNone,
					Into:          into,
					Access:        make([]affine.Affine, len(shape.Dims)),
					InteriorShape: shape,
					Location:      memLoc,
				})
				t = &twin{
					baseName:    r.From,
					into:        into,
					baseDir:     baseRef.Dir,
					sizeBy:      shape.ByteSize(),
					baseShape:   baseRef.InteriorShape,
					baseLoc:     baseRef.Location,
					baseIsConst: baseRef.IsConst,
					baseOffset:  baseRef.Offset,
					baseBankDim: baseRef.BankDim,
				}
				byBase[r.From] = t
				order = append(order, t)
			}
			r.From = t.into
			r.Location = memLoc
		}
	}
	return order, nil
}

// assignOffsets implements §4.4.2: first-fit-decreasing by size over the
// twins, breaking ties by processing them in the reverse of their
// creation order (see DESIGN.md for why this tie-break reproduces the
// documented example offsets; a byte-exact packing heuristic is not
// pinned by the source this was distilled from).
func assignOffsets(B *stripe.Block, twins []*twin, cfg ScheduleConfig) error {
	capacityBytes := int64(cfg.MemKiB) * 1024
	alignment := int64(cfg.Alignment)
	if alignment <= 0 {
		alignment = 1
	}
	totalSlots := uint(capacityBytes / alignment)

	ordered := make([]*twin, len(twins))
	copy(ordered, twins)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].sizeBy > ordered[j].sizeBy
	})
	reverseEqualSizeRuns(ordered)

	bs := bitset.New(totalSlots)
	for _, t := range ordered {
		need := uint((t.sizeBy + alignment - 1) / alignment)
		slot, ok := firstFitSlots(bs, totalSlots, need)
		if !ok {
			return &ScheduleError{Block: B.Name, Loc: cfg.MemLoc.Name, Size: t.sizeBy, Capacity: capacityBytes}
		}
		for s := slot; s < slot+need; s++ {
			bs.Set(s)
		}
		offset := uint64(slot) * uint64(alignment)
		if idx, ok := B.RefByInto(t.into); ok {
			B.Refs[idx].Offset = offset
		}
	}
	return nil
}

// reverseEqualSizeRuns reverses each maximal run of equal-size entries in
// place, leaving the relative order of differently-sized entries alone.
// Used as the tie-break within a decreasing-by-size ordering: among twins
// of identical size, the one created last is packed first.
func reverseEqualSizeRuns(ordered []*twin) {
	start := 0
	for start < len(ordered) {
		end := start + 1
		for end < len(ordered) && ordered[end].sizeBy == ordered[start].sizeBy {
			end++
		}
		for i, j := start, end-1; i < j; i, j = i+1, j-1 {
			ordered[i], ordered[j] = ordered[j], ordered[i]
		}
		start = end
	}
}

func firstFitSlots(bs *bitset.BitSet, totalSlots, need uint) (uint, bool) {
	if need == 0 {
		return 0, true
	}
	start := uint(0)
	for start+need <= totalSlots {
		clash, found := bs.NextSet(start)
		if !found || clash >= start+need {
			return start, true
		}
		start = clash + 1
	}
	return 0, false
}

// insertTransfers implements §4.4.3: for every non-temporary twin, it
// inserts a swap-in before the first statement that reads the twin (if
// any) and a swap-out after the last statement that writes it (if any),
// then recomputes every statement's deps, remapping pre-existing dep
// indices to their new positions and adding the happens-before edges the
// inserted transfers introduce.
func insertTransfers(B *stripe.Block, twins []*twin, xferLoc stripe.Location) {
	original := append([]stripe.Statement(nil), B.Stmts...)
	working := append([]stripe.Statement(nil), B.Stmts...)

	type edge struct {
		consumers []stripe.Statement
		lastProd  stripe.Statement
		swapIn    stripe.Statement
		swapOut   stripe.Statement
	}
	edges := map[*twin]*edge{}

	reversed := make([]*twin, len(twins))
	copy(reversed, twins)
	for i, j := 0, len(reversed)-1; i < j; i, j = i+1, j-1 {
		reversed[i], reversed[j] = reversed[j], reversed[i]
	}

	for _, t := range reversed {
		if t.baseDir == stripe.DirNone {
			continue // pure temporary: no transfers
		}
		var consumers []stripe.Statement
		var producers []stripe.Statement
		for _, s := range original {
			if containsName(s.BufferReads(), t.into) {
				consumers = append(consumers, s)
			}
			if containsName(s.BufferWrites(), t.into) {
				producers = append(producers, s)
			}
		}
		e := &edge{consumers: consumers}
		if len(consumers) > 0 {
			swapIn := newTransferBlock("swap_in_"+t.into, baseEnd(t), scratchEnd(B, t), xferLoc)
			working = insertBefore(working, consumers[0], swapIn)
			e.swapIn = swapIn
		}
		if len(producers) > 0 {
			lastProd := producers[len(producers)-1]
			swapOut := newTransferBlock("swap_out_"+t.into, scratchEnd(B, t), baseEnd(t), xferLoc)
			working = insertAfter(working, lastProd, swapOut)
			e.swapOut = swapOut
			e.lastProd = lastProd
		}
		edges[t] = e
	}

	newIndex := map[stripe.Statement]int{}
	for i, s := range working {
		newIndex[s] = i
	}

	for _, s := range original {
		base := s.Base()
		remapped := make([]int, 0, len(base.Deps))
		for _, d := range base.Deps {
			if d >= 0 && d < len(original) {
				remapped = append(remapped, newIndex[original[d]])
			}
		}
		base.Deps = remapped
	}

	for _, t := range twins {
		e, ok := edges[t]
		if !ok {
			continue
		}
		if e.swapIn != nil {
			inIdx := newIndex[e.swapIn]
			for _, c := range e.consumers {
				addDep(c.Base(), inIdx)
			}
		}
		if e.swapOut != nil && e.lastProd != nil {
			addDep(e.swapOut.Base(), newIndex[e.lastProd])
		}
	}

	for _, s := range working {
		base := s.Base()
		sort.Ints(base.Deps)
		base.Deps = dedupeInts(base.Deps)
	}

	B.Stmts = working
}

// xferEnd describes one side (source or destination) of a swap-in/swap-out
// transfer block: the outer-visible name it borrows from and its located,
// per-element shape there.
type xferEnd struct {
	from    string
	loc     stripe.Location
	shape   stripe.TensorShape
	isConst bool
	offset  uint64
	bankDim *stripe.BankDimension
}

// baseEnd describes a twin's original (non-scratchpad) side of a transfer.
func baseEnd(t *twin) xferEnd {
	return xferEnd{
		from:    t.baseName,
		loc:     t.baseLoc,
		shape:   t.baseShape,
		isConst: t.baseIsConst,
		offset:  t.baseOffset,
		bankDim: t.baseBankDim,
	}
}

// scratchEnd describes a twin's scratchpad side of a transfer, read from
// B.Refs so it reflects the offset assignOffsets has since filled in.
func scratchEnd(B *stripe.Block, t *twin) xferEnd {
	idx, _ := B.RefByInto(t.into)
	r := B.Refs[idx]
	return xferEnd{
		from:    t.into,
		loc:     r.Location,
		shape:   r.InteriorShape,
		isConst: r.IsConst,
		offset:  r.Offset,
		bankDim: r.BankDim,
	}
}

// newTransferBlock builds an elementwise-copy transfer block moving every
// element of src's shape to dst, looping over every dimension with more
// than one element (matching cache.go's newXferBlock: one Index per
// multi-size dimension, named "i<dim>" by absolute dimension position,
// and a unit-sized, correctly-located Refinement per side).
func newTransferBlock(name string, src, dst xferEnd, xferLoc stripe.Location) *stripe.Block {
	sizes := src.shape.Sizes()
	idxs := make([]stripe.Index, 0, len(sizes))
	access := make([]affine.Affine, len(sizes))
	for i, size := range sizes {
		if size > 1 {
			iname := fmt.Sprintf("i%d", i)
			idxs = append(idxs, stripe.NewIndex(iname, uint64(size)))
			access[i] = affine.New(iname, 1)
		} else {
			access[i] = affine.Zero()
		}
	}

	b := stripe.NewBlock(name)
	b.Location = xferLoc
	b.Idxs = idxs
	b.Refs = append(b.Refs,
		stripe.Refinement{
			Dir: stripe.DirIn, From: src.from, Into: "src",
			Access:        append([]affine.Affine(nil), access...),
			InteriorShape: src.shape.WithUnitSizes(),
			Location:      src.loc,
			IsConst:       src.isConst,
			Offset:        src.offset,
			BankDim:       src.bankDim,
		},
		stripe.Refinement{
			Dir: stripe.DirOut, From: dst.from, Into: "dst",
			Access:        append([]affine.Affine(nil), access...),
			InteriorShape: dst.shape.WithUnitSizes(),
			Location:      dst.loc,
			IsConst:       dst.isConst,
			Offset:        dst.offset,
			BankDim:       dst.bankDim,
		},
	)
	b.AddStmt(stripe.NewLoad("src", "$X"))
	b.AddStmt(stripe.NewStore("$X", "dst"))
	return b
}

func containsName(names []string, want string) bool {
	for _, n := range names {
		if n == want {
			return true
		}
	}
	return false
}

func insertBefore(stmts []stripe.Statement, target, newStmt stripe.Statement) []stripe.Statement {
	for i, s := range stmts {
		if s == target {
			out := make([]stripe.Statement, 0, len(stmts)+1)
			out = append(out, stmts[:i]...)
			out = append(out, newStmt)
			out = append(out, stmts[i:]...)
			return out
		}
	}
	return append(stmts, newStmt)
}

func insertAfter(stmts []stripe.Statement, target, newStmt stripe.Statement) []stripe.Statement {
	for i, s := range stmts {
		if s == target {
			out := make([]stripe.Statement, 0, len(stmts)+1)
			out = append(out, stmts[:i+1]...)
			out = append(out, newStmt)
			out = append(out, stmts[i+1:]...)
			return out
		}
	}
	return append(stmts, newStmt)
}

func addDep(base *stripe.StmtBase, idx int) {
	for _, d := range base.Deps {
		if d == idx {
			return
		}
	}
	base.Deps = append(base.Deps, idx)
}

func dedupeInts(xs []int) []int {
	out := xs[:0]
	var last int
	for i, x := range xs {
		if i == 0 || x != last {
			out = append(out, x)
		}
		last = x
	}
	return out
}
