package codegen

import (
	"fmt"

	"github.com/Algy/plaidml/pkg/affine"
	"github.com/Algy/plaidml/pkg/alias"
	"github.com/Algy/plaidml/pkg/stripe"
)

// ApplyCache materializes the refinement named varName into a local
// scratchpad at memLoc, inserting elementwise-copy transfer sub-blocks at
// xferLoc to move data in and/or out as varName's direction requires.
func ApplyCache(block *stripe.Block, varName string, memLoc, xferLoc stripe.Location) error {
	idx, ok := block.RefByInto(varName)
	if !ok {
		return fmt.Errorf("codegen: cache: invalid var_name %q in block %q", varName, block.Name)
	}
	ref := &block.Refs[idx]

	rawShape := ref.InteriorShape
	cachedShape := stripe.SimpleShape(rawShape.Type, rawShape.Sizes())

	rawName := block.UniqueRefName(varName + "_raw")
	ref.Into = rawName

	sizes := rawShape.Sizes()
	xferIdxs := make([]stripe.Index, 0, len(sizes))
	xferAccess := make([]affine.Affine, len(sizes))
	for i, size := range sizes {
		if size > 1 {
			iname := fmt.Sprintf("i%d", i)
			xferIdxs = append(xferIdxs, stripe.NewIndex(iname, uint64(size)))
			xferAccess[i] = affine.New(iname, 1)
		} else {
			xferAccess[i] = affine.Zero()
		}
	}

	rawXferShape := rawShape.WithUnitSizes()
	cachedXferShape := cachedShape.WithUnitSizes()

	newXferBlock := func(name string) *stripe.Block {
		b := stripe.NewBlock(name)
		b.Location = xferLoc
		b.Idxs = append(b.Idxs, xferIdxs...)
		b.Refs = append(b.Refs,
			stripe.Refinement{
				Dir: stripe.DirIn, From: varName, Into: "src",
				Access:        append([]affine.Affine(nil), xferAccess...),
				InteriorShape: cachedXferShape,
				Location:      ref.Location,
				IsConst:       ref.IsConst,
				Offset:        ref.Offset,
				BankDim:       ref.BankDim,
			},
			stripe.Refinement{
				Dir: stripe.DirOut, From: varName, Into: "dst",
				Access:        append([]affine.Affine(nil), xferAccess...),
				InteriorShape: cachedXferShape,
				Location:      ref.Location,
				IsConst:       ref.IsConst,
				Offset:        ref.Offset,
				BankDim:       ref.BankDim,
			},
		)
		b.AddStmt(stripe.NewLoad("src", "$X"))
		b.AddStmt(stripe.NewStore("$X", "dst"))
		return b
	}

	if stripe.IsReadDir(ref.Dir) {
		cacheLoad := newXferBlock("load_" + varName)
		cacheLoad.AddTags(stripe.NewTags("cache", "cache_load"))
		cacheLoad.Refs[0].From = rawName
		cacheLoad.Refs[0].InteriorShape = rawXferShape
		cacheLoad.Refs[1].Location = memLoc
		block.Stmts = append([]stripe.Statement{cacheLoad}, block.Stmts...)
	}
	if stripe.IsWriteDir(ref.Dir) {
		cacheStore := newXferBlock("store_" + varName)
		cacheStore.AddTags(stripe.NewTags("cache", "cache_store"))
		cacheStore.Refs[1].From = rawName
		cacheStore.Refs[1].InteriorShape = rawXferShape
		cacheStore.Refs[0].Location = memLoc
		block.Stmts = append(block.Stmts, cacheStore)
	}

	block.Refs = append(block.Refs, stripe.Refinement{
		Dir:           stripe.DirNone,
		Into:          varName,
		Access:        make([]affine.Affine, len(cachedShape.Dims)),
		InteriorShape: cachedShape,
		Location:      memLoc,
	})

	FixupRefs(block, varName)
	return nil
}

// CacheBlock applies ApplyCache to every refinement of block whose
// direction is in dirs. It snapshots block.Refs before iterating, since
// ApplyCache appends to that slice as it runs.
func CacheBlock(block *stripe.Block, dirs []stripe.Dir, memLoc, xferLoc stripe.Location) error {
	want := make(map[stripe.Dir]struct{}, len(dirs))
	for _, d := range dirs {
		want[d] = struct{}{}
	}
	snapshot := append([]stripe.Refinement(nil), block.Refs...)
	for _, ref := range snapshot {
		if _, ok := want[ref.Dir]; ok {
			if err := ApplyCache(block, ref.Into, memLoc, xferLoc); err != nil {
				return err
			}
		}
	}
	return nil
}

// RunCachePass runs the cache pass over every block in root's tree whose
// tags satisfy cfg.Reqs.
func RunCachePass(root *stripe.Block, cfg CacheConfig) error {
	var firstErr error
	alias.RunOnBlocks(root, cfg.Reqs, func(_ alias.Map, block *stripe.Block) {
		if firstErr != nil {
			return
		}
		firstErr = CacheBlock(block, cfg.Dirs, cfg.MemLoc, cfg.XferLoc)
	})
	return firstErr
}
