package codegen

import (
	log "github.com/sirupsen/logrus"

	"github.com/Algy/plaidml/pkg/alias"
	"github.com/Algy/plaidml/pkg/stripe"
)

// FixupRefs rewrites the Location of every immediate child refinement
// that borrows from varName, so it stays consistent with varName's
// current location in block.Refs. ApplyCache calls this right after it
// repoints varName at a freshly-cached refinement; everything deeper than
// one level resolves its location lazily through the alias map and needs
// no adjustment here.
func FixupRefs(block *stripe.Block, varName string) {
	idx, ok := block.RefByInto(varName)
	if !ok {
		return
	}
	base := block.Refs[idx]
	for _, stmt := range block.Stmts {
		inner, ok := stmt.(*stripe.Block)
		if !ok {
			continue
		}
		for i := range inner.Refs {
			r := &inner.Refs[i]
			if r.From == varName {
				r.Location = base.Location.Add(r.Location.Unit)
			}
		}
	}
}

// RunExternalPass dispatches a peripheral, non-core pass kind (autotile,
// partition_{compute,memory}, unroll, fusion, stencil, transpose,
// scalarize, localize, locate_{block,inner_block,memory},
// memory_placement, prune_{idxs,refs}, compute_deps, thread_inner). These
// are treated as external collaborators: real implementations live
// outside this module's scope, but the driver still owes them the
// reqs-tag-matching contract every pass obeys, so a stub collaborator can
// be swapped in without changing how the driver invokes it.
func RunExternalPass(root *stripe.Block, cfg OpaqueConfig) error {
	alias.RunOnBlocks(root, cfg.Reqs, func(_ alias.Map, block *stripe.Block) {
		log.WithFields(log.Fields{
			"pass":  string(cfg.PassKind),
			"block": block.Name,
		}).Debug("codegen: external pass matched block (no-op stub)")
	})
	return nil
}
