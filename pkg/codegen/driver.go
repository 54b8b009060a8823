package codegen

import (
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/Algy/plaidml/pkg/stripe"
)

// Optimize runs every pass in cfg over root in order, dispatching each on
// its Kind. Passes mutate root in place; no pass observes passes that
// have not yet run. An unknown kind or a pass-level error aborts the
// driver immediately.
func Optimize(root *stripe.Block, cfg Config, opts OptimizeOptions) error {
	if opts.DumpPasses {
		if err := dumpProgram(root, opts.DbgDir, 0, "initial"); err != nil {
			return err
		}
	}
	for i, pass := range cfg {
		name := string(pass.Kind())
		log.WithFields(log.Fields{"pass": name, "index": i}).Debug("codegen: running pass")

		var err error
		switch p := pass.(type) {
		case CacheConfig:
			err = RunCachePass(root, p)
		case ScheduleConfig:
			err = RunSchedulePass(root, p)
		case OpaqueConfig:
			switch p.PassKind {
			case AutotileKind, PartitionComputeKind, PartitionMemoryKind, UnrollKind, FusionKind,
				StencilKind, TransposeKind, ScalarizeKind, LocalizeKind, LocateBlockKind,
				LocateInnerBlockKind, LocateMemoryKind, MemoryPlacementKind, PruneIdxsKind,
				PruneRefsKind, ComputeDepsKind, ThreadInnerKind:
				err = RunExternalPass(root, p)
			default:
				return fmt.Errorf("codegen: driver: unknown pass kind %q at index %d", name, i)
			}
		default:
			return fmt.Errorf("codegen: driver: unknown pass kind %q at index %d", name, i)
		}
		if err != nil {
			return fmt.Errorf("codegen: pass %q (index %d): %w", name, i, err)
		}

		if opts.DumpPasses {
			if err := dumpProgram(root, opts.DbgDir, i+1, name); err != nil {
				return err
			}
		}
	}
	return nil
}

func dumpProgram(root *stripe.Block, dbgDir string, n int, name string) error {
	if dbgDir == "" {
		return nil
	}
	if err := os.MkdirAll(dbgDir, 0o755); err != nil {
		return fmt.Errorf("codegen: dump: %w", err)
	}
	path := filepath.Join(dbgDir, fmt.Sprintf("%02d_%s.txt", n, name))
	if err := os.WriteFile(path, []byte(root.String()), 0o644); err != nil {
		return fmt.Errorf("codegen: dump: %w", err)
	}
	return nil
}
