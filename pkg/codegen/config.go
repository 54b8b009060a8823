// Package codegen implements the pass-driven Stripe optimization pipeline:
// a small set of structural rewrites (cache, schedule) built on top of the
// alias package, dispatched in sequence by a driver, plus stub wiring for
// the peripheral passes that are treated as external collaborators.
package codegen

import "github.com/Algy/plaidml/pkg/stripe"

// Kind discriminates the pass variants a Config may list.
type Kind string

// The pass kinds recognized by the driver. Cache and Schedule are
// implemented in full; the remainder are opaque external collaborators
// dispatched via RunExternalPass (see external.go).
const (
	CacheKind            Kind = "cache"
	ScheduleKind         Kind = "schedule"
	AutotileKind         Kind = "autotile"
	PartitionComputeKind Kind = "partition_compute"
	PartitionMemoryKind  Kind = "partition_memory"
	UnrollKind           Kind = "unroll"
	FusionKind           Kind = "fusion"
	StencilKind          Kind = "stencil"
	TransposeKind        Kind = "transpose"
	ScalarizeKind        Kind = "scalarize"
	LocalizeKind         Kind = "localize"
	LocateBlockKind      Kind = "locate_block"
	LocateInnerBlockKind Kind = "locate_inner_block"
	LocateMemoryKind     Kind = "locate_memory"
	MemoryPlacementKind  Kind = "memory_placement"
	PruneIdxsKind        Kind = "prune_idxs"
	PruneRefsKind        Kind = "prune_refs"
	ComputeDepsKind      Kind = "compute_deps"
	ThreadInnerKind      Kind = "thread_inner"
)

// PassConfig is the per-pass options record. Every pass kind the driver
// knows about implements it; CacheConfig and ScheduleConfig carry typed
// fields, while every peripheral kind is represented by OpaqueConfig.
type PassConfig interface {
	Kind() Kind
}

// CacheConfig holds the options for a cache pass entry.
type CacheConfig struct {
	Reqs    stripe.Tags
	Dirs    []stripe.Dir
	MemLoc  stripe.Location
	XferLoc stripe.Location
}

// Kind implements PassConfig.
func (c CacheConfig) Kind() Kind { return CacheKind }

// ScheduleConfig holds the options for a schedule pass entry.
type ScheduleConfig struct {
	Reqs      stripe.Tags
	MemLoc    stripe.Location
	MemKiB    uint64
	Alignment uint64
	XferLoc   stripe.Location
}

// Kind implements PassConfig.
func (c ScheduleConfig) Kind() Kind { return ScheduleKind }

// OpaqueConfig represents any peripheral pass kind: the driver dispatches
// it to RunExternalPass without interpreting Options itself, beyond
// matching Reqs against nested block tags (the external collaborator
// contract of §6).
type OpaqueConfig struct {
	PassKind Kind
	Reqs     stripe.Tags
	Options  map[string]interface{}
}

// Kind implements PassConfig.
func (c OpaqueConfig) Kind() Kind { return c.PassKind }

// Config is an ordered list of passes to run.
type Config []PassConfig

// OptimizeOptions controls driver-level behavior independent of any one
// pass: whether to dump the IR to disk between passes, and where.
type OptimizeOptions struct {
	DumpPasses bool
	DbgDir     string
}
