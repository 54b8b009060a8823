package codegen

import "testing"

func TestParseConfigDecodesCacheAndScheduleAndOpaque(t *testing.T) {
	data := []byte(`[
		{"kind": "cache", "reqs": ["main"], "dirs": ["in", "out"], "mem_loc": "CACHE", "xfer_loc": "DMA"},
		{"kind": "schedule", "reqs": ["main"], "mem_loc": "CACHE", "mem_kib": 1024, "alignment": 16, "xfer_loc": "DMA"},
		{"kind": "autotile", "reqs": ["main"], "options": {"max_size": 64}}
	]`)

	cfg, err := ParseConfig(data)
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if len(cfg) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(cfg))
	}

	cache, ok := cfg[0].(CacheConfig)
	if !ok {
		t.Fatalf("entry 0: expected CacheConfig, got %T", cfg[0])
	}
	if len(cache.Dirs) != 2 || cache.MemLoc.Name != "CACHE" || cache.XferLoc.Name != "DMA" {
		t.Fatalf("entry 0 decoded incorrectly: %+v", cache)
	}

	sched, ok := cfg[1].(ScheduleConfig)
	if !ok {
		t.Fatalf("entry 1: expected ScheduleConfig, got %T", cfg[1])
	}
	if sched.MemKiB != 1024 || sched.Alignment != 16 {
		t.Fatalf("entry 1 decoded incorrectly: %+v", sched)
	}

	opaque, ok := cfg[2].(OpaqueConfig)
	if !ok {
		t.Fatalf("entry 2: expected OpaqueConfig, got %T", cfg[2])
	}
	if opaque.PassKind != AutotileKind || opaque.Options["max_size"].(float64) != 64 {
		t.Fatalf("entry 2 decoded incorrectly: %+v", opaque)
	}
}

func TestParseConfigRejectsMissingKind(t *testing.T) {
	if _, err := ParseConfig([]byte(`[{"reqs": ["main"]}]`)); err == nil {
		t.Fatalf("expected an error for a pass entry without a kind")
	}
}

func TestParseConfigRejectsUnknownDir(t *testing.T) {
	data := []byte(`[{"kind": "cache", "dirs": ["sideways"], "mem_loc": "CACHE", "xfer_loc": "DMA"}]`)
	if _, err := ParseConfig(data); err == nil {
		t.Fatalf("expected an error for an unknown direction")
	}
}
