package codegen

import (
	"encoding/json"
	"fmt"

	"github.com/Algy/plaidml/pkg/stripe"
)

// The pass configuration table (§6) is read from a JSON document: an
// ordered array of pass entries, each a tagged union over the three
// PassConfig implementations, the same DTO-per-variant approach used for
// the IR exchange format.
type jsonPassEntry struct {
	Kind      Kind                   `json:"kind"`
	Reqs      []string               `json:"reqs,omitempty"`
	Dirs      []string               `json:"dirs,omitempty"`
	MemLoc    string                 `json:"mem_loc,omitempty"`
	XferLoc   string                 `json:"xfer_loc,omitempty"`
	MemKiB    uint64                 `json:"mem_kib,omitempty"`
	Alignment uint64                 `json:"alignment,omitempty"`
	Options   map[string]interface{} `json:"options,omitempty"`
}

// ParseConfig decodes an ordered pass configuration table from JSON.
func ParseConfig(data []byte) (Config, error) {
	var entries []jsonPassEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	cfg := make(Config, 0, len(entries))
	for i, e := range entries {
		pc, err := decodePassEntry(e)
		if err != nil {
			return nil, fmt.Errorf("codegen: config entry %d: %w", i, err)
		}
		cfg = append(cfg, pc)
	}
	return cfg, nil
}

func decodePassEntry(e jsonPassEntry) (PassConfig, error) {
	reqs := stripe.NewTags(e.Reqs...)
	switch e.Kind {
	case CacheKind:
		dirs, err := parseDirs(e.Dirs)
		if err != nil {
			return nil, err
		}
		return CacheConfig{
			Reqs:    reqs,
			Dirs:    dirs,
			MemLoc:  stripe.NewLocation(e.MemLoc),
			XferLoc: stripe.NewLocation(e.XferLoc),
		}, nil
	case ScheduleKind:
		return ScheduleConfig{
			Reqs:      reqs,
			MemLoc:    stripe.NewLocation(e.MemLoc),
			MemKiB:    e.MemKiB,
			Alignment: e.Alignment,
			XferLoc:   stripe.NewLocation(e.XferLoc),
		}, nil
	case "":
		return nil, fmt.Errorf("codegen: config entry is missing a \"kind\"")
	default:
		return OpaqueConfig{PassKind: e.Kind, Reqs: reqs, Options: e.Options}, nil
	}
}

func parseDirs(names []string) ([]stripe.Dir, error) {
	out := make([]stripe.Dir, len(names))
	for i, n := range names {
		switch n {
		case "in":
			out[i] = stripe.DirIn
		case "out":
			out[i] = stripe.DirOut
		case "inout":
			out[i] = stripe.DirInOut
		case "none":
			out[i] = stripe.DirNone
		default:
			return nil, fmt.Errorf("codegen: config: unknown direction %q", n)
		}
	}
	return out, nil
}
