package stripe

// Tags is an unordered set of string labels attached to a Block, Index,
// Refinement, or Statement. Optimisation passes use tags both to select
// which nested blocks they apply to (via a required tag set) and to mark
// the blocks/refinements they themselves introduce (e.g. "cache_load").
type Tags map[string]struct{}

// NewTags builds a Tags set from the given labels.
func NewTags(labels ...string) Tags {
	t := make(Tags, len(labels))
	for _, l := range labels {
		t[l] = struct{}{}
	}
	return t
}

// SetTag adds a single tag.
func (t *Tags) SetTag(tag string) {
	if *t == nil {
		*t = Tags{}
	}
	(*t)[tag] = struct{}{}
}

// AddTags merges another tag set into this one.
func (t *Tags) AddTags(other Tags) {
	for tag := range other {
		t.SetTag(tag)
	}
}

// HasTag reports whether a single tag is present.
func (t Tags) HasTag(tag string) bool {
	_, ok := t[tag]
	return ok
}

// HasTags reports whether every tag in want is present in t, i.e. whether t
// is a superset of want. An empty want set is trivially satisfied.
func (t Tags) HasTags(want Tags) bool {
	for tag := range want {
		if !t.HasTag(tag) {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of the tag set.
func (t Tags) Clone() Tags {
	out := make(Tags, len(t))
	for k := range t {
		out[k] = struct{}{}
	}
	return out
}

// Taggable is embedded by every IR node that carries a Tags set.
type Taggable struct {
	Tags Tags
}

// SetTag adds a single tag to the node.
func (t *Taggable) SetTag(tag string) { t.Tags.SetTag(tag) }

// AddTags merges tags into the node's tag set.
func (t *Taggable) AddTags(tags Tags) { t.Tags.AddTags(tags) }

// HasTag reports whether the node carries the given tag.
func (t *Taggable) HasTag(tag string) bool { return t.Tags.HasTag(tag) }

// HasTags reports whether the node carries every tag in want.
func (t *Taggable) HasTags(want Tags) bool { return t.Tags.HasTags(want) }
