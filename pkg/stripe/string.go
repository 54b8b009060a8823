package stripe

import (
	"fmt"
	"strings"
)

// String renders the block and its full nested structure as indented text.
// This is the "textual protobuf form" substitute used for debug dumps
// (§6): a real protobuf-text codec is an external collaborator out of
// scope for this core, but passes still need something human-readable to
// write to dbg_dir between stages.
func (b *Block) String() string {
	var sb strings.Builder
	writeBlock(&sb, b, 0)
	return sb.String()
}

func indent(sb *strings.Builder, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
}

func writeBlock(sb *strings.Builder, b *Block, depth int) {
	indent(sb, depth)
	fmt.Fprintf(sb, "block %q loc=%s tags=%s\n", b.Name, b.Location, tagList(b.Tags))
	for _, idx := range b.Idxs {
		indent(sb, depth+1)
		fmt.Fprintf(sb, "idx %s[%d] = %s\n", idx.Name, idx.Range, idx.Affine)
	}
	for _, c := range b.Constraints {
		indent(sb, depth+1)
		fmt.Fprintf(sb, "constraint %s >= 0\n", c)
	}
	for _, r := range b.Refs {
		indent(sb, depth+1)
		fmt.Fprintf(sb, "ref %s\n", r)
	}
	for i, s := range b.Stmts {
		indent(sb, depth+1)
		fmt.Fprintf(sb, "[%d] deps=%v ", i, s.Base().Deps)
		writeStmt(sb, s, depth+1)
	}
}

func writeStmt(sb *strings.Builder, s Statement, depth int) {
	switch v := s.(type) {
	case *Load:
		fmt.Fprintf(sb, "load %s -> %s\n", v.From, v.Into)
	case *Store:
		fmt.Fprintf(sb, "store %s -> %s\n", v.From, v.Into)
	case *Constant:
		if v.Type == IntegerConst {
			fmt.Fprintf(sb, "const %s = %d\n", v.Name, v.IConst)
		} else {
			fmt.Fprintf(sb, "const %s = %g\n", v.Name, v.FConst)
		}
	case *Intrinsic:
		fmt.Fprintf(sb, "intrinsic %s(%v) -> %v\n", v.Name, v.Inputs, v.Outputs)
	case *Special:
		fmt.Fprintf(sb, "special %s(%v)(%v) -> %v\n", v.Name, v.Params, v.Inputs, v.Outputs)
	case *Block:
		sb.WriteString("\n")
		writeBlock(sb, v, depth+1)
	default:
		fmt.Fprintf(sb, "<unknown statement %T>\n", v)
	}
}

func tagList(t Tags) []string {
	out := make([]string, 0, len(t))
	for k := range t {
		out = append(out, k)
	}
	return out
}
