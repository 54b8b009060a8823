package stripe

import (
	"encoding/json"
	"fmt"

	"github.com/Algy/plaidml/pkg/affine"
)

// The textual IR exchange format (§6) is expressed here as JSON rather
// than protobuf text, following the same encoding/json convention the
// rest of this module's configuration plumbing uses: a DTO per
// statement kind with exactly one branch populated, translated to and
// from the live IR by Encode/Decode pairs, mirroring how a tagged
// union crossing a serialization boundary is handled elsewhere in this
// codebase.
type jsonStmt struct {
	Tags      []string       `json:"tags,omitempty"`
	Deps      []int          `json:"deps,omitempty"`
	Load      *jsonLoad      `json:"load,omitempty"`
	Store     *jsonStore     `json:"store,omitempty"`
	Constant  *jsonConstant  `json:"constant,omitempty"`
	Intrinsic *jsonIntrinsic `json:"intrinsic,omitempty"`
	Special   *jsonSpecial   `json:"special,omitempty"`
	Block     *jsonBlock     `json:"block,omitempty"`
}

type jsonLoad struct {
	From string `json:"from"`
	Into string `json:"into"`
}

type jsonStore struct {
	From string `json:"from"`
	Into string `json:"into"`
}

type jsonConstant struct {
	Name   string  `json:"name"`
	Type   string  `json:"type"`
	IConst int64   `json:"iconst,omitempty"`
	FConst float64 `json:"fconst,omitempty"`
}

type jsonIntrinsic struct {
	Name    IntrinsicName `json:"name"`
	Type    ElemType      `json:"elem_type"`
	Inputs  []string      `json:"inputs,omitempty"`
	Outputs []string      `json:"outputs,omitempty"`
}

type jsonSpecial struct {
	Name    SpecialName `json:"name"`
	Params  []string    `json:"params,omitempty"`
	Inputs  []string    `json:"inputs,omitempty"`
	Outputs []string    `json:"outputs,omitempty"`
}

type jsonBlock struct {
	Name        string          `json:"name"`
	Comments    string          `json:"comments,omitempty"`
	Tags        []string        `json:"tags,omitempty"`
	Deps        []int           `json:"deps,omitempty"`
	Idxs        []Index         `json:"idxs,omitempty"`
	Constraints []affine.Affine `json:"constraints,omitempty"`
	Refs        []Refinement    `json:"refs,omitempty"`
	Stmts       []jsonStmt      `json:"stmts,omitempty"`
	Location    Location        `json:"location"`
}

func encodeStatement(s Statement) (jsonStmt, error) {
	switch v := s.(type) {
	case *Load:
		return jsonStmt{Tags: tagList(v.Tags), Deps: v.Deps, Load: &jsonLoad{From: v.From, Into: v.Into}}, nil
	case *Store:
		return jsonStmt{Tags: tagList(v.Tags), Deps: v.Deps, Store: &jsonStore{From: v.From, Into: v.Into}}, nil
	case *Constant:
		jc := &jsonConstant{Name: v.Name}
		if v.Type == IntegerConst {
			jc.Type, jc.IConst = "int", v.IConst
		} else {
			jc.Type, jc.FConst = "float", v.FConst
		}
		return jsonStmt{Tags: tagList(v.Tags), Deps: v.Deps, Constant: jc}, nil
	case *Intrinsic:
		return jsonStmt{Tags: tagList(v.Tags), Deps: v.Deps, Intrinsic: &jsonIntrinsic{
			Name: v.Name, Type: v.Type, Inputs: v.Inputs, Outputs: v.Outputs,
		}}, nil
	case *Special:
		return jsonStmt{Tags: tagList(v.Tags), Deps: v.Deps, Special: &jsonSpecial{
			Name: v.Name, Params: v.Params, Inputs: v.Inputs, Outputs: v.Outputs,
		}}, nil
	case *Block:
		jb, err := encodeBlock(v)
		if err != nil {
			return jsonStmt{}, err
		}
		return jsonStmt{Block: &jb}, nil
	default:
		return jsonStmt{}, fmt.Errorf("stripe: json: unknown statement type %T", v)
	}
}

func decodeStatement(j jsonStmt) (Statement, error) {
	switch {
	case j.Load != nil:
		s := NewLoad(j.Load.From, j.Load.Into)
		s.Tags, s.Deps = tagsFromList(j.Tags), j.Deps
		return s, nil
	case j.Store != nil:
		s := NewStore(j.Store.From, j.Store.Into)
		s.Tags, s.Deps = tagsFromList(j.Tags), j.Deps
		return s, nil
	case j.Constant != nil:
		var s *Constant
		switch j.Constant.Type {
		case "int":
			s = NewIntConstant(j.Constant.Name, j.Constant.IConst)
		case "float":
			s = NewFloatConstant(j.Constant.Name, j.Constant.FConst)
		default:
			return nil, fmt.Errorf("stripe: json: unknown constant type %q", j.Constant.Type)
		}
		s.Tags, s.Deps = tagsFromList(j.Tags), j.Deps
		return s, nil
	case j.Intrinsic != nil:
		s := NewIntrinsic(j.Intrinsic.Name, j.Intrinsic.Type, j.Intrinsic.Inputs, j.Intrinsic.Outputs)
		s.Tags, s.Deps = tagsFromList(j.Tags), j.Deps
		return s, nil
	case j.Special != nil:
		s := NewSpecial(j.Special.Name, j.Special.Params, j.Special.Inputs, j.Special.Outputs)
		s.Tags, s.Deps = tagsFromList(j.Tags), j.Deps
		return s, nil
	case j.Block != nil:
		return decodeBlock(*j.Block)
	default:
		return nil, fmt.Errorf("stripe: json: statement has no populated variant")
	}
}

func encodeBlock(b *Block) (jsonBlock, error) {
	stmts := make([]jsonStmt, len(b.Stmts))
	for i, s := range b.Stmts {
		js, err := encodeStatement(s)
		if err != nil {
			return jsonBlock{}, err
		}
		stmts[i] = js
	}
	return jsonBlock{
		Name:        b.Name,
		Comments:    b.Comments,
		Tags:        tagList(b.Tags),
		Deps:        b.Deps,
		Idxs:        b.Idxs,
		Constraints: b.Constraints,
		Refs:        b.Refs,
		Stmts:       stmts,
		Location:    b.Location,
	}, nil
}

func decodeBlock(jb jsonBlock) (*Block, error) {
	b := NewBlock(jb.Name)
	b.Comments = jb.Comments
	b.Tags = tagsFromList(jb.Tags)
	b.Deps = jb.Deps
	b.Idxs = jb.Idxs
	b.Constraints = jb.Constraints
	b.Refs = jb.Refs
	b.Location = jb.Location
	for _, js := range jb.Stmts {
		s, err := decodeStatement(js)
		if err != nil {
			return nil, err
		}
		b.Stmts = append(b.Stmts, s)
	}
	return b, nil
}

func tagsFromList(names []string) Tags {
	if len(names) == 0 {
		return nil
	}
	return NewTags(names...)
}

// MarshalJSON implements json.Marshaler.
func (b *Block) MarshalJSON() ([]byte, error) {
	jb, err := encodeBlock(b)
	if err != nil {
		return nil, err
	}
	return json.Marshal(jb)
}

// UnmarshalJSON implements json.Unmarshaler.
func (b *Block) UnmarshalJSON(data []byte) error {
	var jb jsonBlock
	if err := json.Unmarshal(data, &jb); err != nil {
		return err
	}
	decoded, err := decodeBlock(jb)
	if err != nil {
		return err
	}
	*b = *decoded
	return nil
}
