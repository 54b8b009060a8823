package stripe

import "testing"

func TestLoadStoreUseDefs(t *testing.T) {
	ld := NewLoad("A", "$x")
	if got := ld.BufferReads(); len(got) != 1 || got[0] != "A" {
		t.Fatalf("Load.BufferReads = %v", got)
	}
	if got := ld.ScalarDefs(); len(got) != 1 || got[0] != "$x" {
		t.Fatalf("Load.ScalarDefs = %v", got)
	}
	if len(ld.BufferWrites()) != 0 || len(ld.ScalarUses()) != 0 {
		t.Fatalf("Load should not write buffers or use scalars")
	}

	st := NewStore("$x", "B")
	if got := st.BufferWrites(); len(got) != 1 || got[0] != "B" {
		t.Fatalf("Store.BufferWrites = %v", got)
	}
	if got := st.ScalarUses(); len(got) != 1 || got[0] != "$x" {
		t.Fatalf("Store.ScalarUses = %v", got)
	}
}

func TestConstantKinds(t *testing.T) {
	ic := NewIntConstant("$a", 7)
	if ic.Type != IntegerConst || ic.IConst != 7 {
		t.Fatalf("unexpected int constant: %+v", ic)
	}
	fc := NewFloatConstant("$b", 2.5)
	if fc.Type != FloatConst || fc.FConst != 2.5 {
		t.Fatalf("unexpected float constant: %+v", fc)
	}
	if got := ic.ScalarDefs(); len(got) != 1 || got[0] != "$a" {
		t.Fatalf("Constant.ScalarDefs = %v", got)
	}
}

func TestIntrinsicUseDefs(t *testing.T) {
	in := NewIntrinsic(IntrinsicMul, Float32, []string{"$a", "$b"}, []string{"$c"})
	if got := in.ScalarUses(); len(got) != 2 {
		t.Fatalf("Intrinsic.ScalarUses = %v", got)
	}
	if got := in.ScalarDefs(); len(got) != 1 || got[0] != "$c" {
		t.Fatalf("Intrinsic.ScalarDefs = %v", got)
	}
	if len(in.BufferReads()) != 0 || len(in.BufferWrites()) != 0 {
		t.Fatalf("Intrinsic must not touch buffers directly")
	}
}

func TestSpecialUseDefs(t *testing.T) {
	sp := NewSpecial(SpecialZero, nil, nil, []string{"A"})
	if got := sp.BufferWrites(); len(got) != 1 || got[0] != "A" {
		t.Fatalf("Special.BufferWrites = %v", got)
	}
	if len(sp.ScalarUses()) != 0 || len(sp.ScalarDefs()) != 0 {
		t.Fatalf("Special must not touch scalars")
	}
}

func TestStmtKindString(t *testing.T) {
	cases := map[StmtKind]string{
		LoadKind:      "Load",
		StoreKind:     "Store",
		ConstantKind:  "Constant",
		IntrinsicKind: "Intrinsic",
		SpecialKind:   "Special",
		BlockKind:     "Block",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Fatalf("StmtKind(%d).String() = %s, want %s", k, got, want)
		}
	}
}
