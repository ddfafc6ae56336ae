package spec

import "testing"

func TestBehavior_Matches(t *testing.T) {
	all := []Behavior{
		Of(CompileError), Of(Runs), Of(InfiniteLoop), Of(Abort), Of(Failure),
		Of(Segfault), Of(DivZero), ReturnAny(), ReturnOf(0), ReturnOf(-7), Of(Skipped),
	}

	for _, b := range all {
		if !Of(Skipped).Matches(b) || !b.Matches(Of(Skipped)) {
			t.Errorf("skipped should match %s in both directions", b)
		}
		if !b.Matches(b) {
			t.Errorf("%s should match itself", b)
		}
	}

	for _, x := range []int32{0, 1, -1, 2147483647, -2147483648} {
		if !ReturnAny().Matches(ReturnOf(x)) || !ReturnOf(x).Matches(ReturnAny()) {
			t.Errorf("return * should match return %d in both directions", x)
		}
	}

	if ReturnOf(3).Matches(ReturnOf(4)) {
		t.Errorf("return 3 should not match return 4")
	}
	if Of(Segfault).Matches(Of(Abort)) {
		t.Errorf("segfault should not match abort")
	}
	if ReturnAny().Matches(Of(Runs)) {
		t.Errorf("return * should not match runs")
	}
}

func TestBehavior_String(t *testing.T) {
	tests := []struct {
		b    Behavior
		want string
	}{
		{Of(CompileError), "error"},
		{Of(DivZero), "div-by-zero"},
		{ReturnAny(), "return *"},
		{ReturnOf(-12), "return -12"},
		{Of(Skipped), "skipped"},
	}
	for _, tc := range tests {
		if got := tc.b.String(); got != tc.want {
			t.Errorf("String() = %q, want %q", got, tc.want)
		}
	}
}

func TestPredicate_Eval(t *testing.T) {
	cc0 := Capabilities{Libraries: true, Typechecked: true, GarbageCollected: true, Safe: true, Name: "cc0"}
	coin := Capabilities{Libraries: true, Typechecked: true, Name: "coin"}

	tests := []struct {
		name string
		p    Predicate
		cc0  bool
		coin bool
	}{
		{"gc", GarbageCollected, true, false},
		{"false", False, false, false},
		{"name", Name("coin"), false, true},
		{"not", Not{GarbageCollected}, false, true},
		{"and", And{Safe, Name("cc0")}, true, false},
		{"or", Or{Name("cc0"), Name("coin")}, true, true},
	}
	for _, tc := range tests {
		if got := tc.p.Eval(cc0); got != tc.cc0 {
			t.Errorf("%s: Eval(cc0) = %v, want %v", tc.name, got, tc.cc0)
		}
		if got := tc.p.Eval(coin); got != tc.coin {
			t.Errorf("%s: Eval(coin) = %v, want %v", tc.name, got, tc.coin)
		}
	}
}

func TestSpecs_String(t *testing.T) {
	specs := Specs{
		Implication{Predicate: Safe, Then: Of(Segfault)},
		Implication{Predicate: Not{Safe}, Then: Of(Runs)},
		Implication{Predicate: Or{Name("cc0"), And{Safe, Typechecked}}, Then: ReturnOf(5)},
	}
	want := "safe => segfault; !safe => runs; cc0 or safe, typecheck => return 5"
	if got := specs.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestTestInfo_Name(t *testing.T) {
	info := &TestInfo{
		Execution: ExecutionInfo{
			Sources: []string{"/work/tests/arith/add.c0", "/work/tests/arith/main.c1"},
			Options: []string{"-d"},
		},
	}
	if got, want := info.Name(), "arith/add.c0 arith/main.c1 -d"; got != want {
		t.Errorf("Name() = %q, want %q", got, want)
	}
	if !info.Execution.UsesExtension(".c1") {
		t.Errorf("expected .c1 source to be detected")
	}
}
