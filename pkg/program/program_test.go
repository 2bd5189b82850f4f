package program

import (
	"testing"

	"github.com/lumibot/lumibot/internal/types"
)

func TestTotalSize(t *testing.T) {
	p := Program{
		Main:  []types.Instruction{types.Walk, types.CallProc1},
		Proc1: []types.Instruction{types.Light},
	}
	if got := p.TotalSize(); got != 3 {
		t.Errorf("TotalSize = %d, want 3", got)
	}
}

func TestValid(t *testing.T) {
	w := types.Walk
	l := types.Light
	c1 := types.CallProc1
	c2 := types.CallProc2

	tests := []struct {
		name string
		p    Program
		want bool
	}{
		{"basic main", Program{Main: []types.Instruction{w, l}}, true},
		{"empty main", Program{}, false},
		{"main calls existing proc", Program{
			Main:  []types.Instruction{c1},
			Proc1: []types.Instruction{w, l},
		}, true},
		{"main calls absent proc1", Program{Main: []types.Instruction{c1}}, false},
		{"proc calls absent proc2", Program{
			Main:  []types.Instruction{c1},
			Proc1: []types.Instruction{c2},
		}, false},
		{"dead proc1", Program{
			Main:  []types.Instruction{w},
			Proc1: []types.Instruction{l},
		}, false},
		{"proc1 reachable via proc2", Program{
			Main:  []types.Instruction{c2},
			Proc1: []types.Instruction{w},
			Proc2: []types.Instruction{c1, l},
		}, true},
		{"self-call-only proc1", Program{
			Main:  []types.Instruction{c1},
			Proc1: []types.Instruction{c1},
		}, false},
		{"self-call-only proc2", Program{
			Main:  []types.Instruction{c2},
			Proc2: []types.Instruction{c2},
		}, false},
		{"mutual no-op cycle", Program{
			Main:  []types.Instruction{c1},
			Proc1: []types.Instruction{c2},
			Proc2: []types.Instruction{c1},
		}, false},
		{"productive mutual recursion", Program{
			Main:  []types.Instruction{c1},
			Proc1: []types.Instruction{w, c2},
			Proc2: []types.Instruction{l, c1},
		}, true},
		{"self-recursive proc1", Program{
			Main:  []types.Instruction{c1},
			Proc1: []types.Instruction{w, l, c1},
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v (%s)", got, tt.want, tt.p)
			}
		})
	}
}

func TestKey(t *testing.T) {
	a := Program{Main: []types.Instruction{types.Walk}, Proc1: []types.Instruction{types.Light}}
	b := Program{Main: []types.Instruction{types.Walk}, Proc1: []types.Instruction{types.Light}}
	c := Program{Main: []types.Instruction{types.Walk, types.Light}}

	if a.Key() != b.Key() {
		t.Error("equal programs should have equal keys")
	}
	if a.Key() == c.Key() {
		t.Error("distinct programs should have distinct keys")
	}

	// The part boundary must matter: main=[walk light] vs main=[walk],
	// proc1=[light] have the same flattened instructions.
	d := Program{Main: []types.Instruction{types.Walk, types.Light}}
	e := Program{Main: []types.Instruction{types.Walk}, Proc1: []types.Instruction{types.Light}}
	if d.Key() == e.Key() {
		t.Error("keys must distinguish part boundaries")
	}
}

func TestString(t *testing.T) {
	p := Program{Main: []types.Instruction{types.Walk}}
	if got, want := p.String(), "MAIN=[walk]"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}

	p.Proc1 = []types.Instruction{types.Light}
	if got, want := p.String(), "MAIN=[walk] P1=[light]"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
