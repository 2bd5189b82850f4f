package engine

import (
	"strings"
	"testing"

	"github.com/lumibot/lumibot/internal/types"
	"github.com/lumibot/lumibot/pkg/level"
)

func mustLevel(t *testing.T, text string) *level.Level {
	t.Helper()
	l, err := level.Parse(text)
	if err != nil {
		t.Fatalf("parse level: %v", err)
	}
	return l
}

func mustEngine(t *testing.T, text string) *Engine {
	t.Helper()
	e, err := New(mustLevel(t, text))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return e
}

// flat 1x4 corridor, light at the far end.
const corridor = `
level 1
start 0 0 SE
map
. . . l0
`

// steps of increasing height with a light on top.
const stairs = `
level 2
start 0 0 SE
map
. p1 p3 l3
`

// elevator between the bot and a raised light.
const elevatorLevel = `
level 3
start 0 0 SE
map
. e0 l2
`

func TestWalk(t *testing.T) {
	e := mustEngine(t, corridor)

	if !e.Step(types.Walk) {
		t.Fatal("walk on equal height should succeed")
	}
	if e.Bot() != (types.Coord{X: 1, Y: 0}) {
		t.Fatalf("bot at %v, want (1,0)", e.Bot())
	}

	// Walking off the edge is a no-op.
	e2 := mustEngine(t, corridor)
	e2.Step(types.TurnLeft)
	e2.Step(types.TurnLeft) // facing NW
	if e2.Step(types.Walk) {
		t.Error("walk out of bounds should fail")
	}
	if e2.Bot() != (types.Coord{X: 0, Y: 0}) {
		t.Errorf("bot moved to %v on failed walk", e2.Bot())
	}
}

func TestWalkHeightMismatch(t *testing.T) {
	e := mustEngine(t, stairs)
	if e.Step(types.Walk) {
		t.Error("walk onto higher tile should fail")
	}
	if e.Bot() != (types.Coord{X: 0, Y: 0}) {
		t.Errorf("bot moved to %v on failed walk", e.Bot())
	}
}

func TestJump(t *testing.T) {
	e := mustEngine(t, stairs)

	// Up exactly one level: ok.
	if !e.Step(types.Jump) {
		t.Fatal("jump up one level should succeed")
	}
	// Up two levels: no.
	if e.Step(types.Jump) {
		t.Error("jump up two levels should fail")
	}
	if e.Bot() != (types.Coord{X: 1, Y: 0}) {
		t.Fatalf("bot at %v, want (1,0)", e.Bot())
	}

	// Down any amount: ok. Turn around and jump back down.
	e.Step(types.TurnLeft)
	e.Step(types.TurnLeft)
	if !e.Step(types.Jump) {
		t.Error("jump down should succeed")
	}

	// Jump between equal heights: no.
	e2 := mustEngine(t, corridor)
	if e2.Step(types.Jump) {
		t.Error("jump between equal heights should fail")
	}
}

func TestLightToggle(t *testing.T) {
	e := mustEngine(t, corridor)

	// Light on a plain tile does nothing.
	if e.Step(types.Light) {
		t.Error("light on plain tile should be a no-op")
	}

	for i := 0; i < 3; i++ {
		e.Step(types.Walk)
	}
	if !e.Step(types.Light) {
		t.Fatal("light on light tile should succeed")
	}
	if !e.IsSolved() {
		t.Fatal("level should be solved with its single light lit")
	}

	// Toggling again turns it back off.
	if !e.Step(types.Light) {
		t.Fatal("second light should also succeed")
	}
	if e.IsSolved() {
		t.Error("level should be unsolved after toggling the light off")
	}
}

func TestElevator(t *testing.T) {
	e := mustEngine(t, elevatorLevel)
	e.Step(types.Walk) // onto the elevator at height 0

	// Heights cycle 0 -> 2 -> 4 -> 0.
	for i, want := range []uint8{2, 4, 0} {
		if !e.Step(types.Light) {
			t.Fatalf("elevator action %d should succeed", i)
		}
		if got := e.CurrentHeight(); got != want {
			t.Fatalf("elevator height after action %d = %d, want %d", i, got, want)
		}
	}

	// Raise to 2 and walk onto the height-2 light.
	e.Step(types.Light)
	if !e.Step(types.Walk) {
		t.Fatal("walk from raised elevator onto equal-height light should succeed")
	}
	if !e.Step(types.Light) || !e.IsSolved() {
		t.Fatal("lighting the single light should solve the level")
	}
}

func TestFourTurnsIdentity(t *testing.T) {
	for _, instr := range []types.Instruction{types.TurnLeft, types.TurnRight} {
		e := mustEngine(t, corridor)
		start := e.Facing()
		for i := 0; i < 4; i++ {
			if !e.Step(instr) {
				t.Fatalf("%v should always succeed", instr)
			}
		}
		if e.Facing() != start {
			t.Errorf("four %v: facing %v, want %v", instr, e.Facing(), start)
		}
	}
}

func TestCloneIndependence(t *testing.T) {
	e := mustEngine(t, elevatorLevel)
	c := e.Clone()

	// Mutate the clone: move, raise the elevator.
	c.Step(types.Walk)
	c.Step(types.Light)

	if e.Bot() != (types.Coord{X: 0, Y: 0}) {
		t.Errorf("source bot moved to %v", e.Bot())
	}
	if h := e.HeightAt(1, 0); h != 0 {
		t.Errorf("source elevator height changed to %d", h)
	}

	// And the other way around.
	e.Step(types.TurnLeft)
	if c.Facing() == e.Facing() {
		t.Error("clone facing changed with source")
	}
}

func TestStateHash(t *testing.T) {
	e := mustEngine(t, elevatorLevel)
	h0 := e.StateHash()

	if e.Clone().StateHash() != h0 {
		t.Error("clone hash differs from source")
	}

	// Facing changes the hash.
	e.Step(types.TurnLeft)
	if e.StateHash() == h0 {
		t.Error("hash unchanged after turn")
	}
	e.Step(types.TurnRight)
	if e.StateHash() != h0 {
		t.Error("hash not restored after reverse turn")
	}

	// Elevator height changes the hash even with the bot pose equal.
	e.Step(types.Walk)
	before := e.StateHash()
	e.Step(types.Light)
	if e.StateHash() == before {
		t.Error("hash unchanged after elevator action")
	}

	// Reset restores the initial hash.
	e.Reset()
	if e.StateHash() != h0 {
		t.Error("hash not restored by Reset")
	}
}

func TestStepContractViolation(t *testing.T) {
	e := mustEngine(t, corridor)

	defer func() {
		if recover() == nil {
			t.Error("expected panic for undefined instruction")
		}
	}()
	e.Step(types.Instruction(42))
}

func TestStepCallInstructions(t *testing.T) {
	e := mustEngine(t, corridor)
	h := e.StateHash()
	if e.Step(types.CallProc1) || e.Step(types.CallProc2) {
		t.Error("call instructions should not change engine state")
	}
	if e.StateHash() != h {
		t.Error("state changed by call instruction")
	}
}

func TestRender(t *testing.T) {
	e := mustEngine(t, elevatorLevel)
	out := e.Render()
	for _, want := range []string{"v", "[0]", " o "} {
		if !strings.Contains(out, want) {
			t.Errorf("render missing %q:\n%s", want, out)
		}
	}
}
