package program

import (
	"fmt"

	"github.com/lumibot/lumibot/internal/types"
)

// Slot names one of the three program parts for alphabet selection.
type Slot uint8

const (
	SlotMain Slot = iota
	SlotProc1
	SlotProc2
)

// Primitives is the instruction alphabet without procedure calls, in
// canonical enumeration order.
var Primitives = []types.Instruction{
	types.Walk,
	types.Jump,
	types.Light,
	types.TurnLeft,
	types.TurnRight,
}

// Alphabet returns the legal instruction set for a slot given which
// procedures exist in the candidate shape. The result depends only on
// (slot, hasP1, hasP2) and always lists instructions in canonical order
// (primitives, then proc1, then proc2), which makes sequence indices
// reproducible across runs, the property checkpointing relies on.
func Alphabet(slot Slot, hasP1, hasP2 bool) []types.Instruction {
	if slot > SlotProc2 {
		panic(fmt.Sprintf("program: undefined slot %d", uint8(slot)))
	}

	// Main may call any existing procedure; a procedure may call itself
	// and the other procedure. With absent procedures excluded, all three
	// slots end up with the same legal set, but callers still pass the
	// slot so the rule stays explicit per part.
	a := make([]types.Instruction, len(Primitives), len(Primitives)+2)
	copy(a, Primitives)
	if hasP1 {
		a = append(a, types.CallProc1)
	}
	if hasP2 {
		a = append(a, types.CallProc2)
	}
	return a
}

// SequenceSpace is the space of all instruction sequences of a fixed
// length over a fixed alphabet. Each sequence is addressed by an integer
// index: the sequence is the index written in base len(Alphabet), most
// significant digit first. The mapping is total, deterministic and
// stateless, so a bare index is enough to resume an enumeration.
type SequenceSpace struct {
	Length   int
	Alphabet []types.Instruction
}

// Count returns the number of sequences in the space. A zero-length
// space contains exactly the empty sequence.
func (s SequenceSpace) Count() int64 {
	n := int64(1)
	for i := 0; i < s.Length; i++ {
		n *= int64(len(s.Alphabet))
	}
	return n
}

// At returns the sequence at the given index. Index 0 is the sequence of
// all first-alphabet instructions; Count()-1 is all last. Panics if the
// index is out of range: callers advance indices, they never guess them.
func (s SequenceSpace) At(index int64) []types.Instruction {
	if index < 0 || index >= s.Count() {
		panic(fmt.Sprintf("program: sequence index %d out of range [0,%d)", index, s.Count()))
	}
	if s.Length == 0 {
		return nil
	}
	radix := int64(len(s.Alphabet))
	seq := make([]types.Instruction, s.Length)
	for i := s.Length - 1; i >= 0; i-- {
		seq[i] = s.Alphabet[index%radix]
		index /= radix
	}
	return seq
}

// Odometer enumerates every (main, proc1, proc2) combination for one size
// distribution as three bounded counters advancing lexicographically,
// proc2 fastest. Unlike a generator it can report and restore its exact
// position, which is what makes search checkpoints possible.
type Odometer struct {
	spaces [3]SequenceSpace
	counts [3]int64
	idx    [3]int64
	done   bool
}

// NewOdometer creates an odometer over the three sequence spaces,
// positioned at the first combination.
func NewOdometer(main, p1, p2 SequenceSpace) *Odometer {
	o := &Odometer{spaces: [3]SequenceSpace{main, p1, p2}}
	for i, s := range o.spaces {
		o.counts[i] = s.Count()
	}
	return o
}

// NewShapeOdometer creates an odometer for a (mainSize, p1Size, p2Size)
// distribution using the canonical alphabets for that shape.
func NewShapeOdometer(mainSize, p1Size, p2Size int) *Odometer {
	hasP1 := p1Size > 0
	hasP2 := p2Size > 0
	return NewOdometer(
		SequenceSpace{Length: mainSize, Alphabet: Alphabet(SlotMain, hasP1, hasP2)},
		SequenceSpace{Length: p1Size, Alphabet: Alphabet(SlotProc1, hasP1, hasP2)},
		SequenceSpace{Length: p2Size, Alphabet: Alphabet(SlotProc2, hasP1, hasP2)},
	)
}

// Done reports whether the enumeration is exhausted.
func (o *Odometer) Done() bool { return o.done }

// Indices returns the current (main, proc1, proc2) position.
func (o *Odometer) Indices() (mainIdx, p1Idx, p2Idx int64) {
	return o.idx[0], o.idx[1], o.idx[2]
}

// Seek positions the odometer at an exact saved position.
func (o *Odometer) Seek(mainIdx, p1Idx, p2Idx int64) error {
	idx := [3]int64{mainIdx, p1Idx, p2Idx}
	for i, v := range idx {
		if v < 0 || v >= o.counts[i] {
			return fmt.Errorf("odometer seek: index %d out of range [0,%d)", v, o.counts[i])
		}
	}
	o.idx = idx
	o.done = false
	return nil
}

// Next advances to the following combination, carrying proc2 into proc1
// into main. After the last combination, Done reports true.
func (o *Odometer) Next() {
	if o.done {
		return
	}
	for i := 2; i >= 0; i-- {
		o.idx[i]++
		if o.idx[i] < o.counts[i] {
			return
		}
		o.idx[i] = 0
	}
	o.done = true
}

// Program materializes the candidate at the current position.
func (o *Odometer) Program() Program {
	return Program{
		Main:  o.spaces[0].At(o.idx[0]),
		Proc1: o.spaces[1].At(o.idx[1]),
		Proc2: o.spaces[2].At(o.idx[2]),
	}
}

// Count returns the total number of combinations in the odometer.
func (o *Odometer) Count() int64 {
	return o.counts[0] * o.counts[1] * o.counts[2]
}
