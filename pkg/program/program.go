// Package program defines bot programs (a main routine plus up to two
// procedures), their static validity rules, the deterministic enumeration
// of candidate instruction sequences, and the bounded executor that runs
// programs against an engine.
package program

import (
	"fmt"
	"strings"

	"github.com/lumibot/lumibot/internal/types"
)

// Program is a bot program: a main routine and two optional procedures.
// Main may call Proc1 and Proc2; each procedure may call itself and the
// other procedure. A Program is immutable once constructed.
type Program struct {
	Main  []types.Instruction
	Proc1 []types.Instruction
	Proc2 []types.Instruction
}

// TotalSize returns the summed instruction count of all three parts.
func (p Program) TotalSize() int {
	return len(p.Main) + len(p.Proc1) + len(p.Proc2)
}

// Key returns a compact comparable encoding of the program for
// deduplication. Two programs have equal keys iff their three parts are
// element-wise equal.
func (p Program) Key() string {
	buf := make([]byte, 0, p.TotalSize()+3)
	for _, part := range [][]types.Instruction{p.Main, p.Proc1, p.Proc2} {
		for _, instr := range part {
			buf = append(buf, byte(instr))
		}
		buf = append(buf, 0xff)
	}
	return string(buf)
}

// String renders the program with empty procedures omitted.
func (p Program) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "MAIN=%s", types.FormatInstructions(p.Main))
	if len(p.Proc1) > 0 {
		fmt.Fprintf(&b, " P1=%s", types.FormatInstructions(p.Proc1))
	}
	if len(p.Proc2) > 0 {
		fmt.Fprintf(&b, " P2=%s", types.FormatInstructions(p.Proc2))
	}
	return b.String()
}

func contains(seq []types.Instruction, instr types.Instruction) bool {
	for _, i := range seq {
		if i == instr {
			return true
		}
	}
	return false
}

// Valid applies the cheap static checks that reject a candidate before
// execution:
//
//   - main must be non-empty
//   - no part may call a procedure that has no body
//   - a non-empty procedure must be referenced from main or the other
//     procedure, or at least call itself (dead code otherwise)
//   - a procedure whose body is exactly one call to itself never
//     terminates and makes no progress
//   - Proc1=[proc2] with Proc2=[proc1] is the same loop split in two
//
// These rules are game-legality filters, not errors: an invalid program
// is simply skipped by search.
func (p Program) Valid() bool {
	if len(p.Main) == 0 {
		return false
	}

	hasP1 := len(p.Proc1) > 0
	hasP2 := len(p.Proc2) > 0
	for _, part := range [][]types.Instruction{p.Main, p.Proc1, p.Proc2} {
		if !hasP1 && contains(part, types.CallProc1) {
			return false
		}
		if !hasP2 && contains(part, types.CallProc2) {
			return false
		}
	}

	if hasP1 &&
		!contains(p.Main, types.CallProc1) &&
		!contains(p.Proc2, types.CallProc1) &&
		!contains(p.Proc1, types.CallProc1) {
		return false
	}
	if hasP2 &&
		!contains(p.Main, types.CallProc2) &&
		!contains(p.Proc1, types.CallProc2) &&
		!contains(p.Proc2, types.CallProc2) {
		return false
	}

	if len(p.Proc1) == 1 && p.Proc1[0] == types.CallProc1 {
		return false
	}
	if len(p.Proc2) == 1 && p.Proc2[0] == types.CallProc2 {
		return false
	}
	if len(p.Proc1) == 1 && p.Proc1[0] == types.CallProc2 &&
		len(p.Proc2) == 1 && p.Proc2[0] == types.CallProc1 {
		return false
	}

	return true
}
