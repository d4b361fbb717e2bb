// Package abi models Golang calling-convention profiles: the ordered
// argument register lists, stack layout and special register role
// bindings a disassembly framework needs to reason about compiled Go
// code, keyed by runtime version range.
package abi

import (
	"fmt"
	"strings"

	"github.com/redecomp/goreginfo/goversion"
	"github.com/redecomp/goreginfo/regset"
)

// Register is a name drawn from one architecture's namespace.
type Register string

// ZeroKind tags the class of a duffzero zero-source register.
type ZeroKind int

const (
	ZeroKindNone ZeroKind = iota
	ZeroKindInt
	ZeroKindFloat
)

func (k ZeroKind) String() string {
	switch k {
	case ZeroKindInt:
		return "int"
	case ZeroKindFloat:
		return "float"
	default:
		return ""
	}
}

// DuffZero identifies the bulk-zeroing instruction idiom: the register
// the idiom writes through, and, where the zero source is not implicit,
// the register holding the zero value.
type DuffZero struct {
	Dest     Register
	ZeroSrc  *Register
	ZeroKind ZeroKind
}

// Profile is one compiled register-convention record. It is immutable
// after CompileDocument returns it; the registry hands the same Profile
// to any number of concurrent readers.
//
// Optional roles are nil when the version range has no such register.
// The legacy stack-based ABI, for instance, reserves no current-goroutine
// register on amd64.
type Profile struct {
	Arch     regset.Arch
	Versions goversion.Range

	// Argument registers in positional assignment order. Empty for
	// stack-based ABI ranges.
	IntArgRegs   []Register
	FloatArgRegs []Register

	StackInitialOffset int
	StackMaxAlign      int

	CurrentGoroutine *Register
	ZeroReg          *Register
	DuffZero         *DuffZero
	ClosureContext   *Register
}

// RegisterABI reports whether this range passes arguments in registers.
func (p *Profile) RegisterABI() bool {
	return len(p.IntArgRegs) > 0
}

func (p *Profile) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s", p.Arch, p.Versions)
	if p.RegisterABI() {
		sb.WriteString(" register-abi")
	} else {
		sb.WriteString(" stack-abi")
	}
	return sb.String()
}

func optReg(r *Register) string {
	if r == nil {
		return "-"
	}
	return string(*r)
}

// Describe renders the profile for human consumption, one role per line.
func (p *Profile) Describe() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "versions:          %s\n", p.Versions)
	fmt.Fprintf(&sb, "int arg regs:      %s\n", joinRegs(p.IntArgRegs))
	fmt.Fprintf(&sb, "float arg regs:    %s\n", joinRegs(p.FloatArgRegs))
	fmt.Fprintf(&sb, "stack:             offset=%d maxalign=%d\n", p.StackInitialOffset, p.StackMaxAlign)
	fmt.Fprintf(&sb, "current goroutine: %s\n", optReg(p.CurrentGoroutine))
	fmt.Fprintf(&sb, "zero register:     %s\n", optReg(p.ZeroReg))
	if p.DuffZero != nil {
		fmt.Fprintf(&sb, "duffzero:          dest=%s", p.DuffZero.Dest)
		if p.DuffZero.ZeroSrc != nil {
			fmt.Fprintf(&sb, " zero=%s kind=%s", *p.DuffZero.ZeroSrc, p.DuffZero.ZeroKind)
		}
		sb.WriteByte('\n')
	} else {
		sb.WriteString("duffzero:          -\n")
	}
	fmt.Fprintf(&sb, "closure context:   %s\n", optReg(p.ClosureContext))
	return sb.String()
}

func joinRegs(regs []Register) string {
	if len(regs) == 0 {
		return "-"
	}
	names := make([]string, len(regs))
	for i, r := range regs {
		names[i] = string(r)
	}
	return strings.Join(names, ",")
}
