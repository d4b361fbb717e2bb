package abi

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/redecomp/goreginfo/goversion"
	"github.com/redecomp/goreginfo/log"
	"github.com/redecomp/goreginfo/regerrors"
	"github.com/redecomp/goreginfo/regset"
)

// CompileDocument turns a parsed document into typed immutable profiles,
// validating eagerly so that nothing downstream has to cope with
// half-formed data. All validation failures are fatal: a register info
// document is authored, not computed, so a bad record is a bug in the
// data, not a runtime condition.
func CompileDocument(doc *SDocument, set *regset.Set) ([]*Profile, error) {
	if len(doc.Records) == 0 {
		return nil, regerrors.ErrDEmptyDocument
	}
	profiles := make([]*Profile, 0, len(doc.Records))
	for i := range doc.Records {
		p, err := compileRecord(&doc.Records[i], set)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		profiles = append(profiles, p)
	}

	// Ranges must be proven pairwise disjoint, not assumed.
	for i := 0; i < len(profiles); i++ {
		for j := i + 1; j < len(profiles); j++ {
			if profiles[i].Versions.Overlaps(profiles[j].Versions) {
				return nil, fmt.Errorf("%s and %s: %w",
					profiles[i].Versions, profiles[j].Versions, regerrors.ErrVOverlappingRanges)
			}
		}
	}
	warnCoverageGaps(set.Arch(), profiles)
	return profiles, nil
}

func compileRecord(rec *SRegisterInfo, set *regset.Set) (*Profile, error) {
	versions, err := goversion.ParseRange(rec.Versions)
	if err != nil {
		return nil, err
	}
	p := &Profile{
		Arch:     set.Arch(),
		Versions: versions,
	}

	if p.IntArgRegs, err = splitRegList(rec.IntRegisters.List, set); err != nil {
		return nil, fmt.Errorf("int_registers: %w", err)
	}
	if p.FloatArgRegs, err = splitRegList(rec.FloatRegisters.List, set); err != nil {
		return nil, fmt.Errorf("float_registers: %w", err)
	}

	if p.StackInitialOffset, err = strconv.Atoi(rec.Stack.InitialOffset); err != nil {
		return nil, fmt.Errorf("initialoffset %q: %w", rec.Stack.InitialOffset, regerrors.ErrDBadStackAttr)
	}
	if p.StackMaxAlign, err = strconv.Atoi(rec.Stack.MaxAlign); err != nil {
		return nil, fmt.Errorf("maxalign %q: %w", rec.Stack.MaxAlign, regerrors.ErrDBadStackAttr)
	}
	if p.StackMaxAlign <= 0 || p.StackMaxAlign&(p.StackMaxAlign-1) != 0 {
		return nil, fmt.Errorf("maxalign %d: %w", p.StackMaxAlign, regerrors.ErrVBadAlignment)
	}

	if p.CurrentGoroutine, err = bindOptional(rec.CurrentGoroutine, set); err != nil {
		return nil, fmt.Errorf("current_goroutine: %w", err)
	}
	if p.ZeroReg, err = bindOptional(rec.ZeroRegister, set); err != nil {
		return nil, fmt.Errorf("zero_register: %w", err)
	}
	if p.ClosureContext, err = bindOptional(rec.ClosureContext, set); err != nil {
		return nil, fmt.Errorf("closure_context: %w", err)
	}
	if p.DuffZero, err = bindDuffZero(rec.DuffZero, set); err != nil {
		return nil, err
	}

	// A register reserved for a disjoint-usage role cannot double as an
	// argument register. The document format cannot express this
	// constraint, so it is enforced here.
	for _, role := range []*Register{p.ZeroReg, p.CurrentGoroutine} {
		if role == nil {
			continue
		}
		for _, arg := range p.IntArgRegs {
			if arg == *role {
				return nil, fmt.Errorf("%s: %w", *role, regerrors.ErrVRoleConflict)
			}
		}
		for _, arg := range p.FloatArgRegs {
			if arg == *role {
				return nil, fmt.Errorf("%s: %w", *role, regerrors.ErrVRoleConflict)
			}
		}
	}
	return p, nil
}

func splitRegList(list string, set *regset.Set) ([]Register, error) {
	if strings.TrimSpace(list) == "" {
		return nil, nil
	}
	parts := strings.Split(list, ",")
	regs := make([]Register, 0, len(parts))
	for _, part := range parts {
		name := strings.TrimSpace(part)
		if !set.Contains(name) {
			return nil, fmt.Errorf("%q: %w", name, regerrors.ErrVUnknownRegister)
		}
		regs = append(regs, Register(name))
	}
	return regs, nil
}

// bindOptional resolves an optional role binding. An absent element and
// an element with register="" both mean the profile has no such register.
func bindOptional(b *SRegBinding, set *regset.Set) (*Register, error) {
	if b == nil || b.Register == "" {
		return nil, nil
	}
	if !set.Contains(b.Register) {
		return nil, fmt.Errorf("%q: %w", b.Register, regerrors.ErrVUnknownRegister)
	}
	r := Register(b.Register)
	return &r, nil
}

func bindDuffZero(dz *SDuffZero, set *regset.Set) (*DuffZero, error) {
	if dz == nil {
		return nil, nil
	}
	if dz.Dest == "" {
		return nil, fmt.Errorf("duffzero: %w", regerrors.ErrVMissingDuffDest)
	}
	if !set.Contains(dz.Dest) {
		return nil, fmt.Errorf("duffzero dest %q: %w", dz.Dest, regerrors.ErrVUnknownRegister)
	}
	out := &DuffZero{Dest: Register(dz.Dest)}
	if dz.Zero != "" {
		if !set.Contains(dz.Zero) {
			return nil, fmt.Errorf("duffzero zero %q: %w", dz.Zero, regerrors.ErrVUnknownRegister)
		}
		src := Register(dz.Zero)
		out.ZeroSrc = &src
		switch dz.ZeroKind {
		case "int":
			out.ZeroKind = ZeroKindInt
		case "float":
			out.ZeroKind = ZeroKindFloat
		default:
			return nil, fmt.Errorf("duffzero zero_kind %q: %w", dz.ZeroKind, regerrors.ErrVBadZeroKind)
		}
	} else if dz.ZeroKind != "" {
		return nil, fmt.Errorf("duffzero zero_kind %q without zero source: %w", dz.ZeroKind, regerrors.ErrVBadZeroKind)
	}
	return out, nil
}

// warnCoverageGaps flags version space the records leave uncovered.
// Conventions change at minor releases, so the check runs at minor
// granularity. A gap is suspicious but not fatal: a document may cover
// only the ranges its authors have verified.
func warnCoverageGaps(arch regset.Arch, profiles []*Profile) {
	sorted := make([]*Profile, len(profiles))
	copy(sorted, profiles)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i].Versions.Lo, sorted[j].Versions.Lo
		if a == nil {
			return true
		}
		if b == nil {
			return false
		}
		return a.Compare(*b) < 0
	})
	for i := 0; i+1 < len(sorted); i++ {
		hi, lo := sorted[i].Versions.Hi, sorted[i+1].Versions.Lo
		if hi == nil || lo == nil {
			continue
		}
		if lo.Major != hi.Major || lo.Minor != hi.Minor+1 {
			log.Warn(log.AbiMod, "version coverage gap between records",
				"arch", arch, "below", sorted[i].Versions.String(), "above", sorted[i+1].Versions.String())
		}
	}
}
