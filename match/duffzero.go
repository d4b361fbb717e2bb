// Package match recognizes the bulk-zeroing instruction idiom in raw
// amd64 code using a compiled calling-convention profile. The profile's
// duffzero and zero-register bindings exist precisely so that this kind
// of pattern matching does not hard-code register names per runtime
// version.
package match

import (
	"fmt"

	"golang.org/x/arch/x86/x86asm"

	"github.com/redecomp/goreginfo/abi"
	"github.com/redecomp/goreginfo/log"
	"github.com/redecomp/goreginfo/regerrors"
	"github.com/redecomp/goreginfo/regset"
)

// ZeroStore is one recognized store of the zero source register through
// the duffzero destination register.
type ZeroStore struct {
	Offset int // byte offset of the instruction in code
	Len    int // instruction length in bytes
	Width  int // bytes zeroed by the store
	Inst   x86asm.Inst
}

// ScanZeroStores decodes code linearly and reports every store of the
// profile's zero source through the profile's duffzero destination.
// Register-ABI profiles zero from the designated zero register; legacy
// profiles name an explicit zero source. Undecodable bytes are skipped
// one at a time so a bad prefix cannot desynchronize the whole scan.
func ScanZeroStores(code []byte, p *abi.Profile) ([]ZeroStore, error) {
	if p.Arch != regset.AMD64 {
		return nil, fmt.Errorf("zero-store scan is amd64 only, got %q: %w", p.Arch, regerrors.ErrVUnknownArch)
	}
	if p.DuffZero == nil {
		return nil, nil
	}
	dest, ok := regset.ToX86(string(p.DuffZero.Dest))
	if !ok {
		return nil, fmt.Errorf("duffzero dest %q: %w", p.DuffZero.Dest, regerrors.ErrVUnknownRegister)
	}
	zeroName := zeroSource(p)
	if zeroName == "" {
		return nil, nil
	}
	zero, ok := regset.ToX86(zeroName)
	if !ok {
		return nil, fmt.Errorf("zero source %q: %w", zeroName, regerrors.ErrVUnknownRegister)
	}

	var matches []ZeroStore
	offset := 0
	for offset < len(code) {
		inst, err := x86asm.Decode(code[offset:], 64)
		if err != nil {
			offset++
			continue
		}
		if isZeroStore(inst, dest, zero) {
			matches = append(matches, ZeroStore{
				Offset: offset,
				Len:    inst.Len,
				Width:  inst.MemBytes,
				Inst:   inst,
			})
			log.Trace(log.MatchMod, "zero store", "offset", offset, "inst", inst.String())
		}
		offset += inst.Len
	}
	return matches, nil
}

// zeroSource picks the register holding zero for this profile: the
// explicit duffzero source when the document names one, otherwise the
// profile's designated zero register.
func zeroSource(p *abi.Profile) string {
	if p.DuffZero.ZeroSrc != nil {
		return string(*p.DuffZero.ZeroSrc)
	}
	if p.ZeroReg != nil {
		return string(*p.ZeroReg)
	}
	return ""
}

func isZeroStore(inst x86asm.Inst, dest, zero x86asm.Reg) bool {
	switch inst.Op {
	case x86asm.MOVUPS, x86asm.MOVAPS, x86asm.MOVDQU, x86asm.MOVDQA, x86asm.MOV:
	default:
		return false
	}
	mem, ok := inst.Args[0].(x86asm.Mem)
	if !ok || mem.Base != dest || mem.Index != 0 {
		return false
	}
	src, ok := inst.Args[1].(x86asm.Reg)
	return ok && src == zero
}
