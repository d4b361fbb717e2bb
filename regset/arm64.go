package regset

import (
	"fmt"

	"golang.org/x/arch/arm64/arm64asm"
)

// The arm64 namespace uses hardware names: X0-X30, the zero register and
// stack pointer, and the D0-D31 floating-point views. The Go toolchain's
// R-numbered assembler aliases are not part of the document vocabulary.
var arm64Set = newSet(ARM64, buildARM64())

func buildARM64() map[string]Class {
	classes := map[string]Class{
		"XZR": ClassSpecial,
		"SP":  ClassSpecial,
	}
	for i := 0; i <= 30; i++ {
		classes[fmt.Sprintf("X%d", i)] = ClassInt
	}
	for i := 0; i <= 31; i++ {
		classes[fmt.Sprintf("D%d", i)] = ClassFloat
	}
	return classes
}

var arm64ToA64 = buildARM64ToA64()

func buildARM64ToA64() map[string]arm64asm.Reg {
	m := map[string]arm64asm.Reg{
		"XZR": arm64asm.XZR,
		"SP":  arm64asm.SP,
	}
	for i := 0; i <= 30; i++ {
		m[fmt.Sprintf("X%d", i)] = arm64asm.X0 + arm64asm.Reg(i)
	}
	for i := 0; i <= 31; i++ {
		m[fmt.Sprintf("D%d", i)] = arm64asm.D0 + arm64asm.Reg(i)
	}
	return m
}

// ToA64 maps an arm64 namespace name onto the arm64asm decoder's register
// enum.
func ToA64(name string) (arm64asm.Reg, bool) {
	r, ok := arm64ToA64[name]
	return r, ok
}
