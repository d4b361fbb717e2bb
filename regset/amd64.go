package regset

import (
	"fmt"

	"golang.org/x/arch/x86/x86asm"
)

// The amd64 namespace uses Intel names: the 16 general-purpose 64-bit
// registers plus XMM0-XMM15. These are the names register info documents
// for x86-64 are written in.
var amd64Set = newSet(AMD64, buildAMD64())

func buildAMD64() map[string]Class {
	classes := map[string]Class{
		"RAX": ClassInt,
		"RBX": ClassInt,
		"RCX": ClassInt,
		"RDX": ClassInt,
		"RSI": ClassInt,
		"RDI": ClassInt,
		"RBP": ClassInt,
		"RSP": ClassInt,
	}
	for i := 8; i <= 15; i++ {
		classes[fmt.Sprintf("R%d", i)] = ClassInt
	}
	for i := 0; i <= 15; i++ {
		classes[fmt.Sprintf("XMM%d", i)] = ClassVector
	}
	return classes
}

var amd64ToX86 = buildAMD64ToX86()

func buildAMD64ToX86() map[string]x86asm.Reg {
	m := map[string]x86asm.Reg{
		"RAX": x86asm.RAX,
		"RBX": x86asm.RBX,
		"RCX": x86asm.RCX,
		"RDX": x86asm.RDX,
		"RSI": x86asm.RSI,
		"RDI": x86asm.RDI,
		"RBP": x86asm.RBP,
		"RSP": x86asm.RSP,
	}
	for i := 0; i <= 7; i++ {
		m[fmt.Sprintf("R%d", i+8)] = x86asm.R8 + x86asm.Reg(i)
	}
	for i := 0; i <= 15; i++ {
		m[fmt.Sprintf("XMM%d", i)] = x86asm.X0 + x86asm.Reg(i)
	}
	return m
}

// ToX86 maps an amd64 namespace name onto the x86asm decoder's register
// enum, so decoded instruction operands can be compared against profile
// role bindings.
func ToX86(name string) (x86asm.Reg, bool) {
	r, ok := amd64ToX86[name]
	return r, ok
}
