// Package regset defines the fixed register namespaces of the supported
// target architectures. Register info documents may only reference names
// drawn from these namespaces; anything else is a data-authoring mistake
// rejected at load time.
package regset

import (
	"fmt"
	"sort"

	"github.com/redecomp/goreginfo/regerrors"
)

// Arch names a supported target architecture.
type Arch string

const (
	AMD64 Arch = "amd64"
	ARM64 Arch = "arm64"
)

// ParseArch validates an architecture name.
func ParseArch(s string) (Arch, error) {
	switch Arch(s) {
	case AMD64:
		return AMD64, nil
	case ARM64:
		return ARM64, nil
	default:
		return "", fmt.Errorf("%q: %w", s, regerrors.ErrVUnknownArch)
	}
}

// Class partitions a namespace by register kind.
type Class int

const (
	ClassInt Class = iota
	ClassFloat
	ClassVector
	ClassSpecial
)

func (c Class) String() string {
	switch c {
	case ClassInt:
		return "int"
	case ClassFloat:
		return "float"
	case ClassVector:
		return "vector"
	case ClassSpecial:
		return "special"
	default:
		return "unknown"
	}
}

// Set is the immutable register namespace of one architecture.
type Set struct {
	arch    Arch
	classes map[string]Class
}

// ForArch returns the namespace for the given architecture.
func ForArch(arch Arch) (*Set, error) {
	switch arch {
	case AMD64:
		return amd64Set, nil
	case ARM64:
		return arm64Set, nil
	default:
		return nil, fmt.Errorf("%q: %w", arch, regerrors.ErrVUnknownArch)
	}
}

// Arch returns the architecture this namespace belongs to.
func (s *Set) Arch() Arch {
	return s.arch
}

// Contains reports whether name is part of the namespace.
func (s *Set) Contains(name string) bool {
	_, ok := s.classes[name]
	return ok
}

// ClassOf returns the class of a register name.
func (s *Set) ClassOf(name string) (Class, bool) {
	c, ok := s.classes[name]
	return c, ok
}

// Names returns all register names in the namespace, sorted.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.classes))
	for name := range s.classes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func newSet(arch Arch, classes map[string]Class) *Set {
	return &Set{arch: arch, classes: classes}
}
