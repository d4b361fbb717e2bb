package goversion

import (
	"fmt"
	"strings"

	"github.com/redecomp/goreginfo/regerrors"
)

// Range is an inclusive version interval with optional bounds. A nil
// bound is open on that side. The zero Range contains every version.
//
// Source grammar, as written in register info documents:
//
//	"1.17+"     from 1.17 onward
//	"-1.16"     up to and including 1.16
//	"1.5-1.16"  bounded on both sides
//	"1.18"      exactly one release
type Range struct {
	Lo *Version
	Hi *Version
}

// ParseRange parses the range grammar above.
func ParseRange(s string) (Range, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return Range{}, fmt.Errorf("%q: %w", s, regerrors.ErrDBadVersionRange)
	}
	switch {
	case strings.HasSuffix(raw, "+"):
		lo, err := Parse(strings.TrimSuffix(raw, "+"))
		if err != nil {
			return Range{}, fmt.Errorf("%q: %w", s, regerrors.ErrDBadVersionRange)
		}
		return Range{Lo: &lo}, nil
	case strings.HasPrefix(raw, "-"):
		hi, err := Parse(strings.TrimPrefix(raw, "-"))
		if err != nil {
			return Range{}, fmt.Errorf("%q: %w", s, regerrors.ErrDBadVersionRange)
		}
		return Range{Hi: &hi}, nil
	case strings.Contains(raw, "-"):
		parts := strings.SplitN(raw, "-", 2)
		lo, err := Parse(parts[0])
		if err != nil {
			return Range{}, fmt.Errorf("%q: %w", s, regerrors.ErrDBadVersionRange)
		}
		hi, err := Parse(parts[1])
		if err != nil {
			return Range{}, fmt.Errorf("%q: %w", s, regerrors.ErrDBadVersionRange)
		}
		if hi.Compare(lo) < 0 {
			return Range{}, fmt.Errorf("%q: upper bound below lower bound: %w", s, regerrors.ErrDBadVersionRange)
		}
		return Range{Lo: &lo, Hi: &hi}, nil
	default:
		v, err := Parse(raw)
		if err != nil {
			return Range{}, fmt.Errorf("%q: %w", s, regerrors.ErrDBadVersionRange)
		}
		return Range{Lo: &v, Hi: &v}, nil
	}
}

// MustParseRange is ParseRange for trusted compile-time constants.
func MustParseRange(s string) Range {
	r, err := ParseRange(s)
	if err != nil {
		panic(err)
	}
	return r
}

// Contains reports whether v falls inside the range, bounds inclusive.
func (r Range) Contains(v Version) bool {
	if r.Lo != nil && v.Compare(*r.Lo) < 0 {
		return false
	}
	if r.Hi != nil && v.Compare(*r.Hi) > 0 {
		return false
	}
	return true
}

// Overlaps reports whether any version is contained in both ranges.
func (r Range) Overlaps(other Range) bool {
	if r.Hi != nil && other.Lo != nil && r.Hi.Compare(*other.Lo) < 0 {
		return false
	}
	if other.Hi != nil && r.Lo != nil && other.Hi.Compare(*r.Lo) < 0 {
		return false
	}
	return true
}

// OpenLower reports whether the range has no lower bound. At most one
// profile per document may have an open lower bound (ranges being
// disjoint), which makes it the natural fallback for unknown versions.
func (r Range) OpenLower() bool {
	return r.Lo == nil
}

func (r Range) String() string {
	switch {
	case r.Lo == nil && r.Hi == nil:
		return "-"
	case r.Lo == nil:
		return "-" + r.Hi.String()
	case r.Hi == nil:
		return r.Lo.String() + "+"
	case r.Lo.Compare(*r.Hi) == 0:
		return r.Lo.String()
	default:
		return r.Lo.String() + "-" + r.Hi.String()
	}
}
