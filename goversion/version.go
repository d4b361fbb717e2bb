package goversion

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/redecomp/goreginfo/regerrors"
)

// Version identifies a Go runtime release at major.minor[.patch]
// granularity. Calling conventions only ever change at minor releases,
// but version strings recovered from binaries often carry a patch
// component, so it participates in ordering.
type Version struct {
	Major int
	Minor int
	Patch int
}

// Parse accepts "1.18", "1.18.3" and the "go1.18" prefix form embedded in
// compiled binaries.
func Parse(s string) (Version, error) {
	raw := strings.TrimSpace(s)
	raw = strings.TrimPrefix(raw, "go")
	if raw == "" {
		return Version{}, fmt.Errorf("%q: %w", s, regerrors.ErrDBadVersionString)
	}
	parts := strings.Split(raw, ".")
	if len(parts) < 2 || len(parts) > 3 {
		return Version{}, fmt.Errorf("%q: %w", s, regerrors.ErrDBadVersionString)
	}
	nums := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return Version{}, fmt.Errorf("%q: %w", s, regerrors.ErrDBadVersionString)
		}
		nums[i] = n
	}
	v := Version{Major: nums[0], Minor: nums[1]}
	if len(nums) == 3 {
		v.Patch = nums[2]
	}
	return v, nil
}

// MustParse is Parse for trusted compile-time constants.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Compare returns -1, 0 or 1 ordering v against other.
func (v Version) Compare(other Version) int {
	if v.Major != other.Major {
		if v.Major < other.Major {
			return -1
		}
		return 1
	}
	if v.Minor != other.Minor {
		if v.Minor < other.Minor {
			return -1
		}
		return 1
	}
	if v.Patch != other.Patch {
		if v.Patch < other.Patch {
			return -1
		}
		return 1
	}
	return 0
}

func (v Version) String() string {
	if v.Patch != 0 {
		return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	}
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}
