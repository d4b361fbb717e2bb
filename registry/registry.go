// Package registry loads register info documents and answers the one
// question hosts ask of them: which calling-convention profile applies
// to a binary built by a given runtime version.
package registry

import (
	"embed"
	"fmt"
	"os"

	"github.com/redecomp/goreginfo/abi"
	"github.com/redecomp/goreginfo/goversion"
	"github.com/redecomp/goreginfo/log"
	"github.com/redecomp/goreginfo/regerrors"
	"github.com/redecomp/goreginfo/regset"
)

//go:embed data/*.register.info
var builtinFS embed.FS

var builtinFile = map[regset.Arch]string{
	regset.AMD64: "data/amd64.register.info",
	regset.ARM64: "data/arm64.register.info",
}

// Registry is the compiled profile set of one architecture. It is built
// once and never mutated, so any number of readers may select from it
// concurrently without locking.
type Registry struct {
	arch     regset.Arch
	profiles []*abi.Profile
	fallback *abi.Profile
}

// Option adjusts registry construction.
type Option func(*config)

type config struct {
	fallbackRange *goversion.Range
}

// WithFallback pins the fallback profile to the record with exactly this
// version range, overriding the default open-lower-bound rule. Hosts
// with a documented fallback policy of their own set this.
func WithFallback(r goversion.Range) Option {
	return func(c *config) {
		c.fallbackRange = &r
	}
}

// Builtin returns the registry compiled from the embedded document for
// the given architecture.
func Builtin(arch regset.Arch, opts ...Option) (*Registry, error) {
	path, ok := builtinFile[arch]
	if !ok {
		return nil, fmt.Errorf("%q: %w", arch, regerrors.ErrVUnknownArch)
	}
	data, err := builtinFS.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return fromBytes(arch, data, opts...)
}

// FromFile reads a register info document from the filesystem. Authors
// use this to exercise documents before they are embedded.
func FromFile(arch regset.Arch, path string, opts ...Option) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return fromBytes(arch, data, opts...)
}

// FromDocument compiles an already-parsed document.
func FromDocument(arch regset.Arch, doc *abi.SDocument, opts ...Option) (*Registry, error) {
	set, err := regset.ForArch(arch)
	if err != nil {
		return nil, err
	}
	profiles, err := abi.CompileDocument(doc, set)
	if err != nil {
		return nil, err
	}
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}
	r := &Registry{arch: arch, profiles: profiles}
	r.fallback = pickFallback(profiles, cfg)
	log.Debug(log.RegistryMod, "registry compiled",
		"arch", arch, "profiles", len(profiles), "fallback", r.fallback != nil)
	return r, nil
}

func fromBytes(arch regset.Arch, data []byte, opts ...Option) (*Registry, error) {
	doc, err := abi.ParseDocument(data)
	if err != nil {
		return nil, err
	}
	return FromDocument(arch, doc, opts...)
}

// pickFallback resolves the profile returned for versions nothing
// matches. Default rule: the profile whose range has an open lower
// bound. Ranges are disjoint, so there is at most one.
func pickFallback(profiles []*abi.Profile, cfg *config) *abi.Profile {
	if cfg.fallbackRange != nil {
		want := cfg.fallbackRange.String()
		for _, p := range profiles {
			if p.Versions.String() == want {
				return p
			}
		}
		return nil
	}
	for _, p := range profiles {
		if p.Versions.OpenLower() {
			return p
		}
	}
	return nil
}

// Arch returns the architecture this registry covers.
func (r *Registry) Arch() regset.Arch {
	return r.arch
}

// Profiles returns the compiled profiles in document order.
func (r *Registry) Profiles() []*abi.Profile {
	out := make([]*abi.Profile, len(r.profiles))
	copy(out, r.profiles)
	return out
}

// Fallback returns the profile used for unrecognized versions, or nil.
func (r *Registry) Fallback() *abi.Profile {
	return r.fallback
}

// SelectVersion returns the single profile whose range contains v.
// Ranges are proven disjoint at compile time, so match order cannot
// affect the result.
func (r *Registry) SelectVersion(v goversion.Version) (*abi.Profile, error) {
	for _, p := range r.profiles {
		if p.Versions.Contains(v) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%s on %s: %w", v, r.arch, regerrors.ErrSNoProfile)
}

// Select resolves a version string as recovered from a target binary.
// Unparseable or unmatched versions deterministically resolve to the
// fallback profile when one is defined.
func (r *Registry) Select(version string) (*abi.Profile, error) {
	v, err := goversion.Parse(version)
	if err != nil {
		return r.selectFallback(version)
	}
	p, err := r.SelectVersion(v)
	if err != nil {
		return r.selectFallback(version)
	}
	log.Trace(log.RegistryMod, "profile selected", "version", version, "range", p.Versions.String())
	return p, nil
}

func (r *Registry) selectFallback(version string) (*abi.Profile, error) {
	if r.fallback == nil {
		return nil, fmt.Errorf("%q on %s: %w", version, r.arch, regerrors.ErrSNoFallback)
	}
	log.Warn(log.RegistryMod, "unrecognized runtime version, using fallback profile",
		"version", version, "range", r.fallback.Versions.String())
	return r.fallback, nil
}
