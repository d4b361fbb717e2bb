package registry

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/nsf/jsondiff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redecomp/goreginfo/abi"
	"github.com/redecomp/goreginfo/goversion"
	"github.com/redecomp/goreginfo/regerrors"
	"github.com/redecomp/goreginfo/regset"
)

func TestBuiltinAMD64(t *testing.T) {
	reg, err := Builtin(regset.AMD64)
	require.NoError(t, err)
	assert.Equal(t, regset.AMD64, reg.Arch())
	require.Len(t, reg.Profiles(), 2)

	p, err := reg.Select("1.18")
	require.NoError(t, err)
	assert.Equal(t, []abi.Register{"RAX", "RBX", "RCX", "RDI", "RSI", "R8", "R9", "R10", "R11"}, p.IntArgRegs)
	require.NotNil(t, p.CurrentGoroutine)
	assert.Equal(t, abi.Register("R14"), *p.CurrentGoroutine)

	p, err = reg.Select("1.10")
	require.NoError(t, err)
	assert.Nil(t, p.CurrentGoroutine)
	require.NotNil(t, p.DuffZero)
	assert.Equal(t, abi.Register("RDI"), p.DuffZero.Dest)
	require.NotNil(t, p.DuffZero.ZeroSrc)
	assert.Equal(t, abi.Register("XMM0"), *p.DuffZero.ZeroSrc)
	assert.Equal(t, abi.ZeroKindFloat, p.DuffZero.ZeroKind)
}

func TestBuiltinARM64(t *testing.T) {
	reg, err := Builtin(regset.ARM64)
	require.NoError(t, err)
	require.Len(t, reg.Profiles(), 2)

	p, err := reg.Select("go1.20.4")
	require.NoError(t, err)
	assert.True(t, p.RegisterABI())
	require.NotNil(t, p.CurrentGoroutine)
	assert.Equal(t, abi.Register("X28"), *p.CurrentGoroutine)
	require.NotNil(t, p.ZeroReg)
	assert.Equal(t, abi.Register("XZR"), *p.ZeroReg)
}

// Version ranges of every builtin document are pairwise disjoint.
func TestBuiltinRangesDisjoint(t *testing.T) {
	for _, arch := range []regset.Arch{regset.AMD64, regset.ARM64} {
		reg, err := Builtin(arch)
		require.NoError(t, err)
		profiles := reg.Profiles()
		for i := 0; i < len(profiles); i++ {
			for j := i + 1; j < len(profiles); j++ {
				assert.False(t, profiles[i].Versions.Overlaps(profiles[j].Versions),
					"%s: %s overlaps %s", arch, profiles[i].Versions, profiles[j].Versions)
			}
		}
	}
}

// Unrecognized version strings resolve deterministically to the one
// fallback profile, the record with an open lower bound.
func TestSelectFallback(t *testing.T) {
	reg, err := Builtin(regset.AMD64)
	require.NoError(t, err)

	require.NotNil(t, reg.Fallback())
	assert.Equal(t, "-1.16", reg.Fallback().Versions.String())

	for _, version := range []string{"", "unknown", "devel +abc123", "weird.version"} {
		p1, err := reg.Select(version)
		require.NoError(t, err, version)
		p2, err := reg.Select(version)
		require.NoError(t, err, version)
		assert.Same(t, p1, p2, version)
		assert.Same(t, reg.Fallback(), p1, version)
	}
}

func TestWithFallbackOverride(t *testing.T) {
	reg, err := Builtin(regset.AMD64, WithFallback(goversion.MustParseRange("1.17+")))
	require.NoError(t, err)

	p, err := reg.Select("unknown")
	require.NoError(t, err)
	assert.Equal(t, "1.17+", p.Versions.String())
}

func TestNoFallback(t *testing.T) {
	doc, err := abi.ParseDocument([]byte(`<golang>
		<register_info versions="1.17+">
			<int_registers list="RAX"/>
			<float_registers list=""/>
			<stack initialoffset="8" maxalign="8"/>
		</register_info>
	</golang>`))
	require.NoError(t, err)
	reg, err := FromDocument(regset.AMD64, doc)
	require.NoError(t, err)
	assert.Nil(t, reg.Fallback())

	_, err = reg.Select("unknown")
	assert.ErrorIs(t, err, regerrors.ErrSNoFallback)

	_, err = reg.SelectVersion(goversion.MustParse("1.10"))
	assert.ErrorIs(t, err, regerrors.ErrSNoProfile)
}

func TestSelectVersionBounds(t *testing.T) {
	reg, err := Builtin(regset.AMD64)
	require.NoError(t, err)

	p, err := reg.SelectVersion(goversion.MustParse("1.17"))
	require.NoError(t, err)
	assert.Equal(t, "1.17+", p.Versions.String())

	p, err = reg.SelectVersion(goversion.MustParse("1.16.15"))
	require.NoError(t, err)
	assert.Equal(t, "-1.16", p.Versions.String())
}

func TestFromFile(t *testing.T) {
	reg, err := FromFile(regset.AMD64, "data/amd64.register.info")
	require.NoError(t, err)
	assert.Len(t, reg.Profiles(), 2)

	_, err = FromFile(regset.AMD64, "data/no-such-file.register.info")
	assert.Error(t, err)
}

// The embedded amd64 document must stay attribute-for-attribute in sync
// with the golden JSON image.
func TestBuiltinGoldenJSON(t *testing.T) {
	data, err := builtinFS.ReadFile("data/amd64.register.info")
	require.NoError(t, err)
	doc, err := abi.ParseDocument(data)
	require.NoError(t, err)
	actual, err := json.Marshal(doc)
	require.NoError(t, err)

	golden, err := os.ReadFile("testdata/amd64.golden.json")
	require.NoError(t, err)

	opts := jsondiff.DefaultConsoleOptions()
	diff, desc := jsondiff.Compare(golden, actual, &opts)
	assert.Equal(t, jsondiff.FullMatch, diff, desc)
}
