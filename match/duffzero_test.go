package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redecomp/goreginfo/abi"
	"github.com/redecomp/goreginfo/goversion"
	"github.com/redecomp/goreginfo/regerrors"
	"github.com/redecomp/goreginfo/registry"
	"github.com/redecomp/goreginfo/regset"
)

func amd64Profile(t *testing.T, version string) *abi.Profile {
	t.Helper()
	reg, err := registry.Builtin(regset.AMD64)
	require.NoError(t, err)
	p, err := reg.Select(version)
	require.NoError(t, err)
	return p
}

// A duffzero-style unrolled body: two 16-byte stores of XMM15 through
// RDI with a pointer bump in between, plus stores that must not match
// (wrong base register, wrong zero source).
var zeroBody = []byte{
	0x44, 0x0F, 0x11, 0x3F, // MOVUPS [RDI], X15
	0x48, 0x8D, 0x7F, 0x10, // LEA RDI, [RDI+0x10]
	0x44, 0x0F, 0x11, 0x3F, // MOVUPS [RDI], X15
	0x44, 0x0F, 0x11, 0x38, // MOVUPS [RAX], X15
	0x0F, 0x11, 0x07, // MOVUPS [RDI], X0
	0xC3, // RET
}

func TestScanZeroStoresRegisterABI(t *testing.T) {
	p := amd64Profile(t, "1.18")

	matches, err := ScanZeroStores(zeroBody, p)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	assert.Equal(t, 0, matches[0].Offset)
	assert.Equal(t, 4, matches[0].Len)
	assert.Equal(t, 16, matches[0].Width)
	assert.Equal(t, 8, matches[1].Offset)
}

func TestScanZeroStoresLegacy(t *testing.T) {
	p := amd64Profile(t, "1.10")

	matches, err := ScanZeroStores(zeroBody, p)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, 16, matches[0].Offset)
	assert.Equal(t, 3, matches[0].Len)
	assert.Equal(t, 16, matches[0].Width)
}

func TestScanSkipsUndecodableBytes(t *testing.T) {
	p := amd64Profile(t, "1.18")

	code := append([]byte{0x06}, zeroBody...) // 0x06 is invalid in 64-bit mode
	matches, err := ScanZeroStores(code, p)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, 1, matches[0].Offset)
}

func TestScanRejectsNonAMD64(t *testing.T) {
	reg, err := registry.Builtin(regset.ARM64)
	require.NoError(t, err)
	p, err := reg.Select("1.20")
	require.NoError(t, err)

	_, err = ScanZeroStores(zeroBody, p)
	assert.ErrorIs(t, err, regerrors.ErrVUnknownArch)
}

func TestScanWithoutDuffZeroBinding(t *testing.T) {
	doc, err := abi.ParseDocument([]byte(`<golang>
		<register_info versions="1.17+">
			<int_registers list="RAX"/>
			<float_registers list=""/>
			<stack initialoffset="8" maxalign="8"/>
		</register_info>
	</golang>`))
	require.NoError(t, err)
	reg, err := registry.FromDocument(regset.AMD64, doc)
	require.NoError(t, err)
	p, err := reg.SelectVersion(goversion.MustParse("1.18"))
	require.NoError(t, err)

	matches, err := ScanZeroStores(zeroBody, p)
	require.NoError(t, err)
	assert.Empty(t, matches)
}
