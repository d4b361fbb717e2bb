package abi

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redecomp/goreginfo/regerrors"
)

func readTestDocument(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile("testdata/amd64.register.info")
	require.NoError(t, err)
	return data
}

func TestParseDocument(t *testing.T) {
	doc, err := ParseDocument(readTestDocument(t))
	require.NoError(t, err)
	require.Len(t, doc.Records, 2)

	recent := doc.Records[0]
	assert.Equal(t, "1.17+", recent.Versions)
	assert.Equal(t, "RAX,RBX,RCX,RDI,RSI,R8,R9,R10,R11", recent.IntRegisters.List)
	assert.Equal(t, "8", recent.Stack.InitialOffset)
	require.NotNil(t, recent.CurrentGoroutine)
	assert.Equal(t, "R14", recent.CurrentGoroutine.Register)
	require.NotNil(t, recent.DuffZero)
	assert.Equal(t, "RDI", recent.DuffZero.Dest)
	assert.Empty(t, recent.DuffZero.Zero)

	legacy := doc.Records[1]
	assert.Equal(t, "-1.16", legacy.Versions)
	assert.Empty(t, legacy.IntRegisters.List)
	// register="" is a present binding with no register, not a parse error
	require.NotNil(t, legacy.CurrentGoroutine)
	assert.Empty(t, legacy.CurrentGoroutine.Register)
	assert.Nil(t, legacy.ZeroRegister)
	require.NotNil(t, legacy.DuffZero)
	assert.Equal(t, "XMM0", legacy.DuffZero.Zero)
	assert.Equal(t, "float", legacy.DuffZero.ZeroKind)
}

func TestParseDocumentMalformed(t *testing.T) {
	testCases := []struct {
		name string
		data string
	}{
		{"truncated", `<golang><register_info versions="1.17+">`},
		{"wrong root", `<metadata></metadata>`},
		{"not xml", `{"register_info": []}`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseDocument([]byte(tc.data))
			require.Error(t, err)
			assert.ErrorIs(t, err, regerrors.ErrDMalformedDocument)
		})
	}
}

func TestParseDocumentEmpty(t *testing.T) {
	_, err := ParseDocument([]byte(`<golang></golang>`))
	assert.ErrorIs(t, err, regerrors.ErrDEmptyDocument)
}

// Round-trip fidelity: re-encoding a parsed document and parsing the
// result yields the same records, attribute for attribute.
func TestDocumentRoundTrip(t *testing.T) {
	doc, err := ParseDocument(readTestDocument(t))
	require.NoError(t, err)

	encoded, err := doc.Encode()
	require.NoError(t, err)

	doc2, err := ParseDocument(encoded)
	require.NoError(t, err)
	assert.Equal(t, doc.Records, doc2.Records)

	// a second cycle is byte-stable
	encoded2, err := doc2.Encode()
	require.NoError(t, err)
	assert.Equal(t, encoded, encoded2)
}
