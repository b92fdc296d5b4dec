package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_UTF8(t *testing.T) {
	got, err := Decode([]byte("función con tildes: áéíóú"))
	require.NoError(t, err)
	assert.Equal(t, "función con tildes: áéíóú", got)
}

func TestDecode_Windows1252Fallback(t *testing.T) {
	// 0x93/0x94 are curly quotes in windows-1252 and invalid as UTF-8
	got, err := Decode([]byte{0x93, 'h', 'o', 'l', 'a', 0x94})
	require.NoError(t, err)
	assert.Equal(t, "“hola”", got)
}

func TestDecode_Latin1Fallback(t *testing.T) {
	// 0x81 is undefined in windows-1252 but valid latin-1 (U+0081)
	got, err := Decode([]byte{'x', 0x81, 'y'})
	require.NoError(t, err)
	assert.Equal(t, "xy", got)
}

func TestDecode_BinaryFailsChain(t *testing.T) {
	_, err := Decode([]byte{0x00, 0x01, 0xFF, 0x00})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDecode)
}

func TestDecode_EmptyInput(t *testing.T) {
	got, err := Decode(nil)
	require.NoError(t, err)
	assert.Equal(t, "", got)
}
