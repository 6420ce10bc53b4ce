package binreader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wowsunpack/wowsunpack/internal/xerrors"
)

func TestReadUint32LE(t *testing.T) {
	buf := []byte{0x01, 0x00, 0x00, 0x00, 0xFF}
	v, err := ReadUint32LE(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), v)

	_, err = ReadUint32LE(buf, 2)
	assert.Error(t, err)
}

func TestReadInt64LE(t *testing.T) {
	buf := make([]byte, 8)
	buf[7] = 0x80 // negative in little-endian two's complement
	v, err := ReadInt64LE(buf, 0)
	require.NoError(t, err)
	assert.True(t, v < 0)
}

func TestReadCString(t *testing.T) {
	buf := []byte("hello.txt\x00ignored")
	s, err := ReadCString(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, "hello.txt", s)
}

func TestReadCStringEmpty(t *testing.T) {
	buf := []byte{0x00, 'a'}
	_, err := ReadCString(buf, 0)
	assert.ErrorIs(t, err, xerrors.ErrEmptyString)
}

func TestReadCStringNoTerminator(t *testing.T) {
	buf := []byte("no terminator here")
	_, err := ReadCString(buf, 0)
	assert.Error(t, err)
}

func TestReadCStringInvalidUTF8(t *testing.T) {
	buf := []byte{0xff, 0xfe, 0x00}
	_, err := ReadCString(buf, 0)
	assert.Error(t, err)
}

func TestReadCStringOutOfRange(t *testing.T) {
	buf := []byte("abc")
	_, err := ReadCString(buf, 10)
	assert.Error(t, err)
}
