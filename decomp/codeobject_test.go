package decomp

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

// buildObject assembles a code object buffer per §4.1's preamble
// layout: fixed 24-byte header, code bytes, then a string pool whose
// metadata block is 5+4*len(strs) bytes followed by NUL-terminated
// entries.
func buildObject(t *testing.T, code []byte, strs []string) []byte {
	t.Helper()

	metaSize := 5 + 4*len(strs)
	poolSize := metaSize
	for _, s := range strs {
		poolSize += len(s) + 1
	}

	total := offCodeStart + len(code) + poolSize
	buf := make([]byte, total)

	binary.LittleEndian.PutUint16(buf[offSizeMinus7:], uint16(total-7))
	copy(buf[offMagic:], codeMagic)
	binary.LittleEndian.PutUint16(buf[offCodeSize:], uint16(len(code)))
	binary.LittleEndian.PutUint16(buf[offStringCnt:], uint16(len(strs)))
	copy(buf[offCodeStart:], code)

	cursor := offCodeStart + len(code) + metaSize
	for _, s := range strs {
		copy(buf[cursor:], s)
		cursor += len(s) + 1 // NUL terminator left zero
	}

	return buf
}

func TestParseCodeObject(t *testing.T) {
	raw := buildObject(t, []byte{0x0C}, nil)
	co, err := ParseCodeObject(raw, DefaultConfig())
	require.NoError(t, err)
	require.Equal(t, 1, co.CodeSize)
	require.Equal(t, offCodeStart, co.CodeStart)
}

func TestParseCodeObjectRejectsBadMagic(t *testing.T) {
	raw := buildObject(t, []byte{0x0C}, nil)
	raw[offMagic] ^= 0xFF
	_, err := ParseCodeObject(raw, DefaultConfig())
	require.ErrorIs(t, err, ErrMagicMismatch)
}

func TestParseCodeObjectRejectsBadLength(t *testing.T) {
	raw := buildObject(t, []byte{0x0C}, nil)
	raw = append(raw, 0x00)
	_, err := ParseCodeObject(raw, DefaultConfig())
	require.ErrorIs(t, err, ErrLengthMismatch)
}

func TestParseCodeObjectStringPool(t *testing.T) {
	raw := buildObject(t, []byte{0x0C}, []string{"foo", "bar"})
	co, err := ParseCodeObject(raw, DefaultConfig())
	require.NoError(t, err)
	require.Equal(t, []string{"foo", "bar"}, co.Strings)
}

func TestParseCodeObjectTooShort(t *testing.T) {
	_, err := ParseCodeObject([]byte{0x01, 0x02}, DefaultConfig())
	require.ErrorIs(t, err, ErrTooShort)
}
