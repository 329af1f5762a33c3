package archive

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"agds-decomp/decomp"
)

// buildGroupFile assembles a minimal valid group-file archive with one
// entry holding payload. When encrypt is true, the leading magic and
// the entry's name field are XOR-obfuscated, matching the subset of
// the format the original actually obscures.
func buildGroupFile(t *testing.T, name string, payload []byte, encrypt bool) []byte {
	t.Helper()

	header := make([]byte, grpHeaderLen)
	copy(header, grpMagic1)
	binary.LittleEndian.PutUint32(header[0x10:], grpVersion1)
	copy(header[0x14:0x18], grpMagic2)
	binary.LittleEndian.PutUint32(header[0x18:], grpVersion2)
	binary.LittleEndian.PutUint32(header[0x1C:], 1)

	entry := make([]byte, grpEntrySize)
	copy(entry, name)
	offset := uint32(grpHeaderLen + grpEntrySize)
	binary.LittleEndian.PutUint32(entry[grpNameField:], offset)
	binary.LittleEndian.PutUint32(entry[grpNameField+4:], uint32(len(payload)))

	if encrypt {
		obf := dexor(header[:len(grpMagic1)])
		copy(header[:len(grpMagic1)], obf)
		copy(entry[:grpNameField], dexor(entry[:grpNameField]))
	}

	buf := append(header, entry...)
	buf = append(buf, payload...)
	return buf
}

func TestOpenGroupFilePlain(t *testing.T) {
	payload := []byte("hello region")
	raw := buildGroupFile(t, "object.r", payload, false)

	gf, err := OpenGroupFile(bytes.NewReader(raw))
	require.NoError(t, err)
	require.Equal(t, []string{"object.r"}, gf.Names())

	got, err := gf.Read("object.r")
	require.NoError(t, err)
	require.Equal(t, payload, got)
}

// Because trimNull inspects the name field before it is de-XORed, and
// the obfuscated form of a zero-padding byte can never itself be zero
// (the key bytes are all ASCII, so key^0xFF always lands above 0x7F),
// an encrypted entry's trailing NUL padding survives decryption intact
// and stays part of the decoded name — matching the original's own
// quirk rather than trimming it a second time.
func TestOpenGroupFileEncrypted(t *testing.T) {
	payload := []byte{0x01, 0x02, 0x03}
	raw := buildGroupFile(t, "secret.dat", payload, true)
	wantName := "secret.dat" + strings.Repeat("\x00", grpNameField-len("secret.dat"))

	gf, err := OpenGroupFile(bytes.NewReader(raw))
	require.NoError(t, err)
	require.Equal(t, []string{wantName}, gf.Names())

	got, err := gf.Read(wantName)
	require.NoError(t, err)
	require.Equal(t, payload, got)
}

func TestOpenGroupFileRejectsBadMagic(t *testing.T) {
	raw := buildGroupFile(t, "a", []byte{1}, false)
	raw[0] ^= 0xFF
	_, err := OpenGroupFile(bytes.NewReader(raw))
	require.Error(t, err)
}

func TestOpenGroupStoreClassifiesPayloads(t *testing.T) {
	raw := buildGroupFile(t, "blob.dat", []byte{0xDE, 0xAD, 0xBE, 0xEF}, false)
	store, err := OpenGroupStore(bytes.NewReader(raw))
	require.NoError(t, err)

	entry, ok := store["blob.dat"]
	require.True(t, ok)
	require.Equal(t, decomp.EntryRaw, entry.Kind)
}
