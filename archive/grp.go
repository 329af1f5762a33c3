// Package archive reads the two on-disk container formats named in
// §6.6: the XOR-obfuscatable resource archive ("group file") and the
// object database (ADB), converting either into the decomp.ObjectStore
// contract the core package consumes.
package archive

import (
	"bytes"
	"fmt"
	"io"

	"agds-decomp/decomp"
	"agds-decomp/textenc"
)

// xorKey is the fixed repeating key the group-file format obfuscates
// its magic and entry names under. It is burned into every build of
// the original tool, not supplied by a caller.
var xorKey = []byte("Vyvojovy tym AGDS varuje: Hackerovani skodi obchodu!")

var (
	grpMagic1 = []byte("AGDS group file\x1A")
	grpMagic2 = []byte{0xE6, 0xC9, 0x03, 0x1A}
)

const (
	grpHeaderLen  = 0x2C
	grpVersion1   = 0x2C
	grpVersion2   = 0x02
	grpEntrySize  = 0x31
	grpNameField  = 0x21
)

// GroupFile is a parsed resource archive: a flat directory of named
// byte ranges within the archive buffer.
type GroupFile struct {
	raw     []byte
	entries []grpEntry
}

type grpEntry struct {
	name   string
	offset uint32
	length uint32
}

// dexor reverses the fixed repeating-key XOR obfuscation: each byte is
// XORed with xorKey[i%len(xorKey)]^0xFF. The key always restarts at
// index 0 for each call, matching the per-field application the
// original makes against the magic and each entry's name.
func dexor(data []byte) []byte {
	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = b ^ (xorKey[i%len(xorKey)] ^ 0xFF)
	}
	return out
}

func trimNull(b []byte) []byte {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		return b[:i]
	}
	return b
}

// decodeGroupName decodes an entry name with the same legacy encoding
// the string pool and region scene names use, unlike the plain-ASCII
// keys the ADB directory carries.
func decodeGroupName(b []byte) string {
	return textenc.Decode(b)
}

func cstring(b []byte) string {
	return string(trimNull(b))
}

func le32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

// OpenGroupFile reads the entire group-file archive from r and parses
// its directory. Encryption is self-detected: the first 16 bytes of
// the header are tested against grpMagic1 both as-is and de-XORed, and
// whichever matches determines whether entry names also need dexor.
func OpenGroupFile(r io.Reader) (*GroupFile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("archive: reading group file: %w", err)
	}
	if len(data) < grpHeaderLen {
		return nil, fmt.Errorf("archive: group file too short: %d bytes", len(data))
	}

	header := data[:grpHeaderLen]
	plain := bytes.Equal(header[:len(grpMagic1)], grpMagic1)
	decoded := dexor(header[:len(grpMagic1)])
	encrypted := bytes.Equal(decoded, grpMagic1)
	if !plain && !encrypted {
		return nil, fmt.Errorf("archive: group file magic mismatch")
	}

	version1 := le32(header[0x10:])
	if version1 != grpVersion1 {
		return nil, fmt.Errorf("archive: group file version1 mismatch: %d", version1)
	}
	if !bytes.Equal(header[0x14:0x18], grpMagic2) {
		return nil, fmt.Errorf("archive: group file magic2 mismatch")
	}
	version2 := le32(header[0x18:])
	if version2 != grpVersion2 {
		return nil, fmt.Errorf("archive: group file version2 mismatch: %d", version2)
	}
	count := le32(header[0x1C:])

	gf := &GroupFile{raw: data}
	for i := uint32(0); i < count; i++ {
		start := grpHeaderLen + int(i)*grpEntrySize
		if start+grpEntrySize > len(data) {
			return nil, fmt.Errorf("archive: group file directory truncated at entry %d", i)
		}
		fileHeader := data[start : start+grpEntrySize]

		nameBuf := trimNull(fileHeader[:grpNameField])
		if encrypted {
			nameBuf = dexor(nameBuf)
		}
		name := decodeGroupName(nameBuf)

		offset := le32(fileHeader[grpNameField:])
		length := le32(fileHeader[grpNameField+4:])
		if int64(offset)+int64(length) > int64(len(data)) {
			return nil, fmt.Errorf("archive: group file entry %q range out of bounds", name)
		}
		gf.entries = append(gf.entries, grpEntry{name: name, offset: offset, length: length})
	}

	return gf, nil
}

// Names returns every directory entry name, in archive order.
func (gf *GroupFile) Names() []string {
	out := make([]string, len(gf.entries))
	for i, e := range gf.entries {
		out[i] = e.name
	}
	return out
}

// Read returns the bytes of a named entry.
func (gf *GroupFile) Read(name string) ([]byte, error) {
	for _, e := range gf.entries {
		if e.name == name {
			return gf.raw[e.offset : e.offset+e.length], nil
		}
	}
	return nil, fmt.Errorf("archive: no such entry %q", name)
}

// OpenGroupStore reads a group-file archive and classifies every entry
// exactly as OpenADB does, so callers can feed it through decomp.Batch
// by the same object-store contract regardless of which container
// format the archive actually used.
func OpenGroupStore(r io.Reader) (decomp.ObjectStore, error) {
	gf, err := OpenGroupFile(r)
	if err != nil {
		return nil, err
	}

	store := make(decomp.ObjectStore, len(gf.entries))
	for _, e := range gf.entries {
		payload := gf.raw[e.offset : e.offset+e.length]
		store[e.name] = classifyPayload(payload, e.offset, e.offset+e.length)
	}
	return store, nil
}
