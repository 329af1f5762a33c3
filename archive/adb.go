package archive

import (
	"bytes"
	"fmt"
	"io"

	"agds-decomp/decomp"
)

var (
	adbMagicA          = []byte{0x9A, 0x02, 0x00, 0x00}
	adbMagicB          = []byte{0x00, 0x00, 0x00, 0x00}
	adbHeaderSizeField = []byte{0x1F, 0x00, 0x00, 0x00}
)

const (
	adbKeySize      = 32
	adbDirEntrySize = adbKeySize + 4 + 4

	// adbHeaderLen is the fixed header: magicA(4) + magicB(4) + count(4)
	// + count-duplicate(4) + header-size-field(4).
	adbHeaderLen = 4 + 4 + 4 + 4 + 4
)

// OpenADB reads an object-database archive, validating its fixed
// header and directory, and classifies every payload as Code or Raw by
// probing for the §4.1 code-object magic at payload offset 8.
func OpenADB(r io.Reader) (decomp.ObjectStore, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("archive: reading adb: %w", err)
	}
	if len(data) < adbHeaderLen {
		return nil, fmt.Errorf("archive: adb too short: %d bytes", len(data))
	}

	cursor := 0
	if !bytes.Equal(data[cursor:cursor+4], adbMagicA) {
		return nil, fmt.Errorf("archive: adb magic mismatch (A)")
	}
	cursor += 4
	if !bytes.Equal(data[cursor:cursor+4], adbMagicB) {
		return nil, fmt.Errorf("archive: adb magic mismatch (B)")
	}
	cursor += 4

	count := le32(data[cursor:])
	cursor += 4
	countDup := le32(data[cursor:])
	cursor += 4
	if count != countDup {
		return nil, fmt.Errorf("archive: adb duplicated count field mismatch: %d != %d", count, countDup)
	}

	if !bytes.Equal(data[cursor:cursor+4], adbHeaderSizeField) {
		return nil, fmt.Errorf("archive: adb header-size field mismatch")
	}
	cursor += 4

	store := make(decomp.ObjectStore, count)
	for i := uint32(0); i < count; i++ {
		if cursor+adbDirEntrySize > len(data) {
			return nil, fmt.Errorf("archive: adb directory truncated at entry %d", i)
		}
		key := cstring(data[cursor : cursor+adbKeySize])
		offset := le32(data[cursor+adbKeySize:])
		size := le32(data[cursor+adbKeySize+4:])
		cursor += adbDirEntrySize

		if int64(offset)+int64(size) > int64(len(data)) {
			return nil, fmt.Errorf("archive: adb entry %q payload out of bounds", key)
		}
		payload := data[offset : offset+size]

		store[key] = classifyPayload(payload, offset, offset+size)
	}

	return store, nil
}

// classifyPayload implements §4.1's rule for distinguishing a code
// object from an opaque raw blob: the §4.1 code magic, when present,
// sits 8 bytes into the payload.
func classifyPayload(payload []byte, start, end uint32) decomp.Entry {
	if decomp.HasCodeMagic(payload) {
		return decomp.Entry{Kind: decomp.EntryCode, Code: payload, StartOffset: int(start), EndOffset: int(end)}
	}
	return decomp.Entry{Kind: decomp.EntryRaw, Raw: payload, StartOffset: int(start), EndOffset: int(end)}
}
