package decomp

import (
	"encoding/binary"

	"agds-decomp/textenc"
)

// Preamble offsets (§4.1), all little-endian.
const (
	offSizeMinus7 = 0x04
	offMagic      = 0x08
	offCodeSize   = 0x12
	offStringCnt  = 0x14
	offCodeStart  = 0x18
)

var codeMagic = []byte{0xAD, 0xDE, 0x0C, 0x00}

// CodeObject is a parsed code object: its code section, its decoded
// string pool, and its display base address.
type CodeObject struct {
	Raw         []byte
	CodeStart   int
	CodeSize    int
	Strings     []string
	StartOffset int // display/base address, caller-supplied
}

// HasCodeMagic reports whether b looks enough like a code object (per
// §6.6's "Code (detected by the §4.1 magic at payload offset 8)") to be
// routed to ParseCodeObject rather than treated as opaque Raw bytes.
func HasCodeMagic(b []byte) bool {
	return len(b) >= offMagic+4 && bytesEqual(b[offMagic:offMagic+4], codeMagic)
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ParseCodeObject validates the §4.1 preamble, decodes the string pool,
// and returns a CodeObject ready for symbolic interpretation.
func ParseCodeObject(raw []byte, cfg Config) (*CodeObject, error) {
	if len(raw) < offCodeStart {
		return nil, errTooShort(offCodeStart, len(raw))
	}
	if !bytesEqual(raw[offMagic:offMagic+4], codeMagic) {
		return nil, errMagicMismatch(offMagic, codeMagic, raw[offMagic:offMagic+4])
	}

	declaredSize := int(binary.LittleEndian.Uint16(raw[offSizeMinus7:])) + 7
	if declaredSize != len(raw) {
		return nil, errLengthMismatch("object size", declaredSize, len(raw))
	}

	codeSize := int(binary.LittleEndian.Uint16(raw[offCodeSize:]))
	stringCount := int(binary.LittleEndian.Uint16(raw[offStringCnt:]))
	codeStart := offCodeStart

	if codeStart+codeSize > len(raw) {
		return nil, errLengthMismatch("code section", codeStart+codeSize, len(raw))
	}

	poolStart := codeStart + codeSize
	strs, err := parseStringPool(raw, poolStart, stringCount, cfg)
	if err != nil {
		return nil, err
	}

	return &CodeObject{
		Raw:       raw,
		CodeStart: codeStart,
		CodeSize:  codeSize,
		Strings:   strs,
	}, nil
}

// parseStringPool decodes the metadata block (5 + 4*count bytes) plus
// count NUL-terminated strings that follow the code section (§4.1).
func parseStringPool(raw []byte, poolStart, count int, cfg Config) ([]string, error) {
	metaSize := 5 + 4*count
	if poolStart+metaSize > len(raw) {
		return nil, errTooShort(poolStart+metaSize, len(raw))
	}

	cursor := poolStart + metaSize
	out := make([]string, 0, count)
	for i := 0; i < count; i++ {
		start := cursor
		for cursor < len(raw) && raw[cursor] != 0 {
			cursor++
		}
		if cursor >= len(raw) {
			return nil, errMalformedString(start)
		}
		out = append(out, cfg.decodeString(raw[start:cursor]))
		cursor++ // consume the NUL
	}
	return out, nil
}

// decodeString decodes raw legacy-encoded bytes using the configured
// text encoding (§6.3), falling back to the process-wide default.
func (cfg Config) decodeString(b []byte) string {
	if cfg.Decode != nil {
		return cfg.Decode(b)
	}
	return textenc.Decode(b)
}
