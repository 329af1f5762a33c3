// Package textenc decodes the legacy single-byte text encoding used by
// string pools and region scene-name prefixes (§6.3). Configuration
// happens once at process start, mirroring the original decompiler's
// thread-local encoding cell; callers that need per-call control should
// use Decoder directly instead of the package-level default.
package textenc

import (
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

var byName = map[string]encoding.Encoding{
	"windows-1250": charmap.Windows1250,
	"cp1250":       charmap.Windows1250,
	"windows-1252": charmap.Windows1252,
	"cp1252":       charmap.Windows1252,
	"iso-8859-2":   charmap.ISO8859_2,
}

var active encoding.Encoding = charmap.Windows1250

// SetDefault configures the process-wide default encoding by name.
// Call once, before any decompilation begins (§5 "Shared resource
// policy").
func SetDefault(name string) error {
	enc, ok := byName[name]
	if !ok {
		return fmt.Errorf("textenc: unknown encoding %q", name)
	}
	active = enc
	return nil
}

// Decode decodes b using the process-wide default encoding. Bytes that
// cannot be mapped are replaced per the underlying charmap's standard
// behavior (the U+FFFD replacement rune), matching the non-BOM,
// failure-tolerant posture of the original single-byte decoder.
func Decode(b []byte) string {
	return NewDecoder(active).Decode(b)
}

// Decoder wraps a specific encoding for callers that need to decode
// with something other than the process-wide default (for example, a
// batch driver processing objects from two archives built with
// different encodings).
type Decoder struct {
	enc encoding.Encoding
}

// NewDecoder returns a Decoder bound to a specific golang.org/x/text
// encoding.
func NewDecoder(enc encoding.Encoding) Decoder {
	return Decoder{enc: enc}
}

// Decode decodes b with this Decoder's encoding.
func (d Decoder) Decode(b []byte) string {
	out, err := d.enc.NewDecoder().Bytes(b)
	if err != nil {
		// Never fail string-pool decoding on a mapping error; surface
		// whatever the charmap decoder recovered.
		return string(out)
	}
	return string(out)
}
