package patch

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOverlayApplyPatchesAndRecordsRanges(t *testing.T) {
	o := NewOverlay()
	o.Add("main", 2, []byte{0xAA, 0xBB})
	p := NewPatcher(o)

	raw := []byte{0x00, 0x01, 0x02, 0x03, 0x04}
	out := p.Apply("main", raw)

	require.Equal(t, []byte{0x00, 0x01, 0xAA, 0xBB, 0x04}, out)
	require.Equal(t, []byte{0x00, 0x01, 0x02, 0x03, 0x04}, raw, "raw must not be mutated")
	require.Equal(t, []Range{{Start: 2, End: 4}}, p.Ranges("main"))
}

func TestOverlayApplyIgnoresUnregisteredKeys(t *testing.T) {
	o := NewOverlay()
	p := NewPatcher(o)

	raw := []byte{1, 2, 3}
	out := p.Apply("other", raw)
	require.Equal(t, raw, out)
	require.Nil(t, p.Ranges("other"))
}

func TestOverlayApplySkipsOutOfBoundsEdits(t *testing.T) {
	o := NewOverlay()
	o.Add("main", 10, []byte{0xFF})
	o.Add("main", 0, []byte{0x99})
	p := NewPatcher(o)

	raw := []byte{0x00, 0x01, 0x02}
	out := p.Apply("main", raw)
	require.Equal(t, []byte{0x99, 0x01, 0x02}, out)
	require.Equal(t, []Range{{Start: 0, End: 1}}, p.Ranges("main"))
}

func TestParseOverlayReadsLines(t *testing.T) {
	script := strings.Join([]string{
		"# comment line, ignored",
		"",
		"main 0x31 120DAF4C0C",
		"1006.100e 0x33 01",
	}, "\n")

	o, err := ParseOverlay(strings.NewReader(script))
	require.NoError(t, err)

	p := NewPatcher(o)
	raw := make([]byte, 0x40)
	out := p.Apply("main", raw)
	require.Equal(t, []byte{0x12, 0x0D, 0xAF, 0x4C, 0x0C}, out[0x31:0x36])

	out2 := p.Apply("1006.100e", make([]byte, 0x40))
	require.Equal(t, byte(0x01), out2[0x33])
}

func TestParseOverlayRejectsMalformedLine(t *testing.T) {
	_, err := ParseOverlay(strings.NewReader("main 0x31"))
	require.Error(t, err)
}

func TestParseOverlayRejectsBadHex(t *testing.T) {
	_, err := ParseOverlay(strings.NewReader("main 0x31 zz"))
	require.Error(t, err)
}
