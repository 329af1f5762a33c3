package region

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

// buildRegion assembles a minimal region record: a NUL-terminated scene
// name padded to sceneNameCap, base x/y, and the given shapes.
func buildRegion(t *testing.T, sceneName string, baseX, baseY int16, shapes [][]Point) []byte {
	t.Helper()

	raw := make([]byte, offShapes)
	copy(raw, sceneName)
	// raw[len(sceneName)] is already 0x00 from make(); pad bytes stay 0x00.

	binary.LittleEndian.PutUint16(raw[offBaseX:], uint16(baseX))
	binary.LittleEndian.PutUint16(raw[offBaseY:], uint16(baseY))
	binary.LittleEndian.PutUint16(raw[offShapeCnt:], uint16(len(shapes)))

	for _, pts := range shapes {
		hdr := make([]byte, 2)
		binary.LittleEndian.PutUint16(hdr, uint16(len(pts)))
		raw = append(raw, hdr...)
		for _, p := range pts {
			pt := make([]byte, 6)
			binary.LittleEndian.PutUint16(pt[0:], p.X)
			binary.LittleEndian.PutUint16(pt[2:], p.Y)
			z := p.Z
			if !p.HasZ {
				z = noZSentinel
			}
			binary.LittleEndian.PutUint16(pt[4:], z)
			raw = append(raw, pt...)
		}
	}
	return raw
}

func TestParseSceneNameStopsAtNUL(t *testing.T) {
	raw := buildRegion(t, "hall", 10, -5, nil)
	r, err := Parse(raw)
	require.NoError(t, err)
	require.Equal(t, "hall", r.SceneKey)
	require.Equal(t, int16(10), r.BaseX)
	require.Equal(t, int16(-5), r.BaseY)
}

// A 0x20 byte inside the first sceneNameCap bytes is ordinary scene-name
// data, not a terminator: only a NUL byte ends the name.
func TestParseSceneNameTreatsSpaceAsOrdinaryByte(t *testing.T) {
	raw := buildRegion(t, "old hall", 0, 0, nil)
	r, err := Parse(raw)
	require.NoError(t, err)
	require.Equal(t, "old hall", r.SceneKey)
}

// When the name field itself carries no NUL, the unbounded search keeps
// going past sceneNameCap and lands on the next NUL byte it finds in
// the record — here, the zero high byte of a small baseX — rather than
// stopping at the field cap, matching the original's unbounded scan.
func TestParseSceneNameSearchIsUnboundedPastNameField(t *testing.T) {
	raw := buildRegion(t, "", 1, 0, nil)
	filler := []byte("this name has spaces but carries no nul ")
	copy(raw[offSceneName:offSceneName+sceneNameCap], filler[:sceneNameCap])

	r, err := Parse(raw)
	require.NoError(t, err)
	require.Equal(t, string(filler[:sceneNameCap])+"\x01", r.SceneKey)
}

func TestParseShapesAndSentinel(t *testing.T) {
	shapes := [][]Point{
		{
			{X: 1, Y: 2, Z: 3, HasZ: true},
			{X: 4, Y: 5, HasZ: false},
		},
	}
	raw := buildRegion(t, "yard", 100, 200, shapes)
	r, err := Parse(raw)
	require.NoError(t, err)
	require.Len(t, r.Shapes, 1)
	require.Len(t, r.Shapes[0].Points, 2)
	require.True(t, r.Shapes[0].Points[0].HasZ)
	require.False(t, r.Shapes[0].Points[1].HasZ)
}

func TestParseTooShort(t *testing.T) {
	_, err := Parse(make([]byte, 4))
	require.Error(t, err)
}

func TestBoundingBox(t *testing.T) {
	shapes := [][]Point{
		{{X: 0, Y: 0, HasZ: false}, {X: 10, Y: 20, HasZ: false}},
	}
	raw := buildRegion(t, "yard", 5, 5, shapes)
	r, err := Parse(raw)
	require.NoError(t, err)

	minX, minY, maxX, maxY, ok := r.BoundingBox()
	require.True(t, ok)
	require.Equal(t, 5, minX)
	require.Equal(t, 5, minY)
	require.Equal(t, 15, maxX)
	require.Equal(t, 25, maxY)
}

func TestBoundingBoxEmpty(t *testing.T) {
	raw := buildRegion(t, "yard", 0, 0, nil)
	r, err := Parse(raw)
	require.NoError(t, err)

	_, _, _, _, ok := r.BoundingBox()
	require.False(t, ok)
}

func TestSceneXrefReportsParentScene(t *testing.T) {
	raw := buildRegion(t, "tavern", 0, 0, nil)
	x, err := SceneXref("tavern.r", raw)
	require.NoError(t, err)
	require.Equal(t, "tavern", x.OtherKey)
	require.Equal(t, "scene", x.Kind.Tag.String())
}
