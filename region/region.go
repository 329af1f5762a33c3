// Package region parses the region object binary format (§6.2): a
// scene-key-prefixed list of polygon shapes used for screen regions,
// walkmaps, and scene-relative positions.
package region

import (
	"encoding/binary"
	"fmt"

	"agds-decomp/decomp"
	"agds-decomp/textenc"
)

const (
	offSceneName = 0x00
	sceneNameCap = 0x20
	offBaseX     = 0x20
	offBaseY     = 0x22
	offShapeCnt  = 0x24
	offShapes    = 0x26

	noZSentinel = 0xCDCD
)

// Point is one (x, y, z) vertex of a shape; HasZ is false when the
// source data carried the 0xCDCD "no z" sentinel.
type Point struct {
	X, Y uint16
	Z    uint16
	HasZ bool
}

// Shape is one point list belonging to a Region.
type Shape struct {
	Points []Point
}

// Region is a fully parsed region object.
type Region struct {
	SceneKey string
	BaseX    int16
	BaseY    int16
	Shapes   []Shape
}

// Parse decodes raw region bytes per §6.2's binary layout.
func Parse(raw []byte) (*Region, error) {
	if len(raw) < offShapes {
		return nil, fmt.Errorf("region: buffer too short: need at least %d bytes, have %d", offShapes, len(raw))
	}

	nameEnd := sceneNameCap
	for i := 0; i < len(raw); i++ {
		if raw[i] == 0x00 {
			nameEnd = i
			break
		}
	}
	sceneKey := textenc.Decode(raw[offSceneName:nameEnd])

	r := &Region{
		SceneKey: sceneKey,
		BaseX:    int16(binary.LittleEndian.Uint16(raw[offBaseX:])),
		BaseY:    int16(binary.LittleEndian.Uint16(raw[offBaseY:])),
	}

	shapeCount := int(binary.LittleEndian.Uint16(raw[offShapeCnt:]))
	cursor := offShapes
	for i := 0; i < shapeCount; i++ {
		if cursor+2 > len(raw) {
			return nil, fmt.Errorf("region: truncated shape header at offset 0x%X", cursor)
		}
		pointCount := int(binary.LittleEndian.Uint16(raw[cursor:]))
		cursor += 2

		need := pointCount * 6
		if cursor+need > len(raw) {
			return nil, fmt.Errorf("region: truncated shape points at offset 0x%X", cursor)
		}

		shape := Shape{Points: make([]Point, pointCount)}
		for p := 0; p < pointCount; p++ {
			off := cursor + p*6
			x := binary.LittleEndian.Uint16(raw[off:])
			y := binary.LittleEndian.Uint16(raw[off+2:])
			z := binary.LittleEndian.Uint16(raw[off+4:])
			shape.Points[p] = Point{X: x, Y: y, Z: z, HasZ: z != noZSentinel}
		}
		r.Shapes = append(r.Shapes, shape)
		cursor += need
	}

	return r, nil
}

// BoundingBox returns the smallest axis-aligned box covering every
// shape's points, offset by the region's base x/y. ok is false when
// the region has no points at all.
func (r *Region) BoundingBox() (minX, minY, maxX, maxY int, ok bool) {
	first := true
	for _, s := range r.Shapes {
		for _, p := range s.Points {
			x := int(r.BaseX) + int(p.X)
			y := int(r.BaseY) + int(p.Y)
			if first {
				minX, maxX, minY, maxY = x, x, y, y
				first = false
				continue
			}
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
		}
	}
	return minX, minY, maxX, maxY, !first
}

// SceneXref implements the decomp.RegionParser contract: a parsed
// region always names a parent scene (§4.9.3).
func SceneXref(key string, raw []byte) (*decomp.Xref, error) {
	r, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	return &decomp.Xref{
		OtherKey: r.SceneKey,
		Kind:     decomp.XrefKind{Tag: decomp.XrefScene},
	}, nil
}
