// Package patch applies per-object byte-range modifications before
// analysis, and remembers which ranges it touched so a caller can
// highlight them (§6.5). This is a generalized port of the original's
// Patcher collaborator.
package patch

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// Range is one modified byte range, end-exclusive.
type Range struct {
	Start, End int
}

// Edit is one requested byte-range replacement for a given object key.
type Edit struct {
	Start int
	Data  []byte
}

// Overlay holds the requested edits, grouped by object key, before
// they are applied.
type Overlay struct {
	edits map[string][]Edit
}

// NewOverlay returns an empty overlay.
func NewOverlay() *Overlay {
	return &Overlay{edits: make(map[string][]Edit)}
}

// Add registers an edit for key: replace the bytes starting at
// start with data, in place.
func (o *Overlay) Add(key string, start int, data []byte) {
	o.edits[key] = append(o.edits[key], Edit{Start: start, Data: data})
}

// Patcher applies an Overlay's edits on demand and records the ranges
// it touched per key.
type Patcher struct {
	overlay *Overlay
	ranges  map[string][]Range
}

// NewPatcher returns a Patcher bound to overlay.
func NewPatcher(overlay *Overlay) *Patcher {
	return &Patcher{overlay: overlay, ranges: make(map[string][]Range)}
}

// Apply returns a copy of raw with key's registered edits applied,
// recording the touched ranges. raw is never mutated; when key has no
// registered edits, raw itself is returned.
func (p *Patcher) Apply(key string, raw []byte) []byte {
	edits := p.overlay.edits[key]
	if len(edits) == 0 {
		return raw
	}

	out := make([]byte, len(raw))
	copy(out, raw)

	var touched []Range
	for _, e := range edits {
		end := e.Start + len(e.Data)
		if e.Start < 0 || end > len(out) {
			continue
		}
		copy(out[e.Start:end], e.Data)
		touched = append(touched, Range{Start: e.Start, End: end})
	}
	sort.Slice(touched, func(i, j int) bool { return touched[i].Start < touched[j].Start })
	p.ranges[key] = touched

	return out
}

// Ranges returns the byte ranges Apply patched for key, in ascending
// order, for a caller that wants to highlight them.
func (p *Patcher) Ranges(key string) []Range {
	return p.ranges[key]
}

// ParseOverlay reads a line-oriented patch script: each non-blank,
// non-comment ("#") line is "key offset hex-bytes", e.g.
//
//	main 0x31 120DAF4C0C
//
// one Add call per line, in file order. This is the on-disk form of
// the named byte-range fixups the original ships baked into its
// binary (skip-intro, chapter-select and similar toggles); here the
// set of changes is supplied externally instead of compiled in.
func ParseOverlay(r io.Reader) (*Overlay, error) {
	o := NewOverlay()
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 3 {
			return nil, fmt.Errorf("patch: line %d: expected \"key offset hex-bytes\", got %q", lineNo, line)
		}
		start, err := strconv.ParseInt(strings.TrimPrefix(fields[1], "0x"), 16, 64)
		if err != nil {
			return nil, fmt.Errorf("patch: line %d: bad offset %q: %w", lineNo, fields[1], err)
		}
		data, err := hex.DecodeString(fields[2])
		if err != nil {
			return nil, fmt.Errorf("patch: line %d: bad hex data %q: %w", lineNo, fields[2], err)
		}
		o.Add(fields[0], int(start), data)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("patch: reading overlay: %w", err)
	}
	return o, nil
}
