package decomp

import (
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

// RegionParser decodes a Raw entry believed to hold a region object and
// returns the Scene xref §4.9.3 requires. Package region implements
// this signature; decomp itself never imports region, so the wiring
// happens in cmd/agdsdis.
type RegionParser func(key string, raw []byte) (*Xref, error)

// Patcher applies any registered byte-range edits for key to raw,
// returning the bytes Batch should actually analyze in its place.
// package patch's *patch.Patcher.Apply method satisfies this signature;
// decomp itself never imports patch, matching the RegionParser wiring
// above. A nil Patcher means every entry is analyzed unpatched (§6.5:
// "decomp itself never sees unpatched bytes once a patcher is
// supplied").
type Patcher func(key string, raw []byte) []byte

// BatchOptions configures a Batch run.
type BatchOptions struct {
	Config       Config
	RegionParser RegionParser
	Patcher      Patcher
	Logger       zerolog.Logger
}

// ObjectResult pairs a store entry's key with its decompilation
// outcome (nil for entries that were never code, e.g. strings or
// synthesized placeholders).
type ObjectResult struct {
	Key    string
	Result *Result
	Text   string // EntryString's decoded text, rendered standalone
}

// BatchResult is the product of running Batch over an object store:
// the final store (including any synthesized Dummy/Global/Scene
// entries), and the per-object decompilation results in deterministic
// (start_offset, end_offset, key) order.
type BatchResult struct {
	Store   ObjectStore
	Objects []ObjectResult
}

// Batch iterates store, decompiles every Code entry, renders every
// String entry, attempts region parsing on Raw entries that look like
// regions, then performs §4.9 cross-reference finalization once across
// every collected xref (§5 "Batch driver").
func Batch(store ObjectStore, opts BatchOptions) *BatchResult {
	allXrefs := make(map[string][]Xref)
	objects := make([]ObjectResult, 0, len(store))

	keys := make([]string, 0, len(store))
	for k := range store {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	failed := 0
	for _, key := range keys {
		entry := store[key]
		switch entry.Kind {
		case EntryCode:
			code := entry.Code
			if opts.Patcher != nil {
				code = opts.Patcher(key, code)
				entry.Code = code
				store[key] = entry
			}
			res := Decompile(code, opts.Config)
			if res.Err != nil {
				failed++
				opts.Logger.Warn().Str("key", key).Err(res.Err).Int("offset", res.ErrOffset).Msg("decompilation failed")
			} else {
				allXrefs[key] = res.Xrefs
			}
			objects = append(objects, ObjectResult{Key: key, Result: res})
		case EntryString:
			objects = append(objects, ObjectResult{Key: key, Text: entry.DecodedText})
		case EntryRaw:
			raw := entry.Raw
			if opts.Patcher != nil {
				raw = opts.Patcher(key, raw)
				entry.Raw = raw
				store[key] = entry
			}
			if looksLikeRegion(key) && opts.RegionParser != nil {
				xref, err := opts.RegionParser(key, raw)
				if err != nil {
					failed++
					opts.Logger.Warn().Str("key", key).Err(err).Msg("region parse failed")
				} else if xref != nil {
					allXrefs[key] = append(allXrefs[key], *xref)
				}
			}
			objects = append(objects, ObjectResult{Key: key})
		default:
			objects = append(objects, ObjectResult{Key: key})
		}
	}

	finalizeXrefs(store, allXrefs)

	sort.SliceStable(objects, func(i, j int) bool {
		oi, oj := store[objects[i].Key], store[objects[j].Key]
		if oi.StartOffset != oj.StartOffset {
			return oi.StartOffset < oj.StartOffset
		}
		if oi.EndOffset != oj.EndOffset {
			return oi.EndOffset < oj.EndOffset
		}
		return objects[i].Key < objects[j].Key
	})

	opts.Logger.Info().Int("objects", len(objects)).Int("failed", failed).Msg("batch decompilation complete")

	return &BatchResult{Store: store, Objects: objects}
}

func looksLikeRegion(key string) bool {
	return strings.HasSuffix(key, ".r") || strings.HasSuffix(key, ".rp")
}
