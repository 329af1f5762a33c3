package decomp

// EntryKind discriminates the object-store contract of §6.1: the core
// never sees raw archive bytes, only one of these already-classified
// shapes.
type EntryKind int

const (
	EntryCode EntryKind = iota
	EntryString
	EntryRaw
	EntryDummy
	EntryGlobal
	EntryScene
)

// Entry is one object-store slot. Only the fields relevant to Kind are
// meaningful. StartOffset/EndOffset are carried through from the
// archive directory so Batch can produce the §5 (start_offset,
// end_offset)-sorted listing; synthesized entries (Dummy/Global/Scene)
// leave them zero.
type Entry struct {
	Kind EntryKind

	Code []byte // EntryCode

	RawText     []byte // EntryString
	DecodedText string // EntryString
	TrailingNull bool  // EntryString: true if a trailing NUL was stripped

	Raw []byte // EntryRaw

	StartOffset int
	EndOffset   int

	// BackRefs holds every cross-reference discovered elsewhere in the
	// batch that points at this entry, so the hierarchy built by Batch
	// is navigable in both directions (§1, §4.9).
	BackRefs []BackRef
}

// BackRef is one inbound cross-reference: some other object's code (or
// region) referred to this entry with the given semantic role.
type BackRef struct {
	FromKey  string
	Location *int
	Kind     XrefKind
}

// ObjectStore is the in-memory object map the surrounding archive layer
// hands to Batch: key -> classified entry.
type ObjectStore map[string]Entry
