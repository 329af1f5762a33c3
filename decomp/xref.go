package decomp

import "sort"

// XrefPathKind is the sub-kind of a Path cross-reference.
type XrefPathKind int

const (
	PathAnimation XrefPathKind = iota
	PathCharacter
	PathCursor
	PathPicture
	PathSound
	PathOther
)

// XrefRegionKind is the sub-kind of a Region cross-reference.
type XrefRegionKind int

const (
	RegionScreenPos XrefRegionKind = iota
	RegionScreenRegion
	RegionWalkmap
	RegionOther
)

// XrefTextKind is the sub-kind of a Text cross-reference.
type XrefTextKind int

const (
	TextDialogue XrefTextKind = iota
	TextDisplayName
	TextVar
	TextOther
)

// XrefKindTag discriminates XrefKind.
type XrefKindTag int

const (
	XrefDialogueText XrefKindTag = iota
	XrefScene
	XrefGlobalRead
	XrefGlobalWrite
	XrefGlobalWriteConst
	XrefCode
	XrefItem
	XrefText
	XrefPath
	XrefRegion
	XrefParentOf
)

// XrefKind is the typed sum describing the semantic role of a
// cross-reference use site (§3 "Cross-reference").
type XrefKind struct {
	Tag      XrefKindTag
	Const    uint32         // only meaningful for XrefGlobalWriteConst
	Text     XrefTextKind   // only meaningful for XrefText
	Path     XrefPathKind   // only meaningful for XrefPath
	Region   XrefRegionKind // only meaningful for XrefRegion
	Parent   *XrefKind      // only meaningful for XrefParentOf
}

// String renders the xref's semantic role for diagnostic output.
func (t XrefKindTag) String() string {
	switch t {
	case XrefDialogueText:
		return "dialogue_text"
	case XrefScene:
		return "scene"
	case XrefGlobalRead:
		return "global_read"
	case XrefGlobalWrite:
		return "global_write"
	case XrefGlobalWriteConst:
		return "global_write_const"
	case XrefCode:
		return "code"
	case XrefItem:
		return "item"
	case XrefText:
		return "text"
	case XrefPath:
		return "path"
	case XrefRegion:
		return "region"
	case XrefParentOf:
		return "parent_of"
	default:
		return "unknown"
	}
}

func (k XrefKind) isGlobalish() bool {
	switch k.Tag {
	case XrefGlobalRead, XrefGlobalWrite, XrefGlobalWriteConst:
		return true
	case XrefParentOf:
		if k.Parent != nil {
			return k.Parent.isGlobalish()
		}
	}
	return false
}

func (k XrefKind) isScene() bool {
	if k.Tag == XrefScene {
		return true
	}
	if k.Tag == XrefParentOf && k.Parent != nil {
		return k.Parent.isScene()
	}
	return false
}

// Xref is one discovered cross-reference from the object currently
// being decompiled to another object key.
type Xref struct {
	OtherKey string
	Location *int // nil when no single offset is meaningful
	Kind     XrefKind
}

// finalizeXrefs implements §4.9: every collected xref is indexed
// against the `to` object; a missing target gets synthesized with a
// kind derived from the xref kind, existing Dummy entries may be
// promoted to Global or Scene on a later stronger-typed xref, and the
// target entry records a typed BackRef so the hierarchy is navigable
// from either end (§1).
func finalizeXrefs(store ObjectStore, allXrefs map[string][]Xref) {
	fromKeys := make([]string, 0, len(allXrefs))
	for fromKey := range allXrefs {
		fromKeys = append(fromKeys, fromKey)
	}
	sort.Strings(fromKeys)

	for _, fromKey := range fromKeys {
		for _, x := range allXrefs[fromKey] {
			existing, ok := store[x.OtherKey]
			if !ok {
				kind := EntryDummy
				switch {
				case x.Kind.isGlobalish():
					kind = EntryGlobal
				case x.Kind.isScene():
					kind = EntryScene
				}
				existing = Entry{Kind: kind}
			} else if existing.Kind == EntryDummy {
				if x.Kind.isGlobalish() {
					existing.Kind = EntryGlobal
				} else if x.Kind.isScene() {
					existing.Kind = EntryScene
				}
			}
			existing.BackRefs = append(existing.BackRefs, BackRef{
				FromKey:  fromKey,
				Location: x.Location,
				Kind:     x.Kind,
			})
			store[x.OtherKey] = existing
		}
	}
}
