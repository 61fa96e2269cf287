// Package builder models the in-memory contract editing state as an explicit
// value type with pure reducers. Handlers and tests construct a State, apply
// reducers, and hand the result to the assembler and the save path; no
// mutation is shared between callers.
package builder

import (
	"sort"
)

// Part is one contract part as held by the editor: either a library part
// (PartID set) or a not-yet-persisted custom part (PartID zero).
type Part struct {
	PartID     uint64 `json:"id"`
	ExternalID string `json:"external_id"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	IsRequired bool   `json:"is_required"`
	OrderIndex int    `json:"order_index"`
}

// State is the full editing state of one contract.
type State struct {
	ContractID uint64
	Title      string
	Parts      []Part
}

// LoadLibrary returns a state seeded with the required parts of the given
// library, in library sort order. Non-required parts are left for the user to
// add explicitly.
func LoadLibrary(s State, library []Part) State {
	next := clone(s)
	next.Parts = nil
	for _, p := range library {
		if p.IsRequired {
			p.OrderIndex = len(next.Parts)
			next.Parts = append(next.Parts, p)
		}
	}
	return next
}

// AddPart appends a part at the end of the current order. Parts already
// present (same non-zero PartID) are not added twice.
func AddPart(s State, p Part) State {
	if p.PartID != 0 {
		for _, existing := range s.Parts {
			if existing.PartID == p.PartID {
				return s
			}
		}
	}
	next := clone(s)
	p.OrderIndex = len(next.Parts)
	next.Parts = append(next.Parts, p)
	return next
}

// RemovePart removes the part at index and closes the order gap.
func RemovePart(s State, index int) State {
	if index < 0 || index >= len(s.Parts) {
		return s
	}
	next := clone(s)
	next.Parts = append(next.Parts[:index], next.Parts[index+1:]...)
	return reindex(next)
}

// MovePart moves the part at from to position to, shifting the rest. Order
// indexes are re-derived immediately; no partial reorder state is observable.
func MovePart(s State, from, to int) State {
	if from < 0 || from >= len(s.Parts) || to < 0 || to >= len(s.Parts) || from == to {
		return s
	}
	next := clone(s)
	p := next.Parts[from]
	next.Parts = append(next.Parts[:from], next.Parts[from+1:]...)
	next.Parts = append(next.Parts[:to], append([]Part{p}, next.Parts[to:]...)...)
	return reindex(next)
}

// UpdateContent replaces the template content of the part at index.
func UpdateContent(s State, index int, content string) State {
	if index < 0 || index >= len(s.Parts) {
		return s
	}
	next := clone(s)
	next.Parts[index].Content = content
	return next
}

// UpdateTitle replaces the title of the part at index.
func UpdateTitle(s State, index int, title string) State {
	if index < 0 || index >= len(s.Parts) {
		return s
	}
	next := clone(s)
	next.Parts[index].Title = title
	return next
}

// Normalize sorts parts by their order index (stable, so ties keep arrival
// order) and reassigns contiguous indexes from 0. Every save passes through
// here so gaps and duplicates never reach the join table.
func Normalize(s State) State {
	next := clone(s)
	sort.SliceStable(next.Parts, func(i, j int) bool {
		return next.Parts[i].OrderIndex < next.Parts[j].OrderIndex
	})
	return reindex(next)
}

func reindex(s State) State {
	for i := range s.Parts {
		s.Parts[i].OrderIndex = i
	}
	return s
}

func clone(s State) State {
	parts := make([]Part, len(s.Parts))
	copy(parts, s.Parts)
	s.Parts = parts
	return s
}
