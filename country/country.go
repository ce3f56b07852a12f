// Package country implements the dense countryId -> ISO code table and its
// sorted reverse index, grounded on storage/shipDB.go's dense-record-store
// style (a flat indexed slice plus a small derived lookup structure) rather
// than a map keyed by id.
package country

import "sort"

// Table holds the dense countryId -> code mapping. Index 0 is reserved for
// "no country / ocean" and maps to the empty code.
type Table struct {
	codes []string // codes[id] == ISO code for countryId == id
	order []int    // indices into codes, sorted by code, for ISO -> id lookup
}

// NewTable builds a Table from a dense code list (codes[0] should be "").
func NewTable(codes []string) *Table {
	t := &Table{codes: codes}
	t.order = make([]int, len(codes))
	for i := range t.order {
		t.order[i] = i
	}
	sort.Slice(t.order, func(i, j int) bool {
		return t.codes[t.order[i]] < t.codes[t.order[j]]
	})
	return t
}

// Codes returns the dense code list, codes[id] for id in [0,len).
func (t *Table) Codes() []string { return t.codes }

// ISO returns the ISO code for id, or "" if id is out of range.
func (t *Table) ISO(id uint16) string {
	if int(id) >= len(t.codes) {
		return ""
	}
	return t.codes[id]
}

// IDFromISO returns the countryId for code via binary search over the
// sorted reverse index, or 0 if code is unknown.
func (t *Table) IDFromISO(code string) uint16 {
	i := sort.Search(len(t.order), func(i int) bool {
		return t.codes[t.order[i]] >= code
	})
	if i < len(t.order) && t.codes[t.order[i]] == code {
		return uint16(t.order[i])
	}
	return 0
}

// Len returns the number of entries in the table (including the reserved
// id 0 entry).
func (t *Table) Len() int { return len(t.codes) }
