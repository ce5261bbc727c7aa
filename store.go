package gridcalc

import "iter"

// CellStore is the sparse mapping from identifier pairs to cell records.
// Only populated cells exist; absence denotes emptiness. Secondary per-axis
// indexes let structural deletes visit only the affected cells instead of
// scanning the whole store.
type CellStore struct {
	cells map[CellKey]*Cell
	byRow map[RowID]map[ColID]struct{}
	byCol map[ColID]map[RowID]struct{}
}

// NewCellStore creates an empty cell store
func NewCellStore() *CellStore {
	return &CellStore{
		cells: make(map[CellKey]*Cell),
		byRow: make(map[RowID]map[ColID]struct{}),
		byCol: make(map[ColID]map[RowID]struct{}),
	}
}

// Get retrieves the cell at key, or nil when the address is empty
func (cs *CellStore) Get(key CellKey) *Cell {
	return cs.cells[key]
}

// Has reports whether a cell exists at key
func (cs *CellStore) Has(key CellKey) bool {
	_, ok := cs.cells[key]
	return ok
}

// Set stores a cell record at key, replacing any previous record
func (cs *CellStore) Set(key CellKey, cell *Cell) {
	if cell == nil {
		cs.Delete(key)
		return
	}
	if _, ok := cs.cells[key]; !ok {
		if cs.byRow[key.Row] == nil {
			cs.byRow[key.Row] = make(map[ColID]struct{})
		}
		cs.byRow[key.Row][key.Col] = struct{}{}
		if cs.byCol[key.Col] == nil {
			cs.byCol[key.Col] = make(map[RowID]struct{})
		}
		cs.byCol[key.Col][key.Row] = struct{}{}
	}
	cs.cells[key] = cell
}

// Delete removes the cell at key. Returns true if a cell was removed.
func (cs *CellStore) Delete(key CellKey) bool {
	if _, ok := cs.cells[key]; !ok {
		return false
	}
	delete(cs.cells, key)
	if cols := cs.byRow[key.Row]; cols != nil {
		delete(cols, key.Col)
		if len(cols) == 0 {
			delete(cs.byRow, key.Row)
		}
	}
	if rows := cs.byCol[key.Col]; rows != nil {
		delete(rows, key.Row)
		if len(rows) == 0 {
			delete(cs.byCol, key.Col)
		}
	}
	return true
}

// Len returns the number of populated cells
func (cs *CellStore) Len() int {
	return len(cs.cells)
}

// All iterates over every populated cell. Iteration order is unspecified;
// the iterator is invalidated by any mutation.
func (cs *CellStore) All() iter.Seq2[CellKey, *Cell] {
	return func(yield func(CellKey, *Cell) bool) {
		for key, cell := range cs.cells {
			if !yield(key, cell) {
				return
			}
		}
	}
}

// RemoveRows deletes every cell whose row identifier is being retired.
// Returns the removed keys so the caller can retract graph edges and
// watches. Must be paired with the axis removal that retires the ids.
func (cs *CellStore) RemoveRows(ids []RowID) []CellKey {
	var removed []CellKey
	for _, id := range ids {
		for col := range cs.byRow[id] {
			key := CellKey{Row: id, Col: col}
			removed = append(removed, key)
		}
	}
	for _, key := range removed {
		cs.Delete(key)
	}
	return removed
}

// RemoveCols deletes every cell whose column identifier is being retired
func (cs *CellStore) RemoveCols(ids []ColID) []CellKey {
	var removed []CellKey
	for _, id := range ids {
		for row := range cs.byCol[id] {
			key := CellKey{Row: row, Col: id}
			removed = append(removed, key)
		}
	}
	for _, key := range removed {
		cs.Delete(key)
	}
	return removed
}
