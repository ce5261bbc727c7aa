package gridcalc

// RangeWatchers tracks which formulas observe which range regions. The
// dependency graph carries per-cell edges as the primary invalidation
// channel; watchers supplement it so that writing into a previously empty
// address inside an observed rectangle still invalidates the observer even
// though no edge existed before the write.
type RangeWatchers struct {
	watchers map[CellKey]map[CellKey]struct{} // cell -> formula keys observing it
	ranges   map[CellKey][]RangeRef           // formula key -> its range refs
	cells    map[CellKey]map[CellKey]struct{} // formula key -> cells it registered
}

// NewRangeWatchers creates an empty watcher table
func NewRangeWatchers() *RangeWatchers {
	return &RangeWatchers{
		watchers: make(map[CellKey]map[CellKey]struct{}),
		ranges:   make(map[CellKey][]RangeRef),
		cells:    make(map[CellKey]map[CellKey]struct{}),
	}
}

// AddWatch records that formulaKey observes the region of rng
func (rw *RangeWatchers) AddWatch(rng RangeRef, formulaKey CellKey) {
	rw.ranges[formulaKey] = append(rw.ranges[formulaKey], rng)
}

// RegisterCell records that formulaKey must be invalidated when cellKey is
// written. Registration is idempotent.
func (rw *RangeWatchers) RegisterCell(cellKey, formulaKey CellKey) {
	if rw.watchers[cellKey] == nil {
		rw.watchers[cellKey] = make(map[CellKey]struct{})
	}
	rw.watchers[cellKey][formulaKey] = struct{}{}

	if rw.cells[formulaKey] == nil {
		rw.cells[formulaKey] = make(map[CellKey]struct{})
	}
	rw.cells[formulaKey][cellKey] = struct{}{}
}

// RemoveWatches retracts every watch declared by formulaKey
func (rw *RangeWatchers) RemoveWatches(formulaKey CellKey) {
	for cellKey := range rw.cells[formulaKey] {
		if set := rw.watchers[cellKey]; set != nil {
			delete(set, formulaKey)
			if len(set) == 0 {
				delete(rw.watchers, cellKey)
			}
		}
	}
	delete(rw.cells, formulaKey)
	delete(rw.ranges, formulaKey)
}

// WatchersOf returns the formula keys observing cellKey
func (rw *RangeWatchers) WatchersOf(cellKey CellKey) []CellKey {
	set := rw.watchers[cellKey]
	if len(set) == 0 {
		return nil
	}
	result := make([]CellKey, 0, len(set))
	for f := range set {
		result = append(result, f)
	}
	return result
}

// Ranges returns the range refs declared by formulaKey
func (rw *RangeWatchers) Ranges(formulaKey CellKey) []RangeRef {
	return rw.ranges[formulaKey]
}

// PurgeCells drops watcher entries keyed by retired cells. Observing
// formulas keep their range refs; the retired addresses can never be
// written again.
func (rw *RangeWatchers) PurgeCells(keys []CellKey) {
	for _, cellKey := range keys {
		for f := range rw.watchers[cellKey] {
			if set := rw.cells[f]; set != nil {
				delete(set, cellKey)
				if len(set) == 0 {
					delete(rw.cells, f)
				}
			}
		}
		delete(rw.watchers, cellKey)
	}
}

// WatchCount returns the number of cells with at least one observer
func (rw *RangeWatchers) WatchCount() int {
	return len(rw.watchers)
}
