// Package gridcalc is the evaluation core of a spreadsheet engine: a sparse
// cell store keyed by stable row/column identifiers, anchor-based formulas,
// a producer->consumer dependency graph with cycle detection, and a splice
// engine that rewrites formulas through row/column insertion and deletion.
package gridcalc

import "sync"

// Sheet is the coordinator over the four leaf components. All public
// operations are synchronous: mutations drain the recalculation queue
// before returning, so callers always observe a fully consistent state.
// A coarse lock serializes external callers; the engine itself is a single
// logical thread of control.
type Sheet struct {
	mu       sync.Mutex
	rows     *AxisIndex[RowID]
	cols     *AxisIndex[ColID]
	store    *CellStore
	graph    *DepGraph
	watchers *RangeWatchers

	dirty     map[CellKey]struct{} // keys whose cached values may be stale
	evalStack map[CellKey]struct{} // formulas currently evaluating, for cycle cuts
}

// New creates a sheet with the given initial extents
func New(rows, cols int) *Sheet {
	if rows < 0 {
		rows = 0
	}
	if cols < 0 {
		cols = 0
	}
	return &Sheet{
		rows:      NewAxisIndex[RowID](rows),
		cols:      NewAxisIndex[ColID](cols),
		store:     NewCellStore(),
		graph:     NewDepGraph(),
		watchers:  NewRangeWatchers(),
		dirty:     make(map[CellKey]struct{}),
		evalStack: make(map[CellKey]struct{}),
	}
}

// Rows returns the current number of live rows
func (s *Sheet) Rows() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rows.MaxPos()
}

// Cols returns the current number of live columns
func (s *Sheet) Cols() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cols.MaxPos()
}

// CellCount returns the number of populated cells
func (s *Sheet) CellCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Len()
}

// SegmentCount returns the number of live segments on an axis (AxisRows or
// AxisCols). A freshly created axis is one segment; partial removals split.
func (s *Sheet) SegmentCount(axis int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if axis == AxisRows {
		return s.rows.SegmentCount()
	}
	return s.cols.SegmentCount()
}

// keyAt resolves a position to its identifier pair
func (s *Sheet) keyAt(p Pos) (CellKey, bool) {
	rid, ok := s.rows.PosToID(p.Row)
	if !ok {
		return CellKey{}, false
	}
	cid, ok := s.cols.PosToID(p.Col)
	if !ok {
		return CellKey{}, false
	}
	return CellKey{Row: rid, Col: cid}, true
}

// markDirty schedules a key for recalculation
func (s *Sheet) markDirty(key CellKey) {
	s.dirty[key] = struct{}{}
}

// markWatchers schedules every formula observing a range that covers key
func (s *Sheet) markWatchers(key CellKey) {
	for _, f := range s.watchers.WatchersOf(key) {
		s.dirty[f] = struct{}{}
	}
}

// SetValue stores a plain number at pos. An out-of-range position is a
// no-op. If the address held a formula, its dependencies and watches are
// retracted first.
func (s *Sheet) SetValue(p Pos, value float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, ok := s.keyAt(p)
	if !ok {
		return
	}
	if old := s.store.Get(key); old.IsFormula() {
		s.graph.ReplaceAllInbound(key, nil)
		s.watchers.RemoveWatches(key)
	}
	s.store.Set(key, &Cell{Value: value})
	s.markDirty(key)
	s.markWatchers(key)
	s.flush()
}

// SetFormula parses text with pos as the anchoring base and stores the
// formula. A parse failure stores Value(#REF!). If any proposed producer
// would close a dependency cycle, the AST is stored with cached #CYCLE!
// and no edges are installed.
func (s *Sheet) SetFormula(p Pos, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, ok := s.keyAt(p)
	if !ok {
		return
	}

	// replacing a formula atomically retracts its previous declarations
	if old := s.store.Get(key); old.IsFormula() {
		s.graph.ReplaceAllInbound(key, nil)
		s.watchers.RemoveWatches(key)
	}

	ast, err := ParseFormula(text, &ParserContext{BasePos: p, BaseKey: key})
	if err != nil {
		s.store.Set(key, &Cell{Value: NewCellError(ErrCodeRef)})
		s.markDirty(key)
		s.markWatchers(key)
		s.flush()
		return
	}

	producers := s.producersOf(ast)
	if s.wouldCycle(key, producers) {
		s.store.Set(key, &Cell{Formula: ast, Cached: NewCellError(ErrCodeCycle)})
		for _, d := range s.graph.Dependents(key) {
			s.markDirty(d)
		}
		s.markWatchers(key)
		s.flush()
		return
	}

	s.graph.ReplaceAllInbound(key, producers)
	s.installWatches(key, ast)
	s.store.Set(key, &Cell{Formula: ast})
	s.markDirty(key)
	s.markWatchers(key)
	s.flush()
}

// GetValue returns the scalar at pos: nil for empty or out-of-range
// addresses, the stored number for value cells, the cached result for
// formula cells (evaluating on demand iff not cached).
func (s *Sheet) GetValue(p Pos) Scalar {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, ok := s.keyAt(p)
	if !ok {
		return nil
	}
	return s.valueOfKey(key)
}

// GetSource returns the display text at pos: formula text regenerated from
// the AST for formula cells, the rendered scalar for value cells, "" for
// empty addresses.
func (s *Sheet) GetSource(p Pos) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, ok := s.keyAt(p)
	if !ok {
		return ""
	}
	cell := s.store.Get(key)
	if cell == nil {
		return ""
	}
	if cell.IsFormula() {
		return FormatFormula(cell.Formula, s.rows, s.cols)
	}
	return FormatScalar(cell.Value)
}

// Clear removes the cell at pos. Consumers of the address keep their edges
// so that a later write invalidates them again.
func (s *Sheet) Clear(p Pos) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, ok := s.keyAt(p)
	if !ok {
		return
	}
	cell := s.store.Get(key)
	if cell == nil {
		return
	}
	if cell.IsFormula() {
		s.graph.ReplaceAllInbound(key, nil)
		s.watchers.RemoveWatches(key)
	}
	s.store.Delete(key)
	for _, d := range s.graph.Dependents(key) {
		s.markDirty(d)
	}
	s.markWatchers(key)
	s.flush()
}

// valueOfKey reads the scalar behind a key, evaluating uncached formulas
// on demand. Callers hold the sheet lock.
func (s *Sheet) valueOfKey(key CellKey) Scalar {
	cell := s.store.Get(key)
	if cell == nil {
		return nil
	}
	if !cell.IsFormula() {
		return cell.Value
	}
	if cell.Cached != nil {
		return cell.Cached
	}
	return s.evaluateFormula(key, cell)
}

// evaluateFormula evaluates a formula cell and writes its cache. Re-entry
// through the active evaluation stack is a cycle cut.
func (s *Sheet) evaluateFormula(key CellKey, cell *Cell) Scalar {
	if _, busy := s.evalStack[key]; busy {
		return NewCellError(ErrCodeCycle)
	}
	s.evalStack[key] = struct{}{}
	result := cell.Formula.Eval(s)
	delete(s.evalStack, key)
	cell.Cached = result
	return result
}

// rangeValues expands a range to the scalars of every address in its
// rectangle, row-major. Corners outside the live extents are a #REF!.
func (s *Sheet) rangeValues(r RangeRef) ([]Scalar, *CellError) {
	top, left, bottom, right, ok := r.resolveRect(s.rows, s.cols)
	if !ok {
		return nil, NewCellError(ErrCodeRef)
	}
	if top < 1 || left < 1 || bottom > s.rows.MaxPos() || right > s.cols.MaxPos() {
		return nil, NewCellError(ErrCodeRef)
	}
	values := make([]Scalar, 0, (bottom-top+1)*(right-left+1))
	for rp := top; rp <= bottom; rp++ {
		rid, _ := s.rows.PosToID(rp)
		for cp := left; cp <= right; cp++ {
			cid, _ := s.cols.PosToID(cp)
			values = append(values, s.valueOfKey(CellKey{Row: rid, Col: cid}))
		}
	}
	return values, nil
}

// producersOf computes the addresses an AST reads: the resolved target for
// each reference, every rectangle address for each range. Unresolvable
// references contribute nothing; evaluation reports them as #REF!.
func (s *Sheet) producersOf(ast Node) []CellKey {
	seen := make(map[CellKey]struct{})
	var producers []CellKey
	add := func(key CellKey) {
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		producers = append(producers, key)
	}

	var walk func(n Node)
	walk = func(n Node) {
		switch node := n.(type) {
		case *RefNode:
			if key, ok := node.Ref.resolve(s.rows, s.cols); ok {
				add(key)
			}
		case *RangeNode:
			top, left, bottom, right, ok := node.Range.resolveRect(s.rows, s.cols)
			if !ok || top < 1 || left < 1 || bottom > s.rows.MaxPos() || right > s.cols.MaxPos() {
				return
			}
			for rp := top; rp <= bottom; rp++ {
				rid, _ := s.rows.PosToID(rp)
				for cp := left; cp <= right; cp++ {
					cid, _ := s.cols.PosToID(cp)
					add(CellKey{Row: rid, Col: cid})
				}
			}
		case *UnaryNode:
			walk(node.X)
		case *BinaryNode:
			walk(node.Left)
			walk(node.Right)
		case *CallNode:
			for _, arg := range node.Args {
				walk(arg)
			}
		}
	}
	walk(ast)
	return producers
}

// wouldCycle reports whether installing edges from any producer to key
// would close a loop
func (s *Sheet) wouldCycle(key CellKey, producers []CellKey) bool {
	for _, p := range producers {
		if s.graph.WouldCreateCycle(p, key) {
			return true
		}
	}
	return false
}

// installWatches declares key's range observations and registers every
// address of each rectangle
func (s *Sheet) installWatches(key CellKey, ast Node) {
	var walk func(n Node)
	walk = func(n Node) {
		switch node := n.(type) {
		case *RangeNode:
			s.watchers.AddWatch(node.Range, key)
			top, left, bottom, right, ok := node.Range.resolveRect(s.rows, s.cols)
			if !ok || top < 1 || left < 1 || bottom > s.rows.MaxPos() || right > s.cols.MaxPos() {
				return
			}
			for rp := top; rp <= bottom; rp++ {
				rid, _ := s.rows.PosToID(rp)
				for cp := left; cp <= right; cp++ {
					cid, _ := s.cols.PosToID(cp)
					s.watchers.RegisterCell(CellKey{Row: rid, Col: cid}, key)
				}
			}
		case *UnaryNode:
			walk(node.X)
		case *BinaryNode:
			walk(node.Left)
			walk(node.Right)
		case *CallNode:
			for _, arg := range node.Args {
				walk(arg)
			}
		}
	}
	walk(ast)
}

// refreshWatches reinstalls key's watches after its rectangles may have
// changed extent
func (s *Sheet) refreshWatches(key CellKey, ast Node) {
	s.watchers.RemoveWatches(key)
	s.installWatches(key, ast)
}

// flush drains the accumulated dirty set: caches of the affected closure
// are invalidated, range formulas re-resolve their rectangles and replace
// their inbound edges, and every affected formula re-evaluates in
// topological order.
func (s *Sheet) flush() {
	if len(s.dirty) == 0 {
		return
	}
	dirty := s.dirty
	s.dirty = make(map[CellKey]struct{})

	affected := s.graph.AffectedFrom(dirty)
	for key := range affected {
		if cell := s.store.Get(key); cell.IsFormula() {
			cell.Cached = nil
		}
	}

	order := s.graph.TopoOrder(affected)
	for _, key := range order {
		cell := s.store.Get(key)
		if !cell.IsFormula() {
			continue
		}
		if hasRange(cell.Formula) {
			// a splice can have changed which addresses the rectangle
			// spans, so the inbound edge set is recomputed here
			producers := s.producersOf(cell.Formula)
			if s.wouldCycle(key, producers) {
				s.graph.ReplaceAllInbound(key, nil)
				s.watchers.RemoveWatches(key)
				cell.Cached = NewCellError(ErrCodeCycle)
				continue
			}
			s.graph.ReplaceAllInbound(key, producers)
			s.refreshWatches(key, cell.Formula)
		}
		if cell.Cached == nil {
			s.evaluateFormula(key, cell)
		}
	}
}
