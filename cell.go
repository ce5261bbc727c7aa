package gridcalc

// Scalar represents a dynamic cell value.
// types:
//   - float64: numeric values
//   - *CellError: error sentinels (#REF!, #CYCLE!, #DIV0!, ...)
//   - nil: empty
type Scalar any

// RowID is a stable row identifier. Identifiers are minted monotonically by
// the owning AxisIndex, start at 1 (0 is reserved for "none"), and are never
// reused within the lifetime of a sheet.
type RowID uint32

// ColID is a stable column identifier with the same lifecycle as RowID.
type ColID uint32

// CellKey addresses a cell by its stable identifiers. Keys survive
// structural edits; positions do not.
type CellKey struct {
	Row RowID
	Col ColID
}

// Pos is a 1-based user-visible position pair. Positions are volatile under
// row/column insertion and deletion.
type Pos struct {
	Row int
	Col int
}

// Cell is a populated sheet cell. It has exactly two shapes: a value cell
// (Formula nil, Value set) or a formula cell (Formula set, Cached holding
// the last computed result or nil when invalidated).
type Cell struct {
	Value   Scalar // scalar for value cells
	Formula Node   // AST for formula cells
	Cached  Scalar // cached formula result, nil means not computed
}

// IsFormula reports whether the cell holds a formula
func (c *Cell) IsFormula() bool {
	return c != nil && c.Formula != nil
}

// scalarNumber coerces a scalar to a number for arithmetic. Empty cells
// contribute 0; errors do not coerce.
func scalarNumber(v Scalar) (float64, *CellError) {
	switch n := v.(type) {
	case nil:
		return 0, nil
	case float64:
		return n, nil
	case *CellError:
		return 0, n
	default:
		return 0, NewCellError(ErrCodeValue)
	}
}
