package gridcalc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplicePos(t *testing.T) {
	cases := []struct {
		name  string
		pos   int
		atPos int
		ins   int
		del   int
		want  int
		alive bool
	}{
		{"before insert", 2, 3, 2, 0, 2, true},
		{"at insert point", 3, 3, 2, 0, 5, true},
		{"after insert point", 7, 3, 2, 0, 9, true},
		{"before delete window", 2, 3, 0, 2, 2, true},
		{"first deleted", 3, 3, 0, 2, 0, false},
		{"last deleted", 4, 3, 0, 2, 0, false},
		{"after delete window", 5, 3, 0, 2, 3, true},
		{"identity", 4, 9, 0, 2, 4, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, alive := splicePos(tc.pos, tc.atPos, tc.ins, tc.del)
			assert.Equal(t, tc.alive, alive)
			if alive {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}

// invariant: after a splice, a surviving relative anchor resolves to the
// same identifier it resolved to before
func TestSpliceRelativeAnchorKeepsIdentifier(t *testing.T) {
	cases := []struct {
		name          string
		atPos, ins    int
		from, to      int
	}{
		{"insert above both", 1, 2, 0, 0},
		{"insert between", 3, 1, 0, 0},
		{"insert below both", 8, 4, 0, 0},
		{"delete above both", 0, 0, 1, 1},
		{"delete between", 0, 0, 3, 4},
		{"delete below both", 0, 0, 8, 9},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := New(10, 5)
			s.SetValue(at(2, 1), 42)
			s.SetFormula(at(6, 1), "=A2")

			before, ok := refTargetKey(s, at(6, 1))
			require.True(t, ok)

			if tc.ins > 0 {
				s.InsertRows(tc.atPos, tc.ins)
			} else {
				s.DeleteRows(tc.from, tc.to)
			}

			// locate the formula cell at its new position
			var formulaPos Pos
			for p := 1; p <= s.Rows(); p++ {
				if c := s.store.Get(mustKey(t, s, at(p, 1))); c.IsFormula() {
					formulaPos = at(p, 1)
				}
			}
			require.NotZero(t, formulaPos.Row, "formula survived")

			after, ok := refTargetKey(s, formulaPos)
			require.True(t, ok)
			assert.Equal(t, before, after)
			assert.Equal(t, 42.0, s.GetValue(formulaPos))
		})
	}
}

// refTargetKey resolves the single-ref formula at p to its producer key
func refTargetKey(s *Sheet, p Pos) (CellKey, bool) {
	cell := s.store.Get(mustKeyNoT(s, p))
	if !cell.IsFormula() {
		return CellKey{}, false
	}
	ref, ok := cell.Formula.(*RefNode)
	if !ok {
		return CellKey{}, false
	}
	return ref.Ref.resolve(s.rows, s.cols)
}

func mustKeyNoT(s *Sheet, p Pos) CellKey {
	k, _ := s.keyAt(p)
	return k
}

// invariant: after a splice, a surviving absolute anchor resolves to the
// numeric position it was pinned at
func TestSpliceAbsoluteAnchorKeepsPosition(t *testing.T) {
	s := New(10, 5)

	s.SetValue(at(4, 1), 1)
	s.SetFormula(at(8, 1), "=$A$4")

	s.InsertRows(2, 2) // formula moves to row 10; the pin stays at row 4
	assert.Equal(t, "=$A$4", s.GetSource(at(10, 1)))

	s.DeleteRows(1, 1) // formula moves to row 9; the pin still reads row 4
	assert.Equal(t, "=$A$4", s.GetSource(at(9, 1)))
}

func TestSpliceAbsoluteTargetInDeletedWindowDies(t *testing.T) {
	s := New(10, 5)

	s.SetValue(at(4, 1), 1)
	s.SetFormula(at(8, 1), "=$A$4")
	s.DeleteRows(3, 5)

	assert.True(t, IsCellError(s.GetValue(at(5, 1)), ErrCodeRef))
	assert.Equal(t, "#REF!", s.GetSource(at(5, 1)))
}

func TestSpliceRangeCornerDeathCollapses(t *testing.T) {
	s := New(10, 5)

	// end corner is relative to row 6; deleting row 6 kills it
	s.SetValue(at(5, 1), 1)
	s.SetFormula(at(8, 1), "=SUM($A$5:A6)")
	require.Equal(t, 1.0, s.GetValue(at(8, 1)))

	s.DeleteRows(6, 6)
	assert.True(t, IsCellError(s.GetValue(at(7, 1)), ErrCodeRef))
}

func TestSpliceRangeInversionCollapses(t *testing.T) {
	s := New(10, 5)

	// relative start at row 4, end pinned at row 5: inserting two rows
	// above pushes the start below the pinned end
	s.SetFormula(at(8, 1), "=SUM(A4:$A$5)")
	require.Equal(t, 0.0, s.GetValue(at(8, 1)))

	s.InsertRows(2, 2)
	assert.True(t, IsCellError(s.GetValue(at(10, 1)), ErrCodeRef))
	assert.Equal(t, "#REF!", s.GetSource(at(10, 1)))
}

func TestSpliceTransformSharesUntouchedSubtrees(t *testing.T) {
	s := New(10, 5)

	s.SetValue(at(1, 1), 2)
	s.SetFormula(at(5, 1), "=A1+$A$2")
	cell := s.store.Get(mustKey(t, s, at(5, 1)))
	oldRoot := cell.Formula.(*BinaryNode)

	s.InsertRows(1, 1)

	newRoot := s.store.Get(mustKey(t, s, at(6, 1))).Formula.(*BinaryNode)
	require.NotSame(t, oldRoot, newRoot)
	// the relative ref kept its delta and is shared; the pinned ref was
	// rebuilt
	assert.Same(t, oldRoot.Left, newRoot.Left)
	assert.NotSame(t, oldRoot.Right, newRoot.Right)
}

func TestSpliceFormulaUnchangedWhenWindowBeyondReach(t *testing.T) {
	s := New(10, 5)

	s.SetValue(at(1, 1), 3)
	s.SetFormula(at(2, 1), "=A1")
	cell := s.store.Get(mustKey(t, s, at(2, 1)))
	oldRoot := cell.Formula

	s.InsertRows(5, 2)
	s.DeleteRows(5, 6)

	assert.Same(t, oldRoot, s.store.Get(mustKey(t, s, at(2, 1))).Formula)
	assert.Equal(t, 3.0, s.GetValue(at(2, 1)))
}
