package gridcalc

import (
	"fmt"
	"testing"
)

func BenchmarkSetValue(b *testing.B) {
	s := New(1_000_000, 100)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.SetValue(Pos{Row: i%1_000_000 + 1, Col: i%100 + 1}, float64(i))
	}
}

func BenchmarkGetValueSparse(b *testing.B) {
	s := New(1_000_000, 100)
	for i := 0; i < 1000; i++ {
		s.SetValue(Pos{Row: i*997 + 1, Col: i%100 + 1}, float64(i))
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.GetValue(Pos{Row: i%1_000_000 + 1, Col: i%100 + 1})
	}
}

func BenchmarkRecalcChain(b *testing.B) {
	const depth = 200
	s := New(depth+1, 2)
	s.SetValue(Pos{Row: 1, Col: 1}, 1)
	for r := 2; r <= depth; r++ {
		s.SetFormula(Pos{Row: r, Col: 1}, fmt.Sprintf("=A%d+1", r-1))
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.SetValue(Pos{Row: 1, Col: 1}, float64(i))
	}
}

func BenchmarkSumRangeRecalc(b *testing.B) {
	const span = 500
	s := New(span+2, 2)
	for r := 1; r <= span; r++ {
		s.SetValue(Pos{Row: r, Col: 1}, float64(r))
	}
	s.SetFormula(Pos{Row: span + 1, Col: 1}, fmt.Sprintf("=SUM(A1:A%d)", span))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.SetValue(Pos{Row: i%span + 1, Col: 1}, float64(i))
	}
}

func BenchmarkInsertRows(b *testing.B) {
	s := New(1000, 10)
	for r := 1; r <= 100; r++ {
		s.SetValue(Pos{Row: r * 10, Col: 1}, float64(r))
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.InsertRows(i%1000+1, 1)
	}
}

func BenchmarkAxisLookup(b *testing.B) {
	ax := NewAxisIndex[RowID](1_000_000)
	// fragment the axis so lookups cross segment boundaries
	for i := 0; i < 100; i++ {
		ax.Remove(i*9000+500, i*9000+500)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		id, _ := ax.PosToID(i%ax.MaxPos() + 1)
		ax.IDToPos(id)
	}
}
