package epf

import (
	"cmp"
	"math"
	"slices"
)

// assemble concatenates per-region fragments into a panel sorted by
// (region_id, timestamp) and derives the static table.
//
// A single permutation is computed from Y and applied to both Y and X, so the
// two tables stay row aligned whatever the fragments contain. The sort is
// stable: duplicate keys keep their load order.
func assemble(parts []*Dataset) *Dataset {
	var n, nExo int
	var seen [7]bool
	for _, p := range parts {
		n += p.Y.Len()
		nExo = max(nExo, len(p.X.ExogenousColumns))
		for _, d := range p.X.DayColumns {
			seen[d] = true
		}
	}

	y := &TargetTable{Rows: make([]TargetRow, 0, n)}
	x := &FeatureTable{Rows: make([]FeatureRow, 0, n)}
	for i := 1; i <= nExo; i++ {
		x.ExogenousColumns = append(x.ExogenousColumns, ExogenousColumn(i))
	}
	for d, ok := range seen {
		if ok {
			x.DayColumns = append(x.DayColumns, d)
		}
	}

	for _, p := range parts {
		y.Rows = append(y.Rows, p.Y.Rows...)
		for _, r := range p.X.Rows {
			r.Exogenous = padNaN(r.Exogenous, nExo)
			x.Rows = append(x.Rows, r)
		}
	}

	perm := make([]int, len(y.Rows))
	for i := range perm {
		perm[i] = i
	}
	slices.SortStableFunc(perm, func(a, b int) int {
		ra, rb := y.Rows[a], y.Rows[b]
		if c := cmp.Compare(ra.RegionID, rb.RegionID); c != 0 {
			return c
		}
		return ra.Timestamp.Compare(rb.Timestamp)
	})
	y.Rows = permute(y.Rows, perm)
	x.Rows = permute(x.Rows, perm)

	return &Dataset{Y: y, X: x, S: staticTable(y)}
}

// staticTable one-hot encodes the distinct region ids of y. Columns are
// sorted lexicographically; rows follow the first appearance in y.
func staticTable(y *TargetTable) *StaticTable {
	var ids []string
	for _, r := range y.Rows {
		if !slices.Contains(ids, r.RegionID) {
			ids = append(ids, r.RegionID)
		}
	}
	cols := slices.Clone(ids)
	slices.Sort(cols)

	s := &StaticTable{Regions: cols, Rows: make([]StaticRow, len(ids))}
	for i, id := range ids {
		ind := make([]int, len(cols))
		for j, c := range cols {
			if c == id {
				ind[j] = 1
			}
		}
		s.Rows[i] = StaticRow{RegionID: id, Indicators: ind}
	}
	return s
}

func permute[T any](rows []T, perm []int) []T {
	out := make([]T, len(perm))
	for i, p := range perm {
		out[i] = rows[p]
	}
	return out
}

func padNaN(v []float64, n int) []float64 {
	if len(v) >= n {
		return v
	}
	out := make([]float64, n)
	copy(out, v)
	for i := len(v); i < n; i++ {
		out[i] = math.NaN()
	}
	return out
}
