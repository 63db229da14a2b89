package epf

import (
	"slices"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary holds descriptive statistics of one region's target series.
type Summary struct {
	RegionID string
	Count    int
	Mean     float64
	Std      float64
	Min      float64
	Q25      float64
	Median   float64
	Q75      float64
	Max      float64
	First    time.Time
	Last     time.Time
	// TestDate is the registry split date, zero for unregistered regions.
	TestDate  time.Time
	TrainRows int
	TestRows  int
}

// Describe summarises the target of every region in y, in order of first
// appearance. Rows at or after a region's test date count as test rows.
func Describe(y *TargetTable) []Summary {
	var order []string
	values := make(map[string][]float64)
	stamps := make(map[string][]time.Time)
	for _, r := range y.Rows {
		if _, ok := values[r.RegionID]; !ok {
			order = append(order, r.RegionID)
		}
		values[r.RegionID] = append(values[r.RegionID], r.Value)
		stamps[r.RegionID] = append(stamps[r.RegionID], r.Timestamp)
	}

	out := make([]Summary, 0, len(order))
	for _, id := range order {
		out = append(out, summarise(id, values[id], stamps[id]))
	}
	return out
}

func summarise(id string, v []float64, ts []time.Time) Summary {
	s := Summary{RegionID: id, Count: len(v)}

	sorted := slices.Clone(v)
	slices.Sort(sorted)
	s.Mean, s.Std = stat.MeanStdDev(v, nil)
	if len(v) < 2 {
		s.Std = 0
	}
	s.Min = floats.Min(v)
	s.Max = floats.Max(v)
	s.Q25 = stat.Quantile(0.25, stat.Empirical, sorted, nil)
	s.Median = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	s.Q75 = stat.Quantile(0.75, stat.Empirical, sorted, nil)

	s.First = slices.MinFunc(ts, time.Time.Compare)
	s.Last = slices.MaxFunc(ts, time.Time.Compare)

	if r, err := GetGroup(id); err == nil {
		s.TestDate = r.TestDate
		for _, t := range ts {
			if t.Before(r.TestDate) {
				s.TrainRows++
			} else {
				s.TestRows++
			}
		}
	} else {
		s.TrainRows = len(ts)
	}
	return s
}
