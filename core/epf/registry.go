package epf

import "time"

// Region describes one supported market.
type Region struct {
	Name string
	// TestDate is the first day of the conventional test split.
	TestDate time.Time
}

var regions = []Region{
	{Name: "NP", TestDate: day(2016, time.December, 27)},
	{Name: "PJM", TestDate: day(2016, time.December, 27)},
	{Name: "BE", TestDate: day(2015, time.January, 4)},
	{Name: "FR", TestDate: day(2015, time.January, 4)},
	{Name: "DE", TestDate: day(2016, time.January, 4)},
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// GetGroup returns the region registered under name.
func GetGroup(name string) (Region, error) {
	for _, r := range regions {
		if r.Name == name {
			return r, nil
		}
	}
	return Region{}, &UnknownGroupError{Name: name}
}

// Groups lists the supported group names in registry order.
func Groups() []string {
	names := make([]string, len(regions))
	for i, r := range regions {
		names[i] = r.Name
	}
	return names
}

// Regions returns a copy of the registry.
func Regions() []Region {
	out := make([]Region, len(regions))
	copy(out, regions)
	return out
}
