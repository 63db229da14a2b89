// Package epf loads the electricity price forecasting (EPF) datasets.
//
// Five market regions are supported (NP, PJM, BE, FR, DE). Each region is a
// single CSV file fetched from a fixed source and cached under
// {directory}/epf/datasets/{group}.csv. A load reshapes the raw file into a
// target table (Y), a feature table (X) holding the first two exogenous
// series plus calendar dummies, and, at panel level, a static table (S) of
// one-hot region indicators.
//
// Y and X are always row aligned: the same (region_id, timestamp) pair sits
// at the same index in both tables, so consumers may join them positionally.
//
// Typical usage:
//
//	ds, err := epf.LoadGroups(ctx, "./data", []string{"NP", "PJM"})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(ds.Y.Len(), ds.X.Len(), ds.S.Len())
package epf
