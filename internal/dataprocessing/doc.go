// Package dataprocessing holds the in-memory cleaning transforms and the
// loader half of the persistence adapter.
//
// # Architecture
//
// The package is organized into four components:
//
// 1. Parser: reads .csv and .xlsx sources into a domain.Table
// 2. Coordinates: numeric coercion with mean imputation
// 3. Geocode: fixed-width code synthesis from eight administrative columns
// 4. Replacer: table-wide substitution of null-like cells
//
// Every transform validates its inputs before touching the table. Coercion
// failures never abort; they degrade to the missing sentinel.
//
// # Usage
//
//	table, err := dataprocessing.ParseFile("households.xlsx", dataprocessing.ParseOptions{})
//	if err != nil {
//	    return err
//	}
//	if _, _, err := dataprocessing.FixCoordinates(table, "LAT", "LON", reporter); err != nil {
//	    return err
//	}
package dataprocessing
