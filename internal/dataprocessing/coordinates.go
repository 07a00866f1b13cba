package dataprocessing

import (
	"fmt"
	"math"

	"tabclean/internal/operations"
	"tabclean/pkg/contracts/domain"
)

const stepFixCoordinates = "fix-coordinates"

// FixCoordinates coerces the latitude and longitude columns to numbers and
// fills every unparseable or absent cell with its column mean. A column with
// no parseable values has a NaN mean, and NaN is what gets filled.
func FixCoordinates(table *domain.Table, latColumn, lonColumn string, log operations.Logger) (latMean, lonMean float64, err error) {
	if log == nil {
		log = operations.NopReporter{}
	}
	if latColumn == "" || lonColumn == "" {
		return 0, 0, operations.NewValidationError(stepFixCoordinates, "both latitude and longitude columns are required")
	}
	if missing := table.MissingColumns(latColumn, lonColumn); len(missing) > 0 {
		return 0, 0, operations.NewMissingColumnsError(stepFixCoordinates, missing)
	}

	log.Log(fmt.Sprintf("Fixing coordinates for columns '%s' and '%s'...", latColumn, lonColumn))

	latMean = imputeMean(table, latColumn)
	lonMean = imputeMean(table, lonColumn)

	log.Log(fmt.Sprintf("Coordinates fixed: Missing values replaced with column means (Lat: %.6f, Lon: %.6f).", latMean, lonMean))
	return latMean, lonMean, nil
}

// imputeMean rewrites the column as numbers and returns the fill value
func imputeMean(table *domain.Table, name string) float64 {
	col, _ := table.Column(name)
	parsed := make([]float64, len(col))
	valid := make([]bool, len(col))

	var sum float64
	var count int
	for i, v := range col {
		f, ok := v.Float()
		if !ok || math.IsNaN(f) {
			continue
		}
		parsed[i], valid[i] = f, true
		sum += f
		count++
	}

	mean := math.NaN()
	if count > 0 {
		mean = sum / float64(count)
	}

	out := make([]domain.Value, len(col))
	for i := range col {
		if valid[i] {
			out[i] = domain.Number(parsed[i])
		} else {
			out[i] = domain.Number(mean)
		}
	}
	// lengths match by construction
	_ = table.SetColumn(name, out)
	return mean
}
