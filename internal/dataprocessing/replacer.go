package dataprocessing

import (
	"fmt"

	"tabclean/internal/operations"
	"tabclean/pkg/contracts/domain"
)

const stepReplaceNulls = "replace-nulls"

// ReplaceNulls substitutes every null-like cell in the table with replacement
// and returns how many cells changed. A second pass with the same
// replacement changes nothing.
func ReplaceNulls(table *domain.Table, replacement string, log operations.Logger) (int, error) {
	if log == nil {
		log = operations.NopReporter{}
	}
	if replacement == "" {
		return 0, operations.NewValidationError(stepReplaceNulls, "replacement value cannot be empty")
	}

	replaced := 0
	for _, name := range table.Columns() {
		col, _ := table.Column(name)
		out := make([]domain.Value, len(col))
		for i, v := range col {
			if v.IsNullLike() {
				out[i] = domain.Text(replacement)
				replaced++
				continue
			}
			out[i] = v
		}
		_ = table.SetColumn(name, out)
	}

	log.Log(fmt.Sprintf("Replaced null-like values with '%s'.", replacement))
	log.Log(fmt.Sprintf("%d cells replaced.", replaced))
	return replaced, nil
}
