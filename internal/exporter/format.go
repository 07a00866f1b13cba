package exporter

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"tabclean/pkg/contracts/domain"
)

// SheetNameLimit is the longest sheet name a workbook accepts
const SheetNameLimit = excelize.MaxSheetNameLength

// formatField renders a cell for delimited output. Missing and NaN cells are
// written as empty fields.
func formatField(v domain.Value) string {
	switch v.Kind {
	case domain.KindNumber:
		if math.IsNaN(v.Number) {
			return ""
		}
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	case domain.KindText:
		return v.Text
	default:
		return ""
	}
}

// cellValue maps a cell onto the value excelize writes. Numbers stay numeric
// so they are not re-typed as text in the workbook.
func cellValue(v domain.Value) interface{} {
	switch v.Kind {
	case domain.KindNumber:
		if math.IsNaN(v.Number) || math.IsInf(v.Number, 0) {
			return nil
		}
		return v.Number
	case domain.KindText:
		return v.Text
	default:
		return nil
	}
}

func tableRecords(table *domain.Table) [][]string {
	out := make([][]string, table.Len())
	for r := range out {
		row := table.Row(r)
		rec := make([]string, len(row))
		for c, v := range row {
			rec[c] = formatField(v)
		}
		out[r] = rec
	}
	return out
}

// SheetName turns an arbitrary key into a valid sheet name: characters a
// workbook rejects become "_", surrounding quotes are dropped and the result
// is cut to limit runes.
func SheetName(key string, limit int) string {
	if limit <= 0 || limit > SheetNameLimit {
		limit = SheetNameLimit
	}
	name := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`:\/?*[]`, r) {
			return '_'
		}
		return r
	}, key)
	name = strings.Trim(name, "'")
	if utf8.RuneCountInString(name) > limit {
		name = string([]rune(name)[:limit])
		name = strings.TrimRight(name, "'")
	}
	if name == "" {
		name = "Sheet"
	}
	return name
}
