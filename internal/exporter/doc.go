// Package exporter provides the writer half of the persistence adapter.
//
// This package contains two main components:
//
// CSVWriter: delimited text output with an optional UTF-8 BOM for Excel
// compatibility, plus a StreamWriter for appending several tables to one file.
//
// Workbook: a spreadsheet container with one named sheet per table. Sheet
// names are cleaned and truncated to the 31 character limit; a second table
// staged under the same name replaces the first.
//
// Neither writer emits a synthetic row index column.
//
// Example usage:
//
//	wb := exporter.NewWorkbook()
//	if _, err := wb.AddSheet("Part_1", part); err != nil {
//		return err
//	}
//	err := wb.SaveAs("/data/out/parts.xlsx")
package exporter
