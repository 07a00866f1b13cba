// Package splitter partitions a table into several physical outputs, either
// by the distinct values of a key column or by fixed-size row chunks.
//
// Groups are ordered by ascending key. Rows with a null-like key are routed
// to a quarantine workbook (Invalid_Rows.xlsx) regardless of the chosen
// layout. Progress is reported on the split channel after each part is
// persisted as round(done*100/total); any failure resets it to zero and
// leaves already written outputs in place.
//
// Two layouts are supported:
//
//	folder: one file per part inside a destination directory
//	single: one workbook with a sheet per part, or for CSV one file with
//	        every part appended and the key re-stamped on each row
package splitter
