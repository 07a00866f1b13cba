// Package files is the persistence adapter facade used by every workflow.
//
// This package contains two main components:
//
// Manager: load a .csv or .xlsx file into a table and save a table back in
// either format. Storage failures come back as io operation errors and
// unsupported extensions as validation errors, so callers can tell a bad
// request from a failed disk.
//
// Discovery: lists loadable source files and subdirectories, a stand-in for
// an interactive file chooser.
//
// Example usage:
//
//	m := files.NewManager(files.Options{})
//	table, err := m.Load("/data/households.csv", false)
//	if err != nil {
//		return err
//	}
//	err = m.SaveAs(table, "/data/households_clean.xlsx")
package files
