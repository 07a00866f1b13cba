package domain

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Source columns consumed by geocode generation
const (
	ColRegion       = "PREGION"
	ColDistrict     = "PDISTRICT"
	ColCouncil      = "PCOUNCIL"
	ColConstituency = "PCONSTITUENCY"
	ColDivision     = "PDIVISION"
	ColWard         = "PWARD"
	ColVillage      = "PVILLAGE"
	ColHamlet       = "PHAMLET"
)

// Derived geocode columns, prepended in this order
const (
	ColCode1   = "CODE1"
	ColCode2   = "CODE2"
	ColGeocode = "GEOCODE"
)

// GeocodeSourceColumns lists the columns geocode generation requires and drops
var GeocodeSourceColumns = []string{
	ColRegion, ColDistrict, ColCouncil,
	ColConstituency, ColDivision, ColWard, ColVillage, ColHamlet,
}

// Format is a persisted tabular format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// Extension returns the file extension including the dot
func (f Format) Extension() string {
	return "." + string(f)
}

// ParseFormat accepts "csv", "xlsx" and the alias "spreadsheet"
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "xlsx", "excel", "spreadsheet":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unsupported format %q", s)
	}
}

// FormatFromPath derives the format from a file extension
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unsupported file type %q: only .csv and .xlsx are supported", filepath.Ext(path))
	}
}

// Layout is the output arrangement of a split
type Layout string

const (
	// LayoutFolder writes one file per partition into a directory
	LayoutFolder Layout = "folder"
	// LayoutSingle writes every partition into one container file
	LayoutSingle Layout = "single"
)

// ParseLayout accepts "folder" and "single"
func ParseLayout(s string) (Layout, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "folder", "files":
		return LayoutFolder, nil
	case "single", "sheets":
		return LayoutSingle, nil
	default:
		return "", fmt.Errorf("unsupported layout %q", s)
	}
}

// ColumnSplitRequest asks for a split by the distinct values of a column.
// Destination is a directory for LayoutFolder and a file for LayoutSingle;
// an empty destination means the user dismissed the chooser.
type ColumnSplitRequest struct {
	Column      string `json:"column" validate:"required"`
	Layout      Layout `json:"layout" validate:"required,oneof=folder single"`
	Format      Format `json:"format" validate:"required,oneof=csv xlsx"`
	Destination string `json:"destination"`
}

// RowSplitRequest asks for a split into fixed-size chunks
type RowSplitRequest struct {
	ChunkSize   int    `json:"chunk_size" validate:"gt=0"`
	Layout      Layout `json:"layout" validate:"required,oneof=folder single"`
	Format      Format `json:"format" validate:"required,oneof=csv xlsx"`
	Destination string `json:"destination"`
}

// CoordinateRequest names the latitude and longitude columns to repair
type CoordinateRequest struct {
	LatColumn string `json:"lat_column" validate:"required"`
	LonColumn string `json:"lon_column" validate:"required"`
}

// GeocodeRequest carries the user supplied two digit region code
type GeocodeRequest struct {
	Region string `json:"region" validate:"required,len=2,number"`
}

// ReplaceRequest carries the replacement for null-like cells and where to save
type ReplaceRequest struct {
	Replacement string `json:"replacement" validate:"required"`
	Destination string `json:"destination"`
}

// SaveRequest persists the current table to a .csv or .xlsx path
type SaveRequest struct {
	Destination string `json:"destination"`
}

// LoadRequest names a source file to load
type LoadRequest struct {
	Path string `json:"path" validate:"required"`
}

// SplitResult summarises a finished split
type SplitResult struct {
	Destination string   `json:"destination,omitempty"`
	Parts       []string `json:"parts"`
	InvalidPath string   `json:"invalid_path,omitempty"`
	InvalidRows int      `json:"invalid_rows"`
	Cancelled   bool     `json:"cancelled,omitempty"`
}

// Preview is a bounded view of a table for display
type Preview struct {
	Columns []string   `json:"columns"`
	Rows    int        `json:"rows"`
	Sample  [][]string `json:"sample"`
}

// NewPreview builds a preview of at most limit rows
func NewPreview(t *Table, limit int) Preview {
	if limit < 0 || limit > t.Len() {
		limit = t.Len()
	}
	return Preview{
		Columns: t.Columns(),
		Rows:    t.Len(),
		Sample:  t.Slice(0, limit).Records(),
	}
}

// CoordinateResult reports the fill values used by coordinate repair. A nil
// mean means the column had no parseable values and was filled with NaN.
type CoordinateResult struct {
	LatMean *float64 `json:"lat_mean"`
	LonMean *float64 `json:"lon_mean"`
}

// ReplaceResult summarises a null replacement
type ReplaceResult struct {
	Replaced  int    `json:"replaced"`
	Path      string `json:"path,omitempty"`
	Cancelled bool   `json:"cancelled,omitempty"`
}

// SaveResult summarises a save
type SaveResult struct {
	Path      string `json:"path,omitempty"`
	Cancelled bool   `json:"cancelled,omitempty"`
}
