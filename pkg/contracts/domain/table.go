package domain

import (
	"fmt"
	"math"
	"strconv"
)

// Kind tags the variant held by a Value
type Kind uint8

const (
	KindMissing Kind = iota
	KindText
	KindNumber
)

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	default:
		return "missing"
	}
}

// Value is a single cell of a Table
type Value struct {
	Kind   Kind
	Text   string
	Number float64
}

// Text returns a textual cell
func Text(s string) Value {
	return Value{Kind: KindText, Text: s}
}

// Number returns a numeric cell
func Number(f float64) Value {
	return Value{Kind: KindNumber, Number: f}
}

// Missing returns the canonical missing cell
func Missing() Value {
	return Value{Kind: KindMissing}
}

// nullLikeText lists the textual spellings treated as absent
var nullLikeText = map[string]struct{}{
	"":       {},
	"nan":    {},
	"NaN":    {},
	"#NULL!": {},
}

// IsMissing reports whether the cell holds the missing sentinel
func (v Value) IsMissing() bool {
	return v.Kind == KindMissing
}

// IsNullLike reports whether the cell is semantically absent. A NaN number
// counts as absent, matching the missing sentinel.
func (v Value) IsNullLike() bool {
	switch v.Kind {
	case KindMissing:
		return true
	case KindNumber:
		return math.IsNaN(v.Number)
	default:
		_, ok := nullLikeText[v.Text]
		return ok
	}
}

// String renders the cell the way it is written to delimited text.
// Missing renders as the empty string.
func (v Value) String() string {
	switch v.Kind {
	case KindText:
		return v.Text
	case KindNumber:
		if math.IsNaN(v.Number) {
			return "NaN"
		}
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	default:
		return ""
	}
}

// Float returns the cell as a float64 when it is a number or parses as one
func (v Value) Float() (float64, bool) {
	switch v.Kind {
	case KindNumber:
		return v.Number, true
	case KindText:
		f, err := strconv.ParseFloat(v.Text, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Table is an in-memory, column-major dataset. Columns have unique names and
// equal lengths; row identity is the positional index.
type Table struct {
	columns []string
	index   map[string]int
	cells   [][]Value
	rows    int
}

// NewTable creates an empty table with the given column order
func NewTable(columns ...string) (*Table, error) {
	t := &Table{
		columns: make([]string, 0, len(columns)),
		index:   make(map[string]int, len(columns)),
		cells:   make([][]Value, 0, len(columns)),
	}
	for _, name := range columns {
		if _, dup := t.index[name]; dup {
			return nil, fmt.Errorf("duplicate column name %q", name)
		}
		t.index[name] = len(t.columns)
		t.columns = append(t.columns, name)
		t.cells = append(t.cells, nil)
	}
	return t, nil
}

// MustTable is NewTable for fixtures; it panics on duplicate names
func MustTable(columns ...string) *Table {
	t, err := NewTable(columns...)
	if err != nil {
		panic(err)
	}
	return t
}

// AppendRow adds a row. The row must have one value per column.
func (t *Table) AppendRow(values ...Value) error {
	if len(values) != len(t.columns) {
		return fmt.Errorf("row has %d values, table has %d columns", len(values), len(t.columns))
	}
	for c, v := range values {
		t.cells[c] = append(t.cells[c], v)
	}
	t.rows++
	return nil
}

// Columns returns a copy of the column names in order
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// Len returns the number of rows
func (t *Table) Len() int {
	return t.rows
}

// Width returns the number of columns
func (t *Table) Width() int {
	return len(t.columns)
}

// HasColumn reports whether the named column exists
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// MissingColumns returns the subset of names not present, preserving order
func (t *Table) MissingColumns(names ...string) []string {
	var missing []string
	for _, name := range names {
		if !t.HasColumn(name) {
			missing = append(missing, name)
		}
	}
	return missing
}

// Column returns the values of the named column. The slice is shared with
// the table; callers that need to keep it should copy.
func (t *Table) Column(name string) ([]Value, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.cells[i], true
}

// Get returns the cell at row, column
func (t *Table) Get(row int, name string) Value {
	i, ok := t.index[name]
	if !ok || row < 0 || row >= t.rows {
		return Missing()
	}
	return t.cells[i][row]
}

// Set overwrites the cell at row, column
func (t *Table) Set(row int, name string, v Value) error {
	i, ok := t.index[name]
	if !ok {
		return fmt.Errorf("column %q not found", name)
	}
	if row < 0 || row >= t.rows {
		return fmt.Errorf("row %d out of range [0,%d)", row, t.rows)
	}
	t.cells[i][row] = v
	return nil
}

// SetColumn replaces the named column or appends it when absent
func (t *Table) SetColumn(name string, values []Value) error {
	if len(t.columns) > 0 && len(values) != t.rows {
		return fmt.Errorf("column %q has %d values, table has %d rows", name, len(values), t.rows)
	}
	if i, ok := t.index[name]; ok {
		t.cells[i] = values
		return nil
	}
	if len(t.columns) == 0 {
		t.rows = len(values)
	}
	t.index[name] = len(t.columns)
	t.columns = append(t.columns, name)
	t.cells = append(t.cells, values)
	return nil
}

// DropColumns removes the named columns; unknown names are ignored
func (t *Table) DropColumns(names ...string) {
	drop := make(map[string]struct{}, len(names))
	for _, n := range names {
		drop[n] = struct{}{}
	}
	keep := make([]string, 0, len(t.columns))
	for _, c := range t.columns {
		if _, ok := drop[c]; !ok {
			keep = append(keep, c)
		}
	}
	t.reorder(keep)
}

// MoveToFront reorders columns so the named ones lead, in the given order.
// Names that do not exist are ignored.
func (t *Table) MoveToFront(names ...string) {
	order := make([]string, 0, len(t.columns))
	lead := make(map[string]struct{}, len(names))
	for _, n := range names {
		if t.HasColumn(n) {
			if _, dup := lead[n]; !dup {
				order = append(order, n)
				lead[n] = struct{}{}
			}
		}
	}
	for _, c := range t.columns {
		if _, ok := lead[c]; !ok {
			order = append(order, c)
		}
	}
	t.reorder(order)
}

func (t *Table) reorder(order []string) {
	cells := make([][]Value, len(order))
	index := make(map[string]int, len(order))
	for i, name := range order {
		cells[i] = t.cells[t.index[name]]
		index[name] = i
	}
	t.columns = order
	t.cells = cells
	t.index = index
	if len(order) == 0 {
		t.rows = 0
	}
}

// Row returns a copy of the values of one row in column order
func (t *Table) Row(row int) []Value {
	out := make([]Value, len(t.columns))
	for c := range t.columns {
		out[c] = t.cells[c][row]
	}
	return out
}

// Records renders every row as strings in column order
func (t *Table) Records() [][]string {
	out := make([][]string, t.rows)
	for r := 0; r < t.rows; r++ {
		rec := make([]string, len(t.columns))
		for c := range t.columns {
			rec[c] = t.cells[c][r].String()
		}
		out[r] = rec
	}
	return out
}

// Select returns a new table holding the given rows, in the given order
func (t *Table) Select(rows []int) *Table {
	out := t.emptyLike()
	for c := range t.columns {
		col := make([]Value, len(rows))
		for i, r := range rows {
			col[i] = t.cells[c][r]
		}
		out.cells[c] = col
	}
	out.rows = len(rows)
	return out
}

// Slice returns a copy of rows [start, end)
func (t *Table) Slice(start, end int) *Table {
	if start < 0 {
		start = 0
	}
	if end > t.rows {
		end = t.rows
	}
	if start > end {
		start = end
	}
	out := t.emptyLike()
	for c := range t.columns {
		col := make([]Value, end-start)
		copy(col, t.cells[c][start:end])
		out.cells[c] = col
	}
	out.rows = end - start
	return out
}

// Clone returns a deep copy of the table
func (t *Table) Clone() *Table {
	return t.Slice(0, t.rows)
}

// Equal reports whether two tables hold the same columns and cells
func (t *Table) Equal(o *Table) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.rows != o.rows || len(t.columns) != len(o.columns) {
		return false
	}
	for c, name := range t.columns {
		if o.columns[c] != name {
			return false
		}
		for r := 0; r < t.rows; r++ {
			a, b := t.cells[c][r], o.cells[c][r]
			if a.Kind != b.Kind || a.Text != b.Text {
				return false
			}
			if a.Kind == KindNumber && a.Number != b.Number && !(math.IsNaN(a.Number) && math.IsNaN(b.Number)) {
				return false
			}
		}
	}
	return true
}

func (t *Table) emptyLike() *Table {
	out := &Table{
		columns: t.Columns(),
		index:   make(map[string]int, len(t.columns)),
		cells:   make([][]Value, len(t.columns)),
	}
	for i, name := range out.columns {
		out.index[name] = i
	}
	return out
}
