package splitter

import (
	"fmt"
	"sort"

	"tabclean/pkg/contracts/domain"
)

// Part is one output unit of a split: a group or a chunk
type Part struct {
	// Key is the group value, or "Part_i" for chunks
	Key   string
	Table *domain.Table
}

// Partition is the result of grouping a table by a key column
type Partition struct {
	Groups []Part
	// Invalid holds the rows whose key is null-like; it may have zero rows
	Invalid *domain.Table
}

// GroupByColumn partitions the rows by the textual value of column. Groups
// are ordered by ascending key; rows keep their original relative order
// inside each group. Every row lands in exactly one group or in Invalid.
func GroupByColumn(table *domain.Table, column string) (Partition, error) {
	values, ok := table.Column(column)
	if !ok {
		return Partition{}, fmt.Errorf("column %q not found", column)
	}

	rowsByKey := make(map[string][]int)
	var invalid []int
	for i, v := range values {
		if v.IsNullLike() {
			invalid = append(invalid, i)
			continue
		}
		key := v.String()
		rowsByKey[key] = append(rowsByKey[key], i)
	}

	keys := make([]string, 0, len(rowsByKey))
	for k := range rowsByKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	groups := make([]Part, len(keys))
	for i, k := range keys {
		groups[i] = Part{Key: k, Table: table.Select(rowsByKey[k])}
	}
	return Partition{
		Groups:  groups,
		Invalid: table.Select(invalid),
	}, nil
}

// ChunkRows cuts the table into contiguous chunks of size rows. The last
// chunk holds the remainder; there are ceil(n/size) chunks.
func ChunkRows(table *domain.Table, size int) ([]Part, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	n := table.Len()
	count := (n + size - 1) / size
	parts := make([]Part, 0, count)
	for i := 0; i < count; i++ {
		start := i * size
		parts = append(parts, Part{
			Key:   fmt.Sprintf("Part_%d", i+1),
			Table: table.Slice(start, start+size),
		})
	}
	return parts, nil
}
