package dataprocessing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabclean/internal/operations"
	"tabclean/pkg/contracts/domain"
)

func TestReplaceNulls(t *testing.T) {
	table := domain.MustTable("A", "B")
	require.NoError(t, table.AppendRow(domain.Text(""), domain.Number(1)))
	require.NoError(t, table.AppendRow(domain.Text("nan"), domain.Number(math.NaN())))
	require.NoError(t, table.AppendRow(domain.Text("#NULL!"), domain.Missing()))
	require.NoError(t, table.AppendRow(domain.Text("NaN"), domain.Text("keep")))
	rec := operations.NewRecordingReporter()

	replaced, err := ReplaceNulls(table, "N/A", rec)
	require.NoError(t, err)

	assert.Equal(t, 6, replaced)
	for r := 0; r < table.Len(); r++ {
		for _, c := range table.Columns() {
			assert.False(t, table.Get(r, c).IsNullLike(), "row %d column %s", r, c)
		}
	}
	assert.Equal(t, domain.Number(1), table.Get(0, "B"))
	assert.Equal(t, domain.Text("keep"), table.Get(3, "B"))
	assert.Contains(t, rec.Messages(), "Replaced null-like values with 'N/A'.")
}

func TestReplaceNullsIdempotent(t *testing.T) {
	table := domain.MustTable("A")
	require.NoError(t, table.AppendRow(domain.Missing()))
	require.NoError(t, table.AppendRow(domain.Text("x")))

	_, err := ReplaceNulls(table, "0", nil)
	require.NoError(t, err)
	once := table.Clone()

	replaced, err := ReplaceNulls(table, "0", nil)
	require.NoError(t, err)
	assert.Zero(t, replaced)
	assert.True(t, once.Equal(table))
}

func TestReplaceNullsEmptyReplacement(t *testing.T) {
	table := domain.MustTable("A")
	require.NoError(t, table.AppendRow(domain.Missing()))

	_, err := ReplaceNulls(table, "", nil)
	assert.True(t, operations.IsValidation(err))
	assert.True(t, table.Get(0, "A").IsMissing())
}
