package testutil

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableFromRecords(t *testing.T) {
	table := TableFromRecords(t, []string{"a", "b"},
		[]string{"1.5", "x"},
		[]string{"", "y"},
	)

	require.Equal(t, 2, table.Len())
	f, ok := table.Get(0, "a").Float()
	require.True(t, ok)
	assert.Equal(t, 1.5, f)
	assert.True(t, table.Get(1, "a").IsMissing())
	assert.Equal(t, "y", table.Get(1, "b").String())
}

func TestWriteSurveyCSV(t *testing.T) {
	path := WriteSurveyCSV(t)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, SurveyCSV, string(data))
}
