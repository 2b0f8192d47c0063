package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/goccy/go-json"
	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensetracker/internal/core"
)

func sample() []core.Expense {
	return []core.Expense{
		{ID: 1700000000000, Title: "Lunch", Amount: core.FromCents(15000), Category: core.Food},
		{ID: 1700000000001, Title: "Bus, downtown", Amount: core.FromCents(1250), Category: core.Travel},
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"JSON": FormatJSON, "yml": FormatYAML, " csv ": FormatCSV} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, sample()))

	var doc Document
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	require.Len(t, doc.Expenses, 2)
	assert.Equal(t, "150", doc.Expenses[0].Amount)
	assert.Equal(t, "162.5", doc.Total)
	require.Len(t, doc.ByCategory, 5)
	assert.Equal(t, "Travel", doc.ByCategory[1].Category)
	assert.Equal(t, "12.5", doc.ByCategory[1].Amount)
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatYAML, sample()))

	var doc Document
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "Bus, downtown", doc.Expenses[1].Title)
	assert.Equal(t, int64(1700000000001), doc.Expenses[1].ID)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, sample()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"id", "title", "amount", "category"},
		{"1700000000000", "Lunch", "150", "Food"},
		{"1700000000001", "Bus, downtown", "12.5", "Travel"},
	}, rows)
}

func TestWriteEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, nil))
	assert.Contains(t, buf.String(), `"expenses": []`)
}
