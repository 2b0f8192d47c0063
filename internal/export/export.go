// Package export writes expense records in interchange formats.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/goccy/go-yaml"

	"expensetracker/internal/core"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCSV  Format = "csv"
)

// Formats lists the supported formats.
func Formats() []Format {
	return []Format{FormatJSON, FormatYAML, FormatCSV}
}

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatYAML, FormatCSV:
		return f, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unsupported export format %q (want json, yaml or csv)", s)
}

// Record is the exported shape of an expense. Amount is a decimal string so
// that no format loses precision.
type Record struct {
	ID       int64  `json:"id" yaml:"id"`
	Title    string `json:"title" yaml:"title"`
	Amount   string `json:"amount" yaml:"amount"`
	Category string `json:"category" yaml:"category"`
}

// CategoryTotal is one row of the exported summary.
type CategoryTotal struct {
	Category string `json:"category" yaml:"category"`
	Amount   string `json:"amount" yaml:"amount"`
}

// Document is the full export: records plus derived totals.
type Document struct {
	Expenses   []Record        `json:"expenses" yaml:"expenses"`
	Total      string          `json:"total" yaml:"total"`
	ByCategory []CategoryTotal `json:"by_category" yaml:"by_category"`
}

// NewDocument builds the export document for records.
func NewDocument(records []core.Expense) Document {
	doc := Document{
		Expenses: make([]Record, 0, len(records)),
		Total:    core.Total(records).String(),
	}
	for _, e := range records {
		doc.Expenses = append(doc.Expenses, Record{
			ID:       e.ID,
			Title:    e.Title,
			Amount:   e.Amount.String(),
			Category: e.Category.String(),
		})
	}
	for _, ct := range core.CategoryTotals(records) {
		doc.ByCategory = append(doc.ByCategory, CategoryTotal{
			Category: ct.Category.String(),
			Amount:   ct.Amount.String(),
		})
	}
	return doc
}

// Write encodes records to w in format f. CSV carries only the records.
func Write(w io.Writer, f Format, records []core.Expense) error {
	doc := NewDocument(records)
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	case FormatYAML:
		data, err := yaml.Marshal(doc)
		if err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		_, err = w.Write(data)
		return err
	case FormatCSV:
		return writeCSV(w, doc.Expenses)
	}
	return fmt.Errorf("unsupported export format %q", f)
}

func writeCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "title", "amount", "category"}); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write([]string{strconv.FormatInt(r.ID, 10), r.Title, r.Amount, r.Category}); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}
