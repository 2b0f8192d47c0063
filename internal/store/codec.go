package store

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"expensetracker/internal/core"
)

// wireExpense is the persisted shape of a record. Amounts are plain JSON
// numbers so blobs stay readable by anything that wrote them as floats.
type wireExpense struct {
	ID       json.Number `json:"id"`
	Title    string      `json:"title"`
	Amount   json.Number `json:"amount"`
	Category string      `json:"category"`
}

// Encode serializes records to the JSON array stored under the store key.
func Encode(records []core.Expense) (string, error) {
	out := make([]wireExpense, len(records))
	for i, e := range records {
		out[i] = wireExpense{
			ID:       json.Number(strconv.FormatInt(e.ID, 10)),
			Title:    e.Title,
			Amount:   json.Number(e.Amount.String()),
			Category: string(e.Category),
		}
	}
	b, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("encode expenses: %w", err)
	}
	return string(b), nil
}

// Decode parses a blob written by Encode. A blob that is not a JSON array
// yields an error. Records that are individually invalid, or repeat an id
// seen earlier in the blob, are skipped and reported in dropped.
func Decode(blob string) (records []core.Expense, dropped []error, err error) {
	if strings.TrimSpace(blob) == "" {
		return nil, nil, errors.New("decode expenses: empty blob")
	}
	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(blob), &raw); err != nil {
		return nil, nil, fmt.Errorf("decode expenses: %w", err)
	}

	seen := make(map[int64]struct{}, len(raw))
	records = make([]core.Expense, 0, len(raw))
	for i, msg := range raw {
		e, err := decodeRecord(msg)
		if err != nil {
			dropped = append(dropped, fmt.Errorf("record %d: %w", i, err))
			continue
		}
		if _, dup := seen[e.ID]; dup {
			dropped = append(dropped, fmt.Errorf("record %d: duplicate id %d", i, e.ID))
			continue
		}
		seen[e.ID] = struct{}{}
		records = append(records, e)
	}
	return records, dropped, nil
}

func decodeRecord(msg json.RawMessage) (core.Expense, error) {
	var w wireExpense
	if err := json.Unmarshal(msg, &w); err != nil {
		return core.Expense{}, err
	}

	id, err := parseID(w.ID)
	if err != nil {
		return core.Expense{}, err
	}
	d, err := decimal.NewFromString(w.Amount.String())
	if err != nil {
		return core.Expense{}, &core.ValidationError{Field: "amount", Err: core.ErrInvalidAmount}
	}
	amount, err := core.MoneyFromDecimal(d)
	if err != nil {
		return core.Expense{}, &core.ValidationError{Field: "amount", Err: err}
	}

	e := core.Expense{
		ID:       id,
		Title:    w.Title,
		Amount:   amount,
		Category: core.Category(w.Category),
	}
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	return e, nil
}

// parseID accepts integral numbers, including "1.7e12" style floats that
// some writers produce for millisecond timestamps.
func parseID(n json.Number) (int64, error) {
	if id, err := n.Int64(); err == nil {
		return id, nil
	}
	d, err := decimal.NewFromString(n.String())
	if err != nil || !d.IsInteger() {
		return 0, fmt.Errorf("invalid id %q", n.String())
	}
	return d.IntPart(), nil
}
