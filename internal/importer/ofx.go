// Package importer turns bank statements into expenses.
package importer

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"

	"expensetracker/internal/core"
)

// Transaction is one debit taken from a statement, ready to become an
// expense.
type Transaction struct {
	FITID    string
	Posted   time.Time
	Title    string
	Amount   core.Money
	Category core.Category
}

// Draft converts the transaction into a store draft.
func (t Transaction) Draft() (core.Draft, error) {
	return core.NewDraft(t.Title, t.Amount, t.Category)
}

var (
	severityRe = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	openTagRe  = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
	datePrefix = regexp.MustCompile(`^\d{2}/\d{2}\s+`)
)

// preprocess fixes formatting issues some banks ship in OFX files.
func preprocess(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityRe.ReplaceAllStringFunc(content, strings.ToUpper)
	return openTagRe.ReplaceAllString(content, "$1>")
}

// ParseOFX reads an OFX/QFX statement and returns its debit transactions in
// statement order. Credits are skipped. The second return value counts the
// transactions that were skipped.
func ParseOFX(r io.Reader) ([]Transaction, int, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, 0, fmt.Errorf("read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocess(string(content))))
	if err != nil {
		return nil, 0, fmt.Errorf("parse OFX file: %w", err)
	}

	var raw []ofxgo.Transaction
	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok && stmt.BankTranList != nil {
			raw = append(raw, stmt.BankTranList.Transactions...)
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok && stmt.BankTranList != nil {
			raw = append(raw, stmt.BankTranList.Transactions...)
		}
	}

	var out []Transaction
	skipped := 0
	for _, tx := range raw {
		t, ok := convert(tx)
		if !ok {
			skipped++
			continue
		}
		out = append(out, t)
	}
	return out, skipped, nil
}

func convert(tx ofxgo.Transaction) (Transaction, bool) {
	amt, err := decimal.NewFromString(tx.TrnAmt.Rat.FloatString(4))
	if err != nil || !amt.IsNegative() {
		return Transaction{}, false
	}
	m, err := core.MoneyFromDecimal(amt.Abs())
	if err != nil {
		return Transaction{}, false
	}

	title := merchantName(tx)
	if title == "" {
		title = "Imported " + tx.TrnType.String()
	}
	if r := []rune(title); len(r) > core.MaxTitleLength {
		title = string(r[:core.MaxTitleLength])
	}

	return Transaction{
		FITID:    string(tx.FiTID),
		Posted:   tx.DtPosted.Time,
		Title:    title,
		Amount:   m,
		Category: Categorize(title),
	}, true
}

var cardPrefixes = []string{
	"POS PURCHASE ",
	"PURCHASE AUTHORIZED ON ",
	"DEBIT CARD PURCHASE ",
	"ACH DEBIT ",
	"CHECK CARD ",
	"VISA PURCHASE ",
	"MC PURCHASE ",
	"DEBIT PURCHASE ",
}

var genericNames = map[string]bool{
	"DEBIT":           true,
	"PURCHASE":        true,
	"PAYMENT":         true,
	"POS TRANSACTION": true,
	"CARD PURCHASE":   true,
}

// merchantName prefers PAYEE, then NAME, then MEMO when NAME is generic,
// and strips card-network prefixes.
func merchantName(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}
	name := strings.TrimSpace(string(tx.Name))
	if tx.Memo != "" && (name == "" || genericNames[strings.ToUpper(name)]) {
		name = strings.TrimSpace(string(tx.Memo))
	}
	for _, p := range cardPrefixes {
		if strings.HasPrefix(strings.ToUpper(name), p) {
			name = name[len(p):]
			break
		}
	}
	return strings.TrimSpace(datePrefix.ReplaceAllString(name, ""))
}
