package core

import (
	"errors"
	"fmt"
	"strings"
)

const (
	Food     Category = "Food"
	Travel   Category = "Travel"
	Bills    Category = "Bills"
	Shopping Category = "Shopping"
	Others   Category = "Others"
)

// FilterAll selects every record regardless of category.
const FilterAll Filter = "All"

// MaxTitleLength bounds the title of a single expense.
const MaxTitleLength = 200

type (
	// Category is one of the fixed expense classifications.
	Category string

	// Filter is either FilterAll or the name of a Category.
	Filter string

	Expense struct {
		ID       int64
		Title    string
		Amount   Money
		Category Category
	}

	// Draft holds the user-editable fields of an expense before it is
	// committed to a store.
	Draft struct {
		Title    string
		Amount   Money
		Category Category
	}
)

var categories = []Category{Food, Travel, Bills, Shopping, Others}

var (
	ErrEmptyTitle      = errors.New("empty title")
	ErrTitleTooLong    = fmt.Errorf("title too long (max %d characters)", MaxTitleLength)
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidCategory = errors.New("invalid category")
	ErrInvalidFilter   = errors.New("invalid filter")
	ErrNotFound        = errors.New("expense not found")
	ErrEditingDisabled = errors.New("editing is disabled")
)

// ValidationError reports which field of a draft was rejected.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Categories returns the fixed category set in display order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// CategoryNames returns the category labels in display order.
func CategoryNames() []string {
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = string(c)
	}
	return names
}

// ParseCategory matches s against the category set, ignoring case and
// surrounding whitespace.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for _, c := range categories {
		if strings.EqualFold(s, string(c)) {
			return c, nil
		}
	}
	return "", ErrInvalidCategory
}

func (c Category) Valid() bool {
	return c.Index() >= 0
}

// Index returns the position of c in the category order, or -1.
func (c Category) Index() int {
	for i, v := range categories {
		if v == c {
			return i
		}
	}
	return -1
}

func (c Category) String() string {
	return string(c)
}

// ParseFilter accepts "All" (or an empty string) and any category name.
func ParseFilter(s string) (Filter, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, string(FilterAll)) {
		return FilterAll, nil
	}
	c, err := ParseCategory(s)
	if err != nil {
		return "", ErrInvalidFilter
	}
	return Filter(c), nil
}

func (f Filter) Valid() bool {
	return f == FilterAll || Category(f).Valid()
}

// Matches reports whether an expense of category c passes the filter.
func (f Filter) Matches(c Category) bool {
	return f == FilterAll || Category(f) == c
}

func (f Filter) String() string {
	return string(f)
}

// Filters returns "All" followed by every category, as offered by a filter
// selector.
func Filters() []Filter {
	out := make([]Filter, 0, len(categories)+1)
	out = append(out, FilterAll)
	for _, c := range categories {
		out = append(out, Filter(c))
	}
	return out
}

// NewDraft trims the title and validates all fields.
func NewDraft(title string, amount Money, category Category) (Draft, error) {
	d := Draft{
		Title:    strings.TrimSpace(title),
		Amount:   amount,
		Category: category,
	}
	if err := d.Validate(); err != nil {
		return Draft{}, err
	}
	return d, nil
}

// ParseDraft builds a draft from raw form input.
func ParseDraft(title, amount, category string) (Draft, error) {
	m, err := ParseAmount(amount)
	if err != nil {
		return Draft{}, &ValidationError{Field: "amount", Err: err}
	}
	c, err := ParseCategory(category)
	if err != nil {
		return Draft{}, &ValidationError{Field: "category", Err: err}
	}
	return NewDraft(title, m, c)
}

func (d Draft) Validate() error {
	title := strings.TrimSpace(d.Title)
	if title == "" {
		return &ValidationError{Field: "title", Err: ErrEmptyTitle}
	}
	if len([]rune(title)) > MaxTitleLength {
		return &ValidationError{Field: "title", Err: ErrTitleTooLong}
	}
	if err := d.Amount.Validate(); err != nil {
		return &ValidationError{Field: "amount", Err: err}
	}
	if !d.Category.Valid() {
		return &ValidationError{Field: "category", Err: ErrInvalidCategory}
	}
	return nil
}

// Draft returns the editable fields of e.
func (e Expense) Draft() Draft {
	return Draft{Title: e.Title, Amount: e.Amount, Category: e.Category}
}

func (e Expense) Validate() error {
	if e.ID <= 0 {
		return &ValidationError{Field: "id", Err: errors.New("id must be positive")}
	}
	return e.Draft().Validate()
}
