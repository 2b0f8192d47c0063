// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request data.
// Requests may carry either form-encoded bodies from the web UI or JSON from
// API clients; both are read through RequestBodyParser.

package http

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"expensetracker/internal/core"
)

const maxBodyBytes = 64 << 10

// ExpenseForm is the raw input of the add/update form.
type ExpenseForm struct {
	Title    string `form:"title" validate:"required,max=200"`
	Amount   string `form:"amount" validate:"required,max=32"`
	Category string `form:"category" validate:"required,category"`
}

// FilterForm is the input of the filter selector.
type FilterForm struct {
	Filter string `form:"filter" validate:"omitempty,filter"`
}

// FieldErrors maps a form field name to a user-facing message.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	parts := make([]string, 0, len(fe))
	for _, f := range []string{"title", "amount", "category", "filter", "form"} {
		if msg, ok := fe[f]; ok {
			parts = append(parts, f+": "+msg)
		}
	}
	return strings.Join(parts, "; ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("form")
	})
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		_, err := core.ParseCategory(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("filter", func(fl validator.FieldLevel) bool {
		_, err := core.ParseFilter(fl.Field().String())
		return err == nil
	})
	return v
}

// ValidateForm checks v against its validate tags and returns FieldErrors
// keyed by form field name.
func ValidateForm(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := FieldErrors{}
	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; seen {
			continue
		}
		out[fe.Field()] = fieldMessage(fe)
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "category":
		return "must be one of " + strings.Join(core.CategoryNames(), ", ")
	case "filter":
		return "must be All or a category"
	}
	return "is invalid"
}

// DraftFromForm validates the form and converts it into a core.Draft.
// Domain validation errors are reported as FieldErrors too.
func DraftFromForm(f ExpenseForm) (core.Draft, error) {
	if err := ValidateForm(f); err != nil {
		return core.Draft{}, err
	}
	d, err := core.ParseDraft(f.Title, f.Amount, f.Category)
	if err != nil {
		var ve *core.ValidationError
		if errors.As(err, &ve) {
			return core.Draft{}, FieldErrors{ve.Field: domainMessage(ve.Err)}
		}
		return core.Draft{}, err
	}
	return d, nil
}

func domainMessage(err error) string {
	switch {
	case errors.Is(err, core.ErrEmptyTitle):
		return "is required"
	case errors.Is(err, core.ErrTitleTooLong):
		return "must be at most " + strconv.Itoa(core.MaxTitleLength) + " characters"
	case errors.Is(err, core.ErrInvalidAmount):
		return "must be a positive number"
	case errors.Is(err, core.ErrInvalidCategory):
		return "must be one of " + strings.Join(core.CategoryNames(), ", ")
	}
	return err.Error()
}

// ParseExpenseID reads the {id} path value.
func ParseExpenseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid expense id")
	}
	return id, nil
}

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser reads at most 64KiB of the request body once.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	if r.Body != nil {
		p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	}
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	body := strings.TrimSpace(string(p.body))
	if body == "" {
		p.formData = url.Values{}
		return nil
	}

	if strings.HasPrefix(p.contentType, "application/json") || body[0] == '{' {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal([]byte(body), &p.jsonData); err != nil {
			p.jsonData = nil
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(body)
	return p.err
}

// Get returns a string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// ExpenseForm reads the expense fields from the parsed body.
func (p *RequestBodyParser) ExpenseForm() ExpenseForm {
	return ExpenseForm{
		Title:    p.Get("title"),
		Amount:   p.Get("amount"),
		Category: p.Get("category"),
	}
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// sanitizeInput removes control characters except tab, newline and carriage
// return, and trims whitespace.
func sanitizeInput(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s))
}

// wantsJSON reports whether the client asked for a JSON response.
func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}
