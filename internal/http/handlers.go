package http

import (
	"bytes"
	"errors"
	"net/http"

	"expensetracker/internal/core"
	"expensetracker/internal/log"
	"expensetracker/internal/store"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderIndex(w, r, http.StatusOK, nil, nil)
}

// renderIndex executes the page into a buffer so a template failure can
// still produce a clean 500.
func (s *Server) renderIndex(w http.ResponseWriter, r *http.Request, status int, form *formValues, errs FieldErrors) {
	logger := log.FromContext(r.Context())
	if s.templates == nil {
		logger.ErrorContext(r.Context(), "Templates not loaded", log.FieldPath, r.URL.Path, log.FieldComponent, log.ComponentTemplate)
		InternalServerError("templates not loaded").Write(w)
		return
	}

	data := s.newPageData(s.store.Snapshot(), form, errs)
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "index.html", data); err != nil {
		logger.Failure(r.Context(), "Index template execution failed", log.OpRender, err)
		InternalServerError("failed to render page").Write(w)
		return
	}
	NewResponse().Status(status).Bytes("text/html; charset=utf-8", buf.Bytes()).Write(w)
}

// handleSubmit adds an expense, or updates the one being edited.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	logger := log.FromContext(r.Context())
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		logger.WarnContext(r.Context(), "Parse request body error", log.FieldError, err)
		if wantsJSON(r) {
			JSONError(http.StatusBadRequest, "invalid request body", nil).Write(w)
			return
		}
		BadRequestError("invalid request body").Write(w)
		return
	}
	form := p.ExpenseForm()
	asJSON := p.IsJSON() || wantsJSON(r)

	d, err := DraftFromForm(form)
	if err != nil {
		s.rejectForm(w, r, asJSON, form, err)
		return
	}

	e, op, err := s.store.Submit(r.Context(), d)
	switch {
	case errors.Is(err, core.ErrEditingDisabled):
		s.writeError(w, asJSON, http.StatusForbidden, "editing is disabled")
		return
	case errors.Is(err, core.ErrNotFound):
		s.writeError(w, asJSON, http.StatusNotFound, "expense not found")
		return
	case err != nil:
		s.rejectForm(w, r, asJSON, form, err)
		return
	}

	logger.InfoContext(r.Context(), "Expense saved",
		log.NewFields().
			WithOperation(string(op)).
			WithExpense(e.ID, e.Title, e.Amount.Cents, e.Category.String()).
			ToSlice()...)

	if asJSON {
		status := http.StatusOK
		if op == store.OpAdd {
			status = http.StatusCreated
		}
		NewResponse().Status(status).JSON(toExpenseJSON(e)).Write(w)
		return
	}
	SeeOther("/").Write(w)
}

// rejectForm answers invalid input with 422, re-rendering the page with the
// values the user typed.
func (s *Server) rejectForm(w http.ResponseWriter, r *http.Request, asJSON bool, form ExpenseForm, err error) {
	var fe FieldErrors
	if !errors.As(err, &fe) {
		fe = FieldErrors{"form": err.Error()}
	}
	log.FromContext(r.Context()).DebugContext(r.Context(), "Expense rejected", log.FieldError, fe.Error())
	if asJSON {
		JSONError(http.StatusUnprocessableEntity, "validation failed", fe).Write(w)
		return
	}
	s.renderIndex(w, r, http.StatusUnprocessableEntity, &formValues{
		Title:    form.Title,
		Amount:   form.Amount,
		Category: form.Category,
	}, fe)
}

func (s *Server) writeError(w http.ResponseWriter, asJSON bool, status int, msg string) {
	if asJSON {
		JSONError(status, msg, nil).Write(w)
		return
	}
	ErrorResponse(status, msg).Write(w)
}

func (s *Server) handleBeginEdit(w http.ResponseWriter, r *http.Request) {
	id, err := ParseExpenseID(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	if _, err := s.store.BeginEdit(id); err != nil {
		switch {
		case errors.Is(err, core.ErrEditingDisabled):
			ForbiddenError("editing is disabled").Write(w)
		case errors.Is(err, core.ErrNotFound):
			NotFoundError("expense not found").Write(w)
		default:
			InternalServerError("failed to start editing").Write(w)
		}
		return
	}
	SeeOther("/").Write(w)
}

// handleDelete is idempotent: deleting a missing id still redirects (or
// returns 204 for API clients).
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := ParseExpenseID(r)
	if err != nil {
		s.writeError(w, wantsJSON(r), http.StatusBadRequest, err.Error())
		return
	}
	removed := s.store.Delete(r.Context(), id)
	log.FromContext(r.Context()).InfoContext(r.Context(), "Expense delete",
		log.FieldExpenseID, id, log.FieldSuccess, removed)

	if r.Method == http.MethodDelete || wantsJSON(r) {
		NewResponse().Status(http.StatusNoContent).Write(w)
		return
	}
	SeeOther("/").Write(w)
}

func (s *Server) handleCancelEdit(w http.ResponseWriter, r *http.Request) {
	s.store.CancelEdit()
	SeeOther("/").Write(w)
}

func (s *Server) handleFilter(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		BadRequestError("invalid request body").Write(w)
		return
	}
	form := FilterForm{Filter: sanitizeInput(r.PostForm.Get("filter"))}
	if err := ValidateForm(form); err != nil {
		BadRequestError("invalid filter").Write(w)
		return
	}
	f, err := core.ParseFilter(form.Filter)
	if err == nil {
		err = s.store.SetFilter(f)
	}
	if err != nil {
		BadRequestError("invalid filter").Write(w)
		return
	}
	SeeOther("/").Write(w)
}
