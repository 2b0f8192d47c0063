package http

import (
	"context"
	"net/http"
	"time"

	"expensetracker/internal/chart"
	"expensetracker/internal/core"
	"expensetracker/internal/log"
)

func (s *Server) handleChart(format chart.Format) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := s.store.Snapshot()
		data, err := s.charts.Render(snap.Version, snap.Summary.ByCategory, format)
		if err != nil {
			log.FromContext(r.Context()).Failure(r.Context(), "Chart render failed", log.OpRender, err)
			InternalServerError("failed to render chart").Write(w)
			return
		}
		NewResponse().
			Header("Cache-Control", "no-cache").
			Bytes(format.ContentType(), data).
			Write(w)
	}
}

// handleAPIExpenses lists records matching ?filter=, or the active filter
// when the parameter is absent.
func (s *Server) handleAPIExpenses(w http.ResponseWriter, r *http.Request) {
	var items []core.Expense
	filter := s.store.Filter()
	if raw, ok := r.URL.Query()["filter"]; ok {
		f, err := core.ParseFilter(sanitizeInput(raw[0]))
		if err != nil {
			JSONError(http.StatusBadRequest, "invalid filter", map[string]string{"filter": "must be All or a category"}).Write(w)
			return
		}
		filter = f
	}
	items = s.store.FilteredBy(filter)

	out := struct {
		Filter   string        `json:"filter"`
		Expenses []expenseJSON `json:"expenses"`
		Total    string        `json:"total"`
	}{
		Filter:   filter.String(),
		Expenses: make([]expenseJSON, 0, len(items)),
		Total:    s.store.Total().String(),
	}
	for _, e := range items {
		out.Expenses = append(out.Expenses, toExpenseJSON(e))
	}
	NewResponse().JSON(out).Write(w)
}

func (s *Server) handleAPISummary(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(toSummaryJSON(s.store.Snapshot())).Write(w)
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	}).Write(w)
}

// handleReady performs readiness check with dependency verification
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	if s.ready != nil {
		if err := s.ready(ctx); err != nil {
			checks["storage"] = "failed: " + err.Error()
			status = "not_ready"
			httpStatus = http.StatusServiceUnavailable
		} else {
			checks["storage"] = "ok"
		}
	} else {
		checks["storage"] = "not_configured"
	}

	hits, misses := s.charts.Cache().Stats()
	checks["chart_cache"] = map[string]any{
		"entries": s.charts.Cache().Size(),
		"hits":    hits,
		"misses":  misses,
	}
	checks["rate_limiter"] = map[string]any{
		"active_clients": s.limiter.ActiveClients(),
		"rejected":       s.limiter.Hits(),
	}
	checks["requests"] = map[string]any{
		"total":      s.tracer.TotalRequests(),
		"suspicious": s.detector.SuspiciousRequests(),
	}

	NewResponse().Status(httpStatus).JSON(map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   s.store.Version(),
		"checks":    checks,
	}).Write(w)
}
