package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/iwvelando/pnl-analysis/internal/alerts"
	"github.com/iwvelando/pnl-analysis/internal/audit"
	"github.com/iwvelando/pnl-analysis/internal/ledger"
	"github.com/iwvelando/pnl-analysis/internal/payroll"
	"github.com/iwvelando/pnl-analysis/internal/report"
	"github.com/iwvelando/pnl-analysis/internal/scenario"
	"github.com/iwvelando/pnl-analysis/internal/store"
	"go.uber.org/zap"
)

// userHeader carries the id of the user whose records a request touches.
const userHeader = "X-User-ID"

type ctxKey struct{}

func userID(r *http.Request) string {
	if id, ok := r.Context().Value(ctxKey{}).(string); ok {
		return id
	}
	return strings.TrimSpace(r.Header.Get(userHeader))
}

// requireUser rejects requests without a user id.
func (h *handler) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(userHeader))
		if id == "" {
			h.respondErrorWithOp(w, http.StatusUnauthorized, "missing "+userHeader+" header", "server.requireUser")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

func (h *handler) mountStore(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.requireUser)

		r.Get("/pl/{year}", h.handleGetPL)
		r.Put("/pl/{year}", h.handlePutPL)
		r.Get("/headcount/{year}", h.handleGetHeadcount)
		r.Put("/headcount/{year}", h.handlePutHeadcount)
		r.Get("/budget/{year}", h.handleGetBudget)
		r.Put("/budget/{year}", h.handlePutBudget)
		r.Get("/hours/{year}", h.handleGetHours)
		r.Put("/hours/{year}", h.handlePutHours)

		r.Get("/scenarios", h.handleListScenarios)
		r.Post("/scenarios", h.handleSaveScenario)
		r.Delete("/scenarios/{id}", h.handleDeleteScenario)

		r.Get("/alert-configs", h.handleListAlerts)
		r.Post("/alert-configs", h.handleSaveAlert)
		r.Delete("/alert-configs/{id}", h.handleDeleteAlert)

		r.Get("/employees", h.handleListEmployees)
		r.Post("/employees", h.handleSaveEmployee)
		r.Delete("/employees/{id}", h.handleDeleteEmployee)

		r.Get("/reports/{year}", h.handleStoredReport)
		r.Get("/audit", h.handleListAudit)
	})
}

func (h *handler) year(w http.ResponseWriter, r *http.Request, op string) (int, bool) {
	return h.parseYear(w, chi.URLParam(r, "year"), op)
}

func (h *handler) parseYear(w http.ResponseWriter, raw, op string) (int, bool) {
	year, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || year <= 0 {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("invalid year %q", raw), op)
		return 0, false
	}
	return year, true
}

// storeError maps a persistence error to a response.
func (h *handler) storeError(w http.ResponseWriter, err error, op string) {
	if errors.Is(err, store.ErrNotFound) {
		h.respondErrorWithOp(w, http.StatusNotFound, "not found", op)
		return
	}
	h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
}

func (h *handler) handleGetPL(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleGetPL"
	year, ok := h.year(w, r, op)
	if !ok {
		return
	}
	pl, err := h.store.LoadPL(r.Context(), userID(r), year)
	if err != nil {
		h.storeError(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, pl)
}

func (h *handler) handlePutPL(w http.ResponseWriter, r *http.Request) {
	const op = "server.handlePutPL"
	year, ok := h.year(w, r, op)
	if !ok {
		return
	}
	var pl ledger.PLData
	if !h.decodeRequest(w, r, op, &pl) {
		return
	}
	if err := h.store.SavePL(r.Context(), userID(r), year, pl); err != nil {
		h.storeError(w, err, op)
		return
	}
	h.audit.Record(r.Context(), userID(r), audit.ActionUpdate, audit.ResourcePLData, audit.Options{
		Year:    year,
		Summary: fmt.Sprintf("Saved P&L data for %d entities", len(pl)),
	})
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"saved": true, "year": year})
}

func (h *handler) handleGetHeadcount(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleGetHeadcount"
	year, ok := h.year(w, r, op)
	if !ok {
		return
	}
	hc, err := h.store.LoadHeadcount(r.Context(), userID(r), year)
	if errors.Is(err, store.ErrNotFound) {
		hc, err = ledger.DefaultHeadcount(), nil
	}
	if err != nil {
		h.storeError(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, hc)
}

func (h *handler) handlePutHeadcount(w http.ResponseWriter, r *http.Request) {
	const op = "server.handlePutHeadcount"
	year, ok := h.year(w, r, op)
	if !ok {
		return
	}
	var hc ledger.HeadcountData
	if !h.decodeRequest(w, r, op, &hc) {
		return
	}
	if err := h.store.SaveHeadcount(r.Context(), userID(r), year, hc); err != nil {
		h.storeError(w, err, op)
		return
	}
	h.audit.Record(r.Context(), userID(r), audit.ActionUpdate, audit.ResourceHeadcount, audit.Options{
		Year:    year,
		Summary: fmt.Sprintf("Saved headcount for %d locations", len(hc)),
	})
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"saved": true, "year": year})
}

func (h *handler) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleGetBudget"
	year, ok := h.year(w, r, op)
	if !ok {
		return
	}
	b, err := h.store.LoadBudget(r.Context(), userID(r), year)
	if errors.Is(err, store.ErrNotFound) {
		b, err = ledger.NewBudget(), nil
	}
	if err != nil {
		h.storeError(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, b)
}

func (h *handler) handlePutBudget(w http.ResponseWriter, r *http.Request) {
	const op = "server.handlePutBudget"
	year, ok := h.year(w, r, op)
	if !ok {
		return
	}
	var b ledger.BudgetData
	if !h.decodeRequest(w, r, op, &b) {
		return
	}
	if err := h.store.SaveBudget(r.Context(), userID(r), year, b); err != nil {
		h.storeError(w, err, op)
		return
	}
	h.audit.Record(r.Context(), userID(r), audit.ActionUpdate, audit.ResourceBudget, audit.Options{
		Year:    year,
		Summary: fmt.Sprintf("Saved budget for %d entities", len(b)),
	})
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"saved": true, "year": year})
}

func (h *handler) handleGetHours(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleGetHours"
	year, ok := h.year(w, r, op)
	if !ok {
		return
	}
	hours, err := h.store.LoadHours(r.Context(), userID(r), year)
	if err != nil {
		h.storeError(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, hours)
}

func (h *handler) handlePutHours(w http.ResponseWriter, r *http.Request) {
	const op = "server.handlePutHours"
	year, ok := h.year(w, r, op)
	if !ok {
		return
	}
	var hours []payroll.Hours
	if !h.decodeRequest(w, r, op, &hours) {
		return
	}
	if err := h.store.SaveHours(r.Context(), userID(r), year, hours); err != nil {
		h.storeError(w, err, op)
		return
	}
	h.audit.Record(r.Context(), userID(r), audit.ActionUpdate, audit.ResourceHours, audit.Options{
		Year:    year,
		Summary: fmt.Sprintf("Saved %d payroll hour records", len(hours)),
	})
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"saved": true, "year": year})
}

func (h *handler) handleListScenarios(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleListScenarios"
	year, ok := h.parseYear(w, r.URL.Query().Get("year"), op)
	if !ok {
		return
	}
	list, err := h.store.ListScenarios(r.Context(), userID(r), year)
	if err != nil {
		h.storeError(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, list)
}

func (h *handler) handleSaveScenario(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSaveScenario"
	var s scenario.Scenario
	if !h.decodeRequest(w, r, op, &s) {
		return
	}
	if strings.TrimSpace(s.Name) == "" {
		h.respondErrorWithOp(w, http.StatusBadRequest, "scenario name is required", op)
		return
	}
	for i, adj := range s.Adjustments {
		if err := adj.Validate(); err != nil {
			h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("adjustment %d: %v", i+1, err), op)
			return
		}
	}
	action := audit.ActionUpdate
	if s.ID == "" {
		action = audit.ActionCreate
	}
	s.UserID = userID(r)
	if err := h.store.SaveScenario(r.Context(), &s); err != nil {
		h.storeError(w, err, op)
		return
	}
	h.audit.Record(r.Context(), s.UserID, action, audit.ResourceScenario, audit.Options{
		Year:    s.Year,
		Summary: fmt.Sprintf("Saved scenario '%s' with %d adjustments", s.Name, len(s.Adjustments)),
	})
	h.writeJSON(w, http.StatusOK, s)
}

func (h *handler) handleDeleteScenario(w http.ResponseWriter, r *http.Request) {
	h.deleteRecord(w, r, "server.handleDeleteScenario", audit.ResourceScenario, h.store.DeleteScenario)
}

func (h *handler) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.ListAlerts(r.Context(), userID(r))
	if err != nil {
		h.storeError(w, err, "server.handleListAlerts")
		return
	}
	h.writeJSON(w, http.StatusOK, list)
}

func (h *handler) handleSaveAlert(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSaveAlert"
	var c alerts.Config
	if !h.decodeRequest(w, r, op, &c) {
		return
	}
	if err := c.Validate(); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}
	action := audit.ActionUpdate
	if c.ID == "" {
		action = audit.ActionCreate
	}
	c.UserID = userID(r)
	if err := h.store.SaveAlert(r.Context(), &c); err != nil {
		h.storeError(w, err, op)
		return
	}
	h.audit.Record(r.Context(), c.UserID, action, audit.ResourceAlert, audit.Options{
		Location: c.Location,
		Summary:  fmt.Sprintf("Saved alert '%s'", c.AlertName),
	})
	h.writeJSON(w, http.StatusOK, c)
}

func (h *handler) handleDeleteAlert(w http.ResponseWriter, r *http.Request) {
	h.deleteRecord(w, r, "server.handleDeleteAlert", audit.ResourceAlert, h.store.DeleteAlert)
}

func (h *handler) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.ListEmployees(r.Context(), userID(r))
	if err != nil {
		h.storeError(w, err, "server.handleListEmployees")
		return
	}
	h.writeJSON(w, http.StatusOK, list)
}

func (h *handler) handleSaveEmployee(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSaveEmployee"
	var e payroll.Employee
	if !h.decodeRequest(w, r, op, &e) {
		return
	}
	if strings.TrimSpace(e.Name) == "" {
		h.respondErrorWithOp(w, http.StatusBadRequest, "employee name is required", op)
		return
	}
	if e.Status == "" {
		e.Status = payroll.StatusActive
	}
	action := audit.ActionUpdate
	if e.ID == "" {
		action = audit.ActionCreate
	}
	e.UserID = userID(r)
	if err := h.store.SaveEmployee(r.Context(), &e); err != nil {
		h.storeError(w, err, op)
		return
	}
	h.audit.Record(r.Context(), e.UserID, action, audit.ResourceEmployee, audit.Options{
		Location: e.Location,
		Summary:  fmt.Sprintf("Saved employee %s", e.Name),
	})
	h.writeJSON(w, http.StatusOK, e)
}

func (h *handler) handleDeleteEmployee(w http.ResponseWriter, r *http.Request) {
	h.deleteRecord(w, r, "server.handleDeleteEmployee", audit.ResourceEmployee, h.store.DeleteEmployee)
}

func (h *handler) deleteRecord(w http.ResponseWriter, r *http.Request, op, resource string,
	del func(ctx context.Context, userID, id string) error) {
	id := chi.URLParam(r, "id")
	if err := del(r.Context(), userID(r), id); err != nil {
		h.storeError(w, err, op)
		return
	}
	h.audit.Record(r.Context(), userID(r), audit.ActionDelete, resource, audit.Options{
		Summary: fmt.Sprintf("Deleted %s %s", resource, id),
	})
	w.WriteHeader(http.StatusNoContent)
}

// handleStoredReport runs a report over the stored records of a year. The
// months query takes comma-separated names or ranges; priorYear defaults to
// the previous year.
func (h *handler) handleStoredReport(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleStoredReport"
	year, ok := h.year(w, r, op)
	if !ok {
		return
	}
	priorYear := year - 1
	if raw := r.URL.Query().Get("priorYear"); raw != "" {
		if priorYear, ok = h.parseYear(w, raw, op); !ok {
			return
		}
	}
	var tokens []string
	if raw := r.URL.Query().Get("months"); raw != "" {
		tokens = strings.Split(raw, ",")
	}
	months, ok := h.months(w, tokens, op)
	if !ok {
		return
	}

	ds, err := report.Load(r.Context(), h.store, userID(r), year, priorYear)
	if err != nil {
		h.storeError(w, err, op)
		return
	}
	h.runReport(w, r, ds, months, op)
}

func (h *handler) handleListAudit(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleListAudit"
	q := r.URL.Query()
	f := audit.Filter{UserID: userID(r), ActionType: q.Get("action")}

	var err error
	if raw := q.Get("start"); raw != "" {
		if f.Start, err = time.Parse(time.RFC3339, raw); err != nil {
			h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("invalid start: %v", err), op)
			return
		}
	}
	if raw := q.Get("end"); raw != "" {
		if f.End, err = time.Parse(time.RFC3339, raw); err != nil {
			h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("invalid end: %v", err), op)
			return
		}
	}
	if raw := q.Get("limit"); raw != "" {
		if f.Limit, err = strconv.Atoi(raw); err != nil {
			h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("invalid limit: %v", err), op)
			return
		}
	}

	entries, err := h.store.ListAudit(r.Context(), f)
	if err != nil {
		h.storeError(w, err, op)
		return
	}
	h.logger.Debug("audit listed",
		zap.String("op", op),
		zap.Int("entries", len(entries)),
	)
	h.writeJSON(w, http.StatusOK, entries)
}
