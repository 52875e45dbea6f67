package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/iwvelando/pnl-analysis/internal/alerts"
	"github.com/iwvelando/pnl-analysis/internal/analysis"
	"github.com/iwvelando/pnl-analysis/internal/audit"
	"github.com/iwvelando/pnl-analysis/internal/budget"
	"github.com/iwvelando/pnl-analysis/internal/ingest"
	"github.com/iwvelando/pnl-analysis/internal/ledger"
	"github.com/iwvelando/pnl-analysis/internal/payroll"
	"github.com/iwvelando/pnl-analysis/internal/report"
	"github.com/iwvelando/pnl-analysis/internal/scenario"
	"github.com/iwvelando/pnl-analysis/internal/store"
	"github.com/iwvelando/pnl-analysis/internal/yoy"
	"github.com/iwvelando/pnl-analysis/pkg/constants"
	"github.com/iwvelando/pnl-analysis/pkg/datetime"
	"go.uber.org/zap"
)

// Options wires the handler's collaborators. Store and Analyzer are
// optional: without a store the persistence routes are not mounted, and
// without an analyzer every analysis is computed directly.
type Options struct {
	Logger         *zap.Logger
	MaxUploadSize  int64
	Version        string
	AllowedOrigins []string
	Analyzer       report.Analyzer
	Store          store.Store
}

type handler struct {
	logger        *zap.Logger
	maxUploadSize int64
	version       string
	analyzer      report.Analyzer
	runner        *report.Runner
	store         store.Store
	audit         *audit.Recorder
}

// NewHandler constructs the HTTP handler that serves the analysis API.
func NewHandler(opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	maxUploadSize := opts.MaxUploadSize
	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}

	trimmedVersion := strings.TrimSpace(opts.Version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	h := &handler{
		logger:        logger,
		maxUploadSize: maxUploadSize,
		version:       trimmedVersion,
		analyzer:      opts.Analyzer,
		runner:        report.NewRunner(opts.Analyzer, logger),
		store:         opts.Store,
	}
	if h.analyzer == nil {
		h.analyzer = directAnalyzer{}
	}
	if opts.Store != nil {
		h.audit = audit.NewRecorder(opts.Store, logger)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", userHeader},
		MaxAge:         300,
	}))

	r.Get("/health", h.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/version", h.handleVersion)

		r.Post("/analysis", h.handleAnalysis)
		r.Post("/variance", h.handleVariance)
		r.Post("/scenario", h.handleScenario)
		r.Post("/payroll", h.handlePayroll)
		r.Post("/yoy", h.handleYoY)
		r.Post("/alerts", h.handleAlerts)
		r.Post("/report", h.handleReport)

		r.Post("/import/quickbooks", h.handleImportQuickBooks)
		r.Post("/import/employees", h.handleImportEmployees)

		if h.store != nil {
			h.mountStore(r)
		}
	})

	return r
}

type directAnalyzer struct{}

func (directAnalyzer) Analyze(_ context.Context, pl ledger.PLData, hc ledger.HeadcountData, months []string) *analysis.Result {
	return analysis.Run(pl, hc, months)
}

func (h *handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) handleVersion(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

// resolveMonths expands month tokens. A missing list selects the whole year;
// an explicit empty list selects nothing.
func resolveMonths(tokens []string) ([]string, error) {
	if tokens == nil {
		return append([]string(nil), constants.Months...), nil
	}
	months, err := datetime.ParseMonthSelection(tokens)
	if err != nil {
		return nil, err
	}
	if months == nil {
		months = []string{}
	}
	return months, nil
}

func headcountOrDefault(hc ledger.HeadcountData) ledger.HeadcountData {
	if hc == nil {
		return ledger.DefaultHeadcount()
	}
	return hc
}

type analysisRequest struct {
	PLData    ledger.PLData        `json:"plData"`
	Headcount ledger.HeadcountData `json:"headcount"`
	Months    []string             `json:"months"`
}

type analysisResponse struct {
	Result  *analysis.Result `json:"result"`
	Summary analysis.Summary `json:"summary"`
}

// decodeRequest reads a JSON body bounded by the upload limit.
func (h *handler) decodeRequest(w http.ResponseWriter, r *http.Request, op string, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request exceeds limit of %d bytes", h.maxUploadSize), op)
			return false
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return false
	}
	return true
}

func (h *handler) months(w http.ResponseWriter, tokens []string, op string) ([]string, bool) {
	months, err := resolveMonths(tokens)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("invalid months: %v", err), op)
		return nil, false
	}
	return months, true
}

func (h *handler) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleAnalysis"
	var req analysisRequest
	if !h.decodeRequest(w, r, op, &req) {
		return
	}
	months, ok := h.months(w, req.Months, op)
	if !ok {
		return
	}
	if req.PLData == nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, report.ErrNoPLData.Error(), op)
		return
	}

	result := h.analyzer.Analyze(r.Context(), req.PLData, headcountOrDefault(req.Headcount), months)
	h.writeJSON(w, http.StatusOK, analysisResponse{Result: result, Summary: result.Totals()})
}

type varianceRequest struct {
	PLData ledger.PLData     `json:"plData"`
	Budget ledger.BudgetData `json:"budget"`
	Months []string          `json:"months"`
}

func (h *handler) handleVariance(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleVariance"
	var req varianceRequest
	if !h.decodeRequest(w, r, op, &req) {
		return
	}
	months, ok := h.months(w, req.Months, op)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, budget.ComputeVariance(req.PLData, req.Budget, months))
}

type scenarioRequest struct {
	PLData      ledger.PLData         `json:"plData"`
	Headcount   ledger.HeadcountData  `json:"headcount"`
	Adjustments []scenario.Adjustment `json:"adjustments"`
	Months      []string              `json:"months"`
}

type scenarioResponse struct {
	Baseline  analysisResponse `json:"baseline"`
	Projected analysisResponse `json:"projected"`
}

func (h *handler) handleScenario(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleScenario"
	var req scenarioRequest
	if !h.decodeRequest(w, r, op, &req) {
		return
	}
	months, ok := h.months(w, req.Months, op)
	if !ok {
		return
	}
	for i, adj := range req.Adjustments {
		if err := adj.Validate(); err != nil {
			h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("adjustment %d: %v", i+1, err), op)
			return
		}
	}

	hc := headcountOrDefault(req.Headcount)
	baseline := h.analyzer.Analyze(r.Context(), req.PLData, hc, months)
	projected := h.analyzer.Analyze(r.Context(), scenario.Project(req.PLData, req.Adjustments), hc, months)
	h.writeJSON(w, http.StatusOK, scenarioResponse{
		Baseline:  analysisResponse{Result: baseline, Summary: baseline.Totals()},
		Projected: analysisResponse{Result: projected, Summary: projected.Totals()},
	})
}

type payrollRequest struct {
	Employees []payroll.Employee `json:"employees"`
	Hours     []payroll.Hours    `json:"hours"`
	Months    []string           `json:"months"`
}

type payrollResponse struct {
	Rows  []payroll.SummaryRow `json:"rows"`
	Total payroll.SummaryRow   `json:"total"`
}

func (h *handler) handlePayroll(w http.ResponseWriter, r *http.Request) {
	const op = "server.handlePayroll"
	var req payrollRequest
	if !h.decodeRequest(w, r, op, &req) {
		return
	}
	months, ok := h.months(w, req.Months, op)
	if !ok {
		return
	}
	rows := payroll.ComputeSummary(req.Employees, req.Hours, months)
	h.writeJSON(w, http.StatusOK, payrollResponse{Rows: rows, Total: payroll.Totals(rows)})
}

type yoyRequest struct {
	Current   ledger.PLData        `json:"current"`
	Prior     ledger.PLData        `json:"prior"`
	Headcount ledger.HeadcountData `json:"headcount"`
	Months    []string             `json:"months"`
}

func (h *handler) handleYoY(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleYoY"
	var req yoyRequest
	if !h.decodeRequest(w, r, op, &req) {
		return
	}
	months, ok := h.months(w, req.Months, op)
	if !ok {
		return
	}
	if req.Current == nil || req.Prior == nil {
		h.writeJSON(w, http.StatusOK, []yoy.Row{})
		return
	}
	hc := headcountOrDefault(req.Headcount)
	current := h.analyzer.Analyze(r.Context(), req.Current, hc, months)
	prior := h.analyzer.Analyze(r.Context(), req.Prior, hc, months)
	h.writeJSON(w, http.StatusOK, yoy.Compute(current, prior))
}

type alertsRequest struct {
	PLData    ledger.PLData        `json:"plData"`
	Headcount ledger.HeadcountData `json:"headcount"`
	Alerts    []alerts.Config      `json:"alerts"`
	Months    []string             `json:"months"`
}

func (h *handler) handleAlerts(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleAlerts"
	var req alertsRequest
	if !h.decodeRequest(w, r, op, &req) {
		return
	}
	months, ok := h.months(w, req.Months, op)
	if !ok {
		return
	}
	result := h.analyzer.Analyze(r.Context(), req.PLData, headcountOrDefault(req.Headcount), months)
	h.writeJSON(w, http.StatusOK, alerts.Check(req.Alerts, result))
}

type reportRequest struct {
	report.Dataset
	Months []string `json:"months"`
}

func (h *handler) handleReport(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleReport"
	var req reportRequest
	if !h.decodeRequest(w, r, op, &req) {
		return
	}
	months, ok := h.months(w, req.Months, op)
	if !ok {
		return
	}
	h.runReport(w, r, req.Dataset, months, op)
}

func (h *handler) runReport(w http.ResponseWriter, r *http.Request, ds report.Dataset, months []string, op string) {
	rep, err := h.runner.Run(r.Context(), ds, months)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, report.ErrNoPLData) {
			status = http.StatusBadRequest
		}
		h.respondErrorWithOp(w, status, err.Error(), op)
		return
	}
	h.writeJSON(w, http.StatusOK, rep)
}

// readUpload extracts the "file" part of a multipart upload.
func (h *handler) readUpload(w http.ResponseWriter, r *http.Request, op string) (multipart.File, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds limit of %d bytes", h.maxUploadSize), op)
			return nil, false
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to parse upload: %v", err), op)
		return nil, false
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, "missing upload file", op)
		return nil, false
	}
	return file, true
}

func (h *handler) closeUpload(file io.Closer, op string) {
	if err := file.Close(); err != nil {
		h.logger.Warn("failed to close uploaded file",
			zap.String("op", op),
			zap.Error(err),
		)
	}
}

func (h *handler) handleImportQuickBooks(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleImportQuickBooks"
	start := time.Now()

	location := strings.TrimSpace(r.URL.Query().Get("location"))
	if !constants.IsLocation(location) && location != constants.Corporate {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("unknown location %q", location), op)
		return
	}

	file, ok := h.readUpload(w, r, op)
	if !ok {
		return
	}
	defer h.closeUpload(file, op)

	result := ingest.ParseQuickBooks(file, location)
	h.logger.Info("quickbooks import parsed",
		zap.String("op", op),
		zap.String("location", location),
		zap.Bool("success", result.Success),
		zap.Int("matched", result.MatchedRows),
		zap.Int("unmatched", len(result.UnmatchedRows)),
		zap.Duration("duration", time.Since(start)),
	)
	if !result.Success {
		h.writeJSON(w, http.StatusUnprocessableEntity, result)
		return
	}
	if user := userID(r); user != "" {
		h.audit.Record(r.Context(), user, audit.ActionImport, audit.ResourcePLData, audit.Options{
			Location: location,
			Summary:  fmt.Sprintf("Parsed QuickBooks export: %d rows matched", result.MatchedRows),
		})
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *handler) handleImportEmployees(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleImportEmployees"

	file, ok := h.readUpload(w, r, op)
	if !ok {
		return
	}
	defer h.closeUpload(file, op)

	employees, err := payroll.ParseEmployeeCSV(file, userID(r))
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to parse roster: %v", err), op)
		return
	}
	if employees == nil {
		employees = []payroll.Employee{}
	}
	h.writeJSON(w, http.StatusOK, employees)
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
