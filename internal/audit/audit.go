// Package audit records who changed which dataset and when.
package audit

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Actions recorded by the collaborators.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionImport = "import"
)

// Resources an action applies to.
const (
	ResourcePLData    = "pl_data"
	ResourceHeadcount = "headcount"
	ResourceBudget    = "budget"
	ResourceScenario  = "scenario"
	ResourceAlert     = "alert"
	ResourceEmployee  = "employee"
	ResourceHours     = "payroll_hours"
)

// DefaultListLimit caps List when the filter sets no limit.
const DefaultListLimit = 100

// Entry is one audit record. Year and Location are optional.
type Entry struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	ActionType   string    `json:"action_type"`
	ResourceType string    `json:"resource_type"`
	Year         *int      `json:"year"`
	Location     *string   `json:"location"`
	Summary      string    `json:"change_summary"`
	CreatedAt    time.Time `json:"created_at"`
}

// Filter narrows a listing. Empty or "all" ActionType matches every action;
// zero times are unbounded.
type Filter struct {
	UserID     string
	ActionType string
	Start      time.Time
	End        time.Time
	Limit      int
}

// Sink persists entries.
type Sink interface {
	AppendAudit(ctx context.Context, e Entry) error
}

// Options carries the optional fields of an entry.
type Options struct {
	Year     int
	Location string
	Summary  string
}

// Recorder writes entries through a Sink. Failures are logged and never
// returned: auditing must not block the change it describes.
type Recorder struct {
	sink   Sink
	logger *zap.Logger
}

// NewRecorder returns a Recorder. A nil sink makes Record a no-op.
func NewRecorder(sink Sink, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{sink: sink, logger: logger}
}

// Record appends one entry.
func (r *Recorder) Record(ctx context.Context, userID, action, resource string, opts Options) {
	if r == nil || r.sink == nil {
		return
	}
	e := NewEntry(userID, action, resource, opts)
	if err := r.sink.AppendAudit(ctx, e); err != nil {
		r.logger.Warn("failed to record audit entry",
			zap.String("op", "audit.Record"),
			zap.String("action", action),
			zap.String("resource", resource),
			zap.Error(err),
		)
	}
}

// NewEntry builds an entry, leaving Year and Location nil when unset.
func NewEntry(userID, action, resource string, opts Options) Entry {
	e := Entry{
		UserID:       userID,
		ActionType:   action,
		ResourceType: resource,
		Summary:      opts.Summary,
	}
	if opts.Year != 0 {
		year := opts.Year
		e.Year = &year
	}
	if opts.Location != "" {
		loc := opts.Location
		e.Location = &loc
	}
	return e
}
