package mcpserver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Approval statuses stored in mcp_approvals.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Events emitted while an approval is outstanding.
const (
	EventApprovalRequired  = "mcp:approval-required"
	EventApprovalDismissed = "mcp:approval-dismissed"
)

// ErrRejected is returned when the user rejects or ignores an action.
var ErrRejected = errors.New("action rejected by user")

// EventEmitter allows the approval queue to notify the frontend.
type EventEmitter interface {
	Emit(ctx context.Context, event string, data any)
}

// PendingAction represents a destructive operation awaiting user approval.
type PendingAction struct {
	ID          string `json:"id"`
	Tool        string `json:"tool"`
	Description string `json:"description"`
	CreatedAt   string `json:"createdAt"`
	Metadata    string `json:"metadata"` // JSON with extra context (e.g. document ids)
}

// ApprovalQueue manages human-in-the-loop approval for destructive MCP tool calls.
// It supports two modes:
//   - In-process (Wails app running MCP): channels + frontend events
//   - DB-based (standalone MCP): rows in mcp_approvals, resolved by the app
type ApprovalQueue struct {
	mu      sync.Mutex
	pending map[string]pendingEntry
	emitter EventEmitter
	timeout time.Duration
	poll    time.Duration
	db      *sql.DB
}

type pendingEntry struct {
	action PendingAction
	ch     chan bool
}

// NewApprovalQueue creates a queue in channel mode.
func NewApprovalQueue(emitter EventEmitter) *ApprovalQueue {
	return &ApprovalQueue{
		pending: make(map[string]pendingEntry),
		emitter: emitter,
		timeout: 120 * time.Second,
		poll:    500 * time.Millisecond,
	}
}

// SetDB enables DB-based approval mode for standalone MCP.
func (q *ApprovalQueue) SetDB(db *sql.DB) {
	q.db = db
}

// SetTimeout changes how long a request waits before it is rejected.
func (q *ApprovalQueue) SetTimeout(d time.Duration) {
	q.timeout = d
}

// Request blocks until the action is approved, rejected, timed out or ctx
// is done. A nil error means approved.
func (q *ApprovalQueue) Request(ctx context.Context, tool, description, metadata string) error {
	if metadata == "" {
		metadata = "{}"
	}
	action := PendingAction{
		ID:          uuid.New().String(),
		Tool:        tool,
		Description: description,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
		Metadata:    metadata,
	}
	if q.db != nil {
		return q.requestViaDB(ctx, action)
	}
	return q.requestViaChannel(ctx, action)
}

func (q *ApprovalQueue) requestViaDB(ctx context.Context, a PendingAction) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO mcp_approvals (id, tool, description, status, metadata) VALUES (?, ?, ?, ?, ?)`,
		a.ID, a.Tool, a.Description, StatusPending, a.Metadata,
	)
	if err != nil {
		return fmt.Errorf("insert approval: %w", err)
	}
	defer q.db.Exec(`DELETE FROM mcp_approvals WHERE id = ?`, a.ID)

	timeout := time.After(q.timeout)
	ticker := time.NewTicker(q.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			var status string
			if err := q.db.QueryRowContext(ctx, `SELECT status FROM mcp_approvals WHERE id = ?`, a.ID).Scan(&status); err != nil {
				continue
			}
			switch status {
			case StatusApproved:
				return nil
			case StatusRejected:
				return fmt.Errorf("%s: %w", a.Tool, ErrRejected)
			}
		case <-timeout:
			return fmt.Errorf("%s timed out after %s: %w", a.Tool, q.timeout, ErrRejected)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (q *ApprovalQueue) requestViaChannel(ctx context.Context, a PendingAction) error {
	ch := make(chan bool, 1)

	q.mu.Lock()
	q.pending[a.ID] = pendingEntry{action: a, ch: ch}
	q.mu.Unlock()
	defer q.cleanup(a.ID)

	if q.emitter != nil {
		q.emitter.Emit(ctx, EventApprovalRequired, a)
	}

	dismiss := func() {
		if q.emitter != nil {
			q.emitter.Emit(ctx, EventApprovalDismissed, map[string]string{"id": a.ID})
		}
	}

	select {
	case approved := <-ch:
		if !approved {
			return fmt.Errorf("%s: %w", a.Tool, ErrRejected)
		}
		return nil
	case <-time.After(q.timeout):
		dismiss()
		return fmt.Errorf("%s timed out after %s: %w", a.Tool, q.timeout, ErrRejected)
	case <-ctx.Done():
		dismiss()
		return ctx.Err()
	}
}

// Pending lists the in-process actions awaiting a decision.
func (q *ApprovalQueue) Pending() []PendingAction {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]PendingAction, 0, len(q.pending))
	for _, e := range q.pending {
		out = append(out, e.action)
	}
	return out
}

// Approve marks a pending action as approved (in-process mode).
func (q *ApprovalQueue) Approve(actionID string) bool {
	return q.resolve(actionID, true)
}

// Reject marks a pending action as rejected (in-process mode).
func (q *ApprovalQueue) Reject(actionID string) bool {
	return q.resolve(actionID, false)
}

func (q *ApprovalQueue) resolve(actionID string, approved bool) bool {
	q.mu.Lock()
	e, ok := q.pending[actionID]
	q.mu.Unlock()
	if !ok {
		return false
	}
	select {
	case e.ch <- approved:
	default:
	}
	return true
}

func (q *ApprovalQueue) cleanup(id string) {
	q.mu.Lock()
	delete(q.pending, id)
	q.mu.Unlock()
}

// ── DB mode, app side ──────────────────────────────────────

// ListPendingDB returns approvals requested by a standalone MCP process.
func ListPendingDB(ctx context.Context, db *sql.DB) ([]PendingAction, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, tool, description, created_at, metadata FROM mcp_approvals WHERE status = ? ORDER BY created_at`,
		StatusPending,
	)
	if err != nil {
		return nil, fmt.Errorf("list approvals: %w", err)
	}
	defer rows.Close()

	var out []PendingAction
	for rows.Next() {
		var a PendingAction
		var created time.Time
		if err := rows.Scan(&a.ID, &a.Tool, &a.Description, &created, &a.Metadata); err != nil {
			return nil, fmt.Errorf("scan approval: %w", err)
		}
		a.CreatedAt = created.UTC().Format(time.RFC3339)
		out = append(out, a)
	}
	return out, rows.Err()
}

// ResolveDB records the user's decision for a standalone approval.
func ResolveDB(ctx context.Context, db *sql.DB, id string, approved bool) error {
	status := StatusRejected
	if approved {
		status = StatusApproved
	}
	res, err := db.ExecContext(ctx,
		`UPDATE mcp_approvals SET status = ? WHERE id = ? AND status = ?`, status, id, StatusPending)
	if err != nil {
		return fmt.Errorf("resolve approval: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("approval %s is not pending", id)
	}
	return nil
}
