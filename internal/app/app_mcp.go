package app

import (
	mcpserver "mdnotes/internal/mcp"
)

// ============================================================
// MCP approvals
// ============================================================

// PendingApprovals lists agent actions waiting for the user, from the
// in-app endpoint and from standalone `mdnotes mcp` processes.
func (a *App) PendingApprovals() ([]mcpserver.PendingAction, error) {
	out := a.mcp.Pending()
	stored, err := mcpserver.ListPendingDB(a.ctx, a.backend.db.Conn())
	if err != nil {
		return nil, err
	}
	return append(out, stored...), nil
}

func (a *App) ApproveMCPAction(id string) error {
	return a.resolveApproval(id, true)
}

func (a *App) RejectMCPAction(id string) error {
	return a.resolveApproval(id, false)
}

func (a *App) resolveApproval(id string, approved bool) error {
	if approved && a.mcp.Approve(id) {
		return nil
	}
	if !approved && a.mcp.Reject(id) {
		return nil
	}
	return mcpserver.ResolveDB(a.ctx, a.backend.db.Conn(), id, approved)
}
