// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"shopadmin/internal/models"
)

// WorkflowStore reads the workflow reference data: statuses, the
// role-scoped transition graph, role permissions, and the item audit
// trail. All of it is read-mostly; the graph is configuration, not code.
type WorkflowStore struct {
	db *sql.DB
}

// NewWorkflowStore returns a new WorkflowStore.
func NewWorkflowStore(db *sql.DB) *WorkflowStore {
	return &WorkflowStore{db: db}
}

const statusColumns = `id, status_key, status_label, status_order, is_terminal`

// scanStatus scans a row into a WorkflowStatus struct.
func scanStatus(scanner interface{ Scan(...any) error }) (*models.WorkflowStatus, error) {
	var ws models.WorkflowStatus
	err := scanner.Scan(&ws.ID, &ws.StatusKey, &ws.StatusLabel, &ws.StatusOrder, &ws.IsTerminal)
	if err != nil {
		return nil, err
	}
	return &ws, nil
}

// Statuses returns every workflow status ordered by status_order.
func (s *WorkflowStore) Statuses() ([]models.WorkflowStatus, error) {
	rows, err := s.db.Query(`SELECT ` + statusColumns + ` FROM workflow_statuses ORDER BY status_order`)
	if err != nil {
		return nil, fmt.Errorf("list workflow statuses: %w", err)
	}
	defer rows.Close()

	var statuses []models.WorkflowStatus
	for rows.Next() {
		ws, err := scanStatus(rows)
		if err != nil {
			return nil, fmt.Errorf("scan workflow status: %w", err)
		}
		statuses = append(statuses, *ws)
	}
	return statuses, rows.Err()
}

// StatusByID retrieves a workflow status by ID. Returns nil if not found.
func (s *WorkflowStore) StatusByID(id int64) (*models.WorkflowStatus, error) {
	row := s.db.QueryRow(`SELECT `+statusColumns+` FROM workflow_statuses WHERE id = $1`, id)
	ws, err := scanStatus(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find workflow status by id: %w", err)
	}
	return ws, nil
}

// StatusByKey retrieves a workflow status by its stable key. Returns nil
// if not found.
func (s *WorkflowStore) StatusByKey(key string) (*models.WorkflowStatus, error) {
	row := s.db.QueryRow(`SELECT `+statusColumns+` FROM workflow_statuses WHERE status_key = $1`, key)
	ws, err := scanStatus(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find workflow status by key: %w", err)
	}
	return ws, nil
}

// TransitionsFor returns the transitions a role may take out of a status,
// each annotated with whether a tracking number is mandatory on that edge.
func (s *WorkflowStore) TransitionsFor(roleKey string, fromStatusID int64) ([]models.Transition, error) {
	rows, err := s.db.Query(`
		SELECT t.from_status_id, t.to_status_id, w.status_key, t.requires_tracking
		FROM role_transitions t
		JOIN workflow_statuses w ON w.id = t.to_status_id
		WHERE t.role_key = $1 AND t.from_status_id = $2
		ORDER BY w.status_order
	`, roleKey, fromStatusID)
	if err != nil {
		return nil, fmt.Errorf("list role transitions: %w", err)
	}
	defer rows.Close()

	var transitions []models.Transition
	for rows.Next() {
		var t models.Transition
		if err := rows.Scan(&t.FromStatusID, &t.ToStatusID, &t.ToStatusKey, &t.RequiresTracking); err != nil {
			return nil, fmt.Errorf("scan role transition: %w", err)
		}
		transitions = append(transitions, t)
	}
	return transitions, rows.Err()
}

// PermissionsForRole returns the action permission keys granted to a role.
// Loaded once at login and carried in the session.
func (s *WorkflowStore) PermissionsForRole(roleKey string) ([]string, error) {
	rows, err := s.db.Query(`SELECT permission FROM role_permissions WHERE role_key = $1`, roleKey)
	if err != nil {
		return nil, fmt.Errorf("list role permissions: %w", err)
	}
	defer rows.Close()

	var perms []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan role permission: %w", err)
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}

// HistoryForItem returns the audit trail of one order item, oldest first.
func (s *WorkflowStore) HistoryForItem(itemID int64) ([]models.ItemStatusHistory, error) {
	rows, err := s.db.Query(`
		SELECT id, order_item_id, order_id, from_status_id, to_status_id,
		       changed_by, tracking_number, note, changed_at
		FROM order_item_status_history
		WHERE order_item_id = $1
		ORDER BY changed_at, id
	`, itemID)
	if err != nil {
		return nil, fmt.Errorf("list item status history: %w", err)
	}
	defer rows.Close()

	var history []models.ItemStatusHistory
	for rows.Next() {
		var h models.ItemStatusHistory
		if err := rows.Scan(
			&h.ID, &h.OrderItemID, &h.OrderID, &h.FromStatusID, &h.ToStatusID,
			&h.ChangedBy, &h.TrackingNumber, &h.Note, &h.ChangedAt,
		); err != nil {
			return nil, fmt.Errorf("scan item status history: %w", err)
		}
		history = append(history, h)
	}
	return history, rows.Err()
}
