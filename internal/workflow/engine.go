// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package workflow implements the order item workflow engine: a
// permission-scoped state machine over order line items. Transitions are
// resolved per role from reference data; the engine validates, applies the
// item change with its audit record, and cascades agreement among a
// order's non-terminal items up to the order-level status.
package workflow

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"shopadmin/internal/apperr"
	"shopadmin/internal/models"
	"shopadmin/internal/store"
)

// Actor is the authenticated caller, as carried by the session.
type Actor struct {
	UserID      uuid.UUID
	RoleKey     string
	Permissions []string
}

// OrderData is the order persistence capability the engine needs.
// Satisfied by store.OrderStore; tests supply a fake.
type OrderData interface {
	FindByID(id int64) (*models.Order, error)
	ItemByID(id int64) (*models.OrderItem, error)
	ItemsByOrder(orderID int64) ([]models.OrderItem, error)
	ApplyTransition(u store.TransitionUpdate) error
	ApplyItemFields(u store.ItemFieldsUpdate) error
}

// StatusData is the workflow reference-data capability the engine needs.
// Satisfied by store.WorkflowStore.
type StatusData interface {
	StatusByID(id int64) (*models.WorkflowStatus, error)
	StatusByKey(key string) (*models.WorkflowStatus, error)
}

// Engine validates and applies order item workflow operations.
type Engine struct {
	orders   OrderData
	statuses StatusData
	resolver Resolver
}

// New creates a workflow engine.
func New(orders OrderData, statuses StatusData, resolver Resolver) *Engine {
	return &Engine{orders: orders, statuses: statuses, resolver: resolver}
}

// AllowedTransitions returns the transitions the actor's role may take on
// the item from its current status. An item with no workflow status
// assigned yet has no outgoing edges.
func (e *Engine) AllowedTransitions(actor Actor, itemID int64) ([]models.Transition, error) {
	item, err := e.orders.ItemByID(itemID)
	if err != nil {
		return nil, fmt.Errorf("allowed transitions: %w", err)
	}
	if item == nil {
		return nil, fmt.Errorf("%w: order item %d", apperr.ErrNotFound, itemID)
	}
	if item.WorkflowStatusID == nil {
		return []models.Transition{}, nil
	}
	return e.resolver.AllowedTransitions(actor.RoleKey, *item.WorkflowStatusID)
}

// TransitionResult is the outcome of a successful transition.
type TransitionResult struct {
	Item               *models.OrderItem
	OrderStatusChanged bool
	OrderNewStatus     *int
}

// Transition moves an order item to toStatusKey on behalf of actor.
//
// The allowed set is re-derived server-side on every call — a transition
// list the client fetched earlier is never trusted. The item update, the
// audit record and any order-level cascade commit atomically.
func (e *Engine) Transition(actor Actor, itemID int64, toStatusKey string, trackingNumber, note *string) (*TransitionResult, error) {
	if !e.resolver.HasPermission(actor.Permissions, models.PermItemStatusChange) {
		return nil, fmt.Errorf("%w: %s", apperr.ErrForbidden, models.PermItemStatusChange)
	}
	switch toStatusKey {
	case models.StatusKeyCancelled:
		if !e.resolver.HasPermission(actor.Permissions, models.PermItemCancel) {
			return nil, fmt.Errorf("%w: %s", apperr.ErrForbidden, models.PermItemCancel)
		}
	case models.StatusKeyRefunded:
		if !e.resolver.HasPermission(actor.Permissions, models.PermItemRefund) {
			return nil, fmt.Errorf("%w: %s", apperr.ErrForbidden, models.PermItemRefund)
		}
	}

	item, err := e.orders.ItemByID(itemID)
	if err != nil {
		return nil, fmt.Errorf("transition: %w", err)
	}
	if item == nil {
		return nil, fmt.Errorf("%w: order item %d", apperr.ErrNotFound, itemID)
	}
	if item.WorkflowStatusID == nil {
		return nil, fmt.Errorf("%w: order item %d has no workflow status assigned", apperr.ErrInvalidInput, itemID)
	}

	allowed, err := e.resolver.AllowedTransitions(actor.RoleKey, *item.WorkflowStatusID)
	if err != nil {
		return nil, fmt.Errorf("transition: %w", err)
	}
	var matched *models.Transition
	for i := range allowed {
		if allowed[i].ToStatusKey == toStatusKey {
			matched = &allowed[i]
			break
		}
	}
	if matched == nil {
		return nil, fmt.Errorf("%w: %q from status %d for role %q",
			apperr.ErrTransitionNotAllowed, toStatusKey, *item.WorkflowStatusID, actor.RoleKey)
	}

	tracking := normalize(trackingNumber)
	if matched.RequiresTracking && tracking == nil && normalize(item.TrackingNumber) == nil {
		return nil, fmt.Errorf("%w: transition to %q", apperr.ErrTrackingNumberRequired, toStatusKey)
	}

	// Mirror the legacy numeric status for the two terminal outcomes only,
	// so both systems of record agree on cancellations and refunds.
	var legacy *int
	switch toStatusKey {
	case models.StatusKeyCancelled:
		v := models.LegacyStatusCancelled
		legacy = &v
	case models.StatusKeyRefunded:
		v := models.LegacyStatusRefunded
		legacy = &v
	}

	snapshot := tracking
	if snapshot == nil {
		snapshot = normalize(item.TrackingNumber)
	}

	orderStatus, orderNote, err := e.deriveOrderStatus(item.OrderID, item.ID, matched.ToStatusID, toStatusKey)
	if err != nil {
		return nil, fmt.Errorf("transition: %w", err)
	}

	err = e.orders.ApplyTransition(store.TransitionUpdate{
		ItemID:           item.ID,
		OrderID:          item.OrderID,
		ToStatusID:       matched.ToStatusID,
		LegacyStatus:     legacy,
		TrackingNumber:   tracking,
		UpdatedBy:        actor.UserID,
		FromStatusID:     item.WorkflowStatusID,
		Note:             note,
		TrackingSnapshot: snapshot,
		OrderStatus:      orderStatus,
		OrderNote:        orderNote,
	})
	if err != nil {
		return nil, err
	}

	updated, err := e.orders.ItemByID(itemID)
	if err != nil {
		return nil, fmt.Errorf("transition reload: %w", err)
	}
	return &TransitionResult{
		Item:               updated,
		OrderStatusChanged: orderStatus != nil,
		OrderNewStatus:     orderStatus,
	}, nil
}

// deriveOrderStatus inspects all items of the order as they will look
// after changedItemID moves to toStatusID, excluding the conventional
// terminal statuses from the agreement check. When every remaining
// non-terminal item shares one status, the order advances to that status's
// legacy order number. When no non-terminal items remain, no cascade
// happens. Returns nil when the order status should not change.
func (e *Engine) deriveOrderStatus(orderID, changedItemID, toStatusID int64, toStatusKey string) (*int, string, error) {
	order, err := e.orders.FindByID(orderID)
	if err != nil {
		return nil, "", err
	}
	if order == nil {
		return nil, "", fmt.Errorf("%w: order %d", apperr.ErrNotFound, orderID)
	}

	items, err := e.orders.ItemsByOrder(orderID)
	if err != nil {
		return nil, "", err
	}

	var shared *int64
	for _, it := range items {
		key := it.WorkflowStatusKey
		statusID := it.WorkflowStatusID
		if it.ID == changedItemID {
			key = toStatusKey
			statusID = &toStatusID
		}
		if key == models.StatusKeyCancelled || key == models.StatusKeyRefunded {
			continue
		}
		if statusID == nil {
			// An item never entered the workflow breaks any agreement.
			return nil, "", nil
		}
		if shared == nil {
			shared = statusID
			continue
		}
		if *shared != *statusID {
			return nil, "", nil
		}
	}
	if shared == nil {
		// All items are terminal; the order status stays as it is.
		return nil, "", nil
	}

	status, err := e.statuses.StatusByID(*shared)
	if err != nil {
		return nil, "", err
	}
	if status == nil {
		return nil, "", fmt.Errorf("%w: workflow status %d", apperr.ErrNotFound, *shared)
	}
	if order.Status == status.StatusOrder {
		return nil, "", nil
	}

	note := fmt.Sprintf("all items reached %s", status.StatusKey)
	result := status.StatusOrder
	return &result, note, nil
}

// normalize trims a tracking number and treats empty as absent.
func normalize(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
