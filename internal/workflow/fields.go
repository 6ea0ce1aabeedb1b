// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package workflow

import (
	"fmt"
	"strings"

	"shopadmin/internal/apperr"
	"shopadmin/internal/models"
	"shopadmin/internal/store"
)

// ItemFieldsRequest is a raw field edit on one order line item. Nil fields
// are left unchanged; a supplied but empty TrackingNumber clears the
// stored value. This path bypasses the permission-gated transition graph
// entirely — it is a field editor, not a workflow transition — but a
// workflow key edit made through it still triggers the same-status cascade.
type ItemFieldsRequest struct {
	ItemID            int64
	TrackingNumber    *string
	ShippingMethod    *models.ShippingMethod
	Shipping          *float64
	Quantity          *int
	WorkflowStatusKey *string
}

// ItemFieldsResult reports the edit and the order-level recomputations it
// triggered.
type ItemFieldsResult struct {
	Item                *models.OrderItem     `json:"item"`
	UpdatedFields       []string              `json:"updated_fields"`
	OrderStatusUpdated  bool                  `json:"order_status_updated"`
	OrderShippingAmount float64               `json:"order_shipping_amount"`
	OrderShippingMethod models.ShippingMethod `json:"order_shipping_method"`
	OrderTotal          float64               `json:"order_total"`
}

// UpdateItemFields edits an item's raw fields and recomputes the dependent
// order aggregates: the shipping total (and with it the order total), the
// derived order shipping method, and — when the workflow key was edited —
// the same-status cascade.
func (e *Engine) UpdateItemFields(actor Actor, orderID int64, req ItemFieldsRequest) (*ItemFieldsResult, error) {
	order, err := e.orders.FindByID(orderID)
	if err != nil {
		return nil, fmt.Errorf("update item fields: %w", err)
	}
	if order == nil {
		return nil, fmt.Errorf("%w: order %d", apperr.ErrNotFound, orderID)
	}

	item, err := e.orders.ItemByID(req.ItemID)
	if err != nil {
		return nil, fmt.Errorf("update item fields: %w", err)
	}
	if item == nil || item.OrderID != orderID {
		return nil, fmt.Errorf("%w: order item %d in order %d", apperr.ErrNotFound, req.ItemID, orderID)
	}

	if req.ShippingMethod != nil && !req.ShippingMethod.Valid() {
		return nil, fmt.Errorf("%w: shipping method %q", apperr.ErrInvalidInput, *req.ShippingMethod)
	}
	if req.Quantity != nil && *req.Quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be positive", apperr.ErrInvalidInput)
	}
	if req.Shipping != nil && *req.Shipping < 0 {
		return nil, fmt.Errorf("%w: shipping cost cannot be negative", apperr.ErrInvalidInput)
	}

	update := store.ItemFieldsUpdate{
		ItemID:         item.ID,
		OrderID:        orderID,
		ShippingMethod: req.ShippingMethod,
		Shipping:       req.Shipping,
		Quantity:       req.Quantity,
		UpdatedBy:      actor.UserID,
	}

	var updated []string
	if req.TrackingNumber != nil {
		if trimmed := strings.TrimSpace(*req.TrackingNumber); trimmed == "" {
			update.ClearTracking = true
		} else {
			update.TrackingNumber = &trimmed
		}
		updated = append(updated, "tracking_number")
	}
	if req.ShippingMethod != nil {
		updated = append(updated, "shipping_method")
	}
	if req.Shipping != nil {
		updated = append(updated, "shipping")
		update.RecomputeShipping = true
	}
	if req.Quantity != nil {
		updated = append(updated, "quantity")
	}

	newKey := ""
	if req.WorkflowStatusKey != nil {
		status, err := e.statuses.StatusByKey(*req.WorkflowStatusKey)
		if err != nil {
			return nil, fmt.Errorf("update item fields: %w", err)
		}
		if status == nil {
			return nil, fmt.Errorf("%w: unknown workflow status %q", apperr.ErrInvalidInput, *req.WorkflowStatusKey)
		}
		update.WorkflowStatusID = &status.ID
		newKey = status.StatusKey
		updated = append(updated, "workflow_status")
	}

	if len(updated) == 0 {
		return nil, fmt.Errorf("%w: no fields to update", apperr.ErrInvalidInput)
	}

	items, err := e.orders.ItemsByOrder(orderID)
	if err != nil {
		return nil, fmt.Errorf("update item fields: %w", err)
	}

	if req.ShippingMethod != nil {
		method := deriveShippingMethod(items, item.ID, *req.ShippingMethod)
		update.OrderShippingMethod = &method
	}

	if update.WorkflowStatusID != nil {
		orderStatus, orderNote, err := e.deriveOrderStatus(orderID, item.ID, *update.WorkflowStatusID, newKey)
		if err != nil {
			return nil, fmt.Errorf("update item fields: %w", err)
		}
		update.OrderStatus = orderStatus
		update.OrderNote = orderNote
	}

	if err := e.orders.ApplyItemFields(update); err != nil {
		return nil, err
	}

	reloadedItem, err := e.orders.ItemByID(item.ID)
	if err != nil {
		return nil, fmt.Errorf("update item fields reload: %w", err)
	}
	reloadedOrder, err := e.orders.FindByID(orderID)
	if err != nil {
		return nil, fmt.Errorf("update item fields reload: %w", err)
	}

	return &ItemFieldsResult{
		Item:                reloadedItem,
		UpdatedFields:       updated,
		OrderStatusUpdated:  update.OrderStatus != nil,
		OrderShippingAmount: reloadedOrder.ShippingAmount,
		OrderShippingMethod: reloadedOrder.ShippingMethod,
		OrderTotal:          reloadedOrder.Total,
	}, nil
}

// deriveShippingMethod computes the order-level shipping method from the
// items as they will look after changedItemID switches to newMethod.
// Cancelled items are ignored; "both" when active items mix air and sea,
// otherwise whichever single method is present, defaulting to air.
func deriveShippingMethod(items []models.OrderItem, changedItemID int64, newMethod models.ShippingMethod) models.ShippingMethod {
	var air, sea bool
	for _, it := range items {
		if it.WorkflowStatusKey == models.StatusKeyCancelled {
			continue
		}
		method := it.ShippingMethod
		if it.ID == changedItemID {
			method = newMethod
		}
		switch method {
		case models.ShippingAir:
			air = true
		case models.ShippingSea:
			sea = true
		}
	}
	switch {
	case air && sea:
		return models.ShippingBoth
	case sea:
		return models.ShippingSea
	default:
		return models.ShippingAir
	}
}
