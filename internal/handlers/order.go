// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"shopadmin/internal/apperr"
	"shopadmin/internal/middleware"
	"shopadmin/internal/models"
	"shopadmin/internal/shipping"
	"shopadmin/internal/store"
	"shopadmin/internal/workflow"
)

// Order groups the order and order item workflow HTTP handlers.
type Order struct {
	orders    *store.OrderStore
	workflows *store.WorkflowStore
	engine    *workflow.Engine
	estimator *shipping.Client
}

// NewOrder creates a new Order handler group.
func NewOrder(orders *store.OrderStore, workflows *store.WorkflowStore, engine *workflow.Engine, estimator *shipping.Client) *Order {
	return &Order{
		orders:    orders,
		workflows: workflows,
		engine:    engine,
		estimator: estimator,
	}
}

// actorFromCtx builds the workflow actor from the request session. The
// router guarantees a session on these routes; the nil check is a
// safety net for misconfigured wiring.
func actorFromCtx(r *http.Request) (workflow.Actor, error) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		return workflow.Actor{}, fmt.Errorf("%w: authentication required", apperr.ErrUnauthorized)
	}
	return workflow.Actor{
		UserID:      sess.UserID,
		RoleKey:     sess.RoleKey,
		Permissions: sess.Permissions,
	}, nil
}

// urlID parses the named int64 URL parameter.
func urlID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s", apperr.ErrInvalidInput, name)
	}
	return id, nil
}

// List returns a page of orders, optionally filtered by legacy status.
func (h *Order) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	var status *int
	if raw := r.URL.Query().Get("status"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, fmt.Errorf("%w: invalid status filter", apperr.ErrInvalidInput))
			return
		}
		status = &v
	}

	orders, total, err := h.orders.List(page, perPage, status)
	if err != nil {
		writeError(w, err)
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": orders, "total": total})
}

// Detail returns one order with its line items and cascade tracking
// entries.
func (h *Order) Detail(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	order, err := h.orders.FindByID(id)
	if err != nil {
		writeError(w, err)
		return
	}
	if order == nil {
		writeError(w, fmt.Errorf("%w: order %d", apperr.ErrNotFound, id))
		return
	}

	items, err := h.orders.ItemsByOrder(id)
	if err != nil {
		writeError(w, err)
		return
	}
	tracking, err := h.orders.TrackingForOrder(id)
	if err != nil {
		writeError(w, err)
		return
	}

	if items == nil {
		items = []models.OrderItem{}
	}
	if tracking == nil {
		tracking = []models.OrderTrackingEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"order":    order,
		"items":    items,
		"tracking": tracking,
	})
}

// ItemWorkflow returns the transitions the caller's role may take on the
// item, plus its audit trail. The allowed set is advisory — the PUT
// handler re-derives it.
func (h *Order) ItemWorkflow(w http.ResponseWriter, r *http.Request) {
	itemID, err := urlID(r, "itemID")
	if err != nil {
		writeError(w, err)
		return
	}
	actor, err := actorFromCtx(r)
	if err != nil {
		writeError(w, err)
		return
	}

	transitions, err := h.engine.AllowedTransitions(actor, itemID)
	if err != nil {
		writeError(w, err)
		return
	}
	history, err := h.workflows.HistoryForItem(itemID)
	if err != nil {
		writeError(w, err)
		return
	}
	if history == nil {
		history = []models.ItemStatusHistory{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"item_id":             itemID,
		"allowed_transitions": transitions,
		"history":             history,
	})
}

type transitionRequest struct {
	ToStatusKey    string  `json:"to_status_key"`
	TrackingNumber *string `json:"tracking_number"`
	Note           *string `json:"note"`
}

// ItemTransition applies a workflow transition to one order item.
func (h *Order) ItemTransition(w http.ResponseWriter, r *http.Request) {
	itemID, err := urlID(r, "itemID")
	if err != nil {
		writeError(w, err)
		return
	}
	actor, err := actorFromCtx(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req transitionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.ToStatusKey == "" {
		writeError(w, fmt.Errorf("%w: to_status_key is required", apperr.ErrInvalidInput))
		return
	}

	result, err := h.engine.Transition(actor, itemID, req.ToStatusKey, req.TrackingNumber, req.Note)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":              true,
		"item":                 result.Item,
		"order_status_changed": result.OrderStatusChanged,
		"order_new_status":     result.OrderNewStatus,
	})
}

type itemFieldsRequest struct {
	ItemID            int64                  `json:"item_id"`
	WorkflowStatusKey *string                `json:"workflow_status_key"`
	TrackingNumber    *string                `json:"tracking_number"`
	ShippingMethod    *models.ShippingMethod `json:"shipping_method"`
	Shipping          *float64               `json:"shipping"`
	Quantity          *int                   `json:"quantity"`
}

// UpdateItems edits raw fields of one line item and returns the order
// aggregates recomputed from the edit.
func (h *Order) UpdateItems(w http.ResponseWriter, r *http.Request) {
	orderID, err := urlID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	actor, err := actorFromCtx(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req itemFieldsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.ItemID <= 0 {
		writeError(w, fmt.Errorf("%w: item_id is required", apperr.ErrInvalidInput))
		return
	}

	result, err := h.engine.UpdateItemFields(actor, orderID, workflow.ItemFieldsRequest{
		ItemID:            req.ItemID,
		TrackingNumber:    req.TrackingNumber,
		ShippingMethod:    req.ShippingMethod,
		Shipping:          req.Shipping,
		Quantity:          req.Quantity,
		WorkflowStatusKey: req.WorkflowStatusKey,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":               true,
		"item":                  result.Item,
		"updated_fields":        result.UpdatedFields,
		"order_status_updated":  result.OrderStatusUpdated,
		"order_shipping_amount": result.OrderShippingAmount,
		"order_shipping_method": result.OrderShippingMethod,
		"order_total":           result.OrderTotal,
	})
}

// AdvanceShippingStatus marks the order's shipping charge ready to pay
// (0 to 1). The payment callback owns the 1 to 2 step.
func (h *Order) AdvanceShippingStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := urlID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	ok, err := h.orders.AdvanceShippingStatus(orderID, models.ShippingReadyToPay)
	if err != nil {
		writeError(w, err)
		return
	}
	if !ok {
		writeError(w, fmt.Errorf("%w: order %d is not awaiting shipping payment", apperr.ErrInvalidInput, orderID))
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type paymentCallbackRequest struct {
	OrderID int64 `json:"order_id"`
}

// PaymentCallback marks the shipping charge paid (1 to 2). The step never
// reverses; a repeat or out-of-order callback is rejected.
func (h *Order) PaymentCallback(w http.ResponseWriter, r *http.Request) {
	var req paymentCallbackRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.OrderID <= 0 {
		writeError(w, fmt.Errorf("%w: order_id is required", apperr.ErrInvalidInput))
		return
	}

	ok, err := h.orders.AdvanceShippingStatus(req.OrderID, models.ShippingPaid)
	if err != nil {
		writeError(w, err)
		return
	}
	if !ok {
		writeError(w, fmt.Errorf("%w: order %d shipping is not ready to pay", apperr.ErrInvalidInput, req.OrderID))
		return
	}

	slog.Info("shipping payment confirmed", "order_id", req.OrderID)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type estimateRequest struct {
	Method *models.ShippingMethod `json:"method"`
}

// EstimateShipping asks the external calculator for the shipping cost of
// the order's items. The call is best-effort: failures are logged and
// reported as a null estimate, never as an error.
func (h *Order) EstimateShipping(w http.ResponseWriter, r *http.Request) {
	orderID, err := urlID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	order, err := h.orders.FindByID(orderID)
	if err != nil {
		writeError(w, err)
		return
	}
	if order == nil {
		writeError(w, fmt.Errorf("%w: order %d", apperr.ErrNotFound, orderID))
		return
	}

	var req estimateRequest
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
	}
	method := order.ShippingMethod
	if req.Method != nil {
		if !req.Method.Valid() {
			writeError(w, fmt.Errorf("%w: shipping method %q", apperr.ErrInvalidInput, *req.Method))
			return
		}
		method = *req.Method
	}

	items, err := h.orders.ItemsByOrder(orderID)
	if err != nil {
		writeError(w, err)
		return
	}
	payload := make([]shipping.Item, 0, len(items))
	for _, it := range items {
		payload = append(payload, shipping.Item{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	cost, err := h.estimator.Estimate(r.Context(), payload, method)
	if err != nil {
		slog.Warn("shipping estimate unavailable", "order_id", orderID, "error", err)
		writeJSON(w, http.StatusOK, map[string]any{"estimate": nil})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"estimate": map[string]any{"total_shipping_cost": cost, "method": method},
	})
}
