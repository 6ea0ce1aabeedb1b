// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// ShippingMethod is how an order or an individual line item travels.
// Items carry "air" or "sea"; the order-level value is derived and may be
// "both" when active items mix methods.
type ShippingMethod string

const (
	ShippingAir  ShippingMethod = "air"
	ShippingSea  ShippingMethod = "sea"
	ShippingBoth ShippingMethod = "both"
)

// Valid reports whether m is an item-level shipping method. "both" is only
// ever derived at the order level and is rejected as input.
func (m ShippingMethod) Valid() bool {
	return m == ShippingAir || m == ShippingSea
}

// ShippingStatus tracks payment of the shipping charge.
// It only moves forward: 0→1 by admin action, 1→2 by the payment callback.
type ShippingStatus int

const (
	ShippingPending    ShippingStatus = 0
	ShippingReadyToPay ShippingStatus = 1
	ShippingPaid       ShippingStatus = 2
)

// Order is a customer order. Total is always recomputed from the identity
// Total = Subtotal + ShippingAmount + TaxAmount - DiscountAmount, never
// edited independently. Status is the legacy numeric order status, kept in
// sync with item workflow statuses by the cascade.
type Order struct {
	ID             int64          `json:"id"`
	Subtotal       float64        `json:"subtotal"`
	DiscountAmount float64        `json:"discount_amount"`
	TaxAmount      float64        `json:"tax_amount"`
	ShippingAmount float64        `json:"shipping_amount"`
	Total          float64        `json:"total"`
	Status         int            `json:"status"`
	ShippingMethod ShippingMethod `json:"shipping_method"`
	ShippingStatus ShippingStatus `json:"shipping_status"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// ComputeTotal applies the order total identity.
func (o *Order) ComputeTotal() {
	o.Total = o.Subtotal + o.ShippingAmount + o.TaxAmount - o.DiscountAmount
}

// OrderItem is a single order line (order_products row), owned exclusively
// by its order. WorkflowStatusID references the data-driven workflow state;
// LegacyStatus is the old numeric status mirrored only for the two terminal
// outcomes (cancelled=5, refunded=6).
type OrderItem struct {
	ID               int64          `json:"id"`
	OrderID          int64          `json:"order_id"`
	ProductID        int64          `json:"product_id"`
	ProductName      string         `json:"product_name"`
	Quantity         int            `json:"quantity"`
	ShippingMethod   ShippingMethod `json:"shipping_method"`
	Shipping         float64        `json:"shipping"`
	TrackingNumber   *string        `json:"tracking_number"`
	WorkflowStatusID *int64         `json:"workflow_status_id"`
	LegacyStatus     int            `json:"status"`
	UpdatedBy        *uuid.UUID     `json:"updated_by"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`

	// Populated on reads that join workflow_statuses.
	WorkflowStatusKey string `json:"workflow_status_key,omitempty"`
}

// OrderTrackingEntry is an order-level tracking record written when the
// cascade advances the order status to match its items.
type OrderTrackingEntry struct {
	ID        int64     `json:"id"`
	OrderID   int64     `json:"order_id"`
	Status    int       `json:"status"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"created_at"`
}
