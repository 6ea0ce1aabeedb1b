// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Conventional terminal status keys. These are the only two keys the
// workflow engine knows by name: they gate extra permissions, mirror into
// the legacy numeric status, and are excluded from the cascade agreement
// check. Everything else about the graph is data-driven.
const (
	StatusKeyCancelled = "cancelled"
	StatusKeyRefunded  = "refunded"
)

// Legacy numeric order statuses mirrored for terminal workflow outcomes.
const (
	LegacyStatusCancelled = 5
	LegacyStatusRefunded  = 6
)

// WorkflowStatus is a named state in the order-item fulfillment lifecycle.
// Read-mostly reference data; StatusOrder maps to the legacy numeric order
// status used by older parts of the shop.
type WorkflowStatus struct {
	ID          int64  `json:"id"`
	StatusKey   string `json:"status_key"`
	StatusLabel string `json:"status_label"`
	StatusOrder int    `json:"status_order"`
	IsTerminal  bool   `json:"is_terminal"`
}

// Transition is one reachable edge of the workflow graph for a specific
// role and current status. Produced per request by the permission resolver,
// never persisted.
type Transition struct {
	FromStatusID     int64  `json:"from_status_id"`
	ToStatusID       int64  `json:"to_status_id"`
	ToStatusKey      string `json:"to_status_key"`
	RequiresTracking bool   `json:"requires_tracking"`
}

// ItemStatusHistory is the append-only audit record written exactly once
// per successful transition. Never mutated or deleted.
type ItemStatusHistory struct {
	ID             int64     `json:"id"`
	OrderItemID    int64     `json:"order_item_id"`
	OrderID        int64     `json:"order_id"`
	FromStatusID   *int64    `json:"from_status_id"`
	ToStatusID     int64     `json:"to_status_id"`
	ChangedBy      uuid.UUID `json:"changed_by"`
	TrackingNumber *string   `json:"tracking_number"`
	Note           *string   `json:"note"`
	ChangedAt      time.Time `json:"changed_at"`
}
