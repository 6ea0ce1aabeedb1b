// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Action permission keys consumed by the workflow engine and the
// permission-gated routes. Stored per role in role_permissions.
const (
	PermItemStatusChange = "action.orders.item.status.change"
	PermItemCancel       = "action.orders.item.cancel"
	PermItemRefund       = "action.orders.item.refund"
	PermOrderEdit        = "action.orders.edit"
	PermCatalogEdit      = "action.catalog.edit"
	PermCouponEdit       = "action.coupons.edit"
	PermUserManage       = "action.users.manage"
)

// User is a CMS back-office user. RoleKey selects the permission set and
// the role-scoped workflow transition graph.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	DisplayName  string    `json:"display_name"`
	RoleKey      string    `json:"role_key"`
	TOTPSecret   string    `json:"-"`
	TOTPEnabled  bool      `json:"totp_enabled"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
