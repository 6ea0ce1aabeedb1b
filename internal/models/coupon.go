// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// UsageStatus is the lifecycle state of a single coupon claim.
type UsageStatus string

const (
	UsageClaimed  UsageStatus = "claimed"
	UsageLocked   UsageStatus = "locked"
	UsageRedeemed UsageStatus = "redeemed"
)

// Coupon is a discount code. Discount is either an absolute amount or a
// percentage depending on IsPercentage.
type Coupon struct {
	ID           int64      `json:"id"`
	Code         string     `json:"code"`
	Discount     float64    `json:"discount"`
	IsPercentage bool       `json:"is_percentage"`
	CouponType   string     `json:"coupon_type"`
	ValidFrom    *time.Time `json:"valid_from"`
	ValidUntil   *time.Time `json:"valid_until"`
	Active       bool       `json:"active"`
	SingleUse    bool       `json:"single_use"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// CouponUsage records one user's claim of a coupon.
type CouponUsage struct {
	ID        int64       `json:"id"`
	CouponID  int64       `json:"coupon_id"`
	UserID    int64       `json:"user_id"`
	OrderID   *int64      `json:"order_id"`
	Status    UsageStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
	UsedAt    *time.Time  `json:"used_at"`
}

// CouponWithUsage is the ledger row returned by the coupon listing:
// the coupon plus usage counts aggregated by status in a single grouped
// query. Invariant: TotalUsage == ClaimedCount + LockedCount + RedeemedCount.
type CouponWithUsage struct {
	Coupon
	TotalUsage    int `json:"total_usage"`
	ClaimedCount  int `json:"claimed_count"`
	LockedCount   int `json:"locked_count"`
	RedeemedCount int `json:"redeemed_count"`
}
