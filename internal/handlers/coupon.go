// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"shopadmin/internal/apperr"
	"shopadmin/internal/models"
	"shopadmin/internal/store"
)

// Coupon groups the coupon HTTP handlers.
type Coupon struct {
	store *store.CouponStore
}

// NewCoupon creates a new Coupon handler group.
func NewCoupon(couponStore *store.CouponStore) *Coupon {
	return &Coupon{store: couponStore}
}

// List returns every coupon with its usage counts grouped by status.
func (h *Coupon) List(w http.ResponseWriter, r *http.Request) {
	coupons, err := h.store.ListWithUsage()
	if err != nil {
		writeError(w, err)
		return
	}
	if coupons == nil {
		coupons = []models.CouponWithUsage{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"coupons": coupons, "total": len(coupons)})
}

type couponRequest struct {
	Code         string     `json:"code"`
	Discount     float64    `json:"discount"`
	IsPercentage bool       `json:"is_percentage"`
	CouponType   string     `json:"coupon_type"`
	ValidFrom    *time.Time `json:"valid_from"`
	ValidUntil   *time.Time `json:"valid_until"`
	Active       bool       `json:"active"`
	SingleUse    bool       `json:"single_use"`
}

// validate checks the coupon fields shared by create and update.
func (req *couponRequest) validate() error {
	req.Code = strings.TrimSpace(req.Code)
	if req.Code == "" {
		return fmt.Errorf("%w: code is required", apperr.ErrInvalidInput)
	}
	if req.Discount < 0 {
		return fmt.Errorf("%w: discount cannot be negative", apperr.ErrInvalidInput)
	}
	if req.IsPercentage && req.Discount > 100 {
		return fmt.Errorf("%w: percentage discount cannot exceed 100", apperr.ErrInvalidInput)
	}
	if req.ValidFrom != nil && req.ValidUntil != nil && req.ValidUntil.Before(*req.ValidFrom) {
		return fmt.Errorf("%w: valid_until precedes valid_from", apperr.ErrInvalidInput)
	}
	if req.CouponType == "" {
		req.CouponType = "general"
	}
	return nil
}

// Create inserts a new coupon. Duplicate codes come back as 409.
func (h *Coupon) Create(w http.ResponseWriter, r *http.Request) {
	var req couponRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, err)
		return
	}

	created, err := h.store.Create(&models.Coupon{
		Code:         req.Code,
		Discount:     req.Discount,
		IsPercentage: req.IsPercentage,
		CouponType:   req.CouponType,
		ValidFrom:    req.ValidFrom,
		ValidUntil:   req.ValidUntil,
		Active:       req.Active,
		SingleUse:    req.SingleUse,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// Update modifies an existing coupon.
func (h *Coupon) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, fmt.Errorf("%w: invalid coupon id", apperr.ErrInvalidInput))
		return
	}

	var req couponRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, err)
		return
	}

	existing, err := h.store.FindByID(id)
	if err != nil {
		writeError(w, err)
		return
	}
	if existing == nil {
		writeError(w, fmt.Errorf("%w: coupon %d", apperr.ErrNotFound, id))
		return
	}

	existing.Code = req.Code
	existing.Discount = req.Discount
	existing.IsPercentage = req.IsPercentage
	existing.CouponType = req.CouponType
	existing.ValidFrom = req.ValidFrom
	existing.ValidUntil = req.ValidUntil
	existing.Active = req.Active
	existing.SingleUse = req.SingleUse

	if err := h.store.Update(existing); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, existing)
}
