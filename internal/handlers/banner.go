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

// Banner groups the storefront banner HTTP handlers.
type Banner struct {
	store *store.BannerStore
}

// NewBanner creates a new Banner handler group.
func NewBanner(bannerStore *store.BannerStore) *Banner {
	return &Banner{store: bannerStore}
}

// List returns all banners ordered by position.
func (h *Banner) List(w http.ResponseWriter, r *http.Request) {
	banners, err := h.store.List()
	if err != nil {
		writeError(w, err)
		return
	}
	if banners == nil {
		banners = []models.Banner{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"banners": banners})
}

type bannerRequest struct {
	Title    string     `json:"title"`
	ImageURL string     `json:"image_url"`
	LinkURL  string     `json:"link_url"`
	Position int        `json:"position"`
	Active   bool       `json:"active"`
	StartsAt *time.Time `json:"starts_at"`
	EndsAt   *time.Time `json:"ends_at"`
}

func (req *bannerRequest) validate() error {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return fmt.Errorf("%w: title is required", apperr.ErrInvalidInput)
	}
	if req.StartsAt != nil && req.EndsAt != nil && req.EndsAt.Before(*req.StartsAt) {
		return fmt.Errorf("%w: ends_at precedes starts_at", apperr.ErrInvalidInput)
	}
	return nil
}

// Create inserts a new banner.
func (h *Banner) Create(w http.ResponseWriter, r *http.Request) {
	var req bannerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, err)
		return
	}

	created, err := h.store.Create(&models.Banner{
		Title:    req.Title,
		ImageURL: req.ImageURL,
		LinkURL:  req.LinkURL,
		Position: req.Position,
		Active:   req.Active,
		StartsAt: req.StartsAt,
		EndsAt:   req.EndsAt,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// Update modifies an existing banner.
func (h *Banner) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, fmt.Errorf("%w: invalid banner id", apperr.ErrInvalidInput))
		return
	}

	var req bannerRequest
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
		writeError(w, fmt.Errorf("%w: banner %d", apperr.ErrNotFound, id))
		return
	}

	existing.Title = req.Title
	existing.ImageURL = req.ImageURL
	existing.LinkURL = req.LinkURL
	existing.Position = req.Position
	existing.Active = req.Active
	existing.StartsAt = req.StartsAt
	existing.EndsAt = req.EndsAt

	if err := h.store.Update(existing); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, existing)
}

// Delete removes a banner.
func (h *Banner) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, fmt.Errorf("%w: invalid banner id", apperr.ErrInvalidInput))
		return
	}

	if err := h.store.Delete(id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
