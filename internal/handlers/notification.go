// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"shopadmin/internal/apperr"
	"shopadmin/internal/models"
	"shopadmin/internal/store"
)

// Notification groups the customer announcement HTTP handlers.
type Notification struct {
	store *store.NotificationStore
}

// NewNotification creates a new Notification handler group.
func NewNotification(notificationStore *store.NotificationStore) *Notification {
	return &Notification{store: notificationStore}
}

// List returns all notifications, newest first.
func (h *Notification) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.List()
	if err != nil {
		writeError(w, err)
		return
	}
	if items == nil {
		items = []models.Notification{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifications": items})
}

type notificationRequest struct {
	Title    string `json:"title"`
	Body     string `json:"body"`
	Audience string `json:"audience"`
}

// Create inserts a new unpublished notification.
func (h *Notification) Create(w http.ResponseWriter, r *http.Request) {
	var req notificationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeError(w, fmt.Errorf("%w: title is required", apperr.ErrInvalidInput))
		return
	}
	if req.Audience == "" {
		req.Audience = "all"
	}

	created, err := h.store.Create(&models.Notification{
		Title:    req.Title,
		Body:     req.Body,
		Audience: req.Audience,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// Publish marks a notification published; delivery runs out of band.
func (h *Notification) Publish(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, fmt.Errorf("%w: invalid notification id", apperr.ErrInvalidInput))
		return
	}

	ok, err := h.store.Publish(id)
	if err != nil {
		writeError(w, err)
		return
	}
	if !ok {
		writeError(w, fmt.Errorf("%w: notification %d", apperr.ErrNotFound, id))
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
