// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"fmt"
	"net/http"
	"net/mail"
	"strings"

	"shopadmin/internal/apperr"
	"shopadmin/internal/models"
	"shopadmin/internal/store"
)

const minPasswordLen = 10

// User groups the CMS user administration handlers.
type User struct {
	store *store.UserStore
}

// NewUser creates a new User handler group.
func NewUser(userStore *store.UserStore) *User {
	return &User{store: userStore}
}

// List returns every back-office user.
func (h *User) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.List()
	if err != nil {
		writeError(w, err)
		return
	}
	if users == nil {
		users = []models.User{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

type createUserRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
	RoleKey     string `json:"role_key"`
}

// Create adds a back-office user. The new user completes 2FA enrollment
// on first login.
func (h *User) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if _, err := mail.ParseAddress(req.Email); err != nil {
		writeError(w, fmt.Errorf("%w: invalid email address", apperr.ErrInvalidInput))
		return
	}
	if len(req.Password) < minPasswordLen {
		writeError(w, fmt.Errorf("%w: password must be at least %d characters", apperr.ErrInvalidInput, minPasswordLen))
		return
	}
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	if req.DisplayName == "" {
		writeError(w, fmt.Errorf("%w: display_name is required", apperr.ErrInvalidInput))
		return
	}
	if req.RoleKey == "" {
		req.RoleKey = "operator"
	}

	user, err := h.store.Create(req.Email, req.Password, req.DisplayName, req.RoleKey)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}
