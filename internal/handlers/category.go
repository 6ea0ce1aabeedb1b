// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	"shopadmin/internal/apperr"
	"shopadmin/internal/category"
	"shopadmin/internal/models"
	"shopadmin/internal/store"
)

const maxCategoryNameLen = 200

// Category groups the catalog category HTTP handlers. Reads are served
// from the engine's caches; every mutation invalidates them.
type Category struct {
	engine *category.Engine
	store  *store.CategoryStore
}

// NewCategory creates a new Category handler group.
func NewCategory(engine *category.Engine, categoryStore *store.CategoryStore) *Category {
	return &Category{engine: engine, store: categoryStore}
}

// List returns the flat category listing from the listing cache.
func (h *Category) List(w http.ResponseWriter, r *http.Request) {
	cats, err := h.engine.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if cats == nil {
		cats = []models.Category{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": cats, "total": len(cats)})
}

// Tree returns the full category tree snapshot with the excluded-set
// closure annotated.
func (h *Category) Tree(w http.ResponseWriter, r *http.Request) {
	tree, err := h.engine.Tree(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tree)
}

type reorderRequest struct {
	CategoryID  int64 `json:"categoryId"`
	NewParentID int64 `json:"newParentId"` // 0 means root
	NewOrder    int   `json:"newOrder"`
}

// Reorder moves a category to a new position and possibly a new parent.
func (h *Category) Reorder(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.CategoryID <= 0 {
		writeError(w, fmt.Errorf("%w: categoryId is required", apperr.ErrInvalidInput))
		return
	}
	if req.NewOrder < 0 {
		writeError(w, fmt.Errorf("%w: newOrder cannot be negative", apperr.ErrInvalidInput))
		return
	}

	if err := h.engine.Reorder(r.Context(), req.CategoryID, req.NewParentID, req.NewOrder); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type categoryRequest struct {
	Name     string `json:"name"`
	NameEn   string `json:"name_en"`
	ParentID *int64 `json:"parent_id"`
	Display  bool   `json:"display"`
	Excluded *bool  `json:"excluded"`
}

// validateCategoryName checks the shared name constraints.
func validateCategoryName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: name is required", apperr.ErrInvalidInput)
	}
	if utf8.RuneCountInString(name) > maxCategoryNameLen {
		return fmt.Errorf("%w: name is too long (max %d characters)", apperr.ErrInvalidInput, maxCategoryNameLen)
	}
	return nil
}

// Create inserts a new category under the requested parent, placed after
// the parent's existing children.
func (h *Category) Create(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := validateCategoryName(req.Name); err != nil {
		writeError(w, err)
		return
	}

	level := 0
	if req.ParentID != nil {
		parent, err := h.store.FindByID(*req.ParentID)
		if err != nil {
			writeError(w, err)
			return
		}
		if parent == nil {
			writeError(w, fmt.Errorf("%w: parent category %d", apperr.ErrNotFound, *req.ParentID))
			return
		}
		level = parent.Level + 1
	}

	created, err := h.store.Create(&models.Category{
		Name:     strings.TrimSpace(req.Name),
		NameEn:   strings.TrimSpace(req.NameEn),
		ParentID: req.ParentID,
		Level:    level,
		Display:  req.Display,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	if req.ParentID != nil {
		if err := h.store.SetHasChildren(*req.ParentID, true); err != nil {
			writeError(w, err)
			return
		}
	}

	h.engine.Invalidate()
	writeJSON(w, http.StatusCreated, created)
}

// Update edits a category's name, display flag and exclusion-set
// membership. Placement changes go through Reorder only.
func (h *Category) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, fmt.Errorf("%w: invalid category id", apperr.ErrInvalidInput))
		return
	}

	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := validateCategoryName(req.Name); err != nil {
		writeError(w, err)
		return
	}

	cat, err := h.store.FindByID(id)
	if err != nil {
		writeError(w, err)
		return
	}
	if cat == nil {
		writeError(w, fmt.Errorf("%w: category %d", apperr.ErrNotFound, id))
		return
	}

	cat.Name = strings.TrimSpace(req.Name)
	cat.NameEn = strings.TrimSpace(req.NameEn)
	cat.Display = req.Display
	if err := h.store.Update(cat); err != nil {
		writeError(w, err)
		return
	}

	if req.Excluded != nil {
		if err := h.store.SetExcluded(id, *req.Excluded); err != nil {
			writeError(w, err)
			return
		}
	}

	h.engine.Invalidate()
	writeJSON(w, http.StatusOK, cat)
}
