// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package category implements the catalog tree: a cached, ordered,
// hierarchical view of all categories, and the mutation engine that moves
// categories around while keeping the tree invariants intact (level,
// has_children, sibling order numbers, no cycles).
package category

import (
	"context"
	"fmt"

	"shopadmin/internal/apperr"
	"shopadmin/internal/cache"
	"shopadmin/internal/models"
)

// Store is the persistence capability the engine needs. Implemented by
// store.CategoryStore; tests supply an in-memory fake.
type Store interface {
	All() ([]models.Category, error)
	FindByID(id int64) (*models.Category, error)
	ChildrenOf(parentIDs []int64) ([]models.Category, error)
	ShiftSiblings(parentID *int64, fromOrder int, excludeID int64) error
	SetPlacement(id int64, parentID *int64, level, orderNumber int) error
	SetLevels(ids []int64, level int) error
	SetHasChildren(id int64, hasChildren bool) error
	CountChildren(id int64) (int, error)
	ExcludedIDs() ([]int64, error)
}

// Engine serves the cached category tree and applies reorder/reparent
// mutations. Both caches live for the process lifetime and are reset only
// by explicit invalidation or TTL expiry.
type Engine struct {
	store    Store
	treeMemo *cache.Memo[*models.CategoryTree]
	listMemo *cache.Memo[[]models.Category]
}

// New creates a category engine with 5-minute tree and listing caches.
func New(store Store) *Engine {
	return &Engine{
		store:    store,
		treeMemo: cache.NewMemo[*models.CategoryTree](cache.DefaultMemoTTL),
		listMemo: cache.NewMemo[[]models.Category](cache.DefaultMemoTTL),
	}
}

// Tree returns the full category tree snapshot: every category ordered by
// order_number, annotated with the transitive excluded-set closure.
// Served from cache when younger than the TTL; cold and expired reads
// coalesce into a single rebuild. A failed rebuild surfaces as
// ErrDataUnavailable — stale data is never served.
func (e *Engine) Tree(ctx context.Context) (*models.CategoryTree, error) {
	return e.treeMemo.Get(ctx, func(ctx context.Context) (*models.CategoryTree, error) {
		cats, err := e.store.All()
		if err != nil {
			return nil, fmt.Errorf("%w: load categories: %v", apperr.ErrDataUnavailable, err)
		}
		base, err := e.store.ExcludedIDs()
		if err != nil {
			return nil, fmt.Errorf("%w: load exclusions: %v", apperr.ErrDataUnavailable, err)
		}

		excluded := expandExcluded(cats, base)
		for i := range cats {
			cats[i].IsExcluded = excluded[cats[i].ID]
		}
		return &models.CategoryTree{Categories: cats, Total: len(cats)}, nil
	})
}

// List returns the flat category listing used by the simpler category
// endpoints, cached independently of the tree with the same TTL.
func (e *Engine) List(ctx context.Context) ([]models.Category, error) {
	return e.listMemo.Get(ctx, func(ctx context.Context) ([]models.Category, error) {
		cats, err := e.store.All()
		if err != nil {
			return nil, fmt.Errorf("%w: load categories: %v", apperr.ErrDataUnavailable, err)
		}
		return cats, nil
	})
}

// Invalidate drops both cached snapshots. Called by every successful
// category mutation; there is no partial invalidation.
func (e *Engine) Invalidate() {
	e.treeMemo.Invalidate()
	e.listMemo.Invalidate()
}

// expandExcluded computes the transitive closure of the excluded base set
// over the parent→children adjacency, breadth-first. If a category is
// excluded, every descendant is too.
func expandExcluded(cats []models.Category, base []int64) map[int64]bool {
	children := make(map[int64][]int64, len(cats))
	for _, c := range cats {
		if c.ParentID != nil {
			children[*c.ParentID] = append(children[*c.ParentID], c.ID)
		}
	}

	excluded := make(map[int64]bool, len(base))
	queue := append([]int64(nil), base...)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if excluded[id] {
			continue
		}
		excluded[id] = true
		queue = append(queue, children[id]...)
	}
	return excluded
}

// Reorder moves a category to a new position, and possibly a new parent.
// newParentID 0 and the moved category's nil parent are both normalized to
// "root". Same-parent moves only shift siblings; reparent moves also
// re-level the whole moved subtree and maintain has_children on both
// parents. Every successful call invalidates the caches.
//
// Concurrent reorders into the same destination are not mutually excluded
// here; the sibling shift relies on storage row locking, so overlapping
// calls can interleave order_number assignment.
func (e *Engine) Reorder(ctx context.Context, categoryID, newParentID int64, newOrder int) error {
	cat, err := e.store.FindByID(categoryID)
	if err != nil {
		return fmt.Errorf("reorder: %w", err)
	}
	if cat == nil {
		return fmt.Errorf("%w: category %d", apperr.ErrNotFound, categoryID)
	}

	var newParent *int64
	if newParentID != 0 {
		newParent = &newParentID
	}

	if sameParent(cat.ParentID, newParent) {
		if err := e.store.ShiftSiblings(cat.ParentID, newOrder, categoryID); err != nil {
			return fmt.Errorf("reorder: %w", err)
		}
		if err := e.store.SetPlacement(categoryID, cat.ParentID, cat.Level, newOrder); err != nil {
			return fmt.Errorf("reorder: %w", err)
		}
		e.Invalidate()
		return nil
	}

	return e.reparent(ctx, cat, newParent, newOrder)
}

// reparent moves cat under newParent at position newOrder.
func (e *Engine) reparent(ctx context.Context, cat *models.Category, newParent *int64, newOrder int) error {
	newLevel := 0
	if newParent != nil {
		if *newParent == cat.ID {
			return fmt.Errorf("%w: category %d cannot be its own parent", apperr.ErrCircularReference, cat.ID)
		}
		parent, err := e.store.FindByID(*newParent)
		if err != nil {
			return fmt.Errorf("reparent: %w", err)
		}
		if parent == nil {
			return fmt.Errorf("%w: parent category %d", apperr.ErrNotFound, *newParent)
		}

		descendants, err := e.descendantIDs(cat.ID)
		if err != nil {
			return fmt.Errorf("reparent: %w", err)
		}
		if descendants[*newParent] {
			return fmt.Errorf("%w: category %d is a descendant of %d", apperr.ErrCircularReference, *newParent, cat.ID)
		}

		newLevel = parent.Level + 1
	}

	if err := e.store.ShiftSiblings(newParent, newOrder, cat.ID); err != nil {
		return fmt.Errorf("reparent: %w", err)
	}
	if err := e.store.SetPlacement(cat.ID, newParent, newLevel, newOrder); err != nil {
		return fmt.Errorf("reparent: %w", err)
	}

	// Restore the level invariant for the whole moved subtree, one batched
	// update per depth.
	if err := e.cascadeLevels(cat.ID, newLevel+1); err != nil {
		return fmt.Errorf("reparent: %w", err)
	}

	// The old parent may have lost its last child; the new one definitely
	// has at least one now.
	if cat.ParentID != nil {
		n, err := e.store.CountChildren(*cat.ParentID)
		if err != nil {
			return fmt.Errorf("reparent: %w", err)
		}
		if err := e.store.SetHasChildren(*cat.ParentID, n > 0); err != nil {
			return fmt.Errorf("reparent: %w", err)
		}
	}
	if newParent != nil {
		if err := e.store.SetHasChildren(*newParent, true); err != nil {
			return fmt.Errorf("reparent: %w", err)
		}
	}

	e.Invalidate()
	return nil
}

// descendantIDs collects every descendant of root, breadth-first, fetching
// each layer's children in one batched query.
func (e *Engine) descendantIDs(root int64) (map[int64]bool, error) {
	seen := make(map[int64]bool)
	layer := []int64{root}
	for len(layer) > 0 {
		children, err := e.store.ChildrenOf(layer)
		if err != nil {
			return nil, err
		}
		layer = layer[:0]
		for _, c := range children {
			if seen[c.ID] {
				continue
			}
			seen[c.ID] = true
			layer = append(layer, c.ID)
		}
	}
	return seen, nil
}

// cascadeLevels walks the subtree under root layer by layer, assigning
// level to the first layer, level+1 to the next, and so on. All siblings
// of one depth share a single batched update.
func (e *Engine) cascadeLevels(root int64, level int) error {
	layer := []int64{root}
	for {
		children, err := e.store.ChildrenOf(layer)
		if err != nil {
			return err
		}
		if len(children) == 0 {
			return nil
		}
		ids := make([]int64, 0, len(children))
		for _, c := range children {
			ids = append(ids, c.ID)
		}
		if err := e.store.SetLevels(ids, level); err != nil {
			return err
		}
		layer = ids
		level++
	}
}

// sameParent compares two normalized parent references (nil means root).
func sameParent(a, b *int64) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}
