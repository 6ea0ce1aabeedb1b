// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// Category represents a node in the hierarchical product catalog.
// The parent edge is a reference, not exclusive ownership: a category is
// referenced by its parent but lives independently of it.
//
// Invariants maintained by the mutation engine:
//   - Level == parent.Level + 1 for non-root categories; roots have a nil
//     ParentID and Level 0.
//   - The parent graph is acyclic.
//   - OrderNumber is unique among siblings (shifted on insert/move, not
//     kept strictly contiguous).
type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	NameEn      string    `json:"name_en"`
	ParentID    *int64    `json:"parent_id"`
	Level       int       `json:"level"`
	OrderNumber int       `json:"order_number"`
	HasChildren bool      `json:"has_children"`
	Display     bool      `json:"display"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Virtual fields populated by store and engine methods.
	ProductCount int  `json:"product_count"`
	IsExcluded   bool `json:"is_excluded"`
}

// CategoryTree is the cached full-tree snapshot served by the tree endpoint.
// Categories are ordered by order_number and annotated with IsExcluded,
// which is the transitive closure of the explicit exclusion set over all
// descendants.
type CategoryTree struct {
	Categories []Category `json:"categories"`
	Total      int        `json:"total"`
}
