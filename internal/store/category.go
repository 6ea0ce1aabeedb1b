// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"shopadmin/internal/models"
)

// CategoryStore manages catalog categories in the database.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

const categoryColumns = `id, name, name_en, parent_id, level, order_number, has_children, display, created_at, updated_at`

// scanCategory scans a row into a Category struct.
func scanCategory(scanner interface{ Scan(...any) error }) (*models.Category, error) {
	var c models.Category
	err := scanner.Scan(
		&c.ID, &c.Name, &c.NameEn, &c.ParentID, &c.Level,
		&c.OrderNumber, &c.HasChildren, &c.Display, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// All returns every category ordered by order_number, with product counts.
// This is the single fetch behind the tree and listing caches.
func (s *CategoryStore) All() ([]models.Category, error) {
	rows, err := s.db.Query(`
		SELECT c.id, c.name, c.name_en, c.parent_id, c.level, c.order_number,
		       c.has_children, c.display, c.created_at, c.updated_at,
		       COUNT(p.id) AS product_count
		FROM categories c
		LEFT JOIN products p ON p.category_id = c.id AND p.active
		GROUP BY c.id
		ORDER BY c.order_number, c.id
	`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var items []models.Category
	for rows.Next() {
		var c models.Category
		err := rows.Scan(
			&c.ID, &c.Name, &c.NameEn, &c.ParentID, &c.Level,
			&c.OrderNumber, &c.HasChildren, &c.Display, &c.CreatedAt, &c.UpdatedAt,
			&c.ProductCount,
		)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// FindByID retrieves a category by ID. Returns nil if not found.
func (s *CategoryStore) FindByID(id int64) (*models.Category, error) {
	row := s.db.QueryRow(`SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return c, nil
}

// Create inserts a new category appended after its siblings: order_number
// is computed as one past the current maximum under the same parent, so
// sibling positions stay unique without a shift.
func (s *CategoryStore) Create(c *models.Category) (*models.Category, error) {
	row := s.db.QueryRow(`
		INSERT INTO categories (name, name_en, parent_id, level, order_number, has_children, display)
		SELECT $1, $2, $3, $4, COALESCE(MAX(order_number) + 1, 0), false, $5
		FROM categories
		WHERE parent_id IS NOT DISTINCT FROM $3
		RETURNING `+categoryColumns,
		c.Name, c.NameEn, c.ParentID, c.Level, c.Display,
	)
	result, err := scanCategory(row)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return result, nil
}

// Update modifies a category's editable fields. Placement (parent, level,
// order_number) is only ever changed through the mutation engine.
func (s *CategoryStore) Update(c *models.Category) error {
	_, err := s.db.Exec(`
		UPDATE categories SET name = $1, name_en = $2, display = $3, updated_at = NOW()
		WHERE id = $4
	`, c.Name, c.NameEn, c.Display, c.ID)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return nil
}

// ChildrenOf returns the direct children of every parent in parentIDs in a
// single batched query. Used by the breadth-first descendant traversals so
// each tree layer costs one round trip.
func (s *CategoryStore) ChildrenOf(parentIDs []int64) ([]models.Category, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}
	rows, err := s.db.Query(`
		SELECT `+categoryColumns+` FROM categories
		WHERE parent_id = ANY($1)
		ORDER BY order_number, id
	`, parentIDs)
	if err != nil {
		return nil, fmt.Errorf("children of categories: %w", err)
	}
	defer rows.Close()

	var items []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// ShiftSiblings opens a gap at fromOrder under parentID by incrementing
// order_number for every sibling at or past that position, excluding the
// category being moved. A nil parentID addresses root-level siblings only.
func (s *CategoryStore) ShiftSiblings(parentID *int64, fromOrder int, excludeID int64) error {
	_, err := s.db.Exec(`
		UPDATE categories SET order_number = order_number + 1, updated_at = NOW()
		WHERE parent_id IS NOT DISTINCT FROM $1
		  AND order_number >= $2
		  AND id <> $3
	`, parentID, fromOrder, excludeID)
	if err != nil {
		return fmt.Errorf("shift siblings: %w", err)
	}
	return nil
}

// SetPlacement updates a category's parent, level and order_number in one
// statement.
func (s *CategoryStore) SetPlacement(id int64, parentID *int64, level, orderNumber int) error {
	_, err := s.db.Exec(`
		UPDATE categories SET parent_id = $1, level = $2, order_number = $3, updated_at = NOW()
		WHERE id = $4
	`, parentID, level, orderNumber, id)
	if err != nil {
		return fmt.Errorf("set category placement: %w", err)
	}
	return nil
}

// SetLevels assigns the same level to a whole batch of categories. The
// level cascade calls this once per tree depth.
func (s *CategoryStore) SetLevels(ids []int64, level int) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.db.Exec(`
		UPDATE categories SET level = $1, updated_at = NOW() WHERE id = ANY($2)
	`, level, ids)
	if err != nil {
		return fmt.Errorf("set category levels: %w", err)
	}
	return nil
}

// SetHasChildren sets the has_children flag on a single category.
func (s *CategoryStore) SetHasChildren(id int64, hasChildren bool) error {
	_, err := s.db.Exec(`
		UPDATE categories SET has_children = $1, updated_at = NOW() WHERE id = $2
	`, hasChildren, id)
	if err != nil {
		return fmt.Errorf("set has_children: %w", err)
	}
	return nil
}

// CountChildren returns the number of direct children of a category.
func (s *CategoryStore) CountChildren(id int64) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM categories WHERE parent_id = $1`, id).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count children: %w", err)
	}
	return n, nil
}

// ExcludedIDs returns the explicit excluded-category base set. The
// transitive closure over descendants is computed by the tree engine at
// read time, never persisted.
func (s *CategoryStore) ExcludedIDs() ([]int64, error) {
	rows, err := s.db.Query(`SELECT category_id FROM category_exclusions`)
	if err != nil {
		return nil, fmt.Errorf("excluded category ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan excluded id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SetExcluded adds or removes a category from the explicit exclusion set.
func (s *CategoryStore) SetExcluded(id int64, excluded bool) error {
	var err error
	if excluded {
		_, err = s.db.Exec(`
			INSERT INTO category_exclusions (category_id) VALUES ($1)
			ON CONFLICT (category_id) DO NOTHING
		`, id)
	} else {
		_, err = s.db.Exec(`DELETE FROM category_exclusions WHERE category_id = $1`, id)
	}
	if err != nil {
		return fmt.Errorf("set category exclusion: %w", err)
	}
	return nil
}
