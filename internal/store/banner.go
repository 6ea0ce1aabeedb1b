// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"shopadmin/internal/models"
)

// BannerStore manages storefront banners.
type BannerStore struct {
	db *sql.DB
}

// NewBannerStore returns a new BannerStore.
func NewBannerStore(db *sql.DB) *BannerStore {
	return &BannerStore{db: db}
}

const bannerColumns = `id, title, image_url, link_url, position, active, starts_at, ends_at, created_at, updated_at`

// scanBanner scans a row into a Banner struct.
func scanBanner(scanner interface{ Scan(...any) error }) (*models.Banner, error) {
	var b models.Banner
	err := scanner.Scan(
		&b.ID, &b.Title, &b.ImageURL, &b.LinkURL, &b.Position,
		&b.Active, &b.StartsAt, &b.EndsAt, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// List returns all banners ordered by position.
func (s *BannerStore) List() ([]models.Banner, error) {
	rows, err := s.db.Query(`SELECT ` + bannerColumns + ` FROM banners ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("list banners: %w", err)
	}
	defer rows.Close()

	var banners []models.Banner
	for rows.Next() {
		b, err := scanBanner(rows)
		if err != nil {
			return nil, fmt.Errorf("scan banner: %w", err)
		}
		banners = append(banners, *b)
	}
	return banners, rows.Err()
}

// FindByID retrieves a banner by ID. Returns nil if not found.
func (s *BannerStore) FindByID(id int64) (*models.Banner, error) {
	row := s.db.QueryRow(`SELECT `+bannerColumns+` FROM banners WHERE id = $1`, id)
	b, err := scanBanner(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find banner by id: %w", err)
	}
	return b, nil
}

// Create inserts a new banner and returns it.
func (s *BannerStore) Create(b *models.Banner) (*models.Banner, error) {
	row := s.db.QueryRow(`
		INSERT INTO banners (title, image_url, link_url, position, active, starts_at, ends_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+bannerColumns,
		b.Title, b.ImageURL, b.LinkURL, b.Position, b.Active, b.StartsAt, b.EndsAt,
	)
	result, err := scanBanner(row)
	if err != nil {
		return nil, fmt.Errorf("create banner: %w", err)
	}
	return result, nil
}

// Update modifies an existing banner.
func (s *BannerStore) Update(b *models.Banner) error {
	_, err := s.db.Exec(`
		UPDATE banners SET
			title = $1, image_url = $2, link_url = $3, position = $4,
			active = $5, starts_at = $6, ends_at = $7, updated_at = NOW()
		WHERE id = $8
	`, b.Title, b.ImageURL, b.LinkURL, b.Position, b.Active, b.StartsAt, b.EndsAt, b.ID)
	if err != nil {
		return fmt.Errorf("update banner: %w", err)
	}
	return nil
}

// Delete removes a banner by ID.
func (s *BannerStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM banners WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete banner: %w", err)
	}
	return nil
}
