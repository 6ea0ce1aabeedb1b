// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"shopadmin/internal/apperr"
	"shopadmin/internal/models"
)

// CouponStore manages coupons and their usage ledger.
type CouponStore struct {
	db *sql.DB
}

// NewCouponStore returns a new CouponStore.
func NewCouponStore(db *sql.DB) *CouponStore {
	return &CouponStore{db: db}
}

const couponColumns = `id, code, discount, is_percentage, coupon_type, valid_from, valid_until, active, single_use, created_at, updated_at`

// scanCoupon scans a row into a Coupon struct.
func scanCoupon(scanner interface{ Scan(...any) error }) (*models.Coupon, error) {
	var c models.Coupon
	err := scanner.Scan(
		&c.ID, &c.Code, &c.Discount, &c.IsPercentage, &c.CouponType,
		&c.ValidFrom, &c.ValidUntil, &c.Active, &c.SingleUse, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListWithUsage returns every coupon with its usage counts aggregated by
// status. The counts come from one grouped query — usage rows are never
// loaded individually, whatever the volume.
func (s *CouponStore) ListWithUsage() ([]models.CouponWithUsage, error) {
	rows, err := s.db.Query(`
		SELECT c.id, c.code, c.discount, c.is_percentage, c.coupon_type,
		       c.valid_from, c.valid_until, c.active, c.single_use,
		       c.created_at, c.updated_at,
		       COUNT(u.id) AS total_usage,
		       COUNT(u.id) FILTER (WHERE u.status = 'claimed') AS claimed_count,
		       COUNT(u.id) FILTER (WHERE u.status = 'locked') AS locked_count,
		       COUNT(u.id) FILTER (WHERE u.status = 'redeemed') AS redeemed_count
		FROM coupons c
		LEFT JOIN coupon_usages u ON u.coupon_id = c.id
		GROUP BY c.id
		ORDER BY c.created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list coupons with usage: %w", err)
	}
	defer rows.Close()

	var items []models.CouponWithUsage
	for rows.Next() {
		var c models.CouponWithUsage
		if err := rows.Scan(
			&c.ID, &c.Code, &c.Discount, &c.IsPercentage, &c.CouponType,
			&c.ValidFrom, &c.ValidUntil, &c.Active, &c.SingleUse,
			&c.CreatedAt, &c.UpdatedAt,
			&c.TotalUsage, &c.ClaimedCount, &c.LockedCount, &c.RedeemedCount,
		); err != nil {
			return nil, fmt.Errorf("scan coupon with usage: %w", err)
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// FindByID retrieves a coupon by ID. Returns nil if not found.
func (s *CouponStore) FindByID(id int64) (*models.Coupon, error) {
	row := s.db.QueryRow(`SELECT `+couponColumns+` FROM coupons WHERE id = $1`, id)
	c, err := scanCoupon(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find coupon by id: %w", err)
	}
	return c, nil
}

// Create inserts a new coupon. A duplicate code surfaces as ErrConflict so
// the handler can report it to the operator.
func (s *CouponStore) Create(c *models.Coupon) (*models.Coupon, error) {
	row := s.db.QueryRow(`
		INSERT INTO coupons (code, discount, is_percentage, coupon_type, valid_from, valid_until, active, single_use)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+couponColumns,
		c.Code, c.Discount, c.IsPercentage, c.CouponType,
		c.ValidFrom, c.ValidUntil, c.Active, c.SingleUse,
	)
	result, err := scanCoupon(row)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("%w: coupon code %q already exists", apperr.ErrConflict, c.Code)
	}
	if err != nil {
		return nil, fmt.Errorf("create coupon: %w", err)
	}
	return result, nil
}

// Update modifies an existing coupon.
func (s *CouponStore) Update(c *models.Coupon) error {
	_, err := s.db.Exec(`
		UPDATE coupons SET
			code = $1, discount = $2, is_percentage = $3, coupon_type = $4,
			valid_from = $5, valid_until = $6, active = $7, single_use = $8,
			updated_at = NOW()
		WHERE id = $9
	`, c.Code, c.Discount, c.IsPercentage, c.CouponType,
		c.ValidFrom, c.ValidUntil, c.Active, c.SingleUse, c.ID)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: coupon code %q already exists", apperr.ErrConflict, c.Code)
	}
	if err != nil {
		return fmt.Errorf("update coupon: %w", err)
	}
	return nil
}

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
