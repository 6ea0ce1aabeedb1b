// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"shopadmin/internal/apperr"
	"shopadmin/internal/models"
)

// OrderStore manages orders and their line items. The multi-row writes of
// the workflow engine (item update + audit record + order cascade) run in
// a single transaction here, so a partial failure rolls back the whole
// logical operation.
type OrderStore struct {
	db *sql.DB
}

// NewOrderStore returns a new OrderStore.
func NewOrderStore(db *sql.DB) *OrderStore {
	return &OrderStore{db: db}
}

const orderColumns = `id, subtotal, discount_amount, tax_amount, shipping_amount, total, status, shipping_method, shipping_status, created_at, updated_at`

// scanOrder scans a row into an Order struct.
func scanOrder(scanner interface{ Scan(...any) error }) (*models.Order, error) {
	var o models.Order
	err := scanner.Scan(
		&o.ID, &o.Subtotal, &o.DiscountAmount, &o.TaxAmount, &o.ShippingAmount,
		&o.Total, &o.Status, &o.ShippingMethod, &o.ShippingStatus, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// FindByID retrieves an order by ID. Returns nil if not found.
func (s *OrderStore) FindByID(id int64) (*models.Order, error) {
	row := s.db.QueryRow(`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	o, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find order by id: %w", err)
	}
	return o, nil
}

// List returns a page of orders, newest first, optionally filtered by the
// legacy numeric status. Also returns the total row count for pagination.
func (s *OrderStore) List(page, perPage int, status *int) ([]models.Order, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 200 {
		perPage = 50
	}

	var total int
	if err := s.db.QueryRow(`
		SELECT COUNT(*) FROM orders WHERE $1::int IS NULL OR status = $1
	`, status).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	rows, err := s.db.Query(`
		SELECT `+orderColumns+` FROM orders
		WHERE $1::int IS NULL OR status = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, status, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	return orders, total, rows.Err()
}

const itemColumns = `i.id, i.order_id, i.product_id, i.product_name, i.quantity,
       i.shipping_method, i.shipping, i.tracking_number, i.workflow_status_id,
       i.status, i.updated_by, i.created_at, i.updated_at,
       COALESCE(w.status_key, '')`

// scanItem scans an order item row joined with its workflow status key.
func scanItem(scanner interface{ Scan(...any) error }) (*models.OrderItem, error) {
	var it models.OrderItem
	err := scanner.Scan(
		&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.Quantity,
		&it.ShippingMethod, &it.Shipping, &it.TrackingNumber, &it.WorkflowStatusID,
		&it.LegacyStatus, &it.UpdatedBy, &it.CreatedAt, &it.UpdatedAt,
		&it.WorkflowStatusKey,
	)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// ItemByID retrieves a single order item. Returns nil if not found.
func (s *OrderStore) ItemByID(id int64) (*models.OrderItem, error) {
	row := s.db.QueryRow(`
		SELECT `+itemColumns+`
		FROM order_products i
		LEFT JOIN workflow_statuses w ON w.id = i.workflow_status_id
		WHERE i.id = $1
	`, id)
	it, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find order item: %w", err)
	}
	return it, nil
}

// ItemsByOrder returns every line item of an order.
func (s *OrderStore) ItemsByOrder(orderID int64) ([]models.OrderItem, error) {
	rows, err := s.db.Query(`
		SELECT `+itemColumns+`
		FROM order_products i
		LEFT JOIN workflow_statuses w ON w.id = i.workflow_status_id
		WHERE i.order_id = $1
		ORDER BY i.id
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

// TrackingForOrder returns the order-level tracking entries written by the
// cascade, oldest first.
func (s *OrderStore) TrackingForOrder(orderID int64) ([]models.OrderTrackingEntry, error) {
	rows, err := s.db.Query(`
		SELECT id, order_id, status, COALESCE(note, ''), created_at
		FROM order_tracking WHERE order_id = $1
		ORDER BY created_at, id
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order tracking: %w", err)
	}
	defer rows.Close()

	var entries []models.OrderTrackingEntry
	for rows.Next() {
		var e models.OrderTrackingEntry
		if err := rows.Scan(&e.ID, &e.OrderID, &e.Status, &e.Note, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order tracking: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// AdvanceShippingStatus moves the shipping payment status forward by
// exactly one step. The WHERE clause enforces monotonicity: an order that
// is not at to-1 is left untouched and false is returned.
func (s *OrderStore) AdvanceShippingStatus(orderID int64, to models.ShippingStatus) (bool, error) {
	res, err := s.db.Exec(`
		UPDATE orders SET shipping_status = $1, updated_at = NOW()
		WHERE id = $2 AND shipping_status = $1 - 1
	`, int(to), orderID)
	if err != nil {
		return false, fmt.Errorf("advance shipping status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("advance shipping status: %w", err)
	}
	return n > 0, nil
}

// TransitionUpdate describes the full write set of one workflow transition:
// the item update, the audit record, and the optional order-level cascade.
type TransitionUpdate struct {
	ItemID         int64
	OrderID        int64
	ToStatusID     int64
	LegacyStatus   *int    // set only for cancelled/refunded mirrors
	TrackingNumber *string // set only when the request supplied one
	UpdatedBy      uuid.UUID

	FromStatusID    *int64
	Note            *string
	TrackingSnapshot *string // tracking number in effect after the change

	OrderStatus *int   // non-nil when the cascade advances the order
	OrderNote   string // order_tracking note for the cascade entry
}

// ApplyTransition performs a workflow transition atomically: item row,
// audit history, and the order cascade all commit or roll back together.
func (s *OrderStore) ApplyTransition(u TransitionUpdate) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("transition begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		UPDATE order_products SET
			workflow_status_id = $1,
			tracking_number = COALESCE($2, tracking_number),
			status = COALESCE($3, status),
			updated_by = $4,
			updated_at = NOW()
		WHERE id = $5 AND order_id = $6
	`, u.ToStatusID, u.TrackingNumber, u.LegacyStatus, u.UpdatedBy, u.ItemID, u.OrderID)
	if err != nil {
		return fmt.Errorf("transition item update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: order item %d", apperr.ErrNotFound, u.ItemID)
	}

	if _, err := tx.Exec(`
		INSERT INTO order_item_status_history
			(order_item_id, order_id, from_status_id, to_status_id, changed_by, tracking_number, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, u.ItemID, u.OrderID, u.FromStatusID, u.ToStatusID, u.UpdatedBy, u.TrackingSnapshot, u.Note); err != nil {
		return fmt.Errorf("transition history insert: %w", err)
	}

	if u.OrderStatus != nil {
		if err := cascadeOrder(tx, u.OrderID, *u.OrderStatus, u.OrderNote); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ItemFieldsUpdate describes a raw item field edit plus the order-level
// recomputations it triggers. Nil pointers mean "leave unchanged".
type ItemFieldsUpdate struct {
	ItemID  int64
	OrderID int64

	TrackingNumber   *string
	ClearTracking    bool // wipe the stored tracking number; wins over TrackingNumber
	ShippingMethod   *models.ShippingMethod
	Shipping         *float64
	Quantity         *int
	WorkflowStatusID *int64
	UpdatedBy        uuid.UUID

	RecomputeShipping   bool                   // refresh shipping_amount and total from item sums
	OrderShippingMethod *models.ShippingMethod // non-nil to update the derived method
	OrderStatus         *int                   // non-nil when a same-status cascade fires
	OrderNote           string
}

// ApplyItemFields updates an item's raw fields and the dependent order
// aggregates in one transaction. The shipping total and order total are
// recomputed in SQL from the item rows, so the order total identity holds
// whatever state the caller saw.
func (s *OrderStore) ApplyItemFields(u ItemFieldsUpdate) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("item fields begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		UPDATE order_products SET
			tracking_number = CASE WHEN $1::bool THEN NULL ELSE COALESCE($2, tracking_number) END,
			shipping_method = COALESCE($3, shipping_method),
			shipping = COALESCE($4, shipping),
			quantity = COALESCE($5, quantity),
			workflow_status_id = COALESCE($6, workflow_status_id),
			updated_by = $7,
			updated_at = NOW()
		WHERE id = $8 AND order_id = $9
	`, u.ClearTracking, u.TrackingNumber, u.ShippingMethod, u.Shipping, u.Quantity,
		u.WorkflowStatusID, u.UpdatedBy, u.ItemID, u.OrderID)
	if err != nil {
		return fmt.Errorf("item fields update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: order item %d in order %d", apperr.ErrNotFound, u.ItemID, u.OrderID)
	}

	if u.RecomputeShipping {
		if _, err := tx.Exec(`
			UPDATE orders o SET
				shipping_amount = s.amount,
				total = o.subtotal + s.amount + o.tax_amount - o.discount_amount,
				updated_at = NOW()
			FROM (
				SELECT COALESCE(SUM(shipping), 0) AS amount
				FROM order_products WHERE order_id = $1
			) s
			WHERE o.id = $1
		`, u.OrderID); err != nil {
			return fmt.Errorf("recompute shipping total: %w", err)
		}
	}

	if u.OrderShippingMethod != nil {
		if _, err := tx.Exec(`
			UPDATE orders SET shipping_method = $1, updated_at = NOW() WHERE id = $2
		`, *u.OrderShippingMethod, u.OrderID); err != nil {
			return fmt.Errorf("update order shipping method: %w", err)
		}
	}

	if u.OrderStatus != nil {
		if err := cascadeOrder(tx, u.OrderID, *u.OrderStatus, u.OrderNote); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// cascadeOrder advances the order's legacy status and appends the
// order-level tracking entry, inside the caller's transaction.
func cascadeOrder(tx *sql.Tx, orderID int64, status int, note string) error {
	if _, err := tx.Exec(`
		UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2
	`, status, orderID); err != nil {
		return fmt.Errorf("cascade order status: %w", err)
	}
	if _, err := tx.Exec(`
		INSERT INTO order_tracking (order_id, status, note) VALUES ($1, $2, $3)
	`, orderID, status, note); err != nil {
		return fmt.Errorf("cascade order tracking: %w", err)
	}
	return nil
}
