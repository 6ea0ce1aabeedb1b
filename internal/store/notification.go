// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"shopadmin/internal/models"
)

// NotificationStore manages customer announcements. Delivery is handled by
// an external push service; the CMS only maintains the records.
type NotificationStore struct {
	db *sql.DB
}

// NewNotificationStore returns a new NotificationStore.
func NewNotificationStore(db *sql.DB) *NotificationStore {
	return &NotificationStore{db: db}
}

// List returns all notifications, newest first.
func (s *NotificationStore) List() ([]models.Notification, error) {
	rows, err := s.db.Query(`
		SELECT id, title, body, audience, published, created_at
		FROM notifications ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var items []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.Title, &n.Body, &n.Audience, &n.Published, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		items = append(items, n)
	}
	return items, rows.Err()
}

// Create inserts a new notification and returns it.
func (s *NotificationStore) Create(n *models.Notification) (*models.Notification, error) {
	result := &models.Notification{}
	err := s.db.QueryRow(`
		INSERT INTO notifications (title, body, audience, published)
		VALUES ($1, $2, $3, $4)
		RETURNING id, title, body, audience, published, created_at
	`, n.Title, n.Body, n.Audience, n.Published).Scan(
		&result.ID, &result.Title, &result.Body, &result.Audience, &result.Published, &result.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}
	return result, nil
}

// Publish marks a notification as published. The push delivery itself is
// out of band.
func (s *NotificationStore) Publish(id int64) (bool, error) {
	res, err := s.db.Exec(`UPDATE notifications SET published = true WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("publish notification: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("publish notification: %w", err)
	}
	return n > 0, nil
}
