// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package shipping calls the external shipping-cost calculation service.
// Estimates are best-effort: the caller logs failures and moves on, and a
// circuit breaker keeps a struggling backend from slowing every request.
package shipping

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"shopadmin/internal/models"
)

// Item is one line of the estimate request payload.
type Item struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// estimateRequest is the POST /shipping/calculate body.
type estimateRequest struct {
	Items  []Item                `json:"items"`
	Method models.ShippingMethod `json:"method"`
}

// estimateResponse mirrors the calculator's response envelope.
type estimateResponse struct {
	Summary struct {
		TotalShippingCost float64 `json:"total_shipping_cost"`
	} `json:"summary"`
}

// Client talks to the shipping calculator over HTTP.
type Client struct {
	baseURL string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
}

// New creates a shipping client for the given base URL. The breaker opens
// after five consecutive failures and probes again after 30 seconds.
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "shipping-calculator",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
	}
}

// Estimate asks the calculator for the total shipping cost of the given
// items via the given method. Errors here are expected to be swallowed by
// the caller after logging.
func (c *Client) Estimate(ctx context.Context, items []Item, method models.ShippingMethod) (float64, error) {
	result, err := c.breaker.Execute(func() (any, error) {
		return c.doEstimate(ctx, items, method)
	})
	if err != nil {
		return 0, err
	}
	return result.(float64), nil
}

// doEstimate performs the HTTP call to POST /shipping/calculate.
func (c *Client) doEstimate(ctx context.Context, items []Item, method models.ShippingMethod) (float64, error) {
	payload, err := json.Marshal(estimateRequest{Items: items, Method: method})
	if err != nil {
		return 0, fmt.Errorf("shipping marshal: %w", err)
	}

	url := c.baseURL + "/shipping/calculate"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("shipping request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("shipping http: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("shipping read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("shipping calculator error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var result estimateResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return 0, fmt.Errorf("shipping unmarshal: %w", err)
	}
	return result.Summary.TotalShippingCost, nil
}
