// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package workflow

import (
	"errors"
	"slices"
	"testing"

	"shopadmin/internal/apperr"
	"shopadmin/internal/models"
)

func f64ptr(v float64) *float64 { return &v }

func intptr(v int) *int { return &v }

func methodptr(m models.ShippingMethod) *models.ShippingMethod { return &m }

func TestUpdateItemFieldsNoFields(t *testing.T) {
	fo, e := newFixture()
	addOrder(fo, 1, 1)
	addItem(fo, 10, 1, 1)

	_, err := e.UpdateItemFields(operatorActor, 1, ItemFieldsRequest{ItemID: 10})
	if !errors.Is(err, apperr.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if len(fo.fieldUpdates) != 0 {
		t.Error("store must be untouched")
	}
}

func TestUpdateItemFieldsValidation(t *testing.T) {
	tests := []struct {
		name string
		req  ItemFieldsRequest
	}{
		{"both is not an item method", ItemFieldsRequest{ItemID: 10, ShippingMethod: methodptr(models.ShippingBoth)}},
		{"unknown method", ItemFieldsRequest{ItemID: 10, ShippingMethod: methodptr("teleport")}},
		{"zero quantity", ItemFieldsRequest{ItemID: 10, Quantity: intptr(0)}},
		{"negative shipping", ItemFieldsRequest{ItemID: 10, Shipping: f64ptr(-1)}},
		{"unknown workflow key", ItemFieldsRequest{ItemID: 10, WorkflowStatusKey: strptr("vanished")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fo, e := newFixture()
			addOrder(fo, 1, 1)
			addItem(fo, 10, 1, 1)

			_, err := e.UpdateItemFields(operatorActor, 1, tt.req)
			if !errors.Is(err, apperr.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
			if len(fo.fieldUpdates) != 0 {
				t.Error("store must be untouched")
			}
		})
	}
}

func TestUpdateItemFieldsWrongOrder(t *testing.T) {
	fo, e := newFixture()
	addOrder(fo, 1, 1)
	addOrder(fo, 2, 1)
	addItem(fo, 10, 1, 1)

	_, err := e.UpdateItemFields(operatorActor, 2, ItemFieldsRequest{ItemID: 10, Quantity: intptr(2)})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateItemFieldsRecomputesShippingTotal(t *testing.T) {
	fo, e := newFixture()
	addOrder(fo, 1, 1)
	a := addItem(fo, 10, 1, 1)
	b := addItem(fo, 11, 1, 1)
	a.Shipping = 5
	b.Shipping = 7
	fo.orders[1].ShippingAmount = 12
	fo.orders[1].ComputeTotal()

	res, err := e.UpdateItemFields(operatorActor, 1, ItemFieldsRequest{ItemID: 10, Shipping: f64ptr(20)})
	if err != nil {
		t.Fatalf("UpdateItemFields: %v", err)
	}

	if res.OrderShippingAmount != 27 {
		t.Errorf("order shipping: got %v, want 27", res.OrderShippingAmount)
	}
	// Total = Subtotal + Shipping + Tax - Discount = 100 + 27 + 10 - 0.
	if res.OrderTotal != 137 {
		t.Errorf("order total: got %v, want 137", res.OrderTotal)
	}
	if !slices.Equal(res.UpdatedFields, []string{"shipping"}) {
		t.Errorf("updated fields: got %v", res.UpdatedFields)
	}
	if !fo.fieldUpdates[0].RecomputeShipping {
		t.Error("shipping edit must request a shipping recompute")
	}
}

func TestUpdateItemFieldsDerivesOrderMethod(t *testing.T) {
	fo, e := newFixture()
	addOrder(fo, 1, 1)
	addItem(fo, 10, 1, 1)
	addItem(fo, 11, 1, 1)

	// Both items air; switching one to sea mixes methods.
	res, err := e.UpdateItemFields(operatorActor, 1, ItemFieldsRequest{ItemID: 10, ShippingMethod: methodptr(models.ShippingSea)})
	if err != nil {
		t.Fatalf("UpdateItemFields: %v", err)
	}
	if res.OrderShippingMethod != models.ShippingBoth {
		t.Errorf("order method: got %q, want both", res.OrderShippingMethod)
	}
	if res.Item.ShippingMethod != models.ShippingSea {
		t.Errorf("item method: got %q, want sea", res.Item.ShippingMethod)
	}
}

func TestUpdateItemFieldsWorkflowKeyCascades(t *testing.T) {
	fo, e := newFixture()
	addOrder(fo, 1, 1)
	addItem(fo, 10, 1, 2)
	addItem(fo, 11, 1, 1)

	res, err := e.UpdateItemFields(operatorActor, 1, ItemFieldsRequest{ItemID: 11, WorkflowStatusKey: strptr("processing")})
	if err != nil {
		t.Fatalf("UpdateItemFields: %v", err)
	}
	if !res.OrderStatusUpdated {
		t.Fatal("expected the order status cascade to fire")
	}
	if fo.orders[1].Status != 2 {
		t.Errorf("order status: got %d, want 2", fo.orders[1].Status)
	}
	if !slices.Equal(res.UpdatedFields, []string{"workflow_status"}) {
		t.Errorf("updated fields: got %v", res.UpdatedFields)
	}
}

func TestUpdateItemFieldsMultipleFields(t *testing.T) {
	fo, e := newFixture()
	addOrder(fo, 1, 1)
	addItem(fo, 10, 1, 1)

	res, err := e.UpdateItemFields(operatorActor, 1, ItemFieldsRequest{
		ItemID:         10,
		TrackingNumber: strptr(" TRK-9 "),
		Quantity:       intptr(3),
	})
	if err != nil {
		t.Fatalf("UpdateItemFields: %v", err)
	}
	want := []string{"tracking_number", "quantity"}
	if !slices.Equal(res.UpdatedFields, want) {
		t.Errorf("updated fields: got %v, want %v", res.UpdatedFields, want)
	}
	if res.Item.TrackingNumber == nil || *res.Item.TrackingNumber != "TRK-9" {
		t.Errorf("tracking: got %v, want TRK-9 (trimmed)", res.Item.TrackingNumber)
	}
	if res.Item.Quantity != 3 {
		t.Errorf("quantity: got %d, want 3", res.Item.Quantity)
	}
}

func TestUpdateItemFieldsEmptyTrackingClears(t *testing.T) {
	fo, e := newFixture()
	addOrder(fo, 1, 1)
	it := addItem(fo, 10, 1, 1)
	it.TrackingNumber = strptr("TRK-OLD")

	res, err := e.UpdateItemFields(operatorActor, 1, ItemFieldsRequest{ItemID: 10, TrackingNumber: strptr("  ")})
	if err != nil {
		t.Fatalf("UpdateItemFields: %v", err)
	}
	if !slices.Equal(res.UpdatedFields, []string{"tracking_number"}) {
		t.Errorf("updated fields: got %v", res.UpdatedFields)
	}
	if res.Item.TrackingNumber != nil {
		t.Errorf("tracking: got %q, want cleared", *res.Item.TrackingNumber)
	}
	if !fo.fieldUpdates[0].ClearTracking {
		t.Error("store update must carry the clear flag")
	}
	if fo.fieldUpdates[0].TrackingNumber != nil {
		t.Error("clear and set are mutually exclusive")
	}
}

func TestDeriveShippingMethod(t *testing.T) {
	items := func(methods ...models.ShippingMethod) []models.OrderItem {
		out := make([]models.OrderItem, len(methods))
		for i, m := range methods {
			out[i] = models.OrderItem{ID: int64(i + 1), ShippingMethod: m}
		}
		return out
	}

	tests := []struct {
		name      string
		items     []models.OrderItem
		changed   int64
		newMethod models.ShippingMethod
		want      models.ShippingMethod
	}{
		{"all air", items(models.ShippingAir, models.ShippingAir), 1, models.ShippingAir, models.ShippingAir},
		{"all sea", items(models.ShippingSea, models.ShippingSea), 1, models.ShippingSea, models.ShippingSea},
		{"mixed", items(models.ShippingAir, models.ShippingSea), 1, models.ShippingAir, models.ShippingBoth},
		{"switch last air to sea", items(models.ShippingAir, models.ShippingSea), 1, models.ShippingSea, models.ShippingSea},
		{"no items defaults to air", nil, 0, models.ShippingAir, models.ShippingAir},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := deriveShippingMethod(tt.items, tt.changed, tt.newMethod)
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDeriveShippingMethodIgnoresCancelledItems(t *testing.T) {
	items := []models.OrderItem{
		{ID: 1, ShippingMethod: models.ShippingSea, WorkflowStatusKey: models.StatusKeyCancelled},
		{ID: 2, ShippingMethod: models.ShippingAir},
	}
	if got := deriveShippingMethod(items, 2, models.ShippingAir); got != models.ShippingAir {
		t.Errorf("got %q, want air (cancelled sea item ignored)", got)
	}
}
