// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"shopadmin/internal/category"
	"shopadmin/internal/handlers"
	"shopadmin/internal/middleware"
	"shopadmin/internal/models"
	"shopadmin/internal/session"
)

// memCategories is a minimal in-memory category.Store for routing tests.
type memCategories struct {
	cats map[int64]*models.Category
}

func (m *memCategories) All() ([]models.Category, error) {
	out := make([]models.Category, 0, len(m.cats))
	for _, c := range m.cats {
		out = append(out, *c)
	}
	return out, nil
}

func (m *memCategories) FindByID(id int64) (*models.Category, error) {
	c, ok := m.cats[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (m *memCategories) ChildrenOf(parentIDs []int64) ([]models.Category, error) {
	want := make(map[int64]bool, len(parentIDs))
	for _, id := range parentIDs {
		want[id] = true
	}
	var out []models.Category
	for _, c := range m.cats {
		if c.ParentID != nil && want[*c.ParentID] {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *memCategories) ShiftSiblings(parentID *int64, fromOrder int, excludeID int64) error {
	return nil
}

func (m *memCategories) SetPlacement(id int64, parentID *int64, level, orderNumber int) error {
	c := m.cats[id]
	c.ParentID = parentID
	c.Level = level
	c.OrderNumber = orderNumber
	return nil
}

func (m *memCategories) SetLevels(ids []int64, level int) error { return nil }

func (m *memCategories) SetHasChildren(id int64, hasChildren bool) error { return nil }

func (m *memCategories) CountChildren(id int64) (int, error) { return 0, nil }

func (m *memCategories) ExcludedIDs() ([]int64, error) { return nil, nil }

func newTestRouter() (http.Handler, *memCategories) {
	parent := int64(1)
	cats := &memCategories{cats: map[int64]*models.Category{
		1: {ID: 1, Name: "Electronics", Level: 0},
		2: {ID: 2, Name: "Phones", ParentID: &parent, Level: 1},
	}}
	engine := category.New(cats)

	// Handlers whose routes this test never reaches can keep nil stores:
	// the middleware chain rejects the request before the handler runs.
	h := Handlers{
		Auth:          handlers.NewAuth(nil, nil, nil),
		Categories:    handlers.NewCategory(engine, nil),
		Orders:        handlers.NewOrder(nil, nil, nil, nil),
		Coupons:       handlers.NewCoupon(nil),
		Banners:       handlers.NewBanner(nil),
		Notifications: handlers.NewNotification(nil),
		Users:         handlers.NewUser(nil),
	}
	sessions := session.NewStore(nil, false)
	return New(sessions, h, false), cats
}

// withSession plants session data directly in the request context. The
// requests carry no session cookie, so LoadSession passes the context
// through untouched.
func withSession(r *http.Request, perms []string, twoFADone bool) *http.Request {
	sess := &session.Data{
		UserID:      uuid.New(),
		Email:       "admin@shopadmin.local",
		RoleKey:     "admin",
		Permissions: perms,
		TwoFADone:   twoFADone,
	}
	return r.WithContext(context.WithValue(r.Context(), middleware.SessionKey, sess))
}

// withCSRF attaches a matching CSRF cookie and header pair.
func withCSRF(r *http.Request) *http.Request {
	const token = "aaaabbbbccccddddaaaabbbbccccddddaaaabbbbccccddddaaaabbbbccccdddd"
	r.AddCookie(&http.Cookie{Name: middleware.CSRFCookieName, Value: token})
	r.Header.Set(middleware.CSRFHeaderName, token)
	return r
}

func TestHealth(t *testing.T) {
	r, _ := newTestRouter()
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("body: %s", rec.Body.String())
	}
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	r, _ := newTestRouter()
	paths := []string{
		"/categories", "/categories/tree",
		"/orders", "/orders/1",
		"/coupons", "/banners", "/notifications", "/users",
	}
	for _, path := range paths {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("GET %s without session: got %d, want 401", path, rec.Code)
		}
	}
}

func TestProtectedRoutesRequireCompletedTwoFA(t *testing.T) {
	r, _ := newTestRouter()
	req := withSession(httptest.NewRequest(http.MethodGet, "/categories", nil), nil, false)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status: got %d, want 403 before 2FA completes", rec.Code)
	}
}

func TestMutationRequiresCSRFToken(t *testing.T) {
	r, _ := newTestRouter()
	req := httptest.NewRequest(http.MethodPost, "/categories/reorder", strings.NewReader(`{}`))
	req = withSession(req, []string{models.PermCatalogEdit}, true)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status: got %d, want 403 without a CSRF token", rec.Code)
	}
}

func TestPermissionGate(t *testing.T) {
	r, _ := newTestRouter()

	// A session without users.manage cannot list users.
	req := withSession(httptest.NewRequest(http.MethodGet, "/users", nil),
		[]string{models.PermCatalogEdit}, true)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("GET /users without permission: got %d, want 403", rec.Code)
	}

	// Reorder without catalog.edit is rejected even with a valid CSRF pair.
	req = withCSRF(httptest.NewRequest(http.MethodPost, "/categories/reorder",
		strings.NewReader(`{"categoryId":2,"newParentId":1,"newOrder":0}`)))
	req = withSession(req, []string{models.PermOrderEdit}, true)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("reorder without permission: got %d, want 403", rec.Code)
	}
}

func TestCategoryListAndReorder(t *testing.T) {
	r, cats := newTestRouter()

	req := withSession(httptest.NewRequest(http.MethodGet, "/categories", nil), nil, true)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /categories: got %d, want 200 (%s)", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"total":2`) {
		t.Errorf("body: %s", rec.Body.String())
	}

	req = withCSRF(httptest.NewRequest(http.MethodPost, "/categories/reorder",
		strings.NewReader(`{"categoryId":2,"newParentId":0,"newOrder":0}`)))
	req.Header.Set("Content-Type", "application/json")
	req = withSession(req, []string{models.PermCatalogEdit}, true)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /categories/reorder: got %d, want 200 (%s)", rec.Code, rec.Body.String())
	}
	if cats.cats[2].ParentID != nil || cats.cats[2].Level != 0 {
		t.Errorf("category 2 should be a root now: %+v", cats.cats[2])
	}
}

func TestPaymentCallbackSkipsSessionAuth(t *testing.T) {
	r, _ := newTestRouter()

	// Malformed body: the handler itself answers, proving the route needs
	// no session or CSRF token.
	req := httptest.NewRequest(http.MethodPost, "/callbacks/payment", strings.NewReader(`not json`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400 from the handler", rec.Code)
	}
}
