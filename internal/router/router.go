// Package router sets up all HTTP routes and middleware chains for the
// back-office API. It organizes routes into auth, callback and protected
// groups with appropriate middleware stacks.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"shopadmin/internal/handlers"
	"shopadmin/internal/middleware"
	"shopadmin/internal/models"
	"shopadmin/internal/session"
)

// Handlers bundles the handler groups the router wires up.
type Handlers struct {
	Auth          *handlers.Auth
	Categories    *handlers.Category
	Orders        *handlers.Order
	Coupons       *handlers.Coupon
	Banners       *handlers.Banner
	Notifications *handlers.Notification
	Users         *handlers.User
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up. secure toggles HTTPS-only cookies.
func New(sessionStore *session.Store, h Handlers, secure bool) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.LoadSession(sessionStore))

	// Health check — no auth, no CSRF.
	r.Get("/health", healthHandler)

	// Payment provider callback — authenticated out of band by the
	// provider, never by a browser session.
	r.Post("/callbacks/payment", h.Orders.PaymentCallback)

	csrf := middleware.NewCSRF(secure)

	// Login is rate limited per client IP.
	loginLimiter := middleware.NewRateLimiter(10, time.Minute)

	r.Route("/auth", func(r chi.Router) {
		r.Use(csrf)

		r.With(loginLimiter.Middleware).Post("/login", h.Auth.Login)
		r.Post("/logout", h.Auth.Logout)

		// 2FA — requires auth but NOT completed 2FA.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Post("/2fa/setup", h.Auth.TwoFASetup)
			r.Post("/2fa/verify", h.Auth.TwoFAVerify)
		})
	})

	// Authenticated, 2FA-verified API.
	r.Group(func(r chi.Router) {
		r.Use(csrf)
		r.Use(middleware.RequireAuth)
		r.Use(middleware.Require2FA)

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", h.Categories.List)
			r.Get("/tree", h.Categories.Tree)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(models.PermCatalogEdit))
				r.Post("/", h.Categories.Create)
				r.Post("/reorder", h.Categories.Reorder)
				r.Put("/{id}", h.Categories.Update)
			})
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", h.Orders.List)
			r.Get("/{id}", h.Orders.Detail)
			r.Get("/items/{itemID}/workflow", h.Orders.ItemWorkflow)

			// Transition permissions are enforced inside the engine; the
			// route itself only needs a session.
			r.Put("/items/{itemID}/workflow", h.Orders.ItemTransition)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(models.PermOrderEdit))
				r.Put("/{id}/items", h.Orders.UpdateItems)
				r.Post("/{id}/shipping-status", h.Orders.AdvanceShippingStatus)
				r.Post("/{id}/shipping/estimate", h.Orders.EstimateShipping)
			})
		})

		r.Route("/coupons", func(r chi.Router) {
			r.Get("/", h.Coupons.List)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(models.PermCouponEdit))
				r.Post("/", h.Coupons.Create)
				r.Put("/{id}", h.Coupons.Update)
			})
		})

		r.Route("/banners", func(r chi.Router) {
			r.Get("/", h.Banners.List)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(models.PermCatalogEdit))
				r.Post("/", h.Banners.Create)
				r.Put("/{id}", h.Banners.Update)
				r.Delete("/{id}", h.Banners.Delete)
			})
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", h.Notifications.List)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(models.PermCatalogEdit))
				r.Post("/", h.Notifications.Create)
				r.Post("/{id}/publish", h.Notifications.Publish)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(middleware.RequirePermission(models.PermUserManage))
			r.Get("/", h.Users.List)
			r.Post("/", h.Users.Create)
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
