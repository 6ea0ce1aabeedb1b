// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"

	"shopadmin/internal/apperr"
	"shopadmin/internal/middleware"
	"shopadmin/internal/session"
	"shopadmin/internal/store"
)

// totpIssuer labels the TOTP enrollment in authenticator apps.
const totpIssuer = "ShopAdmin"

// Auth groups all authentication-related HTTP handlers.
type Auth struct {
	sessions  *session.Store
	userStore *store.UserStore
	workflows *store.WorkflowStore
}

// NewAuth creates a new Auth handler group.
func NewAuth(sessions *session.Store, userStore *store.UserStore, workflows *store.WorkflowStore) *Auth {
	return &Auth{
		sessions:  sessions,
		userStore: userStore,
		workflows: workflows,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	DisplayName string `json:"display_name"`
	RoleKey     string `json:"role_key"`
	// NextStep tells the frontend where to send the user: "setup" for
	// first-time 2FA enrollment, "verify" otherwise.
	NextStep string `json:"next_step"`
}

// Login validates credentials and opens a session. The role's permission
// set is resolved once here and carried in the session for the lifetime of
// the login. 2FA is still pending after this call.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, fmt.Errorf("%w: email and password are required", apperr.ErrInvalidInput))
		return
	}

	user, err := a.userStore.FindByEmail(req.Email)
	if err != nil {
		slog.Error("login lookup failed", "error", err)
		writeError(w, err)
		return
	}
	if user == nil || !a.userStore.CheckPassword(user, req.Password) {
		writeError(w, fmt.Errorf("%w: invalid email or password", apperr.ErrUnauthorized))
		return
	}

	perms, err := a.workflows.PermissionsForRole(user.RoleKey)
	if err != nil {
		slog.Error("permission resolve failed", "error", err, "role", user.RoleKey)
		writeError(w, err)
		return
	}

	// TwoFADone starts as false — the user must complete 2FA before the
	// protected routes open up.
	_, err = a.sessions.Create(r.Context(), w, &session.Data{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		RoleKey:     user.RoleKey,
		Permissions: perms,
		TwoFADone:   false,
	})
	if err != nil {
		slog.Error("session create failed", "error", err)
		writeError(w, err)
		return
	}

	next := "verify"
	if !user.TOTPEnabled {
		next = "setup"
	}
	writeJSON(w, http.StatusOK, loginResponse{
		DisplayName: user.DisplayName,
		RoleKey:     user.RoleKey,
		NextStep:    next,
	})
}

// Logout destroys the session.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	a.sessions.Destroy(r.Context(), w, r)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type twoFASetupResponse struct {
	Secret string `json:"secret"`
	QRCode string `json:"qr_code"` // base64-encoded PNG
}

// TwoFASetup generates a fresh TOTP secret for the logged-in user, stores
// it, and returns the provisioning QR code. Calling it again before
// verification rotates the secret.
func (a *Auth) TwoFASetup(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		writeError(w, fmt.Errorf("%w: authentication required", apperr.ErrUnauthorized))
		return
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: sess.Email,
	})
	if err != nil {
		slog.Error("totp generate failed", "error", err)
		writeError(w, err)
		return
	}

	if err := a.userStore.SetTOTPSecret(sess.UserID, key.Secret()); err != nil {
		slog.Error("save totp secret failed", "error", err)
		writeError(w, err)
		return
	}

	qrPNG, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		slog.Error("qr code generation failed", "error", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, twoFASetupResponse{
		Secret: key.Secret(),
		QRCode: base64.StdEncoding.EncodeToString(qrPNG),
	})
}

type twoFAVerifyRequest struct {
	Code string `json:"code"`
}

// TwoFAVerify validates the TOTP code and completes authentication. On
// first-time setup the secret is also enabled.
func (a *Auth) TwoFAVerify(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		writeError(w, fmt.Errorf("%w: authentication required", apperr.ErrUnauthorized))
		return
	}

	var req twoFAVerifyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := a.userStore.FindByID(sess.UserID)
	if err != nil || user == nil {
		slog.Error("user lookup for 2fa failed", "error", err)
		writeError(w, fmt.Errorf("%w: user", apperr.ErrNotFound))
		return
	}
	if user.TOTPSecret == "" {
		writeError(w, fmt.Errorf("%w: 2fa not set up", apperr.ErrInvalidInput))
		return
	}

	if !totp.Validate(req.Code, user.TOTPSecret) {
		writeError(w, fmt.Errorf("%w: invalid code", apperr.ErrUnauthorized))
		return
	}

	if !user.TOTPEnabled {
		if err := a.userStore.EnableTOTP(user.ID); err != nil {
			slog.Error("enable totp failed", "error", err)
			writeError(w, err)
			return
		}
	}

	sess.TwoFADone = true
	if err := a.sessions.Update(r.Context(), r, sess); err != nil {
		slog.Error("session update failed", "error", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
