// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"shopadmin/internal/apperr"
	"shopadmin/internal/models"
)

func uniqueEmail() string {
	return "test-" + uuid.NewString()[:8] + "@shopadmin.local"
}

func createUser(t *testing.T, db *sql.DB, s *UserStore, role string) *models.User {
	t.Helper()
	u, err := s.Create(uniqueEmail(), "correct-horse-battery", "Test User", role)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	t.Cleanup(func() {
		db.Exec(`DELETE FROM cms_users WHERE id = $1`, u.ID)
	})
	return u
}

func TestUserCreateAndLookup(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)

	u := createUser(t, db, s, "operator")
	if u.ID == uuid.Nil {
		t.Fatal("expected an assigned UUID")
	}
	if u.RoleKey != "operator" || u.TOTPEnabled {
		t.Fatalf("created user: %+v", u)
	}
	// The hash must never be the plain password.
	if strings.Contains(u.PasswordHash, "correct-horse") {
		t.Fatal("password stored in the clear")
	}

	byEmail, err := s.FindByEmail(u.Email)
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	if byEmail == nil || byEmail.ID != u.ID {
		t.Fatalf("by email: %+v", byEmail)
	}

	byID, err := s.FindByID(u.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if byID == nil || byID.Email != u.Email {
		t.Fatalf("by id: %+v", byID)
	}

	missing, err := s.FindByEmail("nobody@shopadmin.local")
	if err != nil {
		t.Fatalf("FindByEmail missing: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for an unknown email")
	}
}

func TestUserDuplicateEmailConflicts(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)

	u := createUser(t, db, s, "operator")
	_, err := s.Create(u.Email, "another-password-1", "Other", "operator")
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestUserCheckPassword(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)

	u := createUser(t, db, s, "operator")
	if !s.CheckPassword(u, "correct-horse-battery") {
		t.Error("correct password rejected")
	}
	if s.CheckPassword(u, "wrong-password") {
		t.Error("wrong password accepted")
	}
}

func TestUserTOTPLifecycle(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)

	u := createUser(t, db, s, "admin")

	if err := s.SetTOTPSecret(u.ID, "JBSWY3DPEHPK3PXP"); err != nil {
		t.Fatalf("SetTOTPSecret: %v", err)
	}
	after, _ := s.FindByID(u.ID)
	if after.TOTPSecret != "JBSWY3DPEHPK3PXP" {
		t.Errorf("secret: got %q", after.TOTPSecret)
	}
	if after.TOTPEnabled {
		t.Error("setting the secret must not enable 2FA yet")
	}

	if err := s.EnableTOTP(u.ID); err != nil {
		t.Fatalf("EnableTOTP: %v", err)
	}
	after, _ = s.FindByID(u.ID)
	if !after.TOTPEnabled {
		t.Error("2FA not enabled")
	}
}
