package main

import (
	"errors"
	"strings"
	"testing"
)

func TestGuestTokenRoundTrip(t *testing.T) {
	db := openTestDB(t)
	a := NewAuth(db, "")

	id, token, err := a.RegisterGuest("Guest_ab")
	if err != nil {
		t.Fatal(err)
	}
	gotID, name, err := a.ValidateToken(token)
	if err != nil {
		t.Fatal(err)
	}
	if gotID != id || name != "Guest_ab" {
		t.Errorf("expected %d/Guest_ab, got %d/%s", id, gotID, name)
	}
}

func TestSecretPersists(t *testing.T) {
	db := openTestDB(t)
	_, token, err := NewAuth(db, "").RegisterGuest("Guest_cd")
	if err != nil {
		t.Fatal(err)
	}
	// A second Auth on the same database accepts the token
	if _, _, err := NewAuth(db, "").ValidateToken(token); err != nil {
		t.Errorf("token rejected after restart: %v", err)
	}
	// An explicit secret overrides the stored one
	if _, _, err := NewAuth(db, "another-secret").ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTamperedToken(t *testing.T) {
	db := openTestDB(t)
	a := NewAuth(db, "")
	_, token, _ := a.RegisterGuest("Guest_ef")

	parts := strings.Split(token, ".")
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	parts[2] = string(sig)
	if _, _, err := a.ValidateToken(strings.Join(parts, ".")); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
	if _, _, err := a.ValidateToken("garbage"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestRegisterWithoutDB(t *testing.T) {
	a := NewAuth(nil, "")
	if _, _, err := a.RegisterGuest("Guest_00"); err == nil {
		t.Error("expected error without a database")
	}
}

func TestGenerateGuestName(t *testing.T) {
	name := GenerateGuestName()
	if !strings.HasPrefix(name, "Guest_") || len(name) != len("Guest_")+6 {
		t.Errorf("unexpected guest name %q", name)
	}
}
