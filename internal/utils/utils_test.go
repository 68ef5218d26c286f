package utils

import (
	"errors"
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	signed, err := GenerateToken("secret", time.Hour, 42, "a@b.com")
	if err != nil {
		t.Fatal(err)
	}

	claims, err := ValidateToken("secret", signed)
	if err != nil {
		t.Fatal(err)
	}
	if claims.UserID != 42 || claims.Email != "a@b.com" {
		t.Errorf("claims = %d/%s, want 42/a@b.com", claims.UserID, claims.Email)
	}
	if claims.ID == "" {
		t.Error("expected a jti")
	}
}

func TestTokenWrongSecret(t *testing.T) {
	signed, _ := GenerateToken("secret", time.Hour, 1, "a@b.com")
	if _, err := ValidateToken("other", signed); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("err = %v, want ErrTokenInvalid", err)
	}
}

func TestTokenExpired(t *testing.T) {
	signed, _ := GenerateToken("secret", -time.Minute, 1, "a@b.com")
	if _, err := ValidateToken("secret", signed); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("err = %v, want ErrTokenExpired", err)
	}
}

func TestIsValidEmail(t *testing.T) {
	valid := []string{"a@b.com", "user.name@example.co.uk"}
	invalid := []string{"", "plain", "@b.com", "a@", "a b@c.com", "a@nodot"}
	for _, e := range valid {
		if !IsValidEmail(e) {
			t.Errorf("%q rejected, want accepted", e)
		}
	}
	for _, e := range invalid {
		if IsValidEmail(e) {
			t.Errorf("%q accepted, want rejected", e)
		}
	}
}

func TestIsValidPassword(t *testing.T) {
	if IsValidPassword("12345") {
		t.Error("5-char password accepted")
	}
	if !IsValidPassword("123456") {
		t.Error("6-char password rejected")
	}
}
