package auth

import (
	"errors"
	"testing"
	"time"
)

func TestTokenRoundtrip(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)

	token, err := m.Generate("member-1", RoleMember)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims.Subject != "member-1" {
		t.Errorf("Subject = %s, want member-1", claims.Subject)
	}
	if claims.Role != RoleMember {
		t.Errorf("Role = %s, want member", claims.Role)
	}
}

func TestValidateRejectsBadTokens(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)

	if _, err := m.Validate("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Validate(garbage) = %v, want ErrInvalidToken", err)
	}

	// Tokens signed with another key must not validate.
	other := NewJWTManager("other-secret", time.Hour)
	token, err := other.Generate("member-1", RoleAdmin)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if _, err := m.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Validate(wrong key) = %v, want ErrInvalidToken", err)
	}
}

func TestExpiredToken(t *testing.T) {
	m := NewJWTManager("test-secret", -time.Minute)

	token, err := m.Generate("member-1", RoleMember)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if _, err := m.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Validate(expired) = %v, want ErrInvalidToken", err)
	}
}

func TestPasswordHashing(t *testing.T) {
	if err := ValidatePassword("short"); !errors.Is(err, ErrWeakPassword) {
		t.Errorf("ValidatePassword(short) = %v, want ErrWeakPassword", err)
	}

	hash, err := HashPassword("correct horse battery")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if err := VerifyPassword(hash, "correct horse battery"); err != nil {
		t.Errorf("VerifyPassword(correct) = %v", err)
	}
	if err := VerifyPassword(hash, "wrong"); err == nil {
		t.Error("VerifyPassword(wrong) succeeded")
	}
}
