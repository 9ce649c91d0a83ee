package auth

import (
	"errors"
	"strings"
	"testing"
)

func TestHashPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{"valid password", "correct horse battery", nil},
		{"minimum length", "12345678", nil},
		{"too short", "1234567", ErrPasswordTooShort},
		{"multibyte counted as characters", "ééééééé", ErrPasswordTooShort},
		{"too long", strings.Repeat("a", 73), ErrPasswordTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := HashPassword(tt.password, 4)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("HashPassword() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if hash == tt.password {
				t.Error("hash should not equal the password")
			}
			if !strings.HasPrefix(hash, "$2") {
				t.Errorf("expected a bcrypt hash, got %q", hash)
			}
		})
	}
}

func TestHashPassword_DefaultCost(t *testing.T) {
	hash, err := HashPassword("password123", 0)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if !strings.HasPrefix(hash, "$2a$10$") {
		t.Errorf("expected default cost 10, got %q", hash)
	}
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("password123", 4)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	if err := CheckPassword("password123", hash); err != nil {
		t.Errorf("CheckPassword() with the right password: %v", err)
	}
	if err := CheckPassword("password124", hash); !errors.Is(err, ErrInvalidPassword) {
		t.Errorf("CheckPassword() with a wrong password = %v, want ErrInvalidPassword", err)
	}
	if err := CheckPassword("password123", "not-a-hash"); err == nil || errors.Is(err, ErrInvalidPassword) {
		t.Errorf("CheckPassword() with a malformed hash = %v, want a non-credential error", err)
	}
}

func TestGenerateSecret(t *testing.T) {
	a, err := GenerateSecret()
	if err != nil {
		t.Fatalf("GenerateSecret() error = %v", err)
	}
	b, _ := GenerateSecret()

	if len(a) != 64 {
		t.Errorf("expected 64 hex characters, got %d", len(a))
	}
	if a == b {
		t.Error("secrets should differ")
	}
}
