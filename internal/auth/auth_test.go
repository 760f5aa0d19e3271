package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/mutualaid/internal/models"
	"github.com/mmynk/mutualaid/internal/storage/memory"
)

func TestPasswordAuthenticator(t *testing.T) {
	store := memory.New()
	a := NewPasswordAuthenticator(store).WithCost(bcrypt.MinCost)
	ctx := context.Background()

	t.Run("register normalizes email", func(t *testing.T) {
		user, err := a.Register(ctx, " Alice@Example.com ", "Alice", "correct horse")
		if err != nil {
			t.Fatalf("Register failed: %v", err)
		}
		if user.Email != "alice@example.com" {
			t.Errorf("Email: expected alice@example.com, got %s", user.Email)
		}
		if user.PasswordHash == "" || user.PasswordHash == "correct horse" {
			t.Error("expected a bcrypt hash")
		}
	})

	tests := []struct {
		name     string
		email    string
		userName string
		password string
		want     error
	}{
		{"duplicate email", "alice@example.com", "Other", "password123", ErrEmailExists},
		{"weak password", "bob@example.com", "Bob", "short", ErrWeakPassword},
		{"bad email", "bob", "Bob", "password123", ErrInvalidEmail},
		{"empty name", "bob@example.com", "  ", "password123", ErrNameRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Register(ctx, tt.email, tt.userName, tt.password)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}

	t.Run("authenticate", func(t *testing.T) {
		user, err := a.Authenticate(ctx, "ALICE@example.com", "correct horse")
		if err != nil {
			t.Fatalf("Authenticate failed: %v", err)
		}
		if user.Name != "Alice" {
			t.Errorf("Name: expected Alice, got %s", user.Name)
		}
		if _, err := a.Authenticate(ctx, "alice@example.com", "wrong password"); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
		if _, err := a.Authenticate(ctx, "nobody@example.com", "whatever1"); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials for unknown user, got %v", err)
		}
	})
}

func TestJWTManager(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)
	user := &models.User{ID: "user-1", Email: "a@example.com"}

	token, err := m.Generate(user)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims.UserID != "user-1" || claims.Email != "a@example.com" {
		t.Errorf("unexpected claims: %+v", claims)
	}

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTManager("other-secret", time.Hour)
		if _, err := other.Validate(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("expired", func(t *testing.T) {
		expired := NewJWTManager("test-secret", -time.Minute)
		tok, err := expired.Generate(user)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if _, err := m.Validate(tok); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("none algorithm", func(t *testing.T) {
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: "user-1"})
		tok, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		if err != nil {
			t.Fatalf("SignedString failed: %v", err)
		}
		if _, err := m.Validate(tok); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("garbage", func(t *testing.T) {
		if _, err := m.Validate("not-a-token"); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})
}
