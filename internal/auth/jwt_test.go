package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/cwrk-planet/chat-service/internal/domain"
)

func TestVerifyRoundTrip(t *testing.T) {
	v := NewVerifier("test-secret")
	token, err := v.Sign(Identity{UserID: "u1", Name: "alice"}, time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	id, err := v.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if id.UserID != "u1" || id.Name != "alice" {
		t.Fatalf("unexpected identity: %+v", id)
	}
}

func TestVerifyRejectsBadInput(t *testing.T) {
	v := NewVerifier("test-secret")

	if _, err := v.Verify("not-a-token"); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("garbage token: %v", err)
	}

	expired, err := v.Sign(Identity{UserID: "u1"}, -time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := v.Verify(expired); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expired token: %v", err)
	}

	other, err := NewVerifier("other-secret").Sign(Identity{UserID: "u1"}, time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := v.Verify(other); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("wrong secret: %v", err)
	}
}

func TestVerifyRequiresSubject(t *testing.T) {
	v := NewVerifier("test-secret")
	token, err := v.Sign(Identity{Name: "ghost"}, time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := v.Verify(token); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("subject-less token must be rejected: %v", err)
	}
}
