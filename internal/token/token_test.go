package token

import (
	"testing"
	"time"
)

func TestMintAndParse(t *testing.T) {
	t.Parallel()

	c := NewCodec([]byte("test-secret"))

	tok, err := c.Mint(42, ClassAccess, time.Hour)
	if err != nil {
		t.Fatalf("Mint error: %v", err)
	}

	userID, err := c.Parse(tok, ClassAccess)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if userID != 42 {
		t.Fatalf("userID mismatch: got %d want 42", userID)
	}
}

func TestParseExpired(t *testing.T) {
	t.Parallel()

	c := NewCodec([]byte("test-secret"))

	tok, err := c.Mint(1, ClassAccess, -time.Second)
	if err != nil {
		t.Fatalf("Mint error: %v", err)
	}

	_, err = c.Parse(tok, ClassAccess)
	if err != ErrExpired {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
}

func TestParseWrongClass(t *testing.T) {
	t.Parallel()

	c := NewCodec([]byte("test-secret"))

	refresh, err := c.Mint(1, ClassRefresh, time.Hour)
	if err != nil {
		t.Fatalf("Mint error: %v", err)
	}
	if _, err := c.Parse(refresh, ClassAccess); err != ErrWrongClass {
		t.Fatalf("expected ErrWrongClass for refresh-as-access, got %v", err)
	}

	access, err := c.Mint(1, ClassAccess, time.Hour)
	if err != nil {
		t.Fatalf("Mint error: %v", err)
	}
	if _, err := c.Parse(access, ClassRefresh); err != ErrWrongClass {
		t.Fatalf("expected ErrWrongClass for access-as-refresh, got %v", err)
	}
}

func TestParseWrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := NewCodec([]byte("right-secret")).Mint(1, ClassAccess, time.Hour)
	if err != nil {
		t.Fatalf("Mint error: %v", err)
	}

	_, err = NewCodec([]byte("wrong-secret")).Parse(tok, ClassAccess)
	if err != ErrInvalid {
		t.Fatalf("expected ErrInvalid for bad signature, got %v", err)
	}
}

func TestParseMalformed(t *testing.T) {
	t.Parallel()

	c := NewCodec([]byte("k"))
	if _, err := c.Parse("not.a.jwt", ClassAccess); err != ErrInvalid {
		t.Fatalf("expected ErrInvalid for malformed token, got %v", err)
	}
}

func TestParseExpiredWrongClass(t *testing.T) {
	t.Parallel()

	// Expiry is checked before class, matching the parse order.
	c := NewCodec([]byte("test-secret"))
	tok, err := c.Mint(1, ClassRefresh, -time.Second)
	if err != nil {
		t.Fatalf("Mint error: %v", err)
	}
	if _, err := c.Parse(tok, ClassAccess); err != ErrExpired {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
}
