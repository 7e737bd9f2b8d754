package token

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func testCodec(t *testing.T) *Codec {
	t.Helper()

	codec, err := NewCodec(Config{
		Secret: []byte("0123456789abcdef0123456789abcdef"),
		Issuer: "codec-test",
	})
	if err != nil {
		t.Fatalf("NewCodec failed: %v", err)
	}
	return codec
}

func TestNewCodecRejectsShortSecret(t *testing.T) {
	_, err := NewCodec(Config{Secret: []byte("short"), Issuer: "x"})
	if err == nil {
		t.Fatal("expected error for short secret")
	}
}

func TestMintVerifyRoundTrip(t *testing.T) {
	codec := testCodec(t)

	signed, err := codec.Mint(42, "alice@example.com", KindAccess, time.Minute)
	if err != nil {
		t.Fatalf("Mint failed: %v", err)
	}

	claims, err := codec.Verify(signed)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if claims.Kind != KindAccess {
		t.Fatalf("expected access kind, got %q", claims.Kind)
	}
	if claims.Email != "alice@example.com" {
		t.Fatalf("expected email claim, got %q", claims.Email)
	}

	id, err := claims.PrincipalID()
	if err != nil {
		t.Fatalf("PrincipalID failed: %v", err)
	}
	if id != 42 {
		t.Fatalf("expected principal 42, got %d", id)
	}
}

func TestMintRefreshOmitsEmail(t *testing.T) {
	codec := testCodec(t)

	signed, err := codec.Mint(7, "alice@example.com", KindRefresh, time.Minute)
	if err != nil {
		t.Fatalf("Mint failed: %v", err)
	}

	claims, err := codec.Verify(signed)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if claims.Email != "" {
		t.Fatalf("refresh token must not carry email, got %q", claims.Email)
	}
	if claims.Kind != KindRefresh {
		t.Fatalf("expected refresh kind, got %q", claims.Kind)
	}
}

func TestMintedTokensAreDistinct(t *testing.T) {
	codec := testCodec(t)

	a, err := codec.Mint(1, "a@example.com", KindAccess, time.Minute)
	if err != nil {
		t.Fatalf("Mint failed: %v", err)
	}
	b, err := codec.Mint(1, "a@example.com", KindAccess, time.Minute)
	if err != nil {
		t.Fatalf("Mint failed: %v", err)
	}
	if a == b {
		t.Fatal("two tokens minted for the same principal must differ")
	}
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	codec := testCodec(t)

	signed, err := codec.Mint(1, "a@example.com", KindAccess, time.Minute)
	if err != nil {
		t.Fatalf("Mint failed: %v", err)
	}

	parts := strings.Split(signed, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected JWT shape: %q", signed)
	}
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	if _, err := codec.Verify(tampered); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	codec := testCodec(t)
	other, err := NewCodec(Config{
		Secret: []byte("ffffffffffffffffffffffffffffffff"),
		Issuer: "codec-test",
	})
	if err != nil {
		t.Fatalf("NewCodec failed: %v", err)
	}

	signed, err := other.Mint(1, "", KindAccess, time.Minute)
	if err != nil {
		t.Fatalf("Mint failed: %v", err)
	}

	if _, err := codec.Verify(signed); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestVerifyRejectsWrongIssuer(t *testing.T) {
	codec := testCodec(t)
	other, err := NewCodec(Config{
		Secret: []byte("0123456789abcdef0123456789abcdef"),
		Issuer: "someone-else",
	})
	if err != nil {
		t.Fatalf("NewCodec failed: %v", err)
	}

	signed, err := other.Mint(1, "", KindAccess, time.Minute)
	if err != nil {
		t.Fatalf("Mint failed: %v", err)
	}

	if _, err := codec.Verify(signed); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	codec := testCodec(t)

	signed, err := codec.Mint(1, "", KindAccess, time.Millisecond)
	if err != nil {
		t.Fatalf("Mint failed: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	if _, err := codec.Verify(signed); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
}

func TestVerifyMalformedInput(t *testing.T) {
	codec := testCodec(t)

	for _, input := range []string{"", "garbage", "a.b"} {
		if _, err := codec.Verify(input); !errors.Is(err, ErrMalformed) {
			t.Fatalf("input %q: expected ErrMalformed, got %v", input, err)
		}
	}
}

func TestVerifyRejectsUnsignedAlgorithm(t *testing.T) {
	codec := testCodec(t)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		Kind: KindAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "codec-test",
			Subject:   "1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	})
	signed, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("SignedString failed: %v", err)
	}

	if _, err := codec.Verify(signed); err == nil {
		t.Fatal("expected rejection of alg=none token")
	}
}

func TestVerifyRejectsUnknownKind(t *testing.T) {
	codec := testCodec(t)

	raw := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Kind: Kind("session"),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "codec-test",
			Subject:   "1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	})
	signed, err := raw.SignedString([]byte("0123456789abcdef0123456789abcdef"))
	if err != nil {
		t.Fatalf("SignedString failed: %v", err)
	}

	if _, err := codec.Verify(signed); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for unknown kind, got %v", err)
	}
}

func TestRemainingTTL(t *testing.T) {
	codec := testCodec(t)

	signed, err := codec.Mint(1, "", KindAccess, time.Hour)
	if err != nil {
		t.Fatalf("Mint failed: %v", err)
	}

	ttl := codec.RemainingTTL(signed)
	if ttl <= 59*time.Minute || ttl > time.Hour {
		t.Fatalf("expected remaining TTL near an hour, got %v", ttl)
	}
}

func TestRemainingTTLExpiredIsZero(t *testing.T) {
	codec := testCodec(t)

	signed, err := codec.Mint(1, "", KindAccess, time.Millisecond)
	if err != nil {
		t.Fatalf("Mint failed: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	if ttl := codec.RemainingTTL(signed); ttl != 0 {
		t.Fatalf("expected zero TTL for expired token, got %v", ttl)
	}
}

func TestRemainingTTLGarbageIsZero(t *testing.T) {
	codec := testCodec(t)

	if ttl := codec.RemainingTTL("not-a-token"); ttl != 0 {
		t.Fatalf("expected zero TTL for garbage, got %v", ttl)
	}
}
