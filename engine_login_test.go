package authcore

import (
	"context"
	"errors"
	"testing"

	"github.com/suntcamp/authcore/internal/metrics"
)

func TestLoginSuccess(t *testing.T) {
	env := newTestEngine(t)
	p := env.seedUser(t, "alice@example.com", "correct-horse", "alice")

	res := env.login(t, "alice@example.com", "correct-horse")
	if res.PrincipalID != p.ID {
		t.Fatalf("expected principal %d, got %d", p.ID, res.PrincipalID)
	}
	if res.AccessToken == "" || res.RefreshToken == "" {
		t.Fatal("expected both tokens")
	}
	if res.AccessToken == res.RefreshToken {
		t.Fatal("access and refresh tokens must differ")
	}

	if got := env.engine.MetricsSnapshot().Counters[metrics.MetricLoginSuccess]; got != 1 {
		t.Fatalf("expected one login success counted, got %d", got)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	env := newTestEngine(t)

	_, err := env.engine.Login(context.Background(), "nobody@example.com", "whatever")
	if !errors.Is(err, ErrEmailNotRegistered) {
		t.Fatalf("expected ErrEmailNotRegistered, got %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	env := newTestEngine(t)
	env.seedUser(t, "alice@example.com", "correct-horse", "alice")

	_, err := env.engine.Login(context.Background(), "alice@example.com", "battery-staple")
	if !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("expected ErrInvalidPassword, got %v", err)
	}

	if got := env.engine.MetricsSnapshot().Counters[metrics.MetricLoginFailure]; got != 1 {
		t.Fatalf("expected one login failure counted, got %d", got)
	}
}

func TestLoginDisplacesPreviousSession(t *testing.T) {
	env := newTestEngine(t)
	env.seedUser(t, "alice@example.com", "correct-horse", "alice")

	first := env.login(t, "alice@example.com", "correct-horse")
	second := env.login(t, "alice@example.com", "correct-horse")

	// The displaced refresh token no longer rotates.
	_, err := env.engine.Refresh(context.Background(), first.RefreshToken, "")
	if !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected ErrInvalidRefreshToken for displaced token, got %v", err)
	}

	// The current one does.
	if _, err := env.engine.Refresh(context.Background(), second.RefreshToken, ""); err != nil {
		t.Fatalf("current refresh token rejected: %v", err)
	}
}

func TestLoginUserStoreFailure(t *testing.T) {
	env := newTestEngine(t)
	env.users.failAll = true

	_, err := env.engine.Login(context.Background(), "alice@example.com", "correct-horse")
	if !errors.Is(err, ErrInternal) {
		t.Fatalf("expected ErrInternal, got %v", err)
	}
}

func TestLoginThrottled(t *testing.T) {
	env := newTestEngine(t, func(cfg *Config) {
		cfg.Throttle.Enabled = true
		cfg.Throttle.MaxLoginAttempts = 2
	})
	env.seedUser(t, "alice@example.com", "correct-horse", "alice")
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := env.engine.Login(ctx, "alice@example.com", "wrong"); !errors.Is(err, ErrInvalidPassword) {
			t.Fatalf("attempt %d: expected ErrInvalidPassword, got %v", i, err)
		}
	}

	_, err := env.engine.Login(ctx, "alice@example.com", "correct-horse")
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestLoginSuccessResetsThrottle(t *testing.T) {
	env := newTestEngine(t, func(cfg *Config) {
		cfg.Throttle.Enabled = true
		cfg.Throttle.MaxLoginAttempts = 3
	})
	env.seedUser(t, "alice@example.com", "correct-horse", "alice")
	ctx := context.Background()

	if _, err := env.engine.Login(ctx, "alice@example.com", "wrong"); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("expected ErrInvalidPassword, got %v", err)
	}
	if _, err := env.engine.Login(ctx, "alice@example.com", "correct-horse"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	// The counter was reset; the full budget is available again.
	for i := 0; i < 2; i++ {
		if _, err := env.engine.Login(ctx, "alice@example.com", "wrong"); !errors.Is(err, ErrInvalidPassword) {
			t.Fatalf("post-reset attempt %d: expected ErrInvalidPassword, got %v", i, err)
		}
	}
}

func TestLoginExternalFirstSightCreatesPrincipal(t *testing.T) {
	env := newTestEngine(t)

	res, err := env.engine.LoginExternal(context.Background(), ExternalIdentity{
		ProviderID: "kakao-123",
		Email:      "alice@example.com",
		Username:   "alice",
	})
	if err != nil {
		t.Fatalf("LoginExternal failed: %v", err)
	}

	p, err := env.users.FindByExternalID(context.Background(), "kakao-123")
	if err != nil || p == nil {
		t.Fatalf("expected principal created, got %v, %v", p, err)
	}
	if p.ID != res.PrincipalID || p.PasswordHash != "" {
		t.Fatalf("unexpected principal: %+v", p)
	}
}

func TestLoginExternalRepeatRefreshesUsername(t *testing.T) {
	env := newTestEngine(t)
	ctx := context.Background()

	first, err := env.engine.LoginExternal(ctx, ExternalIdentity{
		ProviderID: "kakao-123",
		Email:      "alice@example.com",
		Username:   "alice",
	})
	if err != nil {
		t.Fatalf("LoginExternal failed: %v", err)
	}

	second, err := env.engine.LoginExternal(ctx, ExternalIdentity{
		ProviderID: "kakao-123",
		Email:      "alice@example.com",
		Username:   "alice-renamed",
	})
	if err != nil {
		t.Fatalf("repeat LoginExternal failed: %v", err)
	}
	if second.PrincipalID != first.PrincipalID {
		t.Fatalf("expected same principal, got %d and %d", first.PrincipalID, second.PrincipalID)
	}

	p, err := env.users.FindByID(ctx, second.PrincipalID)
	if err != nil || p == nil {
		t.Fatalf("lookup failed: %v, %v", p, err)
	}
	if p.Username != "alice-renamed" {
		t.Fatalf("expected refreshed username, got %q", p.Username)
	}
}

func TestLoginPasswordlessExternalAccount(t *testing.T) {
	env := newTestEngine(t)
	ctx := context.Background()

	if _, err := env.engine.LoginExternal(ctx, ExternalIdentity{
		ProviderID: "kakao-1",
		Email:      "ext@example.com",
		Username:   "ext",
	}); err != nil {
		t.Fatalf("LoginExternal failed: %v", err)
	}

	// The account exists but has no password hash; a password login is a
	// wrong password, not an internal failure.
	_, err := env.engine.Login(ctx, "ext@example.com", "whatever")
	if !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("expected ErrInvalidPassword, got %v", err)
	}
}

func TestLoginExternalIncompleteIdentity(t *testing.T) {
	env := newTestEngine(t)

	incomplete := []ExternalIdentity{
		{},
		{ProviderID: "kakao-123"},
		{ProviderID: "kakao-123", Email: "a@example.com", Username: "   "},
	}
	for i, identity := range incomplete {
		if _, err := env.engine.LoginExternal(context.Background(), identity); !errors.Is(err, ErrExternalIdentityIncomplete) {
			t.Fatalf("identity %d: expected ErrExternalIdentityIncomplete, got %v", i, err)
		}
	}
}
