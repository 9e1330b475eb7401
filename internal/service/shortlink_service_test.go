package service

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestShortlinkSignResolveRoundTrip(t *testing.T) {
	svc := NewShortlinkService("test-secret-0123456789abcdef0123456789", 0)

	target := "https://shopee.vn/p/123?ref=abc"
	token, err := svc.Sign(target)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	got, err := svc.Resolve(token)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if got != target {
		t.Fatalf("resolve want %q got %q", target, got)
	}
}

func TestShortlinkRejectsTamperedToken(t *testing.T) {
	svc := NewShortlinkService("test-secret-0123456789abcdef0123456789", 0)

	token, err := svc.Sign("https://tiki.vn/p/9")
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	body, sig, _ := strings.Cut(token, ".")

	tampered := []string{
		"",
		"no-dot-token",
		body,
		body + ".deadbeef",
		"eyJ1IjoiaHR0cHM6Ly9ldmlsLmV4YW1wbGUifQ" + "." + sig,
	}
	for _, tok := range tampered {
		if _, err := svc.Resolve(tok); !errors.Is(err, ErrTokenInvalid) {
			t.Fatalf("token %q: want ErrTokenInvalid got %v", tok, err)
		}
	}

	// 换密钥后旧令牌失效
	other := NewShortlinkService("another-secret-fedcba9876543210fedcba98", 0)
	if _, err := other.Resolve(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("cross-secret resolve want ErrTokenInvalid got %v", err)
	}
}

func TestShortlinkTTLExpiry(t *testing.T) {
	svc := NewShortlinkService("test-secret-0123456789abcdef0123456789", time.Hour)

	issued := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issued }
	token, err := svc.Sign("https://lazada.vn/p/7")
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	// 有效期内可解
	svc.now = func() time.Time { return issued.Add(30 * time.Minute) }
	if _, err := svc.Resolve(token); err != nil {
		t.Fatalf("resolve within ttl failed: %v", err)
	}

	// 超期拒绝
	svc.now = func() time.Time { return issued.Add(2 * time.Hour) }
	if _, err := svc.Resolve(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("resolve past ttl want ErrTokenExpired got %v", err)
	}
}

func TestShortlinkRejectsEmptyTarget(t *testing.T) {
	svc := NewShortlinkService("test-secret-0123456789abcdef0123456789", 0)
	if _, err := svc.Sign("   "); !errors.Is(err, ErrInvalidParam) {
		t.Fatalf("sign empty target want ErrInvalidParam got %v", err)
	}
}
