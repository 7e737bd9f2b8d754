package internal

import "testing"

func TestNewVerificationCode(t *testing.T) {
	seen := make(map[string]bool)

	for i := 0; i < 100; i++ {
		code, err := NewVerificationCode()
		if err != nil {
			t.Fatalf("NewVerificationCode failed: %v", err)
		}
		if len(code) != CodeDigits {
			t.Fatalf("expected %d digits, got %q", CodeDigits, code)
		}
		for _, r := range code {
			if r < '0' || r > '9' {
				t.Fatalf("expected digits only, got %q", code)
			}
		}
		seen[code] = true
	}

	// 100 draws from a million values colliding down to a handful would
	// indicate a broken generator.
	if len(seen) < 90 {
		t.Fatalf("suspiciously many collisions: %d distinct of 100", len(seen))
	}
}
