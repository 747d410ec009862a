package security

import (
	"testing"
	"time"
)

func TestTokenStore_IssueAndVerify(t *testing.T) {
	ts := NewTokenStore(time.Hour, nil)

	token := ts.Issue("sess-1")
	if token == "" {
		t.Fatal("Issue() returned empty token")
	}
	if len(token) != tokenBytes*2 {
		t.Errorf("token length = %d, want %d", len(token), tokenBytes*2)
	}

	if !ts.Verify("sess-1", token) {
		t.Error("Verify() = false for freshly issued token")
	}
	if ts.Verify("sess-1", "forged") {
		t.Error("Verify() = true for forged token")
	}
	if ts.Verify("sess-2", token) {
		t.Error("Verify() = true for wrong session")
	}
	if ts.Verify("", token) {
		t.Error("Verify() = true for empty session ID")
	}
	if ts.Verify("sess-1", "") {
		t.Error("Verify() = true for empty token")
	}
}

func TestTokenStore_RotationInvalidatesPrevious(t *testing.T) {
	ts := NewTokenStore(time.Hour, nil)

	first := ts.Issue("sess-1")
	second := ts.Issue("sess-1")

	if first == second {
		t.Error("rotation returned the same token")
	}
	if ts.Verify("sess-1", first) {
		t.Error("old token still verifies after rotation")
	}
	if !ts.Verify("sess-1", second) {
		t.Error("rotated token does not verify")
	}
}

func TestTokenStore_AgeUsesInjectedClock(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ts := NewTokenStore(time.Hour, func() time.Time { return now })

	ts.Issue("sess-1")

	age, ok := ts.Age("sess-1")
	if !ok {
		t.Fatal("Age() reported unknown session")
	}
	if age != 0 {
		t.Errorf("age = %v, want 0", age)
	}

	now = now.Add(5 * time.Second)
	age, _ = ts.Age("sess-1")
	if age != 5*time.Second {
		t.Errorf("age = %v, want 5s", age)
	}

	if _, ok := ts.Age("unknown"); ok {
		t.Error("Age() = ok for unknown session")
	}
}

func TestTokenStore_RotationResetsAge(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ts := NewTokenStore(time.Hour, func() time.Time { return now })

	ts.Issue("sess-1")
	now = now.Add(30 * time.Second)
	ts.Issue("sess-1")

	age, ok := ts.Age("sess-1")
	if !ok {
		t.Fatal("Age() reported unknown session")
	}
	if age != 0 {
		t.Errorf("age after rotation = %v, want 0", age)
	}
}

func TestTokenStore_ExpiryIsExact(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ts := NewTokenStore(time.Hour, func() time.Time { return now })

	token := ts.Issue("sess-1")

	now = now.Add(time.Hour)
	if !ts.Verify("sess-1", token) {
		t.Error("token rejected at exactly ttl, want accepted")
	}

	// Past the ttl the token must fail even before the cleanup ticker runs.
	now = now.Add(time.Second)
	if ts.Verify("sess-1", token) {
		t.Error("token older than ttl still verifies")
	}

	// Reissuing restores the session.
	fresh := ts.Issue("sess-1")
	if !ts.Verify("sess-1", fresh) {
		t.Error("freshly issued token does not verify after expiry")
	}
}

func TestNewSessionID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewSessionID()
		if len(id) != sessionIDBytes*2 {
			t.Fatalf("session ID length = %d, want %d", len(id), sessionIDBytes*2)
		}
		if seen[id] {
			t.Fatalf("duplicate session ID generated: %s", id)
		}
		seen[id] = true
	}
}
