package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"flipquiz/internal/config"
	"flipquiz/internal/store"
)

func TestSessionRoundTrip(t *testing.T) {
	sessions := NewSessions("secret", time.Hour)
	identity := store.Identity{UID: "google:1", Email: "a@example.com", DisplayName: "Ada", PhotoURL: "http://img"}
	token, err := sessions.Issue(identity)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	got, err := sessions.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got != identity {
		t.Fatalf("expected %#v, got %#v", identity, got)
	}
}

func TestSessionRejections(t *testing.T) {
	sessions := NewSessions("secret", time.Hour)
	token, err := sessions.Issue(store.Identity{UID: "u"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	cases := map[string]struct {
		sessions *Sessions
		token    string
	}{
		"empty":        {sessions, ""},
		"garbage":      {sessions, "not-a-token"},
		"wrong secret": {NewSessions("other", time.Hour), token},
		"tampered":     {sessions, token + "x"},
	}
	for name, tc := range cases {
		if _, err := tc.sessions.Verify(tc.token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("%s: expected invalid token, got %v", name, err)
		}
	}
}

func TestSessionExpires(t *testing.T) {
	sessions := NewSessions("secret", time.Minute)
	start := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	sessions.now = func() time.Time { return start }
	token, err := sessions.Issue(store.Identity{UID: "u"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	sessions.now = func() time.Time { return start.Add(2 * time.Minute) }
	if _, err := sessions.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected expired token rejected, got %v", err)
	}
}

func TestIssueRequiresSecret(t *testing.T) {
	if _, err := NewSessions("", time.Hour).Issue(store.Identity{UID: "u"}); err == nil {
		t.Fatalf("expected missing secret error")
	}
}

func TestGoogleConfiguration(t *testing.T) {
	if _, err := NewGoogle(config.Default()); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected not configured, got %v", err)
	}
	cfg := config.Default()
	cfg.GoogleClientID = "client"
	cfg.GoogleClientSecret = "secret"
	provider, err := NewGoogle(cfg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	url := provider.AuthCodeURL("state-1")
	for _, want := range []string{"accounts.google.com", "client_id=client", "state=state-1", "redirect_uri="} {
		if !strings.Contains(url, want) {
			t.Fatalf("expected %q in %s", want, url)
		}
	}
}
