package auth

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestRedirectURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"urn:ietf:wg:oauth:2.0:oob", "http://localhost:6789/oauth2callback"},
		{"", "http://localhost:6789/oauth2callback"},
		{"http://localhost", "http://localhost:6789"},
		{"http://localhost:8080/cb", "http://localhost:6789/cb"},
		{"http://127.0.0.1:6789/cb", "http://127.0.0.1:6789/cb"},
		{"https://example.com/cb", "https://example.com/cb"},
	}
	for _, tt := range tests {
		if got := redirectURL(tt.in); got != tt.want {
			t.Errorf("redirectURL(%q): Expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestTokenRoundTrip(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("LIFEBETTER_HOME", dir)

	path, err := TokenPath()
	if err != nil {
		t.Fatalf("TokenPath() error: %v", err)
	}
	if path != filepath.Join(dir, TokenFile) {
		t.Errorf("Expected token under %s, got %s", dir, path)
	}

	tok := &oauth2.Token{AccessToken: "a", RefreshToken: "r", Expiry: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)}
	if err := saveToken(path, tok); err != nil {
		t.Fatalf("saveToken() error: %v", err)
	}
	got, err := tokenFromFile(path)
	if err != nil {
		t.Fatalf("tokenFromFile() error: %v", err)
	}
	if got.AccessToken != "a" || got.RefreshToken != "r" {
		t.Errorf("Expected saved token, got %+v", got)
	}

	if err := Reset(); err != nil {
		t.Fatalf("Reset() error: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("Expected token removed, got %v", err)
	}
	if err := Reset(); err != nil {
		t.Errorf("Expected Reset on missing token to succeed, got %v", err)
	}
}

type staticSource struct{ tok *oauth2.Token }

func (s staticSource) Token() (*oauth2.Token, error) { return s.tok, nil }

func TestSavingTokenSourcePersistsRefresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), TokenFile)
	old := &oauth2.Token{AccessToken: "old"}
	fresh := &oauth2.Token{AccessToken: "new", RefreshToken: "r"}

	src := &savingTokenSource{base: staticSource{fresh}, path: path, last: old}
	if _, err := src.Token(); err != nil {
		t.Fatalf("Token() error: %v", err)
	}
	got, err := tokenFromFile(path)
	if err != nil {
		t.Fatalf("Expected refreshed token on disk: %v", err)
	}
	if got.AccessToken != "new" {
		t.Errorf("Expected access token new, got %s", got.AccessToken)
	}
}
