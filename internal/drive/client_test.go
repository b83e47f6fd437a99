package drive

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const testCredentials = `{"installed":{"client_id":"id.apps.googleusercontent.com","client_secret":"secret",
"auth_uri":"https://accounts.google.com/o/oauth2/auth","token_uri":"https://oauth2.googleapis.com/token",
"redirect_uris":["http://localhost"]}}`

func newTestClient(t *testing.T) (*Client, string) {
	t.Helper()
	dir := t.TempDir()
	creds := filepath.Join(dir, "oauth2_credentials.json")
	if err := os.WriteFile(creds, []byte(testCredentials), 0o600); err != nil {
		t.Fatal(err)
	}
	tokenFile := filepath.Join(dir, "drive_token.json")
	c, err := NewClient(creds, tokenFile, time.Second)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return c, tokenFile
}

func TestIsAuthorized(t *testing.T) {
	c, tokenFile := newTestClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	if c.IsAuthorized(ctx) {
		t.Error("IsAuthorized() without token file should be false")
	}

	os.WriteFile(tokenFile, []byte("not json"), 0o600)
	if c.IsAuthorized(ctx) {
		t.Error("IsAuthorized() with corrupt token should be false")
	}

	expiry := time.Now().Add(-time.Hour).UTC().Format(time.RFC3339)
	os.WriteFile(tokenFile, []byte(`{"access_token":"old","expiry":"`+expiry+`"}`), 0o600)
	if c.IsAuthorized(ctx) {
		t.Error("expired token without refresh token should not be authorized")
	}

	os.WriteFile(tokenFile, []byte(`{"access_token":"old","refresh_token":"r","expiry":"`+expiry+`"}`), 0o600)
	if !c.IsAuthorized(ctx) {
		t.Error("refreshable token should be authorized")
	}
}

func TestNewClientErrors(t *testing.T) {
	if _, err := NewClient(filepath.Join(t.TempDir(), "missing.json"), "tok", 0); err == nil {
		t.Error("NewClient() with missing credentials should fail")
	}

	bad := filepath.Join(t.TempDir(), "bad.json")
	os.WriteFile(bad, []byte(`{"service_account":true}`), 0o600)
	if _, err := NewClient(bad, "tok", 0); err == nil {
		t.Error("NewClient() with non-oauth credentials should fail")
	}
}

func TestEscapeQuery(t *testing.T) {
	if got := escapeQuery(`Bob's`); got != `Bob\'s` {
		t.Errorf("escapeQuery() = %q", got)
	}
}
