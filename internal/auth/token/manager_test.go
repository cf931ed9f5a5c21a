package token

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/vecindo/vecindo/internal/db/models"
	"github.com/vecindo/vecindo/internal/secrets"
	"golang.org/x/oauth2"
	"gorm.io/gorm"
)

func newTestManager(t *testing.T) (*Manager, *gorm.DB, *secrets.Box) {
	t.Helper()
	dsn := fmt.Sprintf("file:token-test-%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Integration{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	box, err := secrets.NewBox([]byte("0123456789abcdef0123456789abcdef"))
	if err != nil {
		t.Fatalf("failed to create box: %v", err)
	}
	cfg := &oauth2.Config{ClientID: "id", ClientSecret: "secret"}
	return NewManager(db, box, cfg), db, box
}

func TestCredentials_NotConnected(t *testing.T) {
	mgr, _, _ := newTestManager(t)
	if _, _, err := mgr.Credentials("community-1"); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
}

func TestSaveAuthorized_RoundTrip(t *testing.T) {
	mgr, _, _ := newTestManager(t)

	tok := &oauth2.Token{
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		Expiry:       time.Now().Add(time.Hour).Truncate(time.Second),
	}
	if err := mgr.SaveAuthorized("community-1", "admin@example.com", []string{"scope-a", "scope-b"}, tok); err != nil {
		t.Fatalf("SaveAuthorized: %v", err)
	}

	integ, got, err := mgr.Credentials("community-1")
	if err != nil {
		t.Fatalf("Credentials: %v", err)
	}
	if got.AccessToken != "access-1" || got.RefreshToken != "refresh-1" {
		t.Errorf("decrypted token mismatch: %+v", got)
	}
	if integ.Email != "admin@example.com" {
		t.Errorf("email = %q", integ.Email)
	}
	if integ.Scopes != "scope-a scope-b" {
		t.Errorf("scopes = %q", integ.Scopes)
	}
	// Ensure the stored values are not plaintext.
	if integ.AccessToken == "access-1" || integ.RefreshToken == "refresh-1" {
		t.Error("tokens stored unencrypted")
	}
}

func TestSaveAuthorized_ReconnectUpsertsSingleRow(t *testing.T) {
	mgr, db, _ := newTestManager(t)

	first := &oauth2.Token{AccessToken: "access-1", RefreshToken: "refresh-1", Expiry: time.Now().Add(time.Hour)}
	if err := mgr.SaveAuthorized("community-1", "a@example.com", nil, first); err != nil {
		t.Fatalf("first SaveAuthorized: %v", err)
	}
	second := &oauth2.Token{AccessToken: "access-2", RefreshToken: "refresh-2", Expiry: time.Now().Add(time.Hour)}
	if err := mgr.SaveAuthorized("community-1", "a@example.com", nil, second); err != nil {
		t.Fatalf("second SaveAuthorized: %v", err)
	}

	var count int64
	db.Model(&models.Integration{}).Where("community_id = ?", "community-1").Count(&count)
	if count != 1 {
		t.Fatalf("expected 1 integration row after reconnect, got %d", count)
	}

	_, tok, err := mgr.Credentials("community-1")
	if err != nil {
		t.Fatalf("Credentials: %v", err)
	}
	if tok.AccessToken != "access-2" || tok.RefreshToken != "refresh-2" {
		t.Errorf("expected second credentials, got %+v", tok)
	}
}

func TestSaveAuthorized_PreservesRefreshTokenWhenAbsent(t *testing.T) {
	mgr, _, _ := newTestManager(t)

	first := &oauth2.Token{AccessToken: "access-1", RefreshToken: "refresh-1", Expiry: time.Now().Add(time.Hour)}
	if err := mgr.SaveAuthorized("community-1", "a@example.com", nil, first); err != nil {
		t.Fatalf("first SaveAuthorized: %v", err)
	}

	// Repeat consent: provider returns no refresh token.
	second := &oauth2.Token{AccessToken: "access-2", Expiry: time.Now().Add(time.Hour)}
	if err := mgr.SaveAuthorized("community-1", "a@example.com", nil, second); err != nil {
		t.Fatalf("second SaveAuthorized: %v", err)
	}

	_, tok, err := mgr.Credentials("community-1")
	if err != nil {
		t.Fatalf("Credentials: %v", err)
	}
	if tok.AccessToken != "access-2" {
		t.Errorf("access token not updated: %q", tok.AccessToken)
	}
	if tok.RefreshToken != "refresh-1" {
		t.Errorf("refresh token not preserved: %q", tok.RefreshToken)
	}
}

func TestPersistIfRotated_StoresNewAccessToken(t *testing.T) {
	mgr, _, _ := newTestManager(t)

	prior := &oauth2.Token{AccessToken: "access-1", RefreshToken: "refresh-1", Expiry: time.Now().Add(-time.Minute)}
	if err := mgr.SaveAuthorized("community-1", "a@example.com", nil, prior); err != nil {
		t.Fatalf("SaveAuthorized: %v", err)
	}

	rotated := &oauth2.Token{
		AccessToken: "access-2",
		Expiry:      time.Now().Add(time.Hour).Truncate(time.Second),
	}
	mgr.PersistIfRotated("community-1", prior, oauth2.StaticTokenSource(rotated))

	_, tok, err := mgr.Credentials("community-1")
	if err != nil {
		t.Fatalf("Credentials: %v", err)
	}
	if tok.AccessToken != "access-2" {
		t.Errorf("access token not persisted: %q", tok.AccessToken)
	}
	// No refresh token was reissued, so the stored one stays.
	if tok.RefreshToken != "refresh-1" {
		t.Errorf("refresh token should be preserved, got %q", tok.RefreshToken)
	}
}

func TestPersistIfRotated_NoopWhenUnchanged(t *testing.T) {
	mgr, db, _ := newTestManager(t)

	prior := &oauth2.Token{AccessToken: "access-1", RefreshToken: "refresh-1", Expiry: time.Now().Add(time.Hour)}
	if err := mgr.SaveAuthorized("community-1", "a@example.com", nil, prior); err != nil {
		t.Fatalf("SaveAuthorized: %v", err)
	}

	var before models.Integration
	db.First(&before, "community_id = ?", "community-1")

	mgr.PersistIfRotated("community-1", prior, oauth2.StaticTokenSource(prior))

	var after models.Integration
	db.First(&after, "community_id = ?", "community-1")
	if before.AccessToken != after.AccessToken {
		t.Error("stored ciphertext changed despite no rotation")
	}
}

func TestDisconnect_RemovesRow(t *testing.T) {
	mgr, db, _ := newTestManager(t)

	tok := &oauth2.Token{AccessToken: "access-1", Expiry: time.Now().Add(time.Hour)}
	if err := mgr.SaveAuthorized("community-1", "a@example.com", nil, tok); err != nil {
		t.Fatalf("SaveAuthorized: %v", err)
	}
	if err := mgr.Disconnect("community-1"); err != nil {
		t.Fatalf("Disconnect: %v", err)
	}

	var count int64
	db.Model(&models.Integration{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected 0 rows after disconnect, got %d", count)
	}
	if _, _, err := mgr.Credentials("community-1"); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected after disconnect, got %v", err)
	}
}
