// Package token manages per-community mail-provider credentials:
// decrypting stored tokens, upserting on authorize, and persisting
// rotations the oauth2 transport performs mid-call.
package token

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vecindo/vecindo/internal/db/models"
	"github.com/vecindo/vecindo/internal/secrets"
	"golang.org/x/oauth2"
	"gorm.io/gorm"
)

// ProviderGoogle is the only mail provider currently wired.
const ProviderGoogle = "google"

// ErrNotConnected means the community has no integration row; callers
// treat it as "nothing to do", not a failure.
var ErrNotConnected = errors.New("token: community has no mail integration")

// Manager handles the credential lifecycle for community integrations.
type Manager struct {
	db  *gorm.DB
	box *secrets.Box
	cfg *oauth2.Config
}

// NewManager creates a token manager backed by the given database and
// sealed-value box. cfg supplies the client credentials used for refresh.
func NewManager(db *gorm.DB, box *secrets.Box, cfg *oauth2.Config) *Manager {
	return &Manager{db: db, box: box, cfg: cfg}
}

// Credentials loads and decrypts the stored token for a community.
// Returns ErrNotConnected when no integration row exists.
func (m *Manager) Credentials(communityID string) (*models.Integration, *oauth2.Token, error) {
	var integ models.Integration
	err := m.db.Where("community_id = ? AND provider = ?", communityID, ProviderGoogle).
		First(&integ).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotConnected
		}
		return nil, nil, err
	}

	access, err := m.box.Decrypt(integ.AccessToken)
	if err != nil {
		return nil, nil, err
	}
	tok := &oauth2.Token{
		AccessToken: access,
		TokenType:   "Bearer",
		Expiry:      integ.ExpiresAt,
	}
	if integ.RefreshToken != "" {
		refresh, err := m.box.Decrypt(integ.RefreshToken)
		if err != nil {
			return nil, nil, err
		}
		tok.RefreshToken = refresh
	}
	return &integ, tok, nil
}

// TokenSource wraps a decrypted token in an auto-refreshing source.
// Callers keep the starting token so rotation can be detected afterwards
// with PersistIfRotated.
func (m *Manager) TokenSource(ctx context.Context, tok *oauth2.Token) oauth2.TokenSource {
	return m.cfg.TokenSource(ctx, tok)
}

// PersistIfRotated stores the token currently held by src when it differs
// from the token the operation started with. Called after every provider
// round of API calls; a failed persist is logged, never fatal to the
// operation that triggered the refresh.
func (m *Manager) PersistIfRotated(communityID string, prior *oauth2.Token, src oauth2.TokenSource) {
	cur, err := src.Token()
	if err != nil {
		slog.Warn("token source unavailable after call", "community", communityID, "error", err)
		return
	}
	if cur.AccessToken == prior.AccessToken {
		return
	}

	updates := map[string]any{
		"access_token": mustSeal(m.box, cur.AccessToken),
		"expires_at":   cur.Expiry,
	}
	// A refresh token is only rotated when the provider reissues one.
	if cur.RefreshToken != "" && cur.RefreshToken != prior.RefreshToken {
		updates["refresh_token"] = mustSeal(m.box, cur.RefreshToken)
	}

	err = m.db.Model(&models.Integration{}).
		Where("community_id = ? AND provider = ?", communityID, ProviderGoogle).
		Updates(updates).Error
	if err != nil {
		slog.Warn("failed to persist refreshed token", "community", communityID, "error", err)
		return
	}
	slog.Info("persisted refreshed access token", "community", communityID, "expires", cur.Expiry.Format(time.RFC3339))
}

// SaveAuthorized upserts the integration row after an OAuth exchange.
// A reconnect overwrites the previous row; a missing refresh token in the
// exchange response preserves the one already stored.
func (m *Manager) SaveAuthorized(communityID, email string, scopes []string, tok *oauth2.Token) error {
	access, err := m.box.Encrypt(tok.AccessToken)
	if err != nil {
		return err
	}

	var existing models.Integration
	found := m.db.Where("community_id = ? AND provider = ?", communityID, ProviderGoogle).
		First(&existing).Error == nil

	integ := models.Integration{
		ID:          uuid.New().String(),
		CommunityID: communityID,
		Provider:    ProviderGoogle,
		Email:       email,
		AccessToken: access,
		ExpiresAt:   tok.Expiry,
		Scopes:      strings.Join(scopes, " "),
	}
	if found {
		integ.ID = existing.ID
		integ.LastSyncedAt = existing.LastSyncedAt
		integ.CreatedAt = existing.CreatedAt
	}

	switch {
	case tok.RefreshToken != "":
		sealed, err := m.box.Encrypt(tok.RefreshToken)
		if err != nil {
			return err
		}
		integ.RefreshToken = sealed
	case found:
		// Repeat consent without prompt=consent returns no refresh token;
		// keep the one we already hold.
		integ.RefreshToken = existing.RefreshToken
	}

	return m.db.Save(&integ).Error
}

// Disconnect deletes the community's integration row.
func (m *Manager) Disconnect(communityID string) error {
	return m.db.Where("community_id = ? AND provider = ?", communityID, ProviderGoogle).
		Delete(&models.Integration{}).Error
}

// mustSeal encrypts for a DB update; an encryption failure here can only
// be a programming error (the box was already validated at startup).
func mustSeal(box *secrets.Box, v string) string {
	sealed, err := box.Encrypt(v)
	if err != nil {
		panic(err)
	}
	return sealed
}
