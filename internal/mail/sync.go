package mail

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vecindo/vecindo/internal/auth/token"
	"github.com/vecindo/vecindo/internal/db/models"
	"github.com/vecindo/vecindo/internal/logging"
	"gorm.io/gorm"
)

// Syncer pulls a bounded page of recent inbound messages for one
// community and persists the ones not already stored.
type Syncer struct {
	db       *gorm.DB
	tokens   *token.Manager
	dial     Dialer
	pageSize int64
}

// SyncResult reports one sync run.
type SyncResult struct {
	Synced int `json:"synced"`
}

// NewSyncer creates a sync orchestrator. pageSize bounds each run's
// provider list call.
func NewSyncer(db *gorm.DB, tokens *token.Manager, dial Dialer, pageSize int64) *Syncer {
	return &Syncer{db: db, tokens: tokens, dial: dial, pageSize: pageSize}
}

// SyncCommunity fetches recent inbox refs newer than the community's
// watermark, skips anything already stored under the same
// (threadID, providerMessageID), and persists the rest. Fails fast with
// token.ErrNotConnected when no integration exists. Safe to invoke
// repeatedly: the existence check plus the unique index make re-runs
// no-ops for already-stored mail.
func (s *Syncer) SyncCommunity(ctx context.Context, communityID string) (SyncResult, error) {
	integ, prior, err := s.tokens.Credentials(communityID)
	if err != nil {
		return SyncResult{}, err
	}

	src := s.tokens.TokenSource(ctx, prior)
	// Any token the transport refreshed during the run is stored even
	// when the sync itself failed partway.
	defer s.tokens.PersistIfRotated(communityID, prior, src)

	box, err := s.dial(ctx, src)
	if err != nil {
		return SyncResult{}, fmt.Errorf("connect mailbox: %w", err)
	}

	refs, err := box.ListRecent(ctx, s.pageSize, integ.LastSyncedAt)
	if err != nil {
		return SyncResult{}, fmt.Errorf("list recent: %w", err)
	}

	synced := 0
	fetchFailures := 0
	watermark := integ.LastSyncedAt
	for _, ref := range refs {
		var count int64
		err := s.db.Model(&models.Communication{}).
			Where("thread_id = ? AND provider_message_id = ?", ref.ThreadID, ref.ID).
			Count(&count).Error
		if err != nil {
			return SyncResult{Synced: synced}, fmt.Errorf("existence check: %w", err)
		}
		if count > 0 {
			continue
		}

		full, err := box.Get(ctx, ref.ID)
		if err != nil {
			// One unfetchable message should not sink the page, but it
			// must hold the watermark back so the next run re-lists it.
			fetchFailures++
			logging.L(ctx).Warn("failed to fetch message", "community", communityID, "message", ref.ID, "error", err)
			continue
		}

		comm := models.Communication{
			ID:                uuid.New().String(),
			CommunityID:       communityID,
			Subject:           full.Subject,
			SenderName:        full.SenderName,
			SenderEmail:       full.SenderEmail,
			Body:              full.Body,
			ReceivedAt:        full.ReceivedAt,
			Status:            models.StatusNew,
			ThreadID:          full.ThreadID,
			ProviderMessageID: full.ProviderID,
			Direction:         models.DirectionIncoming,
		}
		if err := s.db.Create(&comm).Error; err != nil {
			if isUniqueViolation(err) {
				// A concurrent sync won the race; same outcome as the
				// existence check.
				continue
			}
			return SyncResult{Synced: synced}, fmt.Errorf("persist message: %w", err)
		}
		synced++
		if full.ReceivedAt.After(watermark) {
			watermark = full.ReceivedAt
		}
	}

	// A failed fetch has an unknown receive time, so the watermark stays
	// put for the whole run; the dedup check absorbs the re-listed
	// overlap on the retry.
	if fetchFailures == 0 && watermark.After(integ.LastSyncedAt) {
		err := s.db.Model(&models.Integration{}).
			Where("id = ?", integ.ID).
			Update("last_synced_at", watermark).Error
		if err != nil {
			logging.L(ctx).Warn("failed to advance sync watermark", "community", communityID, "error", err)
		}
	}

	if synced > 0 {
		s.db.Create(&models.Activity{
			ID:          uuid.New().String(),
			CommunityID: communityID,
			Kind:        "sync",
			Description: fmt.Sprintf("synced %d new messages", synced),
			CreatedAt:   time.Now(),
		})
	}
	return SyncResult{Synced: synced}, nil
}

// isUniqueViolation reports whether err is a unique-index insert
// conflict, which the sync treats as the idempotent-skip signal.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
