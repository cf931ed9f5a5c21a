package mail

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vecindo/vecindo/internal/auth/token"
	"github.com/vecindo/vecindo/internal/db/models"
	"gorm.io/gorm"
)

// localSender is the sender sentinel recorded for outbound mail.
const localSender = "me"

// OutboundMessage is one message to send on behalf of a community.
// ThreadID and InReplyTo are set when replying inside an existing
// conversation; both empty starts a new thread.
type OutboundMessage struct {
	To        string `json:"to"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	From      string `json:"from,omitempty"`
	ThreadID  string `json:"threadId,omitempty"`
	InReplyTo string `json:"inReplyTo,omitempty"`
}

// Sender sends outbound mail through a community's integration and
// records the sent copy locally.
type Sender struct {
	db     *gorm.DB
	tokens *token.Manager
	dial   Dialer
}

// NewSender creates an outbound sender.
func NewSender(db *gorm.DB, tokens *token.Manager, dial Dialer) *Sender {
	return &Sender{db: db, tokens: tokens, dial: dial}
}

// Send builds and submits the message, then persists a local record
// keyed by the provider-assigned message and thread ids so the next sync
// recognizes the sent copy instead of inserting a duplicate. A provider
// rejection returns an error and records nothing.
func (s *Sender) Send(ctx context.Context, communityID string, msg OutboundMessage) (*models.Communication, error) {
	if msg.To == "" {
		return nil, fmt.Errorf("send: recipient is required")
	}

	_, prior, err := s.tokens.Credentials(communityID)
	if err != nil {
		return nil, err
	}
	src := s.tokens.TokenSource(ctx, prior)
	defer s.tokens.PersistIfRotated(communityID, prior, src)

	box, err := s.dial(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("connect mailbox: %w", err)
	}

	raw := BuildRaw(msg.From, msg.To, msg.Subject, msg.Body, msg.InReplyTo)
	result, err := box.Send(ctx, raw, msg.ThreadID)
	if err != nil {
		return nil, fmt.Errorf("provider send: %w", err)
	}

	comm := models.Communication{
		ID:                uuid.New().String(),
		CommunityID:       communityID,
		Subject:           msg.Subject,
		SenderName:        localSender,
		SenderEmail:       localSender,
		Body:              msg.Body,
		ReceivedAt:        time.Now(),
		Status:            models.StatusResolved,
		ThreadID:          result.ThreadID,
		ProviderMessageID: result.ProviderID,
		Direction:         models.DirectionOutgoing,
	}
	if err := s.db.Create(&comm).Error; err != nil {
		// The mail left the building; a failed local record is logged
		// by the caller, not unwound.
		return nil, fmt.Errorf("record sent message: %w", err)
	}

	s.db.Create(&models.Activity{
		ID:          uuid.New().String(),
		CommunityID: communityID,
		Kind:        "send",
		Description: fmt.Sprintf("sent %q to %s", msg.Subject, msg.To),
		CreatedAt:   time.Now(),
	})
	return &comm, nil
}
