// Package mail implements the mailbox pipeline: inbound sync with
// dedup, outbound send with reply threading, and header/body parsing.
package mail

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// Ref is a lightweight message reference from the provider's list call.
type Ref struct {
	ID       string
	ThreadID string
}

// Inbound is a fully fetched provider message.
type Inbound struct {
	ProviderID  string
	ThreadID    string
	Subject     string
	SenderName  string
	SenderEmail string
	Body        string
	ReceivedAt  time.Time
}

// SendResult carries the ids the provider assigned to a sent message.
// They become the local record's dedup key so a later sync does not
// insert a second copy.
type SendResult struct {
	ProviderID string
	ThreadID   string
}

// Mailbox is the provider surface the sync and send pipelines consume.
type Mailbox interface {
	// ListRecent returns up to max refs for inbox messages received
	// after the given time, newest first. A zero time means no lower
	// bound (first sync: bounded recent window only).
	ListRecent(ctx context.Context, max int64, after time.Time) ([]Ref, error)
	// Get fetches one full message by provider id.
	Get(ctx context.Context, id string) (*Inbound, error)
	// Send submits a raw RFC 822 payload; threadID, when non-empty,
	// asks the provider to append to an existing conversation.
	Send(ctx context.Context, raw []byte, threadID string) (*SendResult, error)
}

// Dialer builds a Mailbox from a token source. Injected so tests can
// substitute a fake provider.
type Dialer func(ctx context.Context, src oauth2.TokenSource) (Mailbox, error)

// GmailMailbox implements Mailbox over the Gmail REST API.
type GmailMailbox struct {
	svc *gmail.Service
}

// DialGmail constructs a Gmail-backed mailbox for one account.
func DialGmail(ctx context.Context, src oauth2.TokenSource) (Mailbox, error) {
	svc, err := gmail.NewService(ctx, option.WithTokenSource(src))
	if err != nil {
		return nil, fmt.Errorf("create gmail service: %w", err)
	}
	return &GmailMailbox{svc: svc}, nil
}

// ListRecent lists inbox message refs, bounded by max and the watermark.
func (g *GmailMailbox) ListRecent(ctx context.Context, max int64, after time.Time) ([]Ref, error) {
	call := g.svc.Users.Messages.List("me").
		Context(ctx).
		LabelIds("INBOX").
		MaxResults(max)
	if !after.IsZero() {
		// Gmail's after: operator has second granularity; the dedup
		// check absorbs the boundary overlap.
		call = call.Q(fmt.Sprintf("after:%d", after.Unix()))
	}

	resp, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	refs := make([]Ref, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		refs = append(refs, Ref{ID: m.Id, ThreadID: m.ThreadId})
	}
	return refs, nil
}

// Get fetches and flattens one full message.
func (g *GmailMailbox) Get(ctx context.Context, id string) (*Inbound, error) {
	msg, err := g.svc.Users.Messages.Get("me", id).Context(ctx).Format("full").Do()
	if err != nil {
		return nil, fmt.Errorf("get message %s: %w", id, err)
	}

	inbound := &Inbound{
		ProviderID: msg.Id,
		ThreadID:   msg.ThreadId,
		ReceivedAt: time.UnixMilli(msg.InternalDate),
	}
	if msg.Payload != nil {
		inbound.Subject = headerValue(msg.Payload.Headers, "Subject")
		inbound.SenderName, inbound.SenderEmail = ParseAddress(headerValue(msg.Payload.Headers, "From"))
		inbound.Body = extractPlainBody(msg.Payload)
	}
	return inbound, nil
}

// Send submits the raw payload and returns the provider-assigned ids.
func (g *GmailMailbox) Send(ctx context.Context, raw []byte, threadID string) (*SendResult, error) {
	msg := &gmail.Message{Raw: encodeRaw(raw), ThreadId: threadID}
	sent, err := g.svc.Users.Messages.Send("me", msg).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}
	return &SendResult{ProviderID: sent.Id, ThreadID: sent.ThreadId}, nil
}

// headerValue finds a header by name, case-insensitively.
func headerValue(headers []*gmail.MessagePartHeader, name string) string {
	for _, h := range headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}
