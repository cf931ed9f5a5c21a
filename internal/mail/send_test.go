package mail

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/vecindo/vecindo/internal/db/models"
)

func TestSend_RecordsOutgoingResolved(t *testing.T) {
	db, mgr := newMailTestEnv(t)
	connectCommunity(t, mgr, "community-1")

	fake := &fakeMailbox{}
	sender := NewSender(db, mgr, fixedDialer(fake))

	comm, err := sender.Send(context.Background(), "community-1", OutboundMessage{
		To:      "resident@y.com",
		Subject: "Assembly minutes",
		Body:    "Attached below.",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	if comm.Direction != models.DirectionOutgoing {
		t.Errorf("direction = %q, want outgoing", comm.Direction)
	}
	if comm.Status != models.StatusResolved {
		t.Errorf("status = %q, want resolved", comm.Status)
	}
	if comm.SenderEmail != "me" {
		t.Errorf("sender = %q, want me", comm.SenderEmail)
	}
	// The local record carries provider-assigned ids, the sync dedup key.
	if comm.ProviderMessageID == "" || comm.ThreadID == "" {
		t.Errorf("provider ids missing: %+v", comm)
	}

	if len(fake.sent) != 1 {
		t.Fatalf("provider received %d messages, want 1", len(fake.sent))
	}
	raw := string(fake.sent[0])
	if !strings.Contains(raw, "To: resident@y.com\r\n") {
		t.Errorf("raw payload missing recipient:\n%s", raw)
	}
}

func TestSend_ReplyKeepsThread(t *testing.T) {
	db, mgr := newMailTestEnv(t)
	connectCommunity(t, mgr, "community-1")

	fake := &fakeMailbox{}
	sender := NewSender(db, mgr, fixedDialer(fake))

	comm, err := sender.Send(context.Background(), "community-1", OutboundMessage{
		To:        "resident@y.com",
		Subject:   "Re: Leak in 4B",
		Body:      "Plumber scheduled.",
		ThreadID:  "thread-orig",
		InReplyTo: "<orig@mail.gmail.com>",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if comm.ThreadID != "thread-orig" {
		t.Errorf("thread = %q, want thread-orig", comm.ThreadID)
	}
	if !strings.Contains(string(fake.sent[0]), "In-Reply-To: <orig@mail.gmail.com>") {
		t.Error("reply headers not present in raw payload")
	}
}

func TestSend_ProviderFailureRecordsNothing(t *testing.T) {
	db, mgr := newMailTestEnv(t)
	connectCommunity(t, mgr, "community-1")

	fake := &fakeMailbox{sendErr: errors.New("quota exceeded")}
	sender := NewSender(db, mgr, fixedDialer(fake))

	if _, err := sender.Send(context.Background(), "community-1", OutboundMessage{
		To: "resident@y.com", Subject: "x", Body: "y",
	}); err == nil {
		t.Fatal("expected provider error")
	}

	var count int64
	db.Model(&models.Communication{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected no local record after failed send, got %d", count)
	}
}

func TestSend_RequiresRecipient(t *testing.T) {
	db, mgr := newMailTestEnv(t)
	connectCommunity(t, mgr, "community-1")
	sender := NewSender(db, mgr, fixedDialer(&fakeMailbox{}))

	if _, err := sender.Send(context.Background(), "community-1", OutboundMessage{Subject: "x"}); err == nil {
		t.Fatal("expected error for missing recipient")
	}
}
