package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"anonbot/pkg/models"
)

const auditChannelID int64 = -100999

type relayFixture struct {
	stg  *fakeStorage
	msgr *fakeMessenger
	now  *time.Time
	mod  ModerationService
	rly  RelayService
}

func newRelayFixture() *relayFixture {
	stg := newFakeStorage()
	msgr := &fakeMessenger{failFor: make(map[int64]error)}
	now := base
	clock := func() time.Time { return now }
	mod := NewModerationService(stg, clock, nopLogger{})
	rly := NewRelayService(stg, mod, msgr, auditChannelID, clock, nopLogger{})

	f := &relayFixture{stg: stg, msgr: msgr, now: &now, mod: mod, rly: rly}
	f.addUser(10, "alice")
	f.addUser(20, "bob")
	return f
}

func (f *relayFixture) addUser(id int64, name string) {
	f.stg.users.add(&models.User{
		UserID:    id,
		Name:      name,
		LinkToken: "tok" + strconv.FormatInt(id, 10),
	})
}

func text(s string) models.Content {
	return models.Content{Kind: models.KindText, Text: s}
}

func TestRelay_DeliversWithSenderToken(t *testing.T) {
	ctx := context.Background()
	f := newRelayFixture()

	if err := f.rly.Relay(ctx, 10, 20, text("salom")); err != nil {
		t.Fatalf("Relay: %v", err)
	}

	got := f.msgr.to(20)
	if len(got) != 1 {
		t.Fatalf("deliveries to 20 = %d, want 1", len(got))
	}
	if got[0].content.Text != "salom" {
		t.Fatalf("text = %q", got[0].content.Text)
	}
	if got[0].replyToken != "tok10" {
		t.Fatalf("replyToken = %q, want tok10", got[0].replyToken)
	}
	if got[0].header != headerAnonymous {
		t.Fatalf("header = %q", got[0].header)
	}

	if len(f.stg.msgLog.entries) != 1 {
		t.Fatalf("log entries = %d, want 1", len(f.stg.msgLog.entries))
	}
	entry := f.stg.msgLog.entries[0]
	if entry.SourceUserID != 10 || entry.DestinationID != 20 || entry.MessageType != models.KindText {
		t.Fatalf("log entry = %+v", entry)
	}
}

func TestRelay_NeverExposesSenderIdentity(t *testing.T) {
	ctx := context.Background()
	f := newRelayFixture()

	if err := f.rly.Relay(ctx, 10, 20, text("kim ekanligimni bilmaysiz")); err != nil {
		t.Fatalf("Relay: %v", err)
	}

	d := f.msgr.to(20)[0]
	visible := d.header + d.content.Text
	if strings.Contains(visible, "10") || strings.Contains(visible, "alice") {
		t.Fatalf("delivery leaks sender identity: %q", visible)
	}
}

func TestRelay_MutedSenderBlockedUntilExpiry(t *testing.T) {
	ctx := context.Background()
	f := newRelayFixture()

	if _, err := f.mod.Mute(ctx, 10, 10*time.Minute, "spam", 1); err != nil {
		t.Fatalf("Mute: %v", err)
	}

	*f.now = base.Add(5 * time.Minute)
	err := f.rly.Relay(ctx, 10, 20, text("blocked"))
	var muted *MutedError
	if !errors.As(err, &muted) {
		t.Fatalf("err = %v, want *MutedError", err)
	}
	if want := base.Add(10 * time.Minute); !muted.Until.Equal(want) {
		t.Fatalf("Until = %v, want %v", muted.Until, want)
	}
	if len(f.msgr.deliveries) != 0 {
		t.Fatal("muted sender must not deliver")
	}
	if len(f.stg.msgLog.entries) != 0 {
		t.Fatal("blocked send must not be logged as delivered")
	}

	*f.now = base.Add(11 * time.Minute)
	if err := f.rly.Relay(ctx, 10, 20, text("free again")); err != nil {
		t.Fatalf("Relay after expiry: %v", err)
	}
	if len(f.msgr.to(20)) != 1 {
		t.Fatal("expected delivery after mute expired")
	}
}

func TestRelayReply_RoutesBackToOriginalSender(t *testing.T) {
	ctx := context.Background()
	f := newRelayFixture()

	if err := f.rly.Relay(ctx, 10, 20, text("salom")); err != nil {
		t.Fatalf("Relay: %v", err)
	}
	deliveredID := f.msgr.nextID

	if err := f.rly.RelayReply(ctx, 20, 20, deliveredID, text("va alaykum")); err != nil {
		t.Fatalf("RelayReply: %v", err)
	}

	got := f.msgr.to(10)
	if len(got) != 1 {
		t.Fatalf("deliveries to 10 = %d, want 1", len(got))
	}
	if got[0].header != headerReply {
		t.Fatalf("header = %q", got[0].header)
	}
	if got[0].replyToken != "tok20" {
		t.Fatalf("replyToken = %q, want tok20", got[0].replyToken)
	}

	// The reply itself must be answerable: a reverse link is stored.
	sender, err := f.stg.links.ResolveSender(ctx, 10, f.msgr.nextID)
	if err != nil {
		t.Fatalf("ResolveSender: %v", err)
	}
	if sender != 20 {
		t.Fatalf("reverse link sender = %d, want 20", sender)
	}
}

func TestRelayReply_NoThread(t *testing.T) {
	ctx := context.Background()
	f := newRelayFixture()

	err := f.rly.RelayReply(ctx, 20, 20, 12345, text("hech kimga"))
	if !errors.Is(err, ErrNoThread) {
		t.Fatalf("err = %v, want ErrNoThread", err)
	}
	if len(f.msgr.deliveries) != 0 {
		t.Fatal("unroutable reply must not deliver")
	}
}

func TestRelay_UnsupportedKind(t *testing.T) {
	ctx := context.Background()
	f := newRelayFixture()

	err := f.rly.Relay(ctx, 10, 20, models.Content{Kind: "sticker"})
	if !errors.Is(err, ErrUnsupportedContent) {
		t.Fatalf("err = %v, want ErrUnsupportedContent", err)
	}
}

func TestRelay_MediaCopiedToAuditChannel(t *testing.T) {
	ctx := context.Background()
	f := newRelayFixture()

	photo := models.Content{Kind: models.KindPhoto, Text: "rasm", FileID: "file123"}
	if err := f.rly.Relay(ctx, 10, 20, photo); err != nil {
		t.Fatalf("Relay: %v", err)
	}

	if len(f.msgr.to(20)) != 1 {
		t.Fatal("expected delivery to recipient")
	}
	audit := f.msgr.to(auditChannelID)
	if len(audit) != 1 {
		t.Fatalf("audit copies = %d, want 1", len(audit))
	}
	if audit[0].content.FileID != "file123" {
		t.Fatalf("audit FileID = %q", audit[0].content.FileID)
	}
	if !strings.Contains(audit[0].header, "10") || !strings.Contains(audit[0].header, "20") {
		t.Fatalf("audit caption should name both sides, got %q", audit[0].header)
	}
}

func TestRelay_TextNotCopiedToAuditChannel(t *testing.T) {
	ctx := context.Background()
	f := newRelayFixture()

	if err := f.rly.Relay(ctx, 10, 20, text("faqat matn")); err != nil {
		t.Fatalf("Relay: %v", err)
	}
	if got := f.msgr.to(auditChannelID); len(got) != 0 {
		t.Fatalf("text must not hit the audit channel, got %d copies", len(got))
	}
}

func TestRelay_DeliveryFailureLeavesNoTrace(t *testing.T) {
	ctx := context.Background()
	f := newRelayFixture()
	f.msgr.failFor[20] = errors.New("forbidden: bot was blocked by the user")

	err := f.rly.Relay(ctx, 10, 20, text("salom"))
	if err == nil {
		t.Fatal("expected delivery error")
	}
	if len(f.stg.msgLog.entries) != 0 {
		t.Fatal("failed delivery must not be logged")
	}
	if len(f.stg.links.links) != 0 {
		t.Fatal("failed delivery must not leave a message link")
	}
}

func TestRelay_MessageCountAndLastActivity(t *testing.T) {
	ctx := context.Background()
	f := newRelayFixture()

	if err := f.rly.Relay(ctx, 10, 20, text("birinchi")); err != nil {
		t.Fatalf("Relay: %v", err)
	}
	*f.now = base.Add(3 * time.Minute)
	if err := f.rly.RelayChat(ctx, 20, 10, text("ikkinchi")); err != nil {
		t.Fatalf("RelayChat: %v", err)
	}
	*f.now = base.Add(7 * time.Minute)
	if err := f.rly.Relay(ctx, 10, 20, text("uchinchi")); err != nil {
		t.Fatalf("Relay: %v", err)
	}

	count, err := f.rly.MessageCount(ctx, 10, 20)
	if err != nil {
		t.Fatalf("MessageCount: %v", err)
	}
	if count != 3 {
		t.Fatalf("count = %d, want 3 (both directions)", count)
	}

	last, err := f.rly.LastActivity(ctx, 10)
	if err != nil {
		t.Fatalf("LastActivity: %v", err)
	}
	if want := base.Add(7 * time.Minute); last == nil || !last.Equal(want) {
		t.Fatalf("last = %v, want %v", last, want)
	}

	last, err = f.rly.LastActivity(ctx, 99)
	if err != nil {
		t.Fatalf("LastActivity: %v", err)
	}
	if last != nil {
		t.Fatalf("last = %v, want nil for a silent user", last)
	}
}

func TestRelayChat_NoReplyButton(t *testing.T) {
	ctx := context.Background()
	f := newRelayFixture()

	if err := f.rly.RelayChat(ctx, 10, 20, text("jonli chat")); err != nil {
		t.Fatalf("RelayChat: %v", err)
	}

	got := f.msgr.to(20)
	if len(got) != 1 {
		t.Fatalf("deliveries = %d, want 1", len(got))
	}
	if got[0].replyToken != "" {
		t.Fatalf("live chat must not carry a reply token, got %q", got[0].replyToken)
	}
	if got[0].header != headerChat {
		t.Fatalf("header = %q", got[0].header)
	}
}
