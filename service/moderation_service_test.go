package service

import (
	"context"
	"testing"
	"time"
)

var base = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newModerationFixture() (*fakeStorage, *time.Time, ModerationService) {
	stg := newFakeStorage()
	now := base
	svc := NewModerationService(stg, func() time.Time { return now }, nopLogger{})
	return stg, &now, svc
}

func TestModeration_MuteExpiresByClock(t *testing.T) {
	ctx := context.Background()
	_, now, svc := newModerationFixture()

	until, err := svc.Mute(ctx, 7, 10*time.Minute, "spam", 1)
	if err != nil {
		t.Fatalf("Mute: %v", err)
	}
	if want := base.Add(10 * time.Minute); !until.Equal(want) {
		t.Fatalf("until = %v, want %v", until, want)
	}

	*now = base.Add(5 * time.Minute)
	muted, got, err := svc.IsMuted(ctx, 7)
	if err != nil {
		t.Fatalf("IsMuted: %v", err)
	}
	if !muted {
		t.Fatal("expected muted at +5m")
	}
	if got == nil || !got.Equal(until) {
		t.Fatalf("expiry = %v, want %v", got, until)
	}

	*now = base.Add(11 * time.Minute)
	muted, _, err = svc.IsMuted(ctx, 7)
	if err != nil {
		t.Fatalf("IsMuted: %v", err)
	}
	if muted {
		t.Fatal("expected mute expired at +11m")
	}
}

func TestModeration_Unmute(t *testing.T) {
	ctx := context.Background()
	_, _, svc := newModerationFixture()

	if _, err := svc.Mute(ctx, 7, time.Hour, "spam", 1); err != nil {
		t.Fatalf("Mute: %v", err)
	}

	ok, err := svc.Unmute(ctx, 7, 1)
	if err != nil {
		t.Fatalf("Unmute: %v", err)
	}
	if !ok {
		t.Fatal("expected unmute to report an active mute")
	}

	muted, _, err := svc.IsMuted(ctx, 7)
	if err != nil {
		t.Fatalf("IsMuted: %v", err)
	}
	if muted {
		t.Fatal("still muted after unmute")
	}

	ok, err = svc.Unmute(ctx, 7, 1)
	if err != nil {
		t.Fatalf("Unmute: %v", err)
	}
	if ok {
		t.Fatal("second unmute should find nothing active")
	}
}

func TestModeration_RemuteReplacesExpiry(t *testing.T) {
	ctx := context.Background()
	_, now, svc := newModerationFixture()

	if _, err := svc.Mute(ctx, 7, 10*time.Minute, "spam", 1); err != nil {
		t.Fatalf("Mute: %v", err)
	}
	if _, err := svc.Mute(ctx, 7, time.Hour, "still spamming", 1); err != nil {
		t.Fatalf("Mute: %v", err)
	}

	*now = base.Add(30 * time.Minute)
	muted, until, err := svc.IsMuted(ctx, 7)
	if err != nil {
		t.Fatalf("IsMuted: %v", err)
	}
	if !muted {
		t.Fatal("expected the longer mute to still be in effect")
	}
	if want := base.Add(time.Hour); until == nil || !until.Equal(want) {
		t.Fatalf("expiry = %v, want %v", until, want)
	}
}

func TestModeration_WritesAuditTrail(t *testing.T) {
	ctx := context.Background()
	stg, _, svc := newModerationFixture()

	if _, err := svc.Mute(ctx, 7, time.Hour, "spam", 42); err != nil {
		t.Fatalf("Mute: %v", err)
	}
	if _, err := svc.Unmute(ctx, 7, 42); err != nil {
		t.Fatalf("Unmute: %v", err)
	}

	if len(stg.audits.entries) != 2 {
		t.Fatalf("audit entries = %d, want 2", len(stg.audits.entries))
	}
	if stg.audits.entries[0].action != "mute_user" || stg.audits.entries[1].action != "unmute_user" {
		t.Fatalf("actions = %q, %q", stg.audits.entries[0].action, stg.audits.entries[1].action)
	}
	if stg.audits.entries[0].adminID != 42 {
		t.Fatalf("adminID = %d, want 42", stg.audits.entries[0].adminID)
	}
}
