package services

import (
	"context"
	"errors"
	"testing"

	"tradepro-network/internal/adapters/persistence/models"
	"tradepro-network/internal/core/domain"
)

func TestNotificationInbox(t *testing.T) {
	repo := newStubNotificationRepo()
	svc := NewNotificationService(repo)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_ = repo.Create(ctx, &models.Notification{UserID: 1, Type: models.NotifyReferralJoined, Message: "joined"})
	}
	_ = repo.Create(ctx, &models.Notification{UserID: 2, Type: models.NotifyWithdrawalApproved, Message: "approved"})

	items, total, err := svc.List(ctx, 1, false, 0, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 3 || len(items) != 3 {
		t.Errorf("user 1 inbox size = %d/%d, want 3", len(items), total)
	}

	unread, _ := svc.CountUnread(ctx, 1)
	if unread != 3 {
		t.Errorf("unread = %d, want 3", unread)
	}

	if err := svc.MarkRead(ctx, items[0].ID, 1); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	unread, _ = svc.CountUnread(ctx, 1)
	if unread != 2 {
		t.Errorf("unread after mark = %d, want 2", unread)
	}

	if err := svc.MarkAllRead(ctx, 1); err != nil {
		t.Fatalf("mark all read: %v", err)
	}
	unread, _ = svc.CountUnread(ctx, 1)
	if unread != 0 {
		t.Errorf("unread after mark all = %d, want 0", unread)
	}

	// The other user's inbox is untouched
	unread, _ = svc.CountUnread(ctx, 2)
	if unread != 1 {
		t.Errorf("user 2 unread = %d, want 1", unread)
	}
}

func TestMarkReadScopedToOwner(t *testing.T) {
	repo := newStubNotificationRepo()
	svc := NewNotificationService(repo)
	ctx := context.Background()

	n := &models.Notification{UserID: 1, Type: models.NotifyReferralJoined, Message: "joined"}
	_ = repo.Create(ctx, n)

	if err := svc.MarkRead(ctx, n.ID, 2); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("cross-user mark read err = %v, want ErrNotFound", err)
	}
}
