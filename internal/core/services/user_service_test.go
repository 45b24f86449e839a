package services

import (
	"context"
	"errors"
	"testing"

	"tradepro-network/internal/adapters/persistence/models"
	"tradepro-network/internal/core/domain"
	"tradepro-network/internal/pkg/password"
)

type userFixture struct {
	users    *stubUserRepo
	packages *stubPackageRepo
	txs      *stubTransactionRepo
	tokens   *stubRefreshTokenRepo
	svc      *UserService
}

func newUserFixture() *userFixture {
	f := &userFixture{
		users:    newStubUserRepo(),
		packages: newStubPackageRepo(),
		txs:      newStubTransactionRepo(),
		tokens:   newStubRefreshTokenRepo(),
	}
	f.svc = NewUserService(f.users, f.packages, f.txs, f.tokens)
	return f
}

func TestDeleteDetachesChildren(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()

	referrer := f.users.add(models.User{FullName: "Referrer", Role: string(domain.RoleUser), DirectReferrals: 1, TeamSize: 3})
	middle := f.users.add(models.User{FullName: "Middle", Role: string(domain.RoleUser), ReferrerID: &referrer.ID, DirectReferrals: 2, TeamSize: 2})
	childA := f.users.add(models.User{FullName: "Child A", Role: string(domain.RoleUser), ReferrerID: &middle.ID})
	childB := f.users.add(models.User{FullName: "Child B", Role: string(domain.RoleUser), ReferrerID: &middle.ID})

	if err := f.svc.Delete(ctx, middle.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := f.users.FindByID(ctx, middle.ID); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("deleted user still present")
	}

	// The children become roots of their own trees
	for _, id := range []uint{childA.ID, childB.ID} {
		child, err := f.users.FindByID(ctx, id)
		if err != nil {
			t.Fatalf("child %d vanished: %v", id, err)
		}
		if child.ReferrerID != nil {
			t.Errorf("child %d still attached to deleted referrer", id)
		}
	}

	// The referrer loses one direct referral immediately
	r, _ := f.users.FindByID(ctx, referrer.ID)
	if r.DirectReferrals != 0 {
		t.Errorf("referrer direct = %d after delete, want 0", r.DirectReferrals)
	}
}

func TestDeleteAdminForbidden(t *testing.T) {
	f := newUserFixture()
	admin := f.users.add(models.User{FullName: "Admin", Role: string(domain.RoleAdmin)})

	if err := f.svc.Delete(context.Background(), admin.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("err = %v, want ErrForbidden", err)
	}
}

func TestAdminUpdateBalanceAdjustment(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()

	admin := f.users.add(models.User{FullName: "Admin", Role: string(domain.RoleAdmin)})
	member := f.users.add(models.User{FullName: "Member", Role: string(domain.RoleUser), Status: string(domain.StatusActive), Balance: 100})

	bonus := 50.0
	updated, err := f.svc.AdminUpdate(ctx, member.ID, admin.ID, AdminUpdateRequest{
		BalanceAdjust: &bonus,
		AdjustReason:  "promo credit",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Balance != 150 {
		t.Errorf("balance = %v, want 150", updated.Balance)
	}

	adjustments := f.txs.byType(models.TxTypeAdminAdjust)
	if len(adjustments) != 1 {
		t.Fatalf("adjustment ledger entries = %d, want 1", len(adjustments))
	}
	if adjustments[0].PerformedBy != admin.ID {
		t.Errorf("performed_by = %d, want admin %d", adjustments[0].PerformedBy, admin.ID)
	}
	if adjustments[0].Description != "promo credit" {
		t.Errorf("description = %q", adjustments[0].Description)
	}
}

func TestAdminUpdateNegativeAdjustmentGuard(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()

	admin := f.users.add(models.User{Role: string(domain.RoleAdmin)})
	member := f.users.add(models.User{Role: string(domain.RoleUser), Status: string(domain.StatusActive), Balance: 100})

	debit := -200.0
	_, err := f.svc.AdminUpdate(ctx, member.ID, admin.ID, AdminUpdateRequest{BalanceAdjust: &debit})
	if !errors.Is(err, domain.ErrInsufficientBalance) {
		t.Fatalf("err = %v, want ErrInsufficientBalance", err)
	}

	unchanged, _ := f.users.FindByID(ctx, member.ID)
	if unchanged.Balance != 100 {
		t.Errorf("balance = %v after rejected debit, want 100", unchanged.Balance)
	}
}

func TestAdminUpdateInvalidStatus(t *testing.T) {
	f := newUserFixture()
	admin := f.users.add(models.User{Role: string(domain.RoleAdmin)})
	member := f.users.add(models.User{Role: string(domain.RoleUser), Status: string(domain.StatusActive)})

	_, err := f.svc.AdminUpdate(context.Background(), member.ID, admin.ID, AdminUpdateRequest{Status: "banned"})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

func TestAdminUpdateSuspendRevokesSessions(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()

	admin := f.users.add(models.User{Role: string(domain.RoleAdmin)})
	member := f.users.add(models.User{Role: string(domain.RoleUser), Status: string(domain.StatusActive)})
	_ = f.tokens.Create(ctx, &models.RefreshToken{UserID: member.ID, TokenHash: "hash-1"})

	_, err := f.svc.AdminUpdate(ctx, member.ID, admin.ID, AdminUpdateRequest{Status: string(domain.StatusSuspended)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored, _ := f.tokens.FindByTokenHash(ctx, "hash-1")
	if !stored.IsRevoked() {
		t.Error("session survived suspension")
	}
}

func TestUpdateKeepsConcurrentDebit(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()

	member := f.users.add(models.User{FullName: "Member", Role: string(domain.RoleUser), Status: string(domain.StatusActive), Balance: 500})

	// A profile edit holds a row read before a withdrawal debit lands
	stale, err := f.users.FindByID(ctx, member.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if err := f.users.DebitBalance(ctx, member.ID, 200); err != nil {
		t.Fatalf("debit: %v", err)
	}

	stale.FullName = "Edited"
	if err := f.users.Update(ctx, stale); err != nil {
		t.Fatalf("update: %v", err)
	}

	stored, _ := f.users.FindByID(ctx, member.ID)
	if stored.FullName != "Edited" {
		t.Errorf("full name = %q, want Edited", stored.FullName)
	}
	// The edit must not write the stale balance back
	if stored.Balance != 300 {
		t.Errorf("balance = %v after profile edit, want 300", stored.Balance)
	}
}

func TestChangePassword(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()

	hashed, _ := password.Hash("oldpassword")
	member := f.users.add(models.User{Role: string(domain.RoleUser), Password: hashed})
	_ = f.tokens.Create(ctx, &models.RefreshToken{UserID: member.ID, TokenHash: "hash-1"})

	if err := f.svc.ChangePassword(ctx, member.ID, "wrong", "newpassword"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("wrong old password err = %v, want ErrInvalidCredentials", err)
	}

	if err := f.svc.ChangePassword(ctx, member.ID, "oldpassword", "newpassword"); err != nil {
		t.Fatalf("change password: %v", err)
	}

	updated, _ := f.users.FindByID(ctx, member.ID)
	if !password.Verify("newpassword", updated.Password) {
		t.Error("new password not stored")
	}

	stored, _ := f.tokens.FindByTokenHash(ctx, "hash-1")
	if !stored.IsRevoked() {
		t.Error("sessions survived password change")
	}
}

func TestUpdateProfileEmailConflict(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()

	f.users.add(models.User{Role: string(domain.RoleUser), Email: "taken@example.com"})
	member := f.users.add(models.User{Role: string(domain.RoleUser), Email: "member@example.com"})

	_, err := f.svc.UpdateProfile(ctx, member.ID, UpdateProfileRequest{Email: "Taken@Example.com"})
	if !errors.Is(err, domain.ErrUserAlreadyExists) {
		t.Fatalf("err = %v, want ErrUserAlreadyExists", err)
	}

	// Changing to a free address works and is normalized
	updated, err := f.svc.UpdateProfile(ctx, member.ID, UpdateProfileRequest{Email: "New@Example.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Email != "new@example.com" {
		t.Errorf("email = %q, want new@example.com", updated.Email)
	}
}
