package services

import (
	"context"
	"math"
	"testing"

	"tradepro-network/internal/adapters/persistence/models"
	"tradepro-network/internal/core/domain"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func goldPackage() *models.Package {
	return &models.Package{ID: 3, Code: "gold", Name: "Gold", Price: 1000}
}

func basicPackage() *models.Package {
	return &models.Package{ID: 1, Code: "basic", Name: "Basic", Price: 100}
}

func TestCalculateDirectCommission(t *testing.T) {
	users := newStubUserRepo()
	svc := NewEarningsService(users, newStubTransactionRepo())

	gold := goldPackage()
	basic := basicPackage()
	referrer := users.add(models.User{FullName: "Referrer", PackageID: &gold.ID, Package: gold, DirectReferrals: 1, TeamSize: 1})
	users.add(models.User{FullName: "Child", PackageID: &basic.ID, Package: basic, ReferrerID: &referrer.ID})

	breakdown, err := svc.Calculate(context.Background(), referrer.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Direct commission depends on the referral's package, not the referrer's
	if !almostEqual(breakdown.Direct, 10) {
		t.Errorf("direct = %v, want 10", breakdown.Direct)
	}
	if !almostEqual(breakdown.Level, 50) {
		t.Errorf("level = %v, want 50", breakdown.Level)
	}
	if !almostEqual(breakdown.Matching, 0.2) {
		t.Errorf("matching = %v, want 0.2", breakdown.Matching)
	}
	if breakdown.Leadership != 0 {
		t.Errorf("leadership = %v, want 0 for team of 1", breakdown.Leadership)
	}
	if !almostEqual(breakdown.Total, 60.2) {
		t.Errorf("total = %v, want 60.2", breakdown.Total)
	}
}

func TestCalculateNoReferralsLeadershipOnly(t *testing.T) {
	users := newStubUserRepo()
	svc := NewEarningsService(users, newStubTransactionRepo())

	// Team size above the threshold but no direct referrals: only the
	// leadership bonus applies.
	leader := users.add(models.User{FullName: "Leader", TeamSize: 15})

	breakdown, err := svc.Calculate(context.Background(), leader.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if breakdown.Direct != 0 || breakdown.Level != 0 || breakdown.Matching != 0 {
		t.Errorf("expected zero referral earnings, got %+v", breakdown)
	}
	if !almostEqual(breakdown.Leadership, 150) {
		t.Errorf("leadership = %v, want 150", breakdown.Leadership)
	}
	if !almostEqual(breakdown.Total, breakdown.Leadership) {
		t.Errorf("total = %v, want leadership only", breakdown.Total)
	}
}

func TestCalculateLeadershipThreshold(t *testing.T) {
	users := newStubUserRepo()
	svc := NewEarningsService(users, newStubTransactionRepo())

	// Exactly at the threshold the bonus does not apply yet
	atThreshold := users.add(models.User{TeamSize: domain.LeadershipTeamMinimum})
	breakdown, err := svc.Calculate(context.Background(), atThreshold.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if breakdown.Leadership != 0 {
		t.Errorf("leadership = %v at threshold, want 0", breakdown.Leadership)
	}

	above := users.add(models.User{TeamSize: domain.LeadershipTeamMinimum + 1})
	breakdown, err = svc.Calculate(context.Background(), above.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(breakdown.Leadership, 110) {
		t.Errorf("leadership = %v above threshold, want 110", breakdown.Leadership)
	}
}

func TestCalculateUnknownUser(t *testing.T) {
	svc := NewEarningsService(newStubUserRepo(), newStubTransactionRepo())

	breakdown, err := svc.Calculate(context.Background(), 999)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if breakdown.Total != 0 {
		t.Errorf("expected zero breakdown for unknown user, got %+v", breakdown)
	}
}

func TestCalculateIsIdempotent(t *testing.T) {
	users := newStubUserRepo()
	svc := NewEarningsService(users, newStubTransactionRepo())

	basic := basicPackage()
	referrer := users.add(models.User{FullName: "Referrer", TeamSize: 2, DirectReferrals: 2})
	users.add(models.User{PackageID: &basic.ID, Package: basic, ReferrerID: &referrer.ID})
	users.add(models.User{PackageID: &basic.ID, Package: basic, ReferrerID: &referrer.ID})

	first, err := svc.Calculate(context.Background(), referrer.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.Calculate(context.Background(), referrer.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if *first != *second {
		t.Errorf("calculate is not idempotent: %+v vs %+v", first, second)
	}
}

func TestSyncAppliesDeltaOnce(t *testing.T) {
	users := newStubUserRepo()
	txs := newStubTransactionRepo()
	svc := NewEarningsService(users, txs)

	basic := basicPackage()
	referrer := users.add(models.User{FullName: "Referrer"})
	users.add(models.User{PackageID: &basic.ID, Package: basic, ReferrerID: &referrer.ID})

	breakdown, err := svc.Sync(context.Background(), referrer.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored, _ := users.FindByID(context.Background(), referrer.ID)
	if !almostEqual(stored.TotalEarnings, breakdown.Total) {
		t.Errorf("total_earnings = %v, want %v", stored.TotalEarnings, breakdown.Total)
	}
	if !almostEqual(stored.Balance, breakdown.Total) {
		t.Errorf("balance = %v, want %v", stored.Balance, breakdown.Total)
	}
	if got := len(txs.byType(models.TxTypeReferral)); got != 1 {
		t.Errorf("accrual transactions = %d, want 1", got)
	}

	// Nothing changed, so a second sync is a no-op
	if _, err := svc.Sync(context.Background(), referrer.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	again, _ := users.FindByID(context.Background(), referrer.ID)
	if !almostEqual(again.Balance, stored.Balance) {
		t.Errorf("balance drifted on repeat sync: %v -> %v", stored.Balance, again.Balance)
	}
	if got := len(txs.byType(models.TxTypeReferral)); got != 1 {
		t.Errorf("accrual transactions after repeat sync = %d, want 1", got)
	}
}
