package services

import (
	"context"
	"errors"
	"testing"

	"tradepro-network/internal/adapters/persistence/models"
	"tradepro-network/internal/core/domain"
)

// buildNetwork seeds root -> (a, b), a -> c and returns the IDs
func buildNetwork(users *stubUserRepo) (root, a, b, c uint) {
	basic := basicPackage()
	rootUser := users.add(models.User{FullName: "Root", Email: "root@test.io", Package: basic, PackageID: &basic.ID})
	aUser := users.add(models.User{FullName: "A", Email: "a@test.io", ReferrerID: &rootUser.ID})
	bUser := users.add(models.User{FullName: "B", Email: "b@test.io", ReferrerID: &rootUser.ID})
	cUser := users.add(models.User{FullName: "C", Email: "c@test.io", ReferrerID: &aUser.ID})
	return rootUser.ID, aUser.ID, bUser.ID, cUser.ID
}

func TestBuildTreeDepthZeroYieldsNothing(t *testing.T) {
	users := newStubUserRepo()
	root, _, _, _ := buildNetwork(users)
	svc := NewReferralService(users)

	tree, err := svc.BuildTree(context.Background(), root, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree != nil {
		t.Errorf("depth 0 returned a node for %d, want nil", tree.UserID)
	}
}

func TestBuildTreeDepthOne(t *testing.T) {
	users := newStubUserRepo()
	root, _, _, _ := buildNetwork(users)
	svc := NewReferralService(users)

	tree, err := svc.BuildTree(context.Background(), root, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree.UserID != root {
		t.Errorf("tree root = %d, want %d", tree.UserID, root)
	}
	if len(tree.Children) != 0 {
		t.Errorf("depth 1 tree has %d children, want 0", len(tree.Children))
	}
	if tree.PackageCode != "basic" {
		t.Errorf("package = %q, want basic", tree.PackageCode)
	}
}

func TestBuildTreeFullDepth(t *testing.T) {
	users := newStubUserRepo()
	root, a, b, c := buildNetwork(users)
	svc := NewReferralService(users)

	tree, err := svc.BuildTree(context.Background(), root, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(tree.Children) != 2 {
		t.Fatalf("root has %d children, want 2", len(tree.Children))
	}
	// Children come back in join order
	if tree.Children[0].UserID != a || tree.Children[1].UserID != b {
		t.Errorf("children in wrong order: %d, %d", tree.Children[0].UserID, tree.Children[1].UserID)
	}
	if len(tree.Children[0].Children) != 1 || tree.Children[0].Children[0].UserID != c {
		t.Errorf("grandchild missing under %d", a)
	}
	if len(tree.Children[1].Children) != 0 {
		t.Errorf("leaf %d has children", b)
	}
}

func TestBuildTreeDepthCutsGrandchildren(t *testing.T) {
	users := newStubUserRepo()
	root, _, _, _ := buildNetwork(users)
	svc := NewReferralService(users)

	tree, err := svc.BuildTree(context.Background(), root, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, child := range tree.Children {
		if len(child.Children) != 0 {
			t.Errorf("depth 2 tree exposes grandchildren under %d", child.UserID)
		}
	}
}

func TestBuildTreeUnknownUser(t *testing.T) {
	svc := NewReferralService(newStubUserRepo())

	_, err := svc.BuildTree(context.Background(), 42, 3)
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("err = %v, want ErrUserNotFound", err)
	}
}

func TestTeamCounts(t *testing.T) {
	users := newStubUserRepo()
	root, a, b, _ := buildNetwork(users)
	svc := NewReferralService(users)

	direct, team, err := svc.TeamCounts(context.Background(), root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if direct != 2 {
		t.Errorf("direct = %d, want 2", direct)
	}
	if team != 3 {
		t.Errorf("team = %d, want 3", team)
	}

	direct, team, _ = svc.TeamCounts(context.Background(), a)
	if direct != 1 || team != 1 {
		t.Errorf("a: direct=%d team=%d, want 1/1", direct, team)
	}

	direct, team, _ = svc.TeamCounts(context.Background(), b)
	if direct != 0 || team != 0 {
		t.Errorf("b: direct=%d team=%d, want 0/0", direct, team)
	}
}

func TestTeamCountsTerminatesOnCycle(t *testing.T) {
	users := newStubUserRepo()
	x := users.add(models.User{FullName: "X", Email: "x@test.io"})
	y := users.add(models.User{FullName: "Y", Email: "y@test.io", ReferrerID: &x.ID})
	// Corrupt the directory: x now refers back to its own referral
	users.users[x.ID].ReferrerID = &y.ID
	svc := NewReferralService(users)

	_, team, err := svc.TeamCounts(context.Background(), x.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if team > maxReferralDepth {
		t.Errorf("team = %d, bound %d blown", team, maxReferralDepth)
	}
}

func TestReconcileCountersRepairsDrift(t *testing.T) {
	users := newStubUserRepo()
	root, _, _, _ := buildNetwork(users)
	svc := NewReferralService(users)

	// Mark everyone as a member and corrupt the root's counters
	for _, u := range users.users {
		u.Role = string(domain.RoleUser)
	}
	users.users[root].DirectReferrals = 99
	users.users[root].TeamSize = 99

	repaired, err := svc.ReconcileCounters(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repaired == 0 {
		t.Fatal("expected at least one repaired user")
	}

	fixed, _ := users.FindByID(context.Background(), root)
	if fixed.DirectReferrals != 2 || fixed.TeamSize != 3 {
		t.Errorf("root counters = %d/%d after reconcile, want 2/3", fixed.DirectReferrals, fixed.TeamSize)
	}

	// A second run finds nothing to repair
	repaired, err = svc.ReconcileCounters(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repaired != 0 {
		t.Errorf("second reconcile repaired %d users, want 0", repaired)
	}
}
