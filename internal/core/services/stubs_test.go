package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"tradepro-network/internal/adapters/persistence/models"
	"tradepro-network/internal/adapters/persistence/repositories"
	"tradepro-network/internal/core/domain"
)

// In-memory repository stubs shared by the service tests.

// ---------------------------------------------------------------
// users
// ---------------------------------------------------------------

type stubUserRepo struct {
	users  map[uint]*models.User
	nextID uint
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[uint]*models.User), nextID: 1}
}

func (s *stubUserRepo) add(u models.User) *models.User {
	if u.ID == 0 {
		u.ID = s.nextID
	}
	if u.ID >= s.nextID {
		s.nextID = u.ID + 1
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	s.users[u.ID] = &u
	return &u
}

func (s *stubUserRepo) Create(_ context.Context, user *models.User) error {
	stored := s.add(*user)
	user.ID = stored.ID
	user.CreatedAt = stored.CreatedAt
	return nil
}

func (s *stubUserRepo) FindByID(_ context.Context, id uint) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (s *stubUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (s *stubUserRepo) FindByReferralCode(_ context.Context, code string) (*models.User, error) {
	for _, u := range s.users {
		if u.ReferralCode == code {
			copied := *u
			return &copied, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (s *stubUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	for _, u := range s.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubUserRepo) ExistsByReferralCode(_ context.Context, code string) (bool, error) {
	for _, u := range s.users {
		if u.ReferralCode == code {
			return true, nil
		}
	}
	return false, nil
}

// Update mirrors the repository contract: money and counter columns stay
// owned by the dedicated methods and are kept from the stored row.
func (s *stubUserRepo) Update(_ context.Context, user *models.User) error {
	stored, ok := s.users[user.ID]
	if !ok {
		return domain.ErrUserNotFound
	}
	copied := *user
	copied.Balance = stored.Balance
	copied.TotalEarnings = stored.TotalEarnings
	copied.DirectReferrals = stored.DirectReferrals
	copied.TeamSize = stored.TeamSize
	s.users[user.ID] = &copied
	return nil
}

func (s *stubUserRepo) Delete(_ context.Context, id uint) error {
	if _, ok := s.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *stubUserRepo) sortedIDs() []uint {
	ids := make([]uint, 0, len(s.users))
	for id := range s.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (s *stubUserRepo) List(_ context.Context, filter repositories.UserFilter, offset, limit int) ([]models.User, int64, error) {
	var matched []models.User
	for _, id := range s.sortedIDs() {
		u := s.users[id]
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if filter.Status != "" && u.Status != filter.Status {
			continue
		}
		if filter.Search != "" && !strings.Contains(u.FullName, filter.Search) &&
			!strings.Contains(u.Email, filter.Search) && !strings.Contains(u.ReferralCode, filter.Search) {
			continue
		}
		if filter.PackageID != nil && (u.PackageID == nil || *u.PackageID != *filter.PackageID) {
			continue
		}
		matched = append(matched, *u)
	}

	total := int64(len(matched))
	if offset >= len(matched) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (s *stubUserRepo) ListByReferrer(_ context.Context, referrerID uint) ([]models.User, error) {
	var out []models.User
	for _, id := range s.sortedIDs() {
		u := s.users[id]
		if u.ReferrerID != nil && *u.ReferrerID == referrerID {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (s *stubUserRepo) DetachChildren(_ context.Context, referrerID uint) (int64, error) {
	var n int64
	for _, u := range s.users {
		if u.ReferrerID != nil && *u.ReferrerID == referrerID {
			u.ReferrerID = nil
			n++
		}
	}
	return n, nil
}

func (s *stubUserRepo) IncrementDirectReferrals(_ context.Context, id uint, delta int) error {
	if u, ok := s.users[id]; ok {
		u.DirectReferrals += delta
	}
	return nil
}

func (s *stubUserRepo) IncrementTeamSize(_ context.Context, ids []uint, delta int) error {
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			u.TeamSize += delta
		}
	}
	return nil
}

func (s *stubUserRepo) UpdateCounters(_ context.Context, id uint, directReferrals, teamSize int) error {
	u, ok := s.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.DirectReferrals = directReferrals
	u.TeamSize = teamSize
	return nil
}

func (s *stubUserRepo) DebitBalance(_ context.Context, id uint, amount float64) error {
	u, ok := s.users[id]
	if !ok || u.Balance < amount {
		return domain.ErrInsufficientBalance
	}
	u.Balance -= amount
	return nil
}

func (s *stubUserRepo) CreditBalance(_ context.Context, id uint, amount float64) error {
	u, ok := s.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Balance += amount
	return nil
}

func (s *stubUserRepo) SetEarnings(_ context.Context, id uint, total float64) error {
	u, ok := s.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.TotalEarnings = total
	return nil
}

func (s *stubUserRepo) CountByRole(_ context.Context, role string) (int64, error) {
	var n int64
	for _, u := range s.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

func (s *stubUserRepo) CountByStatus(_ context.Context, status string) (int64, error) {
	var n int64
	for _, u := range s.users {
		if u.Role == string(domain.RoleUser) && u.Status == status {
			n++
		}
	}
	return n, nil
}

func (s *stubUserRepo) SumInvestment(_ context.Context) (float64, error) {
	var total float64
	for _, u := range s.users {
		if u.Package != nil {
			total += u.Package.Price
		}
	}
	return total, nil
}

func (s *stubUserRepo) PackageDistribution(_ context.Context) ([]repositories.PackageStat, error) {
	return nil, nil
}

// ---------------------------------------------------------------
// packages
// ---------------------------------------------------------------

type stubPackageRepo struct {
	packages map[string]*models.Package
}

func newStubPackageRepo() *stubPackageRepo {
	repo := &stubPackageRepo{packages: make(map[string]*models.Package)}
	catalog := []struct {
		code  string
		price float64
	}{
		{"basic", 100}, {"silver", 500}, {"gold", 1000}, {"platinum", 2500}, {"diamond", 5000},
	}
	for i, p := range catalog {
		repo.packages[p.code] = &models.Package{
			ID:        uint(i + 1),
			Code:      p.code,
			Name:      strings.Title(p.code),
			Price:     p.price,
			SortOrder: i + 1,
		}
	}
	return repo
}

func (s *stubPackageRepo) FindByID(_ context.Context, id uint) (*models.Package, error) {
	for _, p := range s.packages {
		if p.ID == id {
			copied := *p
			return &copied, nil
		}
	}
	return nil, domain.ErrPackageNotFound
}

func (s *stubPackageRepo) FindByCode(_ context.Context, code string) (*models.Package, error) {
	p, ok := s.packages[code]
	if !ok {
		return nil, domain.ErrPackageNotFound
	}
	copied := *p
	return &copied, nil
}

func (s *stubPackageRepo) List(_ context.Context) ([]models.Package, error) {
	out := make([]models.Package, 0, len(s.packages))
	for _, p := range s.packages {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

// ---------------------------------------------------------------
// withdrawals
// ---------------------------------------------------------------

type stubWithdrawalRepo struct {
	withdrawals map[uint]*models.Withdrawal
	nextID      uint
	failCreate  bool
}

func newStubWithdrawalRepo() *stubWithdrawalRepo {
	return &stubWithdrawalRepo{withdrawals: make(map[uint]*models.Withdrawal), nextID: 1}
}

func (s *stubWithdrawalRepo) Create(_ context.Context, w *models.Withdrawal) error {
	if s.failCreate {
		return errors.New("create failed")
	}
	w.ID = s.nextID
	s.nextID++
	w.RequestedAt = time.Now()
	copied := *w
	s.withdrawals[w.ID] = &copied
	return nil
}

func (s *stubWithdrawalRepo) FindByID(_ context.Context, id uint) (*models.Withdrawal, error) {
	w, ok := s.withdrawals[id]
	if !ok {
		return nil, domain.ErrWithdrawalNotFound
	}
	copied := *w
	return &copied, nil
}

func (s *stubWithdrawalRepo) ListByUser(_ context.Context, userID uint, status string, offset, limit int) ([]models.Withdrawal, int64, error) {
	var out []models.Withdrawal
	for _, w := range s.withdrawals {
		if w.UserID != userID {
			continue
		}
		if status != "" && w.Status != status {
			continue
		}
		out = append(out, *w)
	}
	return out, int64(len(out)), nil
}

func (s *stubWithdrawalRepo) List(_ context.Context, status string, offset, limit int) ([]models.Withdrawal, int64, error) {
	var out []models.Withdrawal
	for _, w := range s.withdrawals {
		if status != "" && w.Status != status {
			continue
		}
		out = append(out, *w)
	}
	return out, int64(len(out)), nil
}

func (s *stubWithdrawalRepo) MarkProcessed(_ context.Context, id uint, status string, reason *string, adminID uint, processedAt time.Time) error {
	w, ok := s.withdrawals[id]
	if !ok {
		return domain.ErrWithdrawalNotFound
	}
	if w.Status != string(domain.WithdrawalPending) {
		return domain.ErrWithdrawalProcessed
	}
	w.Status = status
	w.RejectReason = reason
	w.ProcessedBy = &adminID
	w.ProcessedAt = &processedAt
	return nil
}

func (s *stubWithdrawalRepo) CountByStatus(_ context.Context, status string) (int64, error) {
	var n int64
	for _, w := range s.withdrawals {
		if w.Status == status {
			n++
		}
	}
	return n, nil
}

func (s *stubWithdrawalRepo) SumAmountByStatus(_ context.Context, status string) (float64, error) {
	var total float64
	for _, w := range s.withdrawals {
		if w.Status == status {
			total += w.Amount
		}
	}
	return total, nil
}

// ---------------------------------------------------------------
// transactions
// ---------------------------------------------------------------

type stubTransactionRepo struct {
	transactions []models.Transaction
}

func newStubTransactionRepo() *stubTransactionRepo {
	return &stubTransactionRepo{}
}

func (s *stubTransactionRepo) Create(_ context.Context, tx *models.Transaction) error {
	tx.ID = uint(len(s.transactions) + 1)
	tx.CreatedAt = time.Now()
	s.transactions = append(s.transactions, *tx)
	return nil
}

func (s *stubTransactionRepo) ListByUser(_ context.Context, userID uint, txType string, offset, limit int) ([]models.Transaction, int64, error) {
	var out []models.Transaction
	for _, tx := range s.transactions {
		if tx.UserID != userID {
			continue
		}
		if txType != "" && tx.TransactionType != txType {
			continue
		}
		out = append(out, tx)
	}
	return out, int64(len(out)), nil
}

func (s *stubTransactionRepo) ListRecent(_ context.Context, limit int) ([]models.Transaction, error) {
	if len(s.transactions) <= limit {
		return s.transactions, nil
	}
	return s.transactions[len(s.transactions)-limit:], nil
}

func (s *stubTransactionRepo) byType(txType string) []models.Transaction {
	var out []models.Transaction
	for _, tx := range s.transactions {
		if tx.TransactionType == txType {
			out = append(out, tx)
		}
	}
	return out
}

// ---------------------------------------------------------------
// notifications
// ---------------------------------------------------------------

type stubNotificationRepo struct {
	notifications []models.Notification
}

func newStubNotificationRepo() *stubNotificationRepo {
	return &stubNotificationRepo{}
}

func (s *stubNotificationRepo) Create(_ context.Context, n *models.Notification) error {
	n.ID = uint(len(s.notifications) + 1)
	n.CreatedAt = time.Now()
	s.notifications = append(s.notifications, *n)
	return nil
}

func (s *stubNotificationRepo) ListByUser(_ context.Context, userID uint, unreadOnly bool, offset, limit int) ([]models.Notification, int64, error) {
	var out []models.Notification
	for _, n := range s.notifications {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		out = append(out, n)
	}
	return out, int64(len(out)), nil
}

func (s *stubNotificationRepo) MarkRead(_ context.Context, id, userID uint) error {
	for i := range s.notifications {
		if s.notifications[i].ID == id && s.notifications[i].UserID == userID {
			s.notifications[i].IsRead = true
			return nil
		}
	}
	return domain.ErrNotFound
}

func (s *stubNotificationRepo) MarkAllRead(_ context.Context, userID uint) error {
	for i := range s.notifications {
		if s.notifications[i].UserID == userID {
			s.notifications[i].IsRead = true
		}
	}
	return nil
}

func (s *stubNotificationRepo) CountUnread(_ context.Context, userID uint) (int64, error) {
	var n int64
	for _, notif := range s.notifications {
		if notif.UserID == userID && !notif.IsRead {
			n++
		}
	}
	return n, nil
}

func (s *stubNotificationRepo) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	var kept []models.Notification
	var deleted int64
	for _, n := range s.notifications {
		if n.IsRead && n.CreatedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, n)
	}
	s.notifications = kept
	return deleted, nil
}

func (s *stubNotificationRepo) byType(notifType string) []models.Notification {
	var out []models.Notification
	for _, n := range s.notifications {
		if n.Type == notifType {
			out = append(out, n)
		}
	}
	return out
}

// ---------------------------------------------------------------
// refresh tokens
// ---------------------------------------------------------------

type stubRefreshTokenRepo struct {
	tokens map[string]*models.RefreshToken
	nextID uint
}

func newStubRefreshTokenRepo() *stubRefreshTokenRepo {
	return &stubRefreshTokenRepo{tokens: make(map[string]*models.RefreshToken), nextID: 1}
}

func (s *stubRefreshTokenRepo) Create(_ context.Context, token *models.RefreshToken) error {
	token.ID = s.nextID
	s.nextID++
	copied := *token
	s.tokens[token.TokenHash] = &copied
	return nil
}

func (s *stubRefreshTokenRepo) FindByTokenHash(_ context.Context, hash string) (*models.RefreshToken, error) {
	t, ok := s.tokens[hash]
	if !ok {
		return nil, domain.ErrTokenInvalid
	}
	copied := *t
	return &copied, nil
}

func (s *stubRefreshTokenRepo) Revoke(_ context.Context, id uint) error {
	now := time.Now()
	for _, t := range s.tokens {
		if t.ID == id {
			t.RevokedAt = &now
			return nil
		}
	}
	return nil
}

func (s *stubRefreshTokenRepo) RevokeAllByUser(_ context.Context, userID uint) error {
	now := time.Now()
	for _, t := range s.tokens {
		if t.UserID == userID && t.RevokedAt == nil {
			t.RevokedAt = &now
		}
	}
	return nil
}

func (s *stubRefreshTokenRepo) DeleteExpired(_ context.Context) (int64, error) {
	var deleted int64
	for hash, t := range s.tokens {
		if time.Now().After(t.ExpiresAt) {
			delete(s.tokens, hash)
			deleted++
		}
	}
	return deleted, nil
}
