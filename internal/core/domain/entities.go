package domain

import "time"

// Role represents user role in the system
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// UserStatus represents the lifecycle state of a member account
type UserStatus string

const (
	StatusActive    UserStatus = "active"
	StatusInactive  UserStatus = "inactive"
	StatusSuspended UserStatus = "suspended"
)

// WithdrawalStatus represents the state of a withdrawal request.
// pending is the only non-terminal state; approved and rejected are terminal.
type WithdrawalStatus string

const (
	WithdrawalPending  WithdrawalStatus = "pending"
	WithdrawalApproved WithdrawalStatus = "approved"
	WithdrawalRejected WithdrawalStatus = "rejected"
)

// User represents a member in the domain layer
type User struct {
	ID              uint
	ReferralCode    string
	FullName        string
	Email           string
	Mobile          string
	Password        string // Hashed
	Role            Role
	PackageID       *uint
	Balance         float64
	TotalEarnings   float64
	DirectReferrals int
	TeamSize        int
	ReferrerID      *uint // nil means root of a referral tree
	Status          UserStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TokenPair represents access and refresh tokens
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// TreeNode is a derived, read-only view of a member and its downline.
// Built fresh on each query and never persisted.
type TreeNode struct {
	UserID        uint        `json:"user_id"`
	Name          string      `json:"name"`
	Email         string      `json:"email"`
	PackageCode   string      `json:"package"`
	TotalEarnings float64     `json:"earnings"`
	JoinedAt      time.Time   `json:"join_date"`
	Children      []*TreeNode `json:"children"`
}

// EarningsBreakdown is the commission breakdown for one member.
type EarningsBreakdown struct {
	Direct     float64 `json:"direct"`
	Level      float64 `json:"level"`
	Matching   float64 `json:"matching"`
	Leadership float64 `json:"leadership"`
	Total      float64 `json:"total"`
}

// Income plan rates. LevelRates below is the published 5-level decay table;
// the earnings calculator uses the flat LevelBonusPerReferral instead,
// matching the plan as currently sold.
const (
	DirectCommissionRate  = 0.10
	MatchingBonusRate     = 0.02
	LeadershipBonusRate   = 0.01
	LevelBonusPerReferral = 50.0
	LeadershipPerHead     = 10.0
	LeadershipTeamMinimum = 10
	DefaultTreeDepth      = 3
	MaxTreeDepth          = 6
)

// LevelRates holds the per-level bonus rates for levels 1-5.
var LevelRates = [5]float64{0.05, 0.03, 0.02, 0.01, 0.01}
