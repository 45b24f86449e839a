package models

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// ============================================================
// Auth & Member Tables
// ============================================================

// User represents users table
type User struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	ReferralCode    string         `gorm:"uniqueIndex;size:20;not null" json:"referral_code"`
	FullName        string         `gorm:"size:100;not null" json:"full_name"`
	Email           string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Mobile          string         `gorm:"size:20" json:"mobile"`
	Password        string         `gorm:"size:255;not null" json:"-"`
	Role            string         `gorm:"size:20;default:'USER'" json:"role"`
	PackageID       *uint          `gorm:"index" json:"package_id"`
	Balance         float64        `gorm:"type:decimal(15,2);default:0" json:"balance"`
	TotalEarnings   float64        `gorm:"type:decimal(15,2);default:0" json:"total_earnings"`
	DirectReferrals int            `gorm:"default:0" json:"direct_referrals"`
	TeamSize        int            `gorm:"default:0" json:"team_size"`
	ReferrerID      *uint          `gorm:"index" json:"referrer_id"`
	Status          string         `gorm:"size:20;default:'active';index" json:"status"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Package  *Package `gorm:"foreignKey:PackageID" json:"package,omitempty"`
	Referrer *User    `gorm:"foreignKey:ReferrerID" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// UserResponse DTO
type UserResponse struct {
	ID              uint      `json:"id"`
	ReferralCode    string    `json:"referral_code"`
	ReferralLink    string    `json:"referral_link"`
	FullName        string    `json:"full_name"`
	Email           string    `json:"email"`
	Mobile          string    `json:"mobile"`
	Role            string    `json:"role"`
	PackageID       *uint     `json:"package_id"`
	PackageCode     string    `json:"package,omitempty"`
	PackageName     string    `json:"package_name,omitempty"`
	Balance         float64   `json:"balance"`
	TotalEarnings   float64   `json:"total_earnings"`
	DirectReferrals int       `json:"direct_referrals"`
	TeamSize        int       `json:"team_size"`
	ReferrerID      *uint     `json:"referrer_id"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	resp := &UserResponse{
		ID:              u.ID,
		ReferralCode:    u.ReferralCode,
		ReferralLink:    "https://tradepro.network/ref/" + u.ReferralCode,
		FullName:        u.FullName,
		Email:           u.Email,
		Mobile:          u.Mobile,
		Role:            u.Role,
		PackageID:       u.PackageID,
		Balance:         u.Balance,
		TotalEarnings:   u.TotalEarnings,
		DirectReferrals: u.DirectReferrals,
		TeamSize:        u.TeamSize,
		ReferrerID:      u.ReferrerID,
		Status:          u.Status,
		CreatedAt:       u.CreatedAt,
	}

	if u.Package != nil {
		resp.PackageCode = u.Package.Code
		resp.PackageName = u.Package.Name
	}

	return resp
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Master Tables
// ============================================================

// Package is a priced membership tier (Master). Exactly five tiers are
// seeded, strictly increasing by price; an upgrade is only valid to a
// higher-priced tier.
type Package struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Code      string         `gorm:"size:20;uniqueIndex;not null" json:"code"`
	Name      string         `gorm:"size:50;not null" json:"name"`
	Price     float64        `gorm:"type:decimal(15,2);not null" json:"price"`
	Features  string         `gorm:"type:text" json:"-"`
	Color     string         `gorm:"size:20" json:"color"`
	Icon      string         `gorm:"size:50" json:"icon"`
	SortOrder int            `gorm:"not null" json:"sort_order"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Package) TableName() string {
	return "packages"
}

// FeatureList decodes the JSON-encoded feature list.
func (p *Package) FeatureList() []string {
	var features []string
	if p.Features != "" {
		_ = json.Unmarshal([]byte(p.Features), &features)
	}
	return features
}

// SetFeatureList encodes the ordered feature list.
func (p *Package) SetFeatureList(features []string) {
	data, _ := json.Marshal(features)
	p.Features = string(data)
}

// PackageResponse DTO
type PackageResponse struct {
	ID       uint     `json:"id"`
	Code     string   `json:"code"`
	Name     string   `json:"name"`
	Price    float64  `json:"price"`
	Features []string `json:"features"`
	Color    string   `json:"color"`
	Icon     string   `json:"icon"`
}

func (p *Package) ToResponse() *PackageResponse {
	return &PackageResponse{
		ID:       p.ID,
		Code:     p.Code,
		Name:     p.Name,
		Price:    p.Price,
		Features: p.FeatureList(),
		Color:    p.Color,
		Icon:     p.Icon,
	}
}

// ============================================================
// Main Tables
// ============================================================

// Withdrawal represents withdrawals table
type Withdrawal struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	UserID       uint       `gorm:"not null;index" json:"user_id"`
	Amount       float64    `gorm:"type:decimal(15,2);not null" json:"amount"`
	Method       string     `gorm:"size:50;not null" json:"method"`
	Details      string     `gorm:"type:text" json:"details"`
	Status       string     `gorm:"size:20;not null;default:'pending';index" json:"status"`
	RejectReason *string    `gorm:"type:text" json:"reject_reason"`
	RequestedAt  time.Time  `gorm:"autoCreateTime" json:"requested_at"`
	ProcessedAt  *time.Time `json:"processed_at"`
	ProcessedBy  *uint      `json:"processed_by"`

	// Relations
	User      *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Processor *User `gorm:"foreignKey:ProcessedBy" json:"-"`
}

func (Withdrawal) TableName() string {
	return "withdrawals"
}

// WithdrawalResponse DTO
type WithdrawalResponse struct {
	ID           uint       `json:"id"`
	UserID       uint       `json:"user_id"`
	UserName     string     `json:"user_name,omitempty"`
	Amount       float64    `json:"amount"`
	Method       string     `json:"method"`
	Details      string     `json:"details"`
	Status       string     `json:"status"`
	RejectReason *string    `json:"reject_reason,omitempty"`
	RequestedAt  time.Time  `json:"requested_at"`
	ProcessedAt  *time.Time `json:"processed_at"`
}

func (w *Withdrawal) ToResponse() *WithdrawalResponse {
	resp := &WithdrawalResponse{
		ID:           w.ID,
		UserID:       w.UserID,
		Amount:       w.Amount,
		Method:       w.Method,
		Details:      w.Details,
		Status:       w.Status,
		RejectReason: w.RejectReason,
		RequestedAt:  w.RequestedAt,
		ProcessedAt:  w.ProcessedAt,
	}

	if w.User != nil {
		resp.UserName = w.User.FullName
	}

	return resp
}

// Transaction is the append-only balance/audit ledger
type Transaction struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"not null;index" json:"user_id"`
	TransactionType string    `gorm:"size:50;not null" json:"transaction_type"`
	Amount          float64   `gorm:"type:decimal(15,2)" json:"amount"`
	Description     string    `gorm:"type:text" json:"description"`
	PerformedBy     uint      `gorm:"not null" json:"performed_by"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Relations
	User *User `gorm:"foreignKey:UserID" json:"-"`
}

func (Transaction) TableName() string {
	return "transactions"
}

// Transaction Types
const (
	TxTypeRegister        = "REGISTER"
	TxTypeUpgrade         = "UPGRADE"
	TxTypeWithdrawRequest = "WITHDRAW_REQUEST"
	TxTypeWithdrawRefund  = "WITHDRAW_REFUND"
	TxTypeAdminAdjust     = "ADMIN_ADJUST"
	TxTypeReferral        = "REFERRAL"
)

// TransactionResponse DTO
type TransactionResponse struct {
	ID              uint      `json:"id"`
	UserID          uint      `json:"user_id"`
	UserName        string    `json:"user_name,omitempty"`
	TransactionType string    `json:"transaction_type"`
	Amount          float64   `json:"amount"`
	Description     string    `json:"description"`
	CreatedAt       time.Time `json:"created_at"`
}

func (t *Transaction) ToResponse() *TransactionResponse {
	resp := &TransactionResponse{
		ID:              t.ID,
		UserID:          t.UserID,
		TransactionType: t.TransactionType,
		Amount:          t.Amount,
		Description:     t.Description,
		CreatedAt:       t.CreatedAt,
	}

	if t.User != nil {
		resp.UserName = t.User.FullName
	}

	return resp
}

// Notification represents notifications table
type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Type      string    `gorm:"size:50;not null" json:"type"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	IsRead    bool      `gorm:"default:false;index" json:"is_read"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Relations
	User *User `gorm:"foreignKey:UserID" json:"-"`
}

func (Notification) TableName() string {
	return "notifications"
}

// Notification Types
const (
	NotifyWithdrawalSubmitted = "WITHDRAWAL_SUBMITTED"
	NotifyWithdrawalApproved  = "WITHDRAWAL_APPROVED"
	NotifyWithdrawalRejected  = "WITHDRAWAL_REJECTED"
	NotifyReferralJoined      = "REFERRAL_JOINED"
	NotifyPackageUpgraded     = "PACKAGE_UPGRADED"
)

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		// Master Tables
		&Package{},
		// Auth & Member Tables
		&User{},
		&RefreshToken{},
		// Main Tables
		&Withdrawal{},
		&Transaction{},
		&Notification{},
	)
}
