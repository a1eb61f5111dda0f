package models

import "time"

const (
	TransactionStatusPending = "PENDING"
	TransactionStatusSettled = "SETTLED"
	TransactionStatusExpired = "EXPIRED"
)

// Transaction records a single membership purchase attempt against the
// payment gateway. One row may exist per (user, membership) pair; the
// compound unique index is the arbiter under concurrent purchase attempts,
// not application code.
type Transaction struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	OrderID      string     `gorm:"type:varchar(32) CHARACTER SET utf8 COLLATE utf8_bin;uniqueIndex;not null" json:"order_id"`
	UserID       uint       `gorm:"not null;index:ux_transactions_user_membership,unique,priority:1" json:"user_id"`
	User         User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	MembershipID uint       `gorm:"not null;index:ux_transactions_user_membership,unique,priority:2" json:"membership_id"`
	Membership   Membership `gorm:"foreignKey:MembershipID" json:"membership,omitempty"`
	Status       string     `gorm:"type:varchar(16);not null;default:'PENDING';index" json:"status"`
	Token        string     `gorm:"type:varchar(191);not null" json:"token"`
	RedirectURL  string     `gorm:"type:varchar(255);not null" json:"redirect_url"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsTerminal reports whether the status never transitions again.
func (t *Transaction) IsTerminal() bool {
	return t.Status == TransactionStatusSettled || t.Status == TransactionStatusExpired
}
