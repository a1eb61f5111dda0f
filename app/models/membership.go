package models

import "time"

// Membership is a creator's paid plan. Each user owns at most one plan;
// Amount is in the smallest currency unit.
type Membership struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Amount    int64     `gorm:"type:bigint;not null" json:"amount" validate:"required,gt=0"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
