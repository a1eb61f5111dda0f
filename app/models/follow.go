package models

import "time"

const (
	FollowStatusPending  = "PENDING"
	FollowStatusAccepted = "ACCEPTED"
)

// Follow links a follower to a followed user. The compound unique index
// guarantees a single edge per direction even under concurrent requests.
type Follow struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	FollowerID  uint      `gorm:"not null;index:ux_follows_follower_following,unique,priority:1" json:"follower_id"`
	Follower    User      `gorm:"foreignKey:FollowerID" json:"follower,omitempty"`
	FollowingID uint      `gorm:"not null;index:ux_follows_follower_following,unique,priority:2;index" json:"following_id"`
	Following   User      `gorm:"foreignKey:FollowingID" json:"following,omitempty"`
	Status      string    `gorm:"type:varchar(16);not null;default:'PENDING';index" json:"status"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
