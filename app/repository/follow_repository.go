package repository

import (
	"rendsocial/app/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// followRepository implements the FollowRepository interface
type followRepository struct {
	db *gorm.DB
}

// NewFollowRepository creates a new follow repository instance
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

// CreateIfAbsent inserts the follow edge unless one already exists for the
// (follower_id, following_id) pair; the unique index arbitrates races.
func (r *followRepository) CreateIfAbsent(follow *models.Follow) (bool, *models.Follow, error) {
	res := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "follower_id"},
			{Name: "following_id"},
		},
		DoNothing: true,
	}).Create(follow)
	if res.Error != nil {
		return false, nil, res.Error
	}

	created := res.RowsAffected > 0
	var stored models.Follow
	if err := r.db.Where("follower_id = ? AND following_id = ?", follow.FollowerID, follow.FollowingID).
		First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

// GetByPair retrieves the follow edge between two users
func (r *followRepository) GetByPair(followerID, followingID uint) (*models.Follow, error) {
	var follow models.Follow
	err := r.db.Where("follower_id = ? AND following_id = ?", followerID, followingID).First(&follow).Error
	if err != nil {
		return nil, err
	}
	return &follow, nil
}

// AcceptIfPending flips a PENDING follow request to ACCEPTED. Returns false
// when the edge was already accepted or does not exist.
func (r *followRepository) AcceptIfPending(followerID, followingID uint) (bool, error) {
	res := r.db.Model(&models.Follow{}).
		Where("follower_id = ? AND following_id = ? AND status = ?", followerID, followingID, models.FollowStatusPending).
		Update("status", models.FollowStatusAccepted)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Delete removes the follow edge between two users
func (r *followRepository) Delete(followerID, followingID uint) error {
	return r.db.Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&models.Follow{}).Error
}

// ListFollowers returns accepted edges pointing at the user, follower preloaded
func (r *followRepository) ListFollowers(userID uint) ([]models.Follow, error) {
	var follows []models.Follow
	err := r.db.Preload("Follower").
		Where("following_id = ? AND status = ?", userID, models.FollowStatusAccepted).
		Find(&follows).Error
	return follows, err
}

// ListFollowing returns accepted edges originating from the user, target preloaded
func (r *followRepository) ListFollowing(userID uint) ([]models.Follow, error) {
	var follows []models.Follow
	err := r.db.Preload("Following").
		Where("follower_id = ? AND status = ?", userID, models.FollowStatusAccepted).
		Find(&follows).Error
	return follows, err
}

// CountFollowers counts accepted followers of the user
func (r *followRepository) CountFollowers(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Follow{}).
		Where("following_id = ? AND status = ?", userID, models.FollowStatusAccepted).
		Count(&count).Error
	return count, err
}

// CountFollowing counts users the given user follows (accepted only)
func (r *followRepository) CountFollowing(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Follow{}).
		Where("follower_id = ? AND status = ?", userID, models.FollowStatusAccepted).
		Count(&count).Error
	return count, err
}

// ListFollowingIDs returns the IDs of users the given user follows
func (r *followRepository) ListFollowingIDs(userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.Follow{}).
		Where("follower_id = ? AND status = ?", userID, models.FollowStatusAccepted).
		Pluck("following_id", &ids).Error
	return ids, err
}
