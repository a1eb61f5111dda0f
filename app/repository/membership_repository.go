package repository

import (
	"rendsocial/app/models"

	"gorm.io/gorm"
)

// membershipRepository implements the MembershipRepository interface
type membershipRepository struct {
	db *gorm.DB
}

// NewMembershipRepository creates a new membership repository instance
func NewMembershipRepository(db *gorm.DB) MembershipRepository {
	return &membershipRepository{db: db}
}

// Create creates a new membership plan in the database
func (r *membershipRepository) Create(membership *models.Membership) error {
	return r.db.Create(membership).Error
}

// GetByID retrieves a membership by its ID, owner preloaded
func (r *membershipRepository) GetByID(id uint) (*models.Membership, error) {
	var membership models.Membership
	err := r.db.Preload("User").First(&membership, id).Error
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

// GetByUserID retrieves the membership plan owned by the given user
func (r *membershipRepository) GetByUserID(userID uint) (*models.Membership, error) {
	var membership models.Membership
	err := r.db.Where("user_id = ?", userID).First(&membership).Error
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

// Update updates an existing membership plan
func (r *membershipRepository) Update(membership *models.Membership) error {
	return r.db.Save(membership).Error
}
