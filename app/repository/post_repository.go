package repository

import (
	"rendsocial/app/models"

	"gorm.io/gorm"
)

// postRepository implements the PostRepository interface
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository instance
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// Create creates a new post in the database
func (r *postRepository) Create(post *models.Post) error {
	return r.db.Create(post).Error
}

// GetByUUID retrieves a post by its UUID, author preloaded
func (r *postRepository) GetByUUID(uuid string) (*models.Post, error) {
	var post models.Post
	err := r.db.Preload("User").Where("uuid = ?", uuid).First(&post).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// GetBySlug retrieves a post by its slug, author preloaded
func (r *postRepository) GetBySlug(slug string) (*models.Post, error) {
	var post models.Post
	err := r.db.Preload("User").Where("slug = ?", slug).First(&post).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// GetByUserID retrieves posts by a user with pagination, newest first
func (r *postRepository) GetByUserID(userID uint, offset, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.Preload("User").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&posts).Error
	return posts, err
}

// Feed retrieves posts authored by any of the given users, newest first
func (r *postRepository) Feed(userIDs []uint, offset, limit int) ([]models.Post, error) {
	var posts []models.Post
	if len(userIDs) == 0 {
		return posts, nil
	}
	err := r.db.Preload("User").
		Where("user_id IN ?", userIDs).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&posts).Error
	return posts, err
}

// Update updates an existing post
func (r *postRepository) Update(post *models.Post) error {
	return r.db.Save(post).Error
}

// Delete soft-deletes a post by ID
func (r *postRepository) Delete(id uint) error {
	return r.db.Delete(&models.Post{}, id).Error
}

// CountByUserID counts posts authored by the user
func (r *postRepository) CountByUserID(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Post{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
