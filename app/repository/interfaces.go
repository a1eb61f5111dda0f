package repository

import (
	"rendsocial/app/models"

	"gorm.io/gorm"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
	Update(user *models.User) error
	Delete(id uint) error
	Count() (int64, error)
}

// FollowRepository defines the interface for follow-graph operations
type FollowRepository interface {
	CreateIfAbsent(follow *models.Follow) (bool, *models.Follow, error)
	GetByPair(followerID, followingID uint) (*models.Follow, error)
	AcceptIfPending(followerID, followingID uint) (bool, error)
	Delete(followerID, followingID uint) error
	ListFollowers(userID uint) ([]models.Follow, error)
	ListFollowing(userID uint) ([]models.Follow, error)
	CountFollowers(userID uint) (int64, error)
	CountFollowing(userID uint) (int64, error)
	ListFollowingIDs(userID uint) ([]uint, error)
}

// PostRepository defines the interface for post-related database operations
type PostRepository interface {
	Create(post *models.Post) error
	GetByUUID(uuid string) (*models.Post, error)
	GetBySlug(slug string) (*models.Post, error)
	GetByUserID(userID uint, offset, limit int) ([]models.Post, error)
	Feed(userIDs []uint, offset, limit int) ([]models.Post, error)
	Update(post *models.Post) error
	Delete(id uint) error
	CountByUserID(userID uint) (int64, error)
}

// CommentRepository defines the interface for comment operations
type CommentRepository interface {
	Create(comment *models.Comment) error
	GetByID(id uint) (*models.Comment, error)
	ListByPostID(postID uint, offset, limit int) ([]models.Comment, error)
	Delete(id uint) error
}

// MembershipRepository defines the interface for membership plan operations
type MembershipRepository interface {
	Create(membership *models.Membership) error
	GetByID(id uint) (*models.Membership, error)
	GetByUserID(userID uint) (*models.Membership, error)
	Update(membership *models.Membership) error
}

// TransactionRepository defines the interface for purchase transaction
// persistence. CreateIfAbsent must be an atomic constrained insert on the
// (user_id, membership_id) unique index; UpdateStatusIfPending must be a
// guarded update so terminal states never revert.
type TransactionRepository interface {
	CreateIfAbsent(tx *models.Transaction) (bool, *models.Transaction, error)
	GetByOrderID(orderID string) (*models.Transaction, error)
	GetByUserAndMembership(userID, membershipID uint) (*models.Transaction, error)
	UpdateStatusIfPending(orderID, status string) (bool, error)
}

// Repositories struct holds all repository instances
type Repositories struct {
	User        UserRepository
	Follow      FollowRepository
	Post        PostRepository
	Comment     CommentRepository
	Membership  MembershipRepository
	Transaction TransactionRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:        NewUserRepository(db),
		Follow:      NewFollowRepository(db),
		Post:        NewPostRepository(db),
		Comment:     NewCommentRepository(db),
		Membership:  NewMembershipRepository(db),
		Transaction: NewTransactionRepository(db),
	}
}
