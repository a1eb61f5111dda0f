package repository

import (
	"rendsocial/app/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// transactionRepository implements the TransactionRepository interface
type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository instance
func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

// CreateIfAbsent inserts the transaction unless a row for the same
// (user_id, membership_id) pair already exists. The conflict is resolved by
// the database, not by a check-then-insert in application code. It returns
// whether this call created the row, plus the row now committed for the pair
// (the caller's on a win, the concurrent winner's otherwise).
func (r *transactionRepository) CreateIfAbsent(tx *models.Transaction) (bool, *models.Transaction, error) {
	res := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "user_id"},
			{Name: "membership_id"},
		},
		DoNothing: true,
	}).Create(tx)
	if res.Error != nil {
		return false, nil, res.Error
	}

	created := res.RowsAffected > 0
	var stored models.Transaction
	if err := r.db.Where("user_id = ? AND membership_id = ?", tx.UserID, tx.MembershipID).
		First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

// GetByOrderID retrieves a transaction by its order identifier
func (r *transactionRepository) GetByOrderID(orderID string) (*models.Transaction, error) {
	var tx models.Transaction
	err := r.db.Where("order_id = ?", orderID).First(&tx).Error
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// GetByUserAndMembership retrieves the transaction for a (user, membership) pair
func (r *transactionRepository) GetByUserAndMembership(userID, membershipID uint) (*models.Transaction, error) {
	var tx models.Transaction
	err := r.db.Where("user_id = ? AND membership_id = ?", userID, membershipID).First(&tx).Error
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// UpdateStatusIfPending moves a PENDING transaction to the given status.
// The WHERE clause carries the monotonicity rule: rows already in a terminal
// state match nothing and the update is a no-op, reported via the bool.
func (r *transactionRepository) UpdateStatusIfPending(orderID, status string) (bool, error) {
	res := r.db.Model(&models.Transaction{}).
		Where("order_id = ? AND status = ?", orderID, models.TransactionStatusPending).
		Update("status", status)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
