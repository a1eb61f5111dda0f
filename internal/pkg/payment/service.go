package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"rendsocial/app/models"
	"rendsocial/app/repository"
	"rendsocial/internal/pkg/env"
	"rendsocial/internal/pkg/shortener"
)

// orderIDLength matches the short collision-resistant ids the gateway
// correlates webhooks with.
const orderIDLength = 10

// Service orchestrates membership purchases against the payment gateway and
// reconciles webhook notifications into the transaction store. All
// cross-process coordination is delegated to the store's unique indexes and
// guarded updates; the service holds no locks.
type Service struct {
	users        repository.UserRepository
	memberships  repository.MembershipRepository
	transactions repository.TransactionRepository
	gateway      Gateway

	verifySignature bool
	serverKey       string
}

// NewService creates a payment service from injected repositories and a
// gateway; used directly by tests with fakes.
func NewService(users repository.UserRepository, memberships repository.MembershipRepository, transactions repository.TransactionRepository, gateway Gateway) *Service {
	return &Service{
		users:        users,
		memberships:  memberships,
		transactions: transactions,
		gateway:      gateway,
	}
}

// NewServiceFromDB creates a payment service from a GORM DB handle, wiring
// signature verification from the environment.
func NewServiceFromDB(db *gorm.DB, gateway Gateway) *Service {
	s := NewService(
		repository.NewUserRepository(db),
		repository.NewMembershipRepository(db),
		repository.NewTransactionRepository(db),
		gateway,
	)
	if env.GetEnv("MIDTRANS_VERIFY_SIGNATURE", "false") == "true" {
		s.EnableSignatureVerification(env.GetEnv("MIDTRANS_SERVER_KEY", ""))
	}
	return s
}

// EnableSignatureVerification turns on signature_key checking for inbound
// notifications. Unverifiable notifications are acknowledged and dropped,
// never rejected, to stay compatible with at-least-once delivery.
func (s *Service) EnableSignatureVerification(serverKey string) {
	s.verifySignature = true
	s.serverKey = serverKey
}

// CreateTransactionResult is what purchase callers get back, whether the
// transaction was created by this call or already existed.
type CreateTransactionResult struct {
	OrderID     string `json:"order_id"`
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
	Status      string `json:"status"`
}

func resultFromTransaction(tx *models.Transaction) *CreateTransactionResult {
	return &CreateTransactionResult{
		OrderID:     tx.OrderID,
		Token:       tx.Token,
		RedirectURL: tx.RedirectURL,
		Status:      tx.Status,
	}
}

// CreateTransaction initiates a membership purchase for a user.
//
// A SETTLED transaction for the pair fails with ErrAlreadyPurchased. Any
// other existing transaction is returned unchanged without touching the
// gateway — the idempotent retry path. Otherwise the gateway is called
// first and the row inserted after, so a timed-out gateway call leaves no
// local record behind. Losing the insert race to a concurrent caller is not
// an error: the committed row is fetched and returned as if this caller had
// hit the retry path.
func (s *Service) CreateTransaction(ctx context.Context, userID, membershipID uint) (*CreateTransactionResult, error) {
	membership, err := s.memberships.GetByID(membershipID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMembershipNotFound
		}
		return nil, err
	}

	user, err := s.users.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	existing, err := s.transactions.GetByUserAndMembership(userID, membershipID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		if existing.Status == models.TransactionStatusSettled {
			return nil, ErrAlreadyPurchased
		}
		return resultFromTransaction(existing), nil
	}

	orderID, err := shortener.GenerateSecureSlug(orderIDLength)
	if err != nil {
		return nil, err
	}

	remote, err := s.gateway.CreateTransaction(ctx, CreateTransactionInput{
		OrderID:       orderID,
		Amount:        membership.Amount,
		ItemID:        fmt.Sprintf("%d", membership.ID),
		ItemName:      "Membership " + membership.User.Name,
		CustomerName:  user.Name,
		CustomerEmail: user.Email,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}

	created, stored, err := s.transactions.CreateIfAbsent(&models.Transaction{
		OrderID:      orderID,
		UserID:       userID,
		MembershipID: membershipID,
		Status:       models.TransactionStatusPending,
		Token:        remote.Token,
		RedirectURL:  remote.RedirectURL,
	})
	if err != nil {
		return nil, err
	}
	if !created {
		// A concurrent caller committed first. The remote transaction this
		// call opened is orphaned and expires on its own; the persisted
		// purchase stays singular.
		log.Infof("[payment] create race lost for user=%d membership=%d, returning committed order %s", userID, membershipID, stored.OrderID)
		if stored.Status == models.TransactionStatusSettled {
			return nil, ErrAlreadyPurchased
		}
	}
	return resultFromTransaction(stored), nil
}

// GetTransaction returns the local record for an order id.
func (s *Service) GetTransaction(orderID string) (*models.Transaction, error) {
	tx, err := s.transactions.GetByOrderID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return tx, nil
}

// RemoteStatus asks the gateway for the provider-side status of a known
// order. Unknown order ids fail before any network call.
func (s *Service) RemoteStatus(ctx context.Context, orderID string) (string, error) {
	if _, err := s.GetTransaction(orderID); err != nil {
		return "", err
	}

	status, err := s.gateway.TransactionStatus(ctx, orderID)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGateway, err)
	}
	return status, nil
}

// HandleNotification applies a webhook notification to the store. A nil
// return means the notification is acknowledged; only a structurally
// malformed payload returns ErrValidation. Unknown orders, terminal rows and
// unrecognized statuses are absorbed silently because the gateway redelivers
// anything it does not see acknowledged — including notifications that can
// outrun the creating request's own commit.
func (s *Service) HandleNotification(ctx context.Context, raw []byte) error {
	_ = ctx

	n, err := ParseNotification(raw)
	if err != nil {
		return err
	}

	if s.verifySignature && !VerifyNotificationSignature(n, s.serverKey) {
		log.Warnf("[payment] notification for order %s failed signature verification, ignoring", n.OrderID)
		return nil
	}

	tx, err := s.transactions.GetByOrderID(n.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Infof("[payment] notification for unknown order %s (status %s), ignoring", n.OrderID, n.TransactionStatus)
			return nil
		}
		return err
	}

	if tx.IsTerminal() {
		log.Debugf("[payment] order %s already %s, notification %s is a no-op", tx.OrderID, tx.Status, n.TransactionStatus)
		return nil
	}

	target := MapProviderStatus(n.TransactionStatus)
	if target == "" {
		log.Infof("[payment] order %s received informational status %s, no transition", tx.OrderID, n.TransactionStatus)
		return nil
	}

	updated, err := s.transactions.UpdateStatusIfPending(n.OrderID, target)
	if err != nil {
		return err
	}
	if !updated {
		// Another delivery transitioned the row between our read and the
		// guarded update; terminal states stay put either way.
		log.Debugf("[payment] order %s transitioned concurrently, notification %s dropped", tx.OrderID, n.TransactionStatus)
		return nil
	}

	log.Infof("[payment] order %s: %s -> %s", tx.OrderID, models.TransactionStatusPending, target)
	return nil
}
