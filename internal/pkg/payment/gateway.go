package payment

import "context"

// CreateTransactionInput carries everything the provider needs to open a
// hosted payment page for a single membership purchase.
type CreateTransactionInput struct {
	OrderID       string
	Amount        int64
	ItemID        string
	ItemName      string
	CustomerName  string
	CustomerEmail string
}

// GatewayTransaction is the provider's answer to a successful create call.
// Both values are opaque to this system and immutable once persisted.
type GatewayTransaction struct {
	Token       string
	RedirectURL string
}

// Gateway abstracts the remote payment provider. Implementations must not
// retry failed create calls on their own; a blind retry can double-charge,
// so retry policy stays with the caller.
type Gateway interface {
	CreateTransaction(ctx context.Context, in CreateTransactionInput) (*GatewayTransaction, error)
	TransactionStatus(ctx context.Context, orderID string) (string, error)
}
