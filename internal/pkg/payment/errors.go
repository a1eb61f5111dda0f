package payment

import "errors"

// Sentinel errors recovered at the HTTP boundary. ErrGateway wraps the
// underlying provider failure; everything else is returned bare.
var (
	ErrMembershipNotFound  = errors.New("membership not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrAlreadyPurchased    = errors.New("membership already purchased")
	ErrValidation          = errors.New("invalid payload")
	ErrGateway             = errors.New("payment gateway error")
)
