package payment

import (
	"encoding/json"
	"fmt"
	"strings"

	"rendsocial/app/models"
)

// Notification is the subset of a provider webhook payload this system acts
// on. Additional fields are carried only for signature verification.
type Notification struct {
	OrderID           string `json:"order_id"`
	TransactionStatus string `json:"transaction_status"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	SignatureKey      string `json:"signature_key"`
}

// ParseNotification decodes a raw webhook body. A payload is structurally
// malformed when it is not JSON or lacks order_id/transaction_status; that
// is the only case the webhook endpoint answers with a client error.
func ParseNotification(raw []byte) (*Notification, error) {
	var n Notification
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if strings.TrimSpace(n.OrderID) == "" {
		return nil, fmt.Errorf("%w: missing order_id", ErrValidation)
	}
	if strings.TrimSpace(n.TransactionStatus) == "" {
		return nil, fmt.Errorf("%w: missing transaction_status", ErrValidation)
	}
	return &n, nil
}

// MapProviderStatus translates a provider status string into the internal
// target status. Empty means the notification is informational and the
// transaction is left untouched.
func MapProviderStatus(providerStatus string) string {
	switch strings.ToLower(strings.TrimSpace(providerStatus)) {
	case "settlement", "capture":
		return models.TransactionStatusSettled
	case "expire", "cancel", "deny", "failure":
		return models.TransactionStatusExpired
	default:
		return ""
	}
}
