package payment

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

// VerifyNotificationSignature checks the Midtrans signature_key:
// sha512(order_id + status_code + gross_amount + server_key). Returns false
// when either side of the comparison is missing.
func VerifyNotificationSignature(n *Notification, serverKey string) bool {
	sig := strings.ToLower(strings.TrimSpace(n.SignatureKey))
	key := strings.TrimSpace(serverKey)
	if sig == "" || key == "" {
		return false
	}

	sum := sha512.Sum512([]byte(n.OrderID + n.StatusCode + n.GrossAmount + key))
	expected := hex.EncodeToString(sum[:])

	return subtle.ConstantTimeCompare([]byte(expected), []byte(sig)) == 1
}
