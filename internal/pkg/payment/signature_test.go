package payment

import (
	"crypto/sha512"
	"encoding/hex"
	"testing"
)

func signatureFor(orderID, statusCode, grossAmount, serverKey string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(sum[:])
}

func TestVerifyNotificationSignature_Valid(t *testing.T) {
	t.Parallel()

	n := &Notification{
		OrderID:     "order-1",
		StatusCode:  "200",
		GrossAmount: "5000.00",
	}
	n.SignatureKey = signatureFor(n.OrderID, n.StatusCode, n.GrossAmount, "secret")

	if !VerifyNotificationSignature(n, "secret") {
		t.Fatalf("expected valid signature to verify")
	}
}

func TestVerifyNotificationSignature_Invalid(t *testing.T) {
	t.Parallel()

	n := &Notification{
		OrderID:      "order-1",
		StatusCode:   "200",
		GrossAmount:  "5000.00",
		SignatureKey: signatureFor("order-1", "200", "5000.00", "secret"),
	}

	if VerifyNotificationSignature(n, "other-key") {
		t.Fatalf("signature must not verify with a different server key")
	}

	tampered := *n
	tampered.GrossAmount = "1.00"
	if VerifyNotificationSignature(&tampered, "secret") {
		t.Fatalf("signature must not verify after payload tampering")
	}
}

func TestVerifyNotificationSignature_MissingInputs(t *testing.T) {
	t.Parallel()

	n := &Notification{OrderID: "order-1", StatusCode: "200", GrossAmount: "5000.00"}
	if VerifyNotificationSignature(n, "secret") {
		t.Fatalf("missing signature_key must not verify")
	}

	n.SignatureKey = signatureFor("order-1", "200", "5000.00", "secret")
	if VerifyNotificationSignature(n, "") {
		t.Fatalf("missing server key must not verify")
	}
}
