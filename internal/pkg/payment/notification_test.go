package payment

import (
	"errors"
	"testing"

	"rendsocial/app/models"
)

func TestParseNotification_Valid(t *testing.T) {
	t.Parallel()

	raw := []byte(`{"order_id":"a1b2c3","transaction_status":"settlement","status_code":"200","gross_amount":"5000.00","signature_key":"deadbeef"}`)
	n, err := ParseNotification(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.OrderID != "a1b2c3" || n.TransactionStatus != "settlement" {
		t.Fatalf("unexpected notification: %+v", n)
	}
	if n.StatusCode != "200" || n.GrossAmount != "5000.00" || n.SignatureKey != "deadbeef" {
		t.Fatalf("signature fields not carried: %+v", n)
	}
}

func TestParseNotification_IgnoresUnknownFields(t *testing.T) {
	t.Parallel()

	raw := []byte(`{"order_id":"x","transaction_status":"expire","payment_type":"qris","fraud_status":"accept"}`)
	n, err := ParseNotification(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.OrderID != "x" || n.TransactionStatus != "expire" {
		t.Fatalf("unexpected notification: %+v", n)
	}
}

func TestParseNotification_Malformed(t *testing.T) {
	t.Parallel()

	cases := []string{
		``,
		`[]`,
		`{`,
		`{"order_id":"","transaction_status":"settlement"}`,
		`{"order_id":"x","transaction_status":"  "}`,
	}
	for _, raw := range cases {
		if _, err := ParseNotification([]byte(raw)); !errors.Is(err, ErrValidation) {
			t.Fatalf("payload %q: expected ErrValidation, got %v", raw, err)
		}
	}
}

func TestMapProviderStatus(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"settlement":  models.TransactionStatusSettled,
		"capture":     models.TransactionStatusSettled,
		"SETTLEMENT":  models.TransactionStatusSettled,
		" settlement": models.TransactionStatusSettled,
		"expire":      models.TransactionStatusExpired,
		"cancel":      models.TransactionStatusExpired,
		"deny":        models.TransactionStatusExpired,
		"failure":     models.TransactionStatusExpired,
		"pending":     "",
		"authorize":   "",
		"refund":      "",
		"":            "",
	}
	for input, want := range cases {
		if got := MapProviderStatus(input); got != want {
			t.Fatalf("MapProviderStatus(%q) = %q, want %q", input, got, want)
		}
	}
}
