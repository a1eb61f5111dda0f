package models

import "testing"

func TestTransactionIsTerminal(t *testing.T) {
	t.Parallel()

	cases := map[string]bool{
		TransactionStatusPending: false,
		TransactionStatusSettled: true,
		TransactionStatusExpired: true,
	}
	for status, want := range cases {
		tx := Transaction{Status: status}
		if got := tx.IsTerminal(); got != want {
			t.Fatalf("IsTerminal(%s) = %v, want %v", status, got, want)
		}
	}
}
