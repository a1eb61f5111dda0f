package controllers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"rendsocial/app/models"
)

func TestSlugify(t *testing.T) {
	slug, err := slugify("Hello, World! My First Post")
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(slug, "hello-world-my-first-post-"))
	// Random suffix after the final dash keeps duplicate titles unique.
	parts := strings.Split(slug, "-")
	assert.Len(t, parts[len(parts)-1], slugSuffixLength)
}

func TestSlugifyNonASCIIOnly(t *testing.T) {
	slug, err := slugify("!!! ***")
	assert.NoError(t, err)
	assert.Len(t, slug, slugSuffixLength)
	assert.NotContains(t, slug, "-")
}

func TestSlugifyDistinctForSameTitle(t *testing.T) {
	a, err := slugify("Same Title")
	assert.NoError(t, err)
	b, err := slugify("Same Title")
	assert.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestTransactionStatusLabel(t *testing.T) {
	assert.Equal(t, "Paid", transactionStatusLabel(&models.Transaction{Status: models.TransactionStatusSettled}))
	assert.Equal(t, "Expired", transactionStatusLabel(&models.Transaction{Status: models.TransactionStatusExpired}))
	assert.Contains(t, transactionStatusLabel(&models.Transaction{Status: models.TransactionStatusPending, OrderID: "abc"}), "abc")
}
