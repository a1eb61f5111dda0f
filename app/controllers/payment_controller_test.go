package controllers

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestPaymentWebhookRejectsMalformedPayload(t *testing.T) {
	app := fiber.New()
	app.Post("/api/payment/webhook", HandlePaymentWebhook)

	req := httptest.NewRequest(fiber.MethodPost, "/api/payment/webhook", strings.NewReader("not json"))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestPaymentWebhookRejectsMissingFields(t *testing.T) {
	app := fiber.New()
	app.Post("/api/payment/webhook", HandlePaymentWebhook)

	req := httptest.NewRequest(fiber.MethodPost, "/api/payment/webhook", strings.NewReader(`{"transaction_status":"settlement"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
