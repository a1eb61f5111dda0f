package controllers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"rendsocial/app/models"
	"rendsocial/internal/pkg/cache"
	"rendsocial/internal/pkg/database"
	"rendsocial/internal/pkg/payment"
	"rendsocial/internal/pkg/usercontext"
)

const (
	paymentRequestTimeout  = 20 * time.Second
	remoteStatusCacheTTL   = 15 * time.Second
	remoteStatusCachePrefix = "payment:status:"
)

type createTransactionRequest struct {
	MembershipID uint `json:"membership_id"`
}

func paymentService() *payment.Service {
	return payment.NewServiceFromDB(database.GetDB(), payment.NewMidtransClientFromEnv())
}

// HandleTransactionCreate starts (or resumes) a membership purchase.
func HandleTransactionCreate(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	var req createTransactionRequest
	if err := c.BodyParser(&req); err != nil || req.MembershipID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(errorJSON("bad_request", "Invalid request body"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), paymentRequestTimeout)
	defer cancel()

	result, err := paymentService().CreateTransaction(ctx, userCtx.UserID, req.MembershipID)
	if err != nil {
		switch {
		case errors.Is(err, payment.ErrMembershipNotFound):
			return c.Status(fiber.StatusNotFound).JSON(errorJSON("not_found", "Membership not found"))
		case errors.Is(err, payment.ErrUserNotFound):
			return c.Status(fiber.StatusNotFound).JSON(errorJSON("not_found", "User not found"))
		case errors.Is(err, payment.ErrAlreadyPurchased):
			return c.Status(fiber.StatusConflict).JSON(errorJSON("conflict", "Membership already purchased"))
		case errors.Is(err, payment.ErrGateway):
			log.Errorf("gateway error creating transaction for user %d: %v", userCtx.UserID, err)
			return c.Status(fiber.StatusBadGateway).JSON(errorJSON("gateway_error", "Payment gateway unavailable"))
		}
		log.Errorf("transaction create failed for user %d: %v", userCtx.UserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(errorJSON("internal_server_error", "Failed to create transaction"))
	}

	return c.Status(fiber.StatusCreated).JSON(result)
}

// HandleTransactionGet returns the caller's local transaction record.
func HandleTransactionGet(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	orderID := c.Params("orderId")

	tx, err := paymentService().GetTransaction(orderID)
	if err != nil {
		if errors.Is(err, payment.ErrTransactionNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(errorJSON("not_found", "Transaction not found"))
		}
		return c.Status(fiber.StatusInternalServerError).JSON(errorJSON("internal_server_error", "Failed to load transaction"))
	}
	if tx.UserID != userCtx.UserID {
		// Other users' orders are indistinguishable from missing ones.
		return c.Status(fiber.StatusNotFound).JSON(errorJSON("not_found", "Transaction not found"))
	}

	return c.JSON(fiber.Map{
		"order_id":     tx.OrderID,
		"token":        tx.Token,
		"redirect_url": tx.RedirectURL,
		"status":       tx.Status,
		"status_label": transactionStatusLabel(tx),
		"created_at":   tx.CreatedAt.UTC().Format(time.RFC3339),
	})
}

// HandleTransactionRemoteStatus asks the gateway for the provider-side state
// of an order. Responses are cached briefly because purchase pages poll this.
func HandleTransactionRemoteStatus(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	orderID := c.Params("orderId")

	svc := paymentService()
	tx, err := svc.GetTransaction(orderID)
	if err != nil {
		if errors.Is(err, payment.ErrTransactionNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(errorJSON("not_found", "Transaction not found"))
		}
		return c.Status(fiber.StatusInternalServerError).JSON(errorJSON("internal_server_error", "Failed to load transaction"))
	}
	if tx.UserID != userCtx.UserID {
		return c.Status(fiber.StatusNotFound).JSON(errorJSON("not_found", "Transaction not found"))
	}

	cacheKey := remoteStatusCachePrefix + orderID
	if status, err := cache.Get(cacheKey); err == nil {
		return c.JSON(fiber.Map{"order_id": orderID, "transaction_status": status, "cached": true})
	}

	ctx, cancel := context.WithTimeout(context.Background(), paymentRequestTimeout)
	defer cancel()

	status, err := svc.RemoteStatus(ctx, orderID)
	if err != nil {
		if errors.Is(err, payment.ErrGateway) {
			log.Errorf("gateway status lookup failed for order %s: %v", orderID, err)
			return c.Status(fiber.StatusBadGateway).JSON(errorJSON("gateway_error", "Payment gateway unavailable"))
		}
		return c.Status(fiber.StatusInternalServerError).JSON(errorJSON("internal_server_error", "Failed to fetch status"))
	}

	if err := cache.Set(cacheKey, status, remoteStatusCacheTTL); err != nil {
		log.Debugf("status cache write failed for order %s: %v", orderID, err)
	}

	return c.JSON(fiber.Map{"order_id": orderID, "transaction_status": status, "cached": false})
}

// HandlePaymentWebhook receives gateway notifications. Everything except a
// structurally unparseable payload is acknowledged with 200 so the gateway
// stops redelivering.
func HandlePaymentWebhook(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), paymentRequestTimeout)
	defer cancel()

	if err := paymentService().HandleNotification(ctx, c.Body()); err != nil {
		if errors.Is(err, payment.ErrValidation) {
			return c.Status(fiber.StatusBadRequest).JSON(errorJSON("bad_request", "Malformed notification payload"))
		}
		log.Errorf("webhook processing failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(errorJSON("internal_server_error", "Failed to process notification"))
	}

	return c.JSON(fiber.Map{"status": "ok"})
}

// transactionStatusLabel is used by purchase pages to render a human label
// without hardcoding provider vocabulary client-side.
func transactionStatusLabel(tx *models.Transaction) string {
	switch tx.Status {
	case models.TransactionStatusSettled:
		return "Paid"
	case models.TransactionStatusExpired:
		return "Expired"
	default:
		return fmt.Sprintf("Awaiting payment (order %s)", tx.OrderID)
	}
}
