package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"rendsocial/app/models"
	"rendsocial/app/repository"
	"rendsocial/internal/pkg/usercontext"
)

type membershipRequest struct {
	Amount int64 `json:"amount"`
}

// HandleMembershipCreate creates the caller's paid plan. One plan per user.
func HandleMembershipCreate(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	var req membershipRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorJSON("bad_request", "Invalid request body"))
	}
	if req.Amount <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(errorJSON("validation_failed", "Amount must be positive"))
	}

	repo := repository.GetGlobalFactory().GetMembershipRepository()
	if _, err := repo.GetByUserID(userCtx.UserID); err == nil {
		return c.Status(fiber.StatusConflict).JSON(errorJSON("conflict", "Membership plan already exists"))
	}

	membership := &models.Membership{
		UserID: userCtx.UserID,
		Amount: req.Amount,
	}
	if err := repo.Create(membership); err != nil {
		// The pre-check races against concurrent creates; the unique index
		// on user_id is the final arbiter.
		log.Errorf("membership create failed for user %d: %v", userCtx.UserID, err)
		return c.Status(fiber.StatusConflict).JSON(errorJSON("conflict", "Membership plan already exists"))
	}

	return c.Status(fiber.StatusCreated).JSON(membership)
}

// HandleMembershipUpdate changes the price of the caller's plan.
func HandleMembershipUpdate(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	var req membershipRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorJSON("bad_request", "Invalid request body"))
	}
	if req.Amount <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(errorJSON("validation_failed", "Amount must be positive"))
	}

	repo := repository.GetGlobalFactory().GetMembershipRepository()
	membership, err := repo.GetByUserID(userCtx.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(errorJSON("not_found", "No membership plan yet"))
		}
		return c.Status(fiber.StatusInternalServerError).JSON(errorJSON("internal_server_error", "Failed to load membership"))
	}

	membership.Amount = req.Amount
	if err := repo.Update(membership); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(errorJSON("internal_server_error", "Failed to update membership"))
	}

	return c.JSON(membership)
}

// HandleMembershipGet returns a plan by id, used by the purchase page.
func HandleMembershipGet(c *fiber.Ctx) error {
	membershipID := parseUintParam(c, "id")
	if membershipID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(errorJSON("bad_request", "Invalid membership id"))
	}

	membership, err := repository.GetGlobalFactory().GetMembershipRepository().GetByID(membershipID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(errorJSON("not_found", "Membership not found"))
		}
		return c.Status(fiber.StatusInternalServerError).JSON(errorJSON("internal_server_error", "Failed to load membership"))
	}

	return c.JSON(fiber.Map{
		"id":     membership.ID,
		"amount": membership.Amount,
		"user": fiber.Map{
			"id":       membership.User.ID,
			"username": membership.User.Username,
			"name":     membership.User.Name,
			"image":    membership.User.Image,
		},
	})
}
