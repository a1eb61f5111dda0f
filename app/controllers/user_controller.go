package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"rendsocial/app/models"
	"rendsocial/app/repository"
	"rendsocial/internal/pkg/env"
	"rendsocial/internal/pkg/mail"
	"rendsocial/internal/pkg/security"
	"rendsocial/internal/pkg/usercontext"
	"rendsocial/internal/pkg/utils"
)

const sessionTokenTTL = 24 * time.Hour

type registerRequest struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type deleteAccountRequest struct {
	Password string `json:"password"`
}

// HandleUserRegister creates a new account.
func HandleUserRegister(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorJSON("bad_request", "Invalid request body"))
	}

	repo := repository.GetGlobalFactory().GetUserRepository()

	if _, err := repo.GetByUsername(req.Username); err == nil {
		return c.Status(fiber.StatusConflict).JSON(errorJSON("conflict", "Username already taken"))
	}
	if _, err := repo.GetByEmail(req.Email); err == nil {
		return c.Status(fiber.StatusConflict).JSON(errorJSON("conflict", "Email already registered"))
	}

	user, err := models.CreateUser(req.Username, req.Name, req.Email, req.Password)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorJSON("validation_failed", err.Error()))
	}
	user.Image = utils.GetGravatarURL(user.Email, 200)

	if err := repo.Create(user); err != nil {
		// The pre-checks race against concurrent registrations; the unique
		// indexes are the final arbiter.
		log.Errorf("user create failed: %v", err)
		return c.Status(fiber.StatusConflict).JSON(errorJSON("conflict", "Username or email already taken"))
	}

	go func(to, name string) {
		if err := mail.SendMail(to, "Welcome to RendSocial", "Hi "+name+",\n\nyour account is ready. Have fun!\n"); err != nil {
			log.Warnf("welcome mail to %s failed: %v", to, err)
		}
	}(user.Email, user.Name)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":       user.ID,
		"username": user.Username,
		"name":     user.Name,
		"email":    user.Email,
	})
}

// HandleUserLogin verifies credentials and issues a session token.
func HandleUserLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorJSON("bad_request", "Invalid request body"))
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	user, err := repo.GetByEmail(req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusUnauthorized).JSON(errorJSON("unauthorized", "Invalid email or password"))
		}
		return c.Status(fiber.StatusInternalServerError).JSON(errorJSON("internal_server_error", "Failed to load user"))
	}

	if !models.CheckPasswordHash(req.Password, user.Password) {
		return c.Status(fiber.StatusUnauthorized).JSON(errorJSON("unauthorized", "Invalid email or password"))
	}

	token, err := security.GenerateSessionToken(user.ID, user.Username, sessionTokenTTL, env.GetEnv("JWT_SECRET", ""))
	if err != nil {
		log.Errorf("session token generation failed for user %d: %v", user.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(errorJSON("internal_server_error", "Failed to create session"))
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user": fiber.Map{
			"id":       user.ID,
			"username": user.Username,
			"name":     user.Name,
			"email":    user.Email,
			"image":    user.Image,
		},
	})
}

// HandleUserCurrent returns the authenticated user's own account.
func HandleUserCurrent(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	repo := repository.GetGlobalFactory().GetUserRepository()
	user, err := repo.GetByID(userCtx.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(errorJSON("not_found", "User not found"))
		}
		return c.Status(fiber.StatusInternalServerError).JSON(errorJSON("internal_server_error", "Failed to load user"))
	}

	return c.JSON(fiber.Map{
		"id":         user.ID,
		"username":   user.Username,
		"name":       user.Name,
		"email":      user.Email,
		"image":      user.Image,
		"created_at": user.CreatedAt.UTC().Format(time.RFC3339),
	})
}

// HandleUserDelete removes the authenticated account after re-verifying the
// password.
func HandleUserDelete(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	var req deleteAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorJSON("bad_request", "Invalid request body"))
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	user, err := repo.GetByID(userCtx.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(errorJSON("not_found", "User not found"))
		}
		return c.Status(fiber.StatusInternalServerError).JSON(errorJSON("internal_server_error", "Failed to load user"))
	}

	if !models.CheckPasswordHash(req.Password, user.Password) {
		return c.Status(fiber.StatusUnauthorized).JSON(errorJSON("unauthorized", "Password verification failed"))
	}

	if err := repo.Delete(user.ID); err != nil {
		log.Errorf("user delete failed for user %d: %v", user.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(errorJSON("internal_server_error", "Failed to delete account"))
	}

	return c.SendStatus(fiber.StatusNoContent)
}
