package controllers

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"rendsocial/app/repository"
	"rendsocial/internal/pkg/imagehost"
	"rendsocial/internal/pkg/upload"
	"rendsocial/internal/pkg/usercontext"
	"rendsocial/internal/pkg/utils"
)

const maxAvatarBytes = 5 * 1024 * 1024

// HandleProfileGet returns the public profile of any user.
func HandleProfileGet(c *fiber.Ctx) error {
	userID := parseUintParam(c, "userId")
	if userID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(errorJSON("bad_request", "Invalid user id"))
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	user, err := repo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(errorJSON("not_found", "User not found"))
		}
		return c.Status(fiber.StatusInternalServerError).JSON(errorJSON("internal_server_error", "Failed to load profile"))
	}

	return c.JSON(fiber.Map{
		"id":       user.ID,
		"username": user.Username,
		"name":     user.Name,
		"image":    user.Image,
	})
}

// HandleProfileImageUpdate uploads a new avatar for the authenticated user.
func HandleProfileImageUpdate(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorJSON("bad_request", "Missing image file"))
	}
	if fileHeader.Size > maxAvatarBytes {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(errorJSON("too_large", "Image exceeds the 5 MB limit"))
	}

	head, err := readFileHead(fileHeader)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorJSON("bad_request", "Could not read uploaded file"))
	}
	contentType, err := upload.ValidateImageBySniff(fileHeader.Filename, head)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorJSON("bad_request", err.Error()))
	}
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))

	repo := repository.GetGlobalFactory().GetUserRepository()
	user, err := repo.GetByID(userCtx.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(errorJSON("internal_server_error", "Failed to load user"))
	}

	cfg, err := imagehost.LoadConfig()
	if err != nil || !cfg.IsEnabled() {
		return c.Status(fiber.StatusServiceUnavailable).JSON(errorJSON("storage_unavailable", "Image storage is not configured"))
	}
	client, err := imagehost.NewClient(cfg)
	if err != nil {
		log.Errorf("image storage init failed: %v", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(errorJSON("storage_unavailable", "Image storage is not reachable"))
	}

	src, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorJSON("bad_request", "Could not read uploaded file"))
	}
	defer src.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	objectKey := cfg.AvatarObjectKey(user.Username, ext)
	url, err := client.Upload(ctx, objectKey, src, fileHeader.Size, contentType)
	if err != nil {
		log.Errorf("avatar upload failed for user %d: %v", user.ID, err)
		return c.Status(fiber.StatusBadGateway).JSON(errorJSON("upload_failed", "Failed to store image"))
	}

	user.Image = url
	if err := repo.Update(user); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(errorJSON("internal_server_error", "Failed to update profile"))
	}

	return c.JSON(fiber.Map{
		"id":       user.ID,
		"username": user.Username,
		"name":     user.Name,
		"image":    user.Image,
	})
}

// HandleProfileImageDelete removes the custom avatar and resets the default.
func HandleProfileImageDelete(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	repo := repository.GetGlobalFactory().GetUserRepository()
	user, err := repo.GetByID(userCtx.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(errorJSON("internal_server_error", "Failed to load user"))
	}

	if user.Image != "" {
		if cfg, err := imagehost.LoadConfig(); err == nil && cfg.IsEnabled() {
			if client, err := imagehost.NewClient(cfg); err == nil {
				ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
				defer cancel()
				ext := strings.ToLower(filepath.Ext(user.Image))
				// Best effort; a dangling object is cheaper than a 500 here.
				if err := client.Delete(ctx, cfg.AvatarObjectKey(user.Username, ext)); err != nil {
					log.Warnf("avatar object delete failed for user %d: %v", user.ID, err)
				}
			}
		}
	}

	user.Image = utils.GetGravatarURL(user.Email, 200)
	if err := repo.Update(user); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(errorJSON("internal_server_error", "Failed to update profile"))
	}

	return c.SendStatus(fiber.StatusNoContent)
}
