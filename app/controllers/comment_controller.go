package controllers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"rendsocial/app/models"
	"rendsocial/app/repository"
	"rendsocial/internal/pkg/usercontext"
)

type commentRequest struct {
	Content string `json:"content"`
}

// HandleCommentCreate adds a comment to a post.
func HandleCommentCreate(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	post, err := loadPost(c)
	if post == nil {
		return err
	}

	var req commentRequest
	if err := c.BodyParser(&req); err != nil || strings.TrimSpace(req.Content) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(errorJSON("bad_request", "Comment content is required"))
	}

	comment := &models.Comment{
		UserID:  userCtx.UserID,
		PostID:  post.ID,
		Content: strings.TrimSpace(req.Content),
	}
	if err := repository.GetGlobalFactory().GetCommentRepository().Create(comment); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(errorJSON("internal_server_error", "Failed to create comment"))
	}

	return c.Status(fiber.StatusCreated).JSON(comment)
}

// HandleCommentList lists the comments of a post, oldest first.
func HandleCommentList(c *fiber.Ctx) error {
	post, err := loadPost(c)
	if post == nil {
		return err
	}

	offset, limit := parsePagination(c)
	comments, err := repository.GetGlobalFactory().GetCommentRepository().ListByPostID(post.ID, offset, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(errorJSON("internal_server_error", "Failed to load comments"))
	}

	return c.JSON(fiber.Map{"comments": comments})
}

// HandleCommentDelete removes an own comment.
func HandleCommentDelete(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	commentID := parseUintParam(c, "commentId")
	if commentID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(errorJSON("bad_request", "Invalid comment id"))
	}

	repo := repository.GetGlobalFactory().GetCommentRepository()
	comment, err := repo.GetByID(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(errorJSON("not_found", "Comment not found"))
		}
		return c.Status(fiber.StatusInternalServerError).JSON(errorJSON("internal_server_error", "Failed to load comment"))
	}
	if comment.UserID != userCtx.UserID {
		return c.Status(fiber.StatusForbidden).JSON(errorJSON("forbidden", "Not your comment"))
	}

	if err := repo.Delete(comment.ID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(errorJSON("internal_server_error", "Failed to delete comment"))
	}
	return c.SendStatus(fiber.StatusNoContent)
}
