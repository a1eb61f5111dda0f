package controllers

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"rendsocial/app/models"
	"rendsocial/app/repository"
	"rendsocial/internal/pkg/imagehost"
	"rendsocial/internal/pkg/metrics/counter"
	"rendsocial/internal/pkg/shortener"
	"rendsocial/internal/pkg/upload"
	"rendsocial/internal/pkg/usercontext"
)

const (
	maxPostImageBytes = 10 * 1024 * 1024
	slugSuffixLength  = 6
)

var slugInvalidChars = regexp.MustCompile(`[^a-z0-9]+`)

// slugify turns a post title into a URL-safe slug with a random suffix so
// identical titles never collide.
func slugify(title string) (string, error) {
	base := slugInvalidChars.ReplaceAllString(strings.ToLower(title), "-")
	base = strings.Trim(base, "-")
	if len(base) > 80 {
		base = base[:80]
	}
	suffix, err := shortener.GenerateSecureSlug(slugSuffixLength)
	if err != nil {
		return "", err
	}
	if base == "" {
		return suffix, nil
	}
	return base + "-" + suffix, nil
}

// HandlePostCreate creates a post with an uploaded image.
func HandlePostCreate(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	title := strings.TrimSpace(c.FormValue("title"))
	description := strings.TrimSpace(c.FormValue("description"))
	if title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(errorJSON("bad_request", "Title is required"))
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorJSON("bad_request", "Missing image file"))
	}
	if fileHeader.Size > maxPostImageBytes {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(errorJSON("too_large", "Image exceeds the 10 MB limit"))
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

	slug, err := slugify(title)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(errorJSON("internal_server_error", "Failed to generate slug"))
	}

	post := &models.Post{
		UUID:        uuid.New().String(),
		UserID:      userCtx.UserID,
		Title:       title,
		Slug:        slug,
		Description: description,
	}
	if err := post.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorJSON("validation_failed", err.Error()))
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

	now := time.Now()
	objectKey := cfg.PostObjectKey(post.UUID, ext, now.Year(), int(now.Month()))
	url, err := client.Upload(ctx, objectKey, src, fileHeader.Size, contentType)
	if err != nil {
		log.Errorf("post image upload failed for user %d: %v", userCtx.UserID, err)
		return c.Status(fiber.StatusBadGateway).JSON(errorJSON("upload_failed", "Failed to store image"))
	}
	post.Image = url

	if err := repository.GetGlobalFactory().GetPostRepository().Create(post); err != nil {
		log.Errorf("post create failed for user %d: %v", userCtx.UserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(errorJSON("internal_server_error", "Failed to create post"))
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

// HandlePostGet returns a single post by its public id.
func HandlePostGet(c *fiber.Ctx) error {
	post, err := loadPost(c)
	if post == nil {
		return err
	}

	if err := counter.AddPostView(post.ID); err != nil {
		log.Debugf("view counter increment failed for post %s: %v", post.UUID, err)
	}

	return c.JSON(post)
}

// HandlePostsByUser lists a user's posts, newest first.
func HandlePostsByUser(c *fiber.Ctx) error {
	userID := parseUintParam(c, "userId")
	if userID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(errorJSON("bad_request", "Invalid user id"))
	}

	offset, limit := parsePagination(c)
	posts, err := repository.GetGlobalFactory().GetPostRepository().GetByUserID(userID, offset, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(errorJSON("internal_server_error", "Failed to load posts"))
	}
	return c.JSON(fiber.Map{"posts": posts})
}

// HandlePostUpdate edits title/description of an own post.
func HandlePostUpdate(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	post, err := loadPost(c)
	if post == nil {
		return err
	}
	if post.UserID != userCtx.UserID {
		return c.Status(fiber.StatusForbidden).JSON(errorJSON("forbidden", "Not your post"))
	}

	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorJSON("bad_request", "Invalid request body"))
	}

	if req.Title != nil && strings.TrimSpace(*req.Title) != "" {
		post.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		post.Description = strings.TrimSpace(*req.Description)
	}
	if err := post.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorJSON("validation_failed", err.Error()))
	}

	if err := repository.GetGlobalFactory().GetPostRepository().Update(post); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(errorJSON("internal_server_error", "Failed to update post"))
	}
	return c.JSON(post)
}

// HandlePostDelete removes an own post and its stored image.
func HandlePostDelete(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	post, err := loadPost(c)
	if post == nil {
		return err
	}
	if post.UserID != userCtx.UserID {
		return c.Status(fiber.StatusForbidden).JSON(errorJSON("forbidden", "Not your post"))
	}

	if post.Image != "" {
		if cfg, cfgErr := imagehost.LoadConfig(); cfgErr == nil && cfg.IsEnabled() {
			if client, cErr := imagehost.NewClient(cfg); cErr == nil {
				ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
				defer cancel()
				ext := strings.ToLower(filepath.Ext(post.Image))
				objectKey := cfg.PostObjectKey(post.UUID, ext, post.CreatedAt.Year(), int(post.CreatedAt.Month()))
				// Best effort; a dangling object is cheaper than a 500 here.
				if err := client.Delete(ctx, objectKey); err != nil {
					log.Warnf("post image delete failed for %s: %v", post.UUID, err)
				}
			}
		}
	}

	if err := repository.GetGlobalFactory().GetPostRepository().Delete(post.ID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(errorJSON("internal_server_error", "Failed to delete post"))
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleFeed lists posts by the users the caller follows, plus their own,
// newest first.
func HandleFeed(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	factory := repository.GetGlobalFactory()
	ids, err := factory.GetFollowRepository().ListFollowingIDs(userCtx.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(errorJSON("internal_server_error", "Failed to load follow graph"))
	}
	ids = append(ids, userCtx.UserID)

	offset, limit := parsePagination(c)
	posts, err := factory.GetPostRepository().Feed(ids, offset, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(errorJSON("internal_server_error", "Failed to load feed"))
	}
	return c.JSON(fiber.Map{"posts": posts})
}

// loadPost resolves the :postId route parameter to a post. On failure it
// writes the error response itself and returns a nil post.
func loadPost(c *fiber.Ctx) (*models.Post, error) {
	postID := strings.TrimSpace(c.Params("postId"))
	if postID == "" {
		return nil, c.Status(fiber.StatusBadRequest).JSON(errorJSON("bad_request", "Invalid post id"))
	}

	post, err := repository.GetGlobalFactory().GetPostRepository().GetByUUID(postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, c.Status(fiber.StatusNotFound).JSON(errorJSON("not_found", "Post not found"))
		}
		return nil, c.Status(fiber.StatusInternalServerError).JSON(errorJSON("internal_server_error", "Failed to load post"))
	}
	return post, nil
}
