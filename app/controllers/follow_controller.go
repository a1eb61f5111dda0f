package controllers

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"rendsocial/app/models"
	"rendsocial/app/repository"
	"rendsocial/internal/pkg/cache"
	"rendsocial/internal/pkg/usercontext"
)

const followCountCacheTTL = 60 * time.Second

type followRequest struct {
	UserID uint `json:"user_id"`
}

// HandleFollowCreate files a follow request towards another user.
func HandleFollowCreate(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	var req followRequest
	if err := c.BodyParser(&req); err != nil || req.UserID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(errorJSON("bad_request", "Invalid request body"))
	}
	if req.UserID == userCtx.UserID {
		return c.Status(fiber.StatusBadRequest).JSON(errorJSON("bad_request", "Cannot follow yourself"))
	}

	factory := repository.GetGlobalFactory()
	if _, err := factory.GetUserRepository().GetByID(req.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(errorJSON("not_found", "User not found"))
		}
		return c.Status(fiber.StatusInternalServerError).JSON(errorJSON("internal_server_error", "Failed to load user"))
	}

	created, follow, err := factory.GetFollowRepository().CreateIfAbsent(&models.Follow{
		FollowerID:  userCtx.UserID,
		FollowingID: req.UserID,
		Status:      models.FollowStatusPending,
	})
	if err != nil {
		log.Errorf("follow create failed (%d -> %d): %v", userCtx.UserID, req.UserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(errorJSON("internal_server_error", "Failed to create follow"))
	}
	if !created {
		return c.Status(fiber.StatusConflict).JSON(errorJSON("conflict", "Already following this user"))
	}

	invalidateFollowCounts(userCtx.UserID, req.UserID)

	return c.Status(fiber.StatusCreated).JSON(follow)
}

// HandleFollowAccept accepts a pending follow request addressed to the
// authenticated user.
func HandleFollowAccept(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	var req followRequest
	if err := c.BodyParser(&req); err != nil || req.UserID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(errorJSON("bad_request", "Invalid request body"))
	}

	repo := repository.GetGlobalFactory().GetFollowRepository()
	if _, err := repo.GetByPair(req.UserID, userCtx.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(errorJSON("not_found", "Follow request not found"))
		}
		return c.Status(fiber.StatusInternalServerError).JSON(errorJSON("internal_server_error", "Failed to load follow"))
	}

	accepted, err := repo.AcceptIfPending(req.UserID, userCtx.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(errorJSON("internal_server_error", "Failed to accept follow"))
	}
	if !accepted {
		return c.Status(fiber.StatusConflict).JSON(errorJSON("conflict", "Follow request already accepted"))
	}

	invalidateFollowCounts(req.UserID, userCtx.UserID)

	return c.JSON(fiber.Map{"follower_id": req.UserID, "following_id": userCtx.UserID, "status": models.FollowStatusAccepted})
}

// HandleFollowDelete unfollows another user.
func HandleFollowDelete(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	var req followRequest
	if err := c.BodyParser(&req); err != nil || req.UserID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(errorJSON("bad_request", "Invalid request body"))
	}

	repo := repository.GetGlobalFactory().GetFollowRepository()
	if _, err := repo.GetByPair(userCtx.UserID, req.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(errorJSON("not_found", "Not following this user"))
		}
		return c.Status(fiber.StatusInternalServerError).JSON(errorJSON("internal_server_error", "Failed to load follow"))
	}

	if err := repo.Delete(userCtx.UserID, req.UserID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(errorJSON("internal_server_error", "Failed to unfollow"))
	}

	invalidateFollowCounts(userCtx.UserID, req.UserID)

	return c.SendStatus(fiber.StatusNoContent)
}

// HandleFollowLists returns accepted follower and following lists of a user.
func HandleFollowLists(c *fiber.Ctx) error {
	userID := parseUintParam(c, "userId")
	if userID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(errorJSON("bad_request", "Invalid user id"))
	}

	repo := repository.GetGlobalFactory().GetFollowRepository()
	followers, err := repo.ListFollowers(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(errorJSON("internal_server_error", "Failed to load followers"))
	}
	following, err := repo.ListFollowing(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(errorJSON("internal_server_error", "Failed to load following"))
	}

	followerUsers := make([]fiber.Map, 0, len(followers))
	for _, f := range followers {
		followerUsers = append(followerUsers, fiber.Map{
			"id":       f.Follower.ID,
			"username": f.Follower.Username,
			"name":     f.Follower.Name,
			"image":    f.Follower.Image,
		})
	}
	followingUsers := make([]fiber.Map, 0, len(following))
	for _, f := range following {
		followingUsers = append(followingUsers, fiber.Map{
			"id":       f.Following.ID,
			"username": f.Following.Username,
			"name":     f.Following.Name,
			"image":    f.Following.Image,
		})
	}

	return c.JSON(fiber.Map{
		"followers": followerUsers,
		"following": followingUsers,
	})
}

// HandleFollowCounts returns follower/following counts, served from the
// cache when fresh.
func HandleFollowCounts(c *fiber.Ctx) error {
	userID := parseUintParam(c, "userId")
	if userID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(errorJSON("bad_request", "Invalid user id"))
	}

	followersKey := followCountKey("followers", userID)
	followingKey := followCountKey("following", userID)

	if followers, err := cache.GetInt(followersKey); err == nil {
		if following, err := cache.GetInt(followingKey); err == nil {
			return c.JSON(fiber.Map{"followers": followers, "following": following, "cached": true})
		}
	}

	repo := repository.GetGlobalFactory().GetFollowRepository()
	followers, err := repo.CountFollowers(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(errorJSON("internal_server_error", "Failed to count followers"))
	}
	following, err := repo.CountFollowing(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(errorJSON("internal_server_error", "Failed to count following"))
	}

	if err := cache.Set(followersKey, strconv.FormatInt(followers, 10), followCountCacheTTL); err != nil {
		log.Debugf("follow count cache write failed: %v", err)
	}
	if err := cache.Set(followingKey, strconv.FormatInt(following, 10), followCountCacheTTL); err != nil {
		log.Debugf("follow count cache write failed: %v", err)
	}

	return c.JSON(fiber.Map{"followers": followers, "following": following, "cached": false})
}

func followCountKey(kind string, userID uint) string {
	return fmt.Sprintf("follow:%s:%d", kind, userID)
}

func invalidateFollowCounts(followerID, followingID uint) {
	for _, key := range []string{
		followCountKey("followers", followingID),
		followCountKey("following", followerID),
	} {
		if err := cache.Delete(key); err != nil {
			log.Debugf("follow count cache invalidation failed for %s: %v", key, err)
		}
	}
}
