package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"rendsocial/app/controllers"
	"rendsocial/internal/pkg/middleware"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New(limiter.Config{Max: 120}))
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	auth := middleware.JWTAuthMiddleware()

	// Users & auth
	users := api.Group("/users")
	users.Post("/", controllers.HandleUserRegister)
	users.Post("/login", controllers.HandleUserLogin)
	users.Get("/current", auth, controllers.HandleUserCurrent)
	users.Delete("/current", auth, controllers.HandleUserDelete)
	users.Get("/:userId/posts", controllers.HandlePostsByUser)

	// Profiles
	profiles := api.Group("/profiles")
	profiles.Get("/:userId", controllers.HandleProfileGet)
	profiles.Patch("/", auth, controllers.HandleProfileImageUpdate)
	profiles.Delete("/", auth, controllers.HandleProfileImageDelete)

	// Follow graph
	follows := api.Group("/follows")
	follows.Post("/", auth, controllers.HandleFollowCreate)
	follows.Patch("/", auth, controllers.HandleFollowAccept)
	follows.Delete("/", auth, controllers.HandleFollowDelete)
	follows.Get("/:userId", controllers.HandleFollowLists)
	follows.Get("/:userId/count", controllers.HandleFollowCounts)

	// Posts, comments, feed
	posts := api.Group("/posts")
	posts.Post("/", auth, controllers.HandlePostCreate)
	posts.Get("/:postId", controllers.HandlePostGet)
	posts.Patch("/:postId", auth, controllers.HandlePostUpdate)
	posts.Delete("/:postId", auth, controllers.HandlePostDelete)
	posts.Post("/:postId/comments", auth, controllers.HandleCommentCreate)
	posts.Get("/:postId/comments", controllers.HandleCommentList)
	posts.Delete("/:postId/comments/:commentId", auth, controllers.HandleCommentDelete)

	api.Get("/feed", auth, controllers.HandleFeed)

	// Memberships
	memberships := api.Group("/memberships")
	memberships.Post("/", auth, controllers.HandleMembershipCreate)
	memberships.Patch("/", auth, controllers.HandleMembershipUpdate)
	memberships.Get("/:id", controllers.HandleMembershipGet)

	// Payments. The webhook stays public: the gateway authenticates via the
	// signature key inside the payload, not via a bearer token.
	paymentGroup := api.Group("/payment")
	paymentGroup.Post("/transaction", auth, controllers.HandleTransactionCreate)
	paymentGroup.Get("/transaction/:orderId", auth, controllers.HandleTransactionGet)
	paymentGroup.Get("/transaction/:orderId/status", auth, controllers.HandleTransactionRemoteStatus)
	paymentGroup.Post("/webhook", controllers.HandlePaymentWebhook)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
