package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/ovenfresh/internal/config"
	"github.com/example/ovenfresh/internal/handlers"
	"github.com/example/ovenfresh/internal/middleware"
	"github.com/example/ovenfresh/internal/services"
	"github.com/example/ovenfresh/internal/store"
)

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	st := store.New(db)
	mailer := services.NewBrevoMailer(cfg.MailAPIKey, cfg.MailSender, cfg.MailSenderName)
	accountService := services.NewAccountService(st.Users(), mailer, cfg.AdminRegisterCode)
	orderService := services.NewOrderService(st.Orders(), mailer, cfg.AdminNotifyEmail)

	authHandler := handlers.NewAuthHandler(accountService, cfg)
	profileHandler := handlers.NewProfileHandler(accountService, st)
	catalogHandler := handlers.NewCatalogHandler(db)
	cartHandler := handlers.NewCartHandler(db)
	orderHandler := handlers.NewOrderHandler(orderService)
	adminHandler := handlers.NewAdminHandler(db, orderService)
	marketingHandler := handlers.NewMarketingHandler(db)

	sensitive := middleware.NewIPRateLimiter(cfg.RateLimitPerMinute).Handler()
	authed := middleware.AuthMiddleware(cfg, st)
	admin := middleware.RequireAdmin()

	api := app.Group("/api")

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", sensitive, authHandler.Register)
	auth.Post("/login", sensitive, authHandler.Login)
	auth.Post("/oauth", authHandler.OAuthCallback)
	auth.Post("/forgot-password", sensitive, authHandler.ForgotPassword)
	auth.Post("/reset-password", authHandler.ResetPassword)
	auth.Post("/logout", authed, authHandler.Logout)
	auth.Post("/verify-email", authed, authHandler.VerifyEmail)
	auth.Post("/resend-verification", authed, authHandler.ResendVerification)

	// Catalog routes (public reads, admin writes)
	categories := api.Group("/categories")
	categories.Get("/", catalogHandler.ListCategories)
	categories.Get("/:id", catalogHandler.GetCategory)
	categories.Post("/", authed, admin, catalogHandler.CreateCategory)
	categories.Put("/:id", authed, admin, catalogHandler.UpdateCategory)
	categories.Delete("/:id", authed, admin, catalogHandler.DeleteCategory)

	products := api.Group("/products")
	products.Get("/", catalogHandler.ListProducts)
	products.Get("/:id", catalogHandler.GetProduct)
	products.Post("/", authed, admin, catalogHandler.CreateProduct)
	products.Put("/:id", authed, admin, catalogHandler.UpdateProduct)
	products.Delete("/:id", authed, admin, catalogHandler.DeleteProduct)

	// Newsletter
	api.Post("/newsletter", marketingHandler.SubscribeNewsletter)
	api.Post("/newsletter/unsubscribe", marketingHandler.UnsubscribeNewsletter)

	// Protected routes
	protected := api.Group("", authed)

	protected.Get("/profile", profileHandler.GetProfile)
	protected.Put("/profile", profileHandler.UpdateProfile)
	protected.Post("/profile/change-password", profileHandler.ChangePassword)
	protected.Delete("/profile", profileHandler.DeleteAccount)

	protected.Get("/cart", cartHandler.GetCart)
	protected.Post("/cart/items", cartHandler.AddItem)
	protected.Put("/cart/items/:id", cartHandler.UpdateItem)
	protected.Delete("/cart/items/:id", cartHandler.RemoveItem)
	protected.Delete("/cart", cartHandler.ClearCart)

	protected.Post("/orders", orderHandler.CreateOrder)
	protected.Get("/orders", orderHandler.ListOrders)
	protected.Get("/orders/:id", orderHandler.GetOrder)
	protected.Put("/orders/:id", orderHandler.UpdateOrder)

	protected.Get("/subscriptions", marketingHandler.ListSubscriptions)
	protected.Post("/subscriptions", marketingHandler.CreateSubscription)
	protected.Put("/subscriptions/:id", marketingHandler.UpdateSubscription)
	protected.Delete("/subscriptions/:id", marketingHandler.DeleteSubscription)

	// Admin routes
	adminGroup := api.Group("/admin", authed, admin)
	adminGroup.Get("/orders", adminHandler.ListAllOrders)
	adminGroup.Put("/orders/:id/status", adminHandler.UpdateOrderStatus)
	adminGroup.Get("/stats", adminHandler.DashboardStats)
	adminGroup.Get("/users", adminHandler.ListAllUsers)
}
