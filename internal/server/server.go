package server

import (
	"time"

	"pasar/internal/events"
	"pasar/internal/handlers"
	"pasar/internal/middleware"
	"pasar/internal/models"
	"pasar/internal/payments"
	"pasar/internal/repositories"
	"pasar/internal/services"
	"pasar/internal/session"
	"pasar/internal/uploads"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"
)

// Dependencies are the external resources the application runs on.
type Dependencies struct {
	DB        *gorm.DB
	JWTSecret string
	TokenTTL  time.Duration
	Currency  string
	Sessions  session.Store
	Publisher events.Publisher
	Gateway   payments.Gateway
	Uploader  handlers.ImageUploader
	// RequestLog enables the per-request access log.
	RequestLog bool
}

// New wires repositories, services and handlers into a Fiber app.
func New(deps Dependencies) *fiber.App {
	db := deps.DB
	if deps.Sessions == nil {
		deps.Sessions = session.NewMemoryStore()
	}
	if deps.Publisher == nil {
		deps.Publisher = events.Nop{}
	}
	// Unconfigured collaborators answer 503 instead of being absent.
	if deps.Gateway == nil {
		deps.Gateway = payments.NewStripeGateway("", "")
	}
	if deps.Uploader == nil {
		deps.Uploader = uploads.NewClient("", "")
	}

	// --- Initialize Repositories ---
	userRepo := repositories.NewGORMUserRepository(db)
	vendorRepo := repositories.NewGORMVendorRepository(db)
	accounts := repositories.NewAccountRepositories(userRepo, vendorRepo)
	addressRepo := repositories.NewGORMAddressRepository(db)
	productRepo := repositories.NewGORMProductRepository(db)
	shopRepo := repositories.NewGORMShopRepository(db)
	categoryRepo := repositories.NewGORMCategoryRepository(db)
	cartRepo := repositories.NewGORMCartRepository(db)
	wishlistRepo := repositories.NewGORMWishlistRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)
	paymentRepo := repositories.NewGORMPaymentRepository(db)
	chatRepo := repositories.NewGORMChatRepository(db)
	notificationRepo := repositories.NewGORMNotificationRepository(db)
	reviewRepo := repositories.NewGORMReviewRepository(db)

	// --- Initialize Services ---
	authService := services.NewAuthService(accounts, deps.Sessions, deps.JWTSecret, deps.TokenTTL)
	addressService := services.NewAddressService(addressRepo)
	productService := services.NewProductService(productRepo, shopRepo, categoryRepo, reviewRepo)
	cartService := services.NewCartService(cartRepo, productRepo)
	wishlistService := services.NewWishlistService(wishlistRepo, productRepo)
	orderService := services.NewOrderService(orderRepo, productRepo, addressRepo, deps.Publisher, deps.Currency)
	paymentService := services.NewPaymentService(orderRepo, paymentRepo, notificationRepo, deps.Gateway, deps.Publisher, deps.Currency)
	chatService := services.NewChatService(chatRepo, accounts[models.RoleVendor])
	notificationService := services.NewNotificationService(notificationRepo)
	reviewService := services.NewReviewService(reviewRepo, productRepo, orderRepo, notificationRepo)
	vendorService := services.NewVendorService(orderRepo, productRepo, reviewRepo)

	// --- Initialize Fiber App ---
	app := fiber.New(fiber.Config{
		AppName:   "pasar",
		BodyLimit: 8 << 20,
	})

	// --- Middleware ---
	app.Use(recover.New())
	if deps.RequestLog {
		app.Use(logger.New())
	}

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.UserContext())
		}
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status":   "degraded",
				"time":     time.Now().Format(time.RFC3339),
				"database": "unreachable",
			})
		}
		return c.JSON(fiber.Map{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "connected",
		})
	})

	// --- API Routes ---
	apiV1 := app.Group("/api/v1")
	guard := middleware.NewGuard(authService)

	handlers.NewAuthHandler(authService).RegisterRoutes(apiV1, guard)
	handlers.NewAddressHandler(addressService).RegisterRoutes(apiV1, guard)
	handlers.NewProductHandler(productService).RegisterRoutes(apiV1, guard)
	handlers.NewCartHandler(cartService, wishlistService).RegisterRoutes(apiV1, guard)
	handlers.NewOrderHandler(orderService).RegisterRoutes(apiV1, guard)
	handlers.NewPaymentHandler(paymentService).RegisterRoutes(apiV1, guard)
	handlers.NewChatHandler(chatService, notificationService).RegisterRoutes(apiV1, guard)
	handlers.NewVendorHandler(vendorService, reviewService).RegisterRoutes(apiV1, guard)
	handlers.NewUploadHandler(deps.Uploader).RegisterRoutes(apiV1, guard)

	return app
}
