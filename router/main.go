package router

import (
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/learnhub/learnhub-api/config"
	"github.com/learnhub/learnhub-api/database"
	"github.com/learnhub/learnhub-api/handlers"
	admin_handlers "github.com/learnhub/learnhub-api/handlers/admin"
	checkout_handlers "github.com/learnhub/learnhub-api/handlers/checkout"
	coupon_handlers "github.com/learnhub/learnhub-api/handlers/coupon"
	instructor_handlers "github.com/learnhub/learnhub-api/handlers/instructor"
	refund_handlers "github.com/learnhub/learnhub-api/handlers/refund"
	wallet_handlers "github.com/learnhub/learnhub-api/handlers/wallet"
	"github.com/learnhub/learnhub-api/services"
	"github.com/learnhub/learnhub-api/services/razorpay"
	"github.com/learnhub/learnhub-api/utils"
	"github.com/learnhub/learnhub-api/utils/auth"
	"github.com/learnhub/learnhub-api/utils/middleware"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, store database.Storage) {
	getEnv, err := config.Get()
	if err != nil {
		log.Fatal("Failed to load environment configuration")
	}

	if getEnv.JWT_SECRET == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}

	jwtIssuer := getEnv.JWT_ISSUER
	if jwtIssuer == "" {
		jwtIssuer = "learnhub-api"
	}

	// Initialize JWT manager with config
	jwtConfig := auth.JWTConfig{
		Secret: getEnv.JWT_SECRET,
		Expiry: 24 * time.Hour, // Access token expires in 24 hours
		Issuer: jwtIssuer,
	}
	jwtManager := auth.NewJWTManager(jwtConfig)

	// Get DB instance (type assert from interface)
	db, ok := store.GetDB().(*gorm.DB)
	if !ok {
		log.Fatal("Failed to get GORM DB instance")
	}

	// Initialize auth middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, db)

	// Payment gateway client
	gateway := razorpay.NewClient(razorpay.Config{
		KeyID:     getEnv.RAZORPAY_KEY_ID,
		KeySecret: getEnv.RAZORPAY_KEY_SECRET,
		Timeout:   time.Duration(getEnv.RAZORPAY_TIMEOUT_SECONDS) * time.Second,
	})

	checkoutCfg := services.CheckoutConfig{
		Currency:          getEnv.CURRENCY,
		EscrowHoldDays:    getEnv.ESCROW_HOLD_DAYS,
		RazorpaySecret:    getEnv.RAZORPAY_KEY_SECRET,
		BankPayoutPercent: int64(getEnv.BANK_REFUND_PAYOUT_PERCENT),
	}

	// Initialize services
	couponService := services.NewCouponService(db)
	walletService := services.NewWalletService(db)
	checkoutService := services.NewCheckoutService(db, couponService, walletService, gateway, checkoutCfg)
	refundService := services.NewRefundService(db, couponService, walletService, gateway, checkoutCfg)
	escrowService := services.NewEscrowService(db)
	earningsService := services.NewEarningsService(db)

	// Initialize handlers
	checkoutHandler := checkout_handlers.NewCheckoutHandler(checkoutService)
	refundHandler := refund_handlers.NewRefundHandler(refundService)
	walletHandler := wallet_handlers.NewWalletHandler(walletService)
	couponHandler := coupon_handlers.NewCouponHandler(couponService)
	couponAdminHandler := admin_handlers.NewCouponAdminHandler(couponService)
	escrowAdminHandler := admin_handlers.NewEscrowAdminHandler(escrowService)
	earningsHandler := instructor_handlers.NewEarningsHandler(earningsService)

	// Apply security middleware
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000,http://localhost:3001"
	}

	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    allowedOrigins,
		RateLimitRequests: 100,             // 100 requests
		RateLimitWindow:   1 * time.Minute, // per minute
	})

	// Health check endpoint (public)
	app.Get("/ping", utils.MakeHTTPHandleFunc(handlers.HandleCheckHealth, store))

	// API v1 group
	api := app.Group("/api/v1")

	// Checkout routes (protected)
	checkout := api.Group("/checkout", authMiddleware.Required())
	checkout.Post("/orders", checkoutHandler.CreateOrder)   // Protected: Create order from cart
	checkout.Post("/verify", checkoutHandler.VerifyPayment) // Protected: Confirm gateway callback

	// Refund routes (protected)
	refunds := api.Group("/refunds", authMiddleware.Required())
	refunds.Post("/full", refundHandler.FullRefund)       // Protected: Refund whole order
	refunds.Post("/partial", refundHandler.PartialRefund) // Protected: Refund single course
	refunds.Get("/history", refundHandler.History)        // Protected: List user's refunds

	// Wallet routes (protected)
	wallet := api.Group("/wallet", authMiddleware.Required())
	wallet.Get("/", walletHandler.GetWallet)                 // Protected: Current balance
	wallet.Get("/transactions", walletHandler.GetTransactions) // Protected: Ledger entries (paginated)

	// Coupon routes (protected)
	coupons := api.Group("/coupons", authMiddleware.Required())
	coupons.Get("/available", couponHandler.Available) // Protected: Coupons usable for a cart amount
	coupons.Get("/validate", couponHandler.Validate)   // Protected: Preview a code against a cart

	// Instructor routes
	instructor := api.Group("/instructor", authMiddleware.Required(), middleware.RequireInstructor())
	instructor.Get("/earnings", earningsHandler.GetEarnings) // Instructor: Pending vs withdrawable earnings

	// Admin routes
	admin := api.Group("/admin", authMiddleware.Required(), middleware.RequireAdmin())
	admin.Post("/coupons", couponAdminHandler.CreateCoupon)            // Admin: Create coupon
	admin.Get("/coupons", couponAdminHandler.ListCoupons)              // Admin: List coupons
	admin.Patch("/coupons/:id/pause", couponAdminHandler.PauseCoupon)  // Admin: Pause/resume coupon
	admin.Delete("/coupons/:id", couponAdminHandler.DeleteCoupon)      // Admin: Soft delete coupon
	admin.Post("/escrow/release", escrowAdminHandler.RunRelease)       // Admin: Manually release due escrow
}
