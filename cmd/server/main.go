package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"beatshop/internal/handlers"
	"beatshop/internal/metrics"
	adminMiddleware "beatshop/internal/middleware"
	"beatshop/internal/services"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	// Initialize Database
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}
	db, err := services.InitDB(databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := services.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	// Initialize Redis
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}
	cache, err := services.NewRedisCache(redisURL)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer cache.Close()

	// Initialize media storage
	credPath := os.Getenv("FIREBASE_CREDENTIALS_PATH")
	if credPath == "" {
		credPath = "./firebase-service-account.json"
	}
	media, err := services.NewMediaStore(context.Background(), credPath, os.Getenv("STORAGE_BUCKET"), os.Getenv("MEDIA_PUBLIC_URL"))
	if err != nil {
		log.Fatalf("Failed to initialize media storage: %v", err)
	}

	// Initialize Stripe
	stripeSvc, err := services.NewStripeService()
	if err != nil {
		log.Fatalf("Failed to initialize Stripe: %v", err)
	}

	// Services
	listingSvc := services.NewListingService(db)
	trackSvc := services.NewTrackService(db)
	cartStore := services.NewCartStore(cache)
	checkoutSvc := services.NewCheckoutService(listingSvc, cartStore, stripeSvc)
	eventSvc := services.NewPaymentEventService(db)
	emailSvc := services.NewEmailService()

	// Create Echo instance
	e := echo.New()
	e.HTTPErrorHandler = adminMiddleware.CustomErrorHandler

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// Metrics
	metrics.Register()
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Initialize handlers
	adminHandler := handlers.NewAdminHandler(listingSvc, trackSvc, media)
	cartHandler := handlers.NewCartHandler(cartStore)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutSvc, stripeSvc, listingSvc)
	webhookHandler := handlers.NewWebhookHandler(stripeSvc, listingSvc, eventSvc, cache)
	mediaHandler := handlers.NewMediaHandler(media, trackSvc, listingSvc)
	contactHandler := handlers.NewContactHandler(db, cache, emailSvc)
	shopHandler := handlers.NewShopHandler(listingSvc, trackSvc, cache)

	api := e.Group("/api")

	// Admin routes, basic-auth gated
	adminUser := os.Getenv("ADMIN_USERNAME")
	adminPass := os.Getenv("ADMIN_PASSWORD")
	if adminUser == "" || adminPass == "" {
		log.Fatal("ADMIN_USERNAME and ADMIN_PASSWORD must be set")
	}
	admin := api.Group("/admin")
	admin.Use(middleware.BasicAuth(adminMiddleware.AdminValidator(adminUser, adminPass)))
	admin.POST("/add-listing", adminHandler.AddListing)
	admin.POST("/update-listing", adminHandler.UpdateListing)
	admin.DELETE("/delete-listing", adminHandler.DeleteListing)
	admin.DELETE("/delete-track", adminHandler.DeleteTrack)

	// Public catalog
	api.GET("/listings", shopHandler.ListListings)
	api.GET("/listings/:id", shopHandler.GetListing)
	api.GET("/featured", shopHandler.Featured)

	// Cart
	api.GET("/cart", cartHandler.GetCart)
	api.POST("/cart", cartHandler.ModifyCart)
	api.DELETE("/cart", cartHandler.ClearCart)

	// Contact
	api.POST("/contact", contactHandler.SubmitContact)

	// Checkout and fulfillment
	api.GET("/create-checkout-session", checkoutHandler.CreateCheckoutSession)
	api.POST("/create-payment-link", checkoutHandler.CreatePaymentLink)
	api.GET("/create-portal-session", checkoutHandler.CreatePortalSession)
	api.POST("/webhook", webhookHandler.HandleWebhook)

	// Media
	api.GET("/serve-audio", mediaHandler.ServeAudio)
	api.GET("/uploads/*", mediaHandler.ServeUpload)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	e.Logger.Fatal(e.Start(":" + port))
}
