package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-food-ordering/config"
	"go-food-ordering/controllers"
	"go-food-ordering/database"
	"go-food-ordering/helpers"
	"go-food-ordering/media"
	"go-food-ordering/middleware"
	"go-food-ordering/payment"
	"go-food-ordering/routes"
	"go-food-ordering/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	logger := helpers.NewLogger(os.Stdout, slog.LevelInfo)
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	client, err := database.DBinstance(connectCtx, cfg.Mongo.URI)
	cancel()
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := client.Disconnect(disconnectCtx); err != nil {
			logger.Warn("mongo disconnect", slog.String("error", err.Error()))
		}
	}()

	db := client.Database(cfg.Mongo.Database)
	indexCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	err = database.EnsureIndexes(indexCtx, db)
	cancel()
	if err != nil {
		return err
	}

	uploader, err := media.NewCloudinaryUploader(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret)
	if err != nil {
		return err
	}

	orderStore := database.NewOrderStore(db)
	restaurantStore := database.NewRestaurantStore(db)
	userStore := database.NewUserStore(db)

	hub := controllers.NewOrderHub(cfg.FrontendURL, logger)
	checkout := services.NewCheckoutService(restaurantStore, orderStore, payment.NewStripeGateway(cfg.Stripe.APIKey),
		cfg.FrontendURL, cfg.Checkout.Timeout, logger)
	webhooks := services.NewWebhookService(payment.NewStripeWebhookVerifier(cfg.Stripe.WebhookSecret),
		orderStore, hub, cfg.Checkout.Timeout, logger)
	guard := services.NewOrderGuard(orderStore, restaurantStore, hub, cfg.Checkout.Timeout, logger)

	authenticate := middleware.Authentication(helpers.NewJWTAuthenticator(cfg.JWT.Secret, cfg.JWT.Audience, cfg.JWT.Issuer))
	guards := routes.Guards{
		Identity: []gin.HandlerFunc{authenticate},
		User:     []gin.HandlerFunc{authenticate, middleware.CurrentUser(userStore, logger)},
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowMethods:     []string{"POST", "GET", "PATCH", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "token", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "health OK!"})
	})
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Page not found"})
	})

	routes.OrderRoutes(router, guards, controllers.NewOrderController(checkout, webhooks, guard, orderStore, restaurantStore, logger),
		hub, restaurantStore)
	routes.UserRoutes(router, guards, controllers.NewUserController(userStore, logger))
	routes.RestaurantRoutes(router, controllers.NewRestaurantController(restaurantStore, logger))
	routes.MyRestaurantRoutes(router, guards, controllers.NewMyRestaurantController(restaurantStore, uploader, logger))

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
