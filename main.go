package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/egannguyen/go-storefront/internal/cache"
	"github.com/egannguyen/go-storefront/internal/config"
	deliveryhttp "github.com/egannguyen/go-storefront/internal/delivery/http"
	"github.com/egannguyen/go-storefront/internal/entity"
	"github.com/egannguyen/go-storefront/internal/messaging"
	"github.com/egannguyen/go-storefront/internal/messaging/kafka"
	"github.com/egannguyen/go-storefront/internal/notification"
	"github.com/egannguyen/go-storefront/internal/repository/gormdb"
	"github.com/egannguyen/go-storefront/internal/service"
)

func main() {
	slog.SetLogLoggerLevel(slog.LevelDebug)
	cfg := config.FromEnv()

	// --- Database ---
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		slog.Error("Failed to connect to database", "err", err)
		os.Exit(1)
	}
	if err := gormdb.Migrate(db); err != nil {
		slog.Error("Failed to migrate database", "err", err)
		os.Exit(1)
	}

	productRepo := gormdb.NewProductRepository(db)
	orderRepo := gormdb.NewOrderRepository(db)
	paymentRepo := gormdb.NewPaymentRepository(db)
	reviewRepo := gormdb.NewReviewRepository(db)
	customerRepo := gormdb.NewCustomerRepository(db)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := productRepo.Seed(ctx, seedCategories(), seedProducts()); err != nil {
		slog.Error("Failed to seed catalog", "err", err)
		os.Exit(1)
	}

	// --- Redis catalog cache (optional) ---
	var catalogCache *cache.Cache
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	c := cache.New(redisClient, "storefront:", cfg.CacheTTL)
	if err := c.Ping(ctx); err != nil {
		slog.Warn("Redis unavailable, catalog cache disabled", "addr", cfg.RedisAddr, "err", err)
	} else {
		catalogCache = c
		defer catalogCache.Close()
	}

	// --- Kafka ---
	publisher, subscriber := kafka.NewKafkaBroker(cfg.KafkaBrokers)
	go subscriber.Consume(ctx, messaging.TopicPaymentsSucceeded, "storefront-fulfillment", func(ctx context.Context, payload []byte) error {
		var event entity.PaymentSucceeded
		if err := json.Unmarshal(payload, &event); err != nil {
			return fmt.Errorf("failed to decode payment event: %w", err)
		}
		slog.Info("Fulfillment queued", "order_id", event.OrderID, "amount", event.Amount)
		return nil
	})

	// --- Services ---
	notifier := notification.NewWhatsAppNotifier(cfg.OwnerWhatsApp)
	catalogSvc := service.NewCatalogService(productRepo, reviewRepo, catalogCache)
	cartSvc := service.NewCartService(orderRepo, productRepo)
	checkoutSvc := service.NewCheckoutService(orderRepo, paymentRepo, customerRepo, notifier, publisher, cfg.Currency)
	accountSvc := service.NewAccountService(customerRepo)

	// --- HTTP ---
	auth := deliveryhttp.NewAuth(cfg.JWTSecret)
	handler := deliveryhttp.NewHandler(catalogSvc, cartSvc, checkoutSvc, accountSvc, auth)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: deliveryhttp.EnableCORS(mux),
	}

	go func() {
		slog.Info("HTTP server starting", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down...")
	httpServer.Shutdown(context.Background())
}

func seedCategories() []entity.Category {
	return []entity.Category{
		{Name: "Jaggery", Description: "Traditional cane jaggery blocks and powder"},
		{Name: "Juices", Description: "Fresh sugarcane juice bottles"},
	}
}

func seedProducts() []entity.Product {
	ten := uint(10)
	return []entity.Product{
		{
			CategoryID:         1,
			Name:               "Organic Cane Jaggery",
			Description:        "Chemical-free jaggery made from fresh sugarcane",
			OriginalPrice:      decimal.NewFromFloat(500.00),
			DiscountPercentage: &ten,
			Stock:              120,
			Available:          true,
			PackSizes: []entity.ProductPackSize{
				{PackSize: entity.PackSize{Size: "250g"}, Price: decimal.NewFromFloat(140.00)},
				{PackSize: entity.PackSize{Size: "500g"}, Price: decimal.NewFromFloat(260.00)},
				{PackSize: entity.PackSize{Size: "1kg"}, Price: decimal.NewFromFloat(480.00)},
			},
		},
		{
			CategoryID:    1,
			Name:          "Jaggery Powder",
			Description:   "Fine jaggery powder for everyday cooking",
			OriginalPrice: decimal.NewFromFloat(320.00),
			Stock:         80,
			Available:     true,
			PackSizes: []entity.ProductPackSize{
				{PackSize: entity.PackSize{Size: "500g"}, Price: decimal.NewFromFloat(170.00)},
				{PackSize: entity.PackSize{Size: "1kg"}, Price: decimal.NewFromFloat(310.00)},
			},
		},
		{
			CategoryID:    2,
			Name:          "Cold-Pressed Sugarcane Juice",
			Description:   "Bottled fresh, no added sugar",
			OriginalPrice: decimal.NewFromFloat(90.00),
			Stock:         200,
			Available:     true,
		},
	}
}
