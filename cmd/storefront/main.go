package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/aniskhan146/Cartify-sub000/internal/auth"
	"github.com/aniskhan146/Cartify-sub000/internal/cache"
	cartdomain "github.com/aniskhan146/Cartify-sub000/internal/cart/domain"
	cartrepo "github.com/aniskhan146/Cartify-sub000/internal/cart/repository"
	cartservice "github.com/aniskhan146/Cartify-sub000/internal/cart/service"
	catalogdomain "github.com/aniskhan146/Cartify-sub000/internal/catalog/domain"
	catalogrepo "github.com/aniskhan146/Cartify-sub000/internal/catalog/repository"
	catalogservice "github.com/aniskhan146/Cartify-sub000/internal/catalog/service"
	"github.com/aniskhan146/Cartify-sub000/internal/checkout"
	"github.com/aniskhan146/Cartify-sub000/internal/config"
	"github.com/aniskhan146/Cartify-sub000/internal/feed"
	h "github.com/aniskhan146/Cartify-sub000/internal/http"
	"github.com/aniskhan146/Cartify-sub000/internal/invoice"
	"github.com/aniskhan146/Cartify-sub000/internal/notify"
	orderdomain "github.com/aniskhan146/Cartify-sub000/internal/orders/domain"
	"github.com/aniskhan146/Cartify-sub000/internal/orders/publisher"
	orderrepo "github.com/aniskhan146/Cartify-sub000/internal/orders/repository"
	orderservice "github.com/aniskhan146/Cartify-sub000/internal/orders/service"
	"github.com/aniskhan146/Cartify-sub000/internal/pricing"
	"github.com/aniskhan146/Cartify-sub000/internal/settings"
	"github.com/aniskhan146/Cartify-sub000/internal/suggest"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Catalog (SQLite)
	catalogRepo, err := catalogrepo.NewSQLiteRepository(cfg.CatalogDBPath)
	if err != nil {
		log.Fatalf("Failed to open catalog database: %v", err)
	}
	defer catalogRepo.Close()
	if err := catalogRepo.RunMigrations(cfg.CatalogMigrationsPath); err != nil {
		log.Fatalf("Failed to run catalog migrations: %v", err)
	}
	log.Printf("Catalog database ready at %s", cfg.CatalogDBPath)

	// Orders (Postgres)
	cred := &orderrepo.Credentials{
		Host:              cfg.DB.Host,
		Port:              cfg.DB.Port,
		User:              cfg.DB.User,
		Password:          cfg.DB.Password,
		DBName:            cfg.DB.Name,
		MigrationsDirPath: cfg.OrdersMigrationsPath,
	}
	ordersRepo, err := orderrepo.NewPostgresRepository(cred)
	if err != nil {
		log.Fatalf("Failed to connect to orders database: %v", err)
	}
	defer ordersRepo.Close()
	if err := ordersRepo.RunMigrations(cred); err != nil {
		log.Fatalf("Failed to run orders migrations: %v", err)
	}

	// Carts and wishlists (MongoDB)
	mongoDB, err := cartrepo.Connect(ctx, cartrepo.MongoConfig{URI: cfg.MongoURI, Database: cfg.MongoDBName})
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	cartRepo := cartrepo.NewMongoRepository(mongoDB)
	if err := cartRepo.CreateIndexes(ctx); err != nil {
		log.Fatalf("Failed to create cart indexes: %v", err)
	}
	log.Printf("Connected to MongoDB at %s", cfg.MongoURI)

	// Redis: caches, settings, rate limiting
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("Redis connection failed:", err)
	}
	log.Printf("Redis ping succeeded")

	settingsStore := settings.NewStore(redisClient, pricing.CheckoutConfig{
		ShippingChargeInsideZone:  cfg.Store.Checkout.ShippingChargeInsideZone,
		ShippingChargeOutsideZone: cfg.Store.Checkout.ShippingChargeOutsideZone,
		TaxAmount:                 cfg.Store.Checkout.TaxAmount,
	})

	productHub := feed.NewHub[[]catalogdomain.Product]()
	orderHub := feed.NewHub[[]orderdomain.Order]()
	defer productHub.Close()
	defer orderHub.Close()

	catalogService := catalogservice.NewCatalogService(
		catalogRepo,
		cache.NewRedisCache[catalogdomain.Product](redisClient, "product"),
		productHub,
	)
	cartService := cartservice.NewCartService(
		cartRepo,
		cartRepo,
		cache.NewRedisCache[cartdomain.Cart](redisClient, "cart"),
		catalogService,
		settingsStore,
	)
	orderService := orderservice.NewOrderService(ordersRepo, invoice.NewRenderer(cfg.StoreName), orderHub)
	checkoutService := checkout.NewService(cartService, catalogService, settingsStore, ordersRepo)
	suggestService := suggest.NewService(
		suggest.NewClient(cfg.AIEndpoint, cfg.AIAPIKey, cfg.AITimeout),
		suggest.NewDebouncer(cfg.Store.SuggestDebounce),
	)
	notifications := notify.NewService(cfg.Store.LowStockThreshold, notify.DefaultLimit)

	// Background workers
	var wg sync.WaitGroup

	poller := publisher.NewOutboxPoller(ordersRepo, cfg.OrdersTopic, cfg.KafkaBrokers...)
	consumer := notify.NewConsumer(orderService, cfg.OrdersTopic, cfg.KafkaBrokers...)

	workers := []func(context.Context){
		poller.Run,
		consumer.Run,
		func(ctx context.Context) { notifications.WatchProducts(ctx, productHub) },
		func(ctx context.Context) { notifications.WatchOrders(ctx, orderHub) },
	}
	for _, run := range workers {
		wg.Add(1)
		go func(run func(context.Context)) {
			defer wg.Done()
			run(ctx)
		}(run)
	}

	// first snapshots are the notification baseline
	if err := catalogService.Refresh(ctx); err != nil {
		log.Printf("Initial catalog snapshot failed: %v", err)
	}
	if err := orderService.Refresh(ctx); err != nil {
		log.Printf("Initial orders snapshot failed: %v", err)
	}

	router := h.NewRouter(h.RouterDeps{
		Catalog: h.NewCatalogHandler(catalogService, cfg.RequestTimeout),
		Carts:   h.NewCartHandler(cartService, cfg.RequestTimeout),
		Orders:  h.NewOrdersHandler(orderService, checkoutService, cfg.RequestTimeout),
		Admin: h.NewAdminHandler(h.AdminDeps{
			Settings:          settingsStore,
			Notifications:     notifications,
			Suggestions:       suggestService,
			Products:          catalogService,
			Orders:            orderService,
			LowStockThreshold: cfg.Store.LowStockThreshold,
		}, cfg.RequestTimeout),
		Verifier:        auth.NewVerifier(cfg.JWTSecret, cfg.JWTIssuer),
		RateLimitClient: redisClient,
		RateLimitMax:    cfg.Store.RateLimit.MaxRequests,
		RateLimitWindow: cfg.Store.RateLimit.Window,
		RequestTimeout:  cfg.RequestTimeout,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      otelhttp.NewHandler(router, "storefront"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 0, // product stream is long-lived; handlers bound themselves
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Storefront listening on port %s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down storefront...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	// end SSE subscriptions so Shutdown is not held open by them
	productHub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	stop()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-shutdownCtx.Done():
		log.Println("Background workers did not stop before the deadline")
	}

	if err := poller.Close(); err != nil {
		log.Printf("Failed to close outbox writer: %v", err)
	}
	consumer.Close()
	if err := mongoDB.Client().Disconnect(context.Background()); err != nil {
		log.Printf("Failed to disconnect MongoDB: %v", err)
	}
	log.Println("Storefront stopped")
}
