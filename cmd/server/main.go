package main

import (
	"context"
	"database/sql"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"google.golang.org/grpc"

	"github.com/rl1809/storefront-cart/internal/adapter/catalog"
	"github.com/rl1809/storefront-cart/internal/adapter/handler"
	"github.com/rl1809/storefront-cart/internal/adapter/notifier"
	"github.com/rl1809/storefront-cart/internal/adapter/storage"
	"github.com/rl1809/storefront-cart/internal/config"
	"github.com/rl1809/storefront-cart/internal/core/domain"
	"github.com/rl1809/storefront-cart/internal/core/service"
	"github.com/rl1809/storefront-cart/internal/port"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	redisUp := rdb.Ping(ctx).Err() == nil
	if cfg.StoreBackend == config.BackendRedis && !redisUp {
		log.Fatalf("failed to connect redis at %s", cfg.RedisAddr)
	}
	if redisUp {
		log.Println("connected to redis")
	}

	// Initialize MySQL, optional unless it backs the cart
	var mysqlAdapter *storage.MySQLAdapter
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("failed to open mysql: %v", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	if err := db.PingContext(ctx); err != nil {
		if cfg.StoreBackend == config.BackendMySQL {
			log.Fatalf("failed to ping mysql: %v", err)
		}
		log.Printf("mysql unavailable, cart events disabled: %v", err)
	} else {
		mysqlAdapter = storage.NewMySQLAdapter(db, cfg.CartKey)
		ready, err := prepareSchema(ctx, mysqlAdapter, cfg.StoreBackend)
		if err != nil {
			log.Fatalf("failed to create schema: %v", err)
		}
		if !ready {
			mysqlAdapter = nil
		} else {
			log.Println("connected to mysql")
		}
	}

	// Initialize adapters
	var repo port.CartRepository
	switch cfg.StoreBackend {
	case config.BackendRedis:
		repo = storage.NewRedisAdapter(rdb, cfg.CartKey)
	case config.BackendMySQL:
		repo = mysqlAdapter
	default:
		repo = storage.NewMemoryAdapter()
	}
	log.Printf("cart store backend: %s (key %q)", cfg.StoreBackend, cfg.CartKey)

	notifiers := notifier.Multi{notifier.NewLogNotifier(nil)}
	if redisUp {
		notifiers = append(notifiers, notifier.NewRedisNotifier(rdb, cfg.NotifyChannel))
	}

	queueSize := cfg.EventQueueSize
	if mysqlAdapter == nil || cfg.EventWorkers == 0 {
		queueSize = 0
	}

	// Initialize service
	cartService := service.NewCartService(ctx, repo, notifiers, queueSize,
		service.WithNotifyCooldown(cfg.NotifyCooldown))
	log.Printf("cart hydrated: %d lines, %d items", len(cartService.Items()), cartService.Count())

	catalogClient := catalog.NewClient(cfg.CatalogBaseURL, cfg.CatalogTimeout)

	// Start worker pool
	var wg sync.WaitGroup
	if queueSize > 0 {
		for i := 0; i < cfg.EventWorkers; i++ {
			wg.Add(1)
			go func(id int) {
				defer wg.Done()
				workerLoop(id, cartService.GetEventQueue(), mysqlAdapter)
			}(i)
		}
		log.Printf("started %d event workers", cfg.EventWorkers)
	}

	// Initialize gRPC server
	grpcServer := grpc.NewServer()
	handler.RegisterCartServiceServer(grpcServer, handler.NewGRPCHandler(cartService, catalogClient))

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		log.Fatalf("failed to listen: %v", err)
	}

	go func() {
		log.Printf("gRPC server listening on %s", cfg.GRPCAddr)
		if err := grpcServer.Serve(lis); err != nil {
			log.Printf("gRPC server error: %v", err)
		}
	}()

	// Initialize HTTP server
	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: handler.NewHTTPHandler(cartService, catalogClient).Routes(),
	}

	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("HTTP server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	log.Println("HTTP server stopped")

	grpcServer.GracefulStop()
	log.Println("gRPC server stopped")

	// Close event queue and wait for workers
	cartService.Close()
	wg.Wait()
	log.Println("workers stopped")

	rdb.Close()
	db.Close()
	log.Println("connections closed")
}

type schemaEnsurer interface {
	EnsureSchema(ctx context.Context) error
}

// prepareSchema creates the MySQL tables. A failure is fatal only when MySQL
// backs the cart; otherwise cart events are disabled and ready is false.
func prepareSchema(ctx context.Context, store schemaEnsurer, backend string) (ready bool, err error) {
	if err := store.EnsureSchema(ctx); err != nil {
		if backend == config.BackendMySQL {
			return false, err
		}
		log.Printf("mysql schema setup failed, cart events disabled: %v", err)
		return false, nil
	}
	return true, nil
}

func workerLoop(id int, queue <-chan domain.CartEvent, events port.EventRepository) {
	for event := range queue {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)

		if err := events.SaveEvent(ctx, event); err != nil {
			log.Printf("worker %d: failed to save %s event %s: %v", id, event.Type, event.ID, err)
		}

		cancel()
	}
}
