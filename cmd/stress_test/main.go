package main

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/storefront-cart/internal/adapter/storage"
	"github.com/rl1809/storefront-cart/internal/core/domain"
	"github.com/rl1809/storefront-cart/internal/core/service"
)

const (
	redisAddr     = "localhost:6379"
	cartKey       = "cart:stress-test"
	productCount  = 5
	totalRequests = 500
	queueSize     = 1000
)

type countingNotifier struct {
	sent atomic.Int32
}

func (n *countingNotifier) Notify(string) {
	n.sent.Add(1)
}

func main() {
	ctx := context.Background()

	// Initialize Redis
	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("failed to connect redis: %v", err)
	}
	defer rdb.Close()

	// Clear previous test data
	rdb.Del(ctx, cartKey)

	// Initialize adapter and service
	repo := storage.NewRedisAdapter(rdb, cartKey)
	notifier := &countingNotifier{}
	cartService := service.NewCartService(ctx, repo, notifier, queueSize)
	defer cartService.Close()

	// Drain the event queue in background
	var events atomic.Int32
	go func() {
		for range cartService.GetEventQueue() {
			events.Add(1)
		}
	}()

	products := make([]domain.Product, productCount)
	for i := range products {
		products[i] = domain.Product{
			ID:    int64(i + 1),
			Title: fmt.Sprintf("stress-product-%d", i+1),
			Price: float64(10 * (i + 1)),
		}
	}

	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			cartService.AddToCart(ctx, products[id%productCount], 1)
		}(i)
	}

	wg.Wait()
	elapsed := time.Since(start)

	// Results
	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Total requests:  %d\n", totalRequests)
	fmt.Printf("Cart lines:      %d\n", len(cartService.Items()))
	fmt.Printf("Cart count:      %d\n", cartService.Count())
	fmt.Printf("Cart total:      %.2f\n", cartService.Total())
	fmt.Printf("Notifications:   %d\n", notifier.sent.Load())
	fmt.Printf("Time elapsed:    %v\n", elapsed)
	fmt.Printf("Requests/sec:    %.2f\n", float64(totalRequests)/elapsed.Seconds())
	fmt.Println("==========================================")

	// Verify the persisted copy matches memory
	rehydrated := service.NewCartService(ctx, repo, nil, 0)
	if len(cartService.Items()) != productCount {
		fmt.Printf("FAIL: expected %d lines, got %d\n", productCount, len(cartService.Items()))
	} else if cartService.Count() != totalRequests {
		fmt.Printf("FAIL: expected count %d, got %d\n", totalRequests, cartService.Count())
	} else if rehydrated.Count() != totalRequests {
		fmt.Printf("FAIL: persisted count %d does not match %d\n", rehydrated.Count(), totalRequests)
	} else {
		fmt.Println("PASS: no duplicate lines, persisted cart matches memory")
	}
}
