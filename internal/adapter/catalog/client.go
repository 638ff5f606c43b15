package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/sync/singleflight"

	"github.com/rl1809/storefront-cart/internal/core/domain"
)

const DefaultBaseURL = "https://dummyjson.com"

var (
	ErrNotFound = errors.New("product not found")
	ErrNetwork  = errors.New("catalog unreachable")
)

// HTTPError is returned for non-2xx responses other than 404.
type HTTPError struct {
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("catalog http error: status %d", e.StatusCode)
}

type productList struct {
	Products []domain.Product `json:"products"`
}

// Client reads products from the public catalog service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[[]byte]
	sfg        singleflight.Group // collapses concurrent lookups of the same product
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "catalog",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: isSuccessful,
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Printf("circuit breaker %s: %s -> %s", name, from, to)
		},
	})

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		breaker:    breaker,
	}
}

// client-side answers from a healthy catalog do not count against the breaker
func isSuccessful(err error) bool {
	if err == nil || errors.Is(err, ErrNotFound) {
		return true
	}
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode < http.StatusInternalServerError
}

func (c *Client) FetchAllProducts(ctx context.Context) ([]domain.Product, error) {
	body, err := c.get(ctx, "/products")
	if err != nil {
		return nil, err
	}

	var list productList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	return list.Products, nil
}

func (c *Client) SearchProducts(ctx context.Context, query string) ([]domain.Product, error) {
	body, err := c.get(ctx, "/products/search?q="+url.QueryEscape(query))
	if err != nil {
		return nil, err
	}

	var list productList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("decode search results: %w", err)
	}
	return list.Products, nil
}

// FetchProductByID shares one request between concurrent lookups of the same
// id. The shared request is detached from any single caller's cancellation and
// bounded by the client timeout; each caller still returns on its own ctx.
func (c *Client) FetchProductByID(ctx context.Context, id int64) (domain.Product, error) {
	shared := context.WithoutCancel(ctx)
	ch := c.sfg.DoChan(strconv.FormatInt(id, 10), func() (interface{}, error) {
		body, err := c.get(shared, "/products/"+strconv.FormatInt(id, 10))
		if err != nil {
			return domain.Product{}, err
		}

		var product domain.Product
		if err := json.Unmarshal(body, &product); err != nil {
			return domain.Product{}, fmt.Errorf("decode product %d: %w", id, err)
		}
		return product, nil
	})

	select {
	case <-ctx.Done():
		return domain.Product{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return domain.Product{}, res.Err
		}
		product := res.Val.(domain.Product)
		product.Images = slices.Clone(product.Images)
		return product, nil
	}
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	body, err := c.breaker.Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			return nil, ErrNotFound
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, &HTTPError{StatusCode: resp.StatusCode}
		}

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: read body: %v", ErrNetwork, err)
		}
		return data, nil
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	return body, err
}
