package redis

import (
	"context"
	"testing"

	"github.com/2025-Fall-HW3/hw3-yschiu11/pkg/config"
)

func TestNewClient_Disabled(t *testing.T) {
	cfg := &config.Config{
		Redis: config.RedisConfig{
			Enabled: false,
		},
	}

	client, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if client.Enabled() {
		t.Error("Expected client to be disabled")
	}
	if err := client.Ping(context.Background()); err != nil {
		t.Errorf("Ping() on disabled client should be a no-op, got %v", err)
	}
	if err := client.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestNewFromClient_Nil(t *testing.T) {
	if NewFromClient(nil).Enabled() {
		t.Error("Expected nil client to be disabled")
	}
}

func TestRateLimiter_Disabled(t *testing.T) {
	client, _ := New(&config.Config{})
	limiter := NewRateLimiter(client, "test")

	// When Redis is disabled, all requests should be allowed
	allowed, remaining, err := limiter.Allow(context.Background(), YahooRateLimit)
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if !allowed {
		t.Error("Expected request to be allowed when Redis disabled")
	}
	if remaining != YahooRateLimit.Limit {
		t.Errorf("Expected remaining = %d, got %d", YahooRateLimit.Limit, remaining)
	}

	if err := limiter.Wait(context.Background(), YahooRateLimit); err != nil {
		t.Errorf("Wait() error = %v", err)
	}
}

func TestCache_Disabled(t *testing.T) {
	client, _ := New(&config.Config{})
	cache := NewCache(client, "test")
	ctx := context.Background()

	// When Redis is disabled, cache operations should be no-ops
	if err := cache.Set(ctx, "key", []float64{1, 2}, TTLDaily); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	var result []float64
	found, err := cache.Get(ctx, "key", &result)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if found {
		t.Error("Expected cache miss when Redis disabled")
	}

	if err := cache.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete() error = %v", err)
	}
}

func TestRateLimiter_InvalidConfigIgnoredWhenDisabled(t *testing.T) {
	limiter := NewRateLimiter(NewFromClient(nil), "test")
	cfg := RateLimitConfig{Key: "broken"}

	allowed, _, err := limiter.Allow(context.Background(), cfg)
	if err != nil || !allowed {
		t.Errorf("Allow() = %v, %v; want true, nil", allowed, err)
	}
	if err := limiter.Reset(context.Background(), cfg); err != nil {
		t.Errorf("Reset() error = %v", err)
	}
}

func TestNamespaced(t *testing.T) {
	if got := namespaced("quant", "ratelimit", "yahoo"); got != "quant:ratelimit:yahoo" {
		t.Errorf("got %q", got)
	}
}

func TestCacheKeys(t *testing.T) {
	got := PriceRangeKey("XLK", "2019-01-01", "2024-04-01")
	want := "price:XLK:2019-01-01:2024-04-01"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
