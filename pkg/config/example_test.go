package config_test

import (
	"fmt"

	"github.com/2025-Fall-HW3/hw3-yschiu11/pkg/config"
)

// Example demonstrates how to use the config package
func Example() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		return
	}

	fmt.Printf("Environment: %s\n", cfg.Env)
	fmt.Printf("Data dir: %s\n", cfg.DataDir)
	fmt.Printf("Price DB enabled: %v\n", cfg.Database.Enabled())
	fmt.Printf("Yahoo: %s (%d req/s)\n", cfg.Yahoo.BaseURL, cfg.Yahoo.RateLimit)
}
