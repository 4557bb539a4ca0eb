package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"mcp-webtools/internal/di"
	"mcp-webtools/internal/infrastructure/env"
	"mcp-webtools/internal/infrastructure/logger"
	"mcp-webtools/internal/input"
)

func main() {
	envService := env.NewService()

	inputPath := envService.GetDefault("INPUT_PATH", "INPUT.json")
	runInput, err := input.Load(inputPath)
	if err != nil {
		log.Fatalf("invalid input: %v", err)
	}

	timeout := time.Duration(envService.GetInt("RUN_TIMEOUT_SECONDS", 300)) * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	container, err := di.NewContainer(ctx, di.Config{
		Headless:            runInput.Headless,
		ViewportWidth:       runInput.ViewportWidth,
		ViewportHeight:      runInput.ViewportHeight,
		BrowserTimeout:      time.Duration(envService.GetInt("BROWSER_TIMEOUT_SECONDS", 30)) * time.Second,
		StorageKind:         envService.GetDefault("STORAGE_KIND", "file"),
		APIBaseURL:          envService.GetDefault("STORAGE_API_BASE_URL", "https://api.apify.com"),
		APIToken:            envService.Get("STORAGE_API_TOKEN"),
		StoreID:             envService.Get("KEY_VALUE_STORE_ID"),
		DatasetID:           envService.Get("DATASET_ID"),
		OutputDir:           envService.GetDefault("OUTPUT_DIR", "output"),
		BannerCataloguePath: envService.Get("BANNER_CATALOGUE_PATH"),
		StrictSelectors:     envService.GetBool("STRICT_SELECTORS", false),
		LogLevel:            envService.GetDefault("LOG_LEVEL", "info"),
		Development:         envService.GetBool("LOG_DEVELOPMENT", false),
	})
	if err != nil {
		log.Fatalf("initialization failed: %v", err)
	}
	defer container.Close()

	result, err := container.Pipeline.Run(ctx, *runInput)
	if err != nil {
		container.Logger.Error("run failed", logger.Error(err))
		container.Close()
		os.Exit(1)
	}

	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("encode result: %v", err)
	}
	fmt.Println(string(encoded))
}
