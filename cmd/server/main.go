package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/pricelens/backend/config"
	httpDelivery "github.com/pricelens/backend/internal/delivery/http"
	"github.com/pricelens/backend/internal/domain"
	"github.com/pricelens/backend/internal/infrastructure/cache"
	"github.com/pricelens/backend/internal/infrastructure/pdf"
	"github.com/pricelens/backend/internal/infrastructure/source"
	"github.com/pricelens/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting PriceLens Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)
	log.Printf("Data directory: %s (patterns %v)", cfg.Catalog.DataDir, cfg.Catalog.Patterns)

	// Initialize infrastructure dependencies
	sessionStore := cache.NewMemoryStore[*usecase.Session](cfg.Session.TTL)
	defer sessionStore.Close()
	log.Printf("Session TTL: %s", cfg.Session.TTL)

	fileSource := source.NewFileSource(cfg.Catalog.DataDir, cfg.Catalog.Patterns)
	renderer := pdf.NewRenderer(pdf.RendererConfig{
		Paper:    cfg.Export.Paper,
		FontSize: cfg.Export.FontSize,
	})

	debug := cfg.Catalog.Debug || cfg.Server.Environment == "development"

	// Initialize usecase layer
	catalogService := usecase.NewCatalogService(
		fileSource,
		usecase.NewCatalogBuilder(usecase.CatalogBuilderConfig{
			PlaceholderImage:   cfg.Catalog.PlaceholderImage,
			EnableDebugLogging: debug,
		}),
	)

	// An empty catalog is not fatal: the server reports it and a reload can fix it
	if _, err := catalogService.Load(context.Background()); err != nil {
		if !errors.Is(err, domain.ErrEmptyCatalog) {
			log.Fatalf("Failed to load catalog: %v", err)
		}
		log.Printf("WARNING: catalog is empty (%v) - add data files and POST /api/v1/catalog/reload", err)
	}

	exportService := usecase.NewExportService(renderer, usecase.ExportServiceConfig{
		CurrencySuffix: cfg.Export.CurrencySuffix,
		DocumentTitle:  cfg.Export.Title,
		StrictLatin1:   cfg.Export.StrictLatin1,
	})
	log.Printf("Export: paper=%s, font=%d, strict_latin1=%v",
		cfg.Export.Paper, cfg.Export.FontSize, cfg.Export.StrictLatin1)

	sessionService := usecase.NewSessionService(
		sessionStore,
		catalogService,
		exportService,
		usecase.SessionServiceConfig{EnableDebugLogging: debug},
	)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(catalogService, sessionService)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
