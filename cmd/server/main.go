package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shopwise.io/support-chat/internal/api"
	"shopwise.io/support-chat/internal/config"
	"shopwise.io/support-chat/internal/core"
	"shopwise.io/support-chat/internal/store"
)

func main() {
	// Load configuration
	config.LoadConfig()

	// Setup logging
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if config.AppConfig.LogLevel == "DEBUG" {
		log.Println("Service starting in DEBUG mode")
	}

	// Command line flag for the product catalog loader
	loadCSVFlag := flag.String("load", "", "Replace the product catalog from the given CSV file and exit")
	flag.Parse()

	// Initialize database store
	dbStore, err := store.NewSQLiteStore(config.AppConfig.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer dbStore.Close()

	// Handle catalog load if flag is set
	if *loadCSVFlag != "" {
		log.Printf("Loading product catalog from %s...", *loadCSVFlag)
		numLoaded, err := dbStore.ReplaceProductsFromCSV(*loadCSVFlag)
		if err != nil {
			log.Fatalf("Catalog load failed, products table left unchanged: %v", err)
		}
		log.Printf("Catalog load complete. Loaded %d products. Exiting.", numLoaded)
		os.Exit(0)
	}

	// Initialize the LLM completer. Without a key the responder answers
	// every chat from its rule-based fallback.
	var completer core.Completer
	if config.AppConfig.GroqAPIKey != "" {
		completer = core.NewGroqCompleter(config.AppConfig.GroqAPIKey, config.AppConfig.GroqModel)
	}

	// Initialize services
	matcher := core.NewProductMatcher(dbStore)
	responder := core.NewResponder(dbStore, matcher, completer)
	chatService := core.NewChatService(dbStore, responder)

	// Initialize API Handler and Router
	apiHandler := api.NewAPIHandler(dbStore, chatService)
	router := api.NewRouter(apiHandler)

	// Start HTTP server
	serverAddr := fmt.Sprintf(":%s", config.AppConfig.HTTPPort)

	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // LLM calls can take time
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown handling
	go func() {
		log.Printf("Starting server on %s. Press Ctrl+C to quit.", serverAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", serverAddr, err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give active connections time to finish.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting gracefully")
}
