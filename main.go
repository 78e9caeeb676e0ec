package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/carebridge/triage-assistant/internal/adapter/llm"
	"github.com/carebridge/triage-assistant/internal/assistant"
	"github.com/carebridge/triage-assistant/internal/config"
	"github.com/carebridge/triage-assistant/internal/dialogue"
	"github.com/carebridge/triage-assistant/internal/guard"
	"github.com/carebridge/triage-assistant/internal/nlu"
	"github.com/carebridge/triage-assistant/internal/repository"
	"github.com/carebridge/triage-assistant/internal/respond"
	httpserver "github.com/carebridge/triage-assistant/internal/transport/http"
	"github.com/carebridge/triage-assistant/internal/triage"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log.Printf("Starting triage assistant...")
	log.Printf("HTTP Port: %d", cfg.HTTPPort)
	log.Printf("Database: %s", cfg.DatabaseURL)
	log.Printf("Session timeout: %s", cfg.SessionTimeout)

	// Initialize conversation log
	convLog, err := repository.NewConversationLog(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize conversation log: %v", err)
	}
	defer convLog.Close()

	// Initialize the message guard
	ctx := context.Background()
	guardEngine, err := guard.NewEngine(ctx, guard.DefaultPolicy)
	if err != nil {
		log.Fatalf("Failed to initialize guard engine: %v", err)
	}
	validator := guard.NewValidator(guardEngine)

	// Initialize dialogue manager
	manager := dialogue.NewManager(dialogue.NewMemoryStore())
	manager.SetSessionTimeout(cfg.SessionTimeout)

	// Optional LLM delegation for open-ended intents
	var llmClient llm.Client
	if cfg.OpenAIAPIKey != "" {
		llmClient = llm.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)
		log.Printf("LLM delegation enabled (model %s)", cfg.OpenAIModel)
	}

	// Assemble the assistant
	a := assistant.New(
		nlu.NewIntentClassifier(),
		nlu.NewSentimentAnalyzer(),
		triage.NewDefaultEngine(),
		manager,
		respond.NewGenerator(llmClient),
		validator,
		convLog,
	)

	// Periodic session sweep; expiry is also checked lazily on access.
	sweepDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(15 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := manager.ReapExpired(); n > 0 {
					log.Printf("Session sweep removed %d expired sessions", n)
				}
			case <-sweepDone:
				return
			}
		}
	}()

	// Create and start the HTTP server
	e := httpserver.NewServer(a)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	log.Printf("Triage assistant API started on port %d", cfg.HTTPPort)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down triage assistant...")
	close(sweepDone)

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("Failed to shutdown server gracefully: %v", err)
	}

	log.Println("Triage assistant stopped")
}
