// Package main is the entry point for the assistant API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/dodorico/property-assistant/internal/catalog"
	"github.com/dodorico/property-assistant/internal/channel"
	"github.com/dodorico/property-assistant/internal/config"
	"github.com/dodorico/property-assistant/internal/conversation"
	"github.com/dodorico/property-assistant/internal/handler"
	"github.com/dodorico/property-assistant/internal/llm"
	"github.com/dodorico/property-assistant/internal/middleware"
	"github.com/dodorico/property-assistant/internal/queue"
	"github.com/dodorico/property-assistant/internal/service"
	"github.com/dodorico/property-assistant/internal/state"
	"github.com/dodorico/property-assistant/pkg/logger"
	"github.com/dodorico/property-assistant/pkg/tracing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	log.Info("starting assistant API server")

	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "property-assistant", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Connect to NATS
	queueClient, err := queue.Connect(queue.Config{
		URL:   cfg.NATSURL,
		Token: cfg.NATSToken,
	}, log)
	if err != nil {
		log.Error("failed to connect to NATS", zap.Error(err))
		os.Exit(1)
	}
	defer queueClient.Close()

	// Conversation state store
	var store state.Store
	if cfg.RedisAddr != "" {
		redisStore, err := state.NewRedisStore(ctx, state.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			log.Error("failed to connect to Redis", zap.Error(err))
			os.Exit(1)
		}
		defer redisStore.Close()
		store = redisStore
		log.Info("using Redis state store", zap.String("addr", cfg.RedisAddr))
	} else {
		store = state.NewMemoryStore()
		log.Info("using in-memory state store")
	}

	// LLM client
	apiKey := cfg.AnthropicAPIKey
	if llm.Provider(cfg.LLMProvider) == llm.ProviderOpenAI {
		apiKey = cfg.OpenAIAPIKey
	}
	llmClient, err := llm.NewClient(llm.Provider(cfg.LLMProvider), apiKey)
	if err != nil {
		log.Error("failed to create LLM client", zap.Error(err))
		os.Exit(1)
	}
	log.Info("LLM client ready", zap.String("provider", llmClient.Name()))

	// Catalog client and orchestration
	catalogClient := catalog.New(catalog.Config{
		BaseURL:         cfg.CatalogBaseURL,
		APIKey:          cfg.CatalogAPIKey,
		TTL:             cfg.CatalogTTL,
		FetchTimeout:    cfg.CatalogFetchTimeout,
		LocationTimeout: cfg.CatalogLocationTimeout,
	}, log)

	executor := conversation.NewExecutor(catalogClient, log)
	orchestrator := conversation.NewOrchestrator(llmClient, executor, log, conversation.Options{
		Model:       cfg.LLMModel,
		MaxTokens:   cfg.LLMMaxTokens,
		CallTimeout: cfg.LLMTimeout,
	})

	// Outbound channels
	senders := map[string]channel.Sender{
		channel.WhatsApp:  channel.NewWhatsAppSender(cfg.WhatsAppToken, cfg.WhatsAppPhoneID, log),
		channel.Instagram: channel.NewInstagramSender(cfg.InstagramToken, cfg.InstagramPageID, log),
	}
	dispatcher := channel.NewDispatcher(senders, log)

	assistant := service.NewAssistant(store, orchestrator, dispatcher, log)

	// Inbound worker: webhook messages are acknowledged immediately and
	// flow through NATS to here.
	inbound := queue.NewInbound(queueClient)
	if err := inbound.Subscribe(ctx, func(ctx context.Context, msg queue.InboundMessage) {
		assistant.HandleInbound(ctx, msg.Channel, msg.UserID, msg.Text)
	}); err != nil {
		log.Error("failed to subscribe to inbound queue", zap.Error(err))
		os.Exit(1)
	}
	defer inbound.Unsubscribe()

	// Handlers
	healthHandler := handler.NewHealthHandler(queueClient)
	chatHandler := handler.NewChatHandler(assistant, log)
	adminHandler := handler.NewAdminHandler(catalogClient, assistant, log)
	webhookHandler := handler.NewWebhookHandler(inbound, dispatcher, channel.NewDeduper(0), map[string]string{
		channel.WhatsApp:  cfg.WhatsAppVerifyToken,
		channel.Instagram: cfg.InstagramVerifyToken,
	}, log)

	// Router
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS())

	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/chat", chatHandler.Chat)

	r.Route("/webhook", func(r chi.Router) {
		r.Get("/whatsapp", webhookHandler.Verify(channel.WhatsApp))
		r.Post("/whatsapp", webhookHandler.Receive(channel.WhatsApp))
		r.Get("/instagram", webhookHandler.Verify(channel.Instagram))
		r.Post("/instagram", webhookHandler.Receive(channel.Instagram))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWTSecret))
		r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

		r.Route("/catalog", func(r chi.Router) {
			r.Post("/search", adminHandler.SearchCatalog)
			r.Get("/locations", adminHandler.ResolveLocation)
			r.Post("/cache/invalidate", adminHandler.InvalidateCache)
		})

		r.Delete("/conversations/{userID}", adminHandler.ResetState)
	})

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}
