package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cwrk-planet/chat-service/config"
	"github.com/cwrk-planet/chat-service/internal/auth"
	"github.com/cwrk-planet/chat-service/internal/chat"
	"github.com/cwrk-planet/chat-service/internal/enrichment"
	"github.com/cwrk-planet/chat-service/internal/notify"
	"github.com/cwrk-planet/chat-service/internal/postgres"
	"github.com/cwrk-planet/chat-service/internal/presence"
	"github.com/cwrk-planet/chat-service/internal/service"
	httpx "github.com/cwrk-planet/chat-service/internal/transport/http"
	"github.com/cwrk-planet/chat-service/internal/transport/ws"
	"github.com/cwrk-planet/chat-service/pkg/logger"
)

func main() {
	// --- config ---
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger.Init(logger.Config{
		Env:       logger.Env(cfg.Logging.Env),
		Service:   cfg.Logging.Service,
		Version:   cfg.Logging.Version,
		Backend:   logger.Backend(cfg.Logging.Backend),
		AddSource: cfg.Logging.AddSource,
		Debug:     cfg.Logging.Debug,
	})
	slog.Info("starting chat-service",
		"env", cfg.Logging.Env, "version", cfg.Logging.Version)

	// --- postgres ---
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.New(ctx, cfg.Postgres.DSN)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer db.Close()

	// --- repos ---
	msgRepo := postgres.NewMessageRepository(db.Pool)
	reactionRepo := postgres.NewReactionRepository(db.Pool)
	memberRepo := postgres.NewMemberRepository(db.Pool)
	prefRepo := postgres.NewPreferenceRepository(db.Pool)
	roomRepo := postgres.NewRoomRepository(db.Pool)

	// --- services ---
	chatSvc := service.NewChatService(msgRepo, reactionRepo)
	memberSvc := service.NewMemberService(roomRepo, memberRepo, prefRepo)

	// --- presence ---
	registry := presence.NewRegistry()
	index := presence.NewIndex()

	// --- notifications ---
	mailer := notify.NewMailer(notify.Config{
		Host: cfg.SMTP.Host,
		Port: cfg.SMTP.Port,
		User: cfg.SMTP.User,
		Pass: cfg.SMTP.Pass,
		From: cfg.SMTP.From,
	})

	dispatcher := chat.NewDispatcher(cfg.Notify.Workers, cfg.Notify.QueueSize, 10*time.Second)
	go func() { _ = dispatcher.Run(ctx) }()

	// --- enrichment (optional) ---
	opts := chat.BroadcasterOpts{BlockToxic: cfg.Enrichment.BlockToxic}
	var enricher *enrichment.Client
	if cfg.Enrichment.Enabled {
		enricher = enrichment.NewClient(cfg.Enrichment.BaseURL, cfg.Enrichment.APIKey)
		opts.Enricher = enricher
	}
	if len(cfg.Enrichment.BannedWords) > 0 {
		screener, err := enrichment.NewToxicity(cfg.Enrichment.BannedWords)
		if err != nil {
			log.Fatalf("toxicity screener: %v", err)
		}
		opts.Screener = screener
	}

	// --- fan-out pipeline ---
	hub := ws.NewHub()
	sender := ws.NewRoomSender(hub)
	mentions := chat.NewMentionResolver(memberSvc, registry, sender, mailer)
	offline := chat.NewOfflineNotifier(memberSvc, registry, mailer, cfg.Notify.CoalesceOverlap)
	broadcaster := chat.NewBroadcaster(sender, registry, chatSvc, dispatcher, mentions, offline, opts)

	// --- WS & HTTP ---
	verifier := auth.NewVerifier(cfg.Auth.JWTSecret)
	wsServer := ws.NewServer(hub, registry, index, broadcaster, verifier, cfg.PingEvery(), cfg.ReconcileEvery())
	if enricher != nil {
		wsServer.WithTranslator(enricher)
		wsServer.WithSummarizer(enricher)
	}
	go wsServer.ReconcileLoop(ctx)

	handler := httpx.NewHandler(registry, index)
	router := httpx.NewRouter(handler, wsServer, verifier, cfg.HTTP.AllowedOrigins)
	httpSrv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listen", "addr", cfg.HTTP.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// --- graceful shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal", "sig", sig)
	case err := <-errCh:
		slog.Error("server error", "err", err)
	}

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	_ = httpSrv.Shutdown(ctxShutdown)
	cancel()
	slog.Info("stopped")
}
