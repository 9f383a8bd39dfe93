package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	analysis "github.com/dallae-labs/dallae/backend/internal/analysis/crisis"
	"github.com/dallae-labs/dallae/backend/internal/config"
	"github.com/dallae-labs/dallae/backend/internal/handler"
	checkinHandler "github.com/dallae-labs/dallae/backend/internal/handler/checkin"
	"github.com/dallae-labs/dallae/backend/internal/model/persona"
	"github.com/dallae-labs/dallae/backend/internal/service/ai"
	checkinService "github.com/dallae-labs/dallae/backend/internal/service/checkin"
	crisisService "github.com/dallae-labs/dallae/backend/internal/service/crisis"
	"github.com/dallae-labs/dallae/backend/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	personaStore, err := loadPersonas(cfg.PersonaFile)
	if err != nil {
		log.Fatalf("failed to load personas: %v", err)
	}

	timeline, err := openTimeline(cfg.Store)
	if err != nil {
		log.Fatalf("failed to open timeline store: %v", err)
	}
	defer timeline.Close()
	log.Printf("timeline store ready (driver=%s)", cfg.Store.Driver)

	// Generation gateway; the service runs without it and every generation
	// then takes the fallback path.
	var aiService *ai.Service
	if cfg.AI.Enabled() {
		aiService, err = ai.NewService(ctx, cfg.AI)
		if err != nil {
			log.Printf("warning: failed to initialize AI service: %v", err)
			log.Println("continuing without AI generation, fallback texts will be used")
		} else {
			log.Println("AI service initialized successfully")
		}
	} else {
		log.Println("Ark credentials not configured, skipping AI generation")
	}

	crisisSvc, err := buildCrisisService(ctx, cfg.Crisis, aiService)
	if err != nil {
		log.Fatalf("failed to initialize crisis evaluation: %v", err)
	}

	deps := checkinService.Deps{
		Evaluator:    crisisSvc,
		Live:         crisisSvc.Local(),
		Timeline:     timeline,
		LookbackDays: cfg.Crisis.LookbackDays,
		OnCrisis: func(result analysis.Result) {
			log.Printf("[crisis] interrupt raised (reason=%s confidence=%s)", result.Reason, result.Confidence)
		},
	}
	if aiService != nil {
		deps.Generator = aiService
	}

	registry := checkinHandler.NewRegistry(deps, personaStore)
	defer registry.CloseAll()

	router := handler.NewRouter(personaStore, registry, timeline)

	startServer(ctx, cfg.Server, router)
}

func loadPersonas(path string) (persona.Store, error) {
	if path == "" {
		return persona.NewMemoryStore(persona.Seed()), nil
	}
	items, err := persona.LoadFile(path)
	if err != nil {
		return nil, err
	}
	log.Printf("loaded %d personas from %s", len(items), path)
	return persona.NewMemoryStore(items), nil
}

func openTimeline(cfg config.StoreConfig) (store.Store, error) {
	switch cfg.Driver {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		return store.New(store.TypeRedis, store.WithRedisClient(client), store.WithRedisTTL(cfg.RedisTTL))
	case "sqlite":
		return store.New(store.TypeSQLite, store.WithSQLitePath(cfg.SQLitePath))
	default:
		return store.New(store.TypeMemory)
	}
}

func buildCrisisService(ctx context.Context, cfg config.CrisisConfig, aiService *ai.Service) (*crisisService.Service, error) {
	keywords := analysis.DefaultKeywords()
	if cfg.KeywordsFile != "" {
		loaded, err := analysis.LoadKeywordsFile(cfg.KeywordsFile)
		if err != nil {
			return nil, err
		}
		keywords = loaded
		log.Printf("loaded %d crisis keywords from %s", len(loaded), cfg.KeywordsFile)
	}

	var chatModel einomodel.ChatModel
	if aiService != nil {
		chatModel = aiService.GetChatModel()
	}

	svc, err := crisisService.NewService(ctx, chatModel, analysis.New(keywords), crisisService.Config{Enabled: cfg.LLMEnabled})
	if err != nil {
		return nil, err
	}
	if svc.Enabled() {
		log.Println("crisis classifier escalation enabled")
	} else if cfg.LLMEnabled {
		log.Println("crisis classifier requested but chat model unavailable, local layers only")
	}
	return svc, nil
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Dallae backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
