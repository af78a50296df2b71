package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/relist-app/relist/config"
	"github.com/relist-app/relist/internal/catalog"
	"github.com/relist-app/relist/internal/llm"
	"github.com/relist-app/relist/internal/pricing"
	"github.com/relist-app/relist/internal/server"
	"github.com/relist-app/relist/internal/storage"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	config.LoadEnvFile()
	cfg := config.Load()

	store, err := storage.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize store")
	}
	defer store.Close()
	log.Info().Str("dbPath", cfg.DBPath).Msg("store initialized")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var primary, secondary catalog.Analyzer
	var queries pricing.QueryGenerator
	if cfg.GeminiAPIKey != "" {
		gemini, err := llm.NewGeminiAnalyzer(ctx, cfg.GeminiAPIKey)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize gemini analyzer")
		}
		limited := llm.NewRateLimitedAnalyzer(gemini, cfg.VisionRPS, cfg.VisionBurst)
		primary = limited
		secondary = llm.NewCachedAnalyzer(limited, store)
		queries = gemini
		log.Info().Msg("gemini analyzer initialized")
	} else {
		log.Warn().Msg("GEMINI_API_KEY not set, AI analysis disabled; listings will use template defaults")
	}

	var searcher catalog.PriceSearcher
	if cfg.PriceSearchURL != "" {
		searcher = pricing.NewClient(pricing.ClientOpts{
			BaseURL: cfg.PriceSearchURL,
			Queries: queries,
		})
		log.Info().Str("baseURL", cfg.PriceSearchURL).Msg("price search enabled")
	}

	syn := catalog.NewSynonymTable()
	engine := catalog.NewEngine(syn, catalog.DefaultGroupingConfig())
	assembler := catalog.NewAssembler(searcher)
	orchestrator := catalog.NewOrchestrator(primary, secondary, engine, assembler)

	handler := server.NewHandler(orchestrator, store)
	router := server.SetupRouter(handler, cfg.Production)

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: router,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("addr", cfg.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("shutdown with error")
	} else {
		log.Info().Msg("shutdown complete")
	}
}
