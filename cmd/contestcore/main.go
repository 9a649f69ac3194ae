// Contest Core server - runs the agent/contest/ledger domain and exposes it
// over HTTP (spec §6).
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/codeready-toolchain/contestcore/pkg/api"
	"github.com/codeready-toolchain/contestcore/pkg/catalog"
	"github.com/codeready-toolchain/contestcore/pkg/config"
	"github.com/codeready-toolchain/contestcore/pkg/execution"
	"github.com/codeready-toolchain/contestcore/pkg/judgesession"
	"github.com/codeready-toolchain/contestcore/pkg/ledger"
	"github.com/codeready-toolchain/contestcore/pkg/llmprovider"
	"github.com/codeready-toolchain/contestcore/pkg/settlement"
	"github.com/codeready-toolchain/contestcore/pkg/store"
	"github.com/codeready-toolchain/contestcore/pkg/tokens"
	"github.com/codeready-toolchain/contestcore/pkg/watchdog"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	configDir := flag.String("config-dir",
		getEnv("CONFIG_DIR", "./config"),
		"Path to configuration directory")
	flag.Parse()

	envPath := filepath.Join(*configDir, ".env")
	if err := godotenv.Load(envPath); err != nil {
		log.Printf("Warning: could not load %s file: %v", envPath, err)
		log.Printf("Continuing with existing environment variables...")
	} else {
		log.Printf("Loaded environment from %s", envPath)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("Starting Contest Core")
	log.Printf("Config directory: %s", *configDir)

	cfg, err := config.Initialize(ctx, *configDir)
	if err != nil {
		log.Fatalf("Failed to initialize configuration: %v", err)
	}

	st, err := store.Open(ctx, store.Config{
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    int32(cfg.Database.MaxOpenConns),
		MaxIdleConns:    int32(cfg.Database.MaxIdleConns),
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()
	log.Println("Connected to PostgreSQL database")

	cat, err := catalog.LoadModelsFile(cfg.Catalog.ModelsFile, cfg.Credits.PerUSD)
	if err != nil {
		log.Fatalf("Failed to load model catalog: %v", err)
	}
	log.Printf("Loaded %d models into catalog", cat.Len())

	providers := llmprovider.NewRegistry()
	providers.Register("openai", llmprovider.NewOpenAIAdapter(os.Getenv(cfg.Providers.OpenAIAPIKeyEnv), cfg.Providers.OpenAIBaseURL))
	providers.Register("anthropic", llmprovider.NewAnthropicAdapter(os.Getenv(cfg.Providers.AnthropicAPIKeyEnv)))

	estimator := tokens.New()
	ldgr := ledger.New(st.Pool, st.Users, st.Ledger)
	execs := execution.New(st.Executions)

	writer := &settlement.Coordinator{
		Agents:    st.Agents,
		Users:     st.Users,
		Texts:     st.Texts,
		Catalog:   cat,
		Providers: providers,
		Estimator: estimator,
		Ledger:    ldgr,
		Execs:     execs,
	}
	judge := &judgesession.Manager{
		Pool:      st.Pool,
		Contests:  st.Contests,
		Judges:    st.ContestJudges,
		Texts:     st.Texts,
		Votes:     st.Votes,
		Agents:    st.Agents,
		Catalog:   cat,
		Providers: providers,
		Estimator: estimator,
		Ledger:    ldgr,
		Execs:     execs,
	}

	watch := watchdog.New(st.Executions, execs, ldgr, cfg.Watchdog.Interval, cfg.Watchdog.Threshold)
	go watch.Run(ctx)
	log.Printf("Watchdog sweeping every %s for executions stuck past %s", cfg.Watchdog.Interval, cfg.Watchdog.Threshold)

	srv := api.NewServer(st, cat, ldgr, writer, judge)
	srv.SetWatchdog(watch)

	addr := ":" + cfg.Server.Port
	errCh := make(chan error, 1)
	go func() {
		log.Printf("HTTP server listening on %s", addr)
		if err := srv.Start(addr); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Println("Shutting down...")
	case err := <-errCh:
		log.Fatalf("HTTP server failed: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	watch.Stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("error during HTTP shutdown", "error", err)
	}
}
