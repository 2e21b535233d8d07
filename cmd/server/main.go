// Package main provides the unified service that runs all components together:
// - Indexer (continuous): WebSocket LiquidationCall feed, enrichment
// - API (continuous): records, views, analytics over HTTP
// - Snapshot (scheduled): analytics archive into ClickHouse
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"liquidation-radar/internal/api"
	"liquidation-radar/internal/enrichment"
	"liquidation-radar/internal/ethereum"
	"liquidation-radar/internal/indexer"
	"liquidation-radar/internal/snapshot"
	"liquidation-radar/internal/storage"
	chstore "liquidation-radar/internal/storage/clickhouse"
	"liquidation-radar/internal/storage/memory"
	"liquidation-radar/internal/storage/migrations"
	pgstore "liquidation-radar/internal/storage/postgres"
)

// Server holds all components of the unified service.
type Server struct {
	// Configuration
	rpcEndpoint      string
	wsEndpoint       string
	poolAddress      string
	oracleAddress    string
	apiAddr          string
	kafkaBrokers     []string
	kafkaTopic       string
	probeLatency     bool
	maxLookback      uint64
	snapshotInterval time.Duration

	stores *allStores
	logger *log.Logger
}

// allStores holds all storage implementations.
type allStores struct {
	liquidationStore    storage.LiquidationStore
	dailyStatStore      storage.DailyStatStore
	liquidatorStatStore storage.LiquidatorStatStore
}

func main() {
	// Load .env file if exists
	_ = godotenv.Load()

	// Parse flags (env vars as defaults)
	rpcEndpoint := flag.String("rpc-endpoint", os.Getenv("ETH_RPC_ENDPOINT"), "Ethereum RPC HTTP endpoint")
	wsEndpoint := flag.String("ws-endpoint", os.Getenv("ETH_WS_ENDPOINT"), "Ethereum WebSocket endpoint")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	kafkaBrokers := flag.String("kafka-brokers", os.Getenv("KAFKA_BROKERS"), "Comma-separated Kafka brokers (empty disables publishing)")
	kafkaTopic := flag.String("kafka-topic", envOr("KAFKA_TOPIC", "liquidations"), "Kafka topic for liquidation events")
	poolAddress := flag.String("pool", indexer.AavePoolAddress, "Aave v3 Pool contract address")
	oracleAddress := flag.String("oracle", enrichment.AaveOracleAddress, "Aave price oracle contract address")
	apiAddr := flag.String("api-addr", ":8080", "API HTTP address")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL/ClickHouse")
	probeLatency := flag.Bool("probe-latency", false, "Probe liquidation latency (requires an archive node)")
	maxLookback := flag.Uint64("max-lookback", enrichment.DefaultMaxLookback, "Max blocks to search back for the first unhealthy block")
	snapshotInterval := flag.Duration("snapshot-interval", 1*time.Hour, "Analytics snapshot interval")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	// Validate required flags
	if *rpcEndpoint == "" {
		logger.Fatal("--rpc-endpoint is required")
	}
	if *wsEndpoint == "" {
		logger.Fatal("--ws-endpoint is required")
	}
	if !*useMemory && (*postgresDSN == "" || *clickhouseDSN == "") {
		logger.Fatal("--postgres-dsn and --clickhouse-dsn are required (use --use-memory for in-memory storage)")
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())

	// Create stores
	stores, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	// Create server
	server := &Server{
		rpcEndpoint:      *rpcEndpoint,
		wsEndpoint:       *wsEndpoint,
		poolAddress:      strings.ToLower(*poolAddress),
		oracleAddress:    strings.ToLower(*oracleAddress),
		apiAddr:          *apiAddr,
		kafkaBrokers:     splitNonEmpty(*kafkaBrokers),
		kafkaTopic:       *kafkaTopic,
		probeLatency:     *probeLatency,
		maxLookback:      *maxLookback,
		snapshotInterval: *snapshotInterval,
		stores:           stores,
		logger:           logger,
	}

	// Channel to signal completion
	done := make(chan error, 1)

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		// Wait for second signal for immediate shutdown
		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
			// Normal shutdown completed
		}
	}()

	// Run the unified server
	err = server.Run(ctx)
	done <- err
	cancel()

	if err != nil && err != context.Canceled {
		logger.Fatalf("Server error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// createStores creates all required stores and runs migrations.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool) (*allStores, func(), error) {
	if useMemory {
		stores := &allStores{
			liquidationStore:    memory.NewLiquidationStore(),
			dailyStatStore:      memory.NewDailyStatStore(),
			liquidatorStatStore: memory.NewLiquidatorStatStore(),
		}
		return stores, func() {}, nil
	}

	// PostgreSQL (records)
	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("postgres migrations: %w", err)
	}

	// ClickHouse (analytics archive)
	chConn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("clickhouse migrations: %w", err)
	}

	stores := &allStores{
		liquidationStore:    pgstore.NewLiquidationStore(pool),
		dailyStatStore:      chstore.NewDailyStatStore(chConn),
		liquidatorStatStore: chstore.NewLiquidatorStatStore(chConn),
	}

	cleanup := func() {
		chConn.Close()
		pool.Close()
	}

	return stores, cleanup, nil
}

// Run starts the unified server with all components.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Println("Starting unified server...")

	errCh := make(chan error, 3)

	// Start indexer in background
	go func() {
		err := s.runIndexer(ctx)
		if err != nil && err != context.Canceled {
			errCh <- fmt.Errorf("indexer: %w", err)
		}
	}()

	// Start snapshot scheduler in background
	go func() {
		job := snapshot.New(snapshot.Options{
			Liquidations: s.stores.liquidationStore,
			DailyStats:   s.stores.dailyStatStore,
			Liquidators:  s.stores.liquidatorStatStore,
			Interval:     s.snapshotInterval,
			Logger:       log.New(os.Stdout, "[snapshot] ", log.LstdFlags),
		})
		err := job.Run(ctx)
		if err != nil && err != context.Canceled {
			errCh <- fmt.Errorf("snapshot scheduler: %w", err)
		}
	}()

	// Start API server in background
	go func() {
		if err := s.runAPI(ctx); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("api: %w", err)
		}
	}()

	// Wait for context cancellation or error
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// runIndexer runs continuous liquidation ingestion.
func (s *Server) runIndexer(ctx context.Context) error {
	s.logger.Println("Starting indexer...")

	rpc := ethereum.NewHTTPClient(s.rpcEndpoint)

	ws, err := ethereum.NewWSClient(ctx, s.wsEndpoint, nil)
	if err != nil {
		return fmt.Errorf("create websocket client: %w", err)
	}
	defer ws.Close()

	source := indexer.NewWSLiquidationSource(ws, rpc, s.poolAddress)

	enricher := enrichment.New(enrichment.Options{
		RPC:          rpc,
		Pool:         s.poolAddress,
		Oracle:       s.oracleAddress,
		MaxLookback:  s.maxLookback,
		ProbeLatency: s.probeLatency,
	})

	var publisher indexer.EventPublisher
	if len(s.kafkaBrokers) > 0 {
		kafkaPub := indexer.NewKafkaPublisher(indexer.KafkaConfig{
			Brokers: s.kafkaBrokers,
			Topic:   s.kafkaTopic,
		})
		defer kafkaPub.Close()
		publisher = kafkaPub
		s.logger.Printf("Publishing liquidations to Kafka topic %q via %v", s.kafkaTopic, s.kafkaBrokers)
	}

	runner := indexer.NewRunner(indexer.RunnerOptions{
		Source:    source,
		Store:     s.stores.liquidationStore,
		Enricher:  enricher,
		Publisher: publisher,
		Logger:    log.New(os.Stdout, "[indexer] ", log.LstdFlags|log.Lshortfile),
	})

	s.logger.Println("Indexer started")
	return runner.Run(ctx)
}

// runAPI serves the HTTP API until the context is cancelled.
func (s *Server) runAPI(ctx context.Context) error {
	apiServer := api.NewServer(s.stores.liquidationStore, log.New(os.Stdout, "[api] ", log.LstdFlags))

	httpServer := &http.Server{
		Addr:              s.apiAddr,
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Printf("API shutdown error: %v", err)
		}
	}()

	s.logger.Printf("Starting API server on %s", s.apiAddr)
	return httpServer.ListenAndServe()
}

// splitNonEmpty splits a comma-separated list, dropping empty entries.
func splitNonEmpty(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// envOr returns the env var value or a fallback when unset.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
