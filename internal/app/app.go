// Package app wires CLI flags, environment, logging, the database pool,
// and the game Hub into a running HTTP server. It is the only package
// that knows how all the other pieces fit together (§6 CLI flags,
// GAME_DB_URL).
package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dogwalk/internal/net"
	"dogwalk/internal/records"
	"dogwalk/internal/telemetry"
	"dogwalk/logging"
	loggingsinks "dogwalk/logging/sinks"
	"dogwalk/server"
)

// Run parses flags and environment, constructs the game, and serves HTTP
// until the process receives SIGINT/SIGTERM.
func Run(ctx context.Context) error {
	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		return err
	}

	logger := telemetry.WrapLogger(log.Default())

	router, err := logging.NewRouter(logging.SystemClock{}, logging.DefaultConfig(), []logging.NamedSink{
		{Name: "console", Sink: loggingsinks.NewConsoleSink(os.Stdout, logging.ConsoleConfig{})},
	})
	if err != nil {
		return fmt.Errorf("construct logging router: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if cerr := router.Close(closeCtx); cerr != nil {
			logger.Printf("close logging router: %v", cerr)
		}
	}()

	catalogBytes, err := os.ReadFile(cfg.configFile)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	catalog, err := server.LoadCatalog(catalogBytes)
	if err != nil {
		return fmt.Errorf("load map catalog: %w", err)
	}

	dsn := os.Getenv("GAME_DB_URL")
	if dsn == "" {
		return errors.New("GAME_DB_URL is required")
	}
	if err := records.InitSchema(dsn); err != nil {
		return fmt.Errorf("initialize database schema: %w", err)
	}
	pool, err := records.NewPool(ctx, dsn, 8)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close(context.Background())
	repo := records.NewRepository(pool)

	spawnMode := server.SpawnFix
	if cfg.randomizeSpawnPoints {
		spawnMode = server.SpawnRandom
	}

	game := server.NewGame(catalog, spawnMode, rand.New(rand.NewSource(time.Now().UnixNano())))
	game.Records = repo
	game.Publisher = router

	if cfg.tickPeriod > 0 {
		game.Clock = server.NewNormalClock(time.Now())
	} else {
		game.Clock = server.NewTestClock()
	}

	if cfg.stateFile != "" {
		game.CheckpointStore = server.NewFileCheckpointStore(cfg.stateFile)
		game.SaveIntervalMs = float64(cfg.saveStatePeriodMs)

		if data, statErr := os.Stat(cfg.stateFile); statErr == nil && data.Size() > 0 {
			if err := game.LoadState(); err != nil {
				return fmt.Errorf("load checkpoint: %w", err)
			}
			logger.Printf("restored checkpoint from %s", cfg.stateFile)
		}
	}

	hub := server.NewHub(game)
	defer hub.Close()

	if cfg.tickPeriod > 0 {
		go runPeriodicTicks(ctx, hub, cfg.tickPeriod, logger)
	}

	handler, err := net.NewHandler(hub, repo, cfg.wwwRoot, logger)
	if err != nil {
		return fmt.Errorf("build HTTP handler: %w", err)
	}

	srv := &http.Server{
		Addr:        ":8080",
		Handler:     handler,
		ReadTimeout: 30 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Printf("server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
			return
		}
		serveErr <- nil
	}()

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case <-sigCtx.Done():
		logger.Printf("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return <-serveErr
	case err := <-serveErr:
		return err
	}
}

// runPeriodicTicks drives NORMAL-mode ticks at cfg.tickPeriod until ctx is
// cancelled.
func runPeriodicTicks(ctx context.Context, hub *server.Hub, period time.Duration, logger telemetry.Logger) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := hub.PeriodicTick(ctx, period.Milliseconds()); err != nil {
				logger.Printf("periodic tick failed: %v", err)
			}
		}
	}
}

type config struct {
	configFile           string
	wwwRoot              string
	tickPeriod           time.Duration
	randomizeSpawnPoints bool
	stateFile            string
	saveStatePeriodMs    int64
}

func parseFlags(args []string) (config, error) {
	fs := flag.NewFlagSet("dogwalk-server", flag.ContinueOnError)

	configFile := fs.String("config-file", "", "path to the map catalog JSON file (required)")
	wwwRoot := fs.String("www-root", "", "root directory for static file serving (required)")
	tickPeriodMs := fs.Int64("tick-period", 0, "periodic tick interval in milliseconds; omit for TEST mode")
	randomizeSpawnPoints := fs.Bool("randomize-spawn-points", false, "spawn new dogs at a random point on the road network")
	stateFile := fs.String("state-file", "", "path to a checkpoint file for persistence across restarts")
	saveStatePeriodMs := fs.Int64("save-state-period", 0, "checkpoint save interval in milliseconds (0 disables periodic saves)")

	if err := fs.Parse(args); err != nil {
		return config{}, err
	}

	if *configFile == "" {
		return config{}, errors.New("--config-file is required")
	}
	if *wwwRoot == "" {
		return config{}, errors.New("--www-root is required")
	}

	return config{
		configFile:           *configFile,
		wwwRoot:              *wwwRoot,
		tickPeriod:           time.Duration(*tickPeriodMs) * time.Millisecond,
		randomizeSpawnPoints: *randomizeSpawnPoints,
		stateFile:            *stateFile,
		saveStatePeriodMs:    *saveStatePeriodMs,
	}, nil
}
