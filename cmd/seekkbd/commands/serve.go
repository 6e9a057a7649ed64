// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/northbound/seekkb/internal/bootstrap"
	"github.com/northbound/seekkb/internal/commands"
	"github.com/northbound/seekkb/internal/config"
	"github.com/northbound/seekkb/internal/eventbus"
	"github.com/northbound/seekkb/internal/jobs"
	"github.com/northbound/seekkb/internal/logger"
	"github.com/northbound/seekkb/internal/queue"
	server "github.com/northbound/seekkb/internal/transport"
	"github.com/northbound/seekkb/internal/worker"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the engine as a background process for a desktop shell to attach to",
	Long: `serve starts the three-step startup sequence in the background, then
exposes the command surface's push events over a websocket (with a Redis
mailbox fallback when configured) and a health endpoint, until interrupted.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8765, "HTTP port for /api/v1/health and /ws")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	logFile := "seekkbd.log"
	if _, err := logger.Init(logFile); err != nil {
		fmt.Printf("failed to initialize logger: %v, using stdout only\n", err)
	}

	dataDir, err := resolveDataDir()
	if err != nil {
		return err
	}
	configPath := viper.GetString("config")

	bus := eventbus.New()
	holder := bootstrap.NewHolder(bus)
	engine := commands.New(holder, bus, configPath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	redisClient, redisErr := config.NewRedisClient(ctx)

	var mailbox server.Mailbox
	var jobQueue queue.Queue
	if redisErr != nil {
		logger.Warnf("Redis unavailable, websocket mailbox fallback and durable job queue disabled: %v", redisErr)
		jobQueue = queue.NewMemoryQueue(64)
	} else {
		mailbox = server.NewRedisMailbox(redisClient)
		rq, err := queue.NewRedisQueue(redisClient, "seekkb:jobs")
		if err != nil {
			logger.Warnf("Redis queue unavailable, falling back to in-process queue: %v", err)
			jobQueue = queue.NewMemoryQueue(64)
		} else {
			jobQueue = rq
		}
	}

	go func() {
		opts := bootstrap.Options{ConfigPath: configPath, DataDir: dataDir}
		if err := bootstrap.Run(ctx, opts, holder); err != nil {
			logger.Errorf("bootstrap failed: %v", err)
			return
		}
		logger.Printf("engine ready")
		startBackgroundJobs(ctx, holder, jobQueue, dataDir)
	}()

	wsManager := server.NewWebSocketManager(bus, mailbox)
	defer wsManager.Stop()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/health", server.HandleHealth(engine))
	mux.HandleFunc("/ws", wsManager.HandleWebSocket)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", servePort),
		Handler: server.TrafficLogger(mux),
	}

	go func() {
		logger.Printf("HTTP server listening on %d", servePort)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorf("HTTP server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Println("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("HTTP shutdown error: %v", err)
	}
	return nil
}
