// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package config

import (
	"context"
	"os"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/northbound/seekkb/internal/logger"
)

// NewRedisClient creates a Redis client for the ingestion job queue and the
// websocket mailbox fallback, from REDIS_ADDR (default 127.0.0.1:6379),
// REDIS_DB (default 0), and REDIS_PASSWORD (optional). Both features are
// optional supplements to the engine (spec.md's Non-goals exclude neither),
// so callers that can't reach Redis fall back to running without them.
func NewRedisClient(ctx context.Context) (*redis.Client, error) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "127.0.0.1:6379"
	}

	dbStr := os.Getenv("REDIS_DB")
	if dbStr == "" {
		dbStr = "0"
	}
	db, err := strconv.Atoi(dbStr)
	if err != nil {
		logger.Printf("NewRedisClient: invalid REDIS_DB value %q, using default 0", dbStr)
		db = 0
	}

	password := os.Getenv("REDIS_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		DB:       db,
		Password: password,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Printf("NewRedisClient: failed to ping Redis: %v", err)
		return nil, err
	}

	logger.Printf("NewRedisClient: connected to %s db=%d", addr, db)
	return client, nil
}
