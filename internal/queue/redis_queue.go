// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/northbound/seekkb/internal/logger"
)

// RedisQueue implements Queue on a Redis list: RPUSH to enqueue, BLPOP to
// dequeue, so multiple seekkbd processes can share one durable queue
// instead of each holding its own in-memory one.
type RedisQueue struct {
	client *redis.Client
	key    string
}

// NewRedisQueue builds a RedisQueue over key (defaulting to
// "jobs:default"), pinging client first so a misconfigured Redis fails at
// construction instead of on the first Enqueue.
func NewRedisQueue(client *redis.Client, key string) (Queue, error) {
	if key == "" {
		key = "jobs:default"
	}

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &RedisQueue{client: client, key: key}, nil
}

// Enqueue adds a job to the queue using RPUSH.
func (r *RedisQueue) Enqueue(ctx context.Context, job Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	if err := r.client.RPush(ctx, r.key, data).Err(); err != nil {
		return fmt.Errorf("rpush: %w", err)
	}
	return nil
}

// Dequeue blocks on BLPOP until a job is available or ctx is cancelled.
func (r *RedisQueue) Dequeue(ctx context.Context) (Job, error) {
	type result struct {
		val []string
		err error
	}
	resultChan := make(chan result, 1)

	go func() {
		val, err := r.client.BLPop(ctx, 0, r.key).Result()
		resultChan <- result{val: val, err: err}
	}()

	select {
	case <-ctx.Done():
		return Job{}, ctx.Err()
	case res := <-resultChan:
		if res.err != nil {
			if res.err == redis.Nil {
				return Job{}, ctx.Err()
			}
			return Job{}, fmt.Errorf("blpop: %w", res.err)
		}
		if len(res.val) < 2 {
			return Job{}, fmt.Errorf("unexpected BLPOP result shape: %d elements", len(res.val))
		}

		var job Job
		if err := json.Unmarshal([]byte(res.val[1]), &job); err != nil {
			return Job{}, fmt.Errorf("unmarshal job: %w", err)
		}
		logger.Debugf("RedisQueue.Dequeue: key=%s type=%s", r.key, job.Type)
		return job, nil
	}
}
