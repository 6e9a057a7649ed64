// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package store

import (
	"context"
	"fmt"

	"github.com/northbound/seekkb/internal/bridge"
	"github.com/northbound/seekkb/internal/logger"
	"github.com/northbound/seekkb/internal/seekkberr"
)

// VectorDimension is D from spec.md §3/§4.4: every embedding stored or
// queried against vector_documents has exactly this many components.
const VectorDimension = 1536

// rpcClient is the subset of *bridge.Client the adapter needs, narrowed to
// an interface so tests can substitute a mock the way
// internal/embeddings/mock.go does for its external.
type rpcClient interface {
	Execute(sql string) (int64, error)
	Query(sql string) ([]bridge.Row, error)
	QueryOne(sql string) (bridge.Row, error)
	Commit() error
	Rollback() error
	Ping() error
	Close() error
}

// Store is the typed surface described in spec.md §4.3. Every exported
// method builds a complete, parameter-interpolated SQL string (via
// bridge.Literal/Ident) and sends it through a single rpcClient, because
// the underlying helper serializes one request at a time.
type Store struct {
	client rpcClient
}

// Open starts the storage helper, performs the two-step init sequence
// (administrative connect + CREATE DATABASE IF NOT EXISTS + reopen) from
// spec.md §4.3, and bootstraps the schema.
func Open(ctx context.Context, pythonPath, scriptPath, dbPath, dbName string) (*Store, error) {
	client, err := bridge.NewClient(ctx, pythonPath, scriptPath)
	if err != nil {
		return nil, err
	}
	if err := client.Init(dbPath, dbName); err != nil {
		return nil, err
	}
	s := New(client)
	if err := s.bootstrapSchema(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an already-initialized rpcClient without running init or
// bootstrapSchema again; used directly by tests against a mock client.
func New(client rpcClient) *Store {
	return &Store{client: client}
}

// Ping round-trips the child to confirm liveness, used for idle health
// checks per spec.md §5 ("a hung child is detected by liveness checks").
func (s *Store) Ping() error {
	return s.client.Ping()
}

// Close terminates the owned child process.
func (s *Store) Close() error {
	return s.client.Close()
}

// Commit commits the current transaction.
func (s *Store) Commit() error { return s.client.Commit() }

// Rollback rolls back the current transaction.
func (s *Store) Rollback() error { return s.client.Rollback() }

// exec runs mutating SQL built from a pre-formatted literal string and
// wraps any failure as a QueryError carrying enough of the statement to
// diagnose without leaking full row content.
func (s *Store) exec(sql string) (int64, error) {
	n, err := s.client.Execute(sql)
	if err != nil {
		return 0, annotate(err, sql)
	}
	return n, nil
}

func (s *Store) query(sql string) ([]bridge.Row, error) {
	rows, err := s.client.Query(sql)
	if err != nil {
		return nil, annotate(err, sql)
	}
	return rows, nil
}

func (s *Store) queryOne(sql string) (bridge.Row, error) {
	row, err := s.client.QueryOne(sql)
	if err != nil {
		return nil, annotate(err, sql)
	}
	return row, nil
}

func annotate(err error, sql string) error {
	if len(sql) > 120 {
		sql = sql[:120] + "..."
	}
	logger.Debugf("[store] query failed: %v (sql=%s)", err, sql)
	return seekkberr.Wrap(seekkberr.QueryError, fmt.Sprintf("query failed: %s", sql), err)
}
