// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch

// Package bridge implements C1 (child-process supervisor) and C2 (RPC
// codec) from spec.md §4.1/§4.2: the out-of-process line-delimited JSON
// connection to the storage helper, plus the tagged Value type and SQL
// textual-interpolation routine used at that boundary.
package bridge

import (
	"context"
	"encoding/json"

	"github.com/northbound/seekkb/internal/seekkberr"
)

// Client wraps a Supervisor with the seven RPC commands named in spec.md
// §4.2: init, execute, query, query_one, commit, rollback, ping. It is the
// only thing internal/store is allowed to talk to; nothing above this
// package sees a raw Request/Response.
type Client struct {
	sup *Supervisor
}

// NewClient starts the storage helper and returns a Client bound to it.
func NewClient(ctx context.Context, pythonPath, scriptPath string) (*Client, error) {
	sup, err := Start(ctx, pythonPath, scriptPath)
	if err != nil {
		return nil, err
	}
	return &Client{sup: sup}, nil
}

// call performs one request/response round trip and translates a
// store-reported error into a *seekkberr.Error of the matching Kind.
func (c *Client) call(command string, params map[string]Value) (json.RawMessage, error) {
	resp, err := c.sup.Send(Request{Command: command, Params: params})
	if err != nil {
		return nil, err
	}
	if !resp.Ok() {
		return nil, seekkberr.New(errKind(resp.Error), resp.Details)
	}
	return resp.Data, nil
}

// errKind maps the wire-level ErrorKind string to the internal taxonomy,
// falling back to QueryError for anything the helper reports that this
// codebase doesn't otherwise recognize.
func errKind(wire string) seekkberr.Kind {
	switch wire {
	case "InitError":
		return seekkberr.InitError
	case "ProcessExited":
		return seekkberr.ProcessExited
	default:
		return seekkberr.QueryError
	}
}

// Init opens the database instance per spec.md §4.3: connects with an
// empty name to obtain an administrative handle, issues
// CREATE DATABASE IF NOT EXISTS, then reopens against the named database.
func (c *Client) Init(dbPath, dbName string) error {
	if _, err := c.call("init", map[string]Value{
		"db_path": Text(dbPath),
		"db_name": Text(""),
	}); err != nil {
		return seekkberr.Wrap(seekkberr.InitError, "failed to open administrative handle", err)
	}

	createSQL := "CREATE DATABASE IF NOT EXISTS " + Ident(dbName).Quote()
	if _, err := c.call("execute", map[string]Value{
		"sql":    Text(createSQL),
		"values": List(nil),
	}); err != nil {
		return seekkberr.Wrap(seekkberr.InitError, "failed to create database "+dbName, err)
	}

	if _, err := c.call("init", map[string]Value{
		"db_path": Text(dbPath),
		"db_name": Text(dbName),
	}); err != nil {
		return seekkberr.Wrap(seekkberr.InitError, "failed to reopen working connection against "+dbName, err)
	}
	return nil
}

// Execute runs mutating SQL and returns rows affected.
func (c *Client) Execute(sql string) (int64, error) {
	data, err := c.call("execute", map[string]Value{"sql": Text(sql)})
	if err != nil {
		return 0, err
	}
	var n int64
	if len(data) > 0 {
		_ = json.Unmarshal(data, &n)
	}
	return n, nil
}

// Row is one decoded result row: column name to tagged Value.
type Row map[string]Value

// Query runs sql and returns every matching row; an empty result is an
// empty slice, never an error.
func (c *Client) Query(sql string) ([]Row, error) {
	data, err := c.call("query", map[string]Value{"sql": Text(sql)})
	if err != nil {
		return nil, err
	}
	var rows []Row
	if len(data) > 0 {
		if err := json.Unmarshal(data, &rows); err != nil {
			return nil, seekkberr.Wrap(seekkberr.QueryError, "malformed row data from storage helper", err)
		}
	}
	return rows, nil
}

// QueryOne runs sql and returns at most one row, or nil if there is no
// match.
func (c *Client) QueryOne(sql string) (Row, error) {
	data, err := c.call("query_one", map[string]Value{"sql": Text(sql)})
	if err != nil {
		return nil, err
	}
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	var row Row
	if err := json.Unmarshal(data, &row); err != nil {
		return nil, seekkberr.Wrap(seekkberr.QueryError, "malformed row data from storage helper", err)
	}
	return row, nil
}

// Commit commits the current transaction.
func (c *Client) Commit() error {
	_, err := c.call("commit", nil)
	return err
}

// Rollback rolls back the current transaction.
func (c *Client) Rollback() error {
	_, err := c.call("rollback", nil)
	return err
}

// Ping round-trips the helper to confirm liveness.
func (c *Client) Ping() error {
	data, err := c.call("ping", nil)
	if err != nil {
		return err
	}
	var s string
	_ = json.Unmarshal(data, &s)
	if s != "pong" {
		return seekkberr.New(seekkberr.ProcessExited, "storage helper did not respond to ping")
	}
	return nil
}

// IsAlive reports whether the underlying child process is still running.
func (c *Client) IsAlive() bool { return c.sup.IsAlive() }

// StderrLines returns the captured diagnostic lines from the helper, for
// surfacing alongside a ProcessExited failure.
func (c *Client) StderrLines() []string { return c.sup.StderrLines() }

// Close terminates the child process.
func (c *Client) Close() error { return c.sup.Kill() }
