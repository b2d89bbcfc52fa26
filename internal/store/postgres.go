// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TicketHub Contributors

// Package store manages PostgreSQL connectivity and schema migrations.
package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

const (
	connectTimeout    = 30 * time.Second
	retryBaseInterval = 500 * time.Millisecond
)

// Connect opens a pgx connection pool against databaseURL and verifies
// connectivity with a ping, retrying with fibonacci backoff until the
// connect timeout elapses.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, oops.Code("STORE_CONFIG_INVALID").
			With("operation", "parse database url").
			Wrap(err)
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	var pool *pgxpool.Pool
	backoff := retry.WithMaxDuration(connectTimeout, retry.NewFibonacci(retryBaseInterval))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		pool, err = pgxpool.NewWithConfig(ctx, cfg)
		if err != nil {
			return retry.RetryableError(err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return nil, oops.Code("STORE_CONNECT_FAILED").
			With("operation", "connect to database").
			Wrap(err)
	}

	return pool, nil
}
