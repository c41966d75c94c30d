package gateway

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// retryGateway wraps a TableGateway with bounded exponential backoff. A call
// that still fails after maxRetries additional attempts surfaces its last
// error to the caller; the failure is scoped to that one operation.
type retryGateway struct {
	next       TableGateway
	maxRetries uint64
	interval   time.Duration
}

func WithRetry(next TableGateway, maxRetries uint64, interval time.Duration) TableGateway {
	return &retryGateway{
		next:       next,
		maxRetries: maxRetries,
		interval:   interval,
	}
}

func (g *retryGateway) retry(ctx context.Context, op func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = g.interval

	return backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, g.maxRetries), ctx))
}

func (g *retryGateway) Select(ctx context.Context, table string, filters Filters) ([]Record, error) {
	var records []Record
	err := g.retry(ctx, func() error {
		var err error
		records, err = g.next.Select(ctx, table, filters)
		return err
	})
	return records, err
}

func (g *retryGateway) Insert(ctx context.Context, table string, record Record) (Record, error) {
	var inserted Record
	err := g.retry(ctx, func() error {
		var err error
		inserted, err = g.next.Insert(ctx, table, record)
		return err
	})
	return inserted, err
}

func (g *retryGateway) Update(ctx context.Context, table string, fields Record, filters Filters) ([]Record, error) {
	var affected []Record
	err := g.retry(ctx, func() error {
		var err error
		affected, err = g.next.Update(ctx, table, fields, filters)
		return err
	})
	return affected, err
}

func (g *retryGateway) Delete(ctx context.Context, table string, filters Filters) ([]Record, error) {
	var affected []Record
	err := g.retry(ctx, func() error {
		var err error
		affected, err = g.next.Delete(ctx, table, filters)
		return err
	})
	return affected, err
}
