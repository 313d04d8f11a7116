// Package sweep drives the pull side of recurring billing: it scans for
// subscriptions whose interval has elapsed and charges each one, fanning
// out across a bounded pool of goroutines the way
// internal/peermanagement's Overlay fans out its per-connection loops.
package sweep

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Ogstevyn/shade/internal/shade"
)

// Charger is the subset of *shade.Contract a sweep needs. Defined as an
// interface so tests can drive the sweep against a stub without a full
// Contract plus host.Host.
type Charger interface {
	DueSubscriptions(now time.Time) ([]*shade.Subscription, error)
	ChargeSubscription(id uint64) error
}

// Result records one subscription's charge outcome.
type Result struct {
	SubscriptionID uint64
	Err            error
}

// Run charges every subscription DueSubscriptions reports, using up to
// concurrency goroutines, and returns one Result per subscription
// attempted. Unlike errgroup's usual all-or-nothing fail-fast use, a
// failed charge must never cancel its siblings: one merchant's expired
// token allowance is not grounds to skip everyone else's bill.
func Run(ctx context.Context, c Charger, now time.Time, concurrency int) ([]Result, error) {
	if concurrency <= 0 {
		concurrency = 1
	}

	due, err := c.DueSubscriptions(now)
	if err != nil {
		return nil, fmt.Errorf("sweep: list due subscriptions: %w", err)
	}

	results := make([]Result, len(due))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, sub := range due {
		i, sub := i, sub
		g.Go(func() error {
			if ctx.Err() != nil {
				results[i] = Result{SubscriptionID: sub.ID, Err: ctx.Err()}
				return nil
			}
			err := c.ChargeSubscription(sub.ID)
			results[i] = Result{SubscriptionID: sub.ID, Err: err}
			return nil
		})
	}
	// g.Wait's error is always nil here: every worker reports its outcome
	// through results instead of returning an error, so the group itself
	// never cancels early.
	_ = g.Wait()
	return results, nil
}
