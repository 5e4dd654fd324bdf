// Package reconcile keeps cached friend balances consistent with the
// expense history.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mmynk/splitty/internal/calculator"
	"github.com/mmynk/splitty/internal/events"
	"github.com/mmynk/splitty/internal/metrics"
	"github.com/mmynk/splitty/internal/storage"
)

// Reconciler recomputes balances from history and rewrites drifted caches.
type Reconciler struct {
	store     storage.Store
	publisher events.Publisher
	metrics   *metrics.Metrics
	timeout   time.Duration
}

// New creates a Reconciler. publisher and m may be nil.
func New(store storage.Store, publisher events.Publisher, m *metrics.Metrics) *Reconciler {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Reconciler{store: store, publisher: publisher, metrics: m, timeout: 5 * time.Minute}
}

// Owner reconciles one owner and returns the corrected drifts. A balance
// that changes while the history is being read is left for the next run.
func (r *Reconciler) Owner(ctx context.Context, ownerID string) ([]calculator.BalanceDrift, error) {
	friends, err := r.store.ListFriends(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load friends: %w", err)
	}
	expenses, err := r.store.ListExpenses(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load expenses: %w", err)
	}

	drifts := calculator.Reconcile(friends, expenses)
	if len(drifts) == 0 {
		return nil, nil
	}

	corrections := make([]storage.BalanceCorrection, 0, len(drifts))
	for _, d := range drifts {
		corrections = append(corrections, storage.BalanceCorrection{
			FriendID: d.FriendID,
			Expected: d.Cached,
			Balance:  d.Computed,
		})
	}
	fixed, err := r.store.CorrectFriendBalances(ctx, ownerID, corrections)
	if err != nil {
		return nil, fmt.Errorf("failed to store balances: %w", err)
	}

	corrected := drifts[:0]
	for _, d := range drifts {
		if _, ok := fixed[d.FriendID]; !ok {
			slog.DebugContext(ctx, "Balance changed during reconciliation", "owner_id", ownerID, "friend_id", d.FriendID)
			continue
		}
		slog.WarnContext(ctx, "Balance drift corrected",
			"owner_id", ownerID,
			"friend_id", d.FriendID,
			"cached", d.Cached.String(),
			"computed", d.Computed.String())
		corrected = append(corrected, d)
	}
	if len(corrected) == 0 {
		return nil, nil
	}

	msg := events.NewMessage(events.BalancesReconciled, ownerID, "", fixed)
	if err := r.publisher.Publish(ctx, msg); err != nil {
		r.metrics.PublishFailed()
		slog.ErrorContext(ctx, "Failed to publish reconciliation", "owner_id", ownerID, "error", err)
	}

	return corrected, nil
}

// All reconciles every owner. A failure for one owner does not stop the
// others; the first error is returned.
func (r *Reconciler) All(ctx context.Context) (int, error) {
	owners, err := r.store.ListOwners(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list owners: %w", err)
	}

	var (
		total    int
		firstErr error
	)
	for _, owner := range owners {
		if ctx.Err() != nil {
			return total, ctx.Err()
		}
		drifts, err := r.Owner(ctx, owner)
		if err != nil {
			slog.ErrorContext(ctx, "Reconciliation failed", "owner_id", owner, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		total += len(drifts)
	}

	return total, firstErr
}

// Run performs one full pass and records it. It is the cron job body.
func (r *Reconciler) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	start := time.Now()
	n, err := r.All(ctx)
	r.metrics.ReconcileFinished(err, n)

	slog.Info("Balance reconciliation finished",
		"corrected", n,
		"duration_ms", time.Since(start).Milliseconds(),
		"error", err)
}

// Schedule registers Run on a new cron scheduler using a standard cron
// spec or descriptor such as "@every 1h". The caller starts and stops it.
func Schedule(r *Reconciler, spec string) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddJob(spec, r); err != nil {
		return nil, fmt.Errorf("invalid reconcile schedule %q: %w", spec, err)
	}
	return c, nil
}
