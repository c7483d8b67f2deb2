package session

import (
	"context"
	"log"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"
	"go.etcd.io/etcd/client/v3/concurrency"
)

const electionPrefix = "/climate-risk/session-reaper"

// Reaper runs the periodic expiry sweep. When an etcd client is supplied
// and the gateway runs as multiple replicas, a leader election ensures
// only one replica sweeps; every replica still reaps lazily on access.
type Reaper struct {
	store    *Store
	etcd     *clientv3.Client // optional
	interval time.Duration
}

// NewReaper creates a reaper sweeping at the given interval.
func NewReaper(store *Store, etcd *clientv3.Client, interval time.Duration) *Reaper {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Reaper{store: store, etcd: etcd, interval: interval}
}

// Run blocks until the context is cancelled. Callers start it on its own
// goroutine.
func (r *Reaper) Run(ctx context.Context) {
	if r.etcd == nil {
		r.sweepLoop(ctx)
		return
	}
	for ctx.Err() == nil {
		if err := r.runElected(ctx); err != nil && ctx.Err() == nil {
			log.Printf("session reaper: election lost: %v", err)
			select {
			case <-time.After(r.interval):
			case <-ctx.Done():
			}
		}
	}
}

// runElected campaigns for leadership and sweeps while holding it.
func (r *Reaper) runElected(ctx context.Context) error {
	sess, err := concurrency.NewSession(r.etcd, concurrency.WithContext(ctx))
	if err != nil {
		return err
	}
	defer sess.Close()

	election := concurrency.NewElection(sess, electionPrefix)
	if err := election.Campaign(ctx, "reaper"); err != nil {
		return err
	}
	defer func() {
		resignCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = election.Resign(resignCtx)
	}()

	log.Printf("session reaper: elected leader")
	r.sweepLoop(ctx)
	return ctx.Err()
}

func (r *Reaper) sweepLoop(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.store.Sweep(ctx); n > 0 {
				log.Printf("session reaper: removed %d expired sessions", n)
			}
		}
	}
}
