package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/campusportal/student-records/internal/core/domain"
	"github.com/campusportal/student-records/internal/core/ports"
	"github.com/campusportal/student-records/internal/metrics"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

// Dispatcher runs account reconciliations on a fixed set of workers, sharded by email
// so that students sharing an email are reconciled one after another.
type Dispatcher struct {
	workers    int
	reconciler ports.AccountReconciler
	log        zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers shards.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, reconciler ports.AccountReconciler, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	return &Dispatcher{workers: numWorkers, reconciler: reconciler, log: log}
}

// Run reconciles every student and blocks until all are done or ctx is cancelled.
// Students not yet dispatched when ctx ends are not counted in the report.
func (d *Dispatcher) Run(ctx context.Context, students []*domain.Student) (*ports.ReconcileReport, error) {
	shards := make([]chan *domain.Student, d.workers)
	results := make(chan ports.ReconcileOutcome, channelBuffer)

	var wg sync.WaitGroup
	for i := range shards {
		shards[i] = make(chan *domain.Student, channelBuffer)
		wg.Add(1)
		go func(id int, ch <-chan *domain.Student) {
			defer wg.Done()
			d.runWorker(ctx, id, ch, results)
		}(i, shards[i])
	}

	go func() {
		defer func() {
			for _, ch := range shards {
				close(ch)
			}
		}()
		for _, s := range students {
			idx := d.shardIndex(s.Email)
			select {
			case <-ctx.Done():
				return
			case shards[idx] <- s:
				metrics.ReconcileQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(shards[idx])))
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	report := &ports.ReconcileReport{}
	for outcome := range results {
		report.Add(outcome)
	}

	d.log.Info().
		Int("total", report.Total).
		Int("created", report.Created).
		Int("role_added", report.RoleAdded).
		Int("failed", report.Failed).
		Msg("account reconciliation finished")

	return report, ctx.Err()
}

// shardIndex maps an email deterministically to a worker index.
func (d *Dispatcher) shardIndex(email string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(strings.TrimSpace(email))))
	return int(h.Sum32() % uint32(d.workers))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan *domain.Student, out chan<- ports.ReconcileOutcome) {
	label := strconv.Itoa(id)
	defer metrics.ReconcileQueueDepth.WithLabelValues(label).Set(0)

	for s := range ch {
		metrics.ReconcileQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
		if ctx.Err() != nil {
			continue
		}

		outcome, err := d.reconciler.Reconcile(ctx, s)
		if err != nil {
			d.log.Error().Err(err).
				Str("student_id", s.ID).
				Int("worker_id", id).
				Msg("account reconciliation failed")
		}
		out <- outcome
	}
}
