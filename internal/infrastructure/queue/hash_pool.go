package queue

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/adonwheels/identity-api/internal/core/domain"
	"github.com/adonwheels/identity-api/internal/pkg/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 64
)

// ErrPoolStopped is returned for jobs submitted after the pool shut down.
var ErrPoolStopped = errors.New("hash pool stopped")

type hashOp string

const (
	opHash    hashOp = "hash"
	opCompare hashOp = "compare"
)

type hashJob struct {
	op       hashOp
	password string
	hash     string
	result   chan hashResult
}

type hashResult struct {
	hash string
	err  error
}

// HashPool runs bcrypt work on a fixed set of workers so that password
// hashing never runs on more goroutines than numWorkers at once.
type HashPool struct {
	jobs    chan hashJob
	workers int
	cost    int
	log     zerolog.Logger

	stopped chan struct{}
	wg      sync.WaitGroup
}

// NewHashPool creates a pool with numWorkers workers hashing at the given
// bcrypt cost. If numWorkers <= 0, defaultWorkers is used.
func NewHashPool(numWorkers, cost int, log zerolog.Logger) *HashPool {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	return &HashPool{
		jobs:    make(chan hashJob, channelBuffer),
		workers: numWorkers,
		cost:    cost,
		log:     log,
		stopped: make(chan struct{}),
	}
}

// Start launches the workers. They stop when ctx is cancelled; Wait blocks
// until they have returned.
func (p *HashPool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.runWorker(ctx, i)
	}
	go func() {
		<-ctx.Done()
		close(p.stopped)
	}()
}

// Wait blocks until every worker has exited.
func (p *HashPool) Wait() {
	p.wg.Wait()
}

// Hash returns the bcrypt hash of password.
func (p *HashPool) Hash(ctx context.Context, password string) (string, error) {
	res, err := p.submit(ctx, hashJob{op: opHash, password: password})
	if err != nil {
		return "", err
	}
	return res.hash, res.err
}

// Compare checks password against hash and returns
// domain.ErrInvalidCredentials on mismatch.
func (p *HashPool) Compare(ctx context.Context, hash, password string) error {
	res, err := p.submit(ctx, hashJob{op: opCompare, password: password, hash: hash})
	if err != nil {
		return err
	}
	return res.err
}

func (p *HashPool) submit(ctx context.Context, job hashJob) (hashResult, error) {
	job.result = make(chan hashResult, 1)

	select {
	case <-p.stopped:
		return hashResult{}, ErrPoolStopped
	default:
	}

	select {
	case <-p.stopped:
		return hashResult{}, ErrPoolStopped
	case <-ctx.Done():
		return hashResult{}, ctx.Err()
	case p.jobs <- job:
		metrics.HashQueueDepth.Set(float64(len(p.jobs)))
	}

	select {
	case res := <-job.result:
		return res, nil
	case <-p.stopped:
		return hashResult{}, ErrPoolStopped
	case <-ctx.Done():
		return hashResult{}, ctx.Err()
	}
}

func (p *HashPool) runWorker(ctx context.Context, id int) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-p.jobs:
			metrics.HashQueueDepth.Set(float64(len(p.jobs)))
			job.result <- p.process(job, id)
		}
	}
}

func (p *HashPool) process(job hashJob, id int) hashResult {
	start := time.Now()
	defer func() {
		metrics.HashDuration.WithLabelValues(string(job.op)).Observe(time.Since(start).Seconds())
	}()

	switch job.op {
	case opHash:
		h, err := bcrypt.GenerateFromPassword([]byte(job.password), p.cost)
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return hashResult{err: domain.ErrPasswordTooLong}
		}
		if err != nil {
			p.log.Error().Err(err).Int("worker_id", id).Msg("password hashing failed")
			return hashResult{err: err}
		}
		return hashResult{hash: string(h)}
	case opCompare:
		err := bcrypt.CompareHashAndPassword([]byte(job.hash), []byte(job.password))
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return hashResult{err: domain.ErrInvalidCredentials}
		}
		return hashResult{err: err}
	}
	return hashResult{err: errors.New("unknown hash operation")}
}
