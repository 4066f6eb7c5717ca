package queue

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/adonwheels/identity-api/internal/core/domain"
)

func startPool(t *testing.T, workers int) *HashPool {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	p := NewHashPool(workers, bcrypt.MinCost, zerolog.Nop())
	p.Start(ctx)
	t.Cleanup(func() {
		cancel()
		p.Wait()
	})
	return p
}

func TestHashPool_HashAndCompare(t *testing.T) {
	p := startPool(t, 2)
	ctx := context.Background()

	hash, err := p.Hash(ctx, "secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)

	assert.NoError(t, p.Compare(ctx, hash, "secret1"))
	assert.ErrorIs(t, p.Compare(ctx, hash, "wrong"), domain.ErrInvalidCredentials)
}

func TestHashPool_PasswordTooLong(t *testing.T) {
	p := startPool(t, 1)

	_, err := p.Hash(context.Background(), strings.Repeat("€", 30))
	assert.ErrorIs(t, err, domain.ErrPasswordTooLong)
}

func TestHashPool_SaltsEveryHash(t *testing.T) {
	p := startPool(t, 1)

	a, err := p.Hash(context.Background(), "same")
	require.NoError(t, err)
	b, err := p.Hash(context.Background(), "same")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestHashPool_CompareMalformedHash(t *testing.T) {
	p := startPool(t, 1)

	err := p.Compare(context.Background(), "not-a-bcrypt-hash", "secret")
	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrInvalidCredentials))
}

func TestHashPool_Concurrent(t *testing.T) {
	p := startPool(t, 3)

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h, err := p.Hash(context.Background(), "pw")
			if err != nil {
				errs <- err
				return
			}
			errs <- p.Compare(context.Background(), h, "pw")
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
}

func TestHashPool_CancelledContext(t *testing.T) {
	p := NewHashPool(1, bcrypt.MinCost, zerolog.Nop())
	// Not started: nothing drains the queue once the buffer is full, so
	// the caller must return on its own deadline.
	for i := 0; i < channelBuffer; i++ {
		p.jobs <- hashJob{op: opHash, result: make(chan hashResult, 1)}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := p.Hash(ctx, "pw")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestHashPool_Stopped(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := NewHashPool(1, bcrypt.MinCost, zerolog.Nop())
	p.Start(ctx)
	cancel()
	p.Wait()

	// The stopped channel closes asynchronously after cancellation.
	require.Eventually(t, func() bool {
		select {
		case <-p.stopped:
			return true
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)

	_, err := p.Hash(context.Background(), "pw")
	assert.ErrorIs(t, err, ErrPoolStopped)
}
