package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultReservationTTL = 30 * time.Second

// EmailReservation holds a short-lived claim on an email address while a
// registration is in flight, across all account kinds.
// Key format: reg:email:<email>
type EmailReservation struct {
	client *redis.Client
	ttl    time.Duration
}

// NewEmailReservation creates an EmailReservation wrapping the given Redis
// client. If ttl <= 0, defaultReservationTTL is used.
func NewEmailReservation(client *redis.Client, ttl time.Duration) *EmailReservation {
	if ttl <= 0 {
		ttl = defaultReservationTTL
	}
	return &EmailReservation{client: client, ttl: ttl}
}

// Reserve claims email. It reports false when another registration already
// holds the claim.
func (r *EmailReservation) Reserve(ctx context.Context, email string) (bool, error) {
	ok, err := r.client.SetNX(ctx, r.key(email), "1", r.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("reserve email: %w", err)
	}
	return ok, nil
}

// Release drops the claim on email.
func (r *EmailReservation) Release(ctx context.Context, email string) error {
	if err := r.client.Del(ctx, r.key(email)).Err(); err != nil {
		return fmt.Errorf("release email: %w", err)
	}
	return nil
}

func (r *EmailReservation) key(email string) string {
	return "reg:email:" + email
}
