package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redisclient "github.com/redis/go-redis/v9"

	"github.com/shopa-beauty/storefront-api/pkg/models"
)

const pendingMarker = "pending"

// ErrCheckoutInProgress is returned by Begin while another request holding
// the same key has not finished.
var ErrCheckoutInProgress = errors.New("checkout with this idempotency key is in progress")

// CheckoutKeys remembers checkout responses by Idempotency-Key so a retried
// request replays the first answer instead of placing a second order.
type CheckoutKeys struct {
	client *redisclient.Client
	ttl    time.Duration
}

func NewCheckoutKeys(client *redisclient.Client, ttl time.Duration) *CheckoutKeys {
	return &CheckoutKeys{client: client, ttl: ttl}
}

func checkoutKey(userID uint, key string) string {
	return fmt.Sprintf("idempotency:checkout:%d:%s", userID, key)
}

// Begin claims the key. When the key already completed, the stored response
// is returned and the caller must not run the checkout again.
func (k *CheckoutKeys) Begin(ctx context.Context, userID uint, key string) (*models.CheckoutResponse, error) {
	redisKey := checkoutKey(userID, key)

	claimed, err := k.client.SetNX(ctx, redisKey, pendingMarker, k.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("claim idempotency key: %w", err)
	}
	if claimed {
		return nil, nil
	}

	stored, err := k.client.Get(ctx, redisKey).Result()
	if errors.Is(err, redisclient.Nil) {
		// Expired or released between the two calls; try once more.
		return k.Begin(ctx, userID, key)
	}
	if err != nil {
		return nil, fmt.Errorf("read idempotency key: %w", err)
	}
	if stored == pendingMarker {
		return nil, ErrCheckoutInProgress
	}

	var resp models.CheckoutResponse
	if err := json.Unmarshal([]byte(stored), &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stored checkout: %w", err)
	}
	return &resp, nil
}

// Complete stores the response for replay, keeping the original TTL window.
func (k *CheckoutKeys) Complete(ctx context.Context, userID uint, key string, resp *models.CheckoutResponse) error {
	respJSON, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to marshal checkout response: %w", err)
	}
	return k.client.Set(ctx, checkoutKey(userID, key), respJSON, k.ttl).Err()
}

// Release drops a claim after a failed checkout so the client can retry.
func (k *CheckoutKeys) Release(ctx context.Context, userID uint, key string) error {
	return k.client.Del(ctx, checkoutKey(userID, key)).Err()
}
