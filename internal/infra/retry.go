package infra

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// ConnectTimeout bounds how long startup keeps retrying a backend.
var ConnectTimeout = 15 * time.Second

// retryConnect runs op with exponential backoff until it succeeds,
// ConnectTimeout elapses or ctx ends.
func retryConnect(ctx context.Context, op func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxElapsedTime = ConnectTimeout
	return backoff.Retry(op, backoff.WithContext(b, ctx))
}
