// Package storage persists the serialized preset document.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/Paintersrp/an-presets/internal/config"
)

// ErrNotExist is returned by Load when nothing has been saved yet.
var ErrNotExist = errors.New("preset document does not exist")

// Gateway loads and saves one serialized document.
type Gateway interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// Open builds the gateway selected by cfg.Backend, wrapped with save retries.
func Open(ctx context.Context, cfg config.Storage) (Gateway, error) {
	var (
		gw  Gateway
		err error
	)

	switch cfg.Backend {
	case "", config.BackendFile:
		gw = NewFileGateway(cfg.Path)
	case config.BackendDiskv:
		gw = NewDiskvGateway(cfg.Path, cfg.Workspace)
	case config.BackendS3:
		gw, err = NewS3GatewayFromConfig(ctx, cfg.Region, cfg.Bucket, cfg.Key)
	case config.BackendPostgres:
		gw, err = NewPostgresGatewayFromDSN(ctx, cfg.DSN, cfg.Workspace)
	default:
		return nil, config.ValidateBackend(cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", cfg.Backend, err)
	}

	return WithRetry(gw, cfg.RetryCount(), 100*time.Millisecond), nil
}

// Close releases gw if it holds resources.
func Close(gw Gateway) error {
	if c, ok := gw.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Describe returns a short, human readable location for gw.
func Describe(gw Gateway) string {
	if s, ok := gw.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", gw)
}

type retryGateway struct {
	Gateway
	retries int
	backoff time.Duration
}

// WithRetry retries failed saves up to retries more times, doubling the
// pause between attempts. Loads are not retried.
func WithRetry(gw Gateway, retries int, backoff time.Duration) Gateway {
	if retries <= 0 {
		return gw
	}
	return &retryGateway{Gateway: gw, retries: retries, backoff: backoff}
}

func (r *retryGateway) Save(ctx context.Context, data []byte) error {
	var err error
	wait := r.backoff
	for attempt := 0; attempt <= r.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return errors.Join(err, ctx.Err())
			case <-time.After(wait):
			}
			wait *= 2
		}
		if err = r.Gateway.Save(ctx, data); err == nil {
			return nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
	}
	return fmt.Errorf("save failed after %d attempts: %w", r.retries+1, err)
}

func (r *retryGateway) Close() error {
	return Close(r.Gateway)
}

func (r *retryGateway) String() string {
	return Describe(r.Gateway)
}

// Unwrap returns the gateway being retried.
func (r *retryGateway) Unwrap() Gateway {
	return r.Gateway
}

// Unwrap strips retry wrappers from gw.
func Unwrap(gw Gateway) Gateway {
	for {
		u, ok := gw.(interface{ Unwrap() Gateway })
		if !ok {
			return gw
		}
		gw = u.Unwrap()
	}
}
