package fetch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bloops-games/wordlebot/internal/logging"
	"github.com/bloops-games/wordlebot/internal/util"
	"github.com/valyala/fastrand"
)

var ErrThrottled = errors.New("throttled")

// ThrottledError is a throttling reply that names how long to wait.
type ThrottledError struct {
	RetryAfter time.Duration
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("throttled, retry after %s", e.RetryAfter)
}

func (e *ThrottledError) Is(target error) bool {
	return target == ErrThrottled
}

// Page is one slice of a listing. An empty Next means the listing is done.
type Page[T any] struct {
	Items []T
	Next  string
}

type PageFunc[T any] func(ctx context.Context, cursor string) (Page[T], error)

type Backoff struct {
	Initial time.Duration `envconfig:"INITIAL" default:"1s"`
	Max     time.Duration `envconfig:"MAX" default:"30s"`
	Retries int           `envconfig:"RETRIES" default:"5"`
}

func DefaultBackoff() Backoff {
	return Backoff{Initial: time.Second, Max: 30 * time.Second, Retries: 5}
}

// delay returns the wait before retry number attempt (0 based). A throttling
// reply with a retry-after wins over the computed delay.
func (b Backoff) delay(attempt int, err error) time.Duration {
	var te *ThrottledError
	if errors.As(err, &te) && te.RetryAfter > 0 {
		return te.RetryAfter
	}

	d := b.Initial
	for i := 0; i < attempt && d < b.Max; i++ {
		d *= 2
	}
	if d > b.Max {
		d = b.Max
	}
	if d <= 0 {
		return 0
	}

	// up to a quarter of jitter
	if q := uint32(d / 4); q > 0 {
		d = d - d/4 + time.Duration(fastrand.Uint32n(q))
	}
	return d
}

// Collect walks every page of fn and returns the accumulated items. A
// throttled page is retried with backoff; any other error, exhausted retries
// or a cancelled context stop the walk and the items collected so far are
// returned.
func Collect[T any](ctx context.Context, fn PageFunc[T], b Backoff) []T {
	logger := logging.FromContext(ctx).Named("fetch.Collect")

	var (
		items  []T
		cursor string
	)

	for {
		var page Page[T]
		err := Retry(ctx, func(ctx context.Context) error {
			var err error
			page, err = fn(ctx, cursor)
			return err
		}, b)
		if err != nil {
			logger.Warnf("stopping at cursor %q with %d items: %v", cursor, len(items), err)
			return items
		}

		items = append(items, page.Items...)
		if page.Next == "" {
			return items
		}
		if page.Next == cursor {
			logger.Warnf("cursor %q did not advance", cursor)
			return items
		}
		cursor = page.Next
	}
}

// Retry calls fn until it succeeds, fails with an error other than
// ErrThrottled, or b.Retries retries are spent.
func Retry(ctx context.Context, fn func(ctx context.Context) error, b Backoff) error {
	logger := logging.FromContext(ctx).Named("fetch.Retry")

	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrThrottled) {
			return err
		}
		if attempt >= b.Retries {
			return fmt.Errorf("retries exhausted: %w", err)
		}

		d := b.delay(attempt, err)
		logger.Debugf("throttled, attempt %d, waiting %s", attempt+1, d)
		if err := util.Sleep(ctx, d); err != nil {
			return err
		}
	}
}
