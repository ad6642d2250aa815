package util

import (
	"context"
	"time"
)

// Sleep waits for t or until ctx is done, whichever comes first.
func Sleep(ctx context.Context, t time.Duration) error {
	timer := time.NewTimer(t)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func Noun(number int, one, many string) string {
	if number == 1 || number == -1 {
		return one
	}
	return many
}
