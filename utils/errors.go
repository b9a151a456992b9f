package utils

import (
	"context"
	"errors"
	"time"

	"github.com/UltimateTournament/backoff/v4"
)

type PermError string

func (e PermError) Error() string {
	return string(e)
}

func (e PermError) IsPermanent() bool {
	return true
}

// IsPermanent reports whether err (or anything it wraps) should not be retried.
func IsPermanent(err error) bool {
	var p interface{ IsPermanent() bool }
	return errors.As(err, &p) && p.IsPermanent()
}

// Retry runs f with exponential backoff until it succeeds, returns a permanent
// error, or maxElapsed passes.
func Retry(ctx context.Context, maxElapsed time.Duration, f func(ctx context.Context) error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.MaxElapsedTime = maxElapsed
	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		err := f(ctx)
		if err == nil {
			return nil
		}
		if IsPermanent(err) {
			return backoff.Permanent(err)
		}
		logger.Debug().Err(err).Int("attempt", attempt).Msg("retrying")
		return err
	}, backoff.WithContext(b, ctx))
}
