// Package fetcher runs a set of keyed fetch functions under a hard
// concurrency cap with per-key retry. It knows nothing about payload
// semantics: a fetch that returns an error is retried, a fetch that returns
// is a success, whatever the payload looks like.
package fetcher

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// ErrNoKeys is returned when Run is called with an empty key set. An empty
// input is the one condition the fetch layer refuses to absorb silently.
var ErrNoKeys = errors.New("no keys to fetch")

// Outcome is the terminal result for one key: either a value or the error
// from the final attempt. Attempts counts how many times the fetch ran.
type Outcome[K comparable, T any] struct {
	Key      K
	Value    T
	Err      error
	Attempts int
}

// OK reports whether the fetch ultimately succeeded.
func (o Outcome[K, T]) OK() bool {
	return o.Err == nil
}

// Config controls concurrency and retry behaviour for one Run call.
type Config struct {
	// MaxConcurrency caps simultaneously in-flight fetches. Defaults to 10.
	MaxConcurrency int

	// MaxRetries is the total number of attempts per key. Defaults to 3.
	MaxRetries int

	// RetryDelay is how long a key waits between its own attempts. The delay
	// occupies that key's worker slot only; other keys keep progressing.
	RetryDelay time.Duration

	// OnProgress, when set, is called after each key reaches a terminal
	// outcome with (completed, total). Observability only, no contract.
	OnProgress func(done, total int)
}

func (c Config) withDefaults() Config {
	if c.MaxConcurrency <= 0 {
		c.MaxConcurrency = 10
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	return c
}

// Run fetches all keys through fn, at most cfg.MaxConcurrency at a time, and
// returns one Outcome per distinct key. Keys complete in no particular order.
// A failed attempt is retried after cfg.RetryDelay up to cfg.MaxRetries total
// attempts; the last error becomes the key's Failure outcome. Run never
// returns an error for individual fetch failures, only for an empty key set
// or a cancelled context.
func Run[K comparable, T any](
	ctx context.Context,
	keys []K,
	fn func(ctx context.Context, key K) (T, error),
	cfg Config,
) (map[K]Outcome[K, T], error) {
	if len(keys) == 0 {
		return nil, ErrNoKeys
	}
	cfg = cfg.withDefaults()

	// Deduplicate while preserving submission order
	seen := make(map[K]struct{}, len(keys))
	distinct := make([]K, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		distinct = append(distinct, k)
	}

	total := len(distinct)
	keyCh := make(chan K, total)
	resultCh := make(chan Outcome[K, T], total)

	workers := cfg.MaxConcurrency
	if workers > total {
		workers = total
	}

	var done atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for key := range keyCh {
				outcome := fetchWithRetry(ctx, key, fn, cfg)
				resultCh <- outcome

				if cfg.OnProgress != nil {
					cfg.OnProgress(int(done.Add(1)), total)
				}
			}
		}()
	}

	for _, key := range distinct {
		keyCh <- key
	}
	close(keyCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	outcomes := make(map[K]Outcome[K, T], total)
	for outcome := range resultCh {
		outcomes[outcome.Key] = outcome
	}

	if err := ctx.Err(); err != nil {
		return outcomes, err
	}
	return outcomes, nil
}

// fetchWithRetry attempts one key up to cfg.MaxRetries times, sleeping
// cfg.RetryDelay between attempts.
func fetchWithRetry[K comparable, T any](
	ctx context.Context,
	key K,
	fn func(ctx context.Context, key K) (T, error),
	cfg Config,
) Outcome[K, T] {
	outcome := Outcome[K, T]{Key: key}

	for attempt := 1; attempt <= cfg.MaxRetries; attempt++ {
		outcome.Attempts = attempt

		value, err := fn(ctx, key)
		if err == nil {
			outcome.Value = value
			outcome.Err = nil
			return outcome
		}
		outcome.Err = err

		if attempt == cfg.MaxRetries {
			break
		}

		if cfg.RetryDelay > 0 {
			select {
			case <-ctx.Done():
				outcome.Err = ctx.Err()
				return outcome
			case <-time.After(cfg.RetryDelay):
			}
		} else if ctx.Err() != nil {
			outcome.Err = ctx.Err()
			return outcome
		}
	}

	return outcome
}
