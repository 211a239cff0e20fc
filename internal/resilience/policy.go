// Package resilience holds the retry/fallback policy shared by provider adapters.
package resilience

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"
)

// Kind classifies a failure for policy lookup.
type Kind int

const (
	KindUnknown Kind = iota
	KindTransient
	KindRateLimited
	KindModelMissing
	KindUnauthorized
	KindInvalid
)

func (k Kind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindRateLimited:
		return "rate-limited"
	case KindModelMissing:
		return "model-missing"
	case KindUnauthorized:
		return "unauthorized"
	case KindInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Action is what the policy does about a failure.
type Action int

const (
	ActionFail Action = iota
	ActionRetry
	ActionFallback
)

// Rule configures the handling of one failure kind. MaxAttempts bounds how
// many times the action may be taken for that kind within one Run.
type Rule struct {
	Action      Action
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// Policy maps failure kinds to rules. Kinds without a rule fail immediately.
type Policy map[Kind]Rule

// Classifier maps an adapter error to a Kind.
type Classifier func(error) Kind

// FallbackFunc repairs adapter state (e.g. switches model) before the next attempt.
type FallbackFunc func(ctx context.Context, kind Kind, cause error) error

// DefaultPolicy is the table both provider adapters run under.
func DefaultPolicy() Policy {
	return Policy{
		KindTransient:    {Action: ActionRetry, MaxAttempts: 2, BaseDelay: 500 * time.Millisecond, MaxDelay: 5 * time.Second},
		KindRateLimited:  {Action: ActionRetry, MaxAttempts: 4, BaseDelay: 2 * time.Second, MaxDelay: 30 * time.Second},
		KindModelMissing: {Action: ActionFallback, MaxAttempts: 1},
		KindUnauthorized: {Action: ActionFail},
		KindInvalid:      {Action: ActionFail},
		KindUnknown:      {Action: ActionFail},
	}
}

// WithoutDelays returns a copy of p with zero backoff; handy in tests.
func (p Policy) WithoutDelays() Policy {
	out := make(Policy, len(p))
	for k, r := range p {
		r.BaseDelay, r.MaxDelay = 0, 0
		out[k] = r
	}
	return out
}

// Run calls fn until it succeeds or the policy gives up, returning the last error.
func (p Policy) Run(ctx context.Context, classify Classifier, fn func(context.Context) error, fallback FallbackFunc) error {
	used := make(map[Kind]int)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}

		kind := KindUnknown
		if classify != nil {
			kind = classify(err)
		}
		rule, ok := p[kind]
		if !ok || rule.Action == ActionFail || used[kind] >= rule.MaxAttempts {
			return err
		}
		attempt := used[kind]
		used[kind]++

		switch rule.Action {
		case ActionRetry:
			if werr := sleep(ctx, backoffDelay(rule, attempt)); werr != nil {
				return err
			}
		case ActionFallback:
			if fallback == nil {
				return err
			}
			if ferr := fallback(ctx, kind, err); ferr != nil {
				return fmt.Errorf("%w (fallback failed: %v)", err, ferr)
			}
		}
	}
}

// backoffDelay calculates exponential backoff with jitter.
func backoffDelay(r Rule, attempt int) time.Duration {
	if r.BaseDelay <= 0 {
		return 0
	}
	delay := r.BaseDelay << min(attempt, 6)
	if r.MaxDelay > 0 && delay > r.MaxDelay {
		delay = r.MaxDelay
	}
	jitter := float64(delay) * 0.2 * (rand.Float64() - 0.5)
	return time.Duration(float64(delay) + jitter)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
