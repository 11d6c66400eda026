package retry

import (
	"math"
	"math/rand"
	"time"

	"github.com/vvka-141/pgdbtool/pkg/dbtool"
)

// Policy controls how many retries are made and how long to wait between them.
type Policy struct {
	// MaxRetries is the number of retries after the first attempt (0 = no retries).
	MaxRetries int

	// InitialDelay is the wait before the first retry.
	InitialDelay time.Duration

	// MaxDelay caps the wait between retries.
	MaxDelay time.Duration

	// Multiplier grows the delay after each retry.
	Multiplier float64

	// Jitter randomises each delay by +/- Jitter (0.0-1.0).
	Jitter float64

	// Classify decides whether an error is worth retrying. Defaults to IsTransient.
	Classify func(error) bool

	// OnRetry, if set, is called before each wait.
	OnRetry func(retry int, err error, delay time.Duration)

	random func() float64
}

// DefaultPolicy returns the policy used for connecting.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:   dbtool.DefaultRetryMaxAttempts,
		InitialDelay: dbtool.DefaultRetryInitialDelay,
		MaxDelay:     dbtool.DefaultRetryMaxDelay,
		Multiplier:   2.0,
		Jitter:       0.1,
	}
}

// Delay returns the wait before the given zero-based retry.
func (p Policy) Delay(retry int) time.Duration {
	multiplier := p.Multiplier
	if multiplier <= 0 {
		multiplier = 1
	}

	delay := float64(p.InitialDelay) * math.Pow(multiplier, float64(retry))
	if p.MaxDelay > 0 && delay > float64(p.MaxDelay) {
		delay = float64(p.MaxDelay)
	}

	if p.Jitter > 0 {
		random := p.random
		if random == nil {
			random = rand.Float64
		}
		delay *= 1 + p.Jitter*(random()*2-1)
	}

	return time.Duration(delay)
}

func (p Policy) classify(err error) bool {
	if p.Classify != nil {
		return p.Classify(err)
	}
	return IsTransient(err)
}
