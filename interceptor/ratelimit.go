package interceptor

import (
	"golang.org/x/time/rate"
)

// RateLimitInterceptor cancels calls beyond a token-bucket budget. The
// client sees the standard cancellation fault (code -1), like any other
// Before veto.
type RateLimitInterceptor struct {
	limiter *rate.Limiter
}

// NewRateLimitInterceptor allows r calls per second with the given
// burst.
func NewRateLimitInterceptor(r float64, burst int) *RateLimitInterceptor {
	return &RateLimitInterceptor{limiter: rate.NewLimiter(rate.Limit(r), burst)}
}

func (rl *RateLimitInterceptor) Before(inv *Invocation) bool {
	return rl.limiter.Allow()
}

func (rl *RateLimitInterceptor) After(inv *Invocation, result Result) Result {
	return result
}

func (rl *RateLimitInterceptor) OnException(inv *Invocation, err error) {}
