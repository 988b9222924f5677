package sim

import "math"

// bucketKeyFunc selects the token-bucket key for an attempt: the account
// name for per-account limiting, the source IP for per-IP limiting.
type bucketKeyFunc func(username, ip string) string

func keyByAccount(username, ip string) string { return username }
func keyByIP(username, ip string) string      { return ip }

type bucket struct {
	tokens     float64
	lastRefill float64
}

// tokenBucketDefense gives each key a bucket of tokens. Every checked
// attempt consumes one; tokens refill continuously at refillRate per
// second up to maxTokens. An empty bucket blocks the attempt.
//
// Unlike the stateful defenses, buckets live in memory rather than the
// account store: they are pure rate state with no meaning beyond the
// trial.
type tokenBucketDefense struct {
	clock      *Clock
	refillRate float64
	maxTokens  float64
	keyOf      bucketKeyFunc
	buckets    map[string]*bucket
}

func newTokenBucketDefense(clock *Clock, refillRate, maxTokens float64, keyOf bucketKeyFunc) *tokenBucketDefense {
	return &tokenBucketDefense{
		clock:      clock,
		refillRate: refillRate,
		maxTokens:  maxTokens,
		keyOf:      keyOf,
		buckets:    make(map[string]*bucket),
	}
}

func (d *tokenBucketDefense) Check(username, ip string) (bool, string, error) {
	key := d.keyOf(username, ip)
	now := d.clock.Now()

	b, ok := d.buckets[key]
	if !ok {
		b = &bucket{tokens: d.maxTokens, lastRefill: now}
		d.buckets[key] = b
	}

	b.tokens = math.Min(d.maxTokens, b.tokens+(now-b.lastRefill)*d.refillRate)
	b.lastRefill = now

	if b.tokens >= 1 {
		b.tokens--
		return true, "", nil
	}
	return false, "rate_limited", nil
}

// Observe is a no-op: the token was already consumed at check time, and
// the bucket does not care whether the password was correct.
func (d *tokenBucketDefense) Observe(username, ip string, outcome Outcome) error {
	return nil
}

// hybridDefense chains a per-IP bucket in front of a per-account bucket.
// The IP check runs first; an attempt blocked there never reaches (or
// drains) the account bucket.
type hybridDefense struct {
	ip      *tokenBucketDefense
	account *tokenBucketDefense
}

func (d *hybridDefense) Check(username, ip string) (bool, string, error) {
	allowed, reason, err := d.ip.Check(username, ip)
	if err != nil || !allowed {
		return allowed, reason, err
	}
	return d.account.Check(username, ip)
}

func (d *hybridDefense) Observe(username, ip string, outcome Outcome) error {
	return nil
}
