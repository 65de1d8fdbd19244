package utils

import "time"

// Backoff returns the delay before reconnect attempt k (zero based):
// min(base * 2^k, limit). It never overflows for large k.
func Backoff(base, limit time.Duration, attempt int) time.Duration {
	if base <= 0 {
		return 0
	}
	if attempt < 0 {
		attempt = 0
	}

	delay := base
	for i := 0; i < attempt; i++ {
		if limit > 0 && delay >= limit {
			return limit
		}
		if delay > time.Duration(1<<62)/2 {
			break
		}
		delay *= 2
	}

	if limit > 0 && delay > limit {
		return limit
	}
	return delay
}
