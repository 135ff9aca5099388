package middleware

// AuthRateLimiter - For login, register and refresh, keyed by client IP
// Burst: 5 requests, Sustained: 1 request per 5 seconds
func AuthRateLimiter() *RateLimiterConfig {
	return &RateLimiterConfig{
		Scope:      "auth",
		Capacity:   5,
		RefillRate: 0.2,
	}
}

// BidRateLimiter - For bid submission
// Burst: 5 bids, Sustained: 1 bid per 10 seconds
func BidRateLimiter() *RateLimiterConfig {
	return &RateLimiterConfig{
		Scope:      "bids",
		Capacity:   5,
		RefillRate: 0.1,
	}
}

// TaskPostRateLimiter - For posting new tasks
// Burst: 3 tasks, Sustained: 1 task per 30 seconds
func TaskPostRateLimiter() *RateLimiterConfig {
	return &RateLimiterConfig{
		Scope:      "tasks",
		Capacity:   3,
		RefillRate: 1.0 / 30,
	}
}

// MessageRateLimiter - For chat messages
// Burst: 10 messages, Sustained: 1 message per second
func MessageRateLimiter() *RateLimiterConfig {
	return &RateLimiterConfig{
		Scope:      "messages",
		Capacity:   10,
		RefillRate: 1.0,
	}
}

// LocationRateLimiter - For live location updates
// Burst: 5 updates, Sustained: 1 update per 2 seconds
func LocationRateLimiter() *RateLimiterConfig {
	return &RateLimiterConfig{
		Scope:      "location",
		Capacity:   5,
		RefillRate: 0.5,
	}
}
