// Package ratelimit is per client IP rate limiting middleware backed by
// golang.org/x/time/rate token buckets.
//
// State lives in process memory. Idle clients are evicted after a TTL and
// the number of tracked clients is capped, so a flood of distinct source
// addresses cannot grow the map without bound.
package ratelimit
