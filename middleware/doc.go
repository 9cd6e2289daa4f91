// Package middleware provides composable decoration of the status-check
// capability consumed by the poll loop. Middleware wraps each check
// synchronously and can modify execution (recover from panics, log, add
// tracing, throttle, retry transport failures, etc.).
//
// The poll loop itself never retries: a failing capability ends the watch
// immediately. Retry is deliberately a decoration the caller adds around
// the capability, via Retry in this package.
package middleware
