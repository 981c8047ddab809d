// Package middleware stores global and route-specific middleware.
//
// These intercept requests to handle cross-cutting concerns such as request
// ids, request-scoped logging, CORS, rate limiting, tracing and panic
// recovery, plus the global error handler every failure ends up in.
package middleware
