// Package server provides the HTTP token service that keeps catalog client credentials off the client.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Token Handler
//
// [TokenHandler] answers GET /api/token. It asks a [services.TokenProvider] (normally the client
// credentials exchange) for a token and returns {"accessToken": "..."}. Failures return
// {"error": "..."} with the upstream status mirrored, or 500 when the exchange never got a response.
//
// # Middleware
//
//   - [Recover] : converts panics to 500
//   - [Logging] : one charmbracelet/log line per request
//   - [RateLimit] : golang.org/x/time/rate token bucket, 429 when exhausted
//
// [Server] wraps [http.Server] and shuts down gracefully when its context is cancelled.
package server
