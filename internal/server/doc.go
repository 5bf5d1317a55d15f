// Package server exposes the bot over HTTP.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Webhook
//
// [WebhookHandler] accepts a JSON encoded bot event on POST /updates and answers with the replies the platform
// adapter should send. When a secret is configured, requests must carry it in the X-Webhook-Secret header.
//
// # Health
//
// [HealthHandler] serves GET /health and reports 503 when the database cannot be reached.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
