// Package observability builds the service's zap loggers and attaches
// request-scoped fields to them.
package observability
