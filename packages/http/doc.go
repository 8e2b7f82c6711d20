// Package http captures HTTP exchanges for later extraction.
//
// It wraps the standard library's http package with additional features:
//   - Configurable timeouts
//   - Redirect handling
//   - Retries with constant backoff on transport errors and 5xx responses
//   - Responses with ordered, duplicate-preserving headers
package http
