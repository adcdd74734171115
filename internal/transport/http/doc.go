// Package http contains the HTTP transport layer: chi handlers for the
// dashboard statistics, authentication, exports and health endpoints. All
// error responses follow RFC 7807.
package http
