// Package cache stores short-lived typed values, such as pending import
// sessions, in Redis or in process memory.
//
// Both backends implement [Cache]. Values are JSON encoded for Redis; the
// in-memory backend keeps them as-is and expires them lazily on access.
package cache
