// Package redis opens a go-redis client from a redis:// or rediss:// URL,
// retrying the initial ping, and exposes healthcheck and shutdown hooks.
package redis
