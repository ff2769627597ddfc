// Package repository persists imported appointments and custom domains in
// PostgreSQL through pgx.
package repository
