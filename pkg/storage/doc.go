// Package storage archives uploaded import files in S3-compatible object
// storage (AWS S3, MinIO, R2).
//
// Keys are laid out as "<prefix>/<business>/<import>.<ext>". Errors from
// the AWS SDK are mapped onto the package sentinels so callers can use
// errors.Is without depending on SDK types.
package storage
