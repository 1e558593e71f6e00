// Package blob abstracts the byte-payload side of an image: metadata lives in
// PostgreSQL, the payload lives behind a Store. Implementations exist for the
// local filesystem and S3-compatible object storage.
package blob

import "context"

// Store writes, reads and deletes named byte objects.
//
// Write returns the location under which the object was stored; that location
// is what image rows persist and what Read/Delete accept. Delete of an absent
// object is not an error: the desired end state (object gone) already holds.
type Store interface {
	Write(ctx context.Context, name string, data []byte) (string, error)
	Read(ctx context.Context, location string) ([]byte, error)
	Delete(ctx context.Context, location string) error
}
