package models

import "time"

// Image is the metadata row of a stored picture. Filename is the unique name
// the blob was stored under; Filepath is the blob location the store returned.
// The row and the blob must either both exist or both be absent.
type Image struct {
	ID         int64
	Filename   string
	Filepath   string
	SouvenirID int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
