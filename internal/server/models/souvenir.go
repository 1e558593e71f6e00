package models

import "time"

// Souvenir is a catalog item owning zero or more images. Title is unique.
// Ownership is a query-time join: Images is populated explicitly by the
// service, never lazy-loaded.
type Souvenir struct {
	ID          int64
	Category    string
	SubCategory string
	Title       string
	Description string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Images []*Image
}
