// Package model holds the domain types shared by the repository, service
// and handler layers.
package model

// Item is the single resource managed by the service.
//
// ID is assigned by the store on creation and never changes. Title is
// stored trimmed and is never empty.
type Item struct {
	ID          int64  `json:"id" db:"id"`
	Title       string `json:"title" db:"title"`
	Description string `json:"description" db:"description"`
}
