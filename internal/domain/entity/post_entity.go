package entity

import "time"

// Post is a content entity owned by its author. Ownership never transfers.
// Published gates public visibility and commentability.
type Post struct {
	ID             int64     `json:"id"`
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	Published      bool      `json:"published"`
	AuthorID       int64     `json:"authorId"`
	AuthorUsername string    `json:"authorUsername,omitempty"` // filled by repository joins
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
