package entity

import "time"

// Comment targets a post that must be published at creation time. Once
// created it persists even if the post is later unpublished. ParentID links
// a single level of threaded replies.
type Comment struct {
	ID             int64     `json:"id"`
	Content        string    `json:"content"`
	PostID         int64     `json:"postId"`
	UserID         int64     `json:"userId"`
	AuthorUsername string    `json:"authorUsername,omitempty"` // filled by repository joins
	ParentID       *int64    `json:"parentId,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}
