package models

import (
	"time"

	"github.com/noah-isme/academic-tracker/pkg/pagination"
)

// Post is an announcement shown in the feed.
type Post struct {
	ID          string    `json:"_id" validate:"required"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	CreatedAt   time.Time `json:"createdAt"`
}

// PostKey identifies a post inside the feed collection.
func PostKey(p Post) string { return p.ID }

// FeedPage is one page of the remote post listing.
type FeedPage = pagination.Page[Post]

// CreatePostRequest is the payload for publishing a post. Image is a data URI.
type CreatePostRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	Image       string `json:"image" validate:"required,startswith=data:image/"`
}

// UpdatePostRequest edits the text of an existing post.
type UpdatePostRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
}
