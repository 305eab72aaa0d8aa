// Package models defines the canonical domain values exchanged with the ITD
// API. The wire layer normalizes every loose server shape into these types;
// nothing outside internal/client/api should need to know about alternate
// field spellings.
package models

// Post is a feed post or a comment (comments are posts with a parent).
// IsLiked/LikesCount and IsReposted/RepostsCount may be locally overridden by
// the optimistic mutation engine ahead of server confirmation.
type Post struct {
	ID              string       `json:"id"`
	Content         string       `json:"content"`
	LikesCount      int          `json:"likesCount"`
	CommentsCount   int          `json:"commentsCount"`
	RepostsCount    int          `json:"repostsCount"`
	ViewsCount      int          `json:"viewsCount"`
	AuthorID        string       `json:"authorId,omitempty"`
	WallRecipientID string       `json:"wallRecipientId,omitempty"`
	CreatedAt       string       `json:"createdAt"`
	Author          PostAuthor   `json:"author"`
	Attachments     []Attachment `json:"attachments,omitempty"`
	IsLiked         bool         `json:"isLiked"`
	IsReposted      bool         `json:"isReposted"`
	IsOwner         bool         `json:"isOwner"`
	IsViewed        bool         `json:"isViewed"`
	OriginalPost    *Post        `json:"originalPost,omitempty"`
}

// PostAuthor is the embedded author block on a post.
type PostAuthor struct {
	ID          string `json:"id,omitempty"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Avatar      string `json:"avatar"`
	Verified    bool   `json:"verified"`
	Pin         *Pin   `json:"pin,omitempty"`
}

// Attachment is a media item attached to a post.
type Attachment struct {
	ID           string `json:"id"`
	Type         string `json:"type"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
	Width        int    `json:"width,omitempty"`
	Height       int    `json:"height,omitempty"`
}

// Pin is a small badge a user can pin to their profile.
type Pin struct {
	Slug        string `json:"slug,omitempty"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}
