package models

// Notification is a single entry in the notifications list.
type Notification struct {
	ID          string            `json:"id"`
	Type        string            `json:"type"`
	Message     string            `json:"message,omitempty"`
	PostID      string            `json:"postId,omitempty"`
	PostContent string            `json:"postContent,omitempty"`
	FromUser    *NotificationUser `json:"fromUser,omitempty"`
	CreatedAt   string            `json:"createdAt"`
	IsRead      bool              `json:"isRead"`
}

// NotificationUser is the compact actor shape embedded in a notification.
type NotificationUser struct {
	ID          string `json:"id,omitempty"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Avatar      string `json:"avatar"`
	Verified    bool   `json:"verified"`
}

// Hashtag is the canonical hashtag shape. The server names the tag itself
// under one of several keys; the API layer folds them into Tag.
type Hashtag struct {
	Tag        string `json:"tag"`
	PostsCount int    `json:"postsCount"`
}

// SearchResults is the combined result of the search endpoint.
type SearchResults struct {
	Users    []UserSuggestion `json:"users"`
	Hashtags []Hashtag        `json:"hashtags"`
}
