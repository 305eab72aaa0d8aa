package models

// User is a full profile as returned by the profile and user endpoints.
// IsFollowing/FollowersCount may be locally overridden by the optimistic
// mutation engine ahead of server confirmation.
type User struct {
	ID              string   `json:"id"`
	Username        string   `json:"username"`
	DisplayName     string   `json:"displayName"`
	Avatar          string   `json:"avatar"`
	Bio             string   `json:"bio,omitempty"`
	Banner          string   `json:"banner,omitempty"`
	Verified        bool     `json:"verified"`
	Pin             *Pin     `json:"pin,omitempty"`
	PinnedPostID    string   `json:"pinnedPostId,omitempty"`
	WallAccess      string   `json:"wallAccess,omitempty"`
	LikesVisibility string   `json:"likesVisibility,omitempty"`
	FollowersCount  int      `json:"followersCount"`
	FollowingCount  int      `json:"followingCount"`
	PostsCount      int      `json:"postsCount"`
	IsFollowing     bool     `json:"isFollowing"`
	IsFollowedBy    bool     `json:"isFollowedBy"`
	CreatedAt       string   `json:"createdAt,omitempty"`
	Roles           []string `json:"roles,omitempty"`
}

// UserSuggestion is the compact user shape used by follower lists, search
// results, and who-to-follow suggestions.
type UserSuggestion struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	DisplayName    string `json:"displayName"`
	Avatar         string `json:"avatar"`
	Verified       bool   `json:"verified"`
	FollowersCount int    `json:"followersCount"`
}

// Clan is an aggregate shown on the feed sidebar.
type Clan struct {
	Avatar      string `json:"avatar"`
	MemberCount int    `json:"memberCount"`
}
