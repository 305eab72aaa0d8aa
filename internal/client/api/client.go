// Package api implements the typed client for the ITD HTTP/JSON API.
//
// The package owns three concerns: attaching auth material to every request
// (read fresh from a TokenSource, never cached), mapping HTTP statuses onto
// the error taxonomy in errors.go, and normalizing the server's loose
// response shapes into the canonical types of internal/client/models.
//
// The client never retries and never refreshes a token on 401; retry and
// refresh policy belongs to callers.
package api

import (
	"context"

	"github.com/itd-social/itd-client/internal/client/models"
)

// TokenSource supplies the auth material attached to outgoing requests.
// Implementations must return the current values on every call, since tokens
// rotate during a session. An empty string means "not available"; a request
// with neither token nor cookie is sent anonymously.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
	SessionCookie(ctx context.Context) (string, error)
}

// AuthResult is the normalized outcome of the auth endpoints. Exactly one of
// AccessToken or RequiresVerification is meaningfully set on success; neither
// indicates a malformed server response the caller must treat as failure.
type AuthResult struct {
	AccessToken          string
	RequiresVerification bool
	Email                string
	FlowToken            string
	// SessionCookie carries the "session" Set-Cookie value when the server
	// sent one alongside the auth response.
	SessionCookie string
}

// Profile is the normalized shape of the profile endpoint.
type Profile struct {
	Authenticated   bool
	User            *models.User
	Banned          bool
	ProfileRequired bool
}

// AuthAPI covers the session lifecycle endpoints.
type AuthAPI interface {
	SignIn(ctx context.Context, email, password, challengeToken string) (AuthResult, error)
	SignUp(ctx context.Context, email, password, challengeToken string) (AuthResult, error)
	VerifyOtp(ctx context.Context, email, password, code, flowToken string) (AuthResult, error)
	ResendOtp(ctx context.Context, email, flowToken string) error
	RefreshToken(ctx context.Context) (AuthResult, error)
	Logout(ctx context.Context) error
	Profile(ctx context.Context) (Profile, error)
}

// PostAPI covers posts, comments, and post mutations. List calls return the
// items plus the opaque cursor for the next page ("" when the server signaled
// the end).
type PostAPI interface {
	Posts(ctx context.Context, tab, cursor string, limit int) ([]models.Post, string, error)
	UserPosts(ctx context.Context, username, sort, cursor string, limit int) ([]models.Post, string, error)
	Comments(ctx context.Context, postID, cursor string, limit int) ([]models.Post, string, error)
	CreatePost(ctx context.Context, content string, attachmentIDs []string) (models.Post, error)
	CreateComment(ctx context.Context, postID, content string) (models.Post, error)
	DeletePost(ctx context.Context, postID string) error
	LikePost(ctx context.Context, postID string) error
	UnlikePost(ctx context.Context, postID string) error
	RepostPost(ctx context.Context, postID string) error
	MarkPostViewed(ctx context.Context, postID string) error
}

// UserAPI covers profiles, follow relations, and suggestions.
type UserAPI interface {
	UserByUsername(ctx context.Context, username string) (models.User, error)
	CurrentUser(ctx context.Context) (models.User, error)
	UpdateProfile(ctx context.Context, updates map[string]string) (models.User, error)
	FollowUser(ctx context.Context, username string) error
	UnfollowUser(ctx context.Context, username string) error
	Followers(ctx context.Context, username, cursor string, limit int) ([]models.UserSuggestion, string, error)
	Following(ctx context.Context, username, cursor string, limit int) ([]models.UserSuggestion, string, error)
	WhoToFollow(ctx context.Context) ([]models.UserSuggestion, error)
	TopClans(ctx context.Context) ([]models.Clan, error)
}

// NotificationAPI covers the notification list, unread count, and read marks.
type NotificationAPI interface {
	Notifications(ctx context.Context, typ, cursor string, limit int) ([]models.Notification, string, error)
	NotificationCount(ctx context.Context) (int, error)
	MarkAllNotificationsRead(ctx context.Context) error
	MarkNotificationsRead(ctx context.Context, ids []string) error
}

// SearchAPI covers search and hashtags.
type SearchAPI interface {
	Search(ctx context.Context, query string) (models.SearchResults, error)
	SearchUsers(ctx context.Context, query string) ([]models.UserSuggestion, error)
	TrendingHashtags(ctx context.Context) ([]models.Hashtag, error)
	SearchHashtags(ctx context.Context, query string) ([]models.Hashtag, error)
	HashtagPosts(ctx context.Context, tag, cursor string, limit int) ([]models.Post, string, error)
}
