package api

import "github.com/itd-social/itd-client/internal/client/models"

// Wire DTOs. Responses that the server delivers in more than one shape get a
// normalization method here so one canonical form leaves this package.

type signInRequest struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	TurnstileToken string `json:"turnstileToken,omitempty"`
}

type verifyOtpRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Otp       string `json:"otp"`
	FlowToken string `json:"flowToken"`
}

type resendOtpRequest struct {
	Email     string `json:"email"`
	FlowToken string `json:"flowToken"`
}

type authResponse struct {
	AccessToken          string `json:"accessToken"`
	RequiresVerification bool   `json:"requiresVerification"`
	Email                string `json:"email"`
	FlowToken            string `json:"flowToken"`
}

type profileResponse struct {
	Authenticated   bool         `json:"authenticated"`
	User            *models.User `json:"user"`
	Banned          bool         `json:"banned"`
	ProfileRequired bool         `json:"profileRequired"`
}

type createPostRequest struct {
	Content     string   `json:"content"`
	Attachments []string `json:"attachments"`
}

// postsResponse: post lists arrive nested under data; the next cursor has
// been seen both inside data and at the top level.
type postsResponse struct {
	Data struct {
		Posts      []models.Post `json:"posts"`
		NextCursor string        `json:"nextCursor"`
	} `json:"data"`
	NextCursor string `json:"nextCursor"`
}

func (r *postsResponse) normalize() ([]models.Post, string) {
	cursor := r.Data.NextCursor
	if cursor == "" {
		cursor = r.NextCursor
	}
	return r.Data.Posts, cursor
}

// notificationsResponse: the list arrives under either "notifications" or
// "data" depending on the endpoint version.
type notificationsResponse struct {
	Notifications []models.Notification `json:"notifications"`
	Data          []models.Notification `json:"data"`
	NextCursor    string                `json:"nextCursor"`
}

func (r *notificationsResponse) normalize() ([]models.Notification, string) {
	items := r.Notifications
	if len(items) == 0 && r.Data != nil {
		items = r.Data
	}
	return items, r.NextCursor
}

type notificationCountResponse struct {
	Count int `json:"count"`
}

type suggestionsResponse struct {
	Users      []models.UserSuggestion `json:"users"`
	NextCursor string                  `json:"nextCursor"`
}

type topClansResponse struct {
	Clans []models.Clan `json:"clans"`
}

// hashtagItem: the tag itself may arrive under "tag", "hashtag", or "name",
// and the count under "postsCount" or "count".
type hashtagItem struct {
	Tag        string `json:"tag"`
	Hashtag    string `json:"hashtag"`
	Name       string `json:"name"`
	PostsCount int    `json:"postsCount"`
	Count      int    `json:"count"`
}

func (h hashtagItem) normalize() models.Hashtag {
	tag := h.Tag
	if tag == "" {
		tag = h.Hashtag
	}
	if tag == "" {
		tag = h.Name
	}
	count := h.PostsCount
	if count == 0 {
		count = h.Count
	}
	return models.Hashtag{Tag: tag, PostsCount: count}
}

type hashtagsResponse struct {
	Hashtags []hashtagItem `json:"hashtags"`
	Data     []hashtagItem `json:"data"`
}

func (r *hashtagsResponse) normalize() []models.Hashtag {
	items := r.Hashtags
	if len(items) == 0 && r.Data != nil {
		items = r.Data
	}
	out := make([]models.Hashtag, 0, len(items))
	for _, it := range items {
		out = append(out, it.normalize())
	}
	return out
}

type searchResponse struct {
	Users    []models.UserSuggestion `json:"users"`
	Hashtags []hashtagItem           `json:"hashtags"`
}

func (r *searchResponse) normalize() models.SearchResults {
	tags := make([]models.Hashtag, 0, len(r.Hashtags))
	for _, it := range r.Hashtags {
		tags = append(tags, it.normalize())
	}
	return models.SearchResults{Users: r.Users, Hashtags: tags}
}
