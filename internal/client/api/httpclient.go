package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/itd-social/itd-client/internal/client/models"
	"github.com/itd-social/itd-client/internal/logging"
)

const defaultTimeout = 15 * time.Second

// maxBodySize bounds how much of a response body the client will read.
const maxBodySize = 4 << 20

// Config collects the dependencies of an HTTPClient. BaseURL is required;
// everything else has a working default (anonymous requests, discarded logs,
// no metrics).
type Config struct {
	BaseURL    string
	Tokens     TokenSource
	Logger     logging.Logger
	Metrics    *Metrics
	Timeout    time.Duration
	HTTPClient *http.Client
}

// HTTPClient is the concrete API client. It satisfies AuthAPI, PostAPI,
// UserAPI, NotificationAPI, and SearchAPI.
//
// The client is stateless: auth material is read from the TokenSource on
// every request, so token rotation by the session manager is picked up
// immediately.
type HTTPClient struct {
	baseURL string
	hc      *http.Client
	tokens  TokenSource
	log     logging.Logger
	metrics *Metrics

	// newRequestID is a test seam for the X-Request-Id header.
	newRequestID func() string
}

func NewHTTPClient(cfg Config) *HTTPClient {
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = defaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	log := cfg.Logger
	if log == nil {
		log = logging.NewDiscard()
	}
	return &HTTPClient{
		baseURL:      cfg.BaseURL,
		hc:           hc,
		tokens:       cfg.Tokens,
		log:          log,
		metrics:      cfg.Metrics,
		newRequestID: func() string { return uuid.NewString() },
	}
}

// call performs one request and decodes the JSON response into out (skipped
// when out is nil). The response headers are returned so auth endpoints can
// pick up Set-Cookie values.
func (c *HTTPClient) call(ctx context.Context, endpoint, method, path string, query url.Values, body, out any) (http.Header, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	c.setHeaders(ctx, req)

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		c.metrics.observe(endpoint, "transport", time.Since(start).Seconds())
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		c.metrics.observe(endpoint, "transport", time.Since(start).Seconds())
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := statusError(resp.StatusCode)
		c.metrics.observe(endpoint, outcomeLabel(err), time.Since(start).Seconds())
		c.log.Debug(ctx, "api call failed", "endpoint", endpoint, "status", resp.StatusCode)
		return resp.Header, err
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			c.metrics.observe(endpoint, "server_error", time.Since(start).Seconds())
			return resp.Header, fmt.Errorf("%w: malformed response: %v", ErrServer, err)
		}
	}

	c.metrics.observe(endpoint, "ok", time.Since(start).Seconds())
	return resp.Header, nil
}

// setHeaders attaches the auth material available right now. A request with
// neither token nor cookie goes out with no auth headers at all, which is how
// the server distinguishes anonymous reads from authenticated calls.
func (c *HTTPClient) setHeaders(ctx context.Context, req *http.Request) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", c.newRequestID())

	if c.tokens == nil {
		return
	}

	token, err := c.tokens.AccessToken(ctx)
	if err != nil {
		c.log.Warn(ctx, "reading access token", "error", err)
	}
	cookie, err := c.tokens.SessionCookie(ctx)
	if err != nil {
		c.log.Warn(ctx, "reading session cookie", "error", err)
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	switch {
	case cookie != "":
		req.Header.Set("Cookie", "is_auth=1; "+cookie)
	case token != "":
		req.Header.Set("Cookie", "is_auth=1")
	}
}

func statusError(code int) error {
	switch code {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: status %d", ErrUnauthorized, code)
	case http.StatusForbidden:
		return fmt.Errorf("%w: status %d", ErrForbidden, code)
	case http.StatusNotFound:
		return fmt.Errorf("%w: status %d", ErrNotFound, code)
	case http.StatusConflict:
		return fmt.Errorf("%w: status %d", ErrConflict, code)
	case http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: status %d", ErrUnprocessable, code)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: status %d", ErrRateLimited, code)
	default:
		return fmt.Errorf("%w: status %d", ErrServer, code)
	}
}

func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrUnprocessable):
		return "invalid"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrUnavailable):
		return "transport"
	default:
		return "server_error"
	}
}

// sessionCookieFrom extracts the "session" Set-Cookie value, if any.
func sessionCookieFrom(header http.Header) string {
	if header == nil {
		return ""
	}
	resp := http.Response{Header: header}
	for _, ck := range resp.Cookies() {
		if ck.Name == "session" {
			return ck.Name + "=" + ck.Value
		}
	}
	return ""
}

func listQuery(cursor string, limit int) url.Values {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	if cursor != "" {
		q.Set("cursor", cursor)
	}
	return q
}

// ---- AuthAPI ----

func (c *HTTPClient) SignIn(ctx context.Context, email, password, challengeToken string) (AuthResult, error) {
	return c.authCall(ctx, "sign_in", "/api/v1/auth/sign-in", signInRequest{
		Email: email, Password: password, TurnstileToken: challengeToken,
	})
}

func (c *HTTPClient) SignUp(ctx context.Context, email, password, challengeToken string) (AuthResult, error) {
	return c.authCall(ctx, "sign_up", "/api/v1/auth/sign-up", signInRequest{
		Email: email, Password: password, TurnstileToken: challengeToken,
	})
}

func (c *HTTPClient) VerifyOtp(ctx context.Context, email, password, code, flowToken string) (AuthResult, error) {
	return c.authCall(ctx, "verify_otp", "/api/v1/auth/verify-otp", verifyOtpRequest{
		Email: email, Password: password, Otp: code, FlowToken: flowToken,
	})
}

func (c *HTTPClient) authCall(ctx context.Context, endpoint, path string, body any) (AuthResult, error) {
	var out authResponse
	header, err := c.call(ctx, endpoint, http.MethodPost, path, nil, body, &out)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{
		AccessToken:          out.AccessToken,
		RequiresVerification: out.RequiresVerification,
		Email:                out.Email,
		FlowToken:            out.FlowToken,
		SessionCookie:        sessionCookieFrom(header),
	}, nil
}

func (c *HTTPClient) ResendOtp(ctx context.Context, email, flowToken string) error {
	_, err := c.call(ctx, "resend_otp", http.MethodPost, "/api/v1/auth/resend-otp",
		nil, resendOtpRequest{Email: email, FlowToken: flowToken}, nil)
	return err
}

func (c *HTTPClient) RefreshToken(ctx context.Context) (AuthResult, error) {
	return c.authCall(ctx, "refresh", "/api/v1/auth/refresh", nil)
}

func (c *HTTPClient) Logout(ctx context.Context) error {
	_, err := c.call(ctx, "logout", http.MethodPost, "/api/v1/auth/logout", nil, nil, nil)
	return err
}

func (c *HTTPClient) Profile(ctx context.Context) (Profile, error) {
	var out profileResponse
	if _, err := c.call(ctx, "profile", http.MethodGet, "/api/profile", nil, nil, &out); err != nil {
		return Profile{}, err
	}
	return Profile{
		Authenticated:   out.Authenticated,
		User:            out.User,
		Banned:          out.Banned,
		ProfileRequired: out.ProfileRequired,
	}, nil
}

// ---- PostAPI ----

func (c *HTTPClient) Posts(ctx context.Context, tab, cursor string, limit int) ([]models.Post, string, error) {
	q := listQuery(cursor, limit)
	q.Set("tab", tab)
	var out postsResponse
	if _, err := c.call(ctx, "posts", http.MethodGet, "/api/posts", q, nil, &out); err != nil {
		return nil, "", err
	}
	posts, next := out.normalize()
	return posts, next, nil
}

func (c *HTTPClient) UserPosts(ctx context.Context, username, sort, cursor string, limit int) ([]models.Post, string, error) {
	q := listQuery(cursor, limit)
	q.Set("sort", sort)
	var out postsResponse
	path := "/api/posts/user/" + url.PathEscape(username)
	if _, err := c.call(ctx, "user_posts", http.MethodGet, path, q, nil, &out); err != nil {
		return nil, "", err
	}
	posts, next := out.normalize()
	return posts, next, nil
}

func (c *HTTPClient) Comments(ctx context.Context, postID, cursor string, limit int) ([]models.Post, string, error) {
	var out postsResponse
	path := "/api/posts/" + url.PathEscape(postID) + "/comments"
	if _, err := c.call(ctx, "comments", http.MethodGet, path, listQuery(cursor, limit), nil, &out); err != nil {
		return nil, "", err
	}
	posts, next := out.normalize()
	return posts, next, nil
}

func (c *HTTPClient) CreatePost(ctx context.Context, content string, attachmentIDs []string) (models.Post, error) {
	if attachmentIDs == nil {
		attachmentIDs = []string{}
	}
	var out models.Post
	_, err := c.call(ctx, "create_post", http.MethodPost, "/api/posts", nil,
		createPostRequest{Content: content, Attachments: attachmentIDs}, &out)
	return out, err
}

func (c *HTTPClient) CreateComment(ctx context.Context, postID, content string) (models.Post, error) {
	var out models.Post
	path := "/api/posts/" + url.PathEscape(postID) + "/comments"
	_, err := c.call(ctx, "create_comment", http.MethodPost, path, nil,
		createPostRequest{Content: content, Attachments: []string{}}, &out)
	return out, err
}

func (c *HTTPClient) DeletePost(ctx context.Context, postID string) error {
	_, err := c.call(ctx, "delete_post", http.MethodDelete, "/api/posts/"+url.PathEscape(postID), nil, nil, nil)
	return err
}

func (c *HTTPClient) LikePost(ctx context.Context, postID string) error {
	_, err := c.call(ctx, "like_post", http.MethodPost, "/api/posts/"+url.PathEscape(postID)+"/like", nil, nil, nil)
	return err
}

func (c *HTTPClient) UnlikePost(ctx context.Context, postID string) error {
	_, err := c.call(ctx, "unlike_post", http.MethodDelete, "/api/posts/"+url.PathEscape(postID)+"/like", nil, nil, nil)
	return err
}

func (c *HTTPClient) RepostPost(ctx context.Context, postID string) error {
	_, err := c.call(ctx, "repost_post", http.MethodPost, "/api/posts/"+url.PathEscape(postID)+"/repost", nil, nil, nil)
	return err
}

func (c *HTTPClient) MarkPostViewed(ctx context.Context, postID string) error {
	_, err := c.call(ctx, "mark_viewed", http.MethodPost, "/api/posts/"+url.PathEscape(postID)+"/view", nil, nil, nil)
	return err
}

// ---- UserAPI ----

func (c *HTTPClient) UserByUsername(ctx context.Context, username string) (models.User, error) {
	var out models.User
	_, err := c.call(ctx, "user", http.MethodGet, "/api/users/"+url.PathEscape(username), nil, nil, &out)
	return out, err
}

func (c *HTTPClient) CurrentUser(ctx context.Context) (models.User, error) {
	var out models.User
	_, err := c.call(ctx, "current_user", http.MethodGet, "/api/users/me", nil, nil, &out)
	return out, err
}

func (c *HTTPClient) UpdateProfile(ctx context.Context, updates map[string]string) (models.User, error) {
	var out models.User
	_, err := c.call(ctx, "update_profile", http.MethodPut, "/api/users/me", nil, updates, &out)
	return out, err
}

func (c *HTTPClient) FollowUser(ctx context.Context, username string) error {
	_, err := c.call(ctx, "follow", http.MethodPost, "/api/users/"+url.PathEscape(username)+"/follow", nil, nil, nil)
	return err
}

func (c *HTTPClient) UnfollowUser(ctx context.Context, username string) error {
	_, err := c.call(ctx, "unfollow", http.MethodDelete, "/api/users/"+url.PathEscape(username)+"/follow", nil, nil, nil)
	return err
}

func (c *HTTPClient) Followers(ctx context.Context, username, cursor string, limit int) ([]models.UserSuggestion, string, error) {
	return c.userList(ctx, "followers", "/api/users/"+url.PathEscape(username)+"/followers", cursor, limit)
}

func (c *HTTPClient) Following(ctx context.Context, username, cursor string, limit int) ([]models.UserSuggestion, string, error) {
	return c.userList(ctx, "following", "/api/users/"+url.PathEscape(username)+"/following", cursor, limit)
}

func (c *HTTPClient) userList(ctx context.Context, endpoint, path, cursor string, limit int) ([]models.UserSuggestion, string, error) {
	var out suggestionsResponse
	if _, err := c.call(ctx, endpoint, http.MethodGet, path, listQuery(cursor, limit), nil, &out); err != nil {
		return nil, "", err
	}
	return out.Users, out.NextCursor, nil
}

func (c *HTTPClient) WhoToFollow(ctx context.Context) ([]models.UserSuggestion, error) {
	var out suggestionsResponse
	if _, err := c.call(ctx, "who_to_follow", http.MethodGet, "/api/users/suggestions/who-to-follow", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Users, nil
}

func (c *HTTPClient) TopClans(ctx context.Context) ([]models.Clan, error) {
	var out topClansResponse
	if _, err := c.call(ctx, "top_clans", http.MethodGet, "/api/users/stats/top-clans", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Clans, nil
}

// ---- NotificationAPI ----

func (c *HTTPClient) Notifications(ctx context.Context, typ, cursor string, limit int) ([]models.Notification, string, error) {
	q := listQuery(cursor, limit)
	if typ != "" {
		q.Set("type", typ)
	}
	var out notificationsResponse
	if _, err := c.call(ctx, "notifications", http.MethodGet, "/api/notifications/", q, nil, &out); err != nil {
		return nil, "", err
	}
	items, next := out.normalize()
	return items, next, nil
}

func (c *HTTPClient) NotificationCount(ctx context.Context) (int, error) {
	var out notificationCountResponse
	if _, err := c.call(ctx, "notification_count", http.MethodGet, "/api/notifications/count", nil, nil, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

func (c *HTTPClient) MarkAllNotificationsRead(ctx context.Context) error {
	_, err := c.call(ctx, "read_all", http.MethodPost, "/api/notifications/read-all", nil, nil, nil)
	return err
}

func (c *HTTPClient) MarkNotificationsRead(ctx context.Context, ids []string) error {
	_, err := c.call(ctx, "read_batch", http.MethodPost, "/api/notifications/read-batch",
		nil, map[string][]string{"ids": ids}, nil)
	return err
}

// ---- SearchAPI ----

func (c *HTTPClient) Search(ctx context.Context, query string) (models.SearchResults, error) {
	q := url.Values{}
	q.Set("q", query)
	var out searchResponse
	if _, err := c.call(ctx, "search", http.MethodGet, "/api/search", q, nil, &out); err != nil {
		return models.SearchResults{}, err
	}
	return out.normalize(), nil
}

func (c *HTTPClient) SearchUsers(ctx context.Context, query string) ([]models.UserSuggestion, error) {
	q := url.Values{}
	q.Set("q", query)
	var out suggestionsResponse
	if _, err := c.call(ctx, "search_users", http.MethodGet, "/api/users/search", q, nil, &out); err != nil {
		return nil, err
	}
	return out.Users, nil
}

func (c *HTTPClient) TrendingHashtags(ctx context.Context) ([]models.Hashtag, error) {
	var out hashtagsResponse
	if _, err := c.call(ctx, "trending_hashtags", http.MethodGet, "/api/hashtags/trending", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.normalize(), nil
}

func (c *HTTPClient) SearchHashtags(ctx context.Context, query string) ([]models.Hashtag, error) {
	q := url.Values{}
	q.Set("q", query)
	var out hashtagsResponse
	if _, err := c.call(ctx, "search_hashtags", http.MethodGet, "/api/hashtags", q, nil, &out); err != nil {
		return nil, err
	}
	return out.normalize(), nil
}

func (c *HTTPClient) HashtagPosts(ctx context.Context, tag, cursor string, limit int) ([]models.Post, string, error) {
	var out postsResponse
	path := "/api/hashtags/" + url.PathEscape(tag) + "/posts"
	if _, err := c.call(ctx, "hashtag_posts", http.MethodGet, path, listQuery(cursor, limit), nil, &out); err != nil {
		return nil, "", err
	}
	posts, next := out.normalize()
	return posts, next, nil
}

// Interface conformance.
var (
	_ AuthAPI         = (*HTTPClient)(nil)
	_ PostAPI         = (*HTTPClient)(nil)
	_ UserAPI         = (*HTTPClient)(nil)
	_ NotificationAPI = (*HTTPClient)(nil)
	_ SearchAPI       = (*HTTPClient)(nil)
)
