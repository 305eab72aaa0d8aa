// Package session owns the authentication lifecycle of the client: sign-in,
// sign-up, the OTP verification flow, token refresh, and logout.
//
// Exactly one Manager exists per process. It is the single writer of session
// state; collaborators read through its accessors or receive it by injection.
// Durable material (access token, session cookie, username) lives in the
// credential store and survives restarts; everything tied to an in-flight OTP
// challenge (flow token, pending password) is held in memory only and wiped
// when the challenge is consumed or cancelled.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/itd-social/itd-client/internal/client/api"
	"github.com/itd-social/itd-client/internal/client/models"
	"github.com/itd-social/itd-client/internal/client/repositories/credentials"
	"github.com/itd-social/itd-client/internal/common"
	"github.com/itd-social/itd-client/internal/logging"
)

// ErrChallengeRequired is returned (wrapped in api.ErrValidation) when
// sign-in/sign-up is attempted before the bot-verification widget has
// produced a token.
var ErrChallengeRequired = errors.New("challenge token not ready")

const (
	otpCodeLength         = 6
	defaultResendCooldown = 60
)

// SignInResult is the outcome of a successful SignIn/SignUp/VerifyOtp call.
// When RequiresOtp is set the caller must continue with VerifyOtp; otherwise
// the session is authenticated and User carries the cached profile when the
// best-effort profile fetch succeeded.
type SignInResult struct {
	RequiresOtp bool
	Email       string
	User        *models.User
}

// otpChallenge holds the transient state of one pending OTP verification.
type otpChallenge struct {
	email     string
	flowToken string
	password  []byte
	cooldown  int
	cancel    context.CancelFunc
}

// Manager drives the session state machine:
//
//	loggedOut --SignIn/SignUp(needsOtp)--> otpPending --VerifyOtp--> authenticated
//	loggedOut --SignIn/SignUp(token)--> authenticated
//	otpPending --BackFromOtp--> loggedOut
//	authenticated --Logout--> loggedOut
//
// A failed attempt leaves the state where it was.
type Manager struct {
	api   api.AuthAPI
	creds credentials.Repository
	log   logging.Logger

	mu    sync.Mutex
	state State
	user  *models.User
	otp   *otpChallenge

	subsMu sync.Mutex
	subs   map[int]chan State
	nextID int

	// cooldownTick is the OTP resend countdown step; tests shorten it.
	cooldownTick time.Duration
}

func NewManager(authAPI api.AuthAPI, creds credentials.Repository, log logging.Logger) *Manager {
	if log == nil {
		log = logging.NewDiscard()
	}
	return &Manager{
		api:          authAPI,
		creds:        creds,
		log:          log,
		state:        StateLoggedOut,
		subs:         make(map[int]chan State),
		cooldownTick: time.Second,
	}
}

// SetAuthAPI installs the API client after construction. The manager and the
// HTTP client reference each other (the client reads tokens through the
// manager), so one side has to be wired late. Call before any operation.
func (m *Manager) SetAuthAPI(authAPI api.AuthAPI) {
	m.api = authAPI
}

// Restore brings a cold-started process back into the authenticated state
// when a persisted access token exists. No network call is made.
func (m *Manager) Restore(ctx context.Context) error {
	token, err := m.creds.Get(ctx, credentials.KeyAccessToken)
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	if token != "" {
		m.setState(StateAuthenticated)
		m.log.Info(ctx, "session restored")
	}
	return nil
}

// SignIn authenticates with email/password plus the bot-verification token.
// Blank fields and a missing challenge token fail fast without any network
// call.
func (m *Manager) SignIn(ctx context.Context, email, password, challengeToken string) (SignInResult, error) {
	return m.authenticate(ctx, "sign in", email, password, challengeToken, m.api.SignIn)
}

// SignUp registers a new account; the flow is identical to SignIn.
func (m *Manager) SignUp(ctx context.Context, email, password, challengeToken string) (SignInResult, error) {
	return m.authenticate(ctx, "sign up", email, password, challengeToken, m.api.SignUp)
}

type authCall func(ctx context.Context, email, password, challengeToken string) (api.AuthResult, error)

func (m *Manager) authenticate(ctx context.Context, op, email, password, challengeToken string, call authCall) (SignInResult, error) {
	if email == "" || password == "" {
		return SignInResult{}, fmt.Errorf("%s: %w: email and password are required", op, api.ErrValidation)
	}
	if challengeToken == "" {
		return SignInResult{}, fmt.Errorf("%s: %w: %w", op, api.ErrValidation, ErrChallengeRequired)
	}

	m.mu.Lock()
	prev := m.state
	m.state = StateAuthenticating
	m.mu.Unlock()
	m.notify(StateAuthenticating)

	res, err := call(ctx, email, password, challengeToken)
	if err != nil {
		m.setState(prev)
		return SignInResult{}, fmt.Errorf("%s: %w", op, err)
	}

	switch {
	case res.RequiresVerification:
		// Prefer the server-echoed address; it may be canonicalized.
		otpEmail := res.Email
		if otpEmail == "" {
			otpEmail = email
		}
		m.beginOtp(otpEmail, res.FlowToken, password)
		return SignInResult{RequiresOtp: true, Email: otpEmail}, nil

	case res.AccessToken != "":
		user, err := m.finalize(ctx, res)
		if err != nil {
			m.setState(prev)
			return SignInResult{}, fmt.Errorf("%s: %w", op, err)
		}
		return SignInResult{User: user}, nil

	default:
		m.setState(prev)
		return SignInResult{}, fmt.Errorf("%s: %w: unexpected server response", op, api.ErrServer)
	}
}

// VerifyOtp completes a pending challenge. The code must be exactly six
// digits; anything else is rejected without a network call. On a failed
// verification the state remains otpPending so the user can retry against
// the same challenge.
func (m *Manager) VerifyOtp(ctx context.Context, code string) (SignInResult, error) {
	if !validOtpCode(code) {
		return SignInResult{}, fmt.Errorf("verify otp: %w: code must be %d digits", api.ErrValidation, otpCodeLength)
	}

	m.mu.Lock()
	if m.state != StateOtpPending || m.otp == nil {
		m.mu.Unlock()
		return SignInResult{}, fmt.Errorf("verify otp: %w: no verification in progress", api.ErrValidation)
	}
	email := m.otp.email
	flowToken := m.otp.flowToken
	password := string(m.otp.password)
	m.mu.Unlock()

	res, err := m.api.VerifyOtp(ctx, email, password, code, flowToken)
	if err != nil {
		return SignInResult{}, fmt.Errorf("verify otp: %w", err)
	}
	if res.AccessToken == "" {
		return SignInResult{}, fmt.Errorf("verify otp: %w: unexpected server response", api.ErrServer)
	}

	m.discardOtp()
	user, err := m.finalize(ctx, res)
	if err != nil {
		return SignInResult{}, fmt.Errorf("verify otp: %w", err)
	}
	return SignInResult{User: user}, nil
}

// ResendOtp asks the server to send a fresh code. While the client-side
// cooldown is running the call is a no-op: no request is made. A failed
// resend changes nothing.
func (m *Manager) ResendOtp(ctx context.Context) error {
	m.mu.Lock()
	if m.state != StateOtpPending || m.otp == nil {
		m.mu.Unlock()
		return fmt.Errorf("resend otp: %w: no verification in progress", api.ErrValidation)
	}
	if m.otp.cooldown > 0 {
		m.mu.Unlock()
		return nil
	}
	email := m.otp.email
	flowToken := m.otp.flowToken
	m.mu.Unlock()

	if err := m.api.ResendOtp(ctx, email, flowToken); err != nil {
		return fmt.Errorf("resend otp: %w", err)
	}

	m.mu.Lock()
	if m.otp != nil {
		m.otp.cooldown = defaultResendCooldown
	}
	m.mu.Unlock()
	return nil
}

// ResendCooldown reports the seconds left before another resend is allowed.
func (m *Manager) ResendCooldown() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.otp == nil {
		return 0
	}
	return m.otp.cooldown
}

// BackFromOtp abandons the pending challenge: the countdown is cancelled,
// the pending password and flow token are wiped, and the session returns to
// loggedOut. Nothing from the challenge is ever persisted.
func (m *Manager) BackFromOtp() {
	m.discardOtp()
	m.setState(StateLoggedOut)
}

// RefreshToken exchanges whatever credentials the transport attaches for a
// new access token and persists it. On failure the existing session is left
// intact; forcing a logout is the caller's decision.
func (m *Manager) RefreshToken(ctx context.Context) (string, error) {
	res, err := m.api.RefreshToken(ctx)
	if err != nil {
		return "", fmt.Errorf("refresh token: %w", err)
	}
	if res.AccessToken == "" {
		return "", fmt.Errorf("refresh token: %w: no token in response", api.ErrServer)
	}

	if err := m.persistAuth(ctx, res); err != nil {
		return "", fmt.Errorf("refresh token: %w", err)
	}
	return res.AccessToken, nil
}

// Logout notifies the server best-effort, then unconditionally clears the
// credential store and the in-memory session.
func (m *Manager) Logout(ctx context.Context) error {
	if err := m.api.Logout(ctx); err != nil {
		m.log.Warn(ctx, "logout notification failed", "error", err)
	}

	m.discardOtp()
	m.mu.Lock()
	m.user = nil
	m.mu.Unlock()
	m.setState(StateLoggedOut)

	if err := m.creds.Clear(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// IsLoggedIn reports whether a persisted access token exists. This is the
// single source of truth for "am I logged in", used at cold start and by the
// notification poller.
func (m *Manager) IsLoggedIn(ctx context.Context) bool {
	token, err := m.creds.Get(ctx, credentials.KeyAccessToken)
	if err != nil {
		m.log.Warn(ctx, "reading access token", "error", err)
		return false
	}
	return token != ""
}

// Username returns the persisted username, "" when unknown.
func (m *Manager) Username(ctx context.Context) (string, error) {
	return m.creds.Get(ctx, credentials.KeyUsername)
}

// User returns the profile cached at authentication time, if any.
func (m *Manager) User() *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Subscribe returns a channel of state transitions and an unsubscribe
// function. Slow receivers miss intermediate states rather than blocking the
// manager.
func (m *Manager) Subscribe() (<-chan State, func()) {
	m.subsMu.Lock()
	defer m.subsMu.Unlock()

	id := m.nextID
	m.nextID++
	ch := make(chan State, 4)
	m.subs[id] = ch

	return ch, func() {
		m.subsMu.Lock()
		defer m.subsMu.Unlock()
		if _, ok := m.subs[id]; ok {
			delete(m.subs, id)
			close(ch)
		}
	}
}

// ---- internals ----

func (m *Manager) setState(s State) {
	m.mu.Lock()
	changed := m.state != s
	m.state = s
	m.mu.Unlock()
	if changed {
		m.notify(s)
	}
}

func (m *Manager) notify(s State) {
	m.subsMu.Lock()
	defer m.subsMu.Unlock()
	for _, ch := range m.subs {
		select {
		case ch <- s:
		default:
		}
	}
}

func (m *Manager) beginOtp(email, flowToken, password string) {
	m.discardOtp()

	ctx, cancel := context.WithCancel(context.Background())
	ch := &otpChallenge{
		email:     email,
		flowToken: flowToken,
		password:  []byte(password),
		cooldown:  defaultResendCooldown,
		cancel:    cancel,
	}

	m.mu.Lock()
	m.otp = ch
	m.state = StateOtpPending
	m.mu.Unlock()
	m.notify(StateOtpPending)

	go m.runCountdown(ctx, ch)
}

// runCountdown decrements the challenge's resend cooldown once per tick for
// as long as the challenge is current.
func (m *Manager) runCountdown(ctx context.Context, ch *otpChallenge) {
	ticker := time.NewTicker(m.cooldownTick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.mu.Lock()
			if m.otp != ch {
				m.mu.Unlock()
				return
			}
			if ch.cooldown > 0 {
				ch.cooldown--
			}
			m.mu.Unlock()
		}
	}
}

// discardOtp cancels the countdown and wipes the challenge's secrets.
func (m *Manager) discardOtp() {
	m.mu.Lock()
	ch := m.otp
	m.otp = nil
	m.mu.Unlock()

	if ch == nil {
		return
	}
	ch.cancel()
	common.WipeBytes(ch.password)
	ch.flowToken = ""
}

// finalize persists the auth material, flips to authenticated, and fetches
// the profile best-effort (a profile failure never fails the sign-in).
func (m *Manager) finalize(ctx context.Context, res api.AuthResult) (*models.User, error) {
	if err := m.persistAuth(ctx, res); err != nil {
		return nil, err
	}
	m.setState(StateAuthenticated)

	profile, err := m.api.Profile(ctx)
	if err != nil {
		m.log.Warn(ctx, "profile fetch after auth failed", "error", err)
		return nil, nil
	}
	if profile.User == nil {
		return nil, nil
	}

	if err := m.creds.Set(ctx, credentials.KeyUsername, profile.User.Username); err != nil {
		m.log.Warn(ctx, "persisting username", "error", err)
	}
	m.mu.Lock()
	m.user = profile.User
	m.mu.Unlock()
	return profile.User, nil
}

func (m *Manager) persistAuth(ctx context.Context, res api.AuthResult) error {
	if err := m.creds.Set(ctx, credentials.KeyAccessToken, res.AccessToken); err != nil {
		return fmt.Errorf("persisting access token: %w", err)
	}
	if res.SessionCookie != "" {
		if err := m.creds.Set(ctx, credentials.KeySessionCookie, res.SessionCookie); err != nil {
			return fmt.Errorf("persisting session cookie: %w", err)
		}
	}
	return nil
}

// Manager supplies auth material to the API client.
var _ api.TokenSource = (*Manager)(nil)

func validOtpCode(code string) bool {
	if len(code) != otpCodeLength {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
