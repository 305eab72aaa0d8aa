package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/itd-social/itd-client/internal/client/api"
	"github.com/itd-social/itd-client/internal/client/models"
	"github.com/itd-social/itd-client/internal/client/repositories/credentials"
)

// ---- fakes ----

type fakeStore struct {
	mu sync.Mutex
	m  map[string]string
}

func newFakeStore() *fakeStore { return &fakeStore{m: map[string]string{}} }

func (s *fakeStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m[key], nil
}

func (s *fakeStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
	return nil
}

func (s *fakeStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
	return nil
}

func (s *fakeStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m = map[string]string{}
	return nil
}

// fakeAuthAPI implements api.AuthAPI, recording calls and returning canned
// results.
type fakeAuthAPI struct {
	SignInRet api.AuthResult
	SignInErr error

	SignUpRet api.AuthResult
	SignUpErr error

	VerifyRet api.AuthResult
	VerifyErr error

	ResendErr error

	RefreshRet api.AuthResult
	RefreshErr error

	LogoutErr error

	ProfileRet api.Profile
	ProfileErr error

	SignInCalls  int
	SignUpCalls  int
	VerifyCalls  int
	ResendCalls  int
	RefreshCalls int
	LogoutCalls  int
	ProfileCalls int

	LastSignInEmail     string
	LastSignInChallenge string
	LastVerifyEmail     string
	LastVerifyPassword  string
	LastVerifyCode      string
	LastVerifyFlow      string
	LastResendEmail     string
	LastResendFlow      string
}

func (f *fakeAuthAPI) SignIn(ctx context.Context, email, password, challengeToken string) (api.AuthResult, error) {
	f.SignInCalls++
	f.LastSignInEmail = email
	f.LastSignInChallenge = challengeToken
	return f.SignInRet, f.SignInErr
}

func (f *fakeAuthAPI) SignUp(ctx context.Context, email, password, challengeToken string) (api.AuthResult, error) {
	f.SignUpCalls++
	return f.SignUpRet, f.SignUpErr
}

func (f *fakeAuthAPI) VerifyOtp(ctx context.Context, email, password, code, flowToken string) (api.AuthResult, error) {
	f.VerifyCalls++
	f.LastVerifyEmail = email
	f.LastVerifyPassword = password
	f.LastVerifyCode = code
	f.LastVerifyFlow = flowToken
	return f.VerifyRet, f.VerifyErr
}

func (f *fakeAuthAPI) ResendOtp(ctx context.Context, email, flowToken string) error {
	f.ResendCalls++
	f.LastResendEmail = email
	f.LastResendFlow = flowToken
	return f.ResendErr
}

func (f *fakeAuthAPI) RefreshToken(ctx context.Context) (api.AuthResult, error) {
	f.RefreshCalls++
	return f.RefreshRet, f.RefreshErr
}

func (f *fakeAuthAPI) Logout(ctx context.Context) error {
	f.LogoutCalls++
	return f.LogoutErr
}

func (f *fakeAuthAPI) Profile(ctx context.Context) (api.Profile, error) {
	f.ProfileCalls++
	return f.ProfileRet, f.ProfileErr
}

func newManager(t *testing.T) (*Manager, *fakeAuthAPI, *fakeStore) {
	t.Helper()
	a := &fakeAuthAPI{
		ProfileRet: api.Profile{
			Authenticated: true,
			User:          &models.User{Username: "navid", Avatar: ":)"},
		},
	}
	store := newFakeStore()
	return NewManager(a, store, nil), a, store
}

// ---- tests ----

func TestSignIn_BlankFieldsNoNetwork(t *testing.T) {
	m, a, _ := newManager(t)

	_, err := m.SignIn(context.Background(), "", "pw", "challenge")
	require.ErrorIs(t, err, api.ErrValidation)

	_, err = m.SignIn(context.Background(), "e@x.y", "", "challenge")
	require.ErrorIs(t, err, api.ErrValidation)

	require.Zero(t, a.SignInCalls)
	require.Equal(t, StateLoggedOut, m.State())
}

func TestSignIn_MissingChallengeToken(t *testing.T) {
	m, a, _ := newManager(t)

	_, err := m.SignIn(context.Background(), "e@x.y", "pw", "")
	require.ErrorIs(t, err, api.ErrValidation)
	require.ErrorIs(t, err, ErrChallengeRequired)
	require.Zero(t, a.SignInCalls)
}

func TestSignIn_NeedsOtp(t *testing.T) {
	m, a, _ := newManager(t)
	a.SignInRet = api.AuthResult{
		RequiresVerification: true,
		Email:                "canonical@itd.gg",
		FlowToken:            "flow-1",
	}

	res, err := m.SignIn(context.Background(), "E@ITD.GG", "pw", "challenge")
	require.NoError(t, err)
	require.True(t, res.RequiresOtp)
	require.Equal(t, "canonical@itd.gg", res.Email)
	require.Equal(t, StateOtpPending, m.State())
	require.Equal(t, 60, m.ResendCooldown())
}

func TestSignIn_DirectToken(t *testing.T) {
	m, a, store := newManager(t)
	a.SignInRet = api.AuthResult{AccessToken: "tok-1", SessionCookie: "session=s1"}

	res, err := m.SignIn(context.Background(), "e@x.y", "pw", "challenge")
	require.NoError(t, err)
	require.False(t, res.RequiresOtp)
	require.NotNil(t, res.User)
	require.Equal(t, StateAuthenticated, m.State())
	require.True(t, m.IsLoggedIn(context.Background()))

	// persisted material
	tok, _ := store.Get(context.Background(), credentials.KeyAccessToken)
	require.Equal(t, "tok-1", tok)
	cookie, _ := store.Get(context.Background(), credentials.KeySessionCookie)
	require.Equal(t, "session=s1", cookie)
	name, _ := store.Get(context.Background(), credentials.KeyUsername)
	require.Equal(t, "navid", name)
}

func TestSignIn_SurvivesRestart(t *testing.T) {
	m, a, store := newManager(t)
	a.SignInRet = api.AuthResult{AccessToken: "tok-1"}

	_, err := m.SignIn(context.Background(), "e@x.y", "pw", "challenge")
	require.NoError(t, err)

	// a fresh manager over the same store stands in for a process restart
	restarted := NewManager(&fakeAuthAPI{}, store, nil)
	require.True(t, restarted.IsLoggedIn(context.Background()))
	require.NoError(t, restarted.Restore(context.Background()))
	require.Equal(t, StateAuthenticated, restarted.State())
}

func TestSignIn_ProfileFailureDoesNotFailSignIn(t *testing.T) {
	m, a, _ := newManager(t)
	a.SignInRet = api.AuthResult{AccessToken: "tok-1"}
	a.ProfileErr = api.ErrUnavailable

	res, err := m.SignIn(context.Background(), "e@x.y", "pw", "challenge")
	require.NoError(t, err)
	require.Nil(t, res.User)
	require.Equal(t, StateAuthenticated, m.State())
}

func TestSignIn_ServerFailureLeavesState(t *testing.T) {
	m, a, _ := newManager(t)
	a.SignInErr = api.ErrUnauthorized

	_, err := m.SignIn(context.Background(), "e@x.y", "pw", "challenge")
	require.ErrorIs(t, err, api.ErrUnauthorized)
	require.Equal(t, StateLoggedOut, m.State())
	require.False(t, m.IsLoggedIn(context.Background()))
}

func TestSignIn_UnexpectedResponse(t *testing.T) {
	m, a, _ := newManager(t)
	a.SignInRet = api.AuthResult{} // neither token nor verification flag

	_, err := m.SignIn(context.Background(), "e@x.y", "pw", "challenge")
	require.ErrorIs(t, err, api.ErrServer)
	require.Equal(t, StateLoggedOut, m.State())
}

func TestSignUp_ConflictSurfaced(t *testing.T) {
	m, a, _ := newManager(t)
	a.SignUpErr = api.ErrConflict

	_, err := m.SignUp(context.Background(), "e@x.y", "pw", "challenge")
	require.ErrorIs(t, err, api.ErrConflict)
	require.Equal(t, StateLoggedOut, m.State())
}

func enterOtp(t *testing.T, m *Manager, a *fakeAuthAPI) {
	t.Helper()
	a.SignInRet = api.AuthResult{RequiresVerification: true, Email: "e@x.y", FlowToken: "flow-1"}
	_, err := m.SignIn(context.Background(), "e@x.y", "secret", "challenge")
	require.NoError(t, err)
	require.Equal(t, StateOtpPending, m.State())
}

func TestVerifyOtp_BadCodeNoNetwork(t *testing.T) {
	m, a, _ := newManager(t)
	enterOtp(t, m, a)

	for _, code := range []string{"", "12345", "1234567", "12a456"} {
		_, err := m.VerifyOtp(context.Background(), code)
		require.ErrorIs(t, err, api.ErrValidation, "code %q", code)
	}
	require.Zero(t, a.VerifyCalls)
	require.Equal(t, StateOtpPending, m.State())
}

func TestVerifyOtp_WrongCodeStaysPending(t *testing.T) {
	m, a, _ := newManager(t)
	enterOtp(t, m, a)
	a.VerifyErr = api.ErrUnauthorized

	_, err := m.VerifyOtp(context.Background(), "123456")
	require.ErrorIs(t, err, api.ErrUnauthorized)
	require.Equal(t, StateOtpPending, m.State())

	// the same challenge is reused on retry
	a.VerifyErr = nil
	a.VerifyRet = api.AuthResult{AccessToken: "tok-2"}
	_, err = m.VerifyOtp(context.Background(), "654321")
	require.NoError(t, err)
	require.Equal(t, "flow-1", a.LastVerifyFlow)
	require.Equal(t, "secret", a.LastVerifyPassword)
	require.Equal(t, StateAuthenticated, m.State())
}

func TestVerifyOtp_WithoutChallenge(t *testing.T) {
	m, _, _ := newManager(t)
	_, err := m.VerifyOtp(context.Background(), "123456")
	require.ErrorIs(t, err, api.ErrValidation)
}

func TestResendOtp_CooldownBlocksNetwork(t *testing.T) {
	m, a, _ := newManager(t)
	enterOtp(t, m, a)

	// fresh challenge: cooldown is running, resend must be a no-op
	require.NoError(t, m.ResendOtp(context.Background()))
	require.Zero(t, a.ResendCalls)
}

func TestResendOtp_AfterCooldown(t *testing.T) {
	m, a, _ := newManager(t)
	m.cooldownTick = time.Millisecond
	enterOtp(t, m, a)

	require.Eventually(t, func() bool { return m.ResendCooldown() == 0 },
		2*time.Second, 5*time.Millisecond)

	require.NoError(t, m.ResendOtp(context.Background()))
	require.Equal(t, 1, a.ResendCalls)
	require.Equal(t, "flow-1", a.LastResendFlow)
	// cooldown restarted
	require.Greater(t, m.ResendCooldown(), 0)
}

func TestResendOtp_FailureKeepsState(t *testing.T) {
	m, a, _ := newManager(t)
	m.cooldownTick = time.Millisecond
	enterOtp(t, m, a)

	require.Eventually(t, func() bool { return m.ResendCooldown() == 0 },
		2*time.Second, 5*time.Millisecond)

	a.ResendErr = api.ErrRateLimited
	err := m.ResendOtp(context.Background())
	require.ErrorIs(t, err, api.ErrRateLimited)
	require.Equal(t, StateOtpPending, m.State())
	require.Equal(t, 0, m.ResendCooldown())
}

func TestBackFromOtp(t *testing.T) {
	m, a, _ := newManager(t)
	enterOtp(t, m, a)

	m.BackFromOtp()
	require.Equal(t, StateLoggedOut, m.State())
	require.Equal(t, 0, m.ResendCooldown())

	_, err := m.VerifyOtp(context.Background(), "123456")
	require.ErrorIs(t, err, api.ErrValidation)
}

func TestRefreshToken(t *testing.T) {
	m, a, store := newManager(t)
	a.RefreshRet = api.AuthResult{AccessToken: "tok-new"}

	tok, err := m.RefreshToken(context.Background())
	require.NoError(t, err)
	require.Equal(t, "tok-new", tok)

	stored, _ := store.Get(context.Background(), credentials.KeyAccessToken)
	require.Equal(t, "tok-new", stored)
}

func TestRefreshToken_FailureKeepsSession(t *testing.T) {
	m, a, store := newManager(t)
	require.NoError(t, store.Set(context.Background(), credentials.KeyAccessToken, "tok-old"))
	a.RefreshErr = api.ErrUnauthorized

	_, err := m.RefreshToken(context.Background())
	require.ErrorIs(t, err, api.ErrUnauthorized)

	stored, _ := store.Get(context.Background(), credentials.KeyAccessToken)
	require.Equal(t, "tok-old", stored)
	require.True(t, m.IsLoggedIn(context.Background()))
}

func TestLogout_ClearsEvenWhenServerFails(t *testing.T) {
	m, a, store := newManager(t)
	a.SignInRet = api.AuthResult{AccessToken: "tok-1"}
	_, err := m.SignIn(context.Background(), "e@x.y", "pw", "challenge")
	require.NoError(t, err)

	a.LogoutErr = api.ErrUnavailable
	require.NoError(t, m.Logout(context.Background()))
	require.Equal(t, 1, a.LogoutCalls)
	require.Equal(t, StateLoggedOut, m.State())
	require.False(t, m.IsLoggedIn(context.Background()))

	name, _ := store.Get(context.Background(), credentials.KeyUsername)
	require.Equal(t, "", name)
}

func TestTokenSource_ReadsFreshValues(t *testing.T) {
	m, _, store := newManager(t)
	ctx := context.Background()

	tok, err := m.AccessToken(ctx)
	require.NoError(t, err)
	require.Equal(t, "", tok)

	require.NoError(t, store.Set(ctx, credentials.KeyAccessToken, "rotated"))
	tok, err = m.AccessToken(ctx)
	require.NoError(t, err)
	require.Equal(t, "rotated", tok)
}

func TestTokenExpiresAt(t *testing.T) {
	m, _, store := newManager(t)
	ctx := context.Background()

	// no token
	require.True(t, m.TokenExpiresAt(ctx).IsZero())

	// opaque token
	require.NoError(t, store.Set(ctx, credentials.KeyAccessToken, "not-a-jwt"))
	require.True(t, m.TokenExpiresAt(ctx).IsZero())
	require.False(t, m.TokenExpired(ctx))

	// expired JWT
	exp := time.Now().Add(-time.Hour)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256,
		jwt.MapClaims{"exp": exp.Unix()}).SignedString([]byte("key"))
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, credentials.KeyAccessToken, signed))
	require.WithinDuration(t, exp, m.TokenExpiresAt(ctx), time.Second)
	require.True(t, m.TokenExpired(ctx))
}

func TestSubscribe(t *testing.T) {
	m, a, _ := newManager(t)
	ch, unsubscribe := m.Subscribe()
	defer unsubscribe()

	a.SignInRet = api.AuthResult{AccessToken: "tok-1"}
	_, err := m.SignIn(context.Background(), "e@x.y", "pw", "challenge")
	require.NoError(t, err)

	var states []State
	for len(states) < 2 {
		select {
		case s := <-ch:
			states = append(states, s)
		case <-time.After(time.Second):
			t.Fatalf("timed out, got %v", states)
		}
	}
	require.Equal(t, []State{StateAuthenticating, StateAuthenticated}, states)
}

func TestStateString(t *testing.T) {
	require.Equal(t, "logged_out", StateLoggedOut.String())
	require.Equal(t, "authenticated", StateAuthenticated.String())
	require.Equal(t, "unknown", State(99).String())
}

func TestSignIn_TransportError(t *testing.T) {
	m, a, _ := newManager(t)
	a.SignInErr = errors.Join(api.ErrUnavailable)

	_, err := m.SignIn(context.Background(), "e@x.y", "pw", "challenge")
	require.ErrorIs(t, err, api.ErrUnavailable)
	require.Equal(t, StateLoggedOut, m.State())
}
