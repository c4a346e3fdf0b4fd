package service

import (
	"context"
	"errors"
	"net"
	"net/url"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/target/spotify-auth/internal/adapters/callback"
	"github.com/target/spotify-auth/internal/adapters/spotify"
	"github.com/target/spotify-auth/internal/data"
	domainauth "github.com/target/spotify-auth/internal/domain/auth"
	apperrors "github.com/target/spotify-auth/internal/errors"
	"github.com/target/spotify-auth/internal/mocks"
	fakes "github.com/target/spotify-auth/internal/mocks/auth"
	"github.com/target/spotify-auth/internal/observability/notify"
	"github.com/target/spotify-auth/internal/ports"
	"github.com/target/spotify-auth/internal/testutil"
)

type staticSettings struct {
	port     int
	clientID string
	err      error
}

func (s staticSettings) CallbackPort(context.Context) (int, error)     { return s.port, s.err }
func (s staticSettings) OAuthClientID(context.Context) (string, error) { return s.clientID, nil }

type recordingMetrics struct {
	mu           sync.Mutex
	hits         int
	started      int
	lockTimeouts int
	outcomes     []string
	ttls         []time.Duration
}

func (m *recordingMetrics) CacheHit() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hits++
}

func (m *recordingMetrics) SessionStarted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started++
}

func (m *recordingMetrics) SessionFinished(outcome string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, outcome)
}

func (m *recordingMetrics) LockTimeout() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lockTimeouts++
}

func (m *recordingMetrics) TokenIssued(ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ttls = append(m.ttls, ttl)
}

func (m *recordingMetrics) snapshot() (hits, started, lockTimeouts int, outcomes []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hits, m.started, m.lockTimeouts, append([]string(nil), m.outcomes...)
}

type channelNotifier chan notify.AuthFailurePayload

func (c channelNotifier) NotifyAuthFailure(_ context.Context, p notify.AuthFailurePayload) { c <- p }

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return port
}

func validToken(value string) *domainauth.Token {
	return &domainauth.Token{Value: value, Expiration: time.Now().Add(time.Hour)}
}

func returnToken(value string, delay time.Duration) func(context.Context, time.Duration) (domainauth.Token, error) {
	return func(ctx context.Context, _ time.Duration) (domainauth.Token, error) {
		select {
		case <-time.After(delay):
			return *validToken(value), nil
		case <-ctx.Done():
			return domainauth.Token{}, ctx.Err()
		}
	}
}

// stubAuthenticator wires an Authenticator against gomock URL builder and browser.
func stubAuthenticator(
	t *testing.T,
	store ports.TokenStore,
	factory *fakes.StubReceiverFactory,
	opts AuthenticatorOptions,
) (*Authenticator, *mocks.MockBrowserOpener, *mocks.MockAuthorizeURLBuilder) {
	t.Helper()
	ctrl := gomock.NewController(t)
	browser := mocks.NewMockBrowserOpener(ctrl)
	urls := mocks.NewMockAuthorizeURLBuilder(ctrl)

	opts.Store = store
	opts.URLBuilder = urls
	opts.Browser = browser
	opts.NewReceiver = factory.New
	if opts.Settings == nil {
		opts.Settings = staticSettings{port: 4242, clientID: "client"}
	}
	return NewAuthenticator(opts), browser, urls
}

func TestNewAuthenticator_Defaults(t *testing.T) {
	a := NewAuthenticator(AuthenticatorOptions{})
	assert.Equal(t, DefaultLockTimeout, a.lockTimeout)
	assert.Equal(t, DefaultCallbackTimeout, a.callbackTimeout)
	assert.Equal(t, DefaultExpiryMargin, a.ExpiryMargin())
	assert.Equal(t, PhaseIdle, a.Status().Phase)

	a = NewAuthenticator(AuthenticatorOptions{ExpiryMargin: -time.Second})
	assert.Zero(t, a.ExpiryMargin())

	a = NewAuthenticator(AuthenticatorOptions{ExpiryMargin: time.Minute, LockTimeout: time.Second})
	assert.Equal(t, time.Minute, a.ExpiryMargin())
	assert.Equal(t, time.Second, a.lockTimeout)
}

func TestAuthenticator_FirstRun(t *testing.T) {
	kv := data.NewMemoryStore()
	entries := NewAuthEntries(kv, AuthEntryOptions{})
	ctx := context.Background()
	port := freePort(t)
	require.NoError(t, entries.Port.Set(ctx, port))

	builder, err := spotify.NewAuthorizeURLBuilder(ctx, spotify.AuthorizeConfig{AuthURL: spotify.DefaultAuthURL})
	require.NoError(t, err)
	browser := fakes.NewCallbackBrowser("abc123", 3600)
	metrics := &recordingMetrics{}

	auth := NewAuthenticator(AuthenticatorOptions{
		Store:       NewTokenStore(entries),
		Settings:    entries,
		URLBuilder:  builder,
		Browser:     browser,
		NewReceiver: callback.Factory(callback.DefaultHost, nil),
		Metrics:     metrics,
	})

	before := time.Now()
	value, err := auth.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abc123", value)
	assert.Empty(t, browser.Wait())

	require.Len(t, browser.URLs(), 1)
	opened, err := url.Parse(browser.URLs()[0])
	require.NoError(t, err)
	q := opened.Query()
	assert.Equal(t, "accounts.spotify.com", opened.Host)
	assert.Equal(t, DefaultClientID, q.Get("client_id"))
	assert.Equal(t, "token", q.Get("response_type"))
	assert.Equal(t, "http://localhost:"+strconv.Itoa(port)+"/callback", q.Get("redirect_uri"))
	assert.Len(t, q.Get("state"), stateLength)

	persisted, err := NewTokenStore(entries).Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, persisted)
	assert.Equal(t, "abc123", persisted.Value)
	assert.WithinDuration(t, before.Add(time.Hour), persisted.Expiration, 5*time.Second)

	status := auth.Status()
	assert.Equal(t, PhaseResolved, status.Phase)
	assert.NotEmpty(t, status.LastSessionID)
	assert.Empty(t, status.LastError)

	// The second call is served from the cache.
	value, err = auth.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abc123", value)
	assert.Equal(t, 1, browser.Launches())

	hits, started, _, outcomes := metrics.snapshot()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, started)
	assert.Equal(t, []string{"success"}, outcomes)
	metrics.mu.Lock()
	require.Len(t, metrics.ttls, 1)
	assert.InDelta(t, time.Hour.Seconds(), metrics.ttls[0].Seconds(), 5)
	metrics.mu.Unlock()

	// The listener is gone once the session resolved.
	ln, err := net.Listen("tcp", net.JoinHostPort(callback.DefaultHost, strconv.Itoa(port)))
	require.NoError(t, err)
	require.NoError(t, ln.Close())
}

func TestAuthenticator_PersistedValidToken(t *testing.T) {
	factory := &fakes.StubReceiverFactory{}
	store := fakes.NewMemoryTokenStore(validToken("persisted"))
	auth, _, _ := stubAuthenticator(t, store, factory, AuthenticatorOptions{})

	value, err := auth.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "persisted", value)
	assert.Empty(t, factory.Receivers())
	assert.Zero(t, store.Saves())
}

func TestAuthenticator_PersistedExpiredToken(t *testing.T) {
	tests := []struct {
		name string
		tok  *domainauth.Token
	}{
		{name: "expired", tok: &domainauth.Token{Value: "old", Expiration: time.Now().Add(-time.Minute)}},
		{name: "inside margin", tok: &domainauth.Token{Value: "old", Expiration: time.Now().Add(10 * time.Second)}},
		{name: "absent", tok: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			factory := &fakes.StubReceiverFactory{Wait: returnToken("fresh", 0)}
			store := fakes.NewMemoryTokenStore(tt.tok)
			auth, browser, urls := stubAuthenticator(t, store, factory, AuthenticatorOptions{})

			urls.EXPECT().
				AuthorizeURL("client", "http://localhost:4242/callback", gomock.Any()).
				Return("https://accounts.example.com/authorize", nil)
			browser.EXPECT().OpenURL("https://accounts.example.com/authorize").Return(nil).Times(1)

			value, err := auth.Token(context.Background())
			require.NoError(t, err)
			assert.Equal(t, "fresh", value)
			assert.Equal(t, []int{4242}, factory.Ports())
			assert.Equal(t, 1, store.Saves())

			persisted, err := store.Load(context.Background())
			require.NoError(t, err)
			assert.Equal(t, "fresh", persisted.Value)
		})
	}
}

func TestAuthenticator_SingleFlight(t *testing.T) {
	const callers = 8
	factory := &fakes.StubReceiverFactory{Wait: returnToken("shared", 100*time.Millisecond)}
	store := fakes.NewMemoryTokenStore(nil)
	auth, browser, urls := stubAuthenticator(t, store, factory, AuthenticatorOptions{})

	urls.EXPECT().AuthorizeURL(gomock.Any(), gomock.Any(), gomock.Any()).Return("https://auth", nil).Times(1)
	browser.EXPECT().OpenURL(gomock.Any()).Return(nil).Times(1)

	var wg sync.WaitGroup
	values := make([]string, callers)
	errs := make([]error, callers)
	for i := range callers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			values[i], errs[i] = auth.Token(context.Background())
		}(i)
	}
	wg.Wait()

	for i := range callers {
		require.NoError(t, errs[i])
		assert.Equal(t, "shared", values[i])
	}
	assert.Len(t, factory.Receivers(), 1)
	assert.Equal(t, 1, store.Saves())
}

func TestAuthenticator_LockTimeout(t *testing.T) {
	release := make(chan struct{})
	factory := &fakes.StubReceiverFactory{Wait: func(ctx context.Context, _ time.Duration) (domainauth.Token, error) {
		<-release
		return *validToken("slow"), nil
	}}
	metrics := &recordingMetrics{}
	auth, browser, urls := stubAuthenticator(t, fakes.NewMemoryTokenStore(nil), factory, AuthenticatorOptions{
		LockTimeout: 50 * time.Millisecond,
		Metrics:     metrics,
	})
	urls.EXPECT().AuthorizeURL(gomock.Any(), gomock.Any(), gomock.Any()).Return("https://auth", nil)
	browser.EXPECT().OpenURL(gomock.Any()).Return(nil)

	first := make(chan error, 1)
	go func() {
		_, err := auth.Token(context.Background())
		first <- err
	}()
	require.Eventually(t, func() bool {
		return auth.Status().Phase == PhaseAwaitingCallback
	}, 2*time.Second, 5*time.Millisecond)

	start := time.Now()
	_, err := auth.Token(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsLockTimeout(err), "got %v", err)
	assert.Less(t, time.Since(start), time.Second)

	close(release)
	require.NoError(t, <-first)

	_, _, lockTimeouts, _ := metrics.snapshot()
	assert.Equal(t, 1, lockTimeouts)
	assert.Len(t, factory.Receivers(), 1)
}

func TestAuthenticator_CanceledWhileWaitingForLock(t *testing.T) {
	release := make(chan struct{})
	factory := &fakes.StubReceiverFactory{Wait: func(context.Context, time.Duration) (domainauth.Token, error) {
		<-release
		return *validToken("v"), nil
	}}
	auth, browser, urls := stubAuthenticator(t, fakes.NewMemoryTokenStore(nil), factory, AuthenticatorOptions{})
	urls.EXPECT().AuthorizeURL(gomock.Any(), gomock.Any(), gomock.Any()).Return("https://auth", nil)
	browser.EXPECT().OpenURL(gomock.Any()).Return(nil)

	first := make(chan error, 1)
	go func() {
		_, err := auth.Token(context.Background())
		first <- err
	}()
	require.Eventually(t, func() bool {
		return auth.Status().Phase == PhaseAwaitingCallback
	}, 2*time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := auth.Token(ctx)
	assert.True(t, apperrors.IsCanceled(err), "got %v", err)

	close(release)
	require.NoError(t, <-first)
}

func TestAuthenticator_BrowserLaunchFailure(t *testing.T) {
	factory := &fakes.StubReceiverFactory{}
	store := fakes.NewMemoryTokenStore(nil)
	metrics := &recordingMetrics{}
	auth, browser, urls := stubAuthenticator(t, store, factory, AuthenticatorOptions{Metrics: metrics})

	urls.EXPECT().AuthorizeURL(gomock.Any(), gomock.Any(), gomock.Any()).Return("https://auth", nil)
	browser.EXPECT().OpenURL("https://auth").Return(errors.New("no display"))

	_, err := auth.Token(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsBrowserLaunch(err))

	receivers := factory.Receivers()
	require.Len(t, receivers, 1)
	assert.Equal(t, 1, receivers[0].Closed())
	assert.Zero(t, store.Saves())

	status := auth.Status()
	assert.Equal(t, PhaseFailed, status.Phase)
	assert.Contains(t, status.LastError, "no display")

	_, _, _, outcomes := metrics.snapshot()
	assert.Equal(t, []string{string(apperrors.ErrCodeBrowserLaunch)}, outcomes)
}

func TestAuthenticator_BrowserLaunchFailureReleasesPort(t *testing.T) {
	ctrl := gomock.NewController(t)
	browser := mocks.NewMockBrowserOpener(ctrl)
	port := freePort(t)
	ctx := context.Background()

	builder, err := spotify.NewAuthorizeURLBuilder(ctx, spotify.AuthorizeConfig{AuthURL: spotify.DefaultAuthURL})
	require.NoError(t, err)

	auth := NewAuthenticator(AuthenticatorOptions{
		Store:       fakes.NewMemoryTokenStore(nil),
		Settings:    staticSettings{port: port, clientID: "client"},
		URLBuilder:  builder,
		Browser:     browser,
		NewReceiver: callback.Factory(callback.DefaultHost, nil),
	})

	browser.EXPECT().OpenURL(gomock.Any()).Return(errors.New("no display")).Times(3)

	// Each retry must reach the browser again instead of failing to bind the callback port.
	for range 3 {
		_, err := auth.Token(ctx)
		require.Error(t, err)
		assert.True(t, apperrors.IsBrowserLaunch(err), "expected browser_launch_failed, got %v", err)
	}

	ln, err := net.Listen("tcp", net.JoinHostPort(callback.DefaultHost, strconv.Itoa(port)))
	require.NoError(t, err)
	require.NoError(t, ln.Close())
}

func TestAuthenticator_AuthorizeURLFailureClosesReceiver(t *testing.T) {
	factory := &fakes.StubReceiverFactory{}
	auth, _, urls := stubAuthenticator(t, fakes.NewMemoryTokenStore(nil), factory, AuthenticatorOptions{})
	urls.EXPECT().AuthorizeURL(gomock.Any(), gomock.Any(), gomock.Any()).Return("", errors.New("bad client"))

	_, err := auth.Token(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsInternal(err))
	assert.Equal(t, 1, factory.Receivers()[0].Closed())
}

func TestAuthenticator_SessionSetupFailures(t *testing.T) {
	t.Run("settings", func(t *testing.T) {
		factory := &fakes.StubReceiverFactory{}
		auth, _, _ := stubAuthenticator(t, fakes.NewMemoryTokenStore(nil), factory, AuthenticatorOptions{
			Settings: staticSettings{err: apperrors.ValidationField("port", "Must be between 1024 and 65535")},
		})
		_, err := auth.Token(context.Background())
		assert.True(t, apperrors.IsValidation(err))
		assert.Empty(t, factory.Ports())
	})

	t.Run("port in use", func(t *testing.T) {
		factory := &fakes.StubReceiverFactory{Err: apperrors.Internal("bind callback port 4242")}
		auth, _, _ := stubAuthenticator(t, fakes.NewMemoryTokenStore(nil), factory, AuthenticatorOptions{})
		_, err := auth.Token(context.Background())
		assert.True(t, apperrors.IsInternal(err))
		assert.Equal(t, PhaseFailed, auth.Status().Phase)
	})

	t.Run("load error", func(t *testing.T) {
		store := fakes.NewMemoryTokenStore(nil)
		store.LoadErr = apperrors.Internal("database connection failed")
		auth, _, _ := stubAuthenticator(t, store, &fakes.StubReceiverFactory{}, AuthenticatorOptions{})
		_, err := auth.Token(context.Background())
		assert.True(t, apperrors.IsInternal(err))
	})
}

func TestAuthenticator_SaveFailureIsNotCached(t *testing.T) {
	factory := &fakes.StubReceiverFactory{Wait: returnToken("unsaved", 0)}
	store := fakes.NewMemoryTokenStore(nil)
	store.SaveErr = errors.New("disk full")
	auth, browser, urls := stubAuthenticator(t, store, factory, AuthenticatorOptions{})
	urls.EXPECT().AuthorizeURL(gomock.Any(), gomock.Any(), gomock.Any()).Return("https://auth", nil)
	browser.EXPECT().OpenURL(gomock.Any()).Return(nil)

	_, err := auth.Token(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	current, err := auth.Current(context.Background())
	require.NoError(t, err)
	assert.Nil(t, current)
}

func TestAuthenticator_CorruptedPersistedTokenStartsSession(t *testing.T) {
	kv := data.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, kv.Apply(ctx, "secrets",
		ports.Mutation{Key: "auth.accessToken", Value: "old"},
		ports.Mutation{Key: "auth.tokenExpiration", Value: "not-a-number"},
	))
	entries := NewAuthEntries(kv, AuthEntryOptions{})
	factory := &fakes.StubReceiverFactory{Wait: returnToken("fresh", 0)}
	auth, browser, urls := stubAuthenticator(t, NewTokenStore(entries), factory, AuthenticatorOptions{})
	urls.EXPECT().AuthorizeURL(gomock.Any(), gomock.Any(), gomock.Any()).Return("https://auth", nil)
	browser.EXPECT().OpenURL(gomock.Any()).Return(nil)

	value, err := auth.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "fresh", value)

	persisted, err := NewTokenStore(entries).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "fresh", persisted.Value)
}

func TestAuthenticator_CallbackOutcomes(t *testing.T) {
	tests := []struct {
		name    string
		browser *fakes.CallbackBrowser
		check   func(error) bool
	}{
		{
			name:    "user never returns",
			browser: &fakes.CallbackBrowser{Skip: true},
			check:   apperrors.IsCallbackTimeout,
		},
		{
			name:    "forged state",
			browser: &fakes.CallbackBrowser{AccessToken: "evil", ExpiresIn: 3600, State: "forged"},
			check:   apperrors.IsStateMismatch,
		},
		{
			name:    "user denies",
			browser: &fakes.CallbackBrowser{Error: "access_denied"},
			check:   apperrors.IsAuthorizationDenied,
		},
		{
			name:    "bad expires_in",
			browser: &fakes.CallbackBrowser{AccessToken: "v", ExpiresIn: 0},
			check:   apperrors.IsMalformedCallback,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			port := freePort(t)
			builder, err := spotify.NewAuthorizeURLBuilder(ctx, spotify.AuthorizeConfig{AuthURL: spotify.DefaultAuthURL})
			require.NoError(t, err)
			store := fakes.NewMemoryTokenStore(nil)

			auth := NewAuthenticator(AuthenticatorOptions{
				Store:           store,
				Settings:        staticSettings{port: port, clientID: "client"},
				URLBuilder:      builder,
				Browser:         tt.browser,
				NewReceiver:     callback.Factory(callback.DefaultHost, nil),
				CallbackTimeout: 500 * time.Millisecond,
			})

			_, err = auth.Token(ctx)
			require.Error(t, err)
			assert.True(t, tt.check(err), "got %v", err)
			tt.browser.Wait()
			assert.Zero(t, store.Saves())

			ln, err := net.Listen("tcp", net.JoinHostPort(callback.DefaultHost, strconv.Itoa(port)))
			require.NoError(t, err)
			require.NoError(t, ln.Close())
		})
	}
}

func TestAuthenticator_RefreshForcesSession(t *testing.T) {
	factory := &fakes.StubReceiverFactory{Wait: returnToken("refreshed", 0)}
	store := fakes.NewMemoryTokenStore(validToken("current"))
	auth, browser, urls := stubAuthenticator(t, store, factory, AuthenticatorOptions{})
	urls.EXPECT().AuthorizeURL(gomock.Any(), gomock.Any(), gomock.Any()).Return("https://auth", nil).Times(2)
	browser.EXPECT().OpenURL(gomock.Any()).Return(nil).Times(2)

	value, err := auth.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "current", value)

	tok, err := auth.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "refreshed", tok.Value)

	assert.True(t, auth.RefreshAction(context.Background()))
	assert.Len(t, factory.Receivers(), 2)
}

func TestAuthenticator_RefreshActionFailure(t *testing.T) {
	factory := &fakes.StubReceiverFactory{}
	auth, browser, urls := stubAuthenticator(t, fakes.NewMemoryTokenStore(nil), factory, AuthenticatorOptions{})
	urls.EXPECT().AuthorizeURL(gomock.Any(), gomock.Any(), gomock.Any()).Return("https://auth", nil)
	browser.EXPECT().OpenURL(gomock.Any()).Return(errors.New("no display"))

	assert.False(t, auth.RefreshAction(context.Background()))
}

func TestAuthenticator_ClearAndRequireToken(t *testing.T) {
	store := fakes.NewMemoryTokenStore(validToken("v"))
	auth, _, _ := stubAuthenticator(t, store, &fakes.StubReceiverFactory{}, AuthenticatorOptions{})
	ctx := context.Background()

	tok, err := auth.RequireToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "v", tok.Value)

	_, err = auth.Token(ctx)
	require.NoError(t, err)
	require.NoError(t, auth.Clear(ctx))

	current, err := auth.Current(ctx)
	require.NoError(t, err)
	assert.Nil(t, current)

	_, err = auth.RequireToken(ctx)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestAuthenticator_RequireTokenExpired(t *testing.T) {
	expired := &domainauth.Token{Value: "old", Expiration: time.Now().Add(-time.Minute)}
	auth, _, _ := stubAuthenticator(t, fakes.NewMemoryTokenStore(expired), &fakes.StubReceiverFactory{}, AuthenticatorOptions{})

	_, err := auth.RequireToken(context.Background())
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	current, err := auth.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "old", current.Value)
}

func TestAuthenticator_TokenSource(t *testing.T) {
	now := testutil.TestTime()
	expiration := now.Add(time.Hour)
	store := fakes.NewMemoryTokenStore(&domainauth.Token{Value: "v", Expiration: expiration})
	auth, _, _ := stubAuthenticator(t, store, &fakes.StubReceiverFactory{}, AuthenticatorOptions{
		Now:          testutil.FixedClock(now),
		ExpiryMargin: time.Minute,
	})

	tok, err := auth.TokenSource(context.Background()).Token()
	require.NoError(t, err)
	assert.Equal(t, "v", tok.AccessToken)
	assert.Equal(t, "Bearer", tok.TokenType)
	assert.True(t, tok.Expiry.Equal(expiration.Add(-time.Minute)))
}

func TestAuthenticator_NotifiesFailedSessions(t *testing.T) {
	notes := make(channelNotifier, 4)
	factory := &fakes.StubReceiverFactory{}
	auth, browser, urls := stubAuthenticator(t, fakes.NewMemoryTokenStore(nil), factory, AuthenticatorOptions{Notifier: notes})
	urls.EXPECT().AuthorizeURL(gomock.Any(), gomock.Any(), gomock.Any()).Return("https://auth", nil)
	browser.EXPECT().OpenURL("https://auth").Return(errors.New("no display"))

	_, err := auth.Token(context.Background())
	require.Error(t, err)

	select {
	case p := <-notes:
		assert.Equal(t, string(apperrors.ErrCodeBrowserLaunch), p.Code)
		assert.Equal(t, auth.Status().LastSessionID, p.SessionID)
		assert.Equal(t, notify.SeverityCritical, p.Severity)
		assert.Equal(t, "errors_errorstring", p.ErrorClass)
		assert.Contains(t, p.Error, "no display")
		assert.Equal(t, "http://localhost:4242/callback", p.Metadata["redirect_url"])
	case <-time.After(2 * time.Second):
		t.Fatal("expected a failure notification")
	}
}

func TestAuthenticator_NotifiesCallbackTimeoutAsWarning(t *testing.T) {
	notes := make(channelNotifier, 4)
	factory := &fakes.StubReceiverFactory{Wait: func(context.Context, time.Duration) (domainauth.Token, error) {
		return domainauth.Token{}, apperrors.New(apperrors.ErrCodeCallbackTimeout, "no callback within 1m0s")
	}}
	auth, browser, urls := stubAuthenticator(t, fakes.NewMemoryTokenStore(nil), factory, AuthenticatorOptions{Notifier: notes})
	urls.EXPECT().AuthorizeURL(gomock.Any(), gomock.Any(), gomock.Any()).Return("https://auth", nil)
	browser.EXPECT().OpenURL("https://auth").Return(nil)

	_, err := auth.Token(context.Background())
	require.True(t, apperrors.IsCallbackTimeout(err))

	select {
	case p := <-notes:
		assert.Equal(t, string(apperrors.ErrCodeCallbackTimeout), p.Code)
		assert.Equal(t, notify.SeverityWarning, p.Severity)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a failure notification")
	}
}

func TestAuthenticator_CanceledSessionIsNotNotified(t *testing.T) {
	notes := make(channelNotifier, 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	factory := &fakes.StubReceiverFactory{Wait: func(ctx context.Context, _ time.Duration) (domainauth.Token, error) {
		cancel()
		<-ctx.Done()
		return domainauth.Token{}, ctx.Err()
	}}
	auth, browser, urls := stubAuthenticator(t, fakes.NewMemoryTokenStore(nil), factory, AuthenticatorOptions{Notifier: notes})
	urls.EXPECT().AuthorizeURL(gomock.Any(), gomock.Any(), gomock.Any()).Return("https://auth", nil)
	browser.EXPECT().OpenURL("https://auth").Return(nil)

	_, err := auth.Token(ctx)
	require.ErrorIs(t, err, context.Canceled)

	select {
	case p := <-notes:
		t.Fatalf("unexpected notification %+v", p)
	case <-time.After(50 * time.Millisecond):
	}
}
