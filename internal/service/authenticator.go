package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/sync/semaphore"

	domainauth "github.com/target/spotify-auth/internal/domain/auth"
	apperrors "github.com/target/spotify-auth/internal/errors"
	obserrors "github.com/target/spotify-auth/internal/observability/errors"
	"github.com/target/spotify-auth/internal/observability/notify"
	"github.com/target/spotify-auth/internal/ports"
)

const (
	DefaultLockTimeout     = 10 * time.Second
	DefaultCallbackTimeout = time.Minute
	DefaultExpiryMargin    = 30 * time.Second
)

// ErrNotAuthenticated is returned by RequireToken when no valid token is known.
var ErrNotAuthenticated = errors.New("not authenticated")

// AuthPhase is the step an authorization session is in.
type AuthPhase string

const (
	PhaseIdle             AuthPhase = "idle"
	PhaseLockAcquiring    AuthPhase = "lock_acquiring"
	PhaseBrowserLaunching AuthPhase = "browser_launching"
	PhaseAwaitingCallback AuthPhase = "awaiting_callback"
	PhaseResolved         AuthPhase = "resolved"
	PhaseFailed           AuthPhase = "failed"
)

// SessionSettings supplies the per-session values read from configuration.
type SessionSettings interface {
	CallbackPort(ctx context.Context) (int, error)
	OAuthClientID(ctx context.Context) (string, error)
}

// AuthMetrics records authorization outcomes.
type AuthMetrics interface {
	CacheHit()
	SessionStarted()
	SessionFinished(outcome string, d time.Duration)
	LockTimeout()
	TokenIssued(ttl time.Duration)
}

// FailureNotifier is told about failed authorization sessions.
type FailureNotifier interface {
	NotifyAuthFailure(ctx context.Context, payload notify.AuthFailurePayload)
}

type noopMetrics struct{}

func (noopMetrics) CacheHit()                             {}
func (noopMetrics) SessionStarted()                       {}
func (noopMetrics) SessionFinished(string, time.Duration) {}
func (noopMetrics) LockTimeout()                          {}
func (noopMetrics) TokenIssued(time.Duration)             {}

// AuthenticatorOptions groups dependencies for Authenticator.
type AuthenticatorOptions struct {
	Store       ports.TokenStore
	Settings    SessionSettings
	URLBuilder  ports.AuthorizeURLBuilder
	Browser     ports.BrowserOpener
	NewReceiver ports.ReceiverFactory

	LockTimeout     time.Duration // defaults to DefaultLockTimeout
	CallbackTimeout time.Duration // defaults to DefaultCallbackTimeout
	ExpiryMargin    time.Duration // defaults to DefaultExpiryMargin

	Metrics  AuthMetrics
	Notifier FailureNotifier // Optional
	Logger   *slog.Logger
	Now      func() time.Time
}

// AuthStatus is a snapshot for status surfaces.
type AuthStatus struct {
	Phase         AuthPhase
	LastSessionID string
	LastError     string
}

// Authenticator hands out a valid access token, running the browser-based
// implicit grant when none is cached or persisted. At most one authorization
// session runs at a time; callers wait at most LockTimeout for it.
type Authenticator struct {
	store       ports.TokenStore
	settings    SessionSettings
	urls        ports.AuthorizeURLBuilder
	browser     ports.BrowserOpener
	newReceiver ports.ReceiverFactory

	lockTimeout     time.Duration
	callbackTimeout time.Duration
	margin          time.Duration

	metrics  AuthMetrics
	notifier FailureNotifier
	logger   *slog.Logger
	now      func() time.Time

	sem *semaphore.Weighted

	mu     sync.RWMutex
	cached *domainauth.Token
	status AuthStatus
}

var _ ports.TokenProvider = (*Authenticator)(nil)

// NewAuthenticator constructs an Authenticator.
func NewAuthenticator(opts AuthenticatorOptions) *Authenticator {
	a := &Authenticator{
		store:           opts.Store,
		settings:        opts.Settings,
		urls:            opts.URLBuilder,
		browser:         opts.Browser,
		newReceiver:     opts.NewReceiver,
		lockTimeout:     opts.LockTimeout,
		callbackTimeout: opts.CallbackTimeout,
		margin:          opts.ExpiryMargin,
		metrics:         opts.Metrics,
		notifier:        opts.Notifier,
		logger:          opts.Logger,
		now:             opts.Now,
		sem:             semaphore.NewWeighted(1),
		status:          AuthStatus{Phase: PhaseIdle},
	}
	if a.lockTimeout <= 0 {
		a.lockTimeout = DefaultLockTimeout
	}
	if a.callbackTimeout <= 0 {
		a.callbackTimeout = DefaultCallbackTimeout
	}
	switch {
	case opts.ExpiryMargin < 0:
		a.margin = 0
	case opts.ExpiryMargin == 0:
		a.margin = DefaultExpiryMargin
	}
	if a.metrics == nil {
		a.metrics = noopMetrics{}
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	a.logger = a.logger.With("component", "authenticator")
	if a.now == nil {
		a.now = time.Now
	}
	return a
}

// Token returns a valid access token value.
func (a *Authenticator) Token(ctx context.Context) (string, error) {
	tok, err := a.ValidToken(ctx)
	if err != nil {
		return "", err
	}
	return tok.Value, nil
}

// ValidToken returns a token that stays valid for at least the expiry margin.
// A cached token is returned without locking; otherwise an authorization cycle runs.
func (a *Authenticator) ValidToken(ctx context.Context) (domainauth.Token, error) {
	if tok, ok := a.cachedValid(); ok {
		a.metrics.CacheHit()
		return tok, nil
	}
	return a.authorize(ctx, false)
}

// Refresh runs an authorization session even if a valid token exists.
func (a *Authenticator) Refresh(ctx context.Context) (domainauth.Token, error) {
	return a.authorize(ctx, true)
}

// RefreshAction runs Refresh for a UI action and reports success instead of failing.
func (a *Authenticator) RefreshAction(ctx context.Context) bool {
	if _, err := a.Refresh(ctx); err != nil {
		a.logger.WarnContext(ctx, "manual token refresh failed", "error", err, "code", apperrors.GetCode(err))
		return false
	}
	return true
}

// Current returns the cached or persisted token without starting a session.
// It returns nil when no token is known; the token may be expired.
func (a *Authenticator) Current(ctx context.Context) (*domainauth.Token, error) {
	a.mu.RLock()
	cached := a.cached
	a.mu.RUnlock()
	if cached != nil {
		tok := *cached
		return &tok, nil
	}
	return a.loadPersisted(ctx)
}

// Clear forgets the cached token and removes the persisted one.
func (a *Authenticator) Clear(ctx context.Context) error {
	if err := a.acquire(ctx); err != nil {
		return err
	}
	defer a.sem.Release(1)

	if err := a.store.Save(ctx, nil); err != nil {
		return err
	}
	a.setCached(nil)
	a.logger.InfoContext(ctx, "token cleared")
	return nil
}

// Status reports the phase of the current or last session.
func (a *Authenticator) Status() AuthStatus {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.status
}

// ExpiryMargin is the safety margin applied to token validity.
func (a *Authenticator) ExpiryMargin() time.Duration { return a.margin }

func (a *Authenticator) authorize(ctx context.Context, force bool) (domainauth.Token, error) {
	if err := a.acquire(ctx); err != nil {
		return domainauth.Token{}, err
	}
	defer a.sem.Release(1)

	if !force {
		if tok, ok := a.cachedValid(); ok {
			return tok, nil
		}
		persisted, err := a.loadPersisted(ctx)
		if err != nil {
			return domainauth.Token{}, err
		}
		if persisted != nil && persisted.Valid(a.now(), a.margin) {
			a.setCached(persisted)
			a.logger.DebugContext(ctx, "using persisted token", "expires_at", persisted.Expiration)
			return *persisted, nil
		}
	}

	return a.runSession(ctx)
}

// acquire takes the session lock, waiting at most lockTimeout.
func (a *Authenticator) acquire(ctx context.Context) error {
	a.logger.DebugContext(ctx, "acquiring authorization lock", "phase", PhaseLockAcquiring)
	lockCtx, cancel := context.WithTimeout(ctx, a.lockTimeout)
	defer cancel()

	if err := a.sem.Acquire(lockCtx, 1); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return apperrors.Wrap(ctxErr, apperrors.ErrCodeCanceled, "waiting for authorization lock")
		}
		a.metrics.LockTimeout()
		return apperrors.Newf(apperrors.ErrCodeLockTimeout,
			"another authorization session is still running after %s", a.lockTimeout)
	}
	return nil
}

func (a *Authenticator) runSession(ctx context.Context) (tok domainauth.Token, err error) {
	session := domainauth.Session{ID: uuid.NewString(), StartedAt: a.now()}
	logger := a.logger.With("session_id", session.ID)
	a.metrics.SessionStarted()

	defer func() {
		outcome := "success"
		phase := PhaseResolved
		if err != nil {
			outcome = string(apperrors.GetCode(err))
			if outcome == "" {
				outcome = string(apperrors.ErrCodeInternal)
			}
			phase = PhaseFailed
			logger.WarnContext(ctx, "authorization session failed", "error", err, "code", outcome)
		}
		a.setPhase(session.ID, phase, err)
		a.metrics.SessionFinished(outcome, a.now().Sub(session.StartedAt))
		if err != nil {
			a.notifyFailure(ctx, session, outcome, err)
		}
	}()

	session.State, err = GenerateState()
	if err != nil {
		return domainauth.Token{}, apperrors.Wrap(err, apperrors.ErrCodeInternal, "generate state")
	}
	port, err := a.settings.CallbackPort(ctx)
	if err != nil {
		return domainauth.Token{}, fmt.Errorf("read callback port: %w", err)
	}
	clientID, err := a.settings.OAuthClientID(ctx)
	if err != nil {
		return domainauth.Token{}, fmt.Errorf("read client id: %w", err)
	}

	receiver, err := a.newReceiver(port, session.State)
	if err != nil {
		return domainauth.Token{}, fmt.Errorf("start callback receiver: %w", err)
	}
	session.RedirectURL = receiver.RedirectURL()

	authURL, err := a.urls.AuthorizeURL(clientID, session.RedirectURL, session.State)
	if err != nil {
		closeReceiver(logger, receiver)
		return domainauth.Token{}, apperrors.Wrap(err, apperrors.ErrCodeInternal, "build authorize URL")
	}

	a.setPhase(session.ID, PhaseBrowserLaunching, nil)
	logger.InfoContext(ctx, "opening browser for authorization", "redirect_url", session.RedirectURL)
	if openErr := a.browser.OpenURL(authURL); openErr != nil {
		closeReceiver(logger, receiver)
		return domainauth.Token{}, apperrors.Wrap(openErr, apperrors.ErrCodeBrowserLaunch, "open authorization URL in browser")
	}

	a.setPhase(session.ID, PhaseAwaitingCallback, nil)
	tok, err = receiver.WaitForToken(ctx, a.callbackTimeout)
	if err != nil {
		return domainauth.Token{}, err
	}

	if saveErr := a.store.Save(ctx, &tok); saveErr != nil {
		return domainauth.Token{}, saveErr
	}
	a.setCached(&tok)
	a.metrics.TokenIssued(tok.Expiration.Sub(a.now()))
	logger.InfoContext(ctx, "authorization completed", "expires_at", tok.Expiration)
	return tok, nil
}

// notifyFailure delivers in the background so the session lock is not held
// while sinks retry. Sessions ended by cancellation are not reported.
func (a *Authenticator) notifyFailure(ctx context.Context, session domainauth.Session, code string, err error) {
	if a.notifier == nil || errors.Is(err, context.Canceled) || apperrors.IsCanceled(err) {
		return
	}
	payload := notify.AuthFailurePayload{
		SessionID:  session.ID,
		Code:       code,
		Error:      err.Error(),
		ErrorClass: obserrors.Classify(err),
		Severity:   notify.SeverityCritical,
		OccurredAt: a.now(),
	}
	if apperrors.IsCallbackTimeout(err) {
		payload.Severity = notify.SeverityWarning
	}
	if session.RedirectURL != "" {
		payload.Metadata = map[string]string{"redirect_url": session.RedirectURL}
	}
	go a.notifier.NotifyAuthFailure(context.WithoutCancel(ctx), payload)
}

// loadPersisted treats an undecodable persisted token as absent.
func (a *Authenticator) loadPersisted(ctx context.Context) (*domainauth.Token, error) {
	tok, err := a.store.Load(ctx)
	if err != nil {
		if apperrors.IsSerialization(err) {
			a.logger.WarnContext(ctx, "ignoring corrupted persisted token", "error", err)
			return nil, nil
		}
		return nil, err
	}
	return tok, nil
}

func (a *Authenticator) cachedValid() (domainauth.Token, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.cached == nil || !a.cached.Valid(a.now(), a.margin) {
		return domainauth.Token{}, false
	}
	return *a.cached, true
}

func (a *Authenticator) setCached(tok *domainauth.Token) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if tok == nil {
		a.cached = nil
		return
	}
	cp := *tok
	a.cached = &cp
}

func (a *Authenticator) setPhase(sessionID string, phase AuthPhase, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.status = AuthStatus{Phase: phase, LastSessionID: sessionID}
	if err != nil {
		a.status.LastError = err.Error()
	}
}

func closeReceiver(logger *slog.Logger, r ports.CallbackReceiver) {
	if err := r.Close(); err != nil {
		logger.Warn("failed to close callback receiver", "error", err)
	}
}

// TokenSource adapts the Authenticator to oauth2.TokenSource. The reported expiry
// includes the safety margin so oauth2.ReuseTokenSource asks again in time.
func (a *Authenticator) TokenSource(ctx context.Context) oauth2.TokenSource {
	return &tokenSource{ctx: ctx, auth: a}
}

type tokenSource struct {
	ctx  context.Context
	auth *Authenticator
}

func (s *tokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.auth.ValidToken(s.ctx)
	if err != nil {
		return nil, err
	}
	return &oauth2.Token{
		AccessToken: tok.Value,
		TokenType:   "Bearer",
		Expiry:      tok.Expiration.Add(-s.auth.margin),
	}, nil
}

// RequireToken returns the current token or an error when no valid token is known,
// without starting a session.
func (a *Authenticator) RequireToken(ctx context.Context) (domainauth.Token, error) {
	tok, err := a.Current(ctx)
	if err != nil {
		return domainauth.Token{}, err
	}
	if tok == nil || !tok.Valid(a.now(), a.margin) {
		return domainauth.Token{}, ErrNotAuthenticated
	}
	return *tok, nil
}
