package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	domainauth "github.com/target/spotify-auth/internal/domain/auth"
	"github.com/target/spotify-auth/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.BrowserOpener    = (*CallbackBrowser)(nil)
	_ ports.CallbackReceiver = (*StubReceiver)(nil)
	_ ports.TokenStore       = (*MemoryTokenStore)(nil)
	_ ports.InitStateWriter  = (*RecordingStateWriter)(nil)
)

// CallbackBrowser plays the user's browser: on OpenURL it reads redirect_uri and
// state from the authorize URL and completes the two-hop callback in the background.
type CallbackBrowser struct {
	AccessToken string
	ExpiresIn   int
	// Error makes the provider redirect back with an error instead of a token.
	Error string
	// State overrides the echoed state when non-empty.
	State string
	// Delay is waited before the first hop.
	Delay time.Duration
	// Fail is returned from OpenURL without performing the callback.
	Fail error
	// Skip opens nothing, as if the user closed the tab.
	Skip bool

	Client *http.Client

	launches atomic.Int32
	mu       sync.Mutex
	urls     []string
	errs     []error
	wg       sync.WaitGroup
}

// NewCallbackBrowser returns a browser that answers with accessToken valid for expiresIn seconds.
func NewCallbackBrowser(accessToken string, expiresIn int) *CallbackBrowser {
	return &CallbackBrowser{AccessToken: accessToken, ExpiresIn: expiresIn}
}

func (b *CallbackBrowser) OpenURL(raw string) error {
	b.launches.Add(1)
	b.mu.Lock()
	b.urls = append(b.urls, raw)
	b.mu.Unlock()

	if b.Fail != nil {
		return b.Fail
	}
	if b.Skip {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	q := u.Query()
	redirect := q.Get("redirect_uri")
	if redirect == "" {
		return errors.New("authorize URL has no redirect_uri")
	}
	state := q.Get("state")
	if b.State != "" {
		state = b.State
	}

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		if err := b.complete(redirect, state); err != nil {
			b.mu.Lock()
			b.errs = append(b.errs, err)
			b.mu.Unlock()
		}
	}()
	return nil
}

func (b *CallbackBrowser) complete(redirect, state string) error {
	if b.Delay > 0 {
		time.Sleep(b.Delay)
	}
	client := b.Client
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}

	// The provider lands on the redirect URL with the token in the fragment,
	// which the browser never sends; it only fetches the forwarder page.
	resp, err := client.Get(redirect)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()

	form := url.Values{"state": {state}}
	if b.Error != "" {
		form.Set("error", b.Error)
	} else {
		form.Set("access_token", b.AccessToken)
		form.Set("token_type", "Bearer")
		form.Set("expires_in", strconv.Itoa(b.ExpiresIn))
	}
	resp, err = client.PostForm(redirect, form)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.Body.Close()
}

// Launches reports how many times OpenURL was called.
func (b *CallbackBrowser) Launches() int { return int(b.launches.Load()) }

// URLs returns the opened URLs in order.
func (b *CallbackBrowser) URLs() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.urls...)
}

// Wait blocks until background callbacks finish and returns their errors.
func (b *CallbackBrowser) Wait() []error {
	b.wg.Wait()
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]error(nil), b.errs...)
}

// StubReceiver is a CallbackReceiver whose outcome is decided by Wait.
type StubReceiver struct {
	URL  string
	Wait func(ctx context.Context, timeout time.Duration) (domainauth.Token, error)

	closed atomic.Int32
}

func (r *StubReceiver) RedirectURL() string { return r.URL }

func (r *StubReceiver) WaitForToken(ctx context.Context, timeout time.Duration) (domainauth.Token, error) {
	defer func() { _ = r.Close() }()
	if r.Wait == nil {
		return domainauth.Token{}, errors.New("stub receiver has no outcome")
	}
	return r.Wait(ctx, timeout)
}

func (r *StubReceiver) Close() error {
	r.closed.Add(1)
	return nil
}

// Closed reports how many times Close was called.
func (r *StubReceiver) Closed() int { return int(r.closed.Load()) }

// StubReceiverFactory hands out StubReceivers and records the requested ports.
type StubReceiverFactory struct {
	// Wait is installed on every receiver created.
	Wait func(ctx context.Context, timeout time.Duration) (domainauth.Token, error)
	// Err fails receiver creation, as if the port were taken.
	Err error

	mu        sync.Mutex
	receivers []*StubReceiver
	ports     []int
}

// New implements ports.ReceiverFactory.
func (f *StubReceiverFactory) New(port int, _ string) (ports.CallbackReceiver, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ports = append(f.ports, port)
	if f.Err != nil {
		return nil, f.Err
	}
	r := &StubReceiver{URL: "http://localhost:" + strconv.Itoa(port) + "/callback", Wait: f.Wait}
	f.receivers = append(f.receivers, r)
	return r, nil
}

// Receivers returns the receivers created so far.
func (f *StubReceiverFactory) Receivers() []*StubReceiver {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*StubReceiver(nil), f.receivers...)
}

// Ports returns the ports receivers were requested on.
func (f *StubReceiverFactory) Ports() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.ports...)
}

// MemoryTokenStore is an in-memory TokenStore for unit tests.
type MemoryTokenStore struct {
	mu    sync.Mutex
	tok   *domainauth.Token
	saves int

	LoadErr error
	SaveErr error
}

// NewMemoryTokenStore creates a store holding tok, which may be nil.
func NewMemoryTokenStore(tok *domainauth.Token) *MemoryTokenStore {
	s := &MemoryTokenStore{}
	if tok != nil {
		cp := *tok
		s.tok = &cp
	}
	return s
}

func (s *MemoryTokenStore) Load(_ context.Context) (*domainauth.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.LoadErr != nil {
		return nil, s.LoadErr
	}
	if s.tok == nil {
		return nil, nil
	}
	cp := *s.tok
	return &cp, nil
}

func (s *MemoryTokenStore) Save(_ context.Context, tok *domainauth.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.saves++
	if tok == nil {
		s.tok = nil
		return nil
	}
	cp := *tok
	s.tok = &cp
	return nil
}

// Saves reports how many successful Save calls were made.
func (s *MemoryTokenStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

// RecordingStateWriter collects plugin initialization progress.
type RecordingStateWriter struct {
	mu       sync.Mutex
	States   []string
	Warnings []string
}

func (w *RecordingStateWriter) State(msg string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.States = append(w.States, msg)
}

func (w *RecordingStateWriter) Warning(msg string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.Warnings = append(w.Warnings, msg)
}

// Snapshot returns copies of the recorded states and warnings.
func (w *RecordingStateWriter) Snapshot() (states, warnings []string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.States...), append([]string(nil), w.Warnings...)
}
