// Package callback implements the single-use local HTTP listener that captures the
// implicit-grant redirect. The token arrives in the URL fragment, which browsers never
// send to servers, so the first hop serves a page that posts the fragment back.
package callback

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/netutil"

	domainauth "github.com/target/spotify-auth/internal/domain/auth"
	apperrors "github.com/target/spotify-auth/internal/errors"
	"github.com/target/spotify-auth/internal/ports"
)

const (
	// Path is the only route served by the receiver.
	Path = "/callback"

	// DefaultHost keeps the listener off external interfaces.
	DefaultHost = "127.0.0.1"

	MinPort = 1024
	MaxPort = 65535

	maxBodyBytes    = 64 << 10
	maxConns        = 8
	shutdownTimeout = 2 * time.Second
)

// Options configures a Receiver.
type Options struct {
	Host          string
	Port          int
	ExpectedState string
	Logger        *slog.Logger
	// Now defaults to time.Now; the token expiration is computed from it.
	Now func() time.Time
}

type outcome struct {
	token domainauth.Token
	err   error
}

// Receiver listens on the callback port until the first callback resolves it.
type Receiver struct {
	port          int
	expectedState string
	logger        *slog.Logger
	now           func() time.Time

	server   *http.Server
	listener net.Listener

	resolveOnce sync.Once
	done        chan struct{}
	result      outcome

	closeOnce sync.Once
	closeErr  error
}

var _ ports.CallbackReceiver = (*Receiver)(nil)

// New binds host:port and starts serving. The port is listening when New returns.
func New(opts Options) (*Receiver, error) {
	if opts.Port < MinPort || opts.Port > MaxPort {
		return nil, apperrors.ValidationField("port", fmt.Sprintf("must be between %d and %d", MinPort, MaxPort))
	}
	if opts.ExpectedState == "" {
		return nil, apperrors.ValidationField("state", "expected state cannot be empty")
	}
	host := opts.Host
	if host == "" {
		host = DefaultHost
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	ln, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(opts.Port)))
	if err != nil {
		return nil, apperrors.Wrapf(err, apperrors.ErrCodeInternal, "bind callback port %d", opts.Port)
	}

	r := &Receiver{
		port:          opts.Port,
		expectedState: opts.ExpectedState,
		logger:        logger.With("component", "callback_receiver", "port", opts.Port),
		now:           now,
		done:          make(chan struct{}),
		listener:      netutil.LimitListener(ln, maxConns),
	}

	mux := http.NewServeMux()
	mux.HandleFunc(Path, r.handleCallback)
	r.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
	}

	go func() {
		if serveErr := r.server.Serve(r.listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			r.resolve(outcome{err: apperrors.Wrap(serveErr, apperrors.ErrCodeInternal, "callback server failed")})
		}
	}()

	r.logger.Debug("callback receiver listening", "addr", ln.Addr().String())
	return r, nil
}

// Factory returns a ports.ReceiverFactory that binds receivers on host.
func Factory(host string, logger *slog.Logger) ports.ReceiverFactory {
	return func(port int, expectedState string) (ports.CallbackReceiver, error) {
		return New(Options{Host: host, Port: port, ExpectedState: expectedState, Logger: logger})
	}
}

// RedirectURL is the URL registered with the provider for this receiver.
func (r *Receiver) RedirectURL() string {
	return fmt.Sprintf("http://localhost:%d%s", r.port, Path)
}

// WaitForToken blocks until the first callback, the timeout or ctx cancellation,
// whichever happens first. The listener is always shut down before it returns.
func (r *Receiver) WaitForToken(ctx context.Context, timeout time.Duration) (domainauth.Token, error) {
	defer func() {
		if err := r.Close(); err != nil {
			r.logger.Warn("failed to close callback receiver", "error", err)
		}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-r.done:
	case <-timer.C:
		r.resolve(outcome{err: apperrors.Newf(apperrors.ErrCodeCallbackTimeout,
			"no authorization callback received within %s", timeout)})
	case <-ctx.Done():
		r.resolve(outcome{err: apperrors.Wrap(ctx.Err(), apperrors.ErrCodeCanceled, "authorization wait canceled")})
	}

	<-r.done
	return r.result.token, r.result.err
}

// Close shuts the server down, releases the port and resolves a pending wait as canceled.
// The port is free when Close returns. Safe to call more than once.
func (r *Receiver) Close() error {
	r.closeOnce.Do(func() {
		r.resolve(outcome{err: apperrors.New(apperrors.ErrCodeCanceled, "callback receiver closed")})

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := r.server.Shutdown(ctx); err != nil {
			r.closeErr = fmt.Errorf("shutdown callback server: %w", err)
			_ = r.server.Close()
		}
		// Serve may not have registered the listener yet, in which case Shutdown left it open.
		if err := r.listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			r.closeErr = errors.Join(r.closeErr, fmt.Errorf("close callback listener: %w", err))
		}
	})
	return r.closeErr
}

// resolve records o unless an outcome was already recorded, and reports whether o won.
func (r *Receiver) resolve(o outcome) bool {
	won := false
	r.resolveOnce.Do(func() {
		r.result = o
		won = true
		close(r.done)
	})
	return won
}

func (r *Receiver) resolved() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}

func (r *Receiver) handleCallback(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet && req.Method != http.MethodPost {
		w.Header().Set("Allow", "GET, POST")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if r.resolved() {
		r.respond(w, req, http.StatusOK, alreadyCompletedMessage)
		return
	}
	if req.Method == http.MethodGet && req.URL.RawQuery == "" {
		writeForwarderPage(w)
		return
	}

	req.Body = http.MaxBytesReader(w, req.Body, maxBodyBytes)
	if err := req.ParseForm(); err != nil {
		r.respond(w, req, http.StatusBadRequest, "Could not read the authorization response.")
		return
	}

	proposed := r.evaluate(req.Form)
	if !r.resolve(proposed) {
		r.respond(w, req, http.StatusOK, alreadyCompletedMessage)
		return
	}

	if proposed.err != nil {
		r.logger.Warn("authorization callback rejected",
			"code", apperrors.GetCode(proposed.err), "method", req.Method)
		r.respond(w, req, http.StatusBadRequest, "Authentication failed: "+proposed.err.Error())
		return
	}
	r.logger.Info("authorization callback accepted", "expires_at", proposed.token.Expiration)
	r.respond(w, req, http.StatusOK, successMessage)
}

// evaluate turns callback parameters into an outcome.
func (r *Receiver) evaluate(values url.Values) outcome {
	accessToken := values.Get("access_token")
	state := values.Get("state")
	providerErr := values.Get("error")

	if accessToken == "" && state == "" && providerErr == "" {
		return outcome{err: apperrors.New(apperrors.ErrCodeMalformedCallback, "callback carried no authorization response")}
	}
	if subtle.ConstantTimeCompare([]byte(state), []byte(r.expectedState)) != 1 {
		return outcome{err: apperrors.New(apperrors.ErrCodeStateMismatch, "callback state does not match the session")}
	}
	if providerErr != "" {
		msg := providerErr
		if desc := values.Get("error_description"); desc != "" {
			msg += ": " + desc
		}
		return outcome{err: apperrors.Newf(apperrors.ErrCodeAuthorizationDenied, "authorization denied (%s)", msg)}
	}
	if accessToken == "" {
		return outcome{err: apperrors.New(apperrors.ErrCodeMalformedCallback, "callback is missing access_token")}
	}
	expiresIn, err := strconv.Atoi(strings.TrimSpace(values.Get("expires_in")))
	if err != nil || expiresIn <= 0 {
		return outcome{err: apperrors.Newf(apperrors.ErrCodeMalformedCallback,
			"callback has invalid expires_in %q", values.Get("expires_in"))}
	}
	return outcome{token: domainauth.NewToken(accessToken, r.now(), time.Duration(expiresIn)*time.Second)}
}
