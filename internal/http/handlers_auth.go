package httpx

import (
	"context"
	"net/http"
	"time"

	domainauth "github.com/target/spotify-auth/internal/domain/auth"
	"github.com/target/spotify-auth/internal/service"
)

// AuthService is the authenticator surface used by the management API.
type AuthService interface {
	Status() service.AuthStatus
	Current(ctx context.Context) (*domainauth.Token, error)
	RefreshAction(ctx context.Context) bool
	ExpiryMargin() time.Duration
}

// AuthHandlers serves the token status and the manual refresh action.
type AuthHandlers struct {
	Svc AuthService
	Now func() time.Time
}

type authStatusResponse struct {
	Phase         service.AuthPhase `json:"phase"`
	LastSessionID string            `json:"last_session_id,omitempty"`
	LastError     string            `json:"last_error,omitempty"`
	Authenticated bool              `json:"authenticated"`
	ExpiresAt     *time.Time        `json:"expires_at,omitempty"`
}

type actionResponse struct {
	Status string `json:"status"`
}

func actionStatus(ok bool) actionResponse {
	if ok {
		return actionResponse{Status: "success"}
	}
	return actionResponse{Status: "failed"}
}

func (h *AuthHandlers) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// Status reports the session phase and whether a valid token is known.
// It never starts an authorization session.
func (h *AuthHandlers) Status(w http.ResponseWriter, r *http.Request) {
	st := h.Svc.Status()
	resp := authStatusResponse{
		Phase:         st.Phase,
		LastSessionID: st.LastSessionID,
		LastError:     st.LastError,
	}

	tok, err := h.Svc.Current(r.Context())
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	if tok != nil {
		exp := tok.Expiration
		resp.ExpiresAt = &exp
		resp.Authenticated = tok.Valid(h.now(), h.Svc.ExpiryMargin())
	}
	WriteJSON(w, http.StatusOK, resp)
}

// Refresh forces a new authorization session. Failures are reported in the
// body with a 200 status, like the refresh button of the config UI.
func (h *AuthHandlers) Refresh(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, actionStatus(h.Svc.RefreshAction(r.Context())))
}
