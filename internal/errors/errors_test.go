package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "error without cause",
			err: &AppError{
				Code:    ErrCodeNotFound,
				Message: "entry not found",
			},
			want: "entry not found",
		},
		{
			name: "error with cause",
			err: &AppError{
				Code:    ErrCodeInternal,
				Message: "failed to persist token",
				Cause:   errors.New("underlying error"),
			},
			want: "failed to persist token: underlying error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("AppError.Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := &AppError{
		Code:    ErrCodeInternal,
		Message: "wrapped error",
		Cause:   cause,
	}

	if unwrapped := err.Unwrap(); !errors.Is(unwrapped, cause) {
		t.Errorf("AppError.Unwrap() = %v, want %v", unwrapped, cause)
	}
}

func TestNotFoundf(t *testing.T) {
	err := NotFoundf("entry %s not found", "port")
	if err.Code != ErrCodeNotFound {
		t.Errorf("NotFoundf().Code = %v, want %v", err.Code, ErrCodeNotFound)
	}
	if err.Message != "entry port not found" {
		t.Errorf("NotFoundf().Message = %v, want %v", err.Message, "entry port not found")
	}
}

func TestValidationField(t *testing.T) {
	err := ValidationField("port", "must be between 1024 and 65535")
	if err.Code != ErrCodeValidation {
		t.Errorf("ValidationField().Code = %v, want %v", err.Code, ErrCodeValidation)
	}
	if err.Field != "port" {
		t.Errorf("ValidationField().Field = %v, want %v", err.Field, "port")
	}
}

func TestSerialization(t *testing.T) {
	cause := errors.New("not a number")
	err := Serialization("tokenExpiration", cause)
	if !IsSerialization(err) {
		t.Fatalf("Serialization() should have code %v, got %v", ErrCodeSerialization, err.Code)
	}
	if GetField(err) != "tokenExpiration" {
		t.Errorf("GetField() = %v, want tokenExpiration", GetField(err))
	}
	if !errors.Is(err, cause) {
		t.Errorf("Serialization() should wrap cause")
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, ErrCodeBrowserLaunch, "open browser")
	if err.Code != ErrCodeBrowserLaunch {
		t.Errorf("Wrap().Code = %v, want %v", err.Code, ErrCodeBrowserLaunch)
	}
	if !errors.Is(err, cause) {
		t.Errorf("Wrap() should preserve cause")
	}
}

func TestWrap_NilError(t *testing.T) {
	if err := Wrap(nil, ErrCodeInternal, "nothing"); err != nil {
		t.Errorf("Wrap(nil) = %v, want nil", err)
	}
	if err := Wrapf(nil, ErrCodeInternal, "nothing %d", 1); err != nil {
		t.Errorf("Wrapf(nil) = %v, want nil", err)
	}
}

func TestAuthPredicates(t *testing.T) {
	tests := []struct {
		name  string
		code  ErrorCode
		check func(error) bool
	}{
		{name: "lock timeout", code: ErrCodeLockTimeout, check: IsLockTimeout},
		{name: "browser launch", code: ErrCodeBrowserLaunch, check: IsBrowserLaunch},
		{name: "callback timeout", code: ErrCodeCallbackTimeout, check: IsCallbackTimeout},
		{name: "state mismatch", code: ErrCodeStateMismatch, check: IsStateMismatch},
		{name: "malformed callback", code: ErrCodeMalformedCallback, check: IsMalformedCallback},
		{name: "authorization denied", code: ErrCodeAuthorizationDenied, check: IsAuthorizationDenied},
		{name: "serialization", code: ErrCodeSerialization, check: IsSerialization},
		{name: "timeout", code: ErrCodeTimeout, check: IsTimeout},
		{name: "canceled", code: ErrCodeCanceled, check: IsCanceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, "boom")
			if !tt.check(err) {
				t.Errorf("predicate should match %v", tt.code)
			}
			wrapped := fmt.Errorf("authorize: %w", err)
			if !tt.check(wrapped) {
				t.Errorf("predicate should match wrapped %v", tt.code)
			}
			if tt.check(errors.New("plain")) {
				t.Errorf("predicate should not match plain error")
			}
			if tt.check(Internal("other")) && tt.code != ErrCodeInternal {
				t.Errorf("predicate should not match other codes")
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{name: "app error", err: New(ErrCodeStateMismatch, "x"), want: ErrCodeStateMismatch},
		{name: "wrapped app error", err: fmt.Errorf("ctx: %w", NotFound("x")), want: ErrCodeNotFound},
		{name: "plain error", err: errors.New("x"), want: ""},
		{name: "nil", err: nil, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.want {
				t.Errorf("GetCode() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetField(t *testing.T) {
	if got := GetField(Validation("x")); got != "" {
		t.Errorf("GetField() = %q, want empty", got)
	}
	if got := GetField(errors.New("x")); got != "" {
		t.Errorf("GetField() = %q, want empty", got)
	}
}
