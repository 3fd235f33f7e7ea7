package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestConstructors_KindAndStatus(t *testing.T) {
	cases := []struct {
		name   string
		err    *AppError
		kind   error
		status int
	}{
		{"auth missing", AuthMissing("token required"), ErrAuthMissing, 401},
		{"auth invalid", AuthInvalid("bad signature"), ErrAuthInvalid, 403},
		{"forbidden", Forbidden("admins only"), ErrForbidden, 403},
		{"not found", NotFound("user not found"), ErrNotFound, 404},
		{"bad request", BadRequest("missing field"), ErrBadRequest, 400},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if !errors.Is(tc.err, tc.kind) {
				t.Errorf("errors.Is() = false, want kind %v", tc.kind)
			}
			if tc.err.Status != tc.status {
				t.Errorf("Status = %d, want %d", tc.err.Status, tc.status)
			}
			if tc.err.Stack == "" {
				t.Error("Stack was not captured")
			}
		})
	}
}

func TestStorage_CarriesQuery(t *testing.T) {
	cause := errors.New("no such column: shoe_size")
	e := Storage(cause, "UPDATE users SET shoe_size = ?")

	if !errors.Is(e, ErrStorageFailure) {
		t.Error("Storage() should wrap ErrStorageFailure")
	}
	if e.Query != "UPDATE users SET shoe_size = ?" {
		t.Errorf("Query = %q", e.Query)
	}
	if e.Details == "" {
		t.Error("Details should carry the database error text")
	}
}

func TestAppError_UnwrapsThroughWrapping(t *testing.T) {
	e := NotFound("order not found")
	wrapped := fmt.Errorf("fetching order: %w", e)

	if !errors.Is(wrapped, ErrNotFound) {
		t.Error("errors.Is should see ErrNotFound through fmt.Errorf wrapping")
	}

	var app *AppError
	if !errors.As(wrapped, &app) {
		t.Fatal("errors.As should extract *AppError")
	}
	if app.Status != 404 {
		t.Errorf("Status = %d, want 404", app.Status)
	}
}
