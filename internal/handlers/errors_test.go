package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"pantrypal/internal/apperr"
)

func TestWriteErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "not found", err: apperr.NotFound("household_not_found", "household does not exist"), wantStatus: http.StatusNotFound, wantCode: "household_not_found"},
		{name: "forbidden", err: apperr.Forbidden("not_member", "you are not a member"), wantStatus: http.StatusForbidden, wantCode: "not_member"},
		{name: "bad credentials", err: apperr.Forbidden("invalid_credentials", "invalid email or password"), wantStatus: http.StatusUnauthorized, wantCode: "invalid_credentials"},
		{name: "conflict", err: apperr.Conflict("member_exists", "already a member"), wantStatus: http.StatusConflict, wantCode: "member_exists"},
		{name: "state conflict", err: apperr.StateConflict("invitation_expired", "invitation has expired"), wantStatus: http.StatusConflict, wantCode: "invitation_expired"},
		{name: "validation", err: apperr.Validation("invalid_email", "invalid email format"), wantStatus: http.StatusBadRequest, wantCode: "invalid_email"},
		{name: "infrastructure", err: errors.New("dial tcp: connection refused"), wantStatus: http.StatusInternalServerError, wantCode: ""},
		{name: "wrapped taxonomy error", err: fmt.Errorf("accepting: %w", apperr.StateConflict("invitation_not_pending", "no longer pending")), wantStatus: http.StatusConflict, wantCode: "invitation_not_pending"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var body errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("response is not JSON: %v", err)
			}
			if body.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", body.Code, tt.wantCode)
			}
			if body.Error == "" {
				t.Errorf("error message is empty")
			}
		})
	}
}

func TestWriteErrorHidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, errors.New("pq: password authentication failed for user"))

	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if body.Error != "internal server error" {
		t.Errorf("internal detail leaked: %q", body.Error)
	}
}
