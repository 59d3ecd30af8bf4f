package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "not found", err: NotFound("household_not_found", "household not found"), want: KindNotFound},
		{name: "forbidden", err: Forbidden("insufficient_permissions", "not allowed"), want: KindForbidden},
		{name: "conflict", err: Conflict("member_exists", "already a member"), want: KindConflict},
		{name: "state conflict", err: StateConflict("invitation_not_pending", "already processed"), want: KindStateConflict},
		{name: "validation", err: Validation("self_invite", "cannot invite yourself"), want: KindValidation},
		{name: "plain error", err: errors.New("connection refused"), want: KindUnknown},
		{name: "nil", err: nil, want: KindUnknown},
		{
			name: "wrapped taxonomy error",
			err:  fmt.Errorf("send invitation: %w", Conflict("invitation_exists", "pending invitation exists")),
			want: KindConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCodeOf(t *testing.T) {
	err := StateConflict("invitation_expired", "invitation has expired")
	if got := CodeOf(err); got != "invitation_expired" {
		t.Errorf("CodeOf() = %q, want %q", got, "invitation_expired")
	}
	if got := CodeOf(errors.New("boom")); got != "" {
		t.Errorf("CodeOf(plain) = %q, want empty", got)
	}
}

func TestErrorMessage(t *testing.T) {
	base := errors.New("UNIQUE constraint failed")
	err := &Error{Kind: KindConflict, Code: "member_exists", Message: "already a member", Err: base}
	if err.Error() != "already a member: UNIQUE constraint failed" {
		t.Errorf("unexpected Error(): %q", err.Error())
	}
	if !errors.Is(err, base) {
		t.Error("expected errors.Is to unwrap the cause")
	}
}

func TestIsKind(t *testing.T) {
	err := Forbidden("insufficient_permissions", "not allowed")
	if !IsKind(err, KindForbidden) {
		t.Error("expected IsKind(KindForbidden) to be true")
	}
	if IsKind(err, KindConflict) {
		t.Error("expected IsKind(KindConflict) to be false")
	}
}
