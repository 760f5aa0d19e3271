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
		{"validation", Validation("bad %s", "input"), KindValidation},
		{"wrapped conflict", fmt.Errorf("claim: %w", Conflict("already claimed")), KindStateConflict},
		{"quota", Quota("open requests", 5, 5), KindQuotaExceeded},
		{"plain error", errors.New("boom"), KindUnknown},
		{"nil", nil, KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf: expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestErrorsIsSentinel(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NotFound("group not found"))
	if !errors.Is(err, ErrNotFound) {
		t.Error("expected errors.Is to match ErrNotFound")
	}
	if errors.Is(err, ErrStateConflict) {
		t.Error("did not expect errors.Is to match ErrStateConflict")
	}
}

func TestQuotaMessage(t *testing.T) {
	err := Quota("groups created", 3, 3)
	want := "groups created limit reached: 3 of 3 used"
	if err.Error() != want {
		t.Errorf("message: expected %q, got %q", want, err.Error())
	}
	if err.Limit != "groups created" || err.Count != 3 || err.Max != 3 {
		t.Errorf("unexpected quota fields: %+v", err)
	}
}
