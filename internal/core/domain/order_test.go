package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		want     bool
	}{
		{StatusPending, StatusInProgress, true},
		{StatusPending, StatusCancelled, false},
		{StatusPending, StatusCompleted, false},
		{StatusInProgress, StatusCompleted, true},
		{StatusInProgress, StatusCancelled, true},
		{StatusInProgress, StatusPending, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusInProgress, false},
		{OrderStatus("unknown"), StatusCancelled, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestOrderStatus_Label(t *testing.T) {
	assert.Equal(t, "In progress", StatusInProgress.Label())
	assert.Equal(t, "on_hold", OrderStatus("on_hold").Label())
	assert.True(t, StatusPending.Current())
	assert.False(t, StatusCancelled.Current())
}

func TestAllowedActions(t *testing.T) {
	tests := []struct {
		name   string
		role   Role
		status OrderStatus
		want   []Action
	}{
		{"applicant pending", RoleApplicant, StatusPending, []Action{ActionRepeat}},
		{"applicant in progress", RoleApplicant, StatusInProgress, []Action{ActionCancel, ActionRepeat}},
		{"applicant completed", RoleApplicant, StatusCompleted, []Action{ActionRepeat, ActionRate}},
		{"applicant cancelled", RoleApplicant, StatusCancelled, []Action{ActionRepeat}},
		{"supplier in progress", RoleSupplier, StatusInProgress, []Action{ActionCancel, ActionComplete}},
		{"supplier pending", RoleSupplier, StatusPending, nil},
		{"supplier completed", RoleSupplier, StatusCompleted, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AllowedActions(tt.role, tt.status))
		})
	}
}

func TestParseRole(t *testing.T) {
	assert.Equal(t, RoleApplicant, ParseRole(" Applicant "))
	assert.Equal(t, RoleSupplier, ParseRole("supplier"))
	assert.Equal(t, RoleNone, ParseRole("admin"))
	assert.False(t, RoleNone.Valid())
}

func TestSession_Normalize(t *testing.T) {
	s := Session{Role: RoleSupplier}
	assert.False(t, s.Authenticated())
	assert.Equal(t, Session{}, s.Normalize())

	full := Session{Token: "t", Role: RoleApplicant}
	assert.Equal(t, full, full.Normalize())
}
