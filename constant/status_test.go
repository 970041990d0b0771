package constant_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tdhoang/evdealer-client/constant"
)

func TestRestockStatus_Next(t *testing.T) {
	tests := []struct {
		name     string
		status   constant.RestockStatus
		wantNext constant.RestockStatus
		wantOK   bool
	}{
		{name: "draft has no forward step", status: constant.RestockStatusDraft, wantOK: false},
		{name: "pending advances to approved", status: constant.RestockStatusPending, wantNext: constant.RestockStatusApproved, wantOK: true},
		{name: "approved advances to delivered", status: constant.RestockStatusApproved, wantNext: constant.RestockStatusDelivered, wantOK: true},
		{name: "delivered advances to paid", status: constant.RestockStatusDelivered, wantNext: constant.RestockStatusPaid, wantOK: true},
		{name: "paid is terminal", status: constant.RestockStatusPaid, wantOK: false},
		{name: "canceled is terminal", status: constant.RestockStatusCanceled, wantOK: false},
		{name: "unknown status", status: constant.RestockStatus("SHIPPED"), wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, ok := tt.status.Next()
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantNext, next)
			}
		})
	}
}

func TestCanTransition_FullGrid(t *testing.T) {
	type edge struct{ from, to constant.RestockStatus }
	legal := map[edge]bool{
		{constant.RestockStatusDraft, constant.RestockStatusPending}:      true,
		{constant.RestockStatusPending, constant.RestockStatusApproved}:   true,
		{constant.RestockStatusApproved, constant.RestockStatusDelivered}: true,
		{constant.RestockStatusDelivered, constant.RestockStatusPaid}:     true,
		{constant.RestockStatusDraft, constant.RestockStatusCanceled}:     true,
		{constant.RestockStatusPending, constant.RestockStatusCanceled}:   true,
		{constant.RestockStatusApproved, constant.RestockStatusCanceled}:  true,
		{constant.RestockStatusDelivered, constant.RestockStatusCanceled}: true,
	}

	for _, from := range constant.AllRestockStatuses {
		for _, to := range constant.AllRestockStatuses {
			want := legal[edge{from, to}]
			assert.Equalf(t, want, constant.CanTransition(from, to), "transition %s -> %s", from, to)
		}
	}
}

func TestTerminalAbsorption(t *testing.T) {
	for _, status := range []constant.RestockStatus{constant.RestockStatusPaid, constant.RestockStatusCanceled} {
		_, ok := status.Next()
		assert.Falsef(t, ok, "%s must not advance", status)
		assert.Falsef(t, status.CanCancel(), "%s must not cancel", status)
		assert.Truef(t, status.Terminal(), "%s must be terminal", status)
		assert.Nilf(t, constant.AvailableActions(status, constant.RoleManager), "%s offers no actions", status)
		assert.Nilf(t, constant.AvailableActions(status, constant.RoleStaff), "%s offers no actions", status)
	}
}

func TestAvailableActions(t *testing.T) {
	tests := []struct {
		name   string
		status constant.RestockStatus
		role   constant.Role
		want   []constant.Action
	}{
		{
			name:   "manager on draft",
			status: constant.RestockStatusDraft,
			role:   constant.RoleManager,
			want:   []constant.Action{constant.ActionAccept, constant.ActionCancel, constant.ActionDelete},
		},
		{
			name:   "staff never handles drafts",
			status: constant.RestockStatusDraft,
			role:   constant.RoleStaff,
			want:   nil,
		},
		{
			name:   "pending offers advance and cancel",
			status: constant.RestockStatusPending,
			role:   constant.RoleStaff,
			want:   []constant.Action{constant.ActionAdvance, constant.ActionCancel},
		},
		{
			name:   "delivered offers advance and cancel",
			status: constant.RestockStatusDelivered,
			role:   constant.RoleManager,
			want:   []constant.Action{constant.ActionAdvance, constant.ActionCancel},
		},
		{
			name:   "unknown status offers nothing",
			status: constant.RestockStatus("SHIPPED"),
			role:   constant.RoleManager,
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, constant.AvailableActions(tt.status, tt.role))
		})
	}
}

func TestStatusMeta(t *testing.T) {
	for _, status := range constant.AllRestockStatuses {
		meta := status.Meta()
		assert.NotEmptyf(t, meta.Label, "label for %s", status)
		assert.NotEmptyf(t, meta.Color, "color for %s", status)
	}

	fallback := constant.RestockStatus("SHIPPED").Meta()
	assert.Equal(t, "SHIPPED", fallback.Label)
}

func TestErrorTypeForStatus(t *testing.T) {
	assert.Equal(t, constant.ErrUnauthorized, constant.ErrorTypeForStatus(401))
	assert.Equal(t, constant.ErrNotFound, constant.ErrorTypeForStatus(404))
	assert.Equal(t, constant.ErrDomain, constant.ErrorTypeForStatus(400))
	assert.Equal(t, constant.ErrDomain, constant.ErrorTypeForStatus(409))
	assert.Equal(t, constant.ErrInternal, constant.ErrorTypeForStatus(500))
}
