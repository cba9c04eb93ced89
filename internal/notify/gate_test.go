package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeReputationAPI struct {
	profileID  int64
	profileErr error
	canGen     bool
	statusErr  error
}

func (f *fakeReputationAPI) ProfileID(context.Context, string) (int64, error) {
	return f.profileID, f.profileErr
}

func (f *fakeReputationAPI) DailyContributionStatus(context.Context, int64) (bool, error) {
	return f.canGen, f.statusErr
}

func TestGate_SuppressesOnlyOnCompletedTasks(t *testing.T) {
	gate := NewGate(&fakeReputationAPI{profileID: 42, canGen: false})
	suppress, reason := gate.CanSendReminder(context.Background(), "address:0xabc")
	assert.True(t, suppress)
	assert.Equal(t, "daily tasks already completed", reason)
}

func TestGate_AllowsWhenTasksRemain(t *testing.T) {
	gate := NewGate(&fakeReputationAPI{profileID: 42, canGen: true})
	suppress, reason := gate.CanSendReminder(context.Background(), "address:0xabc")
	assert.False(t, suppress)
	assert.Empty(t, reason)
}

func TestGate_FailsOpen(t *testing.T) {
	cases := []struct {
		name string
		api  *fakeReputationAPI
	}{
		{"resolution fails", &fakeReputationAPI{profileErr: errors.New("boom")}},
		{"status fails", &fakeReputationAPI{profileID: 42, statusErr: errors.New("boom")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gate := NewGate(tc.api)
			suppress, reason := gate.CanSendReminder(context.Background(), "address:0xabc")
			assert.False(t, suppress, "ambiguous upstream state must never suppress")
			assert.NotEmpty(t, reason)
		})
	}
}

func TestGate_MissingKeyAllows(t *testing.T) {
	gate := NewGate(&fakeReputationAPI{profileID: 42, canGen: false})
	suppress, reason := gate.CanSendReminder(context.Background(), "")
	assert.False(t, suppress)
	assert.Equal(t, "no userkey", reason)
}
