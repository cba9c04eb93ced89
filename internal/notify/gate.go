package notify

import (
	"context"
	"fmt"
	"time"
)

// ReputationAPI resolves identities and answers daily-task status questions.
// Implemented by ethos.Client.
type ReputationAPI interface {
	ProfileID(ctx context.Context, userkey string) (int64, error)
	DailyContributionStatus(ctx context.Context, profileID int64) (canGenerate bool, err error)
}

// Gate decides whether a scheduled reminder is pointless because the user
// already completed today's tasks.
type Gate struct {
	api     ReputationAPI
	timeout time.Duration
}

func NewGate(api ReputationAPI) *Gate {
	return &Gate{api: api, timeout: 5 * time.Second}
}

// CanSendReminder returns suppress=true only on an explicit "tasks already
// completed" answer from the reputation API. Resolution failures and missing
// keys fail open with a reason for logging; an upstream outage must never
// silently drop a reminder.
func (g *Gate) CanSendReminder(ctx context.Context, userkey string) (suppress bool, reason string) {
	if userkey == "" {
		return false, "no userkey"
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	profileID, err := g.api.ProfileID(ctx, userkey)
	if err != nil {
		return false, fmt.Sprintf("resolve profile id: %v", err)
	}

	canGenerate, err := g.api.DailyContributionStatus(ctx, profileID)
	if err != nil {
		return false, fmt.Sprintf("contribution status: %v", err)
	}

	if !canGenerate {
		return true, "daily tasks already completed"
	}
	return false, ""
}
