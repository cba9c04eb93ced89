package telegram

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/node-data/ethos-telegram-agent/internal/ethos"
)

func TestFormatProfileMessage(t *testing.T) {
	stats := &ethos.UserStats{}
	stats.Reviews.Received = 10
	stats.Reviews.PositiveReviewCount = 9
	stats.Reviews.NegativeReviewCount = 1
	stats.Reviews.PositiveReviewPercentage = 90.0
	stats.Vouches.Balance.Received = 1.2345
	stats.Vouches.Count.Received = 3

	msg := formatProfileMessage(stats, "service:x.com:username:alice", 1450, "Alice")

	assert.Contains(t, msg, "Alice")
	assert.Contains(t, msg, "Ethos Score: 1450")
	assert.Contains(t, msg, "Total Received: 10 (90.0%)")
	assert.Contains(t, msg, "Positive: 9")
	assert.Contains(t, msg, "Negative: 1")
	assert.NotContains(t, msg, "Neutral:")
	assert.Contains(t, msg, "1.2345e (3)")
	assert.NotContains(t, msg, "Slashes")
	assert.Contains(t, msg, "app.ethos.network/profile/x/alice")
}

func TestFormatProfileMessage_NoScoreAndSlashes(t *testing.T) {
	stats := &ethos.UserStats{}
	stats.Slashes.Count = 2

	msg := formatProfileMessage(stats, "address:0xabc", -1, "0xabc")

	assert.Contains(t, msg, "Not available")
	assert.Contains(t, msg, "Count: 2")
	assert.Contains(t, msg, "Open Slash: None")
}
