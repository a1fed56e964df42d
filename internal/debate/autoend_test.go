package debate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"debate_arena/internal/models"
)

func TestAutoEndHostFiresOnce(t *testing.T) {
	var a AutoEnd
	obs := Observation{
		TotalTurns:   6,
		MaxRounds:    3,
		DebaterCount: 2,
		Status:       models.RoomStatusOngoing,
		IsHost:       true,
	}

	assert.Equal(t, DecisionEnd, a.Observe(obs))
	for i := 0; i < 5; i++ {
		assert.Equal(t, DecisionNone, a.Observe(obs))
	}
	assert.True(t, a.Fired())
}

func TestAutoEndNonHostWaits(t *testing.T) {
	var a AutoEnd
	obs := Observation{TotalTurns: 6, MaxRounds: 3, DebaterCount: 2, Status: models.RoomStatusOngoing}
	assert.Equal(t, DecisionWait, a.Observe(obs))
	assert.Equal(t, DecisionNone, a.Observe(obs))
}

func TestAutoEndNotYet(t *testing.T) {
	cases := []struct {
		name string
		obs  Observation
	}{
		{"turns remaining", Observation{TotalTurns: 5, MaxRounds: 3, DebaterCount: 2, Status: models.RoomStatusOngoing, IsHost: true}},
		{"already completed", Observation{TotalTurns: 6, MaxRounds: 3, DebaterCount: 2, Status: models.RoomStatusCompleted, IsHost: true}},
		{"still waiting for seats", Observation{TotalTurns: 0, MaxRounds: 3, DebaterCount: 0, Status: models.RoomStatusWaiting, IsHost: true}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var a AutoEnd
			assert.Equal(t, DecisionNone, a.Observe(tc.obs))
			assert.False(t, a.Fired())
		})
	}
}
