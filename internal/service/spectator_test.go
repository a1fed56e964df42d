package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpectatorStats(t *testing.T) {
	f := newFixture(t)
	room, host, guest := f.ongoingRoom(t, 2)
	fan := f.user(t, "fan")
	_, err := f.services.Room.JoinAsSpectator(fan.ID, room.RoomCode)
	require.NoError(t, err)

	hostP, err := f.services.Room.Participant(host.ID, room.ID)
	require.NoError(t, err)
	guestP, err := f.services.Room.Participant(guest.ID, room.ID)
	require.NoError(t, err)
	fanP, err := f.services.Room.Participant(fan.ID, room.ID)
	require.NoError(t, err)

	for _, target := range []uint{hostP.ID, hostP.ID, hostP.ID, guestP.ID} {
		_, err := f.services.Spectator.Reward(room.ID, fan.ID, target, "🔥")
		require.NoError(t, err)
	}

	_, err = f.services.Spectator.Reward(room.ID, fan.ID, fanP.ID, "🔥")
	assert.ErrorIs(t, err, ErrParticipantNotFound)
	_, err = f.services.Spectator.Reward(room.ID, fan.ID, hostP.ID, "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	stats, err := f.services.Spectator.Stats(room.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalSpectators)
	assert.Len(t, stats.Reactions[hostP.ID], 3)
	assert.InDelta(t, 75, stats.SupportPercentages[hostP.ID], 0.001)
	assert.InDelta(t, 25, stats.SupportPercentages[guestP.ID], 0.001)
}
