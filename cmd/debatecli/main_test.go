package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"debate_arena/internal/debate"
	"debate_arena/internal/debateview"
	"debate_arena/internal/models"
)

func TestPrintScoresSortedByParticipant(t *testing.T) {
	var out bytes.Buffer
	printScores(&out, map[uint]models.ScoreCard{
		12: {WeightedTotal: 61.5},
		3:  {WeightedTotal: 70},
	})

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Len(t, lines, 3)
	assert.Contains(t, lines[1], "participant 3")
	assert.Contains(t, lines[2], "participant 12: 61.5")
}

func TestPrintState(t *testing.T) {
	var out bytes.Buffer
	printState(&out, debateview.State{
		Room:        models.Room{Topic: "Zoos should close", Status: models.RoomStatusOngoing, Rounds: 3},
		Position:    debate.Position{Round: 2, Turn: 1},
		Remaining:   95,
		TimerActive: true,
		Verdict:     debate.Verdict{Reason: debate.ReasonAlreadySubmittedThisRound},
	})

	text := out.String()
	assert.Contains(t, text, "round 2/3, turn 1")
	assert.Contains(t, text, "time left: 1:35")
	assert.Contains(t, text, "ALREADY_SUBMITTED_THIS_ROUND")
}
