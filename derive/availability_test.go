package derive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvailability(t *testing.T) {
	players := []PlayerGames{
		{PlayerID: 1, PlayerName: "Iron Man", TeamID: 10, Season: "2024-25", GamesPlayed: 40},
		{PlayerID: 2, PlayerName: "Often Out", TeamID: 10, Season: "2024-25", GamesPlayed: 20},
		{PlayerID: 3, PlayerName: "No Evidence", TeamID: 99, Season: "2024-25", GamesPlayed: 0},
	}
	teamGames := map[int]int{10: 40}

	records := Availability(players, teamGames, 0.7)
	require.Len(t, records, 3)

	assert.InDelta(t, 1.0, records[0].AvailabilityRate, 1e-9)
	assert.False(t, records[0].AtRisk)

	assert.InDelta(t, 0.5, records[1].AvailabilityRate, 1e-9)
	assert.True(t, records[1].AtRisk)

	// Team with no recorded games: zero rate, never flagged.
	assert.InDelta(t, 0.0, records[2].AvailabilityRate, 1e-9)
	assert.False(t, records[2].AtRisk)
	assert.Equal(t, 0, records[2].TeamGames)
}

func TestAvailability_ThresholdBoundary(t *testing.T) {
	players := []PlayerGames{
		{PlayerID: 1, TeamID: 1, GamesPlayed: 7},
		{PlayerID: 2, TeamID: 1, GamesPlayed: 6},
	}
	records := Availability(players, map[int]int{1: 10}, 0.7)
	require.Len(t, records, 2)

	// Exactly at threshold is not a risk; strictly below is.
	assert.False(t, records[0].AtRisk)
	assert.True(t, records[1].AtRisk)
}
