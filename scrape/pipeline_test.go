package scrape

import (
	"testing"

	"courtpulse/nba"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func numPtr(f float64) *float64 { return &f }

func TestTransformGameLog(t *testing.T) {
	games := []nba.LeagueGameLogTeamGame{
		{
			TeamID:           numPtr(1610612752),
			TeamAbbreviation: strPtr("NYK"),
			TeamName:         strPtr("New York Knicks"),
			GameID:           strPtr("0022400001"),
			GameDate:         strPtr("2024-10-22"),
			Matchup:          strPtr("NYK vs. BOS"),
			WL:               strPtr("W"),
			REB:              numPtr(44),
			AST:              numPtr(27),
			PTS:              numPtr(112),
		},
		// Missing GameDate, dropped entirely.
		{
			TeamID:   numPtr(1610612738),
			TeamName: strPtr("Boston Celtics"),
			GameID:   strPtr("0022400001"),
		},
		// Missing scoring stats default to zero but the row survives.
		{
			TeamID:   numPtr(1610612738),
			TeamName: strPtr("Boston Celtics"),
			GameID:   strPtr("0022400002"),
			GameDate: strPtr("2024-10-24"),
		},
	}

	rows := transformGameLog("2024-25", "Regular+Season", games)

	require.Len(t, rows, 2)
	assert.Equal(t, "0022400001", rows[0].GameID)
	assert.Equal(t, 1610612752, rows[0].TeamID)
	assert.Equal(t, "NYK", rows[0].TeamAbbrev)
	assert.Equal(t, "2024-25", rows[0].Season)
	assert.Equal(t, "Regular+Season", rows[0].SeasonType)
	assert.Equal(t, "W", rows[0].WinLoss)
	assert.InDelta(t, 112, rows[0].Points, 1e-9)
	assert.InDelta(t, 44, rows[0].Rebounds, 1e-9)
	assert.InDelta(t, 27, rows[0].Assists, 1e-9)

	assert.Equal(t, "0022400002", rows[1].GameID)
	assert.Zero(t, rows[1].Points)
	assert.Empty(t, rows[1].WinLoss)
}

func TestTransformHustleStats(t *testing.T) {
	teams := []nba.HustleStatsTeam{
		{
			TeamID:         numPtr(1610612752),
			TeamName:       strPtr("New York Knicks"),
			ScreenAssists:  numPtr(10.4),
			ContestedShots: numPtr(41.1),
			Deflections:    numPtr(16.2),
		},
		// No team identity, dropped.
		{ScreenAssists: numPtr(9.9)},
		// Missing metric defaults to zero.
		{
			TeamID:   numPtr(1610612738),
			TeamName: strPtr("Boston Celtics"),
		},
	}

	rows := transformHustleStats("2024-25", "Regular+Season", teams)

	require.Len(t, rows, 2)
	assert.Equal(t, 1610612752, rows[0].TeamID)
	assert.InDelta(t, 10.4, rows[0].ScreenAssists, 1e-9)
	assert.InDelta(t, 41.1, rows[0].ContestedShots, 1e-9)
	assert.InDelta(t, 16.2, rows[0].Deflections, 1e-9)
	assert.Zero(t, rows[1].ScreenAssists)
}
