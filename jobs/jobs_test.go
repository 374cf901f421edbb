package jobs

import (
	"testing"

	"courtpulse/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGameRecords(t *testing.T) {
	rows := []db.TeamGameRow{
		{
			GameID:   "0022400001",
			TeamID:   1610612752,
			TeamName: "New York Knicks",
			Season:   "2024-25",
			GameDate: "2024-10-22",
			Matchup:  "NYK vs. BOS",
			WinLoss:  "W",
			Points:   112,
		},
	}

	games := gameRecords(rows)

	require.Len(t, games, 1)
	assert.Equal(t, "0022400001", games[0].GameID)
	assert.Equal(t, 1610612752, games[0].TeamID)
	assert.Equal(t, "New York Knicks", games[0].TeamName)
	assert.Equal(t, "2024-25", games[0].Season)
	assert.Equal(t, "2024-10-22", games[0].GameDate)
	assert.Equal(t, "NYK vs. BOS", games[0].Matchup)
}

func TestGetIdleWorker_ClaimsWorker(t *testing.T) {
	s := NewScheduler(0, 2, 0)
	require.Len(t, s.Workers, 2)

	w := s.GetIdleWorker()
	require.NotNil(t, w)

	w2 := s.GetIdleWorker()
	require.NotNil(t, w2)
	assert.NotEqual(t, w.Id, w2.Id)

	// Both workers are claimed by the calls above.
	assert.Nil(t, s.GetIdleWorker())

	// A finished worker is claimable again.
	w.idle.Store(true)
	w3 := s.GetIdleWorker()
	require.NotNil(t, w3)
	assert.Equal(t, w.Id, w3.Id)
}
