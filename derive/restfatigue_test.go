package derive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func game(teamID int, gameID, date string) GameRecord {
	return GameRecord{
		TeamID:   teamID,
		TeamName: "Test Team",
		GameID:   gameID,
		Season:   "2024-25",
		GameDate: date,
		Matchup:  "TST vs. OPP",
	}
}

func TestRestFatigue_FirstGameHasZeroRest(t *testing.T) {
	records, skipped := RestFatigue([]GameRecord{game(1, "g1", "2024-11-01")})

	require.Len(t, records, 1)
	assert.Empty(t, skipped)
	assert.Equal(t, 0, records[0].DaysRest)
	assert.False(t, records[0].IsBackToBack)
	assert.Equal(t, 1, records[0].GamesInLast7Days)
}

func TestRestFatigue_BackToBack(t *testing.T) {
	records, skipped := RestFatigue([]GameRecord{
		game(1, "g1", "2024-11-01"),
		game(1, "g2", "2024-11-02"),
	})

	require.Len(t, records, 2)
	assert.Empty(t, skipped)

	second := records[1]
	assert.Equal(t, "g2", second.GameID)
	assert.Equal(t, 0, second.DaysRest)
	assert.True(t, second.IsBackToBack)
	assert.Equal(t, 2, second.GamesInLast7Days)
	// 0.4 back-to-back bonus and 0.3 zero-rest bonus fire together.
	assert.InDelta(t, 0.7, second.FatigueIndex, 1e-9)
}

func TestRestFatigue_RestGaps(t *testing.T) {
	tests := []struct {
		name         string
		dates        []string
		wantDaysRest int
		wantFatigue  float64
	}{
		{"one day off", []string{"2024-11-01", "2024-11-03"}, 1, 0.2},
		{"two days off", []string{"2024-11-01", "2024-11-04"}, 2, 0.1},
		{"three days off", []string{"2024-11-01", "2024-11-05"}, 3, 0.0},
		{"long break", []string{"2024-11-01", "2024-11-20"}, 18, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			games := make([]GameRecord, 0, len(tt.dates))
			for i, d := range tt.dates {
				games = append(games, game(1, string(rune('a'+i)), d))
			}
			records, skipped := RestFatigue(games)

			require.Len(t, records, len(tt.dates))
			assert.Empty(t, skipped)
			last := records[len(records)-1]
			assert.Equal(t, tt.wantDaysRest, last.DaysRest)
			assert.False(t, last.IsBackToBack)
			assert.InDelta(t, tt.wantFatigue, last.FatigueIndex, 1e-9)
		})
	}
}

func TestRestFatigue_BackToBackIffZeroRest(t *testing.T) {
	games := []GameRecord{
		game(1, "g1", "2024-11-01"),
		game(1, "g2", "2024-11-02"),
		game(1, "g3", "2024-11-04"),
		game(1, "g4", "2024-11-10"),
	}
	records, _ := RestFatigue(games)

	for i, r := range records {
		if i == 0 {
			// Documented edge case: no prior game, zero rest but not a B2B.
			assert.False(t, r.IsBackToBack)
			continue
		}
		assert.Equal(t, r.DaysRest == 0, r.IsBackToBack, "game %s", r.GameID)
	}
}

func TestRestFatigue_ScoresStayInUnitInterval(t *testing.T) {
	// Twelve straight days of games pushes every bonus to its cap.
	games := []GameRecord{}
	for day := 1; day <= 12; day++ {
		games = append(games, game(1, string(rune('a'+day)), "2024-11-"+twoDigits(day)))
	}
	records, skipped := RestFatigue(games)

	require.Len(t, records, 12)
	assert.Empty(t, skipped)
	for _, r := range records {
		assert.GreaterOrEqual(t, r.FatigueIndex, 0.0)
		assert.LessOrEqual(t, r.FatigueIndex, 1.0)
		assert.GreaterOrEqual(t, r.ScheduleDifficulty, 0.0)
		assert.LessOrEqual(t, r.ScheduleDifficulty, 1.0)
	}
	last := records[len(records)-1]
	assert.Equal(t, 8, last.GamesInLast7Days)
	assert.InDelta(t, 1.0, last.FatigueIndex, 1e-9)
	assert.InDelta(t, 1.0, last.ScheduleDifficulty, 1e-9)
}

func TestRestFatigue_GamesInWeekCount(t *testing.T) {
	games := []GameRecord{
		game(1, "g1", "2024-11-01"),
		game(1, "g2", "2024-11-03"),
		game(1, "g3", "2024-11-05"),
		game(1, "g4", "2024-11-08"), // g1 is exactly 7 days back, inclusive
		game(1, "g5", "2024-11-20"),
	}
	records, _ := RestFatigue(games)

	require.Len(t, records, 5)
	assert.Equal(t, 1, records[0].GamesInLast7Days)
	assert.Equal(t, 2, records[1].GamesInLast7Days)
	assert.Equal(t, 3, records[2].GamesInLast7Days)
	assert.Equal(t, 4, records[3].GamesInLast7Days)
	assert.Equal(t, 1, records[4].GamesInLast7Days)
}

func TestRestFatigue_SkipsBadDates(t *testing.T) {
	games := []GameRecord{
		game(1, "g1", "2024-11-01"),
		game(1, "g2", "not-a-date"),
		game(1, "g3", ""),
		game(1, "g4", "2024-11-04"),
	}
	records, skipped := RestFatigue(games)

	require.Len(t, records, 2)
	require.Len(t, skipped, 2)
	assert.Equal(t, SkipBadDate, skipped[0].Reason)
	assert.Equal(t, "g2", skipped[0].GameID)
	assert.Equal(t, SkipBadDate, skipped[1].Reason)
	// The surviving rows still form a clean history.
	assert.Equal(t, "g4", records[1].GameID)
	assert.Equal(t, 2, records[1].DaysRest)
}

func TestRestFatigue_FlagsDuplicateDates(t *testing.T) {
	games := []GameRecord{
		game(1, "g1", "2024-11-01"),
		game(1, "g2", "2024-11-01"),
	}
	records, skipped := RestFatigue(games)

	require.Len(t, records, 1)
	require.Len(t, skipped, 1)
	assert.Equal(t, SkipOutOfOrderDate, skipped[0].Reason)
	assert.Equal(t, "g2", skipped[0].GameID)
}

func TestRestFatigue_PartitionsByTeam(t *testing.T) {
	games := []GameRecord{
		game(2, "g1", "2024-11-02"),
		game(1, "g2", "2024-11-01"),
		game(2, "g3", "2024-11-03"),
		game(1, "g4", "2024-11-03"),
	}
	records, skipped := RestFatigue(games)

	require.Len(t, records, 4)
	assert.Empty(t, skipped)

	byGame := map[string]RestFatigueRecord{}
	for _, r := range records {
		byGame[r.GameID] = r
	}
	// Team 2's back-to-back does not leak into team 1's gap.
	assert.True(t, byGame["g3"].IsBackToBack)
	assert.Equal(t, 1, byGame["g4"].DaysRest)
	assert.False(t, byGame["g4"].IsBackToBack)
}

func TestIsHomeGame(t *testing.T) {
	assert.True(t, IsHomeGame("NYK vs. BOS"))
	assert.False(t, IsHomeGame("NYK @ BOS"))
	assert.False(t, IsHomeGame("NYK-BOS"))
	assert.False(t, IsHomeGame(""))
}

func twoDigits(day int) string {
	if day < 10 {
		return "0" + string(rune('0'+day))
	}
	return string(rune('0'+day/10)) + string(rune('0'+day%10))
}
