// Package derive holds the pure derivation logic run over already-collected
// rows: rest/fatigue scoring, the team chemistry index, and the player
// availability heuristic. Nothing in here touches the network or the database;
// callers load rows, call a deriver, and store what comes back.
package derive

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// lookbackGames bounds the scan used for the 7-day density count. It is an
// approximation, not an exact window over the whole season: a team cannot
// realistically play more than ten games in a week, so scanning further back
// buys nothing.
const lookbackGames = 10

type GameRecord struct {
	TeamID   int
	TeamName string
	GameID   string
	Season   string
	GameDate string
	Matchup  string
}

type RestFatigueRecord struct {
	TeamID             int     `db:"team_id" json:"team_id"`
	TeamName           string  `db:"team_name" json:"team_name"`
	GameID             string  `db:"game_id" json:"game_id"`
	Season             string  `db:"season" json:"season"`
	GameDate           string  `db:"game_date" json:"game_date"`
	DaysRest           int     `db:"days_rest" json:"days_rest"`
	IsBackToBack       bool    `db:"is_back_to_back" json:"is_back_to_back"`
	GamesInLast7Days   int     `db:"games_in_last_7_days" json:"games_in_last_7_days"`
	ScheduleDifficulty float64 `db:"schedule_difficulty" json:"schedule_difficulty"`
	FatigueIndex       float64 `db:"fatigue_index" json:"fatigue_index"`
	IsHome             bool    `db:"is_home" json:"is_home"`
}

type SkipReason string

const (
	SkipBadDate        SkipReason = "unparseable or missing game date"
	SkipOutOfOrderDate SkipReason = "negative rest gap (duplicate or out-of-order date)"
)

// SkippedGame reports a row the deriver refused to score. Callers use it to
// tell "record skipped" apart from "record computed with a default value".
type SkippedGame struct {
	TeamID   int
	TeamName string
	GameID   string
	Reason   SkipReason
	Detail   string
}

type datedGame struct {
	game GameRecord
	date time.Time
}

// RestFatigue scores every usable game row and reports the rest. Rows are
// partitioned by team, sorted ascending by date within each partition, and
// scored independently per team, so a bad row only ever costs its own record.
func RestFatigue(games []GameRecord) ([]RestFatigueRecord, []SkippedGame) {
	records := make([]RestFatigueRecord, 0, len(games))
	skipped := []SkippedGame{}

	byTeam := map[int][]datedGame{}
	teamOrder := []int{}
	for _, g := range games {
		date, err := time.Parse(dateLayout, g.GameDate)
		if err != nil {
			skipped = append(skipped, SkippedGame{
				TeamID:   g.TeamID,
				TeamName: g.TeamName,
				GameID:   g.GameID,
				Reason:   SkipBadDate,
				Detail:   fmt.Sprintf("game_date %q", g.GameDate),
			})
			continue
		}
		if _, exists := byTeam[g.TeamID]; !exists {
			teamOrder = append(teamOrder, g.TeamID)
		}
		byTeam[g.TeamID] = append(byTeam[g.TeamID], datedGame{game: g, date: date})
	}
	sort.Ints(teamOrder)

	for _, teamID := range teamOrder {
		history := byTeam[teamID]
		sort.SliceStable(history, func(i, j int) bool {
			return history[i].date.Before(history[j].date)
		})

		for i, dg := range history {
			daysRest := 0
			isBackToBack := false
			if i > 0 {
				daysRest = wholeDays(history[i-1].date, dg.date) - 1
				if daysRest < 0 {
					// Sorted input can still produce this when two rows share a
					// date. That is bad source data, not a valid schedule.
					skipped = append(skipped, SkippedGame{
						TeamID:   dg.game.TeamID,
						TeamName: dg.game.TeamName,
						GameID:   dg.game.GameID,
						Reason:   SkipOutOfOrderDate,
						Detail:   fmt.Sprintf("days_rest %d on %s", daysRest, dg.game.GameDate),
					})
					continue
				}
				isBackToBack = daysRest == 0
			}

			gamesInWeek := gamesInLast7Days(history, i)
			records = append(records, RestFatigueRecord{
				TeamID:             dg.game.TeamID,
				TeamName:           dg.game.TeamName,
				GameID:             dg.game.GameID,
				Season:             dg.game.Season,
				GameDate:           dg.game.GameDate,
				DaysRest:           daysRest,
				IsBackToBack:       isBackToBack,
				GamesInLast7Days:   gamesInWeek,
				ScheduleDifficulty: scheduleDifficulty(gamesInWeek, daysRest),
				FatigueIndex:       fatigueIndex(isBackToBack, daysRest, gamesInWeek),
				IsHome:             IsHomeGame(dg.game.Matchup),
			})
		}
	}
	return records, skipped
}

// gamesInLast7Days counts the current game plus every prior game within seven
// days of it, looking back at most lookbackGames entries.
func gamesInLast7Days(history []datedGame, i int) int {
	count := 1
	for j := i - 1; j >= 0 && j >= i-lookbackGames; j-- {
		gap := wholeDays(history[j].date, history[i].date)
		if gap >= 0 && gap <= 7 {
			count++
		}
	}
	return count
}

func scheduleDifficulty(gamesInWeek, daysRest int) float64 {
	density := float64(gamesInWeek) / 7.0
	if density > 1.0 {
		density = 1.0
	}
	restScarcity := (3.0 - float64(daysRest)) / 3.0
	if restScarcity < 0 {
		restScarcity = 0
	}
	return 0.6*density + 0.4*restScarcity
}

// fatigueIndex accumulates additively and caps at 1.0. The back-to-back and
// zero-rest bonuses both fire when daysRest == 0; stored scores depend on that
// accumulation, so it stays.
func fatigueIndex(isBackToBack bool, daysRest, gamesInWeek int) float64 {
	score := 0.0
	if isBackToBack {
		score += 0.4
	}
	switch daysRest {
	case 0:
		score += 0.3
	case 1:
		score += 0.2
	case 2:
		score += 0.1
	}
	if gamesInWeek >= 4 {
		score += 0.3
	} else if gamesInWeek >= 3 {
		score += 0.2
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// IsHomeGame reads the stats API matchup string: "NYK vs. BOS" is a home game,
// "NYK @ BOS" is a road game. A string carrying neither token reads as away.
func IsHomeGame(matchup string) bool {
	if strings.Contains(matchup, "vs.") {
		return true
	}
	return false
}

func wholeDays(from, to time.Time) int {
	return int(to.Sub(from) / (24 * time.Hour))
}
