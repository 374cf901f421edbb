package scrape

import (
	"fmt"
	"log"
	"time"

	"courtpulse/db"
	"courtpulse/utils"
)

// BuildValidationIssues inspects a season's collected rows for the problems
// that bite later derivation: duplicate rows, games without both sides, teams
// in the standings with nothing collected, and unparseable dates. Issues are
// findings, not failures.
func BuildValidationIssues(season string, games []db.TeamGameRow, standings []db.StandingRow) []db.ValidationIssue {
	issues := []db.ValidationIssue{}
	add := func(kind, details string) {
		issues = append(issues, db.ValidationIssue{Season: season, Kind: kind, Details: details})
	}

	seen := map[string]int{}
	sidesPerGame := map[string]int{}
	teamsWithGames := map[int]bool{}
	for _, g := range games {
		key := g.GameID + "/" + fmt.Sprint(g.TeamID)
		seen[key]++
		sidesPerGame[g.GameID]++
		teamsWithGames[g.TeamID] = true

		if _, err := time.Parse("2006-01-02", g.GameDate); err != nil {
			add("bad_game_date", fmt.Sprintf("game %s team %d has game_date %q", g.GameID, g.TeamID, g.GameDate))
		}
	}
	for key, count := range seen {
		if count > 1 {
			add("duplicate_row", fmt.Sprintf("row %s appears %d times", key, count))
		}
	}
	for gameID, sides := range sidesPerGame {
		if sides != 2 {
			add("unpaired_game", fmt.Sprintf("game %s has %d team rows, want 2", gameID, sides))
		}
	}
	for _, s := range standings {
		if !teamsWithGames[s.TeamID] {
			add("team_without_games", fmt.Sprintf("team %d (%s) is in standings but has no game rows", s.TeamID, s.TeamName))
		}
	}
	return issues
}

func RunValidation(season string) error {
	games, err := db.SelectTeamGames(db.GameFilter{Season: season})
	if err != nil {
		return utils.ErrorWithTrace(err)
	}
	standings, err := db.SelectStandings(season)
	if err != nil {
		return utils.ErrorWithTrace(err)
	}

	issues := BuildValidationIssues(season, games, standings)
	if len(issues) > 0 {
		log.Printf("validation found %d issues for %s", len(issues), season)
	}
	if err := db.ReplaceValidationIssues(season, issues); err != nil {
		return utils.ErrorWithTrace(err)
	}
	return nil
}
