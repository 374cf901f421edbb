// Package scrape owns the fetch-transform-store side of the harness. Each
// stat category is one Pipeline; the derivation logic that consumes the
// stored rows lives in the derive package and never does I/O.
package scrape

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"courtpulse/config"
	"courtpulse/db"
	"courtpulse/nba"
	"courtpulse/utils"
)

// Pipeline is one configurable fetch-transform-store unit: an endpoint, a
// transform into database rows, and the table those rows land in. The same
// shape serves every stat category instead of one handwritten collector per
// category.
type Pipeline struct {
	Name        string
	SeasonTypes []string // empty for endpoints that are season-only
	Run         func(ctx context.Context, season, seasonType string) (int, error)
}

// Collect runs the pipeline for one season across its season types. Failures
// are recorded and joined, never fatal to the other season types.
func (p Pipeline) Collect(ctx context.Context, season string) (int, error) {
	if utils.IsInvalidSeason(season) {
		return 0, utils.ErrorWithTrace(fmt.Errorf("invalid season provided: %s", season))
	}

	seasonTypes := p.SeasonTypes
	if len(seasonTypes) == 0 {
		seasonTypes = []string{""}
	}

	total := 0
	errs := []error{}
	scrapingErrs := []db.ScrapingError{}
	for _, seasonType := range seasonTypes {
		n, err := p.Run(ctx, season, seasonType)
		if err != nil {
			errs = append(errs, err)
			scrapingErrs = append(scrapingErrs, *db.NewScrapingError(p.Name, season, err.Error()))
			continue
		}
		total += n
	}
	if err := db.InsertScrapingErrors(scrapingErrs); err != nil {
		log.Println(utils.ErrorWithTrace(err))
	}
	return total, errors.Join(errs...)
}

func Pipelines() []Pipeline {
	return []Pipeline{
		{Name: "team-game-logs", SeasonTypes: config.SeasonTypes, Run: collectTeamGameLogs},
		{Name: "hustle-stats", SeasonTypes: config.SeasonTypes, Run: collectHustleStats},
		{Name: "passing-stats", SeasonTypes: config.SeasonTypes, Run: collectPassingStats},
		{Name: "standings", Run: collectStandings},
		{Name: "player-totals", SeasonTypes: config.SeasonTypes, Run: collectPlayerTotals},
	}
}

func collectTeamGameLogs(ctx context.Context, season, seasonType string) (int, error) {
	if err := waitStatsAPI(ctx); err != nil {
		return 0, utils.ErrorWithTrace(err)
	}
	games, err := nba.LeagueGameLog(season, seasonType)
	if err != nil {
		return 0, utils.ErrorWithTrace(err)
	}

	rows := transformGameLog(season, seasonType, games)
	if err := db.InsertTeamGames(rows); err != nil {
		return 0, utils.ErrorWithTrace(err)
	}
	return len(rows), nil
}

// transformGameLog drops rows missing identity fields; scoring stats default
// to zero when absent.
func transformGameLog(season, seasonType string, games []nba.LeagueGameLogTeamGame) []db.TeamGameRow {
	rows := make([]db.TeamGameRow, 0, len(games))
	for _, g := range games {
		if g.GameID == nil || g.TeamID == nil || g.TeamName == nil || g.GameDate == nil {
			log.Printf("skipping game log row missing identity fields (season %s)", season)
			continue
		}
		row := db.TeamGameRow{
			GameID:     *g.GameID,
			TeamID:     int(*g.TeamID),
			TeamName:   *g.TeamName,
			Season:     season,
			SeasonType: seasonType,
			GameDate:   *g.GameDate,
		}
		if g.TeamAbbreviation != nil {
			row.TeamAbbrev = *g.TeamAbbreviation
		}
		if g.Matchup != nil {
			row.Matchup = *g.Matchup
		}
		if g.WL != nil {
			row.WinLoss = *g.WL
		}
		if g.PTS != nil {
			row.Points = *g.PTS
		}
		if g.REB != nil {
			row.Rebounds = *g.REB
		}
		if g.AST != nil {
			row.Assists = *g.AST
		}
		rows = append(rows, row)
	}
	return rows
}

func collectHustleStats(ctx context.Context, season, seasonType string) (int, error) {
	if err := waitStatsAPI(ctx); err != nil {
		return 0, utils.ErrorWithTrace(err)
	}
	teams, err := nba.LeagueHustleStatsTeam(season, seasonType)
	if err != nil {
		log.Printf("hustle JSON endpoint failed (%v), falling back to HTML table", err)
		return collectHustleStatsHTML(ctx, season, seasonType)
	}

	rows := transformHustleStats(season, seasonType, teams)
	if err := db.UpsertHustleStats(rows); err != nil {
		return 0, utils.ErrorWithTrace(err)
	}
	return len(rows), nil
}

func transformHustleStats(season, seasonType string, teams []nba.HustleStatsTeam) []db.HustleStatRow {
	rows := make([]db.HustleStatRow, 0, len(teams))
	for _, t := range teams {
		if t.TeamID == nil || t.TeamName == nil {
			continue
		}
		row := db.HustleStatRow{
			TeamID:     int(*t.TeamID),
			TeamName:   *t.TeamName,
			Season:     season,
			SeasonType: seasonType,
		}
		if t.ScreenAssists != nil {
			row.ScreenAssists = *t.ScreenAssists
		}
		if t.ContestedShots != nil {
			row.ContestedShots = *t.ContestedShots
		}
		if t.Deflections != nil {
			row.Deflections = *t.Deflections
		}
		rows = append(rows, row)
	}
	return rows
}

// collectHustleStatsHTML scrapes the rendered stats page when the JSON
// endpoint is blocked, matching columns by header name since the page layout
// shifts.
func collectHustleStatsHTML(ctx context.Context, season, seasonType string) (int, error) {
	if err := waitStatsPages(ctx); err != nil {
		return 0, utils.ErrorWithTrace(err)
	}

	url := fmt.Sprintf("https://www.nba.com/stats/teams/hustle?SeasonType=%s", seasonType)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return 0, utils.ErrorWithTrace(err)
	}
	req.Header.Add("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")

	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return 0, utils.ErrorWithTrace(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, utils.ErrorWithTrace(fmt.Errorf("HTTP %d for %s", resp.StatusCode, url))
	}

	headers, tableRows, err := ParseStatsTable(resp.Body)
	if err != nil {
		return 0, utils.ErrorWithTrace(err)
	}

	teamIDs, err := db.TeamIDsByName()
	if err != nil {
		return 0, utils.ErrorWithTrace(err)
	}

	rows := hustleRowsFromTable(season, seasonType, headers, tableRows, teamIDs)
	if len(rows) == 0 {
		return 0, utils.ErrorWithTrace(fmt.Errorf("hustle table had no usable rows"))
	}
	if err := db.UpsertHustleStats(rows); err != nil {
		return 0, utils.ErrorWithTrace(err)
	}
	return len(rows), nil
}

// hustleRowsFromTable keys scraped rows on the same team IDs the JSON endpoint
// uses, resolved through the seeded teams table. Both sources then upsert onto
// one row per (team_id, season, season_type); names the table does not know
// are dropped rather than stored under a made-up ID.
func hustleRowsFromTable(season, seasonType string, headers []string, tableRows [][]string, teamIDs map[string]int) []db.HustleStatRow {
	teamCol := findColumn(headers, "TEAM", "TEAM_NAME", "Team")
	screenCol := findColumn(headers, "SCREEN ASSISTS", "SCREEN_ASSISTS", "ScreenAST")
	contestedCol := findColumn(headers, "CONTESTED SHOTS", "CONTESTED_SHOTS")
	deflectionsCol := findColumn(headers, "DEFLECTIONS")
	if teamCol < 0 {
		return nil
	}

	rows := make([]db.HustleStatRow, 0, len(tableRows))
	for _, r := range tableRows {
		teamID, known := teamIDs[r[teamCol]]
		if !known {
			log.Printf("skipping scraped hustle row for unknown team %q", r[teamCol])
			continue
		}
		row := db.HustleStatRow{
			TeamID:     teamID,
			TeamName:   r[teamCol],
			Season:     season,
			SeasonType: seasonType,
		}
		if screenCol >= 0 {
			row.ScreenAssists = safeFloat(r[screenCol])
		}
		if contestedCol >= 0 {
			row.ContestedShots = safeFloat(r[contestedCol])
		}
		if deflectionsCol >= 0 {
			row.Deflections = safeFloat(r[deflectionsCol])
		}
		rows = append(rows, row)
	}
	return rows
}

func collectPassingStats(ctx context.Context, season, seasonType string) (int, error) {
	if err := waitStatsAPI(ctx); err != nil {
		return 0, utils.ErrorWithTrace(err)
	}
	teams, err := nba.LeagueDashPtPassing(season, seasonType)
	if err != nil {
		return 0, utils.ErrorWithTrace(err)
	}

	rows := make([]db.HustleStatRow, 0, len(teams))
	for _, t := range teams {
		if t.TeamID == nil || t.TeamName == nil {
			continue
		}
		row := db.HustleStatRow{
			TeamID:     int(*t.TeamID),
			TeamName:   *t.TeamName,
			Season:     season,
			SeasonType: seasonType,
		}
		if t.SecondaryAST != nil {
			row.SecondaryAssists = *t.SecondaryAST
		}
		rows = append(rows, row)
	}
	if err := db.UpdateSecondaryAssists(rows); err != nil {
		return 0, utils.ErrorWithTrace(err)
	}
	return len(rows), nil
}

func collectStandings(ctx context.Context, season, _ string) (int, error) {
	if err := waitStatsAPI(ctx); err != nil {
		return 0, utils.ErrorWithTrace(err)
	}
	teams, err := nba.LeagueStandingsV3(season)
	if err != nil {
		return 0, utils.ErrorWithTrace(err)
	}

	rows := make([]db.StandingRow, 0, len(teams))
	for _, t := range teams {
		if t.TeamID == nil || t.TeamName == nil {
			continue
		}
		name := *t.TeamName
		if t.TeamCity != nil {
			name = *t.TeamCity + " " + name
		}
		row := db.StandingRow{
			TeamID:   int(*t.TeamID),
			TeamName: name,
			Season:   season,
		}
		if t.Wins != nil {
			row.Wins = int(*t.Wins)
		}
		if t.Losses != nil {
			row.Losses = int(*t.Losses)
		}
		if t.WinPct != nil {
			row.WinPct = *t.WinPct
		}
		rows = append(rows, row)
	}
	if err := db.UpsertStandings(rows); err != nil {
		return 0, utils.ErrorWithTrace(err)
	}
	return len(rows), nil
}

func collectPlayerTotals(ctx context.Context, season, seasonType string) (int, error) {
	if err := waitStatsAPI(ctx); err != nil {
		return 0, utils.ErrorWithTrace(err)
	}
	players, err := nba.LeagueDashPlayerStats(season, seasonType)
	if err != nil {
		return 0, utils.ErrorWithTrace(err)
	}

	rows := make([]db.PlayerSeasonRow, 0, len(players))
	for _, p := range players {
		if p.PlayerID == nil || p.PlayerName == nil || p.TeamID == nil {
			continue
		}
		row := db.PlayerSeasonRow{
			PlayerID:   int(*p.PlayerID),
			PlayerName: *p.PlayerName,
			TeamID:     int(*p.TeamID),
			Season:     season,
		}
		if p.GP != nil {
			row.GamesPlayed = int(*p.GP)
		}
		rows = append(rows, row)
	}
	if err := db.UpsertPlayerSeasons(rows); err != nil {
		return 0, utils.ErrorWithTrace(err)
	}
	return len(rows), nil
}

// CollectSeason runs every pipeline for one season, then the validation pass,
// then queues derivation jobs over the fresh rows.
func CollectSeason(ctx context.Context, season string) error {
	errs := []error{}
	for _, p := range Pipelines() {
		log.Printf("collecting %s for %s", p.Name, season)
		n, err := p.Collect(ctx, season)
		if err != nil {
			log.Println(utils.ErrorWithTrace(err))
			errs = append(errs, err)
		}
		log.Printf("collected %s for %s: %d records", p.Name, season, n)
	}

	if err := RunValidation(season); err != nil {
		log.Println(utils.ErrorWithTrace(err))
		errs = append(errs, err)
	}

	for _, kind := range []string{db.JobKindRestFatigue, db.JobKindChemistry, db.JobKindAvailability} {
		if _, err := db.InsertJob(db.NewJob(kind, season)); err != nil {
			log.Println(utils.ErrorWithTrace(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Daemon backfills every configured season once, then refreshes the current
// season on a fixed interval.
func Daemon(ctx context.Context) {
	for _, season := range config.ValidSeasons {
		if err := CollectSeason(ctx, season); err != nil {
			log.Println(err)
		}
	}

	ticker := time.NewTicker(30 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := CollectSeason(ctx, config.ValidSeasons[0]); err != nil {
				log.Println(err)
			}
		}
	}
}
