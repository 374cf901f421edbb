package nba

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"courtpulse/utils"
)

var client = &http.Client{Timeout: 15 * time.Second}

// stats.nba.com rejects requests without browser-looking headers.
func initNBAReq(url string) *http.Request {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		panic(err)
	}
	req.Header.Add("Accept", "application/json")
	req.Header.Add("Referer", "https://www.nba.com/")
	req.Header.Add("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Add("x-nba-stats-origin", "stats")
	req.Header.Add("x-nba-stats-token", "true")
	return req
}

type resultSetResp struct {
	ResultSets []struct {
		Name    string          `json:"name"`
		Headers []string        `json:"headers"`
		RowSet  [][]interface{} `json:"rowSet"`
	} `json:"resultSets"`
}

func fetchResultSets(url string) (*resultSetResp, error) {
	req := initNBAReq(url)
	resp, err := client.Do(req)
	if err != nil {
		return nil, utils.ErrorWithTrace(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, utils.ErrorWithTrace(fmt.Errorf("HTTP %d for %s", resp.StatusCode, url))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, utils.ErrorWithTrace(err)
	}

	unmarshalled := resultSetResp{}
	if err := json.Unmarshal(body, &unmarshalled); err != nil {
		return nil, utils.ErrorWithTrace(err)
	}
	if len(unmarshalled.ResultSets) == 0 {
		return nil, utils.ErrorWithTrace(fmt.Errorf("empty resultSets for %s", url))
	}
	return &unmarshalled, nil
}

// LeagueGameLogTeamGame is one team's row from the leaguegamelog endpoint. All
// fields are pointers because the rowSet is positional JSON with nullable
// cells.
type LeagueGameLogTeamGame struct {
	SeasonID         *string
	TeamID           *float64
	TeamAbbreviation *string
	TeamName         *string
	GameID           *string
	GameDate         *string
	Matchup          *string
	WL               *string
	REB              *float64
	AST              *float64
	PTS              *float64
}

func LeagueGameLog(season, seasonType string) ([]LeagueGameLogTeamGame, error) {
	url := fmt.Sprintf(
		"https://stats.nba.com/stats/leaguegamelog?Counter=0&Direction=ASC&LeagueID=00&PlayerOrTeam=T&Season=%s&SeasonType=%s&Sorter=DATE",
		season, seasonType,
	)
	resp, err := fetchResultSets(url)
	if err != nil {
		return nil, utils.ErrorWithTrace(err)
	}

	games := make([]LeagueGameLogTeamGame, len(resp.ResultSets[0].RowSet))
	for i, raw := range resp.ResultSets[0].RowSet {
		if len(raw) < 27 {
			continue
		}
		games[i] = LeagueGameLogTeamGame{
			SeasonID:         maybe[string](raw[0]),
			TeamID:           maybe[float64](raw[1]),
			TeamAbbreviation: maybe[string](raw[2]),
			TeamName:         maybe[string](raw[3]),
			GameID:           maybe[string](raw[4]),
			GameDate:         maybe[string](raw[5]),
			Matchup:          maybe[string](raw[6]),
			WL:               maybe[string](raw[7]),
			REB:              maybe[float64](raw[20]),
			AST:              maybe[float64](raw[21]),
			PTS:              maybe[float64](raw[26]),
		}
	}
	return games, nil
}

// HustleStatsTeam carries the teamwork proxies from leaguehustlestatsteam.
// Secondary assists live on a different endpoint; see LeagueDashPtPassing.
type HustleStatsTeam struct {
	TeamID         *float64
	TeamName       *string
	ContestedShots *float64
	Deflections    *float64
	ScreenAssists  *float64
}

func LeagueHustleStatsTeam(season, seasonType string) ([]HustleStatsTeam, error) {
	url := fmt.Sprintf(
		"https://stats.nba.com/stats/leaguehustlestatsteam?LeagueID=00&PerMode=PerGame&Season=%s&SeasonType=%s",
		season, seasonType,
	)
	resp, err := fetchResultSets(url)
	if err != nil {
		return nil, utils.ErrorWithTrace(err)
	}

	teams := make([]HustleStatsTeam, len(resp.ResultSets[0].RowSet))
	for i, raw := range resp.ResultSets[0].RowSet {
		if len(raw) < 10 {
			continue
		}
		teams[i] = HustleStatsTeam{
			TeamID:         maybe[float64](raw[0]),
			TeamName:       maybe[string](raw[1]),
			ContestedShots: maybe[float64](raw[4]),
			Deflections:    maybe[float64](raw[7]),
			ScreenAssists:  maybe[float64](raw[9]),
		}
	}
	return teams, nil
}

type PassingStatsTeam struct {
	TeamID       *float64
	TeamName     *string
	SecondaryAST *float64
}

func LeagueDashPtPassing(season, seasonType string) ([]PassingStatsTeam, error) {
	url := fmt.Sprintf(
		"https://stats.nba.com/stats/leaguedashptstats?LeagueID=00&PerMode=PerGame&PlayerOrTeam=Team&PtMeasureType=Passing&Season=%s&SeasonType=%s",
		season, seasonType,
	)
	resp, err := fetchResultSets(url)
	if err != nil {
		return nil, utils.ErrorWithTrace(err)
	}

	teams := make([]PassingStatsTeam, len(resp.ResultSets[0].RowSet))
	for i, raw := range resp.ResultSets[0].RowSet {
		if len(raw) < 8 {
			continue
		}
		teams[i] = PassingStatsTeam{
			TeamID:       maybe[float64](raw[0]),
			TeamName:     maybe[string](raw[1]),
			SecondaryAST: maybe[float64](raw[7]),
		}
	}
	return teams, nil
}

type StandingsTeam struct {
	TeamID   *float64
	TeamCity *string
	TeamName *string
	Wins     *float64
	Losses   *float64
	WinPct   *float64
}

func LeagueStandingsV3(season string) ([]StandingsTeam, error) {
	url := fmt.Sprintf(
		"https://stats.nba.com/stats/leaguestandingsv3?LeagueID=00&Season=%s&SeasonType=Regular+Season",
		season,
	)
	resp, err := fetchResultSets(url)
	if err != nil {
		return nil, utils.ErrorWithTrace(err)
	}

	teams := make([]StandingsTeam, len(resp.ResultSets[0].RowSet))
	for i, raw := range resp.ResultSets[0].RowSet {
		if len(raw) < 16 {
			continue
		}
		teams[i] = StandingsTeam{
			TeamID:   maybe[float64](raw[2]),
			TeamCity: maybe[string](raw[3]),
			TeamName: maybe[string](raw[4]),
			Wins:     maybe[float64](raw[13]),
			Losses:   maybe[float64](raw[14]),
			WinPct:   maybe[float64](raw[15]),
		}
	}
	return teams, nil
}

type PlayerSeasonTotals struct {
	PlayerID   *float64
	PlayerName *string
	TeamID     *float64
	GP         *float64
}

func LeagueDashPlayerStats(season, seasonType string) ([]PlayerSeasonTotals, error) {
	url := fmt.Sprintf(
		"https://stats.nba.com/stats/leaguedashplayerstats?LeagueID=00&MeasureType=Base&PerMode=Totals&Season=%s&SeasonType=%s",
		season, seasonType,
	)
	resp, err := fetchResultSets(url)
	if err != nil {
		return nil, utils.ErrorWithTrace(err)
	}

	players := make([]PlayerSeasonTotals, len(resp.ResultSets[0].RowSet))
	for i, raw := range resp.ResultSets[0].RowSet {
		if len(raw) < 7 {
			continue
		}
		players[i] = PlayerSeasonTotals{
			PlayerID:   maybe[float64](raw[0]),
			PlayerName: maybe[string](raw[1]),
			TeamID:     maybe[float64](raw[3]),
			GP:         maybe[float64](raw[6]),
		}
	}
	return players, nil
}

func maybe[T any](x any) *T {
	if x, ok := x.(T); ok {
		return &x
	}
	return nil
}
