package db

import (
	"fmt"
	"log"
	"os"

	"courtpulse/config"
	"courtpulse/utils"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
)

var conn *sqlx.DB

// TeamGameRow is one team's side of one game as collected from the league game
// log: two rows per game, one per team. This is the raw input the rest/fatigue
// deriver reads; it is never mutated after insert.
type TeamGameRow struct {
	GameID     string  `db:"game_id"`
	TeamID     int     `db:"team_id"`
	TeamName   string  `db:"team_name"`
	TeamAbbrev string  `db:"team_abbrev"`
	Season     string  `db:"season"`
	SeasonType string  `db:"season_type"`
	GameDate   string  `db:"game_date"`
	Matchup    string  `db:"matchup"`
	WinLoss    string  `db:"win_loss"`
	Points     float64 `db:"points"`
	Rebounds   float64 `db:"rebounds"`
	Assists    float64 `db:"assists"`
}

type GameFilter struct {
	Season   string
	TeamID   int
	FromDate string
	ToDate   string
}

func SetupDatabase() error {
	_, err := os.Stat(config.DatabaseFile)
	if os.IsNotExist(err) {
		log.Println("database file not found, creating a new database")
		file, err := os.Create(config.DatabaseFile)
		if err != nil {
			return utils.ErrorWithTrace(err)
		}
		file.Close()
	} else if err != nil {
		return utils.ErrorWithTrace(err)
	}

	conn, err = sqlx.Open("sqlite3", config.DatabaseFile)
	if err != nil {
		return utils.ErrorWithTrace(err)
	}
	return nil
}

func RunMigrations() error {
	m, err := migrate.New(
		config.MigrationsDir,
		"sqlite3://"+config.DatabaseFile,
	)
	if err != nil {
		return utils.ErrorWithTrace(err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return utils.ErrorWithTrace(err)
	}
	return nil
}

func ValidateMigrations() error {
	var count int
	if err := conn.QueryRow("SELECT COUNT(*) FROM teams").Scan(&count); err != nil {
		return utils.ErrorWithTrace(err)
	}
	if count != 30 {
		return utils.ErrorWithTrace(fmt.Errorf("expected 30 teams, found %d", count))
	}

	var name string
	if err := conn.QueryRow("SELECT name FROM teams WHERE id = 1610612752").Scan(&name); err != nil {
		return utils.ErrorWithTrace(fmt.Errorf("failed to find Knicks: %v", err))
	}
	if name != "New York Knicks" {
		return utils.ErrorWithTrace(fmt.Errorf("expected team.id 1610612752 to have name 'New York Knicks', got '%s'", name))
	}
	return nil
}

func Close() error {
	if conn == nil {
		return nil
	}
	return conn.Close()
}

func InsertTeamGames(games []TeamGameRow) error {
	tx, err := conn.Beginx()
	if err != nil {
		return utils.ErrorWithTrace(err)
	}
	defer tx.Rollback()

	query := `
		REPLACE INTO team_games (
			game_id, team_id, team_name, team_abbrev, season, season_type,
			game_date, matchup, win_loss, points, rebounds, assists
		) VALUES (
			:game_id, :team_id, :team_name, :team_abbrev, :season, :season_type,
			:game_date, :matchup, :win_loss, :points, :rebounds, :assists
		)
	`
	for _, g := range games {
		if _, err := tx.NamedExec(query, g); err != nil {
			return utils.ErrorWithTrace(err)
		}
	}
	return tx.Commit()
}

func SelectTeamGames(filter GameFilter) ([]TeamGameRow, error) {
	if filter.Season != "" && utils.IsInvalidSeason(filter.Season) {
		return nil, utils.ErrorWithTrace(fmt.Errorf("invalid season provided: %s", filter.Season))
	}

	query := `SELECT * FROM team_games WHERE 1 = 1`
	args := []any{}
	if filter.Season != "" {
		query += ` AND season = ?`
		args = append(args, filter.Season)
	}
	if filter.TeamID != 0 {
		query += ` AND team_id = ?`
		args = append(args, filter.TeamID)
	}
	if filter.FromDate != "" {
		query += ` AND game_date >= ?`
		args = append(args, filter.FromDate)
	}
	if filter.ToDate != "" {
		query += ` AND game_date <= ?`
		args = append(args, filter.ToDate)
	}
	query += ` ORDER BY team_id, game_date ASC`

	games := []TeamGameRow{}
	if err := conn.Select(&games, query, args...); err != nil {
		return nil, utils.ErrorWithTrace(err)
	}
	return games, nil
}

// TeamIDsByName maps seeded team names to their stats API IDs. Scraped pages
// carry names only; rows must resolve to the same IDs the JSON endpoints use
// or the two sources end up keyed apart.
func TeamIDsByName() (map[string]int, error) {
	rows := []struct {
		ID   int    `db:"id"`
		Name string `db:"name"`
	}{}
	if err := conn.Select(&rows, `SELECT id, name FROM teams`); err != nil {
		return nil, utils.ErrorWithTrace(err)
	}

	ids := make(map[string]int, len(rows))
	for _, r := range rows {
		ids[r.Name] = r.ID
	}
	return ids, nil
}

// TeamGameCounts returns games recorded per team for a season, used by the
// availability heuristic as the denominator.
func TeamGameCounts(season string) (map[int]int, error) {
	if utils.IsInvalidSeason(season) {
		return nil, utils.ErrorWithTrace(fmt.Errorf("invalid season provided: %s", season))
	}

	rows := []struct {
		TeamID int `db:"team_id"`
		Count  int `db:"count"`
	}{}
	query := `SELECT team_id, COUNT(*) AS count FROM team_games WHERE season = ? GROUP BY team_id`
	if err := conn.Select(&rows, query, season); err != nil {
		return nil, utils.ErrorWithTrace(err)
	}

	counts := make(map[int]int, len(rows))
	for _, r := range rows {
		counts[r.TeamID] = r.Count
	}
	return counts, nil
}

type TeamStats struct {
	TeamID      int     `db:"team_id" json:"team_id"`
	TeamName    string  `db:"team_name" json:"team_name"`
	Season      string  `db:"season" json:"season"`
	TotalGames  int     `db:"total_games" json:"total_games"`
	Wins        int     `db:"wins" json:"wins"`
	Losses      int     `db:"losses" json:"losses"`
	WinPct      float64 `db:"win_pct" json:"win_pct"`
	AvgPoints   float64 `db:"avg_points" json:"avg_points"`
	AvgRebounds float64 `db:"avg_rebounds" json:"avg_rebounds"`
	AvgAssists  float64 `db:"avg_assists" json:"avg_assists"`
}

// SelectTeamStats aggregates a team's form for a season straight from the raw
// rows: record, win percentage, and per-game averages.
func SelectTeamStats(season string, teamID int) ([]TeamStats, error) {
	if utils.IsInvalidSeason(season) {
		return nil, utils.ErrorWithTrace(fmt.Errorf("invalid season provided: %s", season))
	}

	query := `
		SELECT
			team_id,
			team_name,
			season,
			COUNT(*) AS total_games,
			SUM(CASE WHEN win_loss = 'W' THEN 1 ELSE 0 END) AS wins,
			SUM(CASE WHEN win_loss = 'L' THEN 1 ELSE 0 END) AS losses,
			CAST(SUM(CASE WHEN win_loss = 'W' THEN 1 ELSE 0 END) AS REAL) / COUNT(*) AS win_pct,
			AVG(points) AS avg_points,
			AVG(rebounds) AS avg_rebounds,
			AVG(assists) AS avg_assists
		FROM team_games
		WHERE season = ?
	`
	args := []any{season}
	if teamID != 0 {
		query += ` AND team_id = ?`
		args = append(args, teamID)
	}
	query += ` GROUP BY team_id ORDER BY win_pct DESC`

	stats := []TeamStats{}
	if err := conn.Select(&stats, query, args...); err != nil {
		return nil, utils.ErrorWithTrace(err)
	}
	return stats, nil
}
