package db

import (
	"fmt"
	"time"

	"courtpulse/derive"
	"courtpulse/utils"
)

// HustleStatRow holds the per-team teamwork proxies the chemistry deriver
// consumes. Screen assists, contested shots, and deflections come from the
// hustle-stats pipeline; secondary assists come from the passing pipeline and
// land in the same row via upsert.
type HustleStatRow struct {
	TeamID           int     `db:"team_id" json:"team_id"`
	TeamName         string  `db:"team_name" json:"team_name"`
	Season           string  `db:"season" json:"season"`
	SeasonType       string  `db:"season_type" json:"season_type"`
	ScreenAssists    float64 `db:"screen_assists" json:"screen_assists"`
	SecondaryAssists float64 `db:"secondary_assists" json:"secondary_assists"`
	ContestedShots   float64 `db:"contested_shots" json:"contested_shots"`
	Deflections      float64 `db:"deflections" json:"deflections"`
	CollectedAt      string  `db:"collected_at" json:"collected_at"`
}

func UpsertHustleStats(rows []HustleStatRow) error {
	tx, err := conn.Beginx()
	if err != nil {
		return utils.ErrorWithTrace(err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO hustle_stats (
			team_id, team_name, season, season_type,
			screen_assists, contested_shots, deflections, collected_at
		) VALUES (
			:team_id, :team_name, :season, :season_type,
			:screen_assists, :contested_shots, :deflections, :collected_at
		)
		ON CONFLICT (team_id, season, season_type) DO UPDATE SET
			team_name = excluded.team_name,
			screen_assists = excluded.screen_assists,
			contested_shots = excluded.contested_shots,
			deflections = excluded.deflections,
			collected_at = excluded.collected_at
	`
	for _, r := range rows {
		if r.CollectedAt == "" {
			r.CollectedAt = time.Now().UTC().Format(time.RFC3339)
		}
		if _, err := tx.NamedExec(query, r); err != nil {
			return utils.ErrorWithTrace(err)
		}
	}
	return tx.Commit()
}

// UpdateSecondaryAssists fills the passing-tracking column on existing hustle
// rows. Teams without a hustle row yet get a bare row so the value survives.
func UpdateSecondaryAssists(rows []HustleStatRow) error {
	tx, err := conn.Beginx()
	if err != nil {
		return utils.ErrorWithTrace(err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO hustle_stats (
			team_id, team_name, season, season_type, secondary_assists, collected_at
		) VALUES (
			:team_id, :team_name, :season, :season_type, :secondary_assists, :collected_at
		)
		ON CONFLICT (team_id, season, season_type) DO UPDATE SET
			secondary_assists = excluded.secondary_assists,
			collected_at = excluded.collected_at
	`
	for _, r := range rows {
		if r.CollectedAt == "" {
			r.CollectedAt = time.Now().UTC().Format(time.RFC3339)
		}
		if _, err := tx.NamedExec(query, r); err != nil {
			return utils.ErrorWithTrace(err)
		}
	}
	return tx.Commit()
}

func SelectHustleStats(season, seasonType string) ([]HustleStatRow, error) {
	if utils.IsInvalidSeason(season) {
		return nil, utils.ErrorWithTrace(fmt.Errorf("invalid season provided: %s", season))
	}

	rows := []HustleStatRow{}
	query := `SELECT * FROM hustle_stats WHERE season = ? AND season_type = ? ORDER BY team_id`
	if err := conn.Select(&rows, query, season, seasonType); err != nil {
		return nil, utils.ErrorWithTrace(err)
	}
	return rows, nil
}

// ReplaceRestFatigueRecords swaps out a season's derived rest/fatigue rows
// wholesale. Derived records are recomputed, never patched: stale rows from a
// prior run must not survive next to fresh ones.
func ReplaceRestFatigueRecords(season string, records []derive.RestFatigueRecord) (int, error) {
	tx, err := conn.Beginx()
	if err != nil {
		return 0, utils.ErrorWithTrace(err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM rest_fatigue WHERE season = ?`, season); err != nil {
		return 0, utils.ErrorWithTrace(err)
	}

	query := `
		INSERT INTO rest_fatigue (
			game_id, team_id, team_name, season, game_date, days_rest,
			is_back_to_back, games_in_last_7_days, schedule_difficulty,
			fatigue_index, is_home
		) VALUES (
			:game_id, :team_id, :team_name, :season, :game_date, :days_rest,
			:is_back_to_back, :games_in_last_7_days, :schedule_difficulty,
			:fatigue_index, :is_home
		)
	`
	for _, r := range records {
		if _, err := tx.NamedExec(query, r); err != nil {
			return 0, utils.ErrorWithTrace(err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, utils.ErrorWithTrace(err)
	}
	return len(records), nil
}

func SelectRestFatigueRecords(season string, teamID int) ([]derive.RestFatigueRecord, error) {
	if utils.IsInvalidSeason(season) {
		return nil, utils.ErrorWithTrace(fmt.Errorf("invalid season provided: %s", season))
	}

	query := `
		SELECT game_id, team_id, team_name, season, game_date, days_rest,
			is_back_to_back, games_in_last_7_days, schedule_difficulty,
			fatigue_index, is_home
		FROM rest_fatigue WHERE season = ?
	`
	args := []any{season}
	if teamID != 0 {
		query += ` AND team_id = ?`
		args = append(args, teamID)
	}
	query += ` ORDER BY team_id, game_date ASC`

	records := []derive.RestFatigueRecord{}
	if err := conn.Select(&records, query, args...); err != nil {
		return nil, utils.ErrorWithTrace(err)
	}
	return records, nil
}

func ReplaceChemistryRecords(season string, records []derive.TeamChemistryRecord) (int, error) {
	tx, err := conn.Beginx()
	if err != nil {
		return 0, utils.ErrorWithTrace(err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM team_chemistry WHERE season = ?`, season); err != nil {
		return 0, utils.ErrorWithTrace(err)
	}

	query := `
		INSERT INTO team_chemistry (
			team_id, team_name, season, screen_assists, secondary_assists,
			contested_shots, deflections, screen_assists_scaled,
			secondary_assists_scaled, contested_shots_scaled,
			deflections_scaled, chemistry_index
		) VALUES (
			:team_id, :team_name, :season, :screen_assists, :secondary_assists,
			:contested_shots, :deflections, :screen_assists_scaled,
			:secondary_assists_scaled, :contested_shots_scaled,
			:deflections_scaled, :chemistry_index
		)
	`
	for _, r := range records {
		if _, err := tx.NamedExec(query, r); err != nil {
			return 0, utils.ErrorWithTrace(err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, utils.ErrorWithTrace(err)
	}
	return len(records), nil
}

func SelectChemistryRecords(season string) ([]derive.TeamChemistryRecord, error) {
	if utils.IsInvalidSeason(season) {
		return nil, utils.ErrorWithTrace(fmt.Errorf("invalid season provided: %s", season))
	}

	records := []derive.TeamChemistryRecord{}
	query := `
		SELECT team_id, team_name, season, screen_assists, secondary_assists,
			contested_shots, deflections, screen_assists_scaled,
			secondary_assists_scaled, contested_shots_scaled,
			deflections_scaled, chemistry_index
		FROM team_chemistry WHERE season = ? ORDER BY chemistry_index DESC
	`
	if err := conn.Select(&records, query, season); err != nil {
		return nil, utils.ErrorWithTrace(err)
	}
	return records, nil
}

func ReplaceAvailabilityRecords(season string, records []derive.PlayerAvailability) (int, error) {
	tx, err := conn.Beginx()
	if err != nil {
		return 0, utils.ErrorWithTrace(err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM player_availability WHERE season = ?`, season); err != nil {
		return 0, utils.ErrorWithTrace(err)
	}

	query := `
		INSERT INTO player_availability (
			player_id, player_name, team_id, season, games_played,
			team_games, availability_rate, at_risk
		) VALUES (
			:player_id, :player_name, :team_id, :season, :games_played,
			:team_games, :availability_rate, :at_risk
		)
	`
	for _, r := range records {
		if _, err := tx.NamedExec(query, r); err != nil {
			return 0, utils.ErrorWithTrace(err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, utils.ErrorWithTrace(err)
	}
	return len(records), nil
}

func SelectAvailabilityRecords(season string, atRiskOnly bool) ([]derive.PlayerAvailability, error) {
	if utils.IsInvalidSeason(season) {
		return nil, utils.ErrorWithTrace(fmt.Errorf("invalid season provided: %s", season))
	}

	query := `
		SELECT player_id, player_name, team_id, season, games_played,
			team_games, availability_rate, at_risk
		FROM player_availability WHERE season = ?
	`
	if atRiskOnly {
		query += ` AND at_risk = 1`
	}
	query += ` ORDER BY availability_rate ASC`

	records := []derive.PlayerAvailability{}
	if err := conn.Select(&records, query, season); err != nil {
		return nil, utils.ErrorWithTrace(err)
	}
	return records, nil
}

type PlayerSeasonRow struct {
	PlayerID    int    `db:"player_id"`
	PlayerName  string `db:"player_name"`
	TeamID      int    `db:"team_id"`
	Season      string `db:"season"`
	GamesPlayed int    `db:"games_played"`
}

func UpsertPlayerSeasons(rows []PlayerSeasonRow) error {
	tx, err := conn.Beginx()
	if err != nil {
		return utils.ErrorWithTrace(err)
	}
	defer tx.Rollback()

	query := `
		REPLACE INTO player_seasons (player_id, player_name, team_id, season, games_played)
		VALUES (:player_id, :player_name, :team_id, :season, :games_played)
	`
	for _, r := range rows {
		if _, err := tx.NamedExec(query, r); err != nil {
			return utils.ErrorWithTrace(err)
		}
	}
	return tx.Commit()
}

func SelectPlayerSeasons(season string) ([]PlayerSeasonRow, error) {
	if utils.IsInvalidSeason(season) {
		return nil, utils.ErrorWithTrace(fmt.Errorf("invalid season provided: %s", season))
	}

	rows := []PlayerSeasonRow{}
	query := `SELECT * FROM player_seasons WHERE season = ? ORDER BY player_id`
	if err := conn.Select(&rows, query, season); err != nil {
		return nil, utils.ErrorWithTrace(err)
	}
	return rows, nil
}

type StandingRow struct {
	TeamID   int     `db:"team_id" json:"team_id"`
	TeamName string  `db:"team_name" json:"team_name"`
	Season   string  `db:"season" json:"season"`
	Wins     int     `db:"wins" json:"wins"`
	Losses   int     `db:"losses" json:"losses"`
	WinPct   float64 `db:"win_pct" json:"win_pct"`
}

func UpsertStandings(rows []StandingRow) error {
	tx, err := conn.Beginx()
	if err != nil {
		return utils.ErrorWithTrace(err)
	}
	defer tx.Rollback()

	query := `
		REPLACE INTO standings (team_id, team_name, season, wins, losses, win_pct)
		VALUES (:team_id, :team_name, :season, :wins, :losses, :win_pct)
	`
	for _, r := range rows {
		if _, err := tx.NamedExec(query, r); err != nil {
			return utils.ErrorWithTrace(err)
		}
	}
	return tx.Commit()
}

func SelectStandings(season string) ([]StandingRow, error) {
	if utils.IsInvalidSeason(season) {
		return nil, utils.ErrorWithTrace(fmt.Errorf("invalid season provided: %s", season))
	}

	rows := []StandingRow{}
	query := `SELECT * FROM standings WHERE season = ? ORDER BY win_pct DESC`
	if err := conn.Select(&rows, query, season); err != nil {
		return nil, utils.ErrorWithTrace(err)
	}
	return rows, nil
}

type ScrapingError struct {
	ID        int    `db:"id"`
	Pipeline  string `db:"pipeline"`
	Season    string `db:"season"`
	Details   string `db:"details"`
	CreatedAt string `db:"created_at"`
}

func NewScrapingError(pipeline, season, details string) *ScrapingError {
	return &ScrapingError{
		Pipeline:  pipeline,
		Season:    season,
		Details:   details,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
}

func InsertScrapingErrors(errs []ScrapingError) error {
	if len(errs) == 0 {
		return nil
	}
	tx, err := conn.Beginx()
	if err != nil {
		return utils.ErrorWithTrace(err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO scraping_errors (pipeline, season, details, created_at)
		VALUES (:pipeline, :season, :details, :created_at)
	`
	for _, e := range errs {
		if _, err := tx.NamedExec(query, e); err != nil {
			return utils.ErrorWithTrace(err)
		}
	}
	return tx.Commit()
}

type ValidationIssue struct {
	ID        int    `db:"id" json:"id"`
	Season    string `db:"season" json:"season"`
	Kind      string `db:"kind" json:"kind"`
	Details   string `db:"details" json:"details"`
	CreatedAt string `db:"created_at" json:"created_at"`
}

func ReplaceValidationIssues(season string, issues []ValidationIssue) error {
	tx, err := conn.Beginx()
	if err != nil {
		return utils.ErrorWithTrace(err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM validation_issues WHERE season = ?`, season); err != nil {
		return utils.ErrorWithTrace(err)
	}

	query := `
		INSERT INTO validation_issues (season, kind, details, created_at)
		VALUES (:season, :kind, :details, :created_at)
	`
	for _, issue := range issues {
		if issue.CreatedAt == "" {
			issue.CreatedAt = time.Now().UTC().Format(time.RFC3339)
		}
		if _, err := tx.NamedExec(query, issue); err != nil {
			return utils.ErrorWithTrace(err)
		}
	}
	return tx.Commit()
}

func SelectValidationIssues(season string) ([]ValidationIssue, error) {
	if utils.IsInvalidSeason(season) {
		return nil, utils.ErrorWithTrace(fmt.Errorf("invalid season provided: %s", season))
	}

	issues := []ValidationIssue{}
	query := `SELECT * FROM validation_issues WHERE season = ? ORDER BY id`
	if err := conn.Select(&issues, query, season); err != nil {
		return nil, utils.ErrorWithTrace(err)
	}
	return issues, nil
}
