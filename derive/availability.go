package derive

// Availability is a heuristic, not an injury model: a player who has appeared
// in a low share of their team's games is flagged as a risk, whatever the
// reason for the absences.

type PlayerGames struct {
	PlayerID    int
	PlayerName  string
	TeamID      int
	Season      string
	GamesPlayed int
}

type PlayerAvailability struct {
	PlayerID         int     `db:"player_id" json:"player_id"`
	PlayerName       string  `db:"player_name" json:"player_name"`
	TeamID           int     `db:"team_id" json:"team_id"`
	Season           string  `db:"season" json:"season"`
	GamesPlayed      int     `db:"games_played" json:"games_played"`
	TeamGames        int     `db:"team_games" json:"team_games"`
	AvailabilityRate float64 `db:"availability_rate" json:"availability_rate"`
	AtRisk           bool    `db:"at_risk" json:"at_risk"`
}

// Availability computes games-played rates against each player's team game
// count and flags players below the threshold. A team with zero recorded games
// yields a zero rate and no flag; there is no evidence to judge the player on.
func Availability(players []PlayerGames, teamGames map[int]int, threshold float64) []PlayerAvailability {
	out := make([]PlayerAvailability, 0, len(players))
	for _, p := range players {
		total := teamGames[p.TeamID]
		rate := 0.0
		atRisk := false
		if total > 0 {
			rate = float64(p.GamesPlayed) / float64(total)
			atRisk = rate < threshold
		}
		out = append(out, PlayerAvailability{
			PlayerID:         p.PlayerID,
			PlayerName:       p.PlayerName,
			TeamID:           p.TeamID,
			Season:           p.Season,
			GamesPlayed:      p.GamesPlayed,
			TeamGames:        total,
			AvailabilityRate: rate,
			AtRisk:           atRisk,
		})
	}
	return out
}
