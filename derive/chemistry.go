package derive

// The chemistry index is an equal-weighted mean of four teamwork proxies, each
// min-max scaled 0-100 across the cohort passed in a single call. Scaled values
// are only comparable inside that cohort: rerunning with a different team set
// yields different numbers for the same team.

type TeamChemistryInput struct {
	TeamID           int
	TeamName         string
	Season           string
	ScreenAssists    float64
	SecondaryAssists float64
	ContestedShots   float64
	Deflections      float64
}

type TeamChemistryRecord struct {
	TeamID                 int     `db:"team_id" json:"team_id"`
	TeamName               string  `db:"team_name" json:"team_name"`
	Season                 string  `db:"season" json:"season"`
	ScreenAssists          float64 `db:"screen_assists" json:"screen_assists"`
	SecondaryAssists       float64 `db:"secondary_assists" json:"secondary_assists"`
	ContestedShots         float64 `db:"contested_shots" json:"contested_shots"`
	Deflections            float64 `db:"deflections" json:"deflections"`
	ScreenAssistsScaled    float64 `db:"screen_assists_scaled" json:"screen_assists_scaled"`
	SecondaryAssistsScaled float64 `db:"secondary_assists_scaled" json:"secondary_assists_scaled"`
	ContestedShotsScaled   float64 `db:"contested_shots_scaled" json:"contested_shots_scaled"`
	DeflectionsScaled      float64 `db:"deflections_scaled" json:"deflections_scaled"`
	ChemistryIndex         float64 `db:"chemistry_index" json:"chemistry_index"`
}

// ChemistryIndex scales each metric jointly across the cohort and averages the
// four scaled values per team. A metric with zero variance across the cohort
// scales to 0 for everyone; a team with all-zero inputs scores 0, never errors.
func ChemistryIndex(cohort []TeamChemistryInput) []TeamChemistryRecord {
	if len(cohort) == 0 {
		return []TeamChemistryRecord{}
	}

	columns := [4][]float64{}
	for i := range columns {
		columns[i] = make([]float64, len(cohort))
	}
	for i, team := range cohort {
		columns[0][i] = team.ScreenAssists
		columns[1][i] = team.SecondaryAssists
		columns[2][i] = team.ContestedShots
		columns[3][i] = team.Deflections
	}

	scaled := [4][]float64{}
	for i, col := range columns {
		scaled[i] = minMaxScale(col)
	}

	records := make([]TeamChemistryRecord, len(cohort))
	for i, team := range cohort {
		index := (scaled[0][i] + scaled[1][i] + scaled[2][i] + scaled[3][i]) / 4.0
		records[i] = TeamChemistryRecord{
			TeamID:                 team.TeamID,
			TeamName:               team.TeamName,
			Season:                 team.Season,
			ScreenAssists:          team.ScreenAssists,
			SecondaryAssists:       team.SecondaryAssists,
			ContestedShots:         team.ContestedShots,
			Deflections:            team.Deflections,
			ScreenAssistsScaled:    scaled[0][i],
			SecondaryAssistsScaled: scaled[1][i],
			ContestedShotsScaled:   scaled[2][i],
			DeflectionsScaled:      scaled[3][i],
			ChemistryIndex:         index,
		}
	}
	return records
}

// minMaxScale maps values onto [0, 100] relative to the column's own min and
// max. A constant column maps to all zeros rather than dividing by zero.
func minMaxScale(values []float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if max == min {
		return out
	}
	for i, v := range values {
		out[i] = (v - min) / (max - min) * 100.0
	}
	return out
}
