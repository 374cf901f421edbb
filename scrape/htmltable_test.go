package scrape

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const hustlePage = `
<html><body>
<div><table><tr><td>nav junk</td></tr></table></div>
<table>
  <tr><th>TEAM</th><th>SCREEN ASSISTS</th><th>DEFLECTIONS</th><th>CONTESTED SHOTS</th></tr>
  <tr><td>New York Knicks</td><td>10.4</td><td>16.2</td><td>41.1</td></tr>
  <tr><td>Boston Celtics</td><td>8.9</td><td>14.5</td><td>44.7</td></tr>
  <tr><td>short row</td></tr>
</table>
</body></html>`

func TestParseStatsTable(t *testing.T) {
	headers, rows, err := ParseStatsTable(strings.NewReader(hustlePage))
	require.NoError(t, err)

	assert.Equal(t, []string{"TEAM", "SCREEN ASSISTS", "DEFLECTIONS", "CONTESTED SHOTS"}, headers)
	require.Len(t, rows, 2)
	assert.Equal(t, "New York Knicks", rows[0][0])
	assert.Equal(t, "8.9", rows[1][1])
}

func TestParseStatsTable_NoTable(t *testing.T) {
	_, _, err := ParseStatsTable(strings.NewReader("<html><body><p>nothing here</p></body></html>"))
	assert.Error(t, err)
}

var testTeamIDs = map[string]int{
	"New York Knicks": 1610612752,
	"Boston Celtics":  1610612738,
}

func TestHustleRowsFromTable(t *testing.T) {
	headers := []string{"TEAM", "SCREEN ASSISTS", "DEFLECTIONS", "CONTESTED SHOTS"}
	tableRows := [][]string{
		{"New York Knicks", "10.4", "16.2", "41.1"},
		{"Boston Celtics", "8.9", "14.5", "44.7"},
	}
	rows := hustleRowsFromTable("2024-25", "Regular+Season", headers, tableRows, testTeamIDs)

	require.Len(t, rows, 2)
	assert.Equal(t, "New York Knicks", rows[0].TeamName)
	assert.InDelta(t, 10.4, rows[0].ScreenAssists, 1e-9)
	assert.InDelta(t, 16.2, rows[0].Deflections, 1e-9)
	assert.InDelta(t, 44.7, rows[1].ContestedShots, 1e-9)
	// Scraped rows key on the same IDs the JSON endpoint reports, so both
	// sources upsert onto one row per team instead of stacking duplicates.
	assert.Equal(t, 1610612752, rows[0].TeamID)
	assert.Equal(t, 1610612738, rows[1].TeamID)
}

func TestHustleRowsFromTable_DropsUnknownTeams(t *testing.T) {
	headers := []string{"TEAM", "SCREEN ASSISTS"}
	tableRows := [][]string{
		{"New York Knicks", "10.4"},
		{"TOTALS", "300.1"},
		{"", "0.0"},
	}
	rows := hustleRowsFromTable("2024-25", "Regular+Season", headers, tableRows, testTeamIDs)

	require.Len(t, rows, 1)
	assert.Equal(t, 1610612752, rows[0].TeamID)
}

func TestHustleRowsFromTable_MissingTeamColumn(t *testing.T) {
	rows := hustleRowsFromTable("2024-25", "Regular+Season",
		[]string{"SCREEN ASSISTS"}, [][]string{{"10.4"}}, testTeamIDs)
	assert.Nil(t, rows)
}

func TestFindColumn(t *testing.T) {
	headers := []string{" Team ", "Screen Assists", "DEFLECTIONS"}
	assert.Equal(t, 0, findColumn(headers, "TEAM"))
	assert.Equal(t, 1, findColumn(headers, "SCREEN ASSISTS"))
	assert.Equal(t, -1, findColumn(headers, "BOX OUTS"))
}

func TestSafeFloat(t *testing.T) {
	assert.InDelta(t, 41.1, safeFloat("41.1"), 1e-9)
	assert.InDelta(t, 55.0, safeFloat("55%"), 1e-9)
	assert.InDelta(t, 1234.0, safeFloat("1,234"), 1e-9)
	assert.InDelta(t, 0.0, safeFloat("n/a"), 1e-9)
	assert.InDelta(t, 0.0, safeFloat(""), 1e-9)
}
