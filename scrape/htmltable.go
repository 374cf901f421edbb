package scrape

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"courtpulse/utils"

	"github.com/PuerkitoBio/goquery"
)

// ParseStatsTable pulls the first plausible stats table out of an NBA.com
// page: a table with a header row and at least one data row whose cell count
// matches the header. Used as a fallback when the JSON endpoint misbehaves.
func ParseStatsTable(r io.Reader) ([]string, [][]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, nil, utils.ErrorWithTrace(err)
	}

	var headers []string
	var rows [][]string

	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		trs := table.Find("tr")
		if trs.Length() < 2 {
			return true
		}

		candidate := []string{}
		trs.First().Find("th, td").Each(func(_ int, cell *goquery.Selection) {
			candidate = append(candidate, strings.TrimSpace(cell.Text()))
		})
		if len(candidate) == 0 {
			return true
		}

		candidateRows := [][]string{}
		trs.Slice(1, trs.Length()).Each(func(_ int, tr *goquery.Selection) {
			row := []string{}
			tr.Find("td, th").Each(func(_ int, cell *goquery.Selection) {
				row = append(row, strings.TrimSpace(cell.Text()))
			})
			if len(row) == len(candidate) {
				candidateRows = append(candidateRows, row)
			}
		})
		if len(candidateRows) == 0 {
			return true
		}

		headers = candidate
		rows = candidateRows
		return false
	})

	if headers == nil {
		return nil, nil, utils.ErrorWithTrace(fmt.Errorf("no parseable stats table found"))
	}
	return headers, rows, nil
}

// findColumn matches a header against candidate names, case-insensitively.
// NBA.com is not consistent about header spelling across pages.
func findColumn(headers []string, candidates ...string) int {
	for i, h := range headers {
		normalized := strings.ToUpper(strings.TrimSpace(h))
		for _, c := range candidates {
			if normalized == strings.ToUpper(c) {
				return i
			}
		}
	}
	return -1
}

// safeFloat strips percent signs and thousands separators before parsing;
// anything unparseable reads as 0, matching the "missing defaults to zero"
// rule for metric values.
func safeFloat(s string) float64 {
	cleaned := strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(s, "%", ""), ",", ""))
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return v
}
