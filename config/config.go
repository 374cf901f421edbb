package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"
)

var DatabaseFile string
var MigrationsDir string
var ListenAddr string
var ProdFlag *bool

// ScrapeRate is requests per second against stats.nba.com, shared by every
// collection pipeline through the same limiter. ScrapeBurst is the bucket size.
var ScrapeRate = 4.0
var ScrapeBurst = 2

// AvailabilityThreshold flags a player as an availability risk when their
// games-played rate falls below it.
var AvailabilityThreshold = 0.7

var ValidSeasons = []string{
	"2024-25",
	"2023-24",
	"2022-23",
	"2021-22",
	"2020-21",
	"2019-20",
}

var SeasonTypes = []string{
	"Regular+Season",
	"Playoffs",
}

// ResolveSeason defaults an empty season to the current one and rejects
// anything outside ValidSeasons.
func ResolveSeason(season string) (string, error) {
	if season == "" {
		return ValidSeasons[0], nil
	}
	for _, s := range ValidSeasons {
		if s == season {
			return season, nil
		}
	}
	return "", fmt.Errorf("invalid season: %s", season)
}

func LoadConfig() error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("unable to load .env: %v", err)
	}

	ProdFlag = flag.BoolP("prod", "p", false, "designates production")
	flag.Parse()

	binPath, err := os.Executable()
	if err != nil {
		return err
	}
	if *ProdFlag {
		DatabaseFile = "/sqlitedata/courtpulse.db"
		MigrationsDir = "file:///app/db/migrations"
	} else {
		DatabaseFile = filepath.Join(filepath.Dir(binPath), "courtpulse.db")
		MigrationsDir = "file://db/migrations"
	}
	ListenAddr = ":8080"

	if v := os.Getenv("DATABASE_FILE"); v != "" {
		DatabaseFile = v
	}
	if v := os.Getenv("MIGRATIONS_DIR"); v != "" {
		MigrationsDir = v
	}
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		ListenAddr = v
	}
	if v := os.Getenv("SCRAPE_RATE"); v != "" {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil {
			log.Printf("ignoring bad SCRAPE_RATE %q: %v", v, err)
		} else {
			ScrapeRate = rate
		}
	}
	if v := os.Getenv("AVAILABILITY_THRESHOLD"); v != "" {
		threshold, err := strconv.ParseFloat(v, 64)
		if err != nil {
			log.Printf("ignoring bad AVAILABILITY_THRESHOLD %q: %v", v, err)
		} else {
			AvailabilityThreshold = threshold
		}
	}
	return nil
}
