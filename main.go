package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"courtpulse/config"
	"courtpulse/db"
	"courtpulse/jobs"
	"courtpulse/scrape"
	"courtpulse/utils"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

var sigChan = make(chan os.Signal, 1)

func init() {
	if err := config.LoadConfig(); err != nil {
		panic(err)
	}
	if err := db.SetupDatabase(); err != nil {
		panic(err)
	}
	if err := db.RunMigrations(); err != nil {
		panic(err)
	}
	if err := db.ValidateMigrations(); err != nil {
		panic(err)
	}
	signal.Notify(sigChan, syscall.SIGTERM, os.Interrupt, syscall.SIGINT)
	go cleanup()
	go jobs.StalledJobsJanitor(10 * time.Minute)
	go scrape.Daemon(context.Background())
	fmt.Println("The New York Knickerbockers are named after pants")
}

func cleanup() {
	<-sigChan
	fmt.Println("\nclosing database...")
	if err := db.Close(); err != nil {
		panic(err)
	}
	os.Exit(0)
}

// seasonParam pulls the season query param, defaulting to the current season.
// An unknown season is the caller's mistake, not a server failure.
func seasonParam(c echo.Context) (string, error) {
	s, err := config.ResolveSeason(c.QueryParam("season"))
	if err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return s, nil
}

func intParam(c echo.Context, name string) int {
	v, err := strconv.Atoi(c.QueryParam(name))
	if err != nil {
		return 0
	}
	return v
}

func enqueue(c echo.Context, kind string) error {
	s, err := seasonParam(c)
	if err != nil {
		return err
	}
	job, err := db.InsertJob(db.NewJob(kind, s))
	if err != nil {
		log.Println(utils.ErrorWithTrace(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "could not enqueue job")
	}
	return c.JSON(http.StatusAccepted, job)
}

func main() {
	scheduler1 := jobs.NewScheduler(0, 2, time.Second*10)
	scheduler2 := jobs.NewScheduler(1, 2, time.Second*10)
	go scheduler1.Start()
	go scheduler2.Start()

	e := echo.New()
	e.Use(middleware.Logger())

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	e.GET("/api/games", func(c echo.Context) error {
		s, err := seasonParam(c)
		if err != nil {
			return err
		}
		filter := db.GameFilter{
			Season:   s,
			TeamID:   intParam(c, "team_id"),
			FromDate: c.QueryParam("from"),
			ToDate:   c.QueryParam("to"),
		}
		games, err := db.SelectTeamGames(filter)
		if err != nil {
			log.Println(utils.ErrorWithTrace(err))
			return echo.NewHTTPError(http.StatusInternalServerError, "could not load games")
		}
		return c.JSON(http.StatusOK, games)
	})

	e.GET("/api/rest-fatigue", func(c echo.Context) error {
		s, err := seasonParam(c)
		if err != nil {
			return err
		}
		records, err := db.SelectRestFatigueRecords(s, intParam(c, "team_id"))
		if err != nil {
			log.Println(utils.ErrorWithTrace(err))
			return echo.NewHTTPError(http.StatusInternalServerError, "could not load rest/fatigue records")
		}
		return c.JSON(http.StatusOK, records)
	})

	e.GET("/api/chemistry", func(c echo.Context) error {
		s, err := seasonParam(c)
		if err != nil {
			return err
		}
		records, err := db.SelectChemistryRecords(s)
		if err != nil {
			log.Println(utils.ErrorWithTrace(err))
			return echo.NewHTTPError(http.StatusInternalServerError, "could not load chemistry records")
		}
		return c.JSON(http.StatusOK, records)
	})

	e.GET("/api/team-stats", func(c echo.Context) error {
		s, err := seasonParam(c)
		if err != nil {
			return err
		}
		stats, err := db.SelectTeamStats(s, intParam(c, "team_id"))
		if err != nil {
			log.Println(utils.ErrorWithTrace(err))
			return echo.NewHTTPError(http.StatusInternalServerError, "could not load team stats")
		}
		return c.JSON(http.StatusOK, stats)
	})

	e.GET("/api/availability", func(c echo.Context) error {
		atRiskOnly := c.QueryParam("at_risk") == "true"
		s, err := seasonParam(c)
		if err != nil {
			return err
		}
		records, err := db.SelectAvailabilityRecords(s, atRiskOnly)
		if err != nil {
			log.Println(utils.ErrorWithTrace(err))
			return echo.NewHTTPError(http.StatusInternalServerError, "could not load availability records")
		}
		return c.JSON(http.StatusOK, records)
	})

	e.GET("/api/standings", func(c echo.Context) error {
		s, err := seasonParam(c)
		if err != nil {
			return err
		}
		rows, err := db.SelectStandings(s)
		if err != nil {
			log.Println(utils.ErrorWithTrace(err))
			return echo.NewHTTPError(http.StatusInternalServerError, "could not load standings")
		}
		return c.JSON(http.StatusOK, rows)
	})

	e.GET("/api/validation-issues", func(c echo.Context) error {
		s, err := seasonParam(c)
		if err != nil {
			return err
		}
		issues, err := db.SelectValidationIssues(s)
		if err != nil {
			log.Println(utils.ErrorWithTrace(err))
			return echo.NewHTTPError(http.StatusInternalServerError, "could not load validation issues")
		}
		return c.JSON(http.StatusOK, issues)
	})

	e.GET("/api/jobs", func(c echo.Context) error {
		limit := intParam(c, "limit")
		if limit <= 0 {
			limit = 50
		}
		recent, err := db.SelectRecentJobs(limit)
		if err != nil {
			log.Println(utils.ErrorWithTrace(err))
			return echo.NewHTTPError(http.StatusInternalServerError, "could not load jobs")
		}
		return c.JSON(http.StatusOK, recent)
	})

	e.GET("/api/jobs/:id", func(c echo.Context) error {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "job id must be an integer")
		}
		job, err := db.SelectJobById(id)
		if err != nil {
			return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("no job with id %d", id))
		}
		return c.JSON(http.StatusOK, job)
	})

	e.POST("/api/derive/rest-fatigue", func(c echo.Context) error {
		return enqueue(c, db.JobKindRestFatigue)
	})

	e.POST("/api/derive/chemistry", func(c echo.Context) error {
		return enqueue(c, db.JobKindChemistry)
	})

	e.POST("/api/derive/availability", func(c echo.Context) error {
		return enqueue(c, db.JobKindAvailability)
	})

	log.Fatal(e.Start(config.ListenAddr))
}
