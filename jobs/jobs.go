// Package jobs runs queued derivation work. A Scheduler polls the jobs table,
// hands each claimed job to an idle Worker, and the Worker dispatches on the
// job kind: load the input rows, call the matching deriver, replace the
// season's derived rows.
package jobs

import (
	"fmt"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"courtpulse/config"
	"courtpulse/db"
	"courtpulse/derive"
	"courtpulse/utils"
)

type Worker struct {
	Id   int
	idle atomic.Bool
}

func NewWorker(id int) *Worker {
	w := &Worker{Id: id}
	w.idle.Store(true)
	return w
}

func (w *Worker) DoYourJob(job *db.Job) {
	defer w.idle.Store(true)

	var err error
	switch job.Kind {
	case db.JobKindRestFatigue:
		err = runRestFatigue(job)
	case db.JobKindChemistry:
		err = runChemistry(job)
	case db.JobKindAvailability:
		err = runAvailability(job)
	default:
		err = fmt.Errorf("unknown job kind: %q", job.Kind)
	}
	if err != nil {
		errorDetails := fmt.Errorf("WorkerID: %d\n\tJob: %d (%s %s)\n\tError: %s", w.Id, job.Id, job.Kind, job.Season, err.Error())
		log.Println(errorDetails.Error())
		if err := job.Fail(errorDetails); err != nil {
			log.Println(err)
		}
		return
	}

	job.State = db.JobStateFinished
	if err := db.UpdateJob(job); err != nil {
		log.Println(utils.ErrorWithTrace(err))
	}
}

func runRestFatigue(job *db.Job) error {
	rows, err := db.SelectTeamGames(db.GameFilter{Season: job.Season})
	if err != nil {
		return utils.ErrorWithTrace(err)
	}

	records, skipped := derive.RestFatigue(gameRecords(rows))
	for _, s := range skipped {
		log.Printf("rest/fatigue skipped game %s for team %d: %s (%s)", s.GameID, s.TeamID, s.Reason, s.Detail)
	}

	count, err := db.ReplaceRestFatigueRecords(job.Season, records)
	if err != nil {
		return utils.ErrorWithTrace(err)
	}
	job.RecordCount = count
	job.SkippedCount = len(skipped)
	return nil
}

// gameRecords narrows stored rows to the fields the deriver reads.
func gameRecords(rows []db.TeamGameRow) []derive.GameRecord {
	games := make([]derive.GameRecord, len(rows))
	for i, r := range rows {
		games[i] = derive.GameRecord{
			TeamID:   r.TeamID,
			TeamName: r.TeamName,
			GameID:   r.GameID,
			Season:   r.Season,
			GameDate: r.GameDate,
			Matchup:  r.Matchup,
		}
	}
	return games
}

// runChemistry scores the regular-season cohort only. Mixing playoff rows in
// would scale sixteen teams against thirty and make the index meaningless.
func runChemistry(job *db.Job) error {
	rows, err := db.SelectHustleStats(job.Season, "Regular+Season")
	if err != nil {
		return utils.ErrorWithTrace(err)
	}

	cohort := make([]derive.TeamChemistryInput, len(rows))
	for i, r := range rows {
		cohort[i] = derive.TeamChemistryInput{
			TeamID:           r.TeamID,
			TeamName:         r.TeamName,
			Season:           r.Season,
			ScreenAssists:    r.ScreenAssists,
			SecondaryAssists: r.SecondaryAssists,
			ContestedShots:   r.ContestedShots,
			Deflections:      r.Deflections,
		}
	}

	records := derive.ChemistryIndex(cohort)
	count, err := db.ReplaceChemistryRecords(job.Season, records)
	if err != nil {
		return utils.ErrorWithTrace(err)
	}
	job.RecordCount = count
	return nil
}

func runAvailability(job *db.Job) error {
	rows, err := db.SelectPlayerSeasons(job.Season)
	if err != nil {
		return utils.ErrorWithTrace(err)
	}
	teamGames, err := db.TeamGameCounts(job.Season)
	if err != nil {
		return utils.ErrorWithTrace(err)
	}

	players := make([]derive.PlayerGames, len(rows))
	for i, r := range rows {
		players[i] = derive.PlayerGames{
			PlayerID:    r.PlayerID,
			PlayerName:  r.PlayerName,
			TeamID:      r.TeamID,
			Season:      r.Season,
			GamesPlayed: r.GamesPlayed,
		}
	}

	records := derive.Availability(players, teamGames, config.AvailabilityThreshold)
	count, err := db.ReplaceAvailabilityRecords(job.Season, records)
	if err != nil {
		return utils.ErrorWithTrace(err)
	}
	job.RecordCount = count
	return nil
}

type Scheduler struct {
	Id           int
	MaxWorkers   int
	PollInterval time.Duration
	Workers      []*Worker
}

func NewScheduler(id int, maxWorkers int, pollInterval time.Duration) *Scheduler {
	s := Scheduler{
		Id:           id,
		MaxWorkers:   maxWorkers,
		PollInterval: pollInterval,
		Workers:      make([]*Worker, 0, maxWorkers),
	}
	for i := range maxWorkers {
		s.Workers = append(s.Workers, NewWorker(i))
	}
	return &s
}

func (s *Scheduler) Start() {
	ticker := time.NewTicker(s.PollInterval)
	defer ticker.Stop()
	for range ticker.C {
		w := s.GetIdleWorker()
		if w == nil {
			continue
		}

		job, err := db.SelectJobForUpdate()
		if err != nil && strings.Contains(err.Error(), "QUEUE EMPTY") {
			w.idle.Store(true)
			continue
		} else if err != nil {
			w.idle.Store(true)
			log.Println(utils.ErrorWithTrace(err))
			continue
		}
		go w.DoYourJob(job)
	}
}

// GetIdleWorker claims the worker it returns. The idle flag is shared with the
// worker goroutine's completion store, so claiming must be a compare-and-swap
// rather than a read-then-write.
func (s *Scheduler) GetIdleWorker() *Worker {
	for _, w := range s.Workers {
		if w.idle.CompareAndSwap(true, false) {
			return w
		}
	}
	return nil
}

func StalledJobsJanitor(duration time.Duration) {
	ticker := time.NewTicker(duration)
	defer ticker.Stop()
	for range ticker.C {
		if err := db.ResetStaleJobs(); err != nil {
			log.Println(err)
		}
	}
}
