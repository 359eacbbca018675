package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"jobdesk/api/internal/service"
)

// Scheduler runs background maintenance. Nothing here is on a request
// path; the status machine itself has no timers.
type Scheduler struct {
	cron    *cron.Cron
	jobsSvc *service.JobService
	log     zerolog.Logger
}

func NewScheduler(jobsSvc *service.JobService, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds()),
		jobsSvc: jobsSvc,
		log:     log,
	}
}

func (s *Scheduler) Start() error {
	// Keep the first page of the public board warm in the cache.
	if _, err := s.cron.AddFunc("0 */5 * * * *", s.warmPublicListing); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop waits for running entries to finish, up to five seconds.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
	}
}

func (s *Scheduler) warmPublicListing() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, pagination, err := s.jobsSvc.ListPublic(ctx, service.ListJobsInput{Page: 1, Limit: 10})
	if err != nil {
		s.log.Warn().Err(err).Msg("warm public listing failed")
		return
	}
	s.log.Debug().Int("total", pagination.Total).Msg("public listing cache warmed")
}
