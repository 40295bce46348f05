package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/CountToFour/finance-mate/internal/services"
)

// Scheduler drives the periodic ledger maintenance: closing ended budget
// periods, then materializing due recurring templates.
type Scheduler struct {
	cron      *cron.Cron
	recurring *services.RecurringService
	budgets   *services.BudgetService
	log       zerolog.Logger
}

func New(recurring *services.RecurringService, budgets *services.BudgetService, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:      cron.New(),
		recurring: recurring,
		budgets:   budgets,
		log:       log,
	}
}

// Start registers the job on the given cron expression and begins running.
func (s *Scheduler) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.runJob); err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info().Str("cron", spec).Msg("recurring scheduler started")
	return nil
}

// Stop halts scheduling and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) runJob() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	now := time.Now()
	closed, err := s.budgets.CloseExpired(ctx, now)
	if err != nil {
		s.log.Error().Err(err).Msg("closing expired budgets failed")
	} else if closed > 0 {
		s.log.Info().Int64("closed", closed).Msg("closed expired budgets")
	}
	if _, err := s.recurring.RunOnce(ctx, now); err != nil {
		s.log.Error().Err(err).Msg("recurring run failed")
	}
}
