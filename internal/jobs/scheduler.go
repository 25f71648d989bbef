package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/Code102SoftwareProject/skill-swap-hub-sub004/internal/config"
	"github.com/Code102SoftwareProject/skill-swap-hub-sub004/internal/repository"
)

// Scheduler runs the housekeeping sweeps: rejecting pending proposals
// nobody answered long past their proposed start date, and purging old
// read notifications.
type Scheduler struct {
	cron          *cron.Cron
	sessions      *repository.SessionRepository
	notifications *repository.NotificationRepository
	cfg           *config.AppConfig
	log           zerolog.Logger
}

func NewScheduler(
	sessions *repository.SessionRepository,
	notifications *repository.NotificationRepository,
	cfg *config.AppConfig,
	log zerolog.Logger,
) *Scheduler {
	return &Scheduler{
		cron:          cron.New(cron.WithSeconds()),
		sessions:      sessions,
		notifications: notifications,
		cfg:           cfg,
		log:           log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("0 0 3 * * *", s.sweepStalePending); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("0 30 3 * * *", s.purgeNotifications); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

func (s *Scheduler) Stop() context.CancelFunc {
	_, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	go func() {
		s.cron.Stop()
		cancel()
	}()
	return cancel
}

func (s *Scheduler) sweepStalePending() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	rejected, err := s.sessions.RejectStalePending(ctx, s.cfg.Engine.StalePendingDays)
	if err != nil {
		s.log.Error().Err(err).Msg("stale pending sweep failed")
		return
	}
	if rejected > 0 {
		s.log.Info().Int64("rejected", rejected).Msg("stale pending sessions closed")
	}
}

func (s *Scheduler) purgeNotifications() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	purged, err := s.notifications.PurgeRead(ctx, s.cfg.Engine.NotificationRetentionDays)
	if err != nil {
		s.log.Error().Err(err).Msg("notification purge failed")
		return
	}
	if purged > 0 {
		s.log.Info().Int64("purged", purged).Msg("read notifications purged")
	}
}
