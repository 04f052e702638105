package booking

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

const defaultSweepInterval = time.Minute

// Sweeper periodically reclaims expired reservations.
type Sweeper struct {
	service  *Service
	interval time.Duration
	logger   *logrus.Logger
}

func NewSweeper(service *Service, interval time.Duration, logger *logrus.Logger) *Sweeper {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	return &Sweeper{
		service:  service,
		interval: interval,
		logger:   logger,
	}
}

// Run sweeps on every tick until the context is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.WithField("interval", s.interval.String()).Info("Sweeper started")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Sweeper stopped")
			return
		case <-ticker.C:
			if n := s.service.SweepExpired(ctx); n > 0 {
				s.logger.WithField("reclaimed", n).Info("Sweep completed")
			}
		}
	}
}
