package service

import (
	"context"
	"fmt"

	"jyotchat-be/internal/pkg/logger"

	"github.com/robfig/cron/v3"
)

// IEtlSweeper periodically loads every transcript on disk, catching turns
// whose trigger was lost (crash, full queue, NATS outage).
type IEtlSweeper interface {
	Start(ctx context.Context) error
	Stop()
	Sweep(ctx context.Context)
}

type etlSweeper struct {
	cron       *cron.Cron
	schedule   string
	etlService ITranscriptEtlService
	logger     logger.ILogger
}

func NewEtlSweeper(schedule string, etlService ITranscriptEtlService, logger logger.ILogger) IEtlSweeper {
	return &etlSweeper{
		cron:       cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		schedule:   schedule,
		etlService: etlService,
		logger:     logger,
	}
}

func (s *etlSweeper) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.schedule, func() { s.Sweep(ctx) }); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", s.schedule, err)
	}
	s.cron.Start()
	s.logger.Info("ETL_SWEEPER", "Sweeper started", map[string]interface{}{
		"schedule": s.schedule,
	})
	return nil
}

func (s *etlSweeper) Stop() {
	<-s.cron.Stop().Done()
}

func (s *etlSweeper) Sweep(ctx context.Context) {
	res, err := s.etlService.ProcessAll(ctx)
	if err != nil {
		s.logger.Error("ETL_SWEEPER", "Sweep failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
	if res != nil && (res.Rows > 0 || res.Rejected > 0) {
		s.logger.Info("ETL_SWEEPER", "Sweep loaded transcripts", map[string]interface{}{
			"sessions": res.Sessions,
			"rows":     res.Rows,
			"rejected": res.Rejected,
		})
	}
}
